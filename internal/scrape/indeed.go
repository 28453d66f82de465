package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/browser"
	"github.com/jobscout/jobscout/internal/jobs"
	"github.com/jobscout/jobscout/internal/store"
)

const (
	indeedSource  = "indeed"
	indeedBaseURL = "https://www.indeed.com"
	// remoteFilter is Indeed's attribute filter for remote positions.
	remoteFilter = "0kf:attr(DSQF7);"
)

var indeedSelectors = struct {
	cards       selectors
	title       selectors
	company     selectors
	location    selectors
	salary      selectors
	description selectors
	jobKey      selectors
	link        selectors
}{
	cards: selectors{
		".jobsearch-ResultsList .job_seen_beacon",
		".mosaic-provider-jobcards .job_seen_beacon",
		"[data-jk]",
		".result",
		".jobCard_mainContent",
	},
	title: selectors{
		"h2.jobTitle span",
		"h2.jobTitle a span",
		"h2.jobTitle a",
		".jobTitle span",
		".jobTitle a",
		".jobTitle",
		"[data-testid='jobTitle']",
	},
	company: selectors{
		"[data-testid='company-name']",
		".companyName a",
		".companyName",
		".company_location .companyName",
	},
	location: selectors{
		"[data-testid='text-location']",
		".companyLocation",
		".company_location .companyLocation",
		".location",
	},
	salary: selectors{
		".salary-snippet-container",
		"[data-testid='attribute_snippet_testid']",
		".salaryText",
	},
	description: selectors{
		".job-snippet",
		"[data-testid='job-snippet']",
		".jobCardShelfContainer",
		"ul li",
	},
	jobKey: selectors{
		"[data-jk]",
	},
	link: selectors{
		"a[href*='jk=']",
		"a[href*='/viewjob']",
		"a[href*='/rc/clk']",
	},
}

// Indeed scrapes the Indeed search surface. Listings render for guest
// sessions, so this adapter also works on the static HTTP page.
type Indeed struct {
	logger *zap.Logger
}

func NewIndeed(logger *zap.Logger) *Indeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indeed{logger: logger}
}

func (i *Indeed) Name() string { return indeedSource }

func (i *Indeed) Search(ctx context.Context, page browser.Page, query string, window string) (*jobs.Postings, error) {
	postings := &jobs.Postings{}

	cards, err := loadCards(page, i.searchURL(query, window), indeedSelectors.cards)
	if err != nil {
		return postings, err
	}

	DismissConsent(page)

	for _, card := range cards {
		if err := ctx.Err(); err != nil {
			return postings, err
		}

		posting, err := i.extract(card)
		if err != nil {
			i.logger.Debug("card extraction failed", zap.Error(err))
			continue
		}
		if posting == nil {
			continue
		}

		postings.Append(posting)
	}

	return postings, nil
}

func (i *Indeed) extract(card browser.Element) (*jobs.Posting, error) {
	title := firstText(card, indeedSelectors.title)
	// The "new" ribbon renders inside title containers on fresh postings.
	if strings.EqualFold(title, "new") {
		title = ""
	}

	description := clipRunes(firstText(card, indeedSelectors.description), 500)

	salary := firstText(card, indeedSelectors.salary)
	if salary != "" {
		lower := strings.ToLower(salary)
		if strings.Contains(salary, "$") || strings.Contains(lower, "year") || strings.Contains(lower, "hour") {
			description = description + " | " + salary
		}
	}

	return decodePosting(map[string]any{
		"title":       title,
		"company":     firstText(card, indeedSelectors.company),
		"location":    firstText(card, indeedSelectors.location),
		"description": description,
		"url":         i.jobURL(card),
		"source":      indeedSource,
	})
}

// jobURL resolves the posting URL from the card's job key, falling back to
// the first job link when no key attribute is present.
func (i *Indeed) jobURL(card browser.Element) string {
	jobKey := card.Attr("data-jk")
	if jobKey == "" {
		jobKey = firstAttr(card, indeedSelectors.jobKey, "data-jk")
	}
	if jobKey == "" {
		href := firstAttr(card, selectors{"a[href*='jk=']"}, "href")
		if idx := strings.Index(href, "jk="); idx != -1 {
			jobKey = strings.SplitN(href[idx+3:], "&", 2)[0]
		}
	}

	if jobKey != "" {
		return fmt.Sprintf("%s/viewjob?jk=%s", indeedBaseURL, jobKey)
	}

	href := firstAttr(card, indeedSelectors.link, "href")
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "/") {
		return indeedBaseURL + href
	}
	return href
}

// searchURL builds the search URL. Remote is expressed through Indeed's
// attribute filter and the window through the fromage day parameter.
func (i *Indeed) searchURL(query string, window string) string {
	q := url.Values{}
	q.Set("q", query)
	q.Set("l", "")
	q.Set("sc", remoteFilter)

	switch window {
	case store.TimePast24Hour:
		q.Set("fromage", "1")
	case store.TimePastWeek:
		q.Set("fromage", "7")
	case store.TimePastMonth:
		q.Set("fromage", "14")
	}

	return indeedBaseURL + "/jobs?" + q.Encode()
}
