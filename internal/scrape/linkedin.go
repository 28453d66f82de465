package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/browser"
	"github.com/jobscout/jobscout/internal/jobs"
	"github.com/jobscout/jobscout/internal/store"
)

const (
	linkedInSource    = "linkedin"
	linkedInBaseURL   = "https://www.linkedin.com"
	linkedInSearchURL = linkedInBaseURL + "/jobs/search/"
)

var linkedInSelectors = struct {
	cards       selectors
	title       selectors
	company     selectors
	location    selectors
	description selectors
	link        selectors
}{
	cards: selectors{
		".job-card-container",
		".jobs-search-results__list-item",
		"[data-job-id]",
	},
	title: selectors{
		".job-card-list__title",
		".artdeco-entity-lockup__title",
		"strong",
	},
	company: selectors{
		".job-card-container__primary-description",
		".artdeco-entity-lockup__subtitle",
	},
	location: selectors{
		".job-card-container__metadata-item",
		".artdeco-entity-lockup__caption",
	},
	description: selectors{
		".jobs-description-content__text",
		".jobs-description__content",
		"#job-details",
	},
	link: selectors{
		"a[href*='/jobs/view/']",
	},
}

// LinkedIn scrapes the LinkedIn jobs search surface. It expects an
// authenticated page; the details panel only renders for logged-in sessions.
type LinkedIn struct {
	logger *zap.Logger
}

func NewLinkedIn(logger *zap.Logger) *LinkedIn {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkedIn{logger: logger}
}

func (l *LinkedIn) Name() string { return linkedInSource }

func (l *LinkedIn) Search(ctx context.Context, page browser.Page, query string, window string) (*jobs.Postings, error) {
	postings := &jobs.Postings{}

	cards, err := loadCards(page, l.searchURL(query, window), linkedInSelectors.cards)
	if err != nil {
		return postings, err
	}

	for _, card := range cards {
		if err := ctx.Err(); err != nil {
			return postings, err
		}

		// Clicking the card loads the details panel. Best effort: a
		// non-interactive page still yields the card fields.
		if err := card.Click(); err == nil {
			page.Wait(1500 * time.Millisecond)
		}

		posting, err := l.extract(page, card)
		if err != nil {
			l.logger.Debug("card extraction failed", zap.Error(err))
			continue
		}
		if posting == nil {
			continue
		}

		postings.Append(posting)
	}

	return postings, nil
}

func (l *LinkedIn) extract(page browser.Page, card browser.Element) (*jobs.Posting, error) {
	jobURL := firstAttr(card, linkedInSelectors.link, "href")
	if jobURL == "" {
		if id := card.Attr("data-job-id"); id != "" {
			jobURL = fmt.Sprintf("%s/jobs/view/%s/", linkedInBaseURL, id)
		}
	}
	if jobURL != "" && !strings.HasPrefix(jobURL, "http") {
		jobURL = linkedInBaseURL + jobURL
	}

	description := clipRunes(firstText(page, linkedInSelectors.description), 2000)

	return decodePosting(map[string]any{
		"title":       firstText(card, linkedInSelectors.title),
		"company":     firstText(card, linkedInSelectors.company),
		"location":    firstText(card, linkedInSelectors.location),
		"description": description,
		"url":         jobURL,
		"source":      linkedInSource,
	})
}

// searchURL builds the jobs search URL with the posted-within window encoded
// as the f_TPR seconds parameter.
func (l *LinkedIn) searchURL(query string, window string) string {
	q := url.Values{}
	q.Set("keywords", query)

	switch window {
	case store.TimePast24Hour:
		q.Set("f_TPR", "r86400")
	case store.TimePastWeek:
		q.Set("f_TPR", "r604800")
	case store.TimePastMonth:
		q.Set("f_TPR", "r2592000")
	}

	return linkedInSearchURL + "?" + q.Encode()
}
