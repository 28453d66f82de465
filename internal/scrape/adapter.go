package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/jobscout/jobscout/internal/browser"
	"github.com/jobscout/jobscout/internal/jobs"
)

const (
	// cardsPerQuery caps extraction per search to keep runs fast.
	cardsPerQuery = 10
	scrollPasses  = 2
	scrollStep    = 1000
	settleDelay   = 2 * time.Second
	scrollDelay   = time.Second
)

// Adapter is a per-site capability that turns a search query and time window
// into raw postings. Adapters own their selector tables; orchestration code
// never sees a concrete selector string.
type Adapter interface {
	Name() string
	Search(ctx context.Context, page browser.Page, query string, window string) (*jobs.Postings, error)
}

// selectors lists alternate locators for one field, tried once each in order.
type selectors []string

// firstText returns the trimmed text of the first selector that matches.
// A miss is an empty value, not an error.
func firstText(root interface {
	Find(selectors ...string) browser.Element
}, sel selectors) string {
	el := root.Find(sel...)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// clipRunes bounds scraped text to limit runes without splitting a
// multi-byte character.
func clipRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// firstAttr returns the named attribute of the first selector that matches.
func firstAttr(root interface {
	Find(selectors ...string) browser.Element
}, sel selectors, attr string) string {
	el := root.Find(sel...)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Attr(attr))
}

// decodePosting turns an extracted field map into a Posting. Postings with
// an empty title are dropped by returning nil.
func decodePosting(fields map[string]any) (*jobs.Posting, error) {
	var posting *jobs.Posting

	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &posting,
		TagName:  "mapstructure",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("build posting decoder: %w", err)
	}
	if err := decoder.Decode(fields); err != nil {
		return nil, fmt.Errorf("decode posting: %w", err)
	}

	if posting == nil || strings.TrimSpace(posting.Title) == "" {
		return nil, nil
	}

	posting.Title = strings.TrimSpace(posting.Title)
	posting.Company = strings.TrimSpace(posting.Company)
	posting.Location = strings.TrimSpace(posting.Location)
	posting.URL = jobs.CanonicalURL(posting.URL)
	posting.ScrapedAt = time.Now()

	return posting, nil
}

// loadCards navigates to the search URL, lets the page settle, scrolls the
// result list into view and returns up to cardsPerQuery card elements.
func loadCards(page browser.Page, searchURL string, cardSelectors selectors) ([]browser.Element, error) {
	if err := page.Goto(searchURL); err != nil {
		return nil, fmt.Errorf("open search page: %w", err)
	}
	page.Wait(settleDelay)

	for i := 0; i < scrollPasses; i++ {
		page.Scroll(scrollStep)
		page.Wait(scrollDelay)
	}

	cards := page.FindAll(cardSelectors...)
	if len(cards) > cardsPerQuery {
		cards = cards[:cardsPerQuery]
	}
	return cards, nil
}
