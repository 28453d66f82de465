package jobs

import (
	"encoding/json"
	"os"
	"time"
)

// Posting is one scraped job listing. Postings are ephemeral: they live for
// a single discovery run and are folded into the seen-job store afterwards.
type Posting struct {
	Title       string    `json:"title" mapstructure:"title"`
	Company     string    `json:"company" mapstructure:"company"`
	Location    string    `json:"location" mapstructure:"location"`
	Description string    `json:"description" mapstructure:"description"`
	URL         string    `json:"url" mapstructure:"url"`
	Source      string    `json:"source" mapstructure:"source"`
	ScrapedAt   time.Time `json:"scraped_at" mapstructure:"scraped_at"`
}

// Postings is an ordered collection of postings.
type Postings struct {
	Items []*Posting
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) Append(items ...*Posting) {
	p.Items = append(p.Items, items...)
}

// Dedupe collapses postings that resolve to the same identity key,
// first-seen-wins, preserving input order.
func (p *Postings) Dedupe() *Postings {
	seen := make(map[string]bool, len(p.Items))
	out := &Postings{Items: make([]*Posting, 0, len(p.Items))}
	for _, posting := range p.Items {
		key := Key(posting)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Items = append(out.Items, posting)
	}
	return out
}

// FindByKey returns the posting with the given identity key, or nil.
func (p *Postings) FindByKey(key string) *Posting {
	for _, posting := range p.Items {
		if Key(posting) == key {
			return posting
		}
	}
	return nil
}

// DumpToTmpFile writes the postings as indented JSON to a temporary file and
// returns its name.
func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}
