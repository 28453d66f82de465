package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/jobs"
)

// Record is the persisted decision state for a previously-seen posting.
// Applied and Ignored are mutually exclusive; they belong to the user and are
// never touched by the discovery upsert path.
type Record struct {
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	ScrapedAt   time.Time `json:"scraped_at"`
	Applied     bool      `json:"applied"`
	Ignored     bool      `json:"ignored"`
}

// SeenJobs is the full persisted mapping from identity key to record.
type SeenJobs struct {
	Jobs        map[string]*Record `json:"jobs"`
	LastUpdated time.Time          `json:"last_updated"`
}

// Store persists the seen-job mapping as a single JSON file. Saves are
// whole-file overwrites; single-writer access per process is assumed.
type Store struct {
	path   string
	logger *zap.Logger
}

func New(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Load reads the persisted mapping. A missing or unreadable file yields an
// empty store rather than an error so a corrupt state file never blocks a run.
func (s *Store) Load() *SeenJobs {
	seen := &SeenJobs{Jobs: make(map[string]*Record)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("seen-job store unreadable, starting empty",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		return seen
	}

	if err := json.Unmarshal(data, seen); err != nil {
		s.logger.Warn("seen-job store corrupt, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return &SeenJobs{Jobs: make(map[string]*Record)}
	}

	if seen.Jobs == nil {
		seen.Jobs = make(map[string]*Record)
	}

	return seen
}

// Save overwrites the state file with the full mapping and stamps LastUpdated.
func (s *Store) Save(seen *SeenJobs) error {
	seen.LastUpdated = time.Now()

	data, err := json.MarshalIndent(seen, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen-job store: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write seen-job store %q: %w", s.path, err)
	}

	return nil
}

// Contains reports whether the identity key is already known.
func (s *SeenJobs) Contains(key string) bool {
	_, ok := s.Jobs[key]
	return ok
}

func (s *SeenJobs) Len() int {
	return len(s.Jobs)
}

// Keys returns the identity keys in stable sorted order.
func (s *SeenJobs) Keys() []string {
	keys := make([]string, 0, len(s.Jobs))
	for key := range s.Jobs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// UpsertMany merges the postings into the mapping. New keys are inserted with
// both decision flags cleared. For known keys the scraped metadata is
// refreshed but Applied and Ignored are preserved; only the review surface
// changes those.
func (s *SeenJobs) UpsertMany(postings []*jobs.Posting) {
	for _, posting := range postings {
		key := jobs.Key(posting)
		record := &Record{
			Title:       posting.Title,
			Company:     posting.Company,
			Location:    posting.Location,
			Description: posting.Description,
			URL:         posting.URL,
			Source:      posting.Source,
			ScrapedAt:   posting.ScrapedAt,
		}

		if existing, ok := s.Jobs[key]; ok {
			record.Applied = existing.Applied
			record.Ignored = existing.Ignored
		}

		s.Jobs[key] = record
	}
}

// SetApplied marks a record as applied. Setting it clears Ignored: the flags
// are mutually exclusive by contract with the review surface.
func (s *SeenJobs) SetApplied(key string, applied bool) bool {
	record, ok := s.Jobs[key]
	if !ok {
		return false
	}
	record.Applied = applied
	if applied {
		record.Ignored = false
	}
	return true
}

// SetIgnored marks a record as ignored, clearing Applied when set.
func (s *SeenJobs) SetIgnored(key string, ignored bool) bool {
	record, ok := s.Jobs[key]
	if !ok {
		return false
	}
	record.Ignored = ignored
	if ignored {
		record.Applied = false
	}
	return true
}

// Pending returns the keys of records awaiting a decision, sorted.
func (s *SeenJobs) Pending() []string {
	pending := make([]string, 0, len(s.Jobs))
	for _, key := range s.Keys() {
		record := s.Jobs[key]
		if !record.Applied && !record.Ignored {
			pending = append(pending, key)
		}
	}
	return pending
}
