package store

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Time window options understood by the source adapters. The strings are the
// persisted form shared with the review surface.
const (
	TimeAny        = "Any time"
	TimePastMonth  = "Past month"
	TimePastWeek   = "Past week"
	TimePast24Hour = "Past 24 hours"
)

// Filters is the user-editable filter configuration. It is loaded at the
// start of a discovery run and overwritten wholesale on save; there is no
// partial-field merge.
type Filters struct {
	LocationKeywords []string `json:"location_keywords"`
	ExcludeKeywords  []string `json:"exclude_keywords"`
	SearchQueries    []string `json:"search_queries"`
	TimeFilter       string   `json:"time_filter"`
}

// DefaultFilters returns the built-in configuration materialized on first use.
func DefaultFilters() *Filters {
	return &Filters{
		LocationKeywords: []string{
			"remote", "work from home", "wfh", "anywhere",
			"atlanta", "atl", ", ga", "georgia",
		},
		ExcludeKeywords: []string{
			"contractor", "contract", "freelance", "consultant",
			"hourly", "/hr", "per hour", "$/hour",
			"c2c", "corp to corp", "1099", "w2 contract",
			"temp", "temporary",
		},
		SearchQueries: []string{
			"data science director",
			"data science VP",
			"VP data science",
			"director of data science",
			"head of data science",
			"AI director",
			"ML director",
			"director machine learning",
		},
		TimeFilter: TimePastWeek,
	}
}

// Window returns the configured time filter, falling back to the default for
// unknown values.
func (f *Filters) Window() string {
	switch f.TimeFilter {
	case TimeAny, TimePastMonth, TimePastWeek, TimePast24Hour:
		return f.TimeFilter
	default:
		return TimePastWeek
	}
}

// FiltersStore persists the filter configuration as a single JSON file.
type FiltersStore struct {
	path   string
	logger *zap.Logger
}

func NewFiltersStore(path string, logger *zap.Logger) *FiltersStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FiltersStore{path: path, logger: logger}
}

// Load reads the filter configuration. On first use the defaults are written
// to disk so the review surface has a file to edit. A corrupt file falls back
// to the defaults without overwriting the user's file.
func (s *FiltersStore) Load() *Filters {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			defaults := DefaultFilters()
			if saveErr := s.Save(defaults); saveErr != nil {
				s.logger.Warn("materializing default filters failed", zap.Error(saveErr))
			}
			return defaults
		}
		s.logger.Warn("filter configuration unreadable, using defaults",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return DefaultFilters()
	}

	filters := &Filters{}
	if err := json.Unmarshal(data, filters); err != nil {
		s.logger.Warn("filter configuration corrupt, using defaults",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return DefaultFilters()
	}

	return filters
}

// Save overwrites the configuration file with the provided filters.
func (s *FiltersStore) Save(filters *Filters) error {
	data, err := json.MarshalIndent(filters, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal filter configuration: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write filter configuration %q: %w", s.path, err)
	}

	return nil
}
