package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/jobs"
	"github.com/jobscout/jobscout/internal/store"
)

type titleRelevanceFilter struct{}

// NewTitleRelevance creates the filter that keeps only leadership roles in
// the target domain.
func NewTitleRelevance() Filter {
	return &titleRelevanceFilter{}
}

func (f *titleRelevanceFilter) Name() string { return "title_relevance" }

func (f *titleRelevanceFilter) Disable(string) {}

func (f *titleRelevanceFilter) IsEnabled() bool { return true }

func (f *titleRelevanceFilter) Validate(*store.Filters) error { return nil }

func (f *titleRelevanceFilter) Apply(_ context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	kept, dropped := keep(p, func(posting *jobs.Posting) bool {
		return RelevantTitle(posting.Title)
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding postings with irrelevant titles",
			zap.Strings("excluded_titles", dropped),
			zap.Int("postings_left", kept.Len()),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: kept.Len()}, nil
}

type locationFilter struct {
	keywords []string
}

// NewLocation creates the filter that keeps postings matching a configured
// location keyword in either the location field or the description. Without
// configured keywords the step is a pass-through: an unset location list
// means the user accepts any location, not none.
func NewLocation() Filter {
	return &locationFilter{}
}

func (f *locationFilter) Name() string { return "location" }

func (f *locationFilter) Disable(string) {}

func (f *locationFilter) IsEnabled() bool { return true }

func (f *locationFilter) Validate(cfg *store.Filters) error {
	f.keywords = nil
	if cfg != nil {
		f.keywords = append(f.keywords, cfg.LocationKeywords...)
	}
	return nil
}

func (f *locationFilter) Apply(_ context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	// No configured keywords keeps every posting. MatchesLocation rejects on
	// an empty keyword list, so the step must not reach it.
	if len(f.keywords) == 0 {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	kept, dropped := keep(p, func(posting *jobs.Posting) bool {
		return MatchesLocation(posting.Location, posting.Description, f.keywords)
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding postings outside configured locations",
			zap.Strings("excluded_titles", dropped),
			zap.Int("postings_left", kept.Len()),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: kept.Len()}, nil
}

type excludeKeywordsFilter struct {
	keywords []string
}

// NewExcludeKeywords creates the hard-veto filter for contractor / hourly /
// temp signals. It runs last: the veto is independent of relevance.
func NewExcludeKeywords() Filter {
	return &excludeKeywordsFilter{}
}

func (f *excludeKeywordsFilter) Name() string { return "exclude_keywords" }

func (f *excludeKeywordsFilter) Disable(string) {}

func (f *excludeKeywordsFilter) IsEnabled() bool { return true }

func (f *excludeKeywordsFilter) Validate(cfg *store.Filters) error {
	f.keywords = nil
	if cfg != nil {
		f.keywords = append(f.keywords, cfg.ExcludeKeywords...)
	}
	return nil
}

func (f *excludeKeywordsFilter) Apply(_ context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	if len(f.keywords) == 0 {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	kept, dropped := keep(p, func(posting *jobs.Posting) bool {
		return !HasExcludedKeyword(posting.Title, posting.Description, f.keywords)
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding postings with exclusion keywords",
			zap.Strings("excluded_titles", dropped),
			zap.Int("postings_left", kept.Len()),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: kept.Len()}, nil
}
