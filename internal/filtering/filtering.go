package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/ai"
	"github.com/jobscout/jobscout/internal/apply"
	"github.com/jobscout/jobscout/internal/jobs"
	"github.com/jobscout/jobscout/internal/store"
)

// Filter represents a single filtering step applied to postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *store.Filters) error
	Apply(ctx context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger  *zap.Logger
	Matcher ai.Matcher
	Profile *apply.Profile
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Run executes the supplied filters sequentially. Each enabled step is
// validated against the configuration first, then applied in order with its
// stats logged. The steps are pure over their inputs, so the outcome does not
// depend on their order, only the fail-fast cost does.
func Run(ctx context.Context, cfg *store.Filters, deps Deps, steps []Filter, p *jobs.Postings) (*jobs.Postings, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		p = next
	}

	return p, nil
}

// keep rebuilds the postings list with only the entries the predicate
// accepts, returning the dropped titles for logging.
func keep(p *jobs.Postings, accept func(*jobs.Posting) bool) (*jobs.Postings, []string) {
	kept := &jobs.Postings{Items: make([]*jobs.Posting, 0, p.Len())}
	var dropped []string
	for _, posting := range p.Items {
		if accept(posting) {
			kept.Items = append(kept.Items, posting)
			continue
		}
		dropped = append(dropped, posting.Title)
	}
	return kept, dropped
}
