package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/jobs"
	"github.com/jobscout/jobscout/internal/store"
)

type aiFitFilter struct {
	disabled bool
	reason   string
}

// NewAIFit creates the optional AI-based fit step. It is constructed enabled
// or disabled up front; discovery works fully without it.
func NewAIFit(enabled bool) Filter {
	f := &aiFitFilter{}
	if !enabled {
		f.Disable("ai filter is not configured")
	}
	return f
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *aiFitFilter) IsEnabled() bool { return !f.disabled }

func (f *aiFitFilter) Validate(*store.Filters) error { return nil }

func (f *aiFitFilter) Apply(ctx context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()

	if deps.Matcher == nil {
		if deps.Logger != nil {
			deps.Logger.Info("ai matcher is not configured; skipping ai_fit filter")
		}
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}
	if deps.Profile == nil {
		return p, Step{}, fmt.Errorf("applicant profile is required for AI evaluation")
	}

	approved := &jobs.Postings{Items: make([]*jobs.Posting, 0, initial)}

	for _, posting := range p.Items {
		assessment, err := deps.Matcher.Evaluate(ctx, deps.Profile, posting)
		if err != nil {
			// An evaluation failure keeps the posting: the AI step
			// narrows the queue, it never silently loses postings.
			if deps.Logger != nil {
				deps.Logger.Warn("AI evaluation failed",
					zap.String("posting_key", jobs.Key(posting)),
					zap.Error(err),
				)
			}
			approved.Append(posting)
			continue
		}

		if !assessment.Fit {
			if deps.Logger != nil {
				deps.Logger.Info("posting rejected by AI provider",
					zap.String("posting_key", jobs.Key(posting)),
					zap.Float64("ai_score", assessment.Score),
					zap.String("reason", assessment.Reason),
				)
			}
			continue
		}

		if deps.Logger != nil {
			deps.Logger.Info("posting approved by AI",
				zap.String("posting_key", jobs.Key(posting)),
				zap.Float64("ai_score", assessment.Score),
			)
		}
		approved.Append(posting)
	}

	return approved, Step{Initial: initial, Dropped: initial - approved.Len(), Left: approved.Len()}, nil
}
