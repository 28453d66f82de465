package ai

import (
	"context"

	"github.com/jobscout/jobscout/internal/apply"
	"github.com/jobscout/jobscout/internal/jobs"
)

// FitAssessment is the provider's judgement of how well a posting matches
// the applicant profile.
type FitAssessment struct {
	Fit    bool
	Score  float64
	Reason string
	Raw    string
}

// Matcher evaluates a posting against the applicant profile.
type Matcher interface {
	Evaluate(ctx context.Context, profile *apply.Profile, posting *jobs.Posting) (*FitAssessment, error)
}
