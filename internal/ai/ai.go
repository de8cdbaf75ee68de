// Package ai defines the ports to the opaque search-and-research provider.
// Implementations live in subpackages; the pipeline only sees these types.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/jobsift/jobsift/internal/candidate"
)

// ResearchResult is the provider's verdict on one candidate, keyed by the
// exact candidate id.
type ResearchResult struct {
	ID           string              `json:"id"`
	Company      string              `json:"company"`
	IsRecruiter  bool                `json:"is_recruiter"`
	DirectJobURL string              `json:"direct_job_url"`
	Expired      bool                `json:"expired"`
	RedFlags     []candidate.RedFlag `json:"red_flags"`
}

// Gatherer collects raw candidates from AI-driven web and email search,
// keyed by source tag.
type Gatherer interface {
	Gather(ctx context.Context) (map[string][]candidate.Candidate, error)
}

// Researcher investigates a batch of candidates (recruiter detection,
// direct URL verification, red flags, expiry).
type Researcher interface {
	Research(ctx context.Context, queue []candidate.Candidate) ([]ResearchResult, error)
}

// NeedsInterventionError marks failures that require operator action before
// a retry can succeed: missing credentials, authentication problems, or
// provider output that stayed malformed after the bounded retry.
type NeedsInterventionError struct {
	Reason string
	Err    error
}

func (e *NeedsInterventionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("needs intervention: %s: %v", e.Reason, e.Err)
	}
	return "needs intervention: " + e.Reason
}

func (e *NeedsInterventionError) Unwrap() error { return e.Err }

// NeedsIntervention wraps err (which may be nil) into the operator-action
// category.
func NeedsIntervention(reason string, err error) error {
	return &NeedsInterventionError{Reason: reason, Err: err}
}

// IsNeedsIntervention reports whether any error in the chain requires
// operator action.
func IsNeedsIntervention(err error) bool {
	var target *NeedsInterventionError
	return errors.As(err, &target)
}
