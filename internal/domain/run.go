package domain

import "time"

// RunStatus is the lifecycle state of a search run.
// Transitions: pending -> in_progress -> {completed, failed}.
type RunStatus string

// Run states.
const (
	RunPending    RunStatus = "pending"
	RunInProgress RunStatus = "in_progress"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// QueryOutcome records what happened to a single date candidate during a
// run. Kept for observability and for the run summary.
type QueryOutcome struct {
	// Candidate is the queried date pair
	Candidate DateCandidate `json:"candidate"`

	// Offers is the number of raw offers the provider returned
	Offers int `json:"offers"`

	// Unavailable is true when the provider stayed unreachable for this
	// candidate after all retries (counted as zero offers)
	Unavailable bool `json:"unavailable,omitempty"`

	// Skipped is true when the run finished before this candidate was
	// queried (early completion or time budget exhausted)
	Skipped bool `json:"skipped,omitempty"`
}

// SearchRun is the full record of one end-to-end search invocation.
// It is created when a run starts, owned exclusively by the orchestrator,
// and discarded after its summary is emitted — no cross-run state survives.
type SearchRun struct {
	// ID uniquely identifies this run (for log correlation)
	ID string `json:"id"`

	// Plan is the configuration the run executed against
	Plan SearchPlan `json:"plan"`

	// Candidates is the full generated date window, in generator order
	Candidates []DateCandidate `json:"candidates"`

	// Outcomes holds one entry per candidate, in generator order
	Outcomes []QueryOutcome `json:"outcomes"`

	// Results are the accepted offers in final rank order
	Results []EvaluatedOffer `json:"results"`

	// Rejections counts evaluator rejections by reason
	Rejections map[RejectionReason]int `json:"rejections,omitempty"`

	// Status is the terminal (or current) lifecycle state
	Status RunStatus `json:"status"`

	// FailureCause is the human-readable reason when Status is failed
	FailureCause string `json:"failureCause,omitempty"`

	// StartedAt and FinishedAt bound the run's wall-clock execution
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// CandidatesSearched returns how many candidates were actually queried
// (outcomes not skipped).
func (r *SearchRun) CandidatesSearched() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Skipped {
			n++
		}
	}
	return n
}

// IsTerminal reports whether the run reached a final state.
func (r *SearchRun) IsTerminal() bool {
	return r.Status == RunCompleted || r.Status == RunFailed
}
