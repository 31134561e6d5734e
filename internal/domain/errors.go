package domain

import "errors"

// Sentinel errors for the fare watch core.
// Callers match these with errors.Is; lower layers wrap them with %w and
// add context (HTTP status, offending candidate, provider message).
var (
	// ErrInvalidPlan indicates the watch plan failed validation or could not
	// be loaded. Fatal: no run is attempted.
	ErrInvalidPlan = errors.New("invalid watch plan")

	// ErrInvalidQuery indicates the provider rejected a query as malformed
	// (HTTP 400/404). A malformed query is a plan defect that would recur on
	// every candidate, so it aborts the whole run.
	ErrInvalidQuery = errors.New("provider rejected query")

	// ErrProviderUnavailable indicates a transient provider failure survived
	// all retries. Recovered per candidate: the run continues with zero
	// offers for that candidate.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrAuthentication indicates the provider auth token could not be
	// obtained or refreshed. Retried like a transient failure; repeated
	// refresh failures surface as ErrProviderUnavailable.
	ErrAuthentication = errors.New("provider authentication failed")
)
