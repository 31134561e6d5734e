package domain

import "context"

//go:generate mockgen -source=client.go -destination=mock_client.go -package=domain

// OfferClient prices a single date candidate against the external provider.
// Implementations own authentication, retries, and pacing; the orchestrator
// only sees the error taxonomy:
//
//   - ErrProviderUnavailable: transient failure survived all retries —
//     treat as zero offers for this candidate and continue
//   - ErrInvalidQuery: the provider rejected the request as malformed —
//     abort the run
//
// An empty slice with a nil error is a valid "no flights on these dates"
// response.
type OfferClient interface {
	Search(ctx context.Context, candidate DateCandidate, plan SearchPlan) ([]Offer, error)
}
