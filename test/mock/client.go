// Package mock provides test doubles for the fare watch system.
// These mocks are designed for integration testing where we need
// configurable behavior (delays, errors, specific responses).
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/farewatch/farewatch/internal/domain"
)

// OfferClient is a configurable stub implementation of domain.OfferClient.
// It supports configurable delays, errors, and per-candidate responses for
// testing timeout behavior and partial failures.
type OfferClient struct {
	offersFor func(domain.DateCandidate) []domain.Offer
	err       error
	delay     time.Duration

	mu        sync.Mutex
	callCount int
}

// NewOfferClient creates a stub client. Configure it with the builder
// pattern methods before use.
func NewOfferClient() *OfferClient {
	return &OfferClient{}
}

// WithOffers configures the client to return the same offers for every
// candidate.
func (c *OfferClient) WithOffers(offers []domain.Offer) *OfferClient {
	c.offersFor = func(domain.DateCandidate) []domain.Offer { return offers }
	return c
}

// WithOffersFor configures a per-candidate response function.
func (c *OfferClient) WithOffersFor(fn func(domain.DateCandidate) []domain.Offer) *OfferClient {
	c.offersFor = fn
	return c
}

// WithError configures the client to return the given error.
func (c *OfferClient) WithError(err error) *OfferClient {
	c.err = err
	return c
}

// WithDelay configures the client to wait the given duration before
// responding. This is useful for testing budget behavior.
func (c *OfferClient) WithDelay(d time.Duration) *OfferClient {
	c.delay = d
	return c
}

// CallCount returns how many times Search was invoked.
func (c *OfferClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callCount
}

// Search implements domain.OfferClient.Search.
// It respects context cancellation, applies the configured delay, and
// returns the configured offers or error.
func (c *OfferClient) Search(ctx context.Context, candidate domain.DateCandidate, _ domain.SearchPlan) ([]domain.Offer, error) {
	c.mu.Lock()
	c.callCount++
	c.mu.Unlock()

	if c.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.delay):
		}
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if c.err != nil {
		return nil, c.err
	}

	if c.offersFor == nil {
		return nil, nil
	}
	return c.offersFor(candidate), nil
}

// SampleOffer builds a plausible round-trip offer for a candidate.
func SampleOffer(candidate domain.DateCandidate, id string, price float64, stops int) domain.Offer {
	dep, _ := time.Parse(domain.DateLayout, candidate.Departure)
	ret, _ := time.Parse(domain.DateLayout, candidate.Return)
	dep = dep.Add(8 * time.Hour)
	ret = ret.Add(13 * time.Hour)

	inbound := domain.Leg{
		CarrierCode: "UA",
		Origin:      "OGG",
		Destination: "SFO",
		DepartureAt: ret,
		ArrivalAt:   ret.Add(5 * time.Hour),
	}
	return domain.Offer{
		ID:       id,
		Price:    price,
		Currency: "USD",
		Outbound: domain.Leg{
			CarrierCode: "UA",
			Origin:      "SFO",
			Destination: "OGG",
			DepartureAt: dep,
			ArrivalAt:   dep.Add(5 * time.Hour),
			Stops:       stops,
		},
		Inbound:           &inbound,
		ValidatingCarrier: "UA",
		BookableSeats:     4,
	}
}

// SampleOffers builds n offers for a candidate with ascending prices.
func SampleOffers(candidate domain.DateCandidate, n int, basePrice float64) []domain.Offer {
	offers := make([]domain.Offer, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%d", candidate.Departure, i)
		offers = append(offers, SampleOffer(candidate, id, basePrice+float64(i)*25, 0))
	}
	return offers
}

// Ensure OfferClient implements the interface.
var _ domain.OfferClient = (*OfferClient)(nil)
