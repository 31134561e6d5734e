// Package usecase contains the business logic for fare watch runs: offer
// evaluation, run orchestration, and summary formatting.
package usecase

import (
	"sort"

	"github.com/farewatch/farewatch/internal/domain"
)

// stopNudge separates equal-priced offers by stop count in the scalar rank
// score. It is far below real fare granularity (0.01) even at the maximum
// plausible stop count, so it never reorders offers with different prices.
const stopNudge = 0.001

// Evaluation is the evaluator's verdict over one batch of offers.
type Evaluation struct {
	// Accepted holds offers that passed all constraints, in final rank
	// order, truncated to the plan's max_results
	Accepted []domain.EvaluatedOffer

	// Rejected holds the offers that failed a constraint, with reasons,
	// in original provider order
	Rejected []domain.EvaluatedOffer
}

// RejectionCounts tallies rejections by reason.
func (e Evaluation) RejectionCounts() map[domain.RejectionReason]int {
	if len(e.Rejected) == 0 {
		return nil
	}
	counts := make(map[domain.RejectionReason]int)
	for _, r := range e.Rejected {
		counts[r.RejectionReason]++
	}
	return counts
}

// Evaluate applies the plan's constraints to raw offers and ranks the
// survivors.
//
// Constraints, per offer: price must not exceed max_price; a nonstop-only
// plan rejects any itinerary with stops; the provider must report at least
// as many bookable seats as requested adults. Rejections carry a reason and
// are never run-level errors.
//
// Accepted offers sort ascending by (price, stops); equal keys keep their
// input order, so offers from earlier-generated candidates win ties. The
// accepted list is truncated to max_results after sorting — the cheapest
// survivors are kept, not the first found.
//
// Does NOT mutate the input slice.
func Evaluate(offers []domain.Offer, plan domain.SearchPlan) Evaluation {
	var eval Evaluation

	for _, offer := range offers {
		if reason, ok := rejectOffer(offer, plan); ok {
			eval.Rejected = append(eval.Rejected, domain.EvaluatedOffer{
				Offer:           offer,
				Accepted:        false,
				RejectionReason: reason,
			})
			continue
		}
		eval.Accepted = append(eval.Accepted, domain.EvaluatedOffer{
			Offer:     offer,
			Accepted:  true,
			RankScore: RankScore(offer),
		})
	}

	sort.SliceStable(eval.Accepted, func(i, j int) bool {
		a, b := eval.Accepted[i], eval.Accepted[j]
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.TotalStops() < b.TotalStops()
	})

	if len(eval.Accepted) > plan.MaxResults {
		eval.Accepted = eval.Accepted[:plan.MaxResults]
	}

	return eval
}

// rejectOffer returns the rejection reason for an offer, if any.
// Checks run in constraint order: price, stops, capacity.
func rejectOffer(offer domain.Offer, plan domain.SearchPlan) (domain.RejectionReason, bool) {
	if offer.Price > plan.MaxPrice {
		return domain.ReasonPriceExceeded, true
	}
	if plan.NonstopOnly && offer.HasStops() {
		return domain.ReasonStopsDisallowed, true
	}
	if offer.BookableSeats < plan.Adults {
		return domain.ReasonCapacityInsufficient, true
	}
	return "", false
}

// RankScore computes the scalar ordering key for an accepted offer: the
// price, with the stop count nudging equal prices apart. Lower is better.
func RankScore(offer domain.Offer) float64 {
	return offer.Price + float64(offer.TotalStops())*stopNudge
}
