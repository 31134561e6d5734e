package domain

import (
	"fmt"
	"time"
)

// DateCandidate is one (departure, return) date pair to be priced.
// Candidates are derived from the plan, never persisted, and regenerated
// fresh on every run.
type DateCandidate struct {
	// Departure is the outbound date in YYYY-MM-DD format
	Departure string `json:"departure"`

	// Return is the inbound date in YYYY-MM-DD format
	Return string `json:"return"`
}

// String renders the candidate as "2025-07-28 -> 2025-08-04".
func (c DateCandidate) String() string {
	return c.Departure + " -> " + c.Return
}

// ExpandDateWindow expands a plan into the full ordered set of date
// candidates: for each departure offset in [-flexibility, +flexibility]
// ascending, and each stay duration in [min_days, max_days] ascending, one
// (departure, departure+duration) pair.
//
// The result is a pure function of the plan: finite, deterministic, and
// (2*flexibility+1) * (max_days-min_days+1) entries long. The ordering is
// significant — it defines query order and breaks ranking ties (an offer
// from an earlier candidate wins over an equal offer from a later one).
func ExpandDateWindow(plan SearchPlan) ([]DateCandidate, error) {
	if plan.StartDateFlexibility < 0 {
		return nil, fmt.Errorf("%w: start_date_flexibility must be non-negative, got %d",
			ErrInvalidPlan, plan.StartDateFlexibility)
	}
	if plan.StayDuration.MinDays > plan.StayDuration.MaxDays {
		return nil, fmt.Errorf("%w: stay_duration.min_days (%d) exceeds max_days (%d)",
			ErrInvalidPlan, plan.StayDuration.MinDays, plan.StayDuration.MaxDays)
	}

	start, err := time.Parse(DateLayout, plan.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date is not a valid date: %s", ErrInvalidPlan, plan.StartDate)
	}

	flex := plan.StartDateFlexibility
	durations := plan.StayDuration.MaxDays - plan.StayDuration.MinDays + 1
	candidates := make([]DateCandidate, 0, (2*flex+1)*durations)

	for offset := -flex; offset <= flex; offset++ {
		departure := start.AddDate(0, 0, offset)
		for stay := plan.StayDuration.MinDays; stay <= plan.StayDuration.MaxDays; stay++ {
			candidates = append(candidates, DateCandidate{
				Departure: departure.Format(DateLayout),
				Return:    departure.AddDate(0, 0, stay).Format(DateLayout),
			})
		}
	}

	return candidates, nil
}
