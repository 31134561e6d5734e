package domain

import "time"

// Leg is one direction of a round-trip itinerary (all its segments
// collapsed): first departure, last arrival, and the total stop count.
type Leg struct {
	// CarrierCode is the IATA code of the marketing carrier on the first segment
	CarrierCode string `json:"carrierCode"`

	// Origin is the IATA code of the first departure airport
	Origin string `json:"origin"`

	// Destination is the IATA code of the final arrival airport
	Destination string `json:"destination"`

	// DepartureAt is the first departure time as reported by the provider
	DepartureAt time.Time `json:"departureAt"`

	// ArrivalAt is the final arrival time as reported by the provider
	ArrivalAt time.Time `json:"arrivalAt"`

	// Stops is the number of stops on this leg (0 = nonstop)
	Stops int `json:"stops"`
}

// Offer is one priced itinerary returned by the pricing provider for a
// single date candidate. Ephemeral: owned by the query that produced it.
type Offer struct {
	// ID is the provider-assigned offer identifier
	ID string `json:"id"`

	// Price is the total fare for all passengers
	Price float64 `json:"price"`

	// Currency is the ISO 4217 code of Price
	Currency string `json:"currency"`

	// Outbound is the origin -> destination leg
	Outbound Leg `json:"outbound"`

	// Inbound is the return leg; nil for one-way offers
	Inbound *Leg `json:"inbound,omitempty"`

	// ValidatingCarrier is the IATA code of the ticketing airline
	ValidatingCarrier string `json:"validatingCarrier"`

	// BookableSeats is the number of seats bookable at this price
	BookableSeats int `json:"bookableSeats"`
}

// TotalStops returns the stop count summed over both legs.
func (o Offer) TotalStops() int {
	total := o.Outbound.Stops
	if o.Inbound != nil {
		total += o.Inbound.Stops
	}
	return total
}

// HasStops reports whether any leg of the itinerary makes a stop.
func (o Offer) HasStops() bool {
	if o.Outbound.Stops > 0 {
		return true
	}
	return o.Inbound != nil && o.Inbound.Stops > 0
}

// DepartureDate returns the outbound date in YYYY-MM-DD format.
func (o Offer) DepartureDate() string {
	return o.Outbound.DepartureAt.Format(DateLayout)
}

// ReturnDate returns the inbound date in YYYY-MM-DD format, or "" for
// one-way offers.
func (o Offer) ReturnDate() string {
	if o.Inbound == nil {
		return ""
	}
	return o.Inbound.DepartureAt.Format(DateLayout)
}

// RejectionReason explains why the evaluator rejected an offer.
// Recorded for observability; rejections are never run-level errors.
type RejectionReason string

// Rejection reasons.
const (
	// ReasonPriceExceeded: offer price is above the plan's max_price
	ReasonPriceExceeded RejectionReason = "price_exceeded"

	// ReasonStopsDisallowed: itinerary has stops and the plan is nonstop-only
	ReasonStopsDisallowed RejectionReason = "stops_disallowed"

	// ReasonCapacityInsufficient: fewer bookable seats than requested adults
	ReasonCapacityInsufficient RejectionReason = "capacity_insufficient"
)

// EvaluatedOffer is an Offer plus the evaluator's verdict.
// Never mutated after creation.
type EvaluatedOffer struct {
	Offer

	// Accepted reports whether the offer passed all plan constraints
	Accepted bool `json:"accepted"`

	// RejectionReason is set only when Accepted is false
	RejectionReason RejectionReason `json:"rejectionReason,omitempty"`

	// RankScore orders accepted offers: lower is better. Price dominates;
	// the stop count only nudges equal prices apart.
	RankScore float64 `json:"rankScore"`
}
