// Package domain contains the core business entities and rules for the fare
// watch system. These entities are provider-agnostic and form the foundation
// upon which all other components are built.
package domain

import (
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the wire format for calendar dates throughout the system.
const DateLayout = "2006-01-02"

// StayDuration bounds the length of the stay in whole days.
type StayDuration struct {
	// MinDays is the shortest acceptable stay (inclusive)
	MinDays int `json:"min_days"`

	// MaxDays is the longest acceptable stay (inclusive)
	MaxDays int `json:"max_days"`
}

// SearchPlan is the declarative configuration for one fare watch.
// It is immutable once loaded and validated; a run never mutates its plan.
type SearchPlan struct {
	// Origin is the IATA code of the departure airport (e.g., "SFO")
	Origin string `json:"origin"`

	// Destination is the IATA code of the arrival airport (e.g., "OGG")
	Destination string `json:"destination"`

	// StartDate is the preferred departure date in YYYY-MM-DD format
	StartDate string `json:"start_date"`

	// StartDateFlexibility widens the departure window to
	// [StartDate-N days, StartDate+N days]
	StartDateFlexibility int `json:"start_date_flexibility"`

	// StayDuration bounds the return date relative to each departure
	StayDuration StayDuration `json:"stay_duration"`

	// MaxPrice is the fare ceiling in Currency units
	MaxPrice float64 `json:"max_price"`

	// Currency is the ISO 4217 currency code for prices (default: USD)
	Currency string `json:"currency"`

	// Adults is the number of adult passengers (default: 1)
	Adults int `json:"adults"`

	// MaxResults caps the number of offers kept after ranking (default: 50)
	MaxResults int `json:"max_results"`

	// NonstopOnly restricts results to itineraries with zero stops
	NonstopOnly bool `json:"nonStop"`
}

// airportCodeRegex matches valid IATA airport codes (3 uppercase letters).
var airportCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// currencyCodeRegex matches ISO 4217 currency codes (3 uppercase letters).
var currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// dateRegex matches dates in YYYY-MM-DD format.
var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validate checks that the plan is well-formed.
// Returns a wrapped ErrInvalidPlan error if validation fails.
func (p *SearchPlan) Validate() error {
	if p.Origin == "" {
		return fmt.Errorf("%w: origin is required", ErrInvalidPlan)
	}
	if !airportCodeRegex.MatchString(p.Origin) {
		return fmt.Errorf("%w: origin must be a valid 3-letter IATA code, got %q", ErrInvalidPlan, p.Origin)
	}

	if p.Destination == "" {
		return fmt.Errorf("%w: destination is required", ErrInvalidPlan)
	}
	if !airportCodeRegex.MatchString(p.Destination) {
		return fmt.Errorf("%w: destination must be a valid 3-letter IATA code, got %q", ErrInvalidPlan, p.Destination)
	}

	if p.Origin == p.Destination {
		return fmt.Errorf("%w: origin and destination must be different", ErrInvalidPlan)
	}

	if p.StartDate == "" {
		return fmt.Errorf("%w: start_date is required", ErrInvalidPlan)
	}
	if !dateRegex.MatchString(p.StartDate) {
		return fmt.Errorf("%w: start_date must be in YYYY-MM-DD format, got %q", ErrInvalidPlan, p.StartDate)
	}
	if _, err := time.Parse(DateLayout, p.StartDate); err != nil {
		return fmt.Errorf("%w: start_date is not a valid date: %s", ErrInvalidPlan, p.StartDate)
	}

	if p.StartDateFlexibility < 0 {
		return fmt.Errorf("%w: start_date_flexibility must be non-negative, got %d", ErrInvalidPlan, p.StartDateFlexibility)
	}

	if p.StayDuration.MinDays < 0 {
		return fmt.Errorf("%w: stay_duration.min_days must be non-negative, got %d", ErrInvalidPlan, p.StayDuration.MinDays)
	}
	if p.StayDuration.MinDays > p.StayDuration.MaxDays {
		return fmt.Errorf("%w: stay_duration.min_days (%d) exceeds max_days (%d)",
			ErrInvalidPlan, p.StayDuration.MinDays, p.StayDuration.MaxDays)
	}

	if p.MaxPrice <= 0 {
		return fmt.Errorf("%w: max_price must be positive, got %v", ErrInvalidPlan, p.MaxPrice)
	}

	if p.Currency != "" && !currencyCodeRegex.MatchString(p.Currency) {
		return fmt.Errorf("%w: currency must be a 3-letter ISO code, got %q", ErrInvalidPlan, p.Currency)
	}

	if p.Adults < 1 {
		return fmt.Errorf("%w: adults must be at least 1", ErrInvalidPlan)
	}
	if p.Adults > 9 {
		return fmt.Errorf("%w: adults cannot exceed 9", ErrInvalidPlan)
	}

	if p.MaxResults < 1 {
		return fmt.Errorf("%w: max_results must be at least 1", ErrInvalidPlan)
	}

	return nil
}

// SetDefaults applies default values to empty optional fields.
func (p *SearchPlan) SetDefaults() {
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Adults == 0 {
		p.Adults = 1
	}
	if p.MaxResults == 0 {
		p.MaxResults = 50
	}
}

// Route returns the plan's route as "ORG -> DST" for logs and summaries.
func (p *SearchPlan) Route() string {
	return p.Origin + " -> " + p.Destination
}
