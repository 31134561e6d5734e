// Package testutil provides test helper functions for unit and integration tests.
package testutil

import (
	"testing"
	"time"

	"github.com/farewatch/farewatch/internal/domain"
)

// DefaultPlan returns a valid SFO to OGG plan with a 3-day flexible window
// and a 7-8 day stay, the canonical fixture used across tests.
func DefaultPlan() domain.SearchPlan {
	return domain.SearchPlan{
		Origin:               "SFO",
		Destination:          "OGG",
		StartDate:            "2025-07-31",
		StartDateFlexibility: 3,
		StayDuration:         domain.StayDuration{MinDays: 7, MaxDays: 8},
		MaxPrice:             600,
		Currency:             "USD",
		Adults:               1,
		MaxResults:           5,
	}
}

// MustParseDate parses a date string in YYYY-MM-DD format.
// It fails the test if parsing fails.
func MustParseDate(t *testing.T, dateStr string) time.Time {
	t.Helper()
	parsed, err := time.Parse(domain.DateLayout, dateStr)
	if err != nil {
		t.Fatalf("Failed to parse date %s: %v", dateStr, err)
	}
	return parsed
}

// Ptr returns a pointer to the given value.
// Useful for creating pointers to literals in tests.
func Ptr[T any](v T) *T {
	return &v
}
