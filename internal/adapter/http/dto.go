package http

import (
	"github.com/farewatch/farewatch/internal/domain"
)

// SearchRequest is the optional plan override for POST /api/v1/search.
// Omitted fields keep their value from the configured default plan.
type SearchRequest struct {
	Origin          string   `json:"origin,omitempty"`
	Destination     string   `json:"destination,omitempty"`
	StartDate       string   `json:"start_date,omitempty"`
	FlexibilityDays *int     `json:"flexibility_days,omitempty"`
	MinStayDays     *int     `json:"min_stay_days,omitempty"`
	MaxStayDays     *int     `json:"max_stay_days,omitempty"`
	MaxPrice        *float64 `json:"max_price,omitempty"`
	Currency        string   `json:"currency,omitempty"`
	Adults          *int     `json:"adults,omitempty"`
	MaxResults      *int     `json:"max_results,omitempty"`
	NonstopOnly     *bool    `json:"nonstop_only,omitempty"`
}

// MergeInto overlays the request's set fields on a base plan.
// Pointer fields distinguish "absent" from a deliberate zero.
func (r *SearchRequest) MergeInto(base domain.SearchPlan) domain.SearchPlan {
	plan := base

	if r.Origin != "" {
		plan.Origin = r.Origin
	}
	if r.Destination != "" {
		plan.Destination = r.Destination
	}
	if r.StartDate != "" {
		plan.StartDate = r.StartDate
	}
	if r.FlexibilityDays != nil {
		plan.StartDateFlexibility = *r.FlexibilityDays
	}
	if r.MinStayDays != nil {
		plan.StayDuration.MinDays = *r.MinStayDays
	}
	if r.MaxStayDays != nil {
		plan.StayDuration.MaxDays = *r.MaxStayDays
	}
	if r.MaxPrice != nil {
		plan.MaxPrice = *r.MaxPrice
	}
	if r.Currency != "" {
		plan.Currency = r.Currency
	}
	if r.Adults != nil {
		plan.Adults = *r.Adults
	}
	if r.MaxResults != nil {
		plan.MaxResults = *r.MaxResults
	}
	if r.NonstopOnly != nil {
		plan.NonstopOnly = *r.NonstopOnly
	}

	return plan
}

// Telegram webhook payload. Only the fields the command dispatcher needs.

// Update is one incoming Bot API update.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}
