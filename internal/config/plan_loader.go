package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/farewatch/farewatch/internal/domain"
)

// planSection is the key under which the plan lives in the config file.
const planSection = "flight_search"

// planFile mirrors the JSON plan layout on disk.
type planFile struct {
	Origin          string  `mapstructure:"origin"`
	Destination     string  `mapstructure:"destination"`
	StartDate       string  `mapstructure:"start_date"`
	FlexibilityDays int     `mapstructure:"flexibility_days"`
	MinStayDays     int     `mapstructure:"min_stay_days"`
	MaxStayDays     int     `mapstructure:"max_stay_days"`
	MaxPrice        float64 `mapstructure:"max_price"`
	Currency        string  `mapstructure:"currency"`
	Adults          int     `mapstructure:"adults"`
	MaxResults      int     `mapstructure:"max_results"`
	NonstopOnly     bool    `mapstructure:"nonstop_only"`
}

// LoadPlan reads the default search plan from a JSON file, applies defaults,
// and validates it. Plan problems wrap domain.ErrInvalidPlan.
func LoadPlan(path string) (domain.SearchPlan, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return domain.SearchPlan{}, fmt.Errorf("read plan file %s: %w", path, err)
	}

	if !v.IsSet(planSection) {
		return domain.SearchPlan{}, fmt.Errorf("%w: plan file %s has no %q section",
			domain.ErrInvalidPlan, path, planSection)
	}

	var raw planFile
	if err := v.UnmarshalKey(planSection, &raw); err != nil {
		return domain.SearchPlan{}, fmt.Errorf("%w: decode plan file %s: %v",
			domain.ErrInvalidPlan, path, err)
	}

	plan := domain.SearchPlan{
		Origin:               raw.Origin,
		Destination:          raw.Destination,
		StartDate:            raw.StartDate,
		StartDateFlexibility: raw.FlexibilityDays,
		StayDuration: domain.StayDuration{
			MinDays: raw.MinStayDays,
			MaxDays: raw.MaxStayDays,
		},
		MaxPrice:    raw.MaxPrice,
		Currency:    raw.Currency,
		Adults:      raw.Adults,
		MaxResults:  raw.MaxResults,
		NonstopOnly: raw.NonstopOnly,
	}
	plan.SetDefaults()

	if err := plan.Validate(); err != nil {
		return domain.SearchPlan{}, err
	}
	return plan, nil
}
