package booking

import "fmt"

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the total price in cents for the given parameters.
	Calculate(params PricingParams) (int64, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	NightlyRateCents int64
	Dates            DateRange
}

// NightlyPricingStrategy charges the nightly rate for every night of the stay.
type NightlyPricingStrategy struct {
	minNights int
}

// NewNightlyPricingStrategy creates a NightlyPricingStrategy that charges at least one night.
func NewNightlyPricingStrategy() *NightlyPricingStrategy {
	return &NightlyPricingStrategy{minNights: 1}
}

// Calculate computes nights × nightly rate.
func (s *NightlyPricingStrategy) Calculate(params PricingParams) (int64, error) {
	if params.NightlyRateCents < 0 {
		return 0, fmt.Errorf("nightly rate cannot be negative")
	}
	nights := params.Dates.Nights()
	if nights < s.minNights {
		nights = s.minNights
	}
	return int64(nights) * params.NightlyRateCents, nil
}
