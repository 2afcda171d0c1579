// internal/engine/esg/emissions.go

// Package esg holds the emissions estimation and load-shift advice logic
// behind the esg worker tasks.
package esg

import (
	"fmt"
	"math"

	"compliance-copilot/internal/common/errors"
)

// DefaultGridFactor is the German grid average in kg CO2 per kWh.
const DefaultGridFactor = 0.42

// scope3Ratio approximates upstream emissions as a share of scope 2.
const scope3Ratio = 0.15

// EmissionsEstimate is the result of an emissions calculation. All tonnage
// figures are rounded to three decimals.
type EmissionsEstimate struct {
	TCO2e     float64            `json:"tCO2e"`
	Scope2    float64            `json:"scope2"`
	Scope3    *float64           `json:"scope3,omitempty"`
	Note      string             `json:"note"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// EstimateEmissions converts energy consumption into tonnes CO2 equivalent.
// A non-positive grid factor falls back to the German average.
func EstimateEmissions(kWh, gridFactor float64, includeScope3 bool) (*EmissionsEstimate, error) {
	if kWh <= 0 {
		return nil, errors.NewBusinessRuleError(
			"Energy consumption must be positive",
			fmt.Sprintf("got kWh=%v", kWh))
	}
	if gridFactor <= 0 {
		gridFactor = DefaultGridFactor
	}

	scope2 := kWh * gridFactor / 1000

	estimate := &EmissionsEstimate{
		Scope2: round3(scope2),
		Breakdown: map[string]float64{
			"electricity_scope2": round3(scope2),
		},
	}

	total := scope2
	if includeScope3 {
		scope3 := scope2 * scope3Ratio
		total += scope3
		rounded := round3(scope3)
		estimate.Scope3 = &rounded
		estimate.Breakdown["upstream_scope3"] = rounded
	}
	estimate.TCO2e = round3(total)

	estimate.Note = fmt.Sprintf("Calculated using grid emission factor %g kg CO2/kWh", gridFactor)
	if gridFactor == DefaultGridFactor {
		estimate.Note += " (Germany average)"
	}

	return estimate, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
