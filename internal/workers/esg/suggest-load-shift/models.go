// internal/workers/esg/suggest-load-shift/models.go
package suggestloadshift

// Input optionally names a location for a weather-aware recommendation.
// Without a city the advice falls back to average solar conditions.
type Input struct {
	KWhProfile map[string]float64 `json:"kWhProfile"`
	City       string             `json:"city"`
	Country    string             `json:"country"`
}

type Output struct {
	Recommendations  []string `json:"recommendations"`
	PotentialSavings float64  `json:"potentialSavings"`
	BestTimeSlots    []string `json:"bestTimeSlots"`
	SunHours         float64  `json:"sunHours"`
	WeatherSource    string   `json:"weatherSource"`
}
