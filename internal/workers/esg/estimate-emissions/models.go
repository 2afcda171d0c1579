// internal/workers/esg/estimate-emissions/models.go
package estimateemissions

// Input carries the consumption figure. GridFactor zero means the
// configured default applies.
type Input struct {
	KWh           float64 `json:"kWh"`
	GridFactor    float64 `json:"gridFactor"`
	IncludeScope3 bool    `json:"includeScope3"`
}

type Output struct {
	TCO2e     float64            `json:"tCO2e"`
	Scope2    float64            `json:"scope2"`
	Scope3    *float64           `json:"scope3,omitempty"`
	Note      string             `json:"note"`
	Breakdown map[string]float64 `json:"breakdown"`
}
