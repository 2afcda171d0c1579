// internal/models/fieldmapping.go
package models

// FieldAssignment is one label→value decision made by the field mapper.
type FieldAssignment struct {
	Label    string      `json:"label"`
	ValueKey string      `json:"valueKey"`
	Value    interface{} `json:"value"`
	Score    float64     `json:"score"`
	// Method records how the score was computed: "embedding" or "keyword".
	Method string `json:"method"`
}

// FieldMapping is the per-call result of mapping a template's field labels
// onto a value store. It is recomputed per request and never persisted.
type FieldMapping struct {
	Assignments []FieldAssignment `json:"assignments"`
	// LowConfidence lists labels whose best score fell strictly below the
	// configured threshold. Flagged labels still carry their best-guess
	// assignment; the flag is surfaced, never resolved, by the engine.
	LowConfidence []string `json:"lowConfidence"`
}

// Values flattens the mapping into label→value form for a renderer.
func (m *FieldMapping) Values() map[string]interface{} {
	out := make(map[string]interface{}, len(m.Assignments))
	for _, a := range m.Assignments {
		out[a.Label] = a.Value
	}
	return out
}
