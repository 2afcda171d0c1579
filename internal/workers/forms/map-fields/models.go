// internal/workers/forms/map-fields/models.go
package mapfields

import "compliance-copilot/internal/models"

// Input names the form field labels to fill and where the values come
// from. UserID is optional; without it only submission slots are mapped.
type Input struct {
	FormID       string   `json:"formId"`
	Labels       []string `json:"labels"`
	SubmissionID string   `json:"submissionId"`
	UserID       string   `json:"userId"`
}

// Output is the full mapping plus a flattened label→value object for
// direct use by a form renderer.
type Output struct {
	FormID        string                   `json:"formId"`
	Assignments   []models.FieldAssignment `json:"assignments"`
	Values        map[string]interface{}   `json:"values"`
	LowConfidence []string                 `json:"lowConfidence"`
}
