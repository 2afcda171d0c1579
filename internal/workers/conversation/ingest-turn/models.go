// internal/workers/conversation/ingest-turn/models.go
package ingestturn

// Input is one conversation turn. SubmissionID may be empty on the first
// turn; the engine then creates a fresh submission.
type Input struct {
	SubmissionID string `json:"submissionId"`
	UserID       string `json:"userId"`
	Text         string `json:"text"`
}

// Output reflects the submission state after the turn was folded in.
type Output struct {
	SubmissionID       string                 `json:"submissionId"`
	Stage              string                 `json:"stage"`
	Intent             string                 `json:"intent"`
	RecipeID           string                 `json:"recipeId,omitempty"`
	Confidence         float64                `json:"confidence"`
	Slots              map[string]interface{} `json:"slots"`
	MissingSlots       []string               `json:"missingSlots"`
	MissingSlotPrompts []string               `json:"missingSlotPrompts"`
	IntentConflict     bool                   `json:"intentConflict,omitempty"`
}
