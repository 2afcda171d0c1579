// internal/workers/regulatory/infer-requirements/models.go
package inferrequirements

import "compliance-copilot/internal/models"

// Input identifies the recipe to resolve citations for. SubmissionID is
// optional; when present, collected slots give the augmenter situational
// context.
type Input struct {
	RecipeID     string `json:"recipeId"`
	SubmissionID string `json:"submissionId"`
}

type Output struct {
	RecipeID  string            `json:"recipeId"`
	Citations []models.Citation `json:"citations"`
}
