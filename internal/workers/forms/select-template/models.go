// internal/workers/forms/select-template/models.go
package selecttemplate

// Input selects templates either directly by form ID or for all forms
// a recipe declares.
type Input struct {
	TemplateID string `json:"templateId,omitempty"`
	RecipeID   string `json:"recipeId,omitempty"`
}

type TemplateInfo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Regulation string   `json:"regulation,omitempty"`
	Labels     []string `json:"labels"`
}

type Output struct {
	Templates []TemplateInfo `json:"templates"`
}
