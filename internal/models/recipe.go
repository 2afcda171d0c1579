// internal/models/recipe.go
package models

// Recipe binds an intent to the data and documents a compliance workflow
// needs. Recipes are loaded once at startup and are read-only at runtime.
type Recipe struct {
	ID            string   `json:"id" yaml:"id" mapstructure:"id"`
	Name          string   `json:"name" yaml:"name" mapstructure:"name"`
	Intent        Intent   `json:"intent" yaml:"intent" mapstructure:"intent"`
	RequiredSlots []string `json:"requiredSlots" yaml:"required_slots" mapstructure:"required_slots"`
	Forms         []string `json:"forms" yaml:"forms" mapstructure:"forms"`
	Steps         []string `json:"steps" yaml:"steps" mapstructure:"steps"`
	Citations     []string `json:"citations" yaml:"citations" mapstructure:"citations"`
	EstimatedTime string   `json:"estimatedTime" yaml:"estimated_time" mapstructure:"estimated_time"`
}

// MissingSlots returns the required slot names absent from the given slot
// mapping, in the recipe's declaration order.
func (r *Recipe) MissingSlots(slots Slots) []string {
	missing := []string{}
	for _, name := range r.RequiredSlots {
		if _, ok := slots[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
