// internal/workers/forms/select-template/validation.go
package selecttemplate

import "compliance-copilot/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"templateId": {
				Type:        "string",
				Description: "Form template ID to resolve directly",
				MaxLength:   intPtr(128),
			},
			"recipeId": {
				Type:        "string",
				Description: "Recipe whose declared forms should be resolved",
				MaxLength:   intPtr(128),
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
