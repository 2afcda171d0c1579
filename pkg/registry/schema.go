// pkg/registry/schema.go
package registry

import "compliance-copilot/internal/common/validation"

// TemplateRegistry is the catalog of form templates the engine can fill.
// Templates are referenced by ID from recipe form lists.
type TemplateRegistry struct {
	Version     string         `json:"version"`
	LastUpdated string         `json:"lastUpdated"`
	Templates   []FormTemplate `json:"templates"`
}

// FormTemplate describes one fillable regulatory form: the labels of its
// fields in document order, plus an optional schema constraining the
// values mapped into those fields.
type FormTemplate struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Regulation  string                 `json:"regulation,omitempty"`
	Version     string                 `json:"version,omitempty"`
	Labels      []string               `json:"labels"`
	Schema      *validation.JSONSchema `json:"schema,omitempty"`
}
