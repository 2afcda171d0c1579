// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

func LoadRegistry(path string) (*TemplateRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TemplateRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse template registry %s: %w", path, err)
	}
	return &reg, nil
}

// Get returns the template with the given ID, or nil when unknown.
func (r *TemplateRegistry) Get(id string) *FormTemplate {
	for i := range r.Templates {
		if r.Templates[i].ID == id {
			return &r.Templates[i]
		}
	}
	return nil
}
