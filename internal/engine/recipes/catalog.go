// internal/engine/recipes/catalog.go

// Package recipes loads the closed recipe catalog from YAML at startup.
// The catalog is read-only at runtime and safe for concurrent readers.
package recipes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"compliance-copilot/internal/models"
)

// CitationDetail carries the human-readable text behind a citation key.
type CitationDetail struct {
	Requirement string   `yaml:"requirement" mapstructure:"requirement"`
	Evidence    []string `yaml:"evidence" mapstructure:"evidence"`
}

// questionTemplate fallback for slots without a configured template.
const genericQuestion = "Could you provide a value for '%s'?"

// Catalog is the loaded recipe configuration.
type Catalog struct {
	recipes   []models.Recipe
	byIntent  map[models.Intent]*models.Recipe
	byID      map[string]*models.Recipe
	citations map[string]CitationDetail
	questions map[string]string
}

// catalogFile mirrors the recipes YAML layout.
type catalogFile struct {
	Recipes   []models.Recipe           `yaml:"recipes"`
	Citations map[string]CitationDetail `yaml:"citations"`
	Questions map[string]string         `yaml:"questions"`
}

// Load reads the catalog from a YAML file. Decoding goes through yaml.v3
// directly because citation and question keys are case-sensitive ("kWh",
// "CSRD-ESRS-E1"), and viper folds map keys to lower case.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe catalog: %w", err)
	}

	return New(file.Recipes, file.Citations, file.Questions)
}

// New builds a catalog from already-parsed configuration. Exposed for tests
// and the recipe-lint tool.
func New(recipeList []models.Recipe, citations map[string]CitationDetail, questions map[string]string) (*Catalog, error) {
	c := &Catalog{
		recipes:   recipeList,
		byIntent:  make(map[models.Intent]*models.Recipe, len(recipeList)),
		byID:      make(map[string]*models.Recipe, len(recipeList)),
		citations: citations,
		questions: questions,
	}
	if c.citations == nil {
		c.citations = map[string]CitationDetail{}
	}
	if c.questions == nil {
		c.questions = map[string]string{}
	}

	for i := range c.recipes {
		r := &c.recipes[i]
		if r.ID == "" {
			return nil, fmt.Errorf("recipe %d has no id", i)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate recipe id %q", r.ID)
		}
		c.byID[r.ID] = r

		if r.Intent != models.IntentNone {
			if _, dup := c.byIntent[r.Intent]; dup {
				return nil, fmt.Errorf("intent %q bound by more than one recipe", r.Intent)
			}
			c.byIntent[r.Intent] = r
		}

		for _, key := range r.Citations {
			if _, ok := c.citations[key]; !ok {
				return nil, fmt.Errorf("recipe %q references unknown citation %q", r.ID, key)
			}
		}
	}

	return c, nil
}

// Lookup resolves an intent to its recipe. A missing entry is a normal
// outcome ("no workflow selected yet"), not an error.
func (c *Catalog) Lookup(intent models.Intent) (*models.Recipe, bool) {
	r, ok := c.byIntent[intent]
	return r, ok
}

// Get resolves a recipe by identifier.
func (c *Catalog) Get(id string) (*models.Recipe, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// All returns every recipe in declaration order.
func (c *Catalog) All() []models.Recipe {
	return c.recipes
}

// CitationDetail returns the configured text for a citation key.
func (c *Catalog) CitationDetail(key string) (CitationDetail, bool) {
	d, ok := c.citations[key]
	return d, ok
}

// Question returns the clarifying-question prompt for a missing slot name.
func (c *Catalog) Question(slotName string) string {
	if q, ok := c.questions[slotName]; ok {
		return q
	}
	return fmt.Sprintf(genericQuestion, slotName)
}

// HasQuestion reports whether a dedicated question template exists for the
// slot name, as opposed to the generic fallback prompt.
func (c *Catalog) HasQuestion(slotName string) bool {
	_, ok := c.questions[slotName]
	return ok
}
