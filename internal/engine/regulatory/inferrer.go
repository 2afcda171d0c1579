// internal/engine/regulatory/inferrer.go

// Package regulatory resolves the regulatory citations applicable to a bound
// recipe. The configured per-recipe citation table is the authoritative base;
// search and model augmentation only ever enrich it and any augmentation
// failure degrades silently to the base set.
package regulatory

import (
	"context"

	"compliance-copilot/internal/capability/reasoning"
	"compliance-copilot/internal/common/errors"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/engine/recipes"
	"compliance-copilot/internal/models"
)

// CitationText is requirement and evidence text for one citation key, as
// returned by a search backend.
type CitationText struct {
	Requirement string
	Evidence    []string
}

// Searcher looks up citation text by key in a search backend.
type Searcher interface {
	LookupCitation(ctx context.Context, key string) (*CitationText, error)
}

// Inferrer produces the citation list for a recipe. Both searcher and
// suggester may be nil, leaving only the configured citations.
type Inferrer struct {
	catalog   *recipes.Catalog
	searcher  Searcher
	suggester reasoning.CitationSuggester
	log       logger.Logger
}

func NewInferrer(catalog *recipes.Catalog, searcher Searcher, suggester reasoning.CitationSuggester, log logger.Logger) *Inferrer {
	return &Inferrer{
		catalog:   catalog,
		searcher:  searcher,
		suggester: suggester,
		log:       log,
	}
}

// Infer returns the citations for the given recipe: the configured set in
// declaration order, then any inferred additions de-duplicated by key.
func (inf *Inferrer) Infer(ctx context.Context, recipeID string, slots models.Slots) ([]models.Citation, error) {
	recipe, ok := inf.catalog.Get(recipeID)
	if !ok {
		return nil, errors.NewRecipeNotFoundError(recipeID)
	}

	citations := make([]models.Citation, 0, len(recipe.Citations))
	seen := make(map[string]bool, len(recipe.Citations))
	for _, key := range recipe.Citations {
		citations = append(citations, inf.resolve(ctx, key))
		seen[key] = true
	}

	if inf.suggester != nil && inf.suggester.Available() {
		inferred, err := inf.suggester.SuggestCitations(ctx, *recipe, slots)
		if err != nil {
			inf.log.Warn("Citation augmentation failed, keeping configured set", map[string]interface{}{
				"recipe_id": recipeID,
				"error":     err.Error(),
			})
		} else {
			for _, c := range inferred {
				if c.Key == "" || seen[c.Key] {
					continue
				}
				c.Origin = models.CitationInferred
				citations = append(citations, c)
				seen[c.Key] = true
			}
		}
	}

	return citations, nil
}

// resolve builds one configured citation, taking requirement text from the
// catalog first and the search backend second.
func (inf *Inferrer) resolve(ctx context.Context, key string) models.Citation {
	citation := models.Citation{Key: key, Origin: models.CitationConfigured}

	if detail, ok := inf.catalog.CitationDetail(key); ok {
		citation.Requirement = detail.Requirement
		citation.Evidence = detail.Evidence
	}

	if citation.Requirement == "" && inf.searcher != nil {
		text, err := inf.searcher.LookupCitation(ctx, key)
		switch {
		case err != nil:
			inf.log.Warn("Citation text lookup failed", map[string]interface{}{
				"citation_key": key,
				"error":        err.Error(),
			})
		case text != nil:
			citation.Requirement = text.Requirement
			citation.Evidence = text.Evidence
		}
	}

	return citation
}
