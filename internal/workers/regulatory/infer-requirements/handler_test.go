// internal/workers/regulatory/infer-requirements/handler_test.go
package inferrequirements

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/engine/recipes"
	"compliance-copilot/internal/engine/regulatory"
	"compliance-copilot/internal/engine/submission"
	"compliance-copilot/internal/models"
)

func createTestHandler(t *testing.T) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)

	catalog, err := recipes.New(
		[]models.Recipe{{
			ID:            "energy-audit-basic",
			Name:          "Energy Audit",
			Intent:        models.IntentEnergyAudit,
			RequiredSlots: []string{"kWh"},
			Citations:     []string{"CSRD-ESRS-E1", "EED-ART8"},
		}},
		map[string]recipes.CitationDetail{
			"CSRD-ESRS-E1": {Requirement: "Report scope 1 and 2 emissions", Evidence: []string{"energy bills"}},
			"EED-ART8":     {Requirement: "Conduct an energy audit every four years"},
		},
		nil,
	)
	require.NoError(t, err)

	inferrer := regulatory.NewInferrer(catalog, nil, nil, log)
	return NewHandler(LoadConfig(), inferrer, submission.NewMemoryStore(), log)
}

func TestHandler_Execute_ConfiguredCitationsInOrder(t *testing.T) {
	h := createTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{RecipeID: "energy-audit-basic"})
	require.NoError(t, err)

	require.Len(t, output.Citations, 2)
	assert.Equal(t, "CSRD-ESRS-E1", output.Citations[0].Key)
	assert.Equal(t, "EED-ART8", output.Citations[1].Key)
	for _, c := range output.Citations {
		assert.Equal(t, models.CitationConfigured, c.Origin)
		assert.NotEmpty(t, c.Requirement)
	}
}

func TestHandler_Execute_UnknownRecipe(t *testing.T) {
	h := createTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{RecipeID: "no-such-recipe"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECIPE_NOT_FOUND")
}

func TestHandler_Execute_MissingRecipeID(t *testing.T) {
	h := createTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BUSINESS_RULE_VIOLATION")
}

func TestHandler_Execute_UnknownSubmission(t *testing.T) {
	h := createTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{
		RecipeID:     "energy-audit-basic",
		SubmissionID: "missing",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUBMISSION_NOT_FOUND")
}
