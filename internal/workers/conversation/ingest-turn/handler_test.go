// internal/workers/conversation/ingest-turn/handler_test.go
package ingestturn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-copilot/internal/capability/reasoning"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/engine/intent"
	"compliance-copilot/internal/engine/recipes"
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
			RequiredSlots: []string{"kWh", "city"},
		}},
		nil,
		map[string]string{
			"kWh":  "What is your total energy consumption (kWh) for the reporting period?",
			"city": "In which city is the site located?",
		},
	)
	require.NoError(t, err)

	manager := submission.NewManager(
		submission.NewMemoryStore(),
		catalog,
		intent.NewClassifier(reasoning.NewDisabledReasoner(), log),
		log,
	)
	return NewHandler(LoadConfig(), manager, log)
}

func TestHandler_Execute_FirstTurnCreatesSubmission(t *testing.T) {
	h := createTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		UserID: "user-1",
		Text:   "We need an energy audit",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, output.SubmissionID)
	assert.Equal(t, "collecting", output.Stage)
	assert.Equal(t, "energy-audit", output.Intent)
	assert.Equal(t, "energy-audit-basic", output.RecipeID)
	assert.Equal(t, []string{"kWh", "city"}, output.MissingSlots)
	assert.Equal(t, []string{
		"What is your total energy consumption (kWh) for the reporting period?",
		"In which city is the site located?",
	}, output.MissingSlotPrompts)
}

func TestHandler_Execute_FollowUpTurnCompletesCollection(t *testing.T) {
	h := createTestHandler(t)
	ctx := context.Background()

	first, err := h.Execute(ctx, &Input{UserID: "user-1", Text: "We need an energy audit"})
	require.NoError(t, err)

	second, err := h.Execute(ctx, &Input{
		SubmissionID: first.SubmissionID,
		UserID:       "user-1",
		Text:         "We used 3200 kWh in Flensburg",
	})
	require.NoError(t, err)

	assert.Equal(t, first.SubmissionID, second.SubmissionID)
	assert.Equal(t, "ready", second.Stage)
	assert.Empty(t, second.MissingSlots)
	assert.Equal(t, float64(3200), second.Slots["kWh"])
	assert.Equal(t, "Flensburg", second.Slots["city"])
}

func TestHandler_Execute_EmptyText(t *testing.T) {
	h := createTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{UserID: "user-1", Text: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_TURN_FORMAT")
}
