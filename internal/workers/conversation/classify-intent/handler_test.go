// internal/workers/conversation/classify-intent/handler_test.go
package classifyintent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-copilot/internal/capability/reasoning"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/engine/intent"
)

func createTestHandler(t *testing.T) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	classifier := intent.NewClassifier(reasoning.NewDisabledReasoner(), log)
	return NewHandler(LoadConfig(), classifier, log)
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		wantIntent     string
		wantConfidence float64
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:           "energy audit with slots",
			input:          &Input{Text: "We used 3200 kWh in Flensburg"},
			wantIntent:     "energy-audit",
			wantConfidence: 0.85,
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, float64(3200), output.Slots["kWh"])
				assert.Equal(t, "Flensburg", output.Slots["city"])
				assert.Equal(t, "lexical", output.Source)
			},
		},
		{
			name:           "gdpr record of processing",
			input:          &Input{Text: "I need our GDPR Article 30 record"},
			wantIntent:     "processing-record",
			wantConfidence: 0.90,
		},
		{
			name:           "ai act risk assessment",
			input:          &Input{Text: "Start a high-risk AI assessment"},
			wantIntent:     "ai-risk-assessment",
			wantConfidence: 0.88,
		},
		{
			name:           "no recognizable intent",
			input:          &Input{Text: "What is the weather like?"},
			wantIntent:     "",
			wantConfidence: 0,
			validateOutput: func(t *testing.T, output *Output) {
				assert.Empty(t, output.Slots)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t)

			output, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.wantIntent, output.Intent)
			assert.Equal(t, tt.wantConfidence, output.Confidence)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestHandler_Execute_EmptyText(t *testing.T) {
	h := createTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{Text: "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_TURN_FORMAT")
}
