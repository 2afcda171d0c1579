// internal/capability/reasoning/reasoner_test.go
package reasoning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

// The prompt must advertise the slot names the recipe catalog and field
// mapper key on, or extracted values land under names nobody reads.
func TestPromptUsesCatalogSlotNames(t *testing.T) {
	for _, slot := range []string{"kWh", "city", "purpose", "company"} {
		assert.Contains(t, systemPrompt, slot+" (")
	}
	assert.NotContains(t, systemPrompt, "kwh_consumption")
}

func compiledReplySchema(t *testing.T) *gojsonschema.Schema {
	t.Helper()
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(replySchema))
	require.NoError(t, err)
	return schema
}

func TestParseReply(t *testing.T) {
	schema := compiledReplySchema(t)

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "plain object",
			raw:  `{"intent": "energy-audit", "confidence": 0.9, "slots": {"kWh": 3200}}`,
		},
		{
			name: "markdown fenced",
			raw:  "```json\n{\"intent\": \"energy-audit\", \"confidence\": 0.9}\n```",
		},
		{
			name:    "confidence out of range",
			raw:     `{"intent": "energy-audit", "confidence": 1.5}`,
			wantErr: true,
		},
		{
			name:    "unexpected field",
			raw:     `{"intent": "energy-audit", "confidence": 0.9, "reasoning": "because"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "I think this is an energy audit.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := parseReply(tt.raw, schema)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "energy-audit", reply.Intent)
			assert.NotNil(t, reply.Slots, "slots default to an empty map")
		})
	}
}

func TestParseReplyKeepsSlotKeyCase(t *testing.T) {
	reply, err := parseReply(
		`{"intent": "energy-audit", "confidence": 0.8, "slots": {"kWh": 900, "city": "Kiel"}}`,
		compiledReplySchema(t))
	require.NoError(t, err)

	assert.Contains(t, reply.Slots, "kWh")
	assert.Equal(t, "Kiel", reply.Slots["city"])
}
