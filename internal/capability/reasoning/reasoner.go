// internal/capability/reasoning/reasoner.go

// Package reasoning wraps the optional model-backed intent reasoner. The
// engine treats it as best effort: when it is disabled or failing, callers
// fall back to the lexical classifier.
package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"compliance-copilot/internal/common/errors"
	"compliance-copilot/internal/common/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/xeipuuv/gojsonschema"
)

// Reply is the structured classification returned by the reasoner.
type Reply struct {
	Intent     string                 `json:"intent"`
	Confidence float64                `json:"confidence"`
	Slots      map[string]interface{} `json:"slots"`
}

// Reasoner classifies a user utterance into an intent with extracted slots.
type Reasoner interface {
	ClassifyIntent(ctx context.Context, utterance string, knownIntents []string) (*Reply, error)
	Available() bool
}

// replySchema validates the reasoner's JSON reply before the engine trusts it.
const replySchema = `{
	"type": "object",
	"properties": {
		"intent": {"type": "string"},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"slots": {"type": "object"}
	},
	"required": ["intent", "confidence"],
	"additionalProperties": false
}`

const systemPrompt = `You are an intent classifier for a sustainability compliance assistant.
Given a user message, reply with a single JSON object and nothing else:
{"intent": "<one of the allowed intents, or empty string if none fits>", "confidence": <0.0-1.0>, "slots": {<extracted values>}}
Recognized slots: kWh (number), city (string), purpose (string), company (string).`

// llmReasoner talks to any OpenAI-compatible completion endpoint.
type llmReasoner struct {
	model  llms.Model
	schema *gojsonschema.Schema
	log    logger.Logger
}

// NewLLMReasoner builds a reasoner against an OpenAI-compatible endpoint.
func NewLLMReasoner(baseURL, apiKey, modelName string, log logger.Logger) (Reasoner, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create reasoner client: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(replySchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile reply schema: %w", err)
	}

	return &llmReasoner{model: model, schema: schema, log: log}, nil
}

func (r *llmReasoner) Available() bool { return true }

func (r *llmReasoner) ClassifyIntent(ctx context.Context, utterance string, knownIntents []string) (*Reply, error) {
	prompt := fmt.Sprintf("%s\nAllowed intents: %s\n\nUser message: %s",
		systemPrompt, strings.Join(knownIntents, ", "), utterance)

	raw, err := llms.GenerateFromSinglePrompt(ctx, r.model, prompt,
		llms.WithTemperature(0),
		llms.WithJSONMode(),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewReasonerTimeoutError()
		}
		return nil, errors.NewExternalServiceError("reasoner", err)
	}

	reply, err := parseReply(raw, r.schema)
	if err != nil {
		r.log.Warn("Reasoner reply rejected", map[string]interface{}{
			"error": err.Error(),
			"raw":   truncate(raw, 200),
		})
		return nil, errors.NewReasonerParsingFailedError(err)
	}

	return reply, nil
}

// parseReply extracts and validates the JSON object from the model output.
// Models occasionally wrap the object in markdown fences; strip those first.
func parseReply(raw string, schema *gojsonschema.Schema) (*Reply, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	result, err := schema.Validate(gojsonschema.NewStringLoader(trimmed))
	if err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("reply failed schema validation: %s", strings.Join(msgs, "; "))
	}

	var reply Reply
	if err := json.Unmarshal([]byte(trimmed), &reply); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reply: %w", err)
	}
	if reply.Slots == nil {
		reply.Slots = map[string]interface{}{}
	}

	return &reply, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// disabledReasoner is used when no reasoning endpoint is configured.
type disabledReasoner struct{}

// NewDisabledReasoner returns a reasoner that reports itself unavailable.
func NewDisabledReasoner() Reasoner {
	return &disabledReasoner{}
}

func (d *disabledReasoner) Available() bool { return false }

func (d *disabledReasoner) ClassifyIntent(ctx context.Context, utterance string, knownIntents []string) (*Reply, error) {
	return nil, errors.NewCapabilityUnavailableError("reasoning", nil)
}
