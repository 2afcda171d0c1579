// internal/capability/reasoning/citations.go
package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"compliance-copilot/internal/common/errors"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/xeipuuv/gojsonschema"
)

// CitationSuggester proposes situational regulatory citations for a bound
// recipe. Like the intent reasoner it is strictly best effort.
type CitationSuggester interface {
	SuggestCitations(ctx context.Context, recipe models.Recipe, slots models.Slots) ([]models.Citation, error)
	Available() bool
}

const citationSchema = `{
	"type": "object",
	"properties": {
		"citations": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"key": {"type": "string", "minLength": 1},
					"requirement": {"type": "string"},
					"evidence": {"type": "array", "items": {"type": "string"}}
				},
				"required": ["key", "requirement"],
				"additionalProperties": false
			}
		}
	},
	"required": ["citations"],
	"additionalProperties": false
}`

const citationPrompt = `You are a regulatory analyst for a sustainability compliance assistant.
Given a compliance workflow and the data collected so far, list additional regulatory
citations that apply to this specific situation. Reply with a single JSON object and
nothing else: {"citations": [{"key": "<regulation key>", "requirement": "<what it requires>", "evidence": ["<document>"]}]}
Only list citations you are confident about. An empty list is a valid answer.`

type citationReply struct {
	Citations []struct {
		Key         string   `json:"key"`
		Requirement string   `json:"requirement"`
		Evidence    []string `json:"evidence"`
	} `json:"citations"`
}

type llmCitationSuggester struct {
	model  llms.Model
	schema *gojsonschema.Schema
	log    logger.Logger
}

// NewLLMCitationSuggester builds a suggester against an OpenAI-compatible
// endpoint.
func NewLLMCitationSuggester(baseURL, apiKey, modelName string, log logger.Logger) (CitationSuggester, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create citation suggester client: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(citationSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile citation schema: %w", err)
	}

	return &llmCitationSuggester{model: model, schema: schema, log: log}, nil
}

func (s *llmCitationSuggester) Available() bool { return true }

func (s *llmCitationSuggester) SuggestCitations(ctx context.Context, recipe models.Recipe, slots models.Slots) ([]models.Citation, error) {
	facts := make([]string, 0, len(slots))
	for name, value := range slots {
		facts = append(facts, fmt.Sprintf("%s=%v", name, value))
	}

	prompt := fmt.Sprintf("%s\n\nWorkflow: %s (%s)\nAlready configured citations: %s\nCollected data: %s",
		citationPrompt, recipe.Name, recipe.Intent,
		strings.Join(recipe.Citations, ", "), strings.Join(facts, ", "))

	raw, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt,
		llms.WithTemperature(0),
		llms.WithJSONMode(),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewReasonerTimeoutError()
		}
		return nil, errors.NewExternalServiceError("citation-suggester", err)
	}

	reply, err := parseCitationReply(raw, s.schema)
	if err != nil {
		s.log.Warn("Citation suggestion rejected", map[string]interface{}{
			"error": err.Error(),
			"raw":   truncate(raw, 200),
		})
		return nil, errors.NewReasonerParsingFailedError(err)
	}

	citations := make([]models.Citation, 0, len(reply.Citations))
	for _, c := range reply.Citations {
		citations = append(citations, models.Citation{
			Key:         c.Key,
			Requirement: c.Requirement,
			Evidence:    c.Evidence,
			Origin:      models.CitationInferred,
		})
	}
	return citations, nil
}

func parseCitationReply(raw string, schema *gojsonschema.Schema) (*citationReply, error) {
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

	var reply citationReply
	if err := json.Unmarshal([]byte(trimmed), &reply); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reply: %w", err)
	}
	return &reply, nil
}

type disabledCitationSuggester struct{}

// NewDisabledCitationSuggester returns a suggester that reports itself
// unavailable.
func NewDisabledCitationSuggester() CitationSuggester {
	return &disabledCitationSuggester{}
}

func (d *disabledCitationSuggester) Available() bool { return false }

func (d *disabledCitationSuggester) SuggestCitations(ctx context.Context, recipe models.Recipe, slots models.Slots) ([]models.Citation, error) {
	return nil, errors.NewCapabilityUnavailableError("citation-suggester", nil)
}
