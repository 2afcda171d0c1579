// internal/capability/embedding/embedder.go

// Package embedding wraps the optional vector embedding capability used by
// the field mapper. Field mapping degrades to keyword overlap when no
// embedding endpoint is configured.
package embedding

import (
	"context"
	"fmt"

	"compliance-copilot/internal/common/errors"

	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder produces dense vectors for semantic similarity scoring.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	Available() bool
}

// llmEmbedder backs the interface with an OpenAI-compatible embedding endpoint.
type llmEmbedder struct {
	embedder lcembeddings.Embedder
}

// NewLLMEmbedder builds an embedder against an OpenAI-compatible endpoint.
func NewLLMEmbedder(baseURL, apiKey, modelName string) (Embedder, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(modelName),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	embedder, err := lcembeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &llmEmbedder{embedder: embedder}, nil
}

func (e *llmEmbedder) Available() bool { return true }

func (e *llmEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, errors.NewEmbeddingFailedError(err)
	}
	return vec, nil
}

func (e *llmEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, errors.NewEmbeddingFailedError(err)
	}
	return vecs, nil
}

// disabledEmbedder is used when no embedding endpoint is configured.
type disabledEmbedder struct{}

// NewDisabledEmbedder returns an embedder that reports itself unavailable.
func NewDisabledEmbedder() Embedder {
	return &disabledEmbedder{}
}

func (d *disabledEmbedder) Available() bool { return false }

func (d *disabledEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.NewCapabilityUnavailableError("embedding", nil)
}

func (d *disabledEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.NewCapabilityUnavailableError("embedding", nil)
}
