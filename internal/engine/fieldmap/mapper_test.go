// internal/engine/fieldmap/mapper_test.go
package fieldmap

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-copilot/internal/capability/embedding"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/models"
)

// stubEmbedder returns pre-seeded vectors keyed by exact text.
type stubEmbedder struct {
	vectors map[string][]float32
	fail    bool
}

func (s *stubEmbedder) Available() bool { return true }

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if s.fail {
		return nil, fmt.Errorf("embedding endpoint unreachable")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := s.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no vector seeded for %q", text)
		}
		out[i] = vec
	}
	return out, nil
}

func TestBuildValueStoreSlotsWin(t *testing.T) {
	slots := models.Slots{"city": "Flensburg", "kWh": float64(3200)}
	profile := models.Profile{"city": "Hamburg", "name": "Acme"}

	store := BuildValueStore(slots, profile)

	assert.Equal(t, "Flensburg", store["city"])
	assert.Equal(t, "Acme", store["name"])
	assert.Equal(t, float64(3200), store["kWh"])
}

func TestMapWithEmbeddings(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float32{
		describeKey("name"):         {1, 0},
		describeKey("kWh"):          {0, 1},
		"Company Name:":             {0.9, 0.1},
		"Energy Consumption (kWh):": {0.1, 0.9},
	}}
	m := NewMapper(stub, 0.60, logger.NewTestLogger(t))

	mapping := m.Map(context.Background(),
		[]string{"Company Name:", "Energy Consumption (kWh):"},
		map[string]interface{}{"name": "Acme", "kWh": float64(3200)})

	values := mapping.Values()
	assert.Equal(t, "Acme", values["Company Name:"])
	assert.Equal(t, float64(3200), values["Energy Consumption (kWh):"])
	assert.Empty(t, mapping.LowConfidence)
	for _, a := range mapping.Assignments {
		assert.Equal(t, "embedding", a.Method)
	}
}

func TestMapKeywordFallbackWhenDisabled(t *testing.T) {
	m := NewMapper(embedding.NewDisabledEmbedder(), 0.60, logger.NewTestLogger(t))

	mapping := m.Map(context.Background(),
		[]string{"Company Name:", "Energy Consumption (kWh):"},
		map[string]interface{}{"name": "Acme", "kWh": float64(3200)})

	values := mapping.Values()
	assert.Equal(t, "Acme", values["Company Name:"])
	assert.Equal(t, float64(3200), values["Energy Consumption (kWh):"])
	assert.Empty(t, mapping.LowConfidence)
	for _, a := range mapping.Assignments {
		assert.Equal(t, "keyword", a.Method)
	}
}

func TestMapEmbeddingFailureFallsBackToKeyword(t *testing.T) {
	m := NewMapper(&stubEmbedder{fail: true}, 0.60, logger.NewTestLogger(t))

	mapping := m.Map(context.Background(),
		[]string{"Energy Consumption (kWh):"},
		map[string]interface{}{"kWh": float64(3200)})

	require.Len(t, mapping.Assignments, 1)
	assert.Equal(t, "keyword", mapping.Assignments[0].Method)
	assert.Equal(t, float64(3200), mapping.Assignments[0].Value)
}

func TestMapThresholdBoundaryIsInclusive(t *testing.T) {
	m := NewMapper(embedding.NewDisabledEmbedder(), 0.60, logger.NewTestLogger(t))

	// Five label tokens, exactly three covered by the key name: score 0.6.
	mapping := m.Map(context.Background(),
		[]string{"alpha beta gamma delta epsilon"},
		map[string]interface{}{"alpha_beta_gamma": "v"})

	require.Len(t, mapping.Assignments, 1)
	assert.InDelta(t, 0.60, mapping.Assignments[0].Score, 1e-12)
	assert.Empty(t, mapping.LowConfidence, "score exactly at the threshold is confident")

	// Two of five covered: score 0.4, below the threshold.
	mapping = m.Map(context.Background(),
		[]string{"alpha beta gamma delta epsilon"},
		map[string]interface{}{"alpha_beta": "v"})

	require.Len(t, mapping.Assignments, 1)
	assert.Equal(t, []string{"alpha beta gamma delta epsilon"}, mapping.LowConfidence)
}

func TestMapTieBreakByEditDistance(t *testing.T) {
	m := NewMapper(embedding.NewDisabledEmbedder(), 0.60, logger.NewTestLogger(t))

	// Neither candidate overlaps the label: both score zero, the key with
	// the smaller edit distance to the label wins.
	mapping := m.Map(context.Background(),
		[]string{"nmae"},
		map[string]interface{}{"mail": "x@example.com", "name": "Acme"})

	require.Len(t, mapping.Assignments, 1)
	assert.Equal(t, "name", mapping.Assignments[0].ValueKey)
	assert.Equal(t, []string{"nmae"}, mapping.LowConfidence, "zero score is still a flagged best guess")
}

func TestMapIsIdempotent(t *testing.T) {
	m := NewMapper(embedding.NewDisabledEmbedder(), 0.60, logger.NewTestLogger(t))
	labels := []string{"Company Name:", "Energy Consumption (kWh):", "Unrelated Field:"}
	store := map[string]interface{}{"name": "Acme", "kWh": float64(3200), "city": "Flensburg"}

	first := m.Map(context.Background(), labels, store)
	second := m.Map(context.Background(), labels, store)

	assert.Equal(t, first, second)
}

func TestMapValueReusableAcrossLabels(t *testing.T) {
	m := NewMapper(embedding.NewDisabledEmbedder(), 0.60, logger.NewTestLogger(t))

	mapping := m.Map(context.Background(),
		[]string{"Company Name:", "Name of Company:"},
		map[string]interface{}{"name": "Acme"})

	values := mapping.Values()
	assert.Equal(t, "Acme", values["Company Name:"])
	assert.Equal(t, "Acme", values["Name of Company:"])
}

func TestMapEmptyValueStore(t *testing.T) {
	m := NewMapper(embedding.NewDisabledEmbedder(), 0.60, logger.NewTestLogger(t))

	mapping := m.Map(context.Background(), []string{"Company Name:"}, nil)

	assert.Empty(t, mapping.Assignments)
	assert.Equal(t, []string{"Company Name:"}, mapping.LowConfidence)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"name", "nmae", 2},
		{"kWh", "kWh", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}
