// internal/engine/fieldmap/mapper.go

// Package fieldmap assigns known values to the labeled fields of a document
// template by semantic similarity. Scoring uses multilingual embeddings when
// the capability is configured and degrades to normalized keyword overlap
// otherwise. Mapping is pure: identical inputs yield an identical mapping.
package fieldmap

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"compliance-copilot/internal/capability/embedding"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/models"
)

// tieEpsilon bounds the score difference treated as a tie. Ties are broken
// by the smaller edit distance between key name and label, then key order.
const tieEpsilon = 1e-9

// Mapper scores template field labels against a value store.
type Mapper struct {
	embedder  embedding.Embedder
	threshold float64
	log       logger.Logger
}

// NewMapper builds a mapper with the similarity threshold tau. A best score
// at or above the threshold is confident; strictly below is flagged.
func NewMapper(embedder embedding.Embedder, threshold float64, log logger.Logger) *Mapper {
	return &Mapper{embedder: embedder, threshold: threshold, log: log}
}

// candidate is one value-store entry prepared for scoring.
type candidate struct {
	key   string
	value interface{}
	text  string // key plus its semantic description
}

// BuildValueStore merges submission slots over profile attributes. Slot
// values win on key collision.
func BuildValueStore(slots models.Slots, profile models.Profile) map[string]interface{} {
	store := make(map[string]interface{}, len(slots)+len(profile))
	for k, v := range profile {
		store[k] = v
	}
	for k, v := range slots {
		store[k] = v
	}
	return store
}

// Map computes the label→value assignment for a template's field labels.
// Every label gets its best-guess assignment; labels whose best score falls
// below the threshold are additionally listed as low-confidence. The call
// never mutates its inputs.
func (m *Mapper) Map(ctx context.Context, labels []string, valueStore map[string]interface{}) *models.FieldMapping {
	mapping := &models.FieldMapping{
		Assignments:   []models.FieldAssignment{},
		LowConfidence: []string{},
	}

	candidates := prepareCandidates(valueStore)
	if len(candidates) == 0 {
		mapping.LowConfidence = append(mapping.LowConfidence, labels...)
		return mapping
	}

	scores, method := m.scoreAll(ctx, labels, candidates)

	for i, label := range labels {
		best := pickBest(label, candidates, scores[i])

		mapping.Assignments = append(mapping.Assignments, models.FieldAssignment{
			Label:    label,
			ValueKey: candidates[best].key,
			Value:    candidates[best].value,
			Score:    scores[i][best],
			Method:   method,
		})
		if scores[i][best] < m.threshold {
			mapping.LowConfidence = append(mapping.LowConfidence, label)
		}
	}

	return mapping
}

// prepareCandidates flattens the value store into a deterministic ordered
// candidate list with scoring texts.
func prepareCandidates(valueStore map[string]interface{}) []candidate {
	keys := make([]string, 0, len(valueStore))
	for k := range valueStore {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	candidates := make([]candidate, 0, len(keys))
	for _, k := range keys {
		candidates = append(candidates, candidate{
			key:   k,
			value: valueStore[k],
			text:  describeKey(k),
		})
	}
	return candidates
}

// describeKey pairs a key name with its semantic description when one is
// configured, so labels worded differently (or in another language) can
// still match.
func describeKey(key string) string {
	if desc, ok := models.SlotDescriptions[key]; ok {
		return key + " " + desc
	}
	if desc, ok := models.ProfileDescriptions[key]; ok {
		return key + " " + desc
	}
	return key
}

// scoreAll returns scores[labelIndex][candidateIndex] and the method used.
// Any embedding failure downgrades the whole call to keyword scoring; the
// fallback must complete without further external calls.
func (m *Mapper) scoreAll(ctx context.Context, labels []string, candidates []candidate) ([][]float64, string) {
	if m.embedder.Available() {
		scores, err := m.embeddingScores(ctx, labels, candidates)
		if err == nil {
			return scores, "embedding"
		}
		m.log.Warn("Embedding scoring failed, using keyword overlap", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return keywordScores(labels, candidates), "keyword"
}

func (m *Mapper) embeddingScores(ctx context.Context, labels []string, candidates []candidate) ([][]float64, error) {
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.text
	}

	candidateVecs, err := m.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	labelVecs, err := m.embedder.EmbedDocuments(ctx, labels)
	if err != nil {
		return nil, err
	}

	scores := make([][]float64, len(labels))
	for i := range labels {
		scores[i] = make([]float64, len(candidates))
		for j := range candidates {
			scores[i][j] = cosine(labelVecs[i], candidateVecs[j])
		}
	}
	return scores, nil
}

func keywordScores(labels []string, candidates []candidate) [][]float64 {
	scores := make([][]float64, len(labels))
	for i, label := range labels {
		labelTokens := tokenize(label)
		scores[i] = make([]float64, len(candidates))
		for j, c := range candidates {
			scores[i][j] = overlapScore(labelTokens, tokenize(c.text))
		}
	}
	return scores
}

// pickBest selects the highest-scoring candidate. Within tieEpsilon the
// candidate whose key name has the shorter edit distance to the label wins;
// remaining ties fall back to candidate order (sorted keys) so the result
// is reproducible.
func pickBest(label string, candidates []candidate, scores []float64) int {
	best := 0
	for j := 1; j < len(candidates); j++ {
		diff := scores[j] - scores[best]
		switch {
		case diff > tieEpsilon:
			best = j
		case math.Abs(diff) <= tieEpsilon:
			if levenshtein(candidates[j].key, label) < levenshtein(candidates[best].key, label) {
				best = j
			}
		}
	}
	return best
}

// tokenize lower-cases, strips punctuation, and splits into a token set.
func tokenize(s string) map[string]bool {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := map[string]bool{}
	for _, tok := range strings.Fields(b.String()) {
		tokens[tok] = true
	}
	return tokens
}

// overlapScore is the fraction of label tokens covered by the candidate
// text.
func overlapScore(labelTokens, candidateTokens map[string]bool) float64 {
	if len(labelTokens) == 0 {
		return 0
	}
	hits := 0
	for tok := range labelTokens {
		if candidateTokens[tok] {
			hits++
		}
	}
	return float64(hits) / float64(len(labelTokens))
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
