// internal/engine/regulatory/inferrer_test.go
package regulatory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/engine/recipes"
	"compliance-copilot/internal/models"
)

func testCatalog(t *testing.T) *recipes.Catalog {
	t.Helper()
	c, err := recipes.New(
		[]models.Recipe{
			{
				ID:            "energy-audit-basic",
				Name:          "Energy Audit",
				Intent:        models.IntentEnergyAudit,
				RequiredSlots: []string{"kWh", "city"},
				Citations:     []string{"CSRD-ESRS-E1", "EED-ART8"},
			},
		},
		map[string]recipes.CitationDetail{
			"CSRD-ESRS-E1": {Requirement: "Report scope 1 and 2 emissions", Evidence: []string{"energy bills"}},
			// No text configured for EED-ART8: the inferrer fills it in
			// from the search index.
			"EED-ART8": {},
		},
		nil,
	)
	require.NoError(t, err)
	return c
}

type stubSearcher struct {
	texts map[string]*CitationText
	err   error
	calls []string
}

func (s *stubSearcher) LookupCitation(ctx context.Context, key string) (*CitationText, error) {
	s.calls = append(s.calls, key)
	if s.err != nil {
		return nil, s.err
	}
	return s.texts[key], nil
}

type stubSuggester struct {
	available bool
	citations []models.Citation
	err       error
}

func (s *stubSuggester) Available() bool { return s.available }

func (s *stubSuggester) SuggestCitations(ctx context.Context, recipe models.Recipe, slots models.Slots) ([]models.Citation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.citations, nil
}

func TestInferConfiguredOnly(t *testing.T) {
	inf := NewInferrer(testCatalog(t), nil, nil, logger.NewTestLogger(t))

	citations, err := inf.Infer(context.Background(), "energy-audit-basic", models.Slots{"kWh": float64(3000)})
	require.NoError(t, err)

	require.Len(t, citations, 2)
	assert.Equal(t, "CSRD-ESRS-E1", citations[0].Key)
	assert.Equal(t, "Report scope 1 and 2 emissions", citations[0].Requirement)
	assert.Equal(t, "EED-ART8", citations[1].Key)
	for _, c := range citations {
		assert.Equal(t, models.CitationConfigured, c.Origin)
	}
}

func TestInferUnknownRecipe(t *testing.T) {
	inf := NewInferrer(testCatalog(t), nil, nil, logger.NewTestLogger(t))

	_, err := inf.Infer(context.Background(), "no-such-recipe", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECIPE_NOT_FOUND")
}

func TestInferSearcherFillsMissingText(t *testing.T) {
	searcher := &stubSearcher{texts: map[string]*CitationText{
		"EED-ART8": {Requirement: "Conduct an energy audit every four years", Evidence: []string{"audit report"}},
	}}
	inf := NewInferrer(testCatalog(t), searcher, nil, logger.NewTestLogger(t))

	citations, err := inf.Infer(context.Background(), "energy-audit-basic", nil)
	require.NoError(t, err)

	assert.Equal(t, "Conduct an energy audit every four years", citations[1].Requirement)
	assert.Equal(t, []string{"audit report"}, citations[1].Evidence)
	// CSRD-ESRS-E1 already has catalog text and must not hit the backend.
	assert.Equal(t, []string{"EED-ART8"}, searcher.calls)
}

func TestInferSearcherFailureDegradesSilently(t *testing.T) {
	searcher := &stubSearcher{err: fmt.Errorf("cluster unreachable")}
	inf := NewInferrer(testCatalog(t), searcher, nil, logger.NewTestLogger(t))

	citations, err := inf.Infer(context.Background(), "energy-audit-basic", nil)
	require.NoError(t, err)

	require.Len(t, citations, 2)
	assert.Empty(t, citations[1].Requirement)
}

func TestInferSuggesterAppendsDeduplicated(t *testing.T) {
	suggester := &stubSuggester{
		available: true,
		citations: []models.Citation{
			{Key: "CSRD-ESRS-E1", Requirement: "duplicate, must be dropped"},
			{Key: "ISO-50001", Requirement: "Operate an energy management system", Origin: models.CitationConfigured},
			{Key: "", Requirement: "keyless, must be dropped"},
		},
	}
	inf := NewInferrer(testCatalog(t), nil, suggester, logger.NewTestLogger(t))

	citations, err := inf.Infer(context.Background(), "energy-audit-basic", models.Slots{"city": "Flensburg"})
	require.NoError(t, err)

	require.Len(t, citations, 3)
	assert.Equal(t, "CSRD-ESRS-E1", citations[0].Key)
	assert.Equal(t, models.CitationConfigured, citations[0].Origin,
		"configured entry is never replaced by an inferred duplicate")
	assert.Equal(t, "ISO-50001", citations[2].Key)
	assert.Equal(t, models.CitationInferred, citations[2].Origin,
		"appended citations are always marked inferred")
}

func TestInferSuggesterFailureKeepsBaseSet(t *testing.T) {
	suggester := &stubSuggester{available: true, err: fmt.Errorf("model timeout")}
	inf := NewInferrer(testCatalog(t), nil, suggester, logger.NewTestLogger(t))

	citations, err := inf.Infer(context.Background(), "energy-audit-basic", nil)
	require.NoError(t, err)
	require.Len(t, citations, 2)
}

func TestInferSuggesterUnavailableSkipped(t *testing.T) {
	suggester := &stubSuggester{available: false, citations: []models.Citation{{Key: "ISO-50001"}}}
	inf := NewInferrer(testCatalog(t), nil, suggester, logger.NewTestLogger(t))

	citations, err := inf.Infer(context.Background(), "energy-audit-basic", nil)
	require.NoError(t, err)
	require.Len(t, citations, 2)
}
