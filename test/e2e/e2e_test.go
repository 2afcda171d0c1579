// test/e2e/e2e_test.go
//
// End-to-end flow over the real config artifacts: a conversation is
// ingested turn by turn, the bound recipe's forms are resolved and
// filled, regulatory citations are inferred, and the ESG figures are
// calculated. Redis is backed by miniredis so no services are needed.
package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-copilot/internal/capability/embedding"
	"compliance-copilot/internal/capability/reasoning"
	"compliance-copilot/internal/common/database"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/common/weather"
	"compliance-copilot/internal/engine/fieldmap"
	"compliance-copilot/internal/engine/intent"
	"compliance-copilot/internal/engine/recipes"
	"compliance-copilot/internal/engine/regulatory"
	"compliance-copilot/internal/engine/submission"
	"compliance-copilot/internal/models"
	"compliance-copilot/pkg/registry"

	ci "compliance-copilot/internal/workers/conversation/classify-intent"
	it "compliance-copilot/internal/workers/conversation/ingest-turn"
	ee "compliance-copilot/internal/workers/esg/estimate-emissions"
	ls "compliance-copilot/internal/workers/esg/suggest-load-shift"
	mf "compliance-copilot/internal/workers/forms/map-fields"
	st "compliance-copilot/internal/workers/forms/select-template"
	ir "compliance-copilot/internal/workers/regulatory/infer-requirements"
)

const (
	recipesPath   = "../../configs/recipes.yaml"
	templatesPath = "../../configs/templates.json"
)

type testEnv struct {
	catalog   *recipes.Catalog
	templates *registry.TemplateRegistry

	ingest         *it.Handler
	classify       *ci.Handler
	selectTemplate *st.Handler
	mapFields      *mf.Handler
	inferReqs      *ir.Handler
	emissions      *ee.Handler
	loadShift      *ls.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewTestLogger(t)

	catalog, err := recipes.Load(recipesPath)
	require.NoError(t, err, "shipped recipe catalog must parse")

	templates, err := registry.LoadRegistry(templatesPath)
	require.NoError(t, err, "shipped template registry must parse")

	mr := miniredis.RunT(t)
	redisClient := &database.RedisClient{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	store := submission.NewRedisStore(redisClient, time.Hour)

	classifier := intent.NewClassifier(reasoning.NewDisabledReasoner(), log)
	manager := submission.NewManager(store, catalog, classifier, log)
	mapper := fieldmap.NewMapper(embedding.NewDisabledEmbedder(), 0.60, log)
	inferrer := regulatory.NewInferrer(catalog, nil, nil, log)
	weatherClient := weather.NewClient("", "", time.Second)

	return &testEnv{
		catalog:        catalog,
		templates:      templates,
		ingest:         it.NewHandler(it.LoadConfig(), manager, log),
		classify:       ci.NewHandler(ci.LoadConfig(), classifier, log),
		selectTemplate: st.NewHandler(st.LoadConfig(), templates, catalog, log),
		mapFields:      mf.NewHandler(mf.LoadConfig(), mapper, store, nil, templates, log),
		inferReqs:      ir.NewHandler(ir.LoadConfig(), inferrer, store, log),
		emissions:      ee.NewHandler(ee.LoadConfig(), log),
		loadShift:      ls.NewHandler(ls.LoadConfig(), weatherClient, log),
	}
}

func TestEnergyAuditFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Turn 1: intent only, the engine must ask for the missing slots.
	first, err := env.ingest.Execute(ctx, &it.Input{
		UserID: "user-1",
		Text:   "We need an energy audit",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.StageCollecting), first.Stage)
	assert.Equal(t, "energy-audit-basic", first.RecipeID)
	assert.Equal(t, []string{"kWh", "city"}, first.MissingSlots)
	require.Len(t, first.MissingSlotPrompts, 2)
	assert.Contains(t, first.MissingSlotPrompts[0], "energy consumption")

	// Turn 2: both slots arrive, the submission becomes ready.
	second, err := env.ingest.Execute(ctx, &it.Input{
		SubmissionID: first.SubmissionID,
		UserID:       "user-1",
		Text:         "We used 3200 kWh in Flensburg",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.StageReady), second.Stage)
	assert.Empty(t, second.MissingSlots)
	assert.Equal(t, float64(3200), second.Slots["kWh"])
	assert.Equal(t, "Flensburg", second.Slots["city"])

	// Resolve the recipe's forms from the registry.
	forms, err := env.selectTemplate.Execute(ctx, &st.Input{RecipeID: second.RecipeID})
	require.NoError(t, err)
	require.Len(t, forms.Templates, 2)
	assert.Equal(t, "vsme_snapshot", forms.Templates[0].ID)

	// Fill the snapshot form from the collected slots.
	mapping, err := env.mapFields.Execute(ctx, &mf.Input{
		FormID:       forms.Templates[0].ID,
		SubmissionID: second.SubmissionID,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(3200), mapping.Values["Energy Consumption (kWh):"])
	assert.Equal(t, "Flensburg", mapping.Values["City:"])

	// Citations come from the recipe's configured set, in order.
	reqs, err := env.inferReqs.Execute(ctx, &ir.Input{
		RecipeID:     second.RecipeID,
		SubmissionID: second.SubmissionID,
	})
	require.NoError(t, err)
	require.Len(t, reqs.Citations, 2)
	assert.Equal(t, "CSRD-ESRS-E1", reqs.Citations[0].Key)
	assert.Equal(t, "EED-ART8", reqs.Citations[1].Key)
	for _, c := range reqs.Citations {
		assert.Equal(t, models.CitationConfigured, c.Origin)
		assert.NotEmpty(t, c.Requirement)
	}

	// ESG figures for the collected consumption.
	est, err := env.emissions.Execute(ctx, &ee.Input{KWh: 3200, IncludeScope3: true})
	require.NoError(t, err)
	assert.InDelta(t, 1.344, est.Scope2, 1e-9)
	require.NotNil(t, est.Scope3)
	assert.InDelta(t, 0.202, *est.Scope3, 1e-9)
	assert.InDelta(t, 1.546, est.TCO2e, 1e-9)

	// Without an API key the weather path degrades to offline defaults.
	advice, err := env.loadShift.Execute(ctx, &ls.Input{City: "Flensburg", Country: "DE"})
	require.NoError(t, err)
	assert.Equal(t, "offline", advice.WeatherSource)
	assert.Equal(t, 5.0, advice.SunHours)
	assert.NotEmpty(t, advice.Recommendations)
}

func TestClassifyAndRecipeBindingForAllIntents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		text   string
		intent models.Intent
	}{
		{"We used 3200 kWh in Flensburg", models.IntentEnergyAudit},
		{"I need our GDPR Article 30 record", models.IntentProcessingRecord},
		{"Start a high-risk AI assessment", models.IntentAIRiskAssessment},
	}

	for _, tc := range cases {
		out, err := env.classify.Execute(ctx, &ci.Input{Text: tc.text})
		require.NoError(t, err, tc.text)
		assert.Equal(t, string(tc.intent), out.Intent, tc.text)

		recipe, ok := env.catalog.Lookup(tc.intent)
		require.True(t, ok, "every known intent needs a recipe in the shipped catalog")
		for _, formID := range recipe.Forms {
			assert.NotNil(t, env.templates.Get(formID),
				"recipe %s references template %s missing from the registry", recipe.ID, formID)
		}
	}
}

func TestUnknownIntentDoesNotCreateRecipeBinding(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.ingest.Execute(context.Background(), &it.Input{
		UserID: "user-1",
		Text:   "What is the weather like?",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.StageCollecting), out.Stage)
	assert.Empty(t, out.RecipeID)
}
