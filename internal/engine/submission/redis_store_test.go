// internal/engine/submission/redis_store_test.go
package submission

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-copilot/internal/common/database"
	"compliance-copilot/internal/common/errors"
	"compliance-copilot/internal/models"
)

func testRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := &database.RedisClient{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := testRedisStore(t)
	ctx := context.Background()

	sub := &models.Submission{
		ID:       "sub-1",
		UserID:   "user-1",
		RecipeID: "energy-audit-basic",
		Intent:   models.IntentEnergyAudit,
		Slots:    models.Slots{"kWh": float64(3200), "city": "Flensburg"},
		Stage:    models.StageReady,
		AuditTrail: []models.AuditEntry{
			{ID: "a1", Action: "created", Stage: models.StageCollecting, Timestamp: time.Now().UTC().Truncate(time.Second)},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, store.Put(ctx, sub))

	got, err := store.Get(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, sub.Intent, got.Intent)
	assert.Equal(t, sub.Stage, got.Stage)
	assert.Equal(t, float64(3200), got.Slots["kWh"])
	assert.Equal(t, "Flensburg", got.Slots["city"])
	require.Len(t, got.AuditTrail, 1)
	assert.Equal(t, "created", got.AuditTrail[0].Action)
}

func TestRedisStoreMissingSubmission(t *testing.T) {
	store, _ := testRedisStore(t)

	_, err := store.Get(context.Background(), "nope")
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSubmissionNotFound, stdErr.Code)
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := testRedisStore(t)
	ctx := context.Background()

	sub := &models.Submission{ID: "sub-1", Slots: models.Slots{}, Stage: models.StageCollecting}
	require.NoError(t, store.Put(ctx, sub))
	require.NoError(t, store.Delete(ctx, "sub-1"))

	_, err := store.Get(ctx, "sub-1")
	assert.Error(t, err)
}

func TestRedisStoreAppliesTTL(t *testing.T) {
	store, mr := testRedisStore(t)
	ctx := context.Background()

	sub := &models.Submission{ID: "sub-1", Slots: models.Slots{}, Stage: models.StageCollecting}
	require.NoError(t, store.Put(ctx, sub))

	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "sub-1")
	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSubmissionNotFound, stdErr.Code)
}
