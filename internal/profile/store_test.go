// internal/profile/store_test.go
package profile

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-copilot/internal/common/database"
	"compliance-copilot/internal/common/logger"
)

var profileColumns = []string{
	"name", "address", "city", "postal_code", "country", "email", "phone",
	"iban", "business_type", "business_facts", "employee_count",
}

func testStore(t *testing.T) (*Store, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	cache := &database.RedisClient{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}

	store := NewStore(&database.PostgresClient{DB: db}, cache, time.Hour, logger.NewTestLogger(t))
	return store, mock, mr
}

func acmeRow() *sqlmock.Rows {
	return sqlmock.NewRows(profileColumns).AddRow(
		"Acme GmbH", "Hafenstr. 1", "Flensburg", "24937", "DE",
		"info@acme.example", nil, "DE89370400440532013000", "manufacturing",
		`{"certifications": ["ISO 9001"], "city": "shadowed"}`, int64(42),
	)
}

func TestGetFlattensProfile(t *testing.T) {
	store, mock, _ := testStore(t)
	mock.ExpectQuery("SELECT name, address, city").
		WithArgs("user-1").
		WillReturnRows(acmeRow())

	profile, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Acme GmbH", profile["name"])
	assert.Equal(t, "Flensburg", profile["city"], "column value wins over a business fact of the same name")
	assert.Equal(t, float64(42), profile["employee_count"])
	assert.Equal(t, []interface{}{"ISO 9001"}, profile["certifications"], "business facts are flattened to top level")
	_, hasPhone := profile["phone"]
	assert.False(t, hasPhone, "NULL columns are omitted")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetServesSecondFetchFromCache(t *testing.T) {
	store, mock, _ := testStore(t)
	// A single query expectation: the second Get must not reach postgres.
	mock.ExpectQuery("SELECT name, address, city").
		WithArgs("user-1").
		WillReturnRows(acmeRow())

	first, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)

	second, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUnknownUser(t *testing.T) {
	store, mock, _ := testStore(t)
	mock.ExpectQuery("SELECT name, address, city").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(profileColumns))

	_, err := store.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESOURCE_NOT_FOUND")
}

func TestGetMalformedFactsAreSkipped(t *testing.T) {
	store, mock, _ := testStore(t)
	mock.ExpectQuery("SELECT name, address, city").
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows(profileColumns).AddRow(
			"Beta AG", nil, nil, nil, "DE", nil, nil, nil, nil, "{not json", nil,
		))

	profile, err := store.Get(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Equal(t, "Beta AG", profile["name"])
	assert.Equal(t, "DE", profile["country"])
}

func TestInvalidateDropsCachedCopy(t *testing.T) {
	store, mock, mr := testStore(t)
	mock.ExpectQuery("SELECT name, address, city").
		WithArgs("user-1").
		WillReturnRows(acmeRow())

	_, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, mr.Exists("profile:user-1"))

	require.NoError(t, store.Invalidate(context.Background(), "user-1"))
	assert.False(t, mr.Exists("profile:user-1"))
}

func TestCacheExpiryFallsBackToDatabase(t *testing.T) {
	store, mock, mr := testStore(t)
	mock.ExpectQuery("SELECT name, address, city").
		WithArgs("user-1").
		WillReturnRows(acmeRow())
	mock.ExpectQuery("SELECT name, address, city").
		WithArgs("user-1").
		WillReturnRows(acmeRow())

	_, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
