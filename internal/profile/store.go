// internal/profile/store.go

// Package profile loads company profiles from postgres with a read-through
// redis cache. Profiles feed the field mapper's value store and lose to
// submission slots on key collision.
package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"compliance-copilot/internal/common/database"
	"compliance-copilot/internal/common/errors"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/models"
)

const cacheKeyPrefix = "profile:"

// Store reads profiles by user id. The cache client may be nil, in which
// case every read hits postgres.
type Store struct {
	db    *database.PostgresClient
	cache *database.RedisClient
	ttl   time.Duration
	log   logger.Logger
}

func NewStore(db *database.PostgresClient, cache *database.RedisClient, ttl time.Duration, log logger.Logger) *Store {
	return &Store{db: db, cache: cache, ttl: ttl, log: log}
}

// Get returns the flat attribute map for one user. JSON business facts are
// flattened into top-level attributes so the field mapper can score them
// like any other candidate.
func (s *Store) Get(ctx context.Context, userID string) (models.Profile, error) {
	if cached, ok := s.fromCache(ctx, userID); ok {
		return cached, nil
	}

	profile, err := s.fromDatabase(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, userID, profile)
	return profile, nil
}

// Invalidate drops the cached copy after a profile update.
func (s *Store) Invalidate(ctx context.Context, userID string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Del(ctx, cacheKeyPrefix+userID); err != nil {
		return errors.NewCacheOperationFailedError("del", err)
	}
	return nil
}

func (s *Store) fromCache(ctx context.Context, userID string) (models.Profile, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, cacheKeyPrefix+userID)
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("Profile cache read failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
		return nil, false
	}

	var profile models.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.log.Warn("Dropping undecodable cached profile", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, false
	}
	return profile, true
}

func (s *Store) toCache(ctx context.Context, userID string, profile models.Profile) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKeyPrefix+userID, string(raw), s.ttl); err != nil {
		s.log.Warn("Profile cache write failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func (s *Store) fromDatabase(ctx context.Context, userID string) (models.Profile, error) {
	var (
		name          string
		address       sql.NullString
		city          sql.NullString
		postalCode    sql.NullString
		country       sql.NullString
		email         sql.NullString
		phone         sql.NullString
		iban          sql.NullString
		businessType  sql.NullString
		businessFacts sql.NullString
		employeeCount sql.NullInt64
	)

	err := s.db.DB.QueryRowContext(ctx, `
		SELECT name, address, city, postal_code, country, email, phone,
		       iban, business_type, business_facts, employee_count
		FROM user_profiles
		WHERE id = $1`, userID).Scan(
		&name, &address, &city, &postalCode, &country, &email, &phone,
		&iban, &businessType, &businessFacts, &employeeCount,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewResourceNotFoundError("profile", fmt.Sprintf("user %s not found", userID))
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewQueryTimeoutError("profile_lookup")
		}
		return nil, errors.NewQueryExecutionFailedError("profile_lookup", err)
	}

	profile := models.Profile{"name": name}
	putString(profile, "address", address)
	putString(profile, "city", city)
	putString(profile, "postal_code", postalCode)
	putString(profile, "country", country)
	putString(profile, "email", email)
	putString(profile, "phone", phone)
	putString(profile, "iban", iban)
	putString(profile, "business_type", businessType)
	if employeeCount.Valid {
		profile["employee_count"] = float64(employeeCount.Int64)
	}

	if businessFacts.Valid && businessFacts.String != "" {
		flattenFacts(profile, businessFacts.String, userID, s.log)
	}

	return profile, nil
}

// flattenFacts merges the business_facts JSON object into the profile.
// Column-backed attributes win over facts of the same name; a malformed
// facts blob is skipped rather than failing the whole read.
func flattenFacts(profile models.Profile, raw, userID string, log logger.Logger) {
	var facts map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &facts); err != nil {
		log.Warn("Skipping malformed business facts", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}
	for k, v := range facts {
		if _, exists := profile[k]; !exists {
			profile[k] = v
		}
	}
}

func putString(profile models.Profile, key string, v sql.NullString) {
	if v.Valid && v.String != "" {
		profile[key] = v.String
	}
}
