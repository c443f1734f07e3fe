// internal/stores/cached.go
package stores

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"forgelink/internal/common/logger"
	"forgelink/internal/models"
)

const (
	profileKeyPrefix  = "manufacturer:profile:"
	DefaultProfileTTL = 10 * time.Minute
)

// CachedManufacturerStore wraps a ManufacturerStore with a read-through
// profile cache in Redis. Single-profile lookups dominate analyze and
// broadcast traffic; pool listings bypass the cache since they change with
// every profile edit.
type CachedManufacturerStore struct {
	inner  ManufacturerStore
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedManufacturerStore(inner ManufacturerStore, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedManufacturerStore {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &CachedManufacturerStore{inner: inner, client: client, ttl: ttl, logger: log}
}

func (s *CachedManufacturerStore) GetManufacturer(ctx context.Context, manufacturerID string) (*models.ManufacturerProfile, error) {
	key := profileKeyPrefix + manufacturerID

	raw, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var p models.ManufacturerProfile
		if err := json.Unmarshal(raw, &p); err == nil {
			return &p, nil
		}
		s.client.Del(ctx, key)
	} else if err != redis.Nil {
		s.logger.WithError(err).Warn("profile cache read failed", map[string]interface{}{
			"manufacturerId": manufacturerID,
		})
	}

	p, err := s.inner.GetManufacturer(ctx, manufacturerID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(p); err == nil {
		if err := s.client.Set(ctx, key, encoded, s.ttl).Err(); err != nil {
			s.logger.WithError(err).Warn("profile cache write failed", map[string]interface{}{
				"manufacturerId": manufacturerID,
			})
		}
	}
	return p, nil
}

func (s *CachedManufacturerStore) GetManufacturers(ctx context.Context, manufacturerIDs []string) ([]*models.ManufacturerProfile, error) {
	return s.inner.GetManufacturers(ctx, manufacturerIDs)
}

func (s *CachedManufacturerStore) ListEligible(ctx context.Context) ([]*models.ManufacturerProfile, error) {
	return s.inner.ListEligible(ctx)
}

// Evict drops a cached profile after an update so the next read sees fresh
// data.
func (s *CachedManufacturerStore) Evict(ctx context.Context, manufacturerID string) {
	if err := s.client.Del(ctx, profileKeyPrefix+manufacturerID).Err(); err != nil {
		s.logger.WithError(err).Warn("profile cache evict failed", map[string]interface{}{
			"manufacturerId": manufacturerID,
		})
	}
}
