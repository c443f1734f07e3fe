// internal/matching/engine/cache.go
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"forgelink/internal/common/logger"
	"forgelink/internal/common/metrics"
	"forgelink/internal/matching/scoring"
	"forgelink/internal/models"
)

const (
	// DefaultCacheTTL bounds staleness of cached rankings.
	DefaultCacheTTL = 30 * time.Minute

	resultKeyPrefix = "match:result:"
	poolVersionKey  = "match:pool:version"
)

// ResultCache is an advisory read-through cache for ranked results. Every
// cache failure degrades to recomputation; it never affects correctness.
// Keys embed a pool version so a single bump invalidates all cached rankings
// when manufacturer capabilities or profiles change.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewResultCache(client *redis.Client, ttl time.Duration, log logger.Logger) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &ResultCache{client: client, ttl: ttl, logger: log}
}

// CacheScope captures the per-request inputs beyond the order and weights
// that determine a ranking: the candidate pool identity, whether fallback may
// run, and any per-call threshold overrides. Two requests share a cache entry
// only when their scopes are identical.
type CacheScope struct {
	CandidateIDs       []string `json:"candidateIds"`
	Fallback           bool     `json:"fallback"`
	FuzzyThreshold     float64  `json:"fuzzyThreshold,omitempty"`
	MinViableScore     float64  `json:"minViableScore,omitempty"`
	CapacityCeilingPct float64  `json:"capacityCeilingPct,omitempty"`
	MaxRiskFactors     int      `json:"maxRiskFactors,omitempty"`
}

// Get returns the cached ranking for this order, weight set and request
// scope, if present.
func (c *ResultCache) Get(ctx context.Context, order *models.Order, weights scoring.Weights, scope CacheScope) ([]models.MatchResult, bool) {
	key, err := c.key(ctx, order, weights, scope)
	if err != nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Warn("result cache read failed", map[string]interface{}{"key": key})
		}
		metrics.CacheMisses.Inc()
		return nil, false
	}

	var results []models.MatchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		c.logger.WithError(err).Warn("result cache entry corrupt, dropping", map[string]interface{}{"key": key})
		c.client.Del(ctx, key)
		metrics.CacheMisses.Inc()
		return nil, false
	}
	metrics.CacheHits.Inc()
	return results, true
}

// Set stores a ranking under the current pool version.
func (c *ResultCache) Set(ctx context.Context, order *models.Order, weights scoring.Weights, scope CacheScope, results []models.MatchResult) {
	key, err := c.key(ctx, order, weights, scope)
	if err != nil {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("result cache write failed", map[string]interface{}{"key": key})
	}
}

// Invalidate bumps the pool version, orphaning every cached ranking. Called
// when manufacturer capabilities or profiles change; orphaned entries expire
// via TTL.
func (c *ResultCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, poolVersionKey).Err(); err != nil {
		return fmt.Errorf("bumping pool version: %w", err)
	}
	return nil
}

func (c *ResultCache) key(ctx context.Context, order *models.Order, weights scoring.Weights, scope CacheScope) (string, error) {
	version, err := c.client.Get(ctx, poolVersionKey).Result()
	if err == redis.Nil {
		version = "0"
	} else if err != nil {
		return "", err
	}

	fp, err := fingerprint(order, weights, scope)
	if err != nil {
		return "", err
	}
	return resultKeyPrefix + version + ":" + fp, nil
}

// fingerprint produces a stable digest of the order requirements, weight set
// and request scope. Weights and candidate IDs are serialized in sorted order
// so map iteration and pool ordering cannot change the key.
func fingerprint(order *models.Order, weights scoring.Weights, scope CacheScope) (string, error) {
	type dimWeight struct {
		Dimension models.Dimension `json:"dimension"`
		Weight    float64          `json:"weight"`
	}

	sorted := make([]dimWeight, 0, len(weights))
	for dim, w := range weights {
		sorted = append(sorted, dimWeight{Dimension: dim, Weight: w})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Dimension < sorted[j].Dimension })

	ids := make([]string, len(scope.CandidateIDs))
	copy(ids, scope.CandidateIDs)
	sort.Strings(ids)
	scope.CandidateIDs = ids

	payload, err := json.Marshal(struct {
		Order   *models.Order `json:"order"`
		Weights []dimWeight   `json:"weights"`
		Scope   CacheScope    `json:"scope"`
	}{Order: order, Weights: sorted, Scope: scope})
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
