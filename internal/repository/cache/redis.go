package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/contentforge/seo_editor/internal/service/ai"
)

const (
	// Cache key prefixes
	KeyPrefixScore      = "score:"
	KeyPrefixPriorScore = "prior_score:"

	// Default TTL for cached items
	DefaultTTL = 1 * time.Hour
)

// Repository represents a Redis cache repository for analysis results.
// All methods degrade to no-ops or misses when Redis is unavailable.
type Repository struct {
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
}

// NewRepository creates a new Redis cache repository
func NewRepository(client *redis.Client, ttl time.Duration) *Repository {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Repository{
		client: client,
		ctx:    context.Background(),
		ttl:    ttl,
	}
}

// CacheScoreResult stores a completed analysis keyed by document fingerprint
func (r *Repository) CacheScoreResult(fingerprint string, result *ai.ScoreResult) error {
	if r.client == nil {
		return nil // Skip if Redis is not available
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal score result: %w", err)
	}

	return r.client.Set(r.ctx, KeyPrefixScore+fingerprint, data, r.ttl).Err()
}

// GetScoreResult retrieves a cached analysis by fingerprint
func (r *Repository) GetScoreResult(fingerprint string) (*ai.ScoreResult, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	data, err := r.client.Get(r.ctx, KeyPrefixScore+fingerprint).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss, not an error
		}
		return nil, err
	}

	var result ai.ScoreResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal score result: %w", err)
	}

	return &result, nil
}

// CachePriorScore stores the last known overall score for a fingerprint
func (r *Repository) CachePriorScore(fingerprint string, overall int) error {
	if r.client == nil {
		return nil
	}
	return r.client.Set(r.ctx, KeyPrefixPriorScore+fingerprint, overall, r.ttl).Err()
}

// GetPriorScore retrieves the last known overall score for a fingerprint.
// The boolean is false on a cache miss.
func (r *Repository) GetPriorScore(fingerprint string) (int, bool, error) {
	if r.client == nil {
		return 0, false, fmt.Errorf("redis client not available")
	}

	overall, err := r.client.Get(r.ctx, KeyPrefixPriorScore+fingerprint).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	return overall, true, nil
}

// InvalidateScore removes a cached analysis
func (r *Repository) InvalidateScore(fingerprint string) error {
	if r.client == nil {
		return nil
	}
	return r.client.Del(r.ctx, KeyPrefixScore+fingerprint).Err()
}
