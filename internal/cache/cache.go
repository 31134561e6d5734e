// Package cache provides a short-TTL cache of provider offer responses.
// It de-duplicates identical candidate queries between closely spaced runs;
// entries expire quickly so no fare history accumulates.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/farewatch/farewatch/internal/domain"
)

// OfferCache stores raw offer lists keyed by the query that produced them.
type OfferCache interface {
	Get(ctx context.Context, key Key) ([]domain.Offer, bool)
	Set(ctx context.Context, key Key, offers []domain.Offer) error
	Close() error
}

// Key identifies one provider query. Two queries with equal keys would
// receive the same provider response within the cache TTL.
type Key struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Departure   string  `json:"departure"`
	Return      string  `json:"return"`
	Adults      int     `json:"adults"`
	Currency    string  `json:"currency"`
	MaxPrice    float64 `json:"maxPrice"`
	MaxResults  int     `json:"maxResults"`
	NonstopOnly bool    `json:"nonstopOnly"`
}

// KeyForCandidate builds the cache key for a candidate under a plan. Every
// plan field sent to the provider participates: a response cached under a
// tighter price ceiling or result cap must never answer a looser query.
func KeyForCandidate(candidate domain.DateCandidate, plan domain.SearchPlan) Key {
	return Key{
		Origin:      plan.Origin,
		Destination: plan.Destination,
		Departure:   candidate.Departure,
		Return:      candidate.Return,
		Adults:      plan.Adults,
		Currency:    plan.Currency,
		MaxPrice:    plan.MaxPrice,
		MaxResults:  plan.MaxResults,
		NonstopOnly: plan.NonstopOnly,
	}
}

// redisKey renders the key as a fixed-length Redis key.
func (k Key) redisKey() string {
	data, _ := json.Marshal(k)
	sum := sha256.Sum256(data)
	return "fare:" + hex.EncodeToString(sum[:])
}

// RedisConfig holds connection settings for the Redis-backed cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// DefaultTTL bounds how long a provider response may be reused.
const DefaultTTL = 5 * time.Minute

// RedisCache is an OfferCache backed by Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

// Get returns the cached offers for key, if present and fresh.
func (c *RedisCache) Get(ctx context.Context, key Key) ([]domain.Offer, bool) {
	data, err := c.client.Get(ctx, key.redisKey()).Bytes()
	if err != nil {
		return nil, false
	}

	var offers []domain.Offer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, false
	}
	return offers, true
}

// Set stores the offers for key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key Key, offers []domain.Offer) error {
	data, err := json.Marshal(offers)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key.redisKey(), data, c.ttl).Err()
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NoOpCache is an OfferCache that caches nothing. Used when no Redis
// address is configured.
type NoOpCache struct{}

// NewNoOpCache creates a cache that always misses.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (NoOpCache) Get(context.Context, Key) ([]domain.Offer, bool) { return nil, false }

func (NoOpCache) Set(context.Context, Key, []domain.Offer) error { return nil }

func (NoOpCache) Close() error { return nil }

// Ensure implementations satisfy the interface.
var (
	_ OfferCache = (*RedisCache)(nil)
	_ OfferCache = (*NoOpCache)(nil)
)
