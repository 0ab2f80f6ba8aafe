// Package cache provides caching implementations for upstream API
// responses.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

// payloadPrefix namespaces decoded forecast payloads away from raw
// upstream response bytes.
const payloadPrefix = "payload:"

// New builds the cache for the configured tier: an in-process LRU for
// "memory", Redis for "redis", or the two-phase combination when
// EnableTwoPhase is set.
func New(cfg domain.CacheConfig) (domain.Cache, error) {
	switch cfg.Type {
	case "memory":
		return NewLRUCache(cfg.LocalMaxSize), nil
	case "redis":
		if cfg.EnableTwoPhase {
			return NewTwoPhaseCache(cfg)
		}
		return NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}

func encodePayload(payload *domain.ForecastPayload) ([]byte, error) {
	return json.Marshal(payload)
}

func decodePayload(data []byte) (*domain.ForecastPayload, error) {
	if data == nil {
		return nil, nil
	}
	var payload domain.ForecastPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// TwoPhaseCache layers a local LRU (L1) over Redis (L2). Reads hit L1
// first and refill it from L2; writes go to both, with L1 capped at the
// configured local TTL.
type TwoPhaseCache struct {
	local  *LRUCache
	remote *RedisCache
	l1TTL  time.Duration
}

// NewTwoPhaseCache builds the layered cache. Fails if Redis is unreachable.
func NewTwoPhaseCache(cfg domain.CacheConfig) (*TwoPhaseCache, error) {
	remote, err := NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis cache: %w", err)
	}

	l1TTL := cfg.LocalTTL
	if l1TTL == 0 {
		l1TTL = 5 * time.Minute
	}

	return &TwoPhaseCache{
		local:  NewLRUCache(cfg.LocalMaxSize),
		remote: remote,
		l1TTL:  l1TTL,
	}, nil
}

func (c *TwoPhaseCache) localTTL(ttl time.Duration) time.Duration {
	if ttl < c.l1TTL {
		return ttl
	}
	return c.l1TTL
}

// Get reads L1 then L2, refilling L1 on an L2 hit.
func (c *TwoPhaseCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.local.Get(ctx, key)
	if err != nil || val != nil {
		return val, err
	}

	val, err = c.remote.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if val != nil {
		_ = c.local.Set(ctx, key, val, c.l1TTL)
	}
	return val, nil
}

// Set writes to both layers.
func (c *TwoPhaseCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.local.Set(ctx, key, value, c.localTTL(ttl)); err != nil {
		return err
	}
	return c.remote.Set(ctx, key, value, ttl)
}

// Delete removes the key from both layers.
func (c *TwoPhaseCache) Delete(ctx context.Context, key string) error {
	if err := c.local.Delete(ctx, key); err != nil {
		return err
	}
	return c.remote.Delete(ctx, key)
}

// GetForecast reads a decoded forecast payload through both layers.
func (c *TwoPhaseCache) GetForecast(ctx context.Context, key string) (*domain.ForecastPayload, error) {
	data, err := c.Get(ctx, payloadPrefix+key)
	if err != nil {
		return nil, err
	}
	return decodePayload(data)
}

// SetForecast caches a decoded forecast payload in both layers.
func (c *TwoPhaseCache) SetForecast(ctx context.Context, key string, payload *domain.ForecastPayload, ttl time.Duration) error {
	data, err := encodePayload(payload)
	if err != nil {
		return err
	}
	return c.Set(ctx, payloadPrefix+key, data, ttl)
}

// Ping verifies both layers.
func (c *TwoPhaseCache) Ping(ctx context.Context) error {
	if err := c.local.Ping(ctx); err != nil {
		return fmt.Errorf("L1 ping failed: %w", err)
	}
	if err := c.remote.Ping(ctx); err != nil {
		return fmt.Errorf("L2 ping failed: %w", err)
	}
	return nil
}

// Close releases both layers.
func (c *TwoPhaseCache) Close() error {
	_ = c.local.Close()
	return c.remote.Close()
}

// Stats reports the L1 fill level.
func (c *TwoPhaseCache) Stats() (size int, capacity int) {
	return c.local.Stats()
}
