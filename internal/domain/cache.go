package domain

import (
	"context"
	"time"
)

// Cache stores upstream API responses keyed by rounded coordinates or
// normalized place names. Backed by a local LRU (Community) or Redis,
// optionally layered over the LRU (Pro).
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error

	// GetForecast retrieves a cached forecast payload.
	GetForecast(ctx context.Context, key string) (*ForecastPayload, error)

	// SetForecast caches a forecast payload.
	SetForecast(ctx context.Context, key string, payload *ForecastPayload, ttl time.Duration) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string

	// Local LRU cache settings (Community tier)
	LocalMaxSize int
	LocalTTL     time.Duration

	// TTLs for upstream responses
	ForecastTTL time.Duration
	GeocodeTTL  time.Duration

	// Redis settings (Pro tier)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Two-phase settings
	EnableTwoPhase bool // If true, check local first, then Redis
}
