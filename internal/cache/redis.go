package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SaadGoaya/Farmer-aid/internal/domain"
)

// keyspace prefixes every key so the service can share a Redis instance.
const keyspace = "farmeraid:"

// RedisCache backs the Pro tier and the L2 of the two-phase cache.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection with a
// bounded ping.
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Get returns the value for key, or nil on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, keyspace+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores value under key for ttl.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, keyspace+key, value, ttl).Err()
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, keyspace+key).Err()
}

// GetForecast returns a cached decoded forecast payload, or nil on miss.
func (c *RedisCache) GetForecast(ctx context.Context, key string) (*domain.ForecastPayload, error) {
	data, err := c.Get(ctx, payloadPrefix+key)
	if err != nil {
		return nil, err
	}
	return decodePayload(data)
}

// SetForecast caches a decoded forecast payload.
func (c *RedisCache) SetForecast(ctx context.Context, key string, payload *domain.ForecastPayload, ttl time.Duration) error {
	data, err := encodePayload(payload)
	if err != nil {
		return err
	}
	return c.Set(ctx, payloadPrefix+key, data, ttl)
}

// Ping verifies Redis connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
