// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces this tool's entries on shared Redis servers.
const keyPrefix = "research-agent:"

// Redis is a Cache backed by a Redis server, for sharing entries across
// processes or hosts. Expiry is delegated to Redis TTLs.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the server at addr and verifies it responds.
func NewRedis(addr, password string, db int) (*Redis, error) {
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
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (r *Redis) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := r.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("deleting cache entry: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning cache entries: %w", err)
	}
	return nil
}

// Close releases the client connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
