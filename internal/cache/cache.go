// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache stores search results and scraped pages between runs so
// repeated research on the same topic skips redundant network calls.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pdiddy/research-agent/pkg/types"
)

// DefaultTTL is how long entries stay valid when the caller passes no
// explicit TTL.
const DefaultTTL = 24 * time.Hour

// Cache stores byte values under string keys with per-entry expiry.
// Implementations must be safe for concurrent use. Get reports a miss
// for absent and expired entries alike; backends swallow their own
// internal failures on reads so a broken cache never fails a run.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
	Close() error
}

// New builds the cache selected by cfg. The "none" backend yields a nil
// Cache, which callers treat as caching disabled.
func New(cfg types.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "", types.CacheNone:
		return nil, nil
	case types.CacheMemory:
		return NewMemory(), nil
	case types.CacheSQLite:
		return NewSQLite(cfg.Dir)
	case types.CacheRedis:
		return NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Key hashes s into the fixed-width form used for every cache key.
func Key(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// SearchKey builds the key for one search call. Count and region are
// part of the identity: the same query with a different scope is a
// different entry.
func SearchKey(query string, count int, region string) string {
	return Key(fmt.Sprintf("search:%s:%d:%s", query, count, region))
}

// PageKey builds the key for one scraped URL.
func PageKey(url string) string {
	return Key(url)
}
