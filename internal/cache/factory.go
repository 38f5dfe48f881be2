// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"time"
)

// Backend names reported by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects the Redis backend when set.
	RedisURL   string
	Prefix     string
	DefaultTTL time.Duration
	// MaxEntries bounds the memory backend (0 = unlimited).
	MaxEntries      int
	CleanupInterval time.Duration
}

// New creates a Redis cache when RedisURL is set and an in-memory cache
// otherwise. It returns the name of the backend in use.
func New(cfg Config) (Cacher, string, error) {
	if cfg.RedisURL != "" {
		opts := DefaultRedisCacheOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}
		c, err := NewRedisCache(opts)
		if err != nil {
			return nil, "", err
		}
		slog.Info("cache backend ready", "backend", BackendRedis, "prefix", opts.Prefix)
		return c, BackendRedis, nil
	}

	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	c := NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxEntries:      cfg.MaxEntries,
		CleanupInterval: cfg.CleanupInterval,
	})
	slog.Info("cache backend ready", "backend", BackendMemory, "max_entries", cfg.MaxEntries)
	return c, BackendMemory, nil
}
