// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"
)

// skipIfNoRedis skips the test if Redis is not configured.
func skipIfNoRedis(t *testing.T) string {
	url := os.Getenv("CATALOG_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: CATALOG_TEST_REDIS_URL not set")
	}
	return url
}

func TestRedisCache_Basic(t *testing.T) {
	url := skipIfNoRedis(t)

	opts := DefaultRedisCacheOptions()
	opts.URL = url
	opts.Prefix = fmt.Sprintf("catalog-test-%d:", time.Now().UnixNano())
	c, err := NewRedisCache(opts)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer func() { _ = c.Close() }()

	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want v", got)
	}

	_ = c.Set(ctx, "p:1", []byte("1"), time.Minute)
	if err := c.DeleteByPrefix(ctx, "p:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}
	if _, err := c.Get(ctx, "p:1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after DeleteByPrefix = %v, want ErrCacheMiss", err)
	}

	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if s := c.Stats(); s.Hits < 1 || s.Misses < 1 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestRedisCache_RequiresURL(t *testing.T) {
	if _, err := NewRedisCache(RedisCacheOptions{}); err == nil {
		t.Fatal("expected error without URL")
	}
}
