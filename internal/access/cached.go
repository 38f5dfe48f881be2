// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package access

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-catalog/internal/cache"
	"github.com/olegiv/ocms-catalog/internal/model"
)

// CachedGate remembers authorization decisions for a short time. Registry
// changes made through it drop the affected caller's decisions.
type CachedGate struct {
	inner     Gate
	decisions *cache.TypedCache[bool]
}

// NewCachedGate wraps inner with a decision cache.
func NewCachedGate(inner Gate, c cache.Cacher, ttl time.Duration) *CachedGate {
	return &CachedGate{
		inner:     inner,
		decisions: cache.NewTypedCache[bool](c, "access:", ttl),
	}
}

// IsGated implements Gate.
func (g *CachedGate) IsGated(kind model.Kind) bool {
	return g.inner.IsGated(kind)
}

// IsAuthorized implements Gate.
func (g *CachedGate) IsAuthorized(ctx context.Context, caller string, kind model.Kind, id string) (bool, error) {
	caller = NormalizePhone(caller)
	if caller == "" {
		return false, nil
	}
	return g.decisions.GetOrLoad(ctx, decisionKey(caller, kind, id), func(ctx context.Context) (bool, error) {
		return g.inner.IsAuthorized(ctx, caller, kind, id)
	})
}

// Invalidate drops every cached decision for caller.
func (g *CachedGate) Invalidate(ctx context.Context, caller string) error {
	return g.decisions.DeletePrefix(ctx, NormalizePhone(caller)+"|")
}

// AllowPhone implements Registry.
func (g *CachedGate) AllowPhone(ctx context.Context, phone string) error {
	return g.mutate(ctx, phone, func(r Registry) error { return r.AllowPhone(ctx, phone) })
}

// DisablePhone implements Registry.
func (g *CachedGate) DisablePhone(ctx context.Context, phone string) error {
	return g.mutate(ctx, phone, func(r Registry) error { return r.DisablePhone(ctx, phone) })
}

// Grant implements Registry.
func (g *CachedGate) Grant(ctx context.Context, phone, target string) error {
	return g.mutate(ctx, phone, func(r Registry) error { return r.Grant(ctx, phone, target) })
}

// Revoke implements Registry.
func (g *CachedGate) Revoke(ctx context.Context, phone, target string) error {
	return g.mutate(ctx, phone, func(r Registry) error { return r.Revoke(ctx, phone, target) })
}

func (g *CachedGate) mutate(ctx context.Context, phone string, fn func(Registry) error) error {
	r, ok := g.inner.(Registry)
	if !ok {
		return ErrReadOnly
	}
	if err := fn(r); err != nil {
		return err
	}
	if err := g.Invalidate(ctx, phone); err != nil {
		// Stale decisions expire with the TTL.
		slog.Warn("failed to invalidate access decisions", "category", model.EventCategoryCache, "error", err)
	}
	return nil
}

func decisionKey(caller string, kind model.Kind, id string) string {
	return caller + "|" + string(kind) + "|" + id
}

var (
	_ Gate     = (*CachedGate)(nil)
	_ Registry = (*CachedGate)(nil)
)
