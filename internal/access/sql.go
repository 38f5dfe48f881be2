// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package access

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// Ensurer initializes the tables the gate reads. *store.Schema implements it.
type Ensurer interface {
	Ensure(ctx context.Context) error
}

// SQLGate reads the allow-list and grants from the catalog database.
type SQLGate struct {
	db     *sql.DB
	schema Ensurer
	gated  map[model.Kind]bool
	now    func() time.Time
}

// NewSQLGate creates a gate over db for the given gated kinds.
func NewSQLGate(db *sql.DB, schema Ensurer, gated []model.Kind) *SQLGate {
	return &SQLGate{db: db, schema: schema, gated: kindSet(gated), now: time.Now}
}

// IsGated implements Gate.
func (g *SQLGate) IsGated(kind model.Kind) bool {
	return g.gated[kind]
}

// IsAuthorized implements Gate.
func (g *SQLGate) IsAuthorized(ctx context.Context, caller string, kind model.Kind, id string) (bool, error) {
	caller = NormalizePhone(caller)
	if caller == "" || id == "" {
		return false, nil
	}
	if err := g.schema.Ensure(ctx); err != nil {
		return false, err
	}

	var allowed bool
	err := g.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM access_phones p
			JOIN access_grants g ON g.phone = p.phone
			WHERE p.phone = ? AND p.active = 1 AND g.entity_id IN (?, ?, ?)
		)`, caller, id, WildcardKind(kind), WildcardAll).Scan(&allowed)
	if err != nil {
		return false, fmt.Errorf("checking access to %s %q: %w", kind, id, err)
	}
	return allowed, nil
}

// AllowPhone adds phone to the allow-list or re-activates it.
func (g *SQLGate) AllowPhone(ctx context.Context, phone string) error {
	phone, err := g.prepare(ctx, phone)
	if err != nil {
		return err
	}
	_, err = g.db.ExecContext(ctx, `
		INSERT INTO access_phones (phone, active, created_at) VALUES (?, 1, ?)
		ON CONFLICT(phone) DO UPDATE SET active = 1`, phone, g.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("allowing phone: %w", err)
	}
	return nil
}

// DisablePhone deactivates phone. Its grants are kept and apply again once
// the phone is re-allowed.
func (g *SQLGate) DisablePhone(ctx context.Context, phone string) error {
	phone, err := g.prepare(ctx, phone)
	if err != nil {
		return err
	}
	_, err = g.db.ExecContext(ctx, "UPDATE access_phones SET active = 0 WHERE phone = ?", phone)
	if err != nil {
		return fmt.Errorf("disabling phone: %w", err)
	}
	return nil
}

// Grant lets phone read target. The phone must already be allow-listed.
func (g *SQLGate) Grant(ctx context.Context, phone, target string) error {
	phone, target, err := g.prepareGrant(ctx, phone, target)
	if err != nil {
		return err
	}
	res, err := g.db.ExecContext(ctx, `
		INSERT INTO access_grants (phone, entity_id, created_at)
		SELECT phone, ?, ? FROM access_phones WHERE phone = ?
		ON CONFLICT(phone, entity_id) DO NOTHING`, target, g.now().UnixMilli(), phone)
	if err != nil {
		return fmt.Errorf("granting %q: %w", target, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	// Nothing inserted: either the grant exists or the phone is unknown.
	var known bool
	err = g.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM access_phones WHERE phone = ?)", phone).Scan(&known)
	if err != nil {
		return fmt.Errorf("granting %q: %w", target, err)
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownPhone, phone)
	}
	return nil
}

// Revoke removes a grant. Revoking a grant that does not exist is not an error.
func (g *SQLGate) Revoke(ctx context.Context, phone, target string) error {
	phone, target, err := g.prepareGrant(ctx, phone, target)
	if err != nil {
		return err
	}
	_, err = g.db.ExecContext(ctx,
		"DELETE FROM access_grants WHERE phone = ? AND entity_id = ?", phone, target)
	if err != nil {
		return fmt.Errorf("revoking %q: %w", target, err)
	}
	return nil
}

// prepareGrant normalizes the phone and trims the grant target the same way
// for Grant and Revoke.
func (g *SQLGate) prepareGrant(ctx context.Context, phone, target string) (string, string, error) {
	target = strings.TrimSpace(target)
	if !ValidTarget(target) {
		return "", "", fmt.Errorf("%w: invalid grant target %q", ErrInvalidInput, target)
	}
	phone, err := g.prepare(ctx, phone)
	if err != nil {
		return "", "", err
	}
	return phone, target, nil
}

func (g *SQLGate) prepare(ctx context.Context, phone string) (string, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return "", fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}
	if err := g.schema.Ensure(ctx); err != nil {
		return "", err
	}
	return phone, nil
}

var (
	_ Gate     = (*SQLGate)(nil)
	_ Registry = (*SQLGate)(nil)
)
