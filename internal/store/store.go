// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store persists the localized catalog: products, services and news
// with per-locale translations, the product comment ledger and the operator
// event log, all in one embedded SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// Options configures a Store.
type Options struct {
	// Locales is the closed set of accepted translation locales.
	// Defaults to model.DefaultLocales.
	Locales *model.LocaleSet
	// CommentPolicy decides whether deleting a product deletes its comments.
	// Defaults to model.OnDeleteOrphan.
	CommentPolicy model.DeletePolicy
	Logger        *slog.Logger
	// Now is the clock used for timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Store groups the catalog stores around one shared connection pool.
type Store struct {
	db      *sql.DB
	locales *model.LocaleSet

	Schema   *Schema
	Products *ProductStore
	Services *ServiceStore
	News     *NewsStore
	Comments *CommentStore
	Events   *EventStore
}

// New creates a Store on db. The schema is initialized lazily by the first
// operation, or eagerly with Schema.Ensure.
func New(db *sql.DB, opts Options) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: nil database")
	}
	if opts.Locales == nil {
		opts.Locales = model.MustLocaleSet(model.DefaultLocales...)
	}
	if opts.CommentPolicy == "" {
		opts.CommentPolicy = model.OnDeleteOrphan
	}
	if !opts.CommentPolicy.Valid() {
		return nil, fmt.Errorf("store: unknown comment delete policy %q", opts.CommentPolicy)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	schema := NewSchema(db, opts.Logger)
	base := entityBase{db: db, schema: schema, locales: opts.Locales, now: opts.Now}
	comments := newCommentStore(base)

	return &Store{
		db:       db,
		locales:  opts.Locales,
		Schema:   schema,
		Products: newProductStore(base, comments, opts.CommentPolicy),
		Services: newServiceStore(base),
		News:     newNewsStore(base),
		Comments: comments,
		Events:   &EventStore{db: db, schema: schema},
	}, nil
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Locales returns the locale set translations are validated against.
func (s *Store) Locales() *model.LocaleSet {
	return s.locales
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return classify("store.ping", s.db.PingContext(ctx))
}

// Checkpoint truncates the write-ahead log.
func (s *Store) Checkpoint(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	return classify("store.checkpoint", err)
}

// Optimize lets SQLite refresh query planner statistics.
func (s *Store) Optimize(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "PRAGMA optimize")
	return classify("store.optimize", err)
}
