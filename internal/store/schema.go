// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sync/atomic"

	"github.com/pressly/goose/v3"
	"golang.org/x/sync/singleflight"
)

//go:embed migrations/*.sql
var migrations embed.FS

// columnSpec is a column that may be missing from tables created by older
// releases, together with the definition used to add it.
type columnSpec struct {
	table      string
	column     string
	definition string
}

// legacyColumns lists every column added after the first catalog release.
// CREATE TABLE IF NOT EXISTS leaves existing tables untouched, so these are
// added by inspection.
var legacyColumns = []columnSpec{
	{"products", "images", "TEXT NOT NULL DEFAULT '[]'"},
	{"products", "background_video", "TEXT NOT NULL DEFAULT ''"},
	{"products", "created_at", "INTEGER NOT NULL DEFAULT 0"},
	{"products", "updated_at", "INTEGER NOT NULL DEFAULT 0"},
	{"product_translations", "short_description", "TEXT NOT NULL DEFAULT ''"},
	{"product_translations", "full_description", "TEXT NOT NULL DEFAULT ''"},
	{"product_translations", "features", "TEXT NOT NULL DEFAULT '[]'"},
	{"product_translations", "specifications", "TEXT NOT NULL DEFAULT '[]'"},
	{"services", "images", "TEXT NOT NULL DEFAULT '[]'"},
	{"services", "created_at", "INTEGER NOT NULL DEFAULT 0"},
	{"services", "updated_at", "INTEGER NOT NULL DEFAULT 0"},
	{"service_translations", "description", "TEXT NOT NULL DEFAULT ''"},
	{"service_translations", "features", "TEXT NOT NULL DEFAULT '[]'"},
	{"service_translations", "benefits", "TEXT NOT NULL DEFAULT '[]'"},
	{"news", "images", "TEXT NOT NULL DEFAULT '[]'"},
	{"news", "is_featured", "INTEGER NOT NULL DEFAULT 0"},
	{"news", "views", "INTEGER NOT NULL DEFAULT 0"},
	{"news", "created_at", "INTEGER NOT NULL DEFAULT 0"},
	{"news", "updated_at", "INTEGER NOT NULL DEFAULT 0"},
	{"news_translations", "excerpt", "TEXT NOT NULL DEFAULT ''"},
	{"news_translations", "content", "TEXT NOT NULL DEFAULT ''"},
	{"product_comments", "created_at", "INTEGER NOT NULL DEFAULT 0"},
}

// ordering indexes depend on reconciled columns, so they are created last.
var orderingIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_services_created_at ON services(created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_news_created_at ON news(created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_product_comments_product ON product_comments(product_id, created_at DESC)",
}

// Schema brings the database schema to the version this binary expects.
//
// Ensure is safe for concurrent use. The first caller runs the migrations
// while later callers wait on the same in-flight run and share its result.
// A failed run leaves the schema unmarked so the next call retries.
type Schema struct {
	db     *sql.DB
	logger *slog.Logger
	ready  atomic.Bool
	group  singleflight.Group
	runs   atomic.Int64

	// apply performs the physical initialization. Replaced in tests.
	apply func(ctx context.Context) error
}

// NewSchema creates a schema manager for db.
func NewSchema(db *sql.DB, logger *slog.Logger) *Schema {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Schema{db: db, logger: logger}
	s.apply = s.migrate
	return s
}

// Ensure initializes the schema once per process. After the first success
// it costs one atomic load.
func (s *Schema) Ensure(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}

	ch := s.group.DoChan("schema", func() (any, error) {
		if s.ready.Load() {
			return nil, nil
		}
		s.runs.Add(1)
		// A caller giving up must not abort the run the other waiters share.
		if err := s.apply(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}
		s.ready.Store(true)
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return &Error{Op: "schema.ensure", Kind: ErrStorageFault, Err: res.Err}
		}
		return nil
	case <-ctx.Done():
		return &Error{Op: "schema.ensure", Kind: ErrUnavailable, Err: ctx.Err()}
	}
}

// Ready reports whether Ensure has completed successfully.
func (s *Schema) Ready() bool {
	return s.ready.Load()
}

// Runs reports how many physical initializations were attempted.
func (s *Schema) Runs() int64 {
	return s.runs.Load()
}

// migrate runs pending goose migrations and then adds missing columns.
func (s *Schema) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %w", err)
	}

	// Provider keeps its state per instance, unlike goose.Up with the
	// package-level base FS and dialect.
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Info("migration applied",
			"version", r.Source.Version,
			"file", r.Source.Path,
			"duration", r.Duration)
	}

	if err := s.reconcileColumns(ctx); err != nil {
		return fmt.Errorf("reconciling columns: %w", err)
	}
	for _, stmt := range orderingIndexes {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// reconcileColumns adds every column from legacyColumns that its table lacks.
func (s *Schema) reconcileColumns(ctx context.Context) error {
	existing := make(map[string]map[string]bool)

	for _, spec := range legacyColumns {
		cols, ok := existing[spec.table]
		if !ok {
			var err error
			cols, err = s.tableColumns(ctx, spec.table)
			if err != nil {
				return err
			}
			existing[spec.table] = cols
		}
		if cols[spec.column] {
			continue
		}

		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", spec.table, spec.column, spec.definition)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("adding %s.%s: %w", spec.table, spec.column, err)
		}
		cols[spec.column] = true
		s.logger.Info("column added", "table", spec.table, "column", spec.column)
	}
	return nil
}

// tableColumns returns the column names of table using PRAGMA table_info.
func (s *Schema) tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scanning %s columns: %w", table, err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
