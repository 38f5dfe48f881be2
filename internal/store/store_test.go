// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "catalog-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testClock returns strictly increasing times, one millisecond apart.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

// testStore opens a store on a fresh database with the schema in place.
func testStore(t *testing.T, opts Options) *Store {
	t.Helper()

	if opts.Now == nil {
		opts.Now = newTestClock().Now
	}
	s, err := New(testDB(t), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Schema.Ensure(context.Background()); err != nil {
		t.Fatalf("Schema.Ensure: %v", err)
	}
	return s
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	_, err := New(testDB(t), Options{CommentPolicy: "archive"})
	if err == nil {
		t.Fatal("expected error for unknown comment policy")
	}
}

func TestNewNilDB(t *testing.T) {
	if _, err := New(nil, Options{}); err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     DBConfig
		want    []string
		wantErr bool
	}{
		{
			name: "modernc",
			cfg:  DBConfig{Driver: DriverModernc, BusyTimeout: 2 * time.Second},
			want: []string{"busy_timeout%282000%29", "foreign_keys%281%29", "_txlock=immediate"},
		},
		{
			name: "mattn",
			cfg:  DBConfig{Driver: DriverMattn, BusyTimeout: 3 * time.Second},
			want: []string{"_busy_timeout=3000", "_foreign_keys=on", "_txlock=immediate"},
		},
		{
			name:    "unknown driver",
			cfg:     DBConfig{Driver: "postgres"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := buildDSN("/tmp/x.db", tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("buildDSN() = %q, want error", dsn)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildDSN: %v", err)
			}
			for _, part := range tt.want {
				if !strings.Contains(dsn, part) {
					t.Errorf("dsn %q does not contain %q", dsn, part)
				}
			}
		})
	}
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Hold several connections at once so the pool cannot hand back the same one.
	conns := make([]*sql.Conn, 3)
	for i := range conns {
		c, err := db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn: %v", err)
		}
		conns[i] = c
	}
	for i, c := range conns {
		var on int
		if err := c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on); err != nil {
			t.Fatalf("PRAGMA foreign_keys: %v", err)
		}
		if on != 1 {
			t.Errorf("connection %d: foreign_keys = %d, want 1", i, on)
		}
	}
	for _, c := range conns {
		_ = c.Close()
	}
}

func TestMattnDriver(t *testing.T) {
	cfg := DefaultDBConfig()
	cfg.Driver = DriverMattn
	db, err := NewDBWithConfig(filepath.Join(t.TempDir(), "mattn.db"), cfg)
	if err != nil {
		t.Skipf("mattn driver unavailable (cgo disabled?): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s, err := New(db, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	p, err := s.Products.Create(ctx, model.ProductFields{Images: []string{"/a.jpg"}},
		map[model.Locale]model.ProductTranslation{model.LocaleEn: {Name: "Swing"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := s.Products.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Translations[model.LocaleEn].Name != "Swing" {
		t.Errorf("name = %q, want Swing", got.Translations[model.LocaleEn].Name)
	}
}

func TestSeed(t *testing.T) {
	s := testStore(t, Options{})
	ctx := context.Background()

	if err := Seed(ctx, s); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := Seed(ctx, s); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	products, err := s.Products.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("products = %d, want 1 (seed must be idempotent)", len(products))
	}
	if products[0].Translations[model.LocaleFa].Name != "تاب" {
		t.Errorf("fa name = %q, want تاب", products[0].Translations[model.LocaleFa].Name)
	}

	news, err := s.News.List(ctx, "")
	if err != nil {
		t.Fatalf("List news: %v", err)
	}
	if len(news) != 1 || !news[0].IsFeatured {
		t.Errorf("expected one featured news item, got %+v", news)
	}
}

func TestMaintenancePragmas(t *testing.T) {
	s := testStore(t, Options{})
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := s.Checkpoint(ctx); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	if err := s.Optimize(ctx); err != nil {
		t.Fatalf("Optimize: %v", err)
	}
}
