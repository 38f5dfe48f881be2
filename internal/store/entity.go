// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// neutralCodec maps the language-neutral fields N of an entity to columns.
// columns are written on create and update; extra columns are only read.
type neutralCodec[N any] struct {
	columns []string
	extra   []string
	encode  func(N) []any
	// newScan returns scan destinations for columns followed by extra, and a
	// function that builds N once the row has been scanned.
	newScan func() (dest []any, finish func() N)
}

// translationCodec maps the per-locale fields T of an entity to columns of
// its translation table.
type translationCodec[T any] struct {
	columns  []string
	encode   func(T) []any
	newScan  func() (dest []any, finish func() T)
	validate func(T) error
}

// record is an entity as stored: neutral fields plus the full translation map.
type record[N, T any] struct {
	ID           string
	Fields       N
	Translations map[model.Locale]T
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// entityBase carries the dependencies shared by every entity store.
type entityBase struct {
	db      *sql.DB
	schema  *Schema
	locales *model.LocaleSet
	now     func() time.Time
}

// entityStore implements create, read, update and delete for one entity
// table and its translation table. Products, services and news are
// instances of it.
type entityStore[N, T any] struct {
	db      *sql.DB
	schema  *Schema
	locales *model.LocaleSet
	now     func() time.Time

	kind        model.Kind
	table       string
	transTable  string
	ownerColumn string
	neutral     neutralCodec[N]
	trans       translationCodec[T]

	// beforeDelete runs inside the delete transaction before any row is removed.
	beforeDelete func(ctx context.Context, tx *sql.Tx, id string) error

	selectSQL      string
	insertSQL      string
	updateSQL      string
	insertTransSQL string
	upsertTransSQL string
}

// prepareSQL builds the statements used by the store from its table layout.
func (s *entityStore[N, T]) prepareSQL() {
	prefix := func(alias string) func(string, int) string {
		return func(c string, _ int) string { return alias + "." + c }
	}
	neutralCols := lo.Map(append(append([]string{}, s.neutral.columns...), s.neutral.extra...), prefix("e"))
	transCols := lo.Map(s.trans.columns, prefix("t"))

	s.selectSQL = fmt.Sprintf(
		"SELECT e.id, %s, e.created_at, e.updated_at, t.locale, %s FROM %s e LEFT JOIN %s t ON t.%s = e.id",
		strings.Join(neutralCols, ", "), strings.Join(transCols, ", "),
		s.table, s.transTable, s.ownerColumn)

	s.insertSQL = fmt.Sprintf("INSERT INTO %s (id, %s, created_at, updated_at) VALUES (?, %s, ?, ?)",
		s.table, strings.Join(s.neutral.columns, ", "), placeholders(len(s.neutral.columns)))

	sets := lo.Map(s.neutral.columns, func(c string, _ int) string { return c + " = ?" })
	s.updateSQL = fmt.Sprintf("UPDATE %s SET %s, updated_at = ? WHERE id = ?",
		s.table, strings.Join(sets, ", "))

	cols := append([]string{s.ownerColumn, "locale"}, s.trans.columns...)
	s.insertTransSQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.transTable, strings.Join(cols, ", "), placeholders(len(cols)))

	// The conflict target is the (owner, locale) key, so a second write for
	// the same locale overwrites instead of adding a row.
	excluded := lo.Map(s.trans.columns, func(c string, _ int) string { return c + " = excluded." + c })
	s.upsertTransSQL = fmt.Sprintf("%s ON CONFLICT(%s, locale) DO UPDATE SET %s",
		s.insertTransSQL, s.ownerColumn, strings.Join(excluded, ", "))
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (s *entityStore[N, T]) op(name string) string {
	return string(s.kind) + "." + name
}

// normalize resolves translation keys against the locale set and validates
// every translation. Two keys that resolve to the same locale are rejected.
func (s *entityStore[N, T]) normalize(in map[model.Locale]T) (map[model.Locale]T, error) {
	out := make(map[model.Locale]T, len(in))
	fields := make(map[string]string)

	for _, key := range model.SortedLocales(in) {
		loc, err := s.locales.Resolve(string(key))
		if err != nil {
			fields["translations."+string(key)] = "unsupported locale"
			continue
		}
		if _, dup := out[loc]; dup {
			fields["translations."+string(key)] = fmt.Sprintf("duplicate of locale %q", loc)
			continue
		}
		tr := in[key]
		if s.trans.validate != nil {
			if err := mergeValidation(fields, "translations."+string(loc)+".", s.trans.validate(tr)); err != nil {
				return nil, err
			}
		}
		out[loc] = tr
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return out, nil
}

// checkLocale validates an optional locale filter.
func (s *entityStore[N, T]) checkLocale(loc model.Locale) error {
	if loc == "" {
		return nil
	}
	if _, err := s.locales.Resolve(string(loc)); err != nil {
		return invalid("lang", "unsupported locale")
	}
	return nil
}

// create inserts the neutral row and every translation in one transaction.
// A duplicate locale surfaces as ErrConflict and nothing is written.
func (s *entityStore[N, T]) create(ctx context.Context, fields N, translations map[model.Locale]T) (*record[N, T], error) {
	op := s.op("create")
	if err := s.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	normalized, err := s.normalize(translations)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := s.now().UnixMilli()

	var rec *record[N, T]
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		args := append([]any{id}, s.neutral.encode(fields)...)
		args = append(args, now, now)
		if _, err := tx.ExecContext(ctx, s.insertSQL, args...); err != nil {
			return fmt.Errorf("inserting %s: %w", s.table, err)
		}
		if err := s.writeTranslations(ctx, tx, s.insertTransSQL, id, normalized); err != nil {
			return err
		}
		stored, err := s.getFrom(ctx, tx, id)
		rec = stored
		return err
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return rec, nil
}

// update overwrites the neutral row and upserts the given locales in one
// transaction. Locales missing from translations are left untouched.
func (s *entityStore[N, T]) update(ctx context.Context, id string, fields N, translations map[model.Locale]T) error {
	op := s.op("update")
	if err := s.schema.Ensure(ctx); err != nil {
		return err
	}
	normalized, err := s.normalize(translations)
	if err != nil {
		return err
	}

	now := s.now().UnixMilli()
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		args := append(s.neutral.encode(fields), now, id)
		res, err := tx.ExecContext(ctx, s.updateSQL, args...)
		if err != nil {
			return fmt.Errorf("updating %s: %w", s.table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return notFound(op, string(s.kind), id)
		}
		return s.writeTranslations(ctx, tx, s.upsertTransSQL, id, normalized)
	})
	return classify(op, err)
}

// delete removes the entity and its translations in one transaction.
func (s *entityStore[N, T]) delete(ctx context.Context, id string) error {
	op := s.op("delete")
	if err := s.schema.Ensure(ctx); err != nil {
		return err
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if s.beforeDelete != nil {
			if err := s.beforeDelete(ctx, tx, id); err != nil {
				return err
			}
		}
		// The foreign key cascades as well; the explicit delete keeps legacy
		// tables without the constraint consistent.
		q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", s.transTable, s.ownerColumn)
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("deleting translations: %w", err)
		}
		res, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.table), id)
		if err != nil {
			return fmt.Errorf("deleting %s: %w", s.table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return notFound(op, string(s.kind), id)
		}
		return nil
	})
	return classify(op, err)
}

// get loads one entity with all of its translations in a single statement.
func (s *entityStore[N, T]) get(ctx context.Context, id string) (*record[N, T], error) {
	if err := s.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	rec, err := s.getFrom(ctx, s.db, id)
	return rec, classify(s.op("get"), err)
}

func (s *entityStore[N, T]) getFrom(ctx context.Context, q queryer, id string) (*record[N, T], error) {
	recs, err := s.fetch(ctx, q, "WHERE e.id = ? ORDER BY t.locale", id)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFound(s.op("get"), string(s.kind), id)
	}
	return recs[0], nil
}

// list returns every entity, newest first.
func (s *entityStore[N, T]) list(ctx context.Context) ([]*record[N, T], error) {
	if err := s.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	recs, err := s.fetch(ctx, s.db, "ORDER BY e.created_at DESC, e.id, t.locale")
	if err != nil {
		return nil, classify(s.op("list"), err)
	}
	return recs, nil
}

// count returns the number of stored entities.
func (s *entityStore[N, T]) count(ctx context.Context) (int64, error) {
	if err := s.schema.Ensure(ctx); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)).Scan(&n)
	return n, classify(s.op("count"), err)
}

// writeTranslations executes query once per locale in a stable order.
func (s *entityStore[N, T]) writeTranslations(ctx context.Context, tx *sql.Tx, query, id string, translations map[model.Locale]T) error {
	if len(translations) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing translation write: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, loc := range model.SortedLocales(translations) {
		args := append([]any{id, string(loc)}, s.trans.encode(translations[loc])...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("writing %s translation: %w", loc, err)
		}
	}
	return nil
}

// fetch runs the joined select and groups consecutive rows by entity id.
// Rows come from one statement, so the neutral fields and the translation
// map always belong to the same snapshot.
func (s *entityStore[N, T]) fetch(ctx context.Context, q queryer, tail string, args ...any) ([]*record[N, T], error) {
	rows, err := q.QueryContext(ctx, s.selectSQL+" "+tail, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var (
		out []*record[N, T]
		cur *record[N, T]
	)
	for rows.Next() {
		var (
			id                 string
			created, updated   sql.NullInt64
			locale             sql.NullString
			neutral, finishN   = s.neutral.newScan()
			translated, finish = s.trans.newScan()
		)
		dest := make([]any, 0, 4+len(neutral)+len(translated))
		dest = append(dest, &id)
		dest = append(dest, neutral...)
		dest = append(dest, &created, &updated, &locale)
		dest = append(dest, translated...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", s.table, err)
		}

		if cur == nil || cur.ID != id {
			cur = &record[N, T]{
				ID:           id,
				Fields:       finishN(),
				Translations: make(map[model.Locale]T),
				CreatedAt:    fromMillis(created.Int64),
				UpdatedAt:    fromMillis(updated.Int64),
			}
			out = append(out, cur)
		}
		if locale.Valid {
			cur.Translations[s.storedLocale(locale.String)] = finish()
		}
	}
	return out, rows.Err()
}

// storedLocale maps a stored locale to its canonical form. Rows written
// before normalization may carry region subtags ("fa-IR").
func (s *entityStore[N, T]) storedLocale(raw string) model.Locale {
	if loc, err := s.locales.Resolve(raw); err == nil {
		return loc
	}
	return model.Locale(raw)
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
