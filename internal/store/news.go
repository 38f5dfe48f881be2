// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// newsRow is the neutral part of a news row. views is read but never written
// through the generic update path.
type newsRow struct {
	fields model.NewsFields
	views  int64
}

// NewsStore persists news items, their translations and view counters.
type NewsStore struct {
	entities *entityStore[newsRow, model.NewsTranslation]
}

func newNewsStore(base entityBase) *NewsStore {
	es := &entityStore[newsRow, model.NewsTranslation]{
		db:          base.db,
		schema:      base.schema,
		locales:     base.locales,
		now:         base.now,
		kind:        model.KindNews,
		table:       "news",
		transTable:  "news_translations",
		ownerColumn: "news_id",
		neutral: neutralCodec[newsRow]{
			columns: []string{"images", "is_featured"},
			extra:   []string{"views"},
			encode: func(r newsRow) []any {
				return []any{EncodeList(r.fields.Images), r.fields.IsFeatured}
			},
			newScan: func() ([]any, func() newsRow) {
				var (
					images   sql.NullString
					featured sql.NullBool
					views    sql.NullInt64
				)
				return []any{&images, &featured, &views}, func() newsRow {
					return newsRow{
						fields: model.NewsFields{
							Images:     DecodeList(images.String),
							IsFeatured: featured.Bool,
						},
						views: views.Int64,
					}
				}
			},
		},
		trans: translationCodec[model.NewsTranslation]{
			columns: []string{"title", "excerpt", "content"},
			encode: func(t model.NewsTranslation) []any {
				return []any{t.Title, t.Excerpt, t.Content}
			},
			newScan: func() ([]any, func() model.NewsTranslation) {
				var title, excerpt, content sql.NullString
				return []any{&title, &excerpt, &content}, func() model.NewsTranslation {
					return model.NewsTranslation{
						Title:   title.String,
						Excerpt: excerpt.String,
						Content: content.String,
					}
				}
			},
			validate: func(t model.NewsTranslation) error {
				t.Title = strings.TrimSpace(t.Title)
				return validation.ValidateStruct(&t,
					validation.Field(&t.Title, validation.Required, validation.RuneLength(1, 255)),
					validation.Field(&t.Excerpt, validation.RuneLength(0, 1000)),
				)
			},
		},
	}
	es.prepareSQL()

	return &NewsStore{entities: es}
}

// Create stores a new news item with its translations and returns it.
// The view counter starts at zero.
func (s *NewsStore) Create(ctx context.Context, fields model.NewsFields, translations map[model.Locale]model.NewsTranslation) (*model.News, error) {
	rec, err := s.entities.create(ctx, newsRow{fields: fields}, translations)
	if err != nil {
		return nil, err
	}
	return toNews(rec), nil
}

// Get returns a news item with all of its translations.
func (s *NewsStore) Get(ctx context.Context, id string) (*model.News, error) {
	rec, err := s.entities.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toNews(rec), nil
}

// Update overwrites the editable neutral fields and upserts the given
// translations. The view counter is not changed.
func (s *NewsStore) Update(ctx context.Context, id string, fields model.NewsFields, translations map[model.Locale]model.NewsTranslation) error {
	return s.entities.update(ctx, id, newsRow{fields: fields}, translations)
}

// Delete removes a news item and its translations.
func (s *NewsStore) Delete(ctx context.Context, id string) error {
	return s.entities.delete(ctx, id)
}

// List returns all news items, newest first.
func (s *NewsStore) List(ctx context.Context, locale model.Locale) ([]model.News, error) {
	if err := s.entities.checkLocale(locale); err != nil {
		return nil, err
	}
	recs, err := s.entities.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.News, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *toNews(rec))
	}
	return out, nil
}

// Count returns the number of news items.
func (s *NewsStore) Count(ctx context.Context) (int64, error) {
	return s.entities.count(ctx)
}

// IncrementViews adds one to the view counter and returns the new value.
// The increment is a single statement, so concurrent calls never lose an
// update. It does not touch updated_at.
func (s *NewsStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	const op = "news.increment_views"
	if err := s.entities.schema.Ensure(ctx); err != nil {
		return 0, err
	}

	var views int64
	err := s.entities.db.QueryRowContext(ctx,
		"UPDATE news SET views = views + 1 WHERE id = ? RETURNING views", id).Scan(&views)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFound(op, string(model.KindNews), id)
	}
	if err != nil {
		return 0, classify(op, err)
	}
	return views, nil
}

func toNews(rec *record[newsRow, model.NewsTranslation]) *model.News {
	return &model.News{
		ID:           rec.ID,
		NewsFields:   rec.Fields.fields,
		Views:        rec.Fields.views,
		Translations: rec.Translations,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}
