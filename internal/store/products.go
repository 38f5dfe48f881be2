// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// ProductStore persists products, their translations and, on read, their comments.
type ProductStore struct {
	entities *entityStore[model.ProductFields, model.ProductTranslation]
	comments *CommentStore
}

func newProductStore(base entityBase, comments *CommentStore, policy model.DeletePolicy) *ProductStore {
	es := &entityStore[model.ProductFields, model.ProductTranslation]{
		db:          base.db,
		schema:      base.schema,
		locales:     base.locales,
		now:         base.now,
		kind:        model.KindProduct,
		table:       "products",
		transTable:  "product_translations",
		ownerColumn: "product_id",
		neutral: neutralCodec[model.ProductFields]{
			columns: []string{"images", "background_video"},
			encode: func(f model.ProductFields) []any {
				return []any{EncodeList(f.Images), strings.TrimSpace(f.BackgroundVideo)}
			},
			newScan: func() ([]any, func() model.ProductFields) {
				var images, video sql.NullString
				return []any{&images, &video}, func() model.ProductFields {
					return model.ProductFields{
						Images:          DecodeList(images.String),
						BackgroundVideo: video.String,
					}
				}
			},
		},
		trans: translationCodec[model.ProductTranslation]{
			columns: []string{"name", "short_description", "full_description", "features", "specifications"},
			encode: func(t model.ProductTranslation) []any {
				return []any{t.Name, t.ShortDescription, t.FullDescription,
					EncodeList(t.Features), EncodeList(t.Specifications)}
			},
			newScan: func() ([]any, func() model.ProductTranslation) {
				var name, short, full, features, specs sql.NullString
				return []any{&name, &short, &full, &features, &specs}, func() model.ProductTranslation {
					return model.ProductTranslation{
						Name:             name.String,
						ShortDescription: short.String,
						FullDescription:  full.String,
						Features:         DecodeList(features.String),
						Specifications:   DecodeList(specs.String),
					}
				}
			},
			validate: func(t model.ProductTranslation) error {
				t.Name = strings.TrimSpace(t.Name)
				return validation.ValidateStruct(&t,
					validation.Field(&t.Name, validation.Required, validation.RuneLength(1, 255)),
					validation.Field(&t.ShortDescription, validation.RuneLength(0, 1000)),
				)
			},
		},
	}
	if policy == model.OnDeleteCascade {
		es.beforeDelete = comments.deleteForProduct
	}
	es.prepareSQL()

	return &ProductStore{entities: es, comments: comments}
}

// Create stores a new product with its translations and returns it.
func (s *ProductStore) Create(ctx context.Context, fields model.ProductFields, translations map[model.Locale]model.ProductTranslation) (*model.Product, error) {
	rec, err := s.entities.create(ctx, fields, translations)
	if err != nil {
		return nil, err
	}
	p := toProduct(rec)
	p.Comments = []model.Comment{}
	return p, nil
}

// Get returns a product with all translations and its comments, newest
// first. Both are read in one transaction.
func (s *ProductStore) Get(ctx context.Context, id string) (*model.Product, error) {
	if err := s.entities.schema.Ensure(ctx); err != nil {
		return nil, err
	}

	var p *model.Product
	err := withTx(ctx, s.entities.db, func(tx *sql.Tx) error {
		rec, err := s.entities.getFrom(ctx, tx, id)
		if err != nil {
			return err
		}
		p = toProduct(rec)
		p.Comments, err = s.comments.listFor(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, classify(s.entities.op("get"), err)
	}
	return p, nil
}

// Update overwrites the neutral fields and upserts the given translations.
func (s *ProductStore) Update(ctx context.Context, id string, fields model.ProductFields, translations map[model.Locale]model.ProductTranslation) error {
	return s.entities.update(ctx, id, fields, translations)
}

// Delete removes a product and its translations. Comments follow the
// configured delete policy.
func (s *ProductStore) Delete(ctx context.Context, id string) error {
	return s.entities.delete(ctx, id)
}

// List returns all products, newest first. A non-empty locale must belong
// to the locale set; translation maps are returned in full either way.
func (s *ProductStore) List(ctx context.Context, locale model.Locale) ([]model.Product, error) {
	if err := s.entities.checkLocale(locale); err != nil {
		return nil, err
	}
	recs, err := s.entities.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Product, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *toProduct(rec))
	}
	return out, nil
}

// Count returns the number of products.
func (s *ProductStore) Count(ctx context.Context) (int64, error) {
	return s.entities.count(ctx)
}

func toProduct(rec *record[model.ProductFields, model.ProductTranslation]) *model.Product {
	return &model.Product{
		ID:            rec.ID,
		ProductFields: rec.Fields,
		Translations:  rec.Translations,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}
