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

// ServiceStore persists services and their translations. It performs no
// access checks; callers exposing services consult the access gate.
type ServiceStore struct {
	entities *entityStore[model.ServiceFields, model.ServiceTranslation]
}

func newServiceStore(base entityBase) *ServiceStore {
	es := &entityStore[model.ServiceFields, model.ServiceTranslation]{
		db:          base.db,
		schema:      base.schema,
		locales:     base.locales,
		now:         base.now,
		kind:        model.KindService,
		table:       "services",
		transTable:  "service_translations",
		ownerColumn: "service_id",
		neutral: neutralCodec[model.ServiceFields]{
			columns: []string{"images"},
			encode: func(f model.ServiceFields) []any {
				return []any{EncodeList(f.Images)}
			},
			newScan: func() ([]any, func() model.ServiceFields) {
				var images sql.NullString
				return []any{&images}, func() model.ServiceFields {
					return model.ServiceFields{Images: DecodeList(images.String)}
				}
			},
		},
		trans: translationCodec[model.ServiceTranslation]{
			columns: []string{"name", "description", "features", "benefits"},
			encode: func(t model.ServiceTranslation) []any {
				return []any{t.Name, t.Description, EncodeList(t.Features), EncodeList(t.Benefits)}
			},
			newScan: func() ([]any, func() model.ServiceTranslation) {
				var name, description, features, benefits sql.NullString
				return []any{&name, &description, &features, &benefits}, func() model.ServiceTranslation {
					return model.ServiceTranslation{
						Name:        name.String,
						Description: description.String,
						Features:    DecodeList(features.String),
						Benefits:    DecodeList(benefits.String),
					}
				}
			},
			validate: func(t model.ServiceTranslation) error {
				t.Name = strings.TrimSpace(t.Name)
				return validation.ValidateStruct(&t,
					validation.Field(&t.Name, validation.Required, validation.RuneLength(1, 255)),
				)
			},
		},
	}
	es.prepareSQL()

	return &ServiceStore{entities: es}
}

// Create stores a new service with its translations and returns it.
func (s *ServiceStore) Create(ctx context.Context, fields model.ServiceFields, translations map[model.Locale]model.ServiceTranslation) (*model.Service, error) {
	rec, err := s.entities.create(ctx, fields, translations)
	if err != nil {
		return nil, err
	}
	return toService(rec), nil
}

// Get returns a service with all of its translations.
func (s *ServiceStore) Get(ctx context.Context, id string) (*model.Service, error) {
	rec, err := s.entities.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toService(rec), nil
}

// Update overwrites the neutral fields and upserts the given translations.
func (s *ServiceStore) Update(ctx context.Context, id string, fields model.ServiceFields, translations map[model.Locale]model.ServiceTranslation) error {
	return s.entities.update(ctx, id, fields, translations)
}

// Delete removes a service and its translations.
func (s *ServiceStore) Delete(ctx context.Context, id string) error {
	return s.entities.delete(ctx, id)
}

// List returns all services, newest first.
func (s *ServiceStore) List(ctx context.Context, locale model.Locale) ([]model.Service, error) {
	if err := s.entities.checkLocale(locale); err != nil {
		return nil, err
	}
	recs, err := s.entities.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Service, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *toService(rec))
	}
	return out, nil
}

// Count returns the number of services.
func (s *ServiceStore) Count(ctx context.Context) (int64, error) {
	return s.entities.count(ctx)
}

func toService(rec *record[model.ServiceFields, model.ServiceTranslation]) *model.Service {
	return &model.Service{
		ID:            rec.ID,
		ServiceFields: rec.Fields,
		Translations:  rec.Translations,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}
