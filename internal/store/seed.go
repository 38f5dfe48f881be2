// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// Seed fills an empty catalog with a demo product, service and featured
// news item. It does nothing when any products exist.
func Seed(ctx context.Context, s *Store) error {
	n, err := s.Products.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting products: %w", err)
	}
	if n > 0 {
		slog.Info("catalog already has products, skipping seed", "products", n)
		return nil
	}

	product, err := s.Products.Create(ctx,
		model.ProductFields{Images: []string{"/a.jpg"}},
		map[model.Locale]model.ProductTranslation{
			model.LocaleFa: {Name: "تاب", Features: []string{"فلز مقاوم"}},
			model.LocaleEn: {
				Name:             "Swing",
				ShortDescription: "Outdoor garden swing",
				Features:         []string{"Weatherproof steel frame"},
				Specifications:   []string{"Width: 180 cm", "Load: 250 kg"},
			},
		})
	if err != nil {
		return fmt.Errorf("creating demo product: %w", err)
	}

	service, err := s.Services.Create(ctx,
		model.ServiceFields{Images: []string{"/service.jpg"}},
		map[model.Locale]model.ServiceTranslation{
			model.LocaleEn: {
				Name:        "Installation",
				Description: "On-site assembly and installation",
				Benefits:    []string{"Certified installers"},
			},
		})
	if err != nil {
		return fmt.Errorf("creating demo service: %w", err)
	}

	news, err := s.News.Create(ctx,
		model.NewsFields{IsFeatured: true},
		map[model.Locale]model.NewsTranslation{
			model.LocaleEn: {Title: "Catalog launched", Excerpt: "Our catalog is now online."},
		})
	if err != nil {
		return fmt.Errorf("creating demo news: %w", err)
	}

	slog.Info("seeded demo catalog",
		"product", product.ID,
		"service", service.ID,
		"news", news.ID,
	)
	return nil
}
