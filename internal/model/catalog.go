// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the catalog domain types shared by the store and the API.
package model

import "time"

// Kind names an entity category.
type Kind string

// Entity kinds.
const (
	KindProduct Kind = "products"
	KindService Kind = "services"
	KindNews    Kind = "news"
)

// ParseKind maps a category name to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindProduct, KindService, KindNews:
		return Kind(s), true
	}
	return "", false
}

// ProductFields are the language-neutral fields of a product.
type ProductFields struct {
	Images          []string `json:"images"`
	BackgroundVideo string   `json:"background_video,omitempty"`
}

// ProductTranslation holds the per-locale fields of a product.
type ProductTranslation struct {
	Name             string   `json:"name"`
	ShortDescription string   `json:"short_description"`
	FullDescription  string   `json:"full_description"`
	Features         []string `json:"features"`
	Specifications   []string `json:"specifications"`
}

// Product is a catalog product with all of its translations.
type Product struct {
	ID string `json:"id"`
	ProductFields
	Translations map[Locale]ProductTranslation `json:"translations"`
	Comments     []Comment                     `json:"comments,omitempty"`
	CreatedAt    time.Time                     `json:"created_at"`
	UpdatedAt    time.Time                     `json:"updated_at"`
}

// ServiceFields are the language-neutral fields of a service.
type ServiceFields struct {
	Images []string `json:"images"`
}

// ServiceTranslation holds the per-locale fields of a service.
type ServiceTranslation struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Benefits    []string `json:"benefits"`
}

// Service is a catalog service with all of its translations.
type Service struct {
	ID string `json:"id"`
	ServiceFields
	Translations map[Locale]ServiceTranslation `json:"translations"`
	CreatedAt    time.Time                     `json:"created_at"`
	UpdatedAt    time.Time                     `json:"updated_at"`
}

// NewsFields are the language-neutral, caller-editable fields of a news item.
// The view counter is not part of it: it only moves through IncrementViews.
type NewsFields struct {
	Images     []string `json:"images"`
	IsFeatured bool     `json:"is_featured"`
}

// NewsTranslation holds the per-locale fields of a news item.
type NewsTranslation struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"`
}

// News is a news item with all of its translations.
type News struct {
	ID string `json:"id"`
	NewsFields
	Views        int64                      `json:"views"`
	Translations map[Locale]NewsTranslation `json:"translations"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// Comment is a customer review attached to a product.
type Comment struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// NewComment is the input for appending a comment.
type NewComment struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Comment ratings.
const (
	MinRating = 1
	MaxRating = 5
)

// DeletePolicy decides what happens to dependent rows when their owner is deleted.
type DeletePolicy string

// Delete policies.
const (
	OnDeleteCascade DeletePolicy = "cascade"
	OnDeleteOrphan  DeletePolicy = "orphan"
)

// Valid reports whether p is a known policy.
func (p DeletePolicy) Valid() bool {
	return p == OnDeleteCascade || p == OnDeleteOrphan
}
