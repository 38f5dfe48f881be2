// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-catalog/internal/middleware"
	"github.com/olegiv/ocms-catalog/internal/model"
)

// ProductRequest represents the request body for creating or updating a product.
// On update, only the locales present in Translations are written.
type ProductRequest struct {
	Images          []string                                 `json:"images"`
	BackgroundVideo string                                   `json:"background_video"`
	Translations    map[model.Locale]model.ProductTranslation `json:"translations"`
}

func (h *Handler) productInput(req ProductRequest) (model.ProductFields, map[model.Locale]model.ProductTranslation) {
	for loc, tr := range req.Translations {
		tr.FullDescription = h.sanitizer.Sanitize(tr.FullDescription)
		req.Translations[loc] = tr
	}
	return model.ProductFields{Images: req.Images, BackgroundVideo: req.BackgroundVideo}, req.Translations
}

// ListProducts handles GET /api/v1/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeList(w, r, model.KindProduct) {
		return
	}

	products, err := h.store.Products.List(r.Context(), middleware.RequestedLocale(r.Context()))
	if err != nil {
		h.writeStoreError(w, r, "products", err)
		return
	}
	products, err = visible(h, r, model.KindProduct, products, func(p model.Product) string { return p.ID })
	if err != nil {
		h.writeAccessError(w, r, err)
		return
	}
	WriteSuccess(w, products, &Meta{
		Total:  int64(len(products)),
		Locale: middleware.LocaleFromContext(r.Context()).String(),
	})
}

// GetProduct handles GET /api/v1/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.authorizeRead(w, r, model.KindProduct, id) {
		return
	}

	product, err := h.store.Products.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, "product", err)
		return
	}
	WriteSuccess(w, product, nil)
}

// CreateProduct handles POST /api/v1/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fields, translations := h.productInput(req)
	product, err := h.store.Products.Create(r.Context(), fields, translations)
	if err != nil {
		h.writeStoreError(w, r, "product", err)
		return
	}

	h.logger.Info("product created", "id", product.ID, "locales", len(product.Translations))
	WriteCreated(w, product)
}

// UpdateProduct handles PUT /api/v1/products/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	fields, translations := h.productInput(req)
	if err := h.store.Products.Update(r.Context(), id, fields, translations); err != nil {
		h.writeStoreError(w, r, "product", err)
		return
	}

	product, err := h.store.Products.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, "product", err)
		return
	}
	WriteSuccess(w, product, nil)
}

// DeleteProduct handles DELETE /api/v1/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Products.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, "product", err)
		return
	}

	h.logger.Info("product deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
