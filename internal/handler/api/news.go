// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-catalog/internal/middleware"
	"github.com/olegiv/ocms-catalog/internal/model"
)

// NewsRequest represents the request body for creating or updating a news item.
// The view counter cannot be set through it.
type NewsRequest struct {
	Images       []string                              `json:"images"`
	IsFeatured   bool                                  `json:"is_featured"`
	Translations map[model.Locale]model.NewsTranslation `json:"translations"`
}

// ViewsResponse is returned by the view counter endpoint.
type ViewsResponse struct {
	ID    string `json:"id"`
	Views int64  `json:"views"`
}

func (h *Handler) newsInput(req NewsRequest) (model.NewsFields, map[model.Locale]model.NewsTranslation) {
	for loc, tr := range req.Translations {
		tr.Content = h.sanitizer.Sanitize(tr.Content)
		req.Translations[loc] = tr
	}
	return model.NewsFields{Images: req.Images, IsFeatured: req.IsFeatured}, req.Translations
}

// ListNews handles GET /api/v1/news.
func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeList(w, r, model.KindNews) {
		return
	}

	items, err := h.store.News.List(r.Context(), middleware.RequestedLocale(r.Context()))
	if err != nil {
		h.writeStoreError(w, r, "news", err)
		return
	}
	items, err = visible(h, r, model.KindNews, items, func(n model.News) string { return n.ID })
	if err != nil {
		h.writeAccessError(w, r, err)
		return
	}
	WriteSuccess(w, items, &Meta{
		Total:  int64(len(items)),
		Locale: middleware.LocaleFromContext(r.Context()).String(),
	})
}

// GetNews handles GET /api/v1/news/{id}.
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.authorizeRead(w, r, model.KindNews, id) {
		return
	}

	item, err := h.store.News.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, "news item", err)
		return
	}
	WriteSuccess(w, item, nil)
}

// CreateNews handles POST /api/v1/news.
func (h *Handler) CreateNews(w http.ResponseWriter, r *http.Request) {
	var req NewsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fields, translations := h.newsInput(req)
	item, err := h.store.News.Create(r.Context(), fields, translations)
	if err != nil {
		h.writeStoreError(w, r, "news item", err)
		return
	}

	h.logger.Info("news created", "id", item.ID, "featured", item.IsFeatured)
	WriteCreated(w, item)
}

// UpdateNews handles PUT /api/v1/news/{id}.
func (h *Handler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	var req NewsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	fields, translations := h.newsInput(req)
	if err := h.store.News.Update(r.Context(), id, fields, translations); err != nil {
		h.writeStoreError(w, r, "news item", err)
		return
	}

	item, err := h.store.News.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, "news item", err)
		return
	}
	WriteSuccess(w, item, nil)
}

// DeleteNews handles DELETE /api/v1/news/{id}.
func (h *Handler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.News.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, "news item", err)
		return
	}

	h.logger.Info("news deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// IncrementViews handles POST /api/v1/news/{id}/views.
func (h *Handler) IncrementViews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.authorizeRead(w, r, model.KindNews, id) {
		return
	}

	views, err := h.store.News.IncrementViews(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, "news item", err)
		return
	}
	WriteSuccess(w, ViewsResponse{ID: id, Views: views}, nil)
}
