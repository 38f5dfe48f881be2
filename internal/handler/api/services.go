// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-catalog/internal/middleware"
	"github.com/olegiv/ocms-catalog/internal/model"
)

// ServiceRequest represents the request body for creating or updating a service.
type ServiceRequest struct {
	Images       []string                                 `json:"images"`
	Translations map[model.Locale]model.ServiceTranslation `json:"translations"`
}

// ListServices handles GET /api/v1/services. When services are gated, only
// the services the caller may read are returned.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeList(w, r, model.KindService) {
		return
	}

	services, err := h.store.Services.List(r.Context(), middleware.RequestedLocale(r.Context()))
	if err != nil {
		h.writeStoreError(w, r, "services", err)
		return
	}
	services, err = visible(h, r, model.KindService, services, func(s model.Service) string { return s.ID })
	if err != nil {
		h.writeAccessError(w, r, err)
		return
	}

	WriteSuccess(w, services, &Meta{
		Total:  int64(len(services)),
		Locale: middleware.LocaleFromContext(r.Context()).String(),
	})
}

// GetService handles GET /api/v1/services/{id}.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.authorizeRead(w, r, model.KindService, id) {
		return
	}

	svc, err := h.store.Services.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, "service", err)
		return
	}
	WriteSuccess(w, svc, nil)
}

// CreateService handles POST /api/v1/services.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req ServiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	svc, err := h.store.Services.Create(r.Context(), model.ServiceFields{Images: req.Images}, req.Translations)
	if err != nil {
		h.writeStoreError(w, r, "service", err)
		return
	}

	h.logger.Info("service created", "id", svc.ID, "locales", len(svc.Translations))
	WriteCreated(w, svc)
}

// UpdateService handles PUT /api/v1/services/{id}.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var req ServiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.store.Services.Update(r.Context(), id, model.ServiceFields{Images: req.Images}, req.Translations); err != nil {
		h.writeStoreError(w, r, "service", err)
		return
	}

	svc, err := h.store.Services.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, "service", err)
		return
	}
	WriteSuccess(w, svc, nil)
}

// DeleteService handles DELETE /api/v1/services/{id}.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Services.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, "service", err)
		return
	}

	h.logger.Info("service deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
