// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-catalog/internal/access"
)

// PhoneRequest represents the request body for allow-listing a phone.
type PhoneRequest struct {
	Phone string `json:"phone"`
}

// GrantRequest represents the request body for granting read access.
// EntityID is a product, service or news id, "<kind>:*" or "*".
type GrantRequest struct {
	EntityID string `json:"entity_id"`
}

// AccessResponse echoes the phone and target an access change applied to.
type AccessResponse struct {
	Phone    string `json:"phone"`
	EntityID string `json:"entity_id,omitempty"`
}

// AllowPhone handles POST /api/v1/access/phones.
func (h *Handler) AllowPhone(w http.ResponseWriter, r *http.Request) {
	var req PhoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	phone := access.NormalizePhone(req.Phone)
	if phone == "" {
		WriteValidationError(w, map[string]string{"phone": "phone is required"})
		return
	}
	if err := h.registry.AllowPhone(r.Context(), phone); err != nil {
		h.writeRegistryError(w, r, err)
		return
	}

	h.logger.Info("phone allow-listed", "phone", phone, "category", "access")
	WriteCreated(w, AccessResponse{Phone: phone})
}

// DisablePhone handles DELETE /api/v1/access/phones/{phone}.
func (h *Handler) DisablePhone(w http.ResponseWriter, r *http.Request) {
	phone := access.NormalizePhone(chi.URLParam(r, "phone"))
	if err := h.registry.DisablePhone(r.Context(), phone); err != nil {
		h.writeRegistryError(w, r, err)
		return
	}

	h.logger.Info("phone disabled", "phone", phone, "category", "access")
	w.WriteHeader(http.StatusNoContent)
}

// GrantAccess handles POST /api/v1/access/phones/{phone}/grants.
func (h *Handler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	phone := access.NormalizePhone(chi.URLParam(r, "phone"))
	target := strings.TrimSpace(req.EntityID)
	if err := h.registry.Grant(r.Context(), phone, target); err != nil {
		h.writeRegistryError(w, r, err)
		return
	}

	h.logger.Info("access granted", "phone", phone, "entity_id", target, "category", "access")
	WriteCreated(w, AccessResponse{Phone: phone, EntityID: target})
}

// RevokeAccess handles DELETE /api/v1/access/phones/{phone}/grants/{entityID}.
func (h *Handler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	phone := access.NormalizePhone(chi.URLParam(r, "phone"))
	target := strings.TrimSpace(chi.URLParam(r, "entityID"))
	if err := h.registry.Revoke(r.Context(), phone, target); err != nil {
		h.writeRegistryError(w, r, err)
		return
	}

	h.logger.Info("access revoked", "phone", phone, "entity_id", target, "category", "access")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeRegistryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, access.ErrInvalidInput):
		WriteValidationError(w, map[string]string{"access": "phone and a valid entity id are required"})
	case errors.Is(err, access.ErrUnknownPhone):
		WriteNotFound(w, "Phone is not allow-listed")
	case errors.Is(err, access.ErrReadOnly):
		WriteError(w, http.StatusNotImplemented, "not_implemented", "Access registry is read-only", nil)
	default:
		h.writeStoreError(w, r, "access", err)
	}
}
