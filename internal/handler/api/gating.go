// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// kindNoun names a kind in client-facing messages.
var kindNoun = map[model.Kind]string{
	model.KindProduct: "product",
	model.KindService: "service",
	model.KindNews:    "news item",
}

func (h *Handler) gated(kind model.Kind) bool {
	return h.gate != nil && h.gate.IsGated(kind)
}

// authorizeRead writes 401 or 403 when a gated entity may not be read.
// It runs before the lookup so unauthorized callers cannot tell which ids
// exist. Returns true if the request may proceed.
func (h *Handler) authorizeRead(w http.ResponseWriter, r *http.Request, kind model.Kind, id string) bool {
	if !h.gated(kind) {
		return true
	}

	phone := caller(r)
	if phone == "" {
		WriteUnauthorized(w, "Sign in to view this "+kindNoun[kind])
		return false
	}

	ok, err := h.gate.IsAuthorized(r.Context(), phone, kind, id)
	if err != nil {
		h.writeAccessError(w, r, err)
		return false
	}
	if !ok {
		WriteForbidden(w, "You do not have access to this "+kindNoun[kind])
		return false
	}
	return true
}

// authorizeList rejects anonymous callers of a gated listing. Returns true
// if the request may proceed.
func (h *Handler) authorizeList(w http.ResponseWriter, r *http.Request, kind model.Kind) bool {
	if h.gated(kind) && caller(r) == "" {
		WriteUnauthorized(w, "Sign in to view "+string(kind))
		return false
	}
	return true
}

// visible keeps the items of a gated kind the caller may read. Items of an
// ungated kind are returned unchanged.
func visible[T any](h *Handler, r *http.Request, kind model.Kind, items []T, id func(T) string) ([]T, error) {
	if !h.gated(kind) {
		return items, nil
	}

	phone := caller(r)
	out := make([]T, 0, len(items))
	for _, item := range items {
		ok, err := h.gate.IsAuthorized(r.Context(), phone, kind, id(item))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// writeAccessError reports a failed authorization lookup. The gate is an
// external collaborator, so failures are retryable from the caller's view.
func (h *Handler) writeAccessError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("access check failed", "error", err, "path", r.URL.Path, "category", "access")
	w.Header().Set("Retry-After", "1")
	WriteError(w, http.StatusServiceUnavailable, "unavailable", "Access check failed, retry later", nil)
}
