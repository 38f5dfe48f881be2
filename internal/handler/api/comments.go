// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// CommentRequest represents the request body for posting a comment.
type CommentRequest struct {
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ListComments handles GET /api/v1/products/{id}/comments, newest first.
// Comments are readable by whoever may read the product.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	if !h.authorizeRead(w, r, model.KindProduct, productID) {
		return
	}

	comments, err := h.store.Comments.ListFor(r.Context(), productID)
	if err != nil {
		h.writeStoreError(w, r, "comments", err)
		return
	}
	WriteSuccess(w, comments, &Meta{Total: int64(len(comments))})
}

// CreateComment handles POST /api/v1/products/{id}/comments. The product
// must exist at the time of posting.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	productID := chi.URLParam(r, "id")
	if !h.authorizeRead(w, r, model.KindProduct, productID) {
		return
	}
	if _, err := h.store.Products.Get(r.Context(), productID); err != nil {
		h.writeStoreError(w, r, "product", err)
		return
	}

	comment, err := h.store.Comments.Append(r.Context(), model.NewComment{
		ProductID: productID,
		Name:      req.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		h.writeStoreError(w, r, "comment", err)
		return
	}

	WriteCreated(w, comment)
}
