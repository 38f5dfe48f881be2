// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers of the catalog.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"

	"github.com/olegiv/ocms-catalog/internal/access"
	"github.com/olegiv/ocms-catalog/internal/middleware"
	"github.com/olegiv/ocms-catalog/internal/model"
	"github.com/olegiv/ocms-catalog/internal/store"
)

// DefaultUploadMaxBytes limits an upload when no limit is configured.
const DefaultUploadMaxBytes = 10 << 20

// Config holds the collaborators of the API handlers.
type Config struct {
	Store *store.Store
	// Gate decides which reads require an authorized caller.
	Gate access.Gate
	// Registry manages the access allow-list. Nil disables the access routes.
	Registry       access.Registry
	UploadsDir     string
	UploadMaxBytes int64
	Version        string
	Logger         *slog.Logger
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	store          *store.Store
	gate           access.Gate
	registry       access.Registry
	sanitizer      *bluemonday.Policy
	uploadsDir     string
	uploadMaxBytes int64
	version        string
	logger         *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = DefaultUploadMaxBytes
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		store:          cfg.Store,
		gate:           cfg.Gate,
		registry:       cfg.Registry,
		sanitizer:      bluemonday.UGCPolicy(),
		uploadsDir:     cfg.UploadsDir,
		uploadMaxBytes: cfg.UploadMaxBytes,
		version:        cfg.Version,
		logger:         cfg.Logger,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains list metadata.
type Meta struct {
	Total  int64  `json:"total"`
	Locale string `json:"locale,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeStoreError maps a store error onto an HTTP response. Driver text is
// logged, never returned.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, entity string, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	case errors.Is(err, store.ErrNotFound):
		WriteNotFound(w, capitalizeFirst(entity)+" not found")
	case errors.Is(err, store.ErrConflict):
		WriteError(w, http.StatusConflict, "conflict", capitalizeFirst(entity)+" conflicts with existing data", nil)
	case errors.Is(err, store.ErrUnavailable):
		h.logger.Warn("storage unavailable", "error", err, "path", r.URL.Path, "category", "storage")
		w.Header().Set("Retry-After", "1")
		WriteError(w, http.StatusServiceUnavailable, "unavailable", "Storage is busy, retry later", nil)
	default:
		h.logger.Error("storage failure", "error", err, "path", r.URL.Path, "category", "storage")
		WriteInternalError(w, "Failed to process "+entity)
	}
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
// Returns false if an error response was written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}

// capitalizeFirst returns s with the first letter capitalized.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string   `json:"status"`
	Version string   `json:"version"`
	Locales []string `json:"locales"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !h.store.Schema.Ready() {
		status = "starting"
	}
	WriteSuccess(w, StatusResponse{
		Status:  status,
		Version: h.version,
		Locales: lo.Map(h.store.Locales().Locales(), func(l model.Locale, _ int) string { return l.String() }),
	}, nil)
}

// caller returns the caller identity set by middleware.Caller.
func caller(r *http.Request) string {
	return middleware.CallerFromContext(r.Context())
}
