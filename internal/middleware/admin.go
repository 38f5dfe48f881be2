// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
)

// RequireAdmin creates middleware that requires "Authorization: Bearer <token>"
// on the wrapped routes. An empty token leaves the routes open, which config
// validation only allows in development.
func RequireAdmin(token string) func(http.Handler) http.Handler {
	expected := []byte(token)

	return func(next http.Handler) http.Handler {
		if token == "" {
			slog.Warn("admin routes are not protected, no admin token configured", "category", "config")
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header", nil)
				return
			}

			scheme, provided, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format", nil)
				return
			}

			if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(provided)), expected) != 1 {
				slog.Warn("rejected admin token", "ip", clientIP(r), "path", r.URL.Path, "category", "access")
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid admin token", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
