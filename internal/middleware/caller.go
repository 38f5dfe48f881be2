// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/olegiv/ocms-catalog/internal/access"
)

// ContextKeyCaller is the context key for the caller identity.
const ContextKeyCaller ContextKey = "caller"

// DefaultCallerHeader carries the phone number of the caller authenticated
// by the upstream login flow.
const DefaultCallerHeader = "X-Caller-Phone"

// Caller reads the caller identity from header and stores the normalized
// phone number in the request context. The header is honored only when the
// connected peer lies in one of the trusted prefixes, which should cover the
// proxy running the login flow. A missing, unparsable or untrusted header
// leaves the request anonymous.
func Caller(header string, trusted []netip.Prefix) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultCallerHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(header)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !trustedPeer(r, trusted) {
				slog.Warn("caller header from untrusted peer ignored",
					"ip", clientIP(r), "path", r.URL.Path, "category", "access")
				next.ServeHTTP(w, r)
				return
			}
			phone := access.NormalizePhone(raw)
			if phone == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyCaller, phone)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFromContext returns the caller identity, or "" for anonymous requests.
func CallerFromContext(ctx context.Context) string {
	phone, _ := ctx.Value(ContextKeyCaller).(string)
	return phone
}
