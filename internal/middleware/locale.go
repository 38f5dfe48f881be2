// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"

	"github.com/olegiv/ocms-catalog/internal/model"
)

// Context keys for locale data.
const (
	ContextKeyLocale          ContextKey = "locale"
	ContextKeyRequestedLocale ContextKey = "requested_locale"
)

// Locale creates middleware that picks the preferred locale of a request.
// Priority order:
// 1. Query parameter ?lang=XX, when it belongs to the locale set
// 2. Accept-Language header, matched against the locale set
// 3. The first locale of the set
//
// An explicit ?lang= is also recorded as the requested locale. Unsupported
// values are recorded verbatim so that handlers can reject them.
func Locale(locales *model.LocaleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			preferred := locales.Match(r.Header.Get("Accept-Language"))
			if lang := r.URL.Query().Get("lang"); lang != "" {
				if loc, err := locales.Resolve(lang); err == nil {
					preferred = loc
					ctx = context.WithValue(ctx, ContextKeyRequestedLocale, loc)
				} else {
					ctx = context.WithValue(ctx, ContextKeyRequestedLocale, model.Locale(lang))
				}
			}

			ctx = context.WithValue(ctx, ContextKeyLocale, preferred)
			w.Header().Set("Content-Language", preferred.String())
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LocaleFromContext returns the preferred locale, or "" outside Locale.
func LocaleFromContext(ctx context.Context) model.Locale {
	loc, _ := ctx.Value(ContextKeyLocale).(model.Locale)
	return loc
}

// RequestedLocale returns the locale named by ?lang=, or "" when absent.
func RequestedLocale(ctx context.Context) model.Locale {
	loc, _ := ctx.Value(ContextKeyRequestedLocale).(model.Locale)
	return loc
}
