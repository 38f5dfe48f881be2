// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/netip"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-catalog/internal/middleware"
)

// RouteConfig configures the API routes.
type RouteConfig struct {
	// AdminToken protects every write route. Empty leaves them open.
	AdminToken string
	// CallerHeader carries the caller phone set by the login flow.
	CallerHeader string
	// TrustedProxies lists the peers whose CallerHeader is honored.
	TrustedProxies []netip.Prefix
	// CommentLimiter rate limits comment posting. Nil disables it.
	CommentLimiter *middleware.IPRateLimiter
}

// Mount registers the REST API v1 under /api/v1 and the uploads file
// server under /uploads on r.
func (h *Handler) Mount(r chi.Router, cfg RouteConfig) {
	r.Handle(UploadsURLPrefix+"*", h.ServeUploads())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Caller(cfg.CallerHeader, cfg.TrustedProxies))
		r.Use(middleware.Locale(h.store.Locales()))

		r.Get("/status", h.Status)

		// Public read endpoints
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/products/{id}/comments", h.ListComments)
		r.Get("/services", h.ListServices)
		r.Get("/services/{id}", h.GetService)
		r.Get("/news", h.ListNews)
		r.Get("/news/{id}", h.GetNews)
		r.Post("/news/{id}/views", h.IncrementViews)

		// Public comment posting, rate limited per client IP
		r.Group(func(r chi.Router) {
			if cfg.CommentLimiter != nil {
				r.Use(cfg.CommentLimiter.Middleware())
			}
			r.Post("/products/{id}/comments", h.CreateComment)
		})

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(cfg.AdminToken))

			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)

			r.Post("/services", h.CreateService)
			r.Put("/services/{id}", h.UpdateService)
			r.Delete("/services/{id}", h.DeleteService)

			r.Post("/news", h.CreateNews)
			r.Put("/news/{id}", h.UpdateNews)
			r.Delete("/news/{id}", h.DeleteNews)

			r.Post("/uploads", h.Upload)

			if h.registry != nil {
				r.Post("/access/phones", h.AllowPhone)
				r.Delete("/access/phones/{phone}", h.DisablePhone)
				r.Post("/access/phones/{phone}/grants", h.GrantAccess)
				r.Delete("/access/phones/{phone}/grants/{entityID}", h.RevokeAccess)
			}
		})
	})
}
