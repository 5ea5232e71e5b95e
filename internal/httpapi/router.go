// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "magazinify/internal/middleware"
	"magazinify/internal/models"
)

// Router assembles the full route tree. Everything under /api except
// /api/auth/*, /api/public/*, /api/analytics/events, and the billing
// webhook requires a bearer token; tenant-scoped routes additionally pass
// through the role gate.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(mw.Logger)
	r.Use(mw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondOK(w, http.StatusOK, map[string]any{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.Authenticate(a.Tokens))

		r.Route("/auth", func(r chi.Router) {
			if a.Limiter != nil {
				r.Use(a.Limiter.Middleware)
			}
			r.Post("/register", a.register)
			r.Post("/login", a.login)
			r.Post("/logout", a.logout)
			r.With(mw.RequireAuth, mw.RequireVerified).Post("/2fa/setup", a.twoFASetup)
			r.With(mw.RequireAuth).Post("/2fa/verify", a.twoFAVerify)
			r.With(mw.RequireAuth, mw.RequireVerified).Get("/me", a.me)
		})

		if a.Webhook != nil {
			r.Post("/billing/webhook", a.Webhook.Handler())
		}

		r.Post("/analytics/events", a.ingestEvent)

		r.Route("/public/{tenantSlug}/{magazineSlug}", func(r chi.Router) {
			r.Get("/latest", a.publicLatest)
			r.Get("/archive", a.publicArchive)
			r.Get("/issues/{issueSlug}", a.publicIssue)
			r.Get("/issues/{issueSlug}/articles/{articleSlug}", a.publicArticle)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth, mw.RequireVerified)

			r.Post("/tenants", a.createTenant)

			r.Route("/tenants/{tenantSlug}", func(r chi.Router) {
				viewer := mw.RequireTenantRole(a.Tenants, a.Users, models.RoleViewer)
				editor := mw.RequireTenantRole(a.Tenants, a.Users, models.RoleEditor)
				admin := mw.RequireTenantRole(a.Tenants, a.Users, models.RoleAdmin)

				r.With(viewer).Get("/", a.getTenant)
				r.With(viewer).Get("/magazines", a.listMagazines)
				r.With(admin).Post("/magazines", a.createMagazine)

				r.Route("/magazines/{magazineSlug}", func(r chi.Router) {
					r.With(viewer).Get("/", a.getMagazine)
					r.With(editor).Patch("/", a.updateMagazine)

					r.With(viewer).Get("/blueprint", a.getBlueprint)
					r.With(editor).Put("/blueprint", a.putBlueprint)

					r.With(admin).Get("/analytics", a.analyticsSummary)

					r.With(viewer).Get("/issues", a.listIssues)
					r.With(editor).Post("/issues/generate", a.generateIssue)

					r.Route("/issues/{issueSlug}", func(r chi.Router) {
						r.With(viewer).Get("/", a.getIssue)
						r.With(editor).Post("/publish", a.publishIssue)
						r.With(editor).Post("/unschedule", a.unscheduleIssue)
						r.With(editor).Post("/retry", a.retryIssue)
						r.With(admin).Post("/cancel", a.cancelIssue)

						r.With(editor).Patch("/articles/{articleID}", a.updateArticle)
						r.With(editor).Post("/articles/{articleID}/regenerate", a.regenerateArticle)

						r.With(editor).Put("/ad-slots/{slotKey}", a.fillAdSlot)
						r.With(editor).Delete("/ad-slots/{slotKey}", a.clearAdSlot)
					})
				})
			})
		})
	})

	return r
}
