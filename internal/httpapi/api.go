// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"magazinify/internal/apperrors"
	"magazinify/internal/auth"
	"magazinify/internal/billing"
	"magazinify/internal/cache"
	"magazinify/internal/jobs"
	"magazinify/internal/middleware"
	"magazinify/internal/models"
	"magazinify/internal/store"
)

// API holds the handler dependencies. Stores are required; Cache, Worker,
// and Webhook may be nil (the handlers degrade accordingly), which also
// keeps tests light.
type API struct {
	Users      *store.UserStore
	Tenants    *store.TenantStore
	Magazines  *store.MagazineStore
	Blueprints *store.BlueprintStore
	Issues     *store.IssueStore
	Articles   *store.ArticleStore
	AdSlots    *store.AdSlotStore
	Analytics  *store.AnalyticsStore
	Jobs       *store.JobStore

	Tokens  *auth.TokenStore
	Cache   *cache.PublishedCache
	Worker  *jobs.Worker
	Webhook *billing.Webhook
	Limiter *middleware.RateLimiter
	Logger  *slog.Logger
}

// magazineFromRequest resolves the magazine from the {magazineSlug} URL
// parameter within the tenant that RequireTenantRole already loaded.
func (a *API) magazineFromRequest(r *http.Request) (*models.Tenant, *models.Magazine, error) {
	tenant := middleware.TenantFromCtx(r.Context())
	if tenant == nil {
		return nil, nil, apperrors.Unauthorized("authentication required")
	}

	slug := chi.URLParam(r, "magazineSlug")
	mag, err := a.Magazines.FindBySlug(tenant.ID, slug)
	if err != nil {
		return nil, nil, err
	}
	if mag == nil {
		return nil, nil, apperrors.NotFound("magazine %q not found", slug)
	}
	return tenant, mag, nil
}

// issueFromRequest resolves the issue from the {issueSlug} URL parameter.
func (a *API) issueFromRequest(r *http.Request) (*models.Tenant, *models.Magazine, *models.Issue, error) {
	tenant, mag, err := a.magazineFromRequest(r)
	if err != nil {
		return nil, nil, nil, err
	}

	slug := chi.URLParam(r, "issueSlug")
	issue, err := a.Issues.FindBySlug(mag.ID, slug)
	if err != nil {
		return nil, nil, nil, err
	}
	if issue == nil {
		return nil, nil, nil, apperrors.NotFound("issue %q not found", slug)
	}
	return tenant, mag, issue, nil
}

// articleFromRequest resolves the article from the {articleID} URL
// parameter and checks it belongs to the resolved issue.
func (a *API) articleFromRequest(r *http.Request, issue *models.Issue) (*models.Article, error) {
	id, err := uuid.Parse(chi.URLParam(r, "articleID"))
	if err != nil {
		return nil, apperrors.Validation("invalid article id")
	}
	article, err := a.Articles.FindByID(id)
	if err != nil {
		return nil, err
	}
	if article == nil || article.IssueID != issue.ID {
		return nil, apperrors.NotFound("article not found in this issue")
	}
	return article, nil
}

// invalidatePublished drops the public cache for a magazine after a change
// that affects published content. Safe to call with a nil cache.
func (a *API) invalidatePublished(r *http.Request, tenant *models.Tenant, mag *models.Magazine) {
	if a.Cache != nil {
		a.Cache.InvalidateMagazine(r.Context(), tenant.Slug, mag.Slug)
	}
}
