// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"magazinify/internal/apperrors"
	"magazinify/internal/cache"
	"magazinify/internal/models"
)

// servePublic renders a public endpoint through the Valkey response cache:
// on a hit the cached envelope is written verbatim, on a miss the build
// function produces the fields and the serialized envelope is cached.
// Errors (including NotFound) are never cached.
func (a *API) servePublic(w http.ResponseWriter, r *http.Request, parts []string,
	build func(tenant *models.Tenant, mag *models.Magazine) (map[string]any, error)) {

	tenantSlug := chi.URLParam(r, "tenantSlug")
	magSlug := chi.URLParam(r, "magazineSlug")
	key := cache.Key(tenantSlug, magSlug, parts...)

	if a.Cache != nil {
		if body, ok := a.Cache.Get(r.Context(), key); ok {
			respondRaw(w, http.StatusOK, body)
			return
		}
	}

	tenant, err := a.Tenants.FindBySlug(tenantSlug)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if tenant == nil {
		respondErr(w, a.Logger, apperrors.NotFound("publication not found"))
		return
	}
	mag, err := a.Magazines.FindBySlug(tenant.ID, magSlug)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if mag == nil {
		respondErr(w, a.Logger, apperrors.NotFound("publication not found"))
		return
	}

	fields, err := build(tenant, mag)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	envelope := map[string]any{"ok": true}
	for k, v := range fields {
		envelope[k] = v
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if a.Cache != nil {
		a.Cache.Set(r.Context(), key, body)
	}
	respondRaw(w, http.StatusOK, body)
}

// publicLatest serves the most recently published issue.
func (a *API) publicLatest(w http.ResponseWriter, r *http.Request) {
	a.servePublic(w, r, []string{"latest"}, func(_ *models.Tenant, mag *models.Magazine) (map[string]any, error) {
		issue, err := a.Issues.LatestPublished(mag.ID)
		if err != nil {
			return nil, err
		}
		if issue == nil {
			return nil, apperrors.NotFound("no published issues yet")
		}
		return a.issuePayload(mag, issue)
	})
}

// publicArchive lists all published issues, newest period first.
func (a *API) publicArchive(w http.ResponseWriter, r *http.Request) {
	a.servePublic(w, r, []string{"archive"}, func(_ *models.Tenant, mag *models.Magazine) (map[string]any, error) {
		issues, err := a.Issues.ListPublished(mag.ID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"magazine": mag, "issues": issues}, nil
	})
}

// publicIssue serves one published issue with its articles and filled ads.
func (a *API) publicIssue(w http.ResponseWriter, r *http.Request) {
	issueSlug := chi.URLParam(r, "issueSlug")
	a.servePublic(w, r, []string{"issue", issueSlug}, func(_ *models.Tenant, mag *models.Magazine) (map[string]any, error) {
		issue, err := a.publishedIssue(mag, issueSlug)
		if err != nil {
			return nil, err
		}
		return a.issuePayload(mag, issue)
	})
}

// publicArticle serves one article of a published issue.
func (a *API) publicArticle(w http.ResponseWriter, r *http.Request) {
	issueSlug := chi.URLParam(r, "issueSlug")
	articleSlug := chi.URLParam(r, "articleSlug")
	a.servePublic(w, r, []string{"issue", issueSlug, "article", articleSlug},
		func(_ *models.Tenant, mag *models.Magazine) (map[string]any, error) {
			issue, err := a.publishedIssue(mag, issueSlug)
			if err != nil {
				return nil, err
			}
			article, err := a.Articles.FindBySlug(issue.ID, articleSlug)
			if err != nil {
				return nil, err
			}
			if article == nil {
				return nil, apperrors.NotFound("article not found")
			}
			return map[string]any{"magazine": mag, "issue": issue, "article": article}, nil
		})
}

// publishedIssue resolves an issue slug and hides everything unpublished.
func (a *API) publishedIssue(mag *models.Magazine, slug string) (*models.Issue, error) {
	issue, err := a.Issues.FindBySlug(mag.ID, slug)
	if err != nil {
		return nil, err
	}
	if issue == nil || !issue.Status.IsPublic() {
		return nil, apperrors.NotFound("issue not found")
	}
	return issue, nil
}

// issuePayload assembles the public representation of an issue: articles in
// page order and only the ad slots that carry a creative.
func (a *API) issuePayload(mag *models.Magazine, issue *models.Issue) (map[string]any, error) {
	articles, err := a.Articles.ListByIssue(issue.ID)
	if err != nil {
		return nil, err
	}
	slots, err := a.AdSlots.ListByIssue(issue.ID)
	if err != nil {
		return nil, err
	}
	filled := make([]models.AdSlot, 0, len(slots))
	for _, s := range slots {
		if s.CreativeURL != nil {
			filled = append(filled, s)
		}
	}
	return map[string]any{
		"magazine": mag,
		"issue":    issue,
		"articles": articles,
		"ad_slots": filled,
	}, nil
}
