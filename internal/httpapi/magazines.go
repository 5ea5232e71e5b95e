// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package httpapi

import (
	"net/http"
	"strings"

	"magazinify/internal/apperrors"
	"magazinify/internal/middleware"
	"magazinify/internal/slug"
)

type createMagazineRequest struct {
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`
	Theme string `json:"theme,omitempty"`
}

type updateMagazineRequest struct {
	Title   string  `json:"title"`
	Theme   string  `json:"theme"`
	Tagline *string `json:"tagline,omitempty"`
}

// listMagazines returns the tenant's magazines, newest first.
func (a *API) listMagazines(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromCtx(r.Context())

	mags, err := a.Magazines.ListByTenant(tenant.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"magazines": mags})
}

// createMagazine adds a magazine, enforcing the plan's magazine cap.
func (a *API) createMagazine(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromCtx(r.Context())

	var req createMagazineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondErr(w, a.Logger, apperrors.Validation("magazine title is required"))
		return
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Title)
	}
	if req.Theme == "" {
		req.Theme = "classic"
	}

	count, err := a.Magazines.CountByTenant(tenant.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if count >= tenant.MaxMagazines {
		respondErr(w, a.Logger, apperrors.PlanLimit(
			"the %s plan allows %d magazines", tenant.Plan, tenant.MaxMagazines))
		return
	}

	existing, err := a.Magazines.FindBySlug(tenant.ID, req.Slug)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if existing != nil {
		respondErr(w, a.Logger, apperrors.Conflict("magazine slug %q is taken", req.Slug))
		return
	}

	mag, err := a.Magazines.Create(tenant.ID, req.Title, req.Slug, req.Theme)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	respondOK(w, http.StatusCreated, map[string]any{"magazine": mag})
}

// getMagazine returns one magazine by slug.
func (a *API) getMagazine(w http.ResponseWriter, r *http.Request) {
	_, mag, err := a.magazineFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"magazine": mag})
}

// updateMagazine edits title, theme, and tagline. The slug is immutable
// because published URLs embed it.
func (a *API) updateMagazine(w http.ResponseWriter, r *http.Request) {
	tenant, mag, err := a.magazineFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	var req updateMagazineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondErr(w, a.Logger, apperrors.Validation("magazine title is required"))
		return
	}
	if req.Theme == "" {
		req.Theme = mag.Theme
	}

	if err := a.Magazines.Update(mag.ID, req.Title, req.Theme, req.Tagline); err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	a.invalidatePublished(r, tenant, mag)

	updated, err := a.Magazines.FindByID(mag.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"magazine": updated})
}
