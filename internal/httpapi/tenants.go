// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package httpapi

import (
	"net/http"
	"strings"

	"magazinify/internal/apperrors"
	"magazinify/internal/middleware"
	"magazinify/internal/models"
	"magazinify/internal/slug"
)

type createTenantRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// createTenant signs up a new tenant. The caller becomes its owner and
// starts on the starter plan in trial.
func (a *API) createTenant(w http.ResponseWriter, r *http.Request) {
	data := middleware.TokenFromCtx(r.Context())

	var req createTenantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondErr(w, a.Logger, apperrors.Validation("tenant name is required"))
		return
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Name)
	}
	if req.Slug == "" {
		respondErr(w, a.Logger, apperrors.Validation("tenant name must contain letters or digits"))
		return
	}

	existing, err := a.Tenants.FindBySlug(req.Slug)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if existing != nil {
		respondErr(w, a.Logger, apperrors.Conflict("tenant slug %q is taken", req.Slug))
		return
	}

	tenant, err := a.Tenants.Create(req.Name, req.Slug)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if err := a.Users.AddMembership(data.UserID, tenant.ID, models.RoleOwner); err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	respondOK(w, http.StatusCreated, map[string]any{"tenant": tenant})
}

// getTenant returns the tenant resolved by the authorization middleware,
// plus the caller's role in it.
func (a *API) getTenant(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromCtx(r.Context())
	membership := middleware.MembershipFromCtx(r.Context())

	respondOK(w, http.StatusOK, map[string]any{
		"tenant": tenant,
		"role":   membership.Role,
	})
}
