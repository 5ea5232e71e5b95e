// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package httpapi

import (
	"net/http"

	"magazinify/internal/apperrors"
	"magazinify/internal/middleware"
	"magazinify/internal/models"
)

type blueprintRequest struct {
	Pages        int      `json:"pages"`
	Sections     []string `json:"sections"`
	AdSlotKeys   []string `json:"ad_slot_keys"`
	Tone         string   `json:"tone"`
	ReadingLevel string   `json:"reading_level"`
	Topics       []string `json:"topics"`
	Geo          string   `json:"geo"`
	Keywords     []string `json:"keywords"`
	Sources      []string `json:"sources"`
	Cadence      string   `json:"cadence"`
	ApprovalMode string   `json:"approval_mode"`
}

// validateBlueprint normalizes the request and returns the first problem
// found. The page caps come from the tenant's plan.
func validateBlueprint(req *blueprintRequest, tenant *models.Tenant) error {
	if req.Pages < models.MinPages {
		return apperrors.Validation("Minimum page count is %d", models.MinPages)
	}
	if req.Pages > tenant.MaxPages {
		return apperrors.PlanLimit(
			"the %s plan allows at most %d pages", tenant.Plan, tenant.MaxPages)
	}
	if len(req.Sections) == 0 {
		return apperrors.Validation("at least one section is required")
	}

	switch models.Cadence(req.Cadence) {
	case models.CadenceMonthly, models.CadenceWeekly, models.CadenceManual:
	case "":
		req.Cadence = string(models.CadenceManual)
	default:
		return apperrors.Validation("cadence must be monthly, weekly, or manual")
	}

	switch models.ApprovalMode(req.ApprovalMode) {
	case models.ApprovalAuto, models.ApprovalManual:
	case "":
		req.ApprovalMode = string(models.ApprovalManual)
	default:
		return apperrors.Validation("approval_mode must be auto or manual")
	}

	if req.Tone == "" {
		req.Tone = "neutral"
	}
	if req.ReadingLevel == "" {
		req.ReadingLevel = "general"
	}
	return nil
}

// getBlueprint returns the magazine's blueprint.
func (a *API) getBlueprint(w http.ResponseWriter, r *http.Request) {
	_, mag, err := a.magazineFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	bp, err := a.Blueprints.FindByMagazine(mag.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if bp == nil {
		respondErr(w, a.Logger, apperrors.NotFound("no blueprint configured yet"))
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"blueprint": bp})
}

// putBlueprint creates or replaces the magazine's blueprint in place.
func (a *API) putBlueprint(w http.ResponseWriter, r *http.Request) {
	tenant, mag, err := a.magazineFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	data := middleware.TokenFromCtx(r.Context())

	var req blueprintRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if err := validateBlueprint(&req, tenant); err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	bp, err := a.Blueprints.Upsert(&models.Blueprint{
		MagazineID:   mag.ID,
		Pages:        req.Pages,
		Sections:     req.Sections,
		AdSlotKeys:   req.AdSlotKeys,
		Tone:         req.Tone,
		ReadingLevel: req.ReadingLevel,
		Topics:       req.Topics,
		Geo:          req.Geo,
		Keywords:     req.Keywords,
		Sources:      req.Sources,
		Cadence:      models.Cadence(req.Cadence),
		ApprovalMode: models.ApprovalMode(req.ApprovalMode),
		UpdatedBy:    data.UserID,
	})
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"blueprint": bp})
}
