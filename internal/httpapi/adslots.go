// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"magazinify/internal/apperrors"
	"magazinify/internal/models"
)

type fillAdSlotRequest struct {
	CreativeURL  *string `json:"creative_url,omitempty"`
	TargetURL    *string `json:"target_url,omitempty"`
	Sponsor      *string `json:"sponsor,omitempty"`
	TrackingCode *string `json:"tracking_code,omitempty"`
}

// fillAdSlot places a sponsor creative into one of the issue's slots. The
// slot keys themselves come from the blueprint at generation time.
func (a *API) fillAdSlot(w http.ResponseWriter, r *http.Request) {
	tenant, mag, issue, err := a.issueFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	var req fillAdSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	slotKey := chi.URLParam(r, "slotKey")
	slot, err := a.AdSlots.Fill(issue.ID, slotKey,
		req.CreativeURL, req.TargetURL, req.Sponsor, req.TrackingCode)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if slot == nil {
		respondErr(w, a.Logger, apperrors.NotFound("ad slot %q is not defined for this issue", slotKey))
		return
	}
	if issue.Status == models.IssuePublished {
		a.invalidatePublished(r, tenant, mag)
	}

	respondOK(w, http.StatusOK, map[string]any{"ad_slot": slot})
}

// clearAdSlot empties a slot without removing it from the issue.
func (a *API) clearAdSlot(w http.ResponseWriter, r *http.Request) {
	tenant, mag, issue, err := a.issueFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	slotKey := chi.URLParam(r, "slotKey")
	if err := a.AdSlots.Clear(issue.ID, slotKey); err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if issue.Status == models.IssuePublished {
		a.invalidatePublished(r, tenant, mag)
	}

	respondOK(w, http.StatusOK, nil)
}
