// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"magazinify/internal/apperrors"
	"magazinify/internal/middleware"
	"magazinify/internal/models"
)

type analyticsEventRequest struct {
	Tenant    string            `json:"tenant"`
	Magazine  string            `json:"magazine"`
	Issue     string            `json:"issue,omitempty"`
	EventType string            `json:"event_type"`
	Page      int               `json:"page,omitempty"`
	Device    string            `json:"device,omitempty"`
	Payload   map[string]string `json:"payload,omitempty"`
}

// ingestEvent records a reader interaction from the public viewer. Malformed
// events are rejected, but once an event is well-formed the endpoint always
// answers {ok:true}; a failed write must never break a reader's session, so
// it is only logged.
func (a *API) ingestEvent(w http.ResponseWriter, r *http.Request) {
	var req analyticsEventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if !models.ValidEventType(req.EventType) {
		respondErr(w, a.Logger, apperrors.Validation("unknown event_type %q", req.EventType))
		return
	}
	if req.Tenant == "" || req.Magazine == "" {
		respondErr(w, a.Logger, apperrors.Validation("tenant and magazine are required"))
		return
	}

	if err := a.storeEvent(r, &req); err != nil {
		a.Logger.Warn("analytics event dropped",
			"tenant", req.Tenant, "magazine", req.Magazine, "error", err)
	}
	respondOK(w, http.StatusOK, nil)
}

func (a *API) storeEvent(r *http.Request, req *analyticsEventRequest) error {
	tenant, err := a.Tenants.FindBySlug(req.Tenant)
	if err != nil {
		return err
	}
	if tenant == nil {
		return apperrors.NotFound("unknown tenant")
	}
	mag, err := a.Magazines.FindBySlug(tenant.ID, req.Magazine)
	if err != nil {
		return err
	}
	if mag == nil {
		return apperrors.NotFound("unknown magazine")
	}

	event := &models.AnalyticsEvent{
		TenantID:   tenant.ID,
		MagazineID: mag.ID,
		EventType:  models.EventType(req.EventType),
		Page:       req.Page,
		Device:     req.Device,
		IP:         middleware.ClientIP(r),
		Payload:    req.Payload,
	}
	if req.Issue != "" {
		issue, err := a.Issues.FindBySlug(mag.ID, req.Issue)
		if err != nil {
			return err
		}
		if issue != nil {
			event.IssueID = &issue.ID
		}
	}
	return a.Analytics.Insert(event)
}

// analyticsSummary aggregates a magazine's events over a trailing window
// (default 30 days, ?days= to override).
func (a *API) analyticsSummary(w http.ResponseWriter, r *http.Request) {
	_, mag, err := a.magazineFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 365 {
			respondErr(w, a.Logger, apperrors.Validation("days must be between 1 and 365"))
			return
		}
		days = parsed
	}
	since := time.Now().AddDate(0, 0, -days)

	summary, err := a.Analytics.Summarize(mag.ID, since)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	topPages, err := a.Analytics.TopPages(mag.ID, since, 10)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	respondOK(w, http.StatusOK, map[string]any{
		"summary":   summary,
		"top_pages": topPages,
		"days":      days,
	})
}
