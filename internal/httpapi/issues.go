// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"magazinify/internal/apperrors"
	"magazinify/internal/models"
	"magazinify/internal/store"
)

type generateIssueRequest struct {
	// Period overrides the cadence-derived period slug, e.g. "2026-09".
	Period string `json:"period,omitempty"`
}

type publishIssueRequest struct {
	// PublishAt in the future schedules instead of publishing now.
	PublishAt *time.Time `json:"publish_at,omitempty"`
}

// listIssues returns all issues of a magazine, newest period first.
func (a *API) listIssues(w http.ResponseWriter, r *http.Request) {
	_, mag, err := a.magazineFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	issues, err := a.Issues.ListByMagazine(mag.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"issues": issues})
}

// getIssue returns an issue with its articles, ad slots, and the active
// background job if generation is queued or running.
func (a *API) getIssue(w http.ResponseWriter, r *http.Request) {
	_, _, issue, err := a.issueFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	articles, err := a.Articles.ListByIssue(issue.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	adSlots, err := a.AdSlots.ListByIssue(issue.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	job, err := a.Jobs.FindActiveByIssue(issue.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	respondOK(w, http.StatusOK, map[string]any{
		"issue":    issue,
		"articles": articles,
		"ad_slots": adSlots,
		"job":      job,
	})
}

// generateIssue creates a pending issue for the period and enqueues a
// generation job. Generating the same period twice is a conflict.
func (a *API) generateIssue(w http.ResponseWriter, r *http.Request) {
	tenant, mag, err := a.magazineFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	var req generateIssueRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, a.Logger, err)
			return
		}
	}

	if !tenant.CanGenerate() {
		respondErr(w, a.Logger, apperrors.BillingRequired(
			"billing status %q does not allow generation", tenant.BillingStatus))
		return
	}

	bp, err := a.Blueprints.FindByMagazine(mag.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if bp == nil {
		respondErr(w, a.Logger, apperrors.Validation("configure a blueprint before generating"))
		return
	}

	period := req.Period
	if period == "" {
		period = bp.PeriodSlug(time.Now())
	}

	issue, err := a.Issues.Create(mag.ID, period)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateIssue) {
			respondErr(w, a.Logger, apperrors.Conflict("an issue for period %q already exists", period))
			return
		}
		respondErr(w, a.Logger, err)
		return
	}

	job, err := a.enqueueGenerate(tenant.ID, mag.ID, issue.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	respondOK(w, http.StatusAccepted, map[string]any{"issue": issue, "job": job})
}

func (a *API) enqueueGenerate(tenantID, magazineID, issueID uuid.UUID) (*models.Job, error) {
	payload, err := json.Marshal(models.GeneratePayload{
		TenantID: tenantID, MagazineID: magazineID, IssueID: issueID,
	})
	if err != nil {
		return nil, err
	}
	return a.Jobs.Enqueue(models.JobGenerateIssue, issueID, payload)
}

// publishIssue publishes a ready issue, or schedules it when publish_at is
// in the future.
func (a *API) publishIssue(w http.ResponseWriter, r *http.Request) {
	tenant, mag, issue, err := a.issueFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	var req publishIssueRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, a.Logger, err)
			return
		}
	}

	if !tenant.CanGenerate() {
		respondErr(w, a.Logger, apperrors.BillingRequired(
			"billing status %q does not allow publishing", tenant.BillingStatus))
		return
	}

	if req.PublishAt != nil && req.PublishAt.After(time.Now()) {
		scheduled, err := a.Issues.Schedule(issue.ID, *req.PublishAt)
		if err != nil {
			if errors.Is(err, store.ErrIllegalTransition) {
				respondErr(w, a.Logger, apperrors.InvalidState(
					"issue in status %q cannot be scheduled", issue.Status))
				return
			}
			respondErr(w, a.Logger, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]any{"issue": scheduled})
		return
	}

	published, err := a.Issues.Publish(issue.ID)
	if err != nil {
		if errors.Is(err, store.ErrIllegalTransition) {
			respondErr(w, a.Logger, apperrors.InvalidState(
				"issue in status %q cannot be published", issue.Status))
			return
		}
		respondErr(w, a.Logger, err)
		return
	}
	a.invalidatePublished(r, tenant, mag)

	respondOK(w, http.StatusOK, map[string]any{"issue": published})
}

// unscheduleIssue moves a scheduled issue back to ready.
func (a *API) unscheduleIssue(w http.ResponseWriter, r *http.Request) {
	_, _, issue, err := a.issueFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	ready, err := a.Issues.Transition(issue.ID, models.IssueReady)
	if err != nil {
		if errors.Is(err, store.ErrIllegalTransition) {
			respondErr(w, a.Logger, apperrors.InvalidState(
				"issue in status %q is not scheduled", issue.Status))
			return
		}
		respondErr(w, a.Logger, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"issue": ready})
}

// retryIssue re-enqueues generation for a failed issue.
func (a *API) retryIssue(w http.ResponseWriter, r *http.Request) {
	tenant, mag, issue, err := a.issueFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	if !tenant.CanGenerate() {
		respondErr(w, a.Logger, apperrors.BillingRequired(
			"billing status %q does not allow generation", tenant.BillingStatus))
		return
	}

	retrying, err := a.Issues.Transition(issue.ID, models.IssueRetrying)
	if err != nil {
		if errors.Is(err, store.ErrIllegalTransition) {
			respondErr(w, a.Logger, apperrors.InvalidState(
				"only failed issues can be retried, this one is %q", issue.Status))
			return
		}
		respondErr(w, a.Logger, err)
		return
	}

	job, err := a.enqueueGenerate(tenant.ID, mag.ID, issue.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	respondOK(w, http.StatusAccepted, map[string]any{"issue": retrying, "job": job})
}

// cancelIssue aborts an issue and its background work: the job row is
// settled first so the worker cannot re-claim it, then the in-flight
// context is canceled, then the issue is moved to canceled.
func (a *API) cancelIssue(w http.ResponseWriter, r *http.Request) {
	_, _, issue, err := a.issueFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	job, err := a.Jobs.FindActiveByIssue(issue.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if job != nil {
		if _, err := a.Jobs.Cancel(job.ID); err != nil {
			respondErr(w, a.Logger, err)
			return
		}
		if a.Worker != nil {
			a.Worker.Cancel(job.ID)
		}
	}

	canceled, err := a.Issues.Transition(issue.ID, models.IssueCanceled)
	if err != nil {
		if errors.Is(err, store.ErrIllegalTransition) {
			respondErr(w, a.Logger, apperrors.InvalidState(
				"issue in status %q cannot be canceled", issue.Status))
			return
		}
		respondErr(w, a.Logger, err)
		return
	}

	respondOK(w, http.StatusOK, map[string]any{"issue": canceled, "job": job})
}
