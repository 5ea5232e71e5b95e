// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"magazinify/internal/apperrors"
	"magazinify/internal/models"
)

func starterTenant() *models.Tenant {
	maxPages, maxMags := models.PlanLimits(models.PlanStarter)
	return &models.Tenant{
		Plan:         models.PlanStarter,
		MaxPages:     maxPages,
		MaxMagazines: maxMags,
	}
}

func TestValidateBlueprint(t *testing.T) {
	valid := func() *blueprintRequest {
		return &blueprintRequest{
			Pages:    12,
			Sections: []string{"features", "spotlight"},
			Cadence:  "monthly",
		}
	}

	t.Run("accepts valid request and fills defaults", func(t *testing.T) {
		req := valid()
		if err := validateBlueprint(req, starterTenant()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Tone != "neutral" || req.ReadingLevel != "general" {
			t.Errorf("defaults not applied: tone %q level %q", req.Tone, req.ReadingLevel)
		}
		if req.ApprovalMode != string(models.ApprovalManual) {
			t.Errorf("approval default: %q", req.ApprovalMode)
		}
	})

	t.Run("rejects too few pages", func(t *testing.T) {
		req := valid()
		req.Pages = 4
		err := validateBlueprint(req, starterTenant())
		var appErr *apperrors.Error
		if !errors.As(err, &appErr) {
			t.Fatalf("expected apperrors.Error, got %v", err)
		}
		if appErr.Status != http.StatusUnprocessableEntity {
			t.Errorf("status: %d", appErr.Status)
		}
		if appErr.Message != "Minimum page count is 8" {
			t.Errorf("message: %q", appErr.Message)
		}
	})

	t.Run("rejects pages over the plan cap", func(t *testing.T) {
		req := valid()
		req.Pages = 20 // starter caps at 16
		err := validateBlueprint(req, starterTenant())
		appErr := apperrors.From(err)
		if appErr.Code != "plan_limit" {
			t.Errorf("code: %q, want plan_limit", appErr.Code)
		}
	})

	t.Run("rejects empty sections", func(t *testing.T) {
		req := valid()
		req.Sections = nil
		if err := validateBlueprint(req, starterTenant()); err == nil {
			t.Error("empty sections accepted")
		}
	})

	t.Run("rejects unknown cadence", func(t *testing.T) {
		req := valid()
		req.Cadence = "fortnightly"
		if err := validateBlueprint(req, starterTenant()); err == nil {
			t.Error("unknown cadence accepted")
		}
	})

	t.Run("rejects unknown approval mode", func(t *testing.T) {
		req := valid()
		req.ApprovalMode = "maybe"
		if err := validateBlueprint(req, starterTenant()); err == nil {
			t.Error("unknown approval mode accepted")
		}
	})
}

func TestDecodeJSON(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		var dst struct{}
		err := decodeJSON(r, &dst)
		if apperrors.From(err).Code != "validation" {
			t.Errorf("got %v, want validation error", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{nope"))
		var dst struct{}
		if err := decodeJSON(r, &dst); err == nil {
			t.Error("malformed JSON accepted")
		}
	})

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
		var dst struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(r, &dst); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if dst.Name != "x" {
			t.Errorf("name: %q", dst.Name)
		}
	})
}

func TestHealthz(t *testing.T) {
	api := &API{}
	rr := httptest.NewRecorder()
	api.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"ok":true`) {
		t.Errorf("body: %q", rr.Body.String())
	}
}
