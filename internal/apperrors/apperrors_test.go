// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorCodesAndStatuses(t *testing.T) {
	tests := []struct {
		err    *Error
		code   string
		status int
	}{
		{Forbidden("no"), "forbidden", http.StatusForbidden},
		{Unauthorized("no token"), "unauthorized", http.StatusUnauthorized},
		{NotFound("issue %q", "2026-09"), "not_found", http.StatusNotFound},
		{Validation("Minimum page count is %d", 8), "validation", http.StatusUnprocessableEntity},
		{PlanLimit("max %d pages", 16), "plan_limit", http.StatusUnprocessableEntity},
		{InvalidState("cannot publish from %s", "error"), "invalid_state", http.StatusConflict},
		{Conflict("issue already exists"), "conflict", http.StatusConflict},
		{BillingRequired("subscription inactive"), "billing_required", http.StatusPaymentRequired},
		{RateLimited("slow down"), "rate_limited", http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		if tt.err.Code != tt.code {
			t.Errorf("code = %q, want %q", tt.err.Code, tt.code)
		}
		if tt.err.Status != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.code, tt.err.Status, tt.status)
		}
	}
}

func TestFrom(t *testing.T) {
	orig := NotFound("gone")
	wrapped := fmt.Errorf("loading issue: %w", orig)
	if got := From(wrapped); got.Code != "not_found" {
		t.Errorf("From(wrapped) code = %q, want not_found", got.Code)
	}

	plain := errors.New("boom")
	got := From(plain)
	if got.Code != "internal" || got.Status != http.StatusInternalServerError {
		t.Errorf("From(plain) = %q/%d, want internal/500", got.Code, got.Status)
	}
	if !errors.Is(got, plain) {
		t.Error("Internal should wrap its cause")
	}
	if got.Message != "internal server error" {
		t.Errorf("internal message leaked cause: %q", got.Message)
	}
}

func TestWithCause(t *testing.T) {
	cause := errors.New("row not found")
	e := NotFound("issue missing").WithCause(cause)
	if !errors.Is(e, cause) {
		t.Error("WithCause did not attach cause")
	}
	if e.Message != "issue missing" {
		t.Errorf("WithCause changed message: %q", e.Message)
	}
}
