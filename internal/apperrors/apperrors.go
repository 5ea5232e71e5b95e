// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

// Package apperrors defines the typed errors the API surfaces to clients.
// Each error carries a machine-readable code and an HTTP status; handlers
// return them and the response writer serializes them into the standard
// {ok:false, error:{code, message}} envelope.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an API-visible error with a stable code and HTTP status.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error without changing the client-facing
// code or message.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

func newError(code string, status int, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Status:  status,
	}
}

// Forbidden is returned when the caller lacks the required tenant role.
func Forbidden(format string, args ...any) *Error {
	return newError("forbidden", http.StatusForbidden, format, args...)
}

// Unauthorized is returned when no valid bearer token accompanies a request.
func Unauthorized(format string, args ...any) *Error {
	return newError("unauthorized", http.StatusUnauthorized, format, args...)
}

// NotFound is returned when a referenced entity does not exist.
func NotFound(format string, args ...any) *Error {
	return newError("not_found", http.StatusNotFound, format, args...)
}

// Validation is returned for malformed or out-of-range input.
func Validation(format string, args ...any) *Error {
	return newError("validation", http.StatusUnprocessableEntity, format, args...)
}

// PlanLimit is returned when a request exceeds the tenant's plan caps.
func PlanLimit(format string, args ...any) *Error {
	return newError("plan_limit", http.StatusUnprocessableEntity, format, args...)
}

// InvalidState is returned when an issue status transition is not legal.
func InvalidState(format string, args ...any) *Error {
	return newError("invalid_state", http.StatusConflict, format, args...)
}

// Conflict is returned when a uniqueness constraint would be violated,
// e.g. generating the same issue period twice.
func Conflict(format string, args ...any) *Error {
	return newError("conflict", http.StatusConflict, format, args...)
}

// BillingRequired is returned when a past-due or canceled tenant attempts
// generation or publishing.
func BillingRequired(format string, args ...any) *Error {
	return newError("billing_required", http.StatusPaymentRequired, format, args...)
}

// RateLimited is returned when the per-IP limiter rejects a request.
func RateLimited(format string, args ...any) *Error {
	return newError("rate_limited", http.StatusTooManyRequests, format, args...)
}

// Internal wraps an unexpected error. The cause is logged server-side;
// clients only see the generic message.
func Internal(cause error) *Error {
	e := newError("internal", http.StatusInternalServerError, "internal server error")
	e.cause = cause
	return e
}

// From extracts an *Error from err, converting unknown errors to Internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
