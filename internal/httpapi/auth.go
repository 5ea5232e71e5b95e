// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package httpapi

import (
	"net/http"
	"strings"

	"magazinify/internal/apperrors"
	"magazinify/internal/auth"
	"magazinify/internal/middleware"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

type totpVerifyRequest struct {
	Code string `json:"code"`
}

// register creates a user account. Tenant access is granted separately,
// either by signing up a tenant (becoming its owner) or by invitation.
func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondErr(w, a.Logger, apperrors.Validation("a valid email is required"))
		return
	}
	if len(req.Password) < 8 {
		respondErr(w, a.Logger, apperrors.Validation("password must be at least 8 characters"))
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Email
	}

	existing, err := a.Users.FindByEmail(req.Email)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if existing != nil {
		respondErr(w, a.Logger, apperrors.Conflict("an account with this email already exists"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	user, err := a.Users.Create(req.Email, hash, req.DisplayName)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	respondOK(w, http.StatusCreated, map[string]any{"user": user})
}

// login checks credentials and issues a bearer token. Users with TOTP
// enabled get a restricted token until the code is verified, either inline
// via totp_code or through /auth/2fa/verify.
func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	user, err := a.Users.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	// Same response for unknown email and wrong password.
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondErr(w, a.Logger, apperrors.Unauthorized("invalid email or password"))
		return
	}

	twoFADone := !user.TOTPEnabled
	if user.TOTPEnabled && req.TOTPCode != "" {
		if user.TOTPSecret == nil || !auth.VerifyTOTP(*user.TOTPSecret, req.TOTPCode) {
			respondErr(w, a.Logger, apperrors.Unauthorized("invalid two-factor code"))
			return
		}
		twoFADone = true
	}

	token, err := a.Tokens.Issue(r.Context(), &auth.TokenData{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		TwoFADone:   twoFADone,
	})
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	respondOK(w, http.StatusOK, map[string]any{
		"token":           token,
		"two_fa_required": !twoFADone,
		"user":            user,
	})
}

// logout revokes the presented bearer token.
func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := auth.BearerToken(r); ok {
		if err := a.Tokens.Revoke(r.Context(), token); err != nil {
			respondErr(w, a.Logger, err)
			return
		}
	}
	respondOK(w, http.StatusOK, nil)
}

// twoFASetup generates a fresh TOTP secret for the authenticated user and
// returns the provisioning QR code. The secret activates on first verify.
func (a *API) twoFASetup(w http.ResponseWriter, r *http.Request) {
	data := middleware.TokenFromCtx(r.Context())

	enrollment, err := auth.NewTOTPEnrollment(data.Email)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if err := a.Users.SetTOTPSecret(data.UserID, enrollment.Secret); err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	respondOK(w, http.StatusOK, map[string]any{"enrollment": enrollment})
}

// twoFAVerify checks a TOTP code, completing enrollment on the first valid
// code and unlocking tokens issued before verification.
func (a *API) twoFAVerify(w http.ResponseWriter, r *http.Request) {
	data := middleware.TokenFromCtx(r.Context())

	var req totpVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	user, err := a.Users.FindByID(data.UserID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if user == nil || user.TOTPSecret == nil {
		respondErr(w, a.Logger, apperrors.Validation("two-factor setup has not been started"))
		return
	}
	if !auth.VerifyTOTP(*user.TOTPSecret, req.Code) {
		respondErr(w, a.Logger, apperrors.Unauthorized("invalid two-factor code"))
		return
	}

	if !user.TOTPEnabled {
		if err := a.Users.EnableTOTP(user.ID); err != nil {
			respondErr(w, a.Logger, err)
			return
		}
	}

	token, _ := auth.BearerToken(r)
	data.TwoFADone = true
	if err := a.Tokens.Update(r.Context(), token, data); err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	respondOK(w, http.StatusOK, nil)
}

// me returns the authenticated user and their tenant memberships.
func (a *API) me(w http.ResponseWriter, r *http.Request) {
	data := middleware.TokenFromCtx(r.Context())

	user, err := a.Users.FindByID(data.UserID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if user == nil {
		respondErr(w, a.Logger, apperrors.Unauthorized("account no longer exists"))
		return
	}
	memberships, err := a.Users.ListMemberships(user.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	respondOK(w, http.StatusOK, map[string]any{
		"user":        user,
		"memberships": memberships,
	})
}
