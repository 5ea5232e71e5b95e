// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"magazinify/internal/apperrors"
	"magazinify/internal/auth"
	"magazinify/internal/models"
	"magazinify/internal/store"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// tokenKey is the context key for the authenticated token data.
	tokenKey contextKey = "token"
	// tenantKey is the context key for the tenant resolved from the URL.
	tenantKey contextKey = "tenant"
	// membershipKey is the context key for the caller's tenant membership.
	membershipKey contextKey = "membership"
)

// Authenticate resolves the bearer token from the Authorization header and
// stores its payload in the request context. It does NOT enforce
// authentication; RequireAuth does that.
func Authenticate(tokens *auth.TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			data, err := tokens.Get(r.Context(), token)
			if err != nil || data == nil {
				// Unknown or expired token. Treat as unauthenticated.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), tokenKey, data)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that carry no valid bearer token.
// Must be applied after Authenticate in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if TokenFromCtx(r.Context()) == nil {
			writeError(w, apperrors.Unauthorized("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireVerified rejects tokens whose two-factor step is still pending.
// Login issues such tokens for users with TOTP enabled; only the 2FA
// verification endpoint accepts them. Must be applied after RequireAuth.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := TokenFromCtx(r.Context())
		if data == nil || !data.TwoFADone {
			writeError(w, apperrors.Unauthorized("two-factor verification required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTenantRole resolves the tenant from the {tenantSlug} URL parameter,
// checks that the caller holds one of the given roles in it, and stores the
// tenant and membership in the request context. This is the single
// authorization gate for all tenant-scoped routes. Must be applied after
// RequireAuth.
func RequireTenantRole(tenants *store.TenantStore, users *store.UserStore, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data := TokenFromCtx(r.Context())
			if data == nil {
				writeError(w, apperrors.Unauthorized("authentication required"))
				return
			}

			slug := chi.URLParam(r, "tenantSlug")
			tenant, err := tenants.FindBySlug(slug)
			if err != nil {
				writeError(w, apperrors.Internal(err))
				return
			}
			if tenant == nil {
				writeError(w, apperrors.NotFound("tenant %q not found", slug))
				return
			}

			membership, err := users.FindMembership(data.UserID, tenant.ID)
			if err != nil {
				writeError(w, apperrors.Internal(err))
				return
			}
			if membership == nil || !membership.Allows(roles...) {
				writeError(w, apperrors.Forbidden("insufficient role for this tenant"))
				return
			}

			ctx := context.WithValue(r.Context(), tenantKey, tenant)
			ctx = context.WithValue(ctx, membershipKey, membership)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromCtx extracts the authenticated token data from the request
// context. Returns nil if the request is unauthenticated.
func TokenFromCtx(ctx context.Context) *auth.TokenData {
	data, _ := ctx.Value(tokenKey).(*auth.TokenData)
	return data
}

// TenantFromCtx extracts the tenant resolved by RequireTenantRole.
func TenantFromCtx(ctx context.Context) *models.Tenant {
	tenant, _ := ctx.Value(tenantKey).(*models.Tenant)
	return tenant
}

// MembershipFromCtx extracts the membership resolved by RequireTenantRole.
func MembershipFromCtx(ctx context.Context) *models.TenantMembership {
	m, _ := ctx.Value(membershipKey).(*models.TenantMembership)
	return m
}

// writeError serializes an API error into the standard response envelope.
// Duplicated from httpapi to keep this package import-cycle free.
func writeError(w http.ResponseWriter, err *apperrors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)
	json.NewEncoder(w).Encode(map[string]any{
		"ok":    false,
		"error": err,
	})
}
