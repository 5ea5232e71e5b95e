// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"magazinify/internal/auth"
	"magazinify/internal/database"
	"magazinify/internal/models"
	"magazinify/internal/store"
)

func withToken(r *http.Request, data *auth.TokenData) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), tokenKey, data))
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("rejects anonymous request", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"unauthorized"`) {
			t.Errorf("body: %q", rr.Body.String())
		}
	})

	t.Run("passes authenticated request", func(t *testing.T) {
		req := withToken(httptest.NewRequest(http.MethodGet, "/", nil), &auth.TokenData{
			UserID: uuid.New(), TwoFADone: true,
		})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})
}

func TestRequireVerified(t *testing.T) {
	handler := RequireVerified(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("rejects pending two-factor token", func(t *testing.T) {
		req := withToken(httptest.NewRequest(http.MethodGet, "/", nil), &auth.TokenData{
			UserID: uuid.New(), TwoFADone: false,
		})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
	})

	t.Run("passes verified token", func(t *testing.T) {
		req := withToken(httptest.NewRequest(http.MethodGet, "/", nil), &auth.TokenData{
			UserID: uuid.New(), TwoFADone: true,
		})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	envOr := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	dsn := "postgres://" + envOr("POSTGRES_USER", "magazinify") + ":" +
		envOr("POSTGRES_PASSWORD", "changeme") + "@" +
		envOr("POSTGRES_HOST", "localhost") + ":" + envOr("POSTGRES_PORT", "5432") + "/" +
		envOr("POSTGRES_DB", "magazinify") + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

func TestRequireTenantRole(t *testing.T) {
	db := testDB(t)
	tenants := store.NewTenantStore(db)
	users := store.NewUserStore(db)

	tenant, err := tenants.Create("Middleware Test", "mw-authz")
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM tenants WHERE id = $1", tenant.ID) })

	editor, err := users.Create("editor@mw-test.local", "hash", "Editor")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", editor.ID) })
	if err := users.AddMembership(editor.ID, tenant.ID, models.RoleEditor); err != nil {
		t.Fatalf("add membership: %v", err)
	}

	outsider, err := users.Create("outsider@mw-test.local", "hash", "Outsider")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", outsider.ID) })

	newRouter := func(roles ...models.Role) *chi.Mux {
		r := chi.NewRouter()
		r.With(RequireTenantRole(tenants, users, roles...)).
			Get("/tenants/{tenantSlug}/probe", func(w http.ResponseWriter, r *http.Request) {
				if TenantFromCtx(r.Context()) == nil || MembershipFromCtx(r.Context()) == nil {
					t.Error("tenant or membership missing from context")
				}
				w.WriteHeader(http.StatusOK)
			})
		return r
	}

	do := func(router *chi.Mux, userID uuid.UUID, slug string) int {
		req := withToken(httptest.NewRequest(http.MethodGet, "/tenants/"+slug+"/probe", nil),
			&auth.TokenData{UserID: userID, TwoFADone: true})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := do(newRouter(models.RoleEditor), editor.ID, tenant.Slug); code != http.StatusOK {
		t.Errorf("editor with editor requirement: got %d, want 200", code)
	}
	// Role escalation: admin requirement rejects a plain editor.
	if code := do(newRouter(models.RoleAdmin), editor.ID, tenant.Slug); code != http.StatusForbidden {
		t.Errorf("editor with admin requirement: got %d, want 403", code)
	}
	if code := do(newRouter(models.RoleViewer), outsider.ID, tenant.Slug); code != http.StatusForbidden {
		t.Errorf("non-member: got %d, want 403", code)
	}
	if code := do(newRouter(models.RoleViewer), editor.ID, "no-such-tenant"); code != http.StatusNotFound {
		t.Errorf("unknown tenant: got %d, want 404", code)
	}
}
