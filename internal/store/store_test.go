// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"magazinify/internal/database"
	"magazinify/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "magazinify")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "magazinify")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
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

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testTenant creates a tenant for the test and registers a cleanup that
// cascades through magazines, issues, articles, and jobs.
func testTenant(t *testing.T, db *sql.DB, slug string) *models.Tenant {
	t.Helper()
	tenant, err := NewTenantStore(db).Create("Test "+slug, slug)
	if err != nil {
		t.Fatalf("create test tenant: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM analytics_events WHERE tenant_id = $1", tenant.ID)
		db.Exec("DELETE FROM tenants WHERE id = $1", tenant.ID)
	})
	return tenant
}

// testMagazine creates a magazine under a tenant. Rows are removed by the
// tenant cascade.
func testMagazine(t *testing.T, db *sql.DB, tenant *models.Tenant, slug string) *models.Magazine {
	t.Helper()
	mag, err := NewMagazineStore(db).Create(tenant.ID, "Test "+slug, slug, "classic")
	if err != nil {
		t.Fatalf("create test magazine: %v", err)
	}
	return mag
}

// testUser creates a user and registers cleanup.
func testUser(t *testing.T, db *sql.DB, email string) *models.User {
	t.Helper()
	user, err := NewUserStore(db).Create(email, "not-a-real-hash", "Test User")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", user.ID) })
	return user
}
