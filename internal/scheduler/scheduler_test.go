// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

// Scheduler tests run against a real PostgreSQL and are skipped when it is
// not reachable.
package scheduler

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"magazinify/internal/database"
	"magazinify/internal/models"
	"magazinify/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "magazinify")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "magazinify")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

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

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newScheduler(t *testing.T, db *sql.DB) *Scheduler {
	t.Helper()
	return New(Config{
		Blueprints: store.NewBlueprintStore(db),
		Magazines:  store.NewMagazineStore(db),
		Tenants:    store.NewTenantStore(db),
		Issues:     store.NewIssueStore(db),
		Jobs:       store.NewJobStore(db),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Interval:   time.Hour,
	})
}

func setup(t *testing.T, db *sql.DB, slug string, cadence models.Cadence) (*models.Tenant, *models.Magazine) {
	t.Helper()

	tenant, err := store.NewTenantStore(db).Create("Sched Test "+slug, "sched-"+slug)
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM tenants WHERE id = $1", tenant.ID) })

	mag, err := store.NewMagazineStore(db).Create(tenant.ID, "Sched Mag", "sched-"+slug, "classic")
	if err != nil {
		t.Fatalf("create magazine: %v", err)
	}

	user, err := store.NewUserStore(db).Create("sched-"+slug+"@sched-test.local", "hash", "Sched")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", user.ID) })

	_, err = store.NewBlueprintStore(db).Upsert(&models.Blueprint{
		MagazineID: mag.ID, Pages: 8, Sections: []string{"news"},
		Tone: "neutral", ReadingLevel: "general",
		Cadence: cadence, ApprovalMode: models.ApprovalManual, UpdatedBy: user.ID,
	})
	if err != nil {
		t.Fatalf("upsert blueprint: %v", err)
	}
	return tenant, mag
}

func TestTickEnqueuesDueBlueprint(t *testing.T) {
	db := testDB(t)
	s := newScheduler(t, db)
	_, mag := setup(t, db, "due", models.CadenceMonthly)

	now := time.Now().UTC()
	generated, _, err := s.Tick(context.Background(), now)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if generated < 1 {
		t.Fatalf("expected at least one enqueued issue, got %d", generated)
	}

	issue, err := store.NewIssueStore(db).FindBySlug(mag.ID, now.Format("2006-01"))
	if err != nil || issue == nil {
		t.Fatalf("expected a pending issue for this period, got %v %v", issue, err)
	}
	if issue.Status != models.IssuePending {
		t.Errorf("issue status: %q, want pending", issue.Status)
	}

	job, err := store.NewJobStore(db).FindActiveByIssue(issue.ID)
	if err != nil || job == nil {
		t.Fatalf("expected a queued job, got %v %v", job, err)
	}
	if job.Type != models.JobGenerateIssue {
		t.Errorf("job type: %q", job.Type)
	}
}

func TestTickIsIdempotentPerPeriod(t *testing.T) {
	db := testDB(t)
	s := newScheduler(t, db)
	_, mag := setup(t, db, "idem", models.CadenceMonthly)

	now := time.Now().UTC()
	if _, _, err := s.Tick(context.Background(), now); err != nil {
		t.Fatalf("first Tick: %v", err)
	}
	if _, _, err := s.Tick(context.Background(), now); err != nil {
		t.Fatalf("second Tick: %v", err)
	}

	issues, err := store.NewIssueStore(db).ListByMagazine(mag.ID)
	if err != nil {
		t.Fatalf("list issues: %v", err)
	}
	if len(issues) != 1 {
		t.Errorf("expected exactly one issue for the period, got %d", len(issues))
	}
}

func TestTickSkipsManualCadence(t *testing.T) {
	db := testDB(t)
	s := newScheduler(t, db)
	_, mag := setup(t, db, "manual", models.CadenceManual)

	if _, _, err := s.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	issues, _ := store.NewIssueStore(db).ListByMagazine(mag.ID)
	if len(issues) != 0 {
		t.Errorf("manual cadence produced %d issues", len(issues))
	}
}

func TestTickSkipsUnbilledTenant(t *testing.T) {
	db := testDB(t)
	s := newScheduler(t, db)
	tenant, mag := setup(t, db, "unbilled", models.CadenceMonthly)

	if err := store.NewTenantStore(db).UpdateBillingStatus(tenant.ID, models.BillingPastDue); err != nil {
		t.Fatalf("update billing: %v", err)
	}

	if _, _, err := s.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	issues, _ := store.NewIssueStore(db).ListByMagazine(mag.ID)
	if len(issues) != 0 {
		t.Errorf("unbilled tenant got %d issues", len(issues))
	}
}

func TestTickPublishesDueScheduledIssue(t *testing.T) {
	db := testDB(t)
	s := newScheduler(t, db)
	_, mag := setup(t, db, "publish", models.CadenceManual)
	issues := store.NewIssueStore(db)

	issue, err := issues.Create(mag.ID, "2026-08")
	if err != nil {
		t.Fatalf("create issue: %v", err)
	}
	issues.Transition(issue.ID, models.IssueGenerating)
	issues.Transition(issue.ID, models.IssueReady)
	if _, err := issues.Schedule(issue.ID, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	_, published, err := s.Tick(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if published < 1 {
		t.Fatalf("expected at least one published issue, got %d", published)
	}

	saved, _ := issues.FindByID(issue.ID)
	if saved.Status != models.IssuePublished || saved.PublishedAt == nil {
		t.Errorf("issue: status %q published_at %v", saved.Status, saved.PublishedAt)
	}
}
