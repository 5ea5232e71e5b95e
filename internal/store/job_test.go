// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package store

import (
	"encoding/json"
	"testing"

	"magazinify/internal/models"
)

func TestJobStoreEnqueueAndClaim(t *testing.T) {
	db := testDB(t)
	tenant := testTenant(t, db, "job-claim")
	mag := testMagazine(t, db, tenant, "job-claim")
	issues := NewIssueStore(db)
	jobs := NewJobStore(db)

	issue, _ := issues.Create(mag.ID, "2026-09")
	payload, _ := json.Marshal(models.GeneratePayload{
		TenantID: tenant.ID, MagazineID: mag.ID, IssueID: issue.ID,
	})

	job, err := jobs.Enqueue(models.JobGenerateIssue, issue.ID, payload)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if job.Status != models.JobQueued || job.Attempts != 0 {
		t.Errorf("fresh job: %+v", job)
	}

	claimed, err := jobs.ClaimNext()
	if err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}
	if claimed == nil || claimed.ID != job.ID {
		t.Fatalf("expected to claim the enqueued job, got %+v", claimed)
	}
	if claimed.Status != models.JobRunning || claimed.Attempts != 1 {
		t.Errorf("claimed job: status=%q attempts=%d", claimed.Status, claimed.Attempts)
	}

	var decoded models.GeneratePayload
	if err := json.Unmarshal(claimed.Payload, &decoded); err != nil {
		t.Fatalf("payload did not round-trip: %v", err)
	}
	if decoded.IssueID != issue.ID {
		t.Errorf("payload issue: got %s, want %s", decoded.IssueID, issue.ID)
	}

	// Queue is now empty for this test's rows; another claim may pick up
	// unrelated jobs but never this one again.
	again, err := jobs.ClaimNext()
	if err != nil {
		t.Fatalf("second ClaimNext: %v", err)
	}
	if again != nil && again.ID == job.ID {
		t.Error("claimed the same job twice")
	}
}

func TestJobStoreFailedRetriesThenLands(t *testing.T) {
	db := testDB(t)
	tenant := testTenant(t, db, "job-retry")
	mag := testMagazine(t, db, tenant, "job-retry")
	issues := NewIssueStore(db)
	jobs := NewJobStore(db)

	issue, _ := issues.Create(mag.ID, "2026-09")
	job, _ := jobs.Enqueue(models.JobGenerateIssue, issue.ID, nil)

	// Attempts 1 and 2 re-queue; attempt 3 (max_attempts) fails for good.
	for attempt := 1; attempt <= 3; attempt++ {
		claimed, err := jobs.ClaimNext()
		if err != nil || claimed == nil {
			t.Fatalf("claim attempt %d: %v %v", attempt, claimed, err)
		}
		status, err := jobs.MarkFailed(claimed.ID, "provider exploded")
		if err != nil {
			t.Fatalf("MarkFailed attempt %d: %v", attempt, err)
		}
		want := models.JobQueued
		if attempt == 3 {
			want = models.JobFailed
		}
		if status != want {
			t.Errorf("attempt %d: status %q, want %q", attempt, status, want)
		}
	}

	final, _ := jobs.FindByID(job.ID)
	if !final.Terminal() || final.Error == nil {
		t.Errorf("final job: %+v", final)
	}
}

func TestJobStoreCancel(t *testing.T) {
	db := testDB(t)
	tenant := testTenant(t, db, "job-cancel")
	mag := testMagazine(t, db, tenant, "job-cancel")
	issues := NewIssueStore(db)
	jobs := NewJobStore(db)

	issue, _ := issues.Create(mag.ID, "2026-09")
	job, _ := jobs.Enqueue(models.JobGenerateIssue, issue.ID, nil)

	canceled, err := jobs.Cancel(job.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !canceled {
		t.Error("expected cancel to hit the queued job")
	}

	// Terminal jobs cannot be canceled again.
	canceled, err = jobs.Cancel(job.ID)
	if err != nil {
		t.Fatalf("second Cancel: %v", err)
	}
	if canceled {
		t.Error("canceled a terminal job")
	}

	// Canceled jobs are not claimable.
	claimed, _ := jobs.ClaimNext()
	if claimed != nil && claimed.ID == job.ID {
		t.Error("claimed a canceled job")
	}
}

func TestJobStoreFindActiveByIssue(t *testing.T) {
	db := testDB(t)
	tenant := testTenant(t, db, "job-active")
	mag := testMagazine(t, db, tenant, "job-active")
	issues := NewIssueStore(db)
	jobs := NewJobStore(db)

	issue, _ := issues.Create(mag.ID, "2026-09")

	active, err := jobs.FindActiveByIssue(issue.ID)
	if err != nil {
		t.Fatalf("FindActiveByIssue: %v", err)
	}
	if active != nil {
		t.Errorf("expected nil before enqueue, got %+v", active)
	}

	job, _ := jobs.Enqueue(models.JobGenerateIssue, issue.ID, nil)
	active, err = jobs.FindActiveByIssue(issue.ID)
	if err != nil {
		t.Fatalf("FindActiveByIssue after enqueue: %v", err)
	}
	if active == nil || active.ID != job.ID {
		t.Errorf("expected the queued job, got %+v", active)
	}

	jobs.MarkSucceeded(job.ID)
	active, _ = jobs.FindActiveByIssue(issue.ID)
	if active != nil {
		t.Errorf("expected nil after success, got %+v", active)
	}
}
