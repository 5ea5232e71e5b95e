// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"magazinify/internal/models"
)

// JobStore is the persisted job queue. Claiming uses FOR UPDATE SKIP LOCKED
// so several worker processes can poll the same table without handing out
// the same job twice.
type JobStore struct {
	db *sql.DB
}

// NewJobStore creates a new JobStore with the given database connection.
func NewJobStore(db *sql.DB) *JobStore {
	return &JobStore{db: db}
}

const jobColumns = `id, type, status, issue_id, payload, attempts, max_attempts,
	error, heartbeat_at, created_at, updated_at`

func scanJob(scanner interface{ Scan(...any) error }) (*models.Job, error) {
	var j models.Job
	err := scanner.Scan(
		&j.ID, &j.Type, &j.Status, &j.IssueID, &j.Payload, &j.Attempts,
		&j.MaxAttempts, &j.Error, &j.HeartbeatAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// Enqueue persists a new queued job for an issue.
func (s *JobStore) Enqueue(jobType models.JobType, issueID uuid.UUID, payload []byte) (*models.Job, error) {
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	row := s.db.QueryRow(`
		INSERT INTO jobs (type, status, issue_id, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING `+jobColumns,
		jobType, models.JobQueued, issueID, payload,
	)
	j, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}
	return j, nil
}

// ClaimNext atomically claims the oldest queued job, marking it running.
// Returns nil when the queue is empty.
func (s *JobStore) ClaimNext() (*models.Job, error) {
	row := s.db.QueryRow(`
		UPDATE jobs SET status = $1, attempts = attempts + 1,
			heartbeat_at = NOW(), updated_at = NOW()
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = $2
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + jobColumns,
		models.JobRunning, models.JobQueued,
	)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return j, nil
}

// Heartbeat refreshes a running job's liveness timestamp.
func (s *JobStore) Heartbeat(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE jobs SET heartbeat_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, models.JobRunning)
	if err != nil {
		return fmt.Errorf("heartbeat job: %w", err)
	}
	return nil
}

// MarkSucceeded records a finished job.
func (s *JobStore) MarkSucceeded(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE jobs SET status = $1, error = NULL, updated_at = NOW() WHERE id = $2
	`, models.JobSucceeded, id)
	if err != nil {
		return fmt.Errorf("mark job succeeded: %w", err)
	}
	return nil
}

// MarkFailed records a failed attempt. If the job has attempts left it goes
// back to queued for another worker pass; otherwise it lands in failed.
// Returns the job's final status.
func (s *JobStore) MarkFailed(id uuid.UUID, message string) (models.JobStatus, error) {
	var status models.JobStatus
	err := s.db.QueryRow(`
		UPDATE jobs SET
			status = CASE WHEN attempts < max_attempts THEN $1 ELSE $2 END,
			error = $3,
			updated_at = NOW()
		WHERE id = $4
		RETURNING status
	`, models.JobQueued, models.JobFailed, message, id).Scan(&status)
	if err != nil {
		return "", fmt.Errorf("mark job failed: %w", err)
	}
	return status, nil
}

// Cancel marks a queued or running job canceled. Running jobs also get a
// context cancellation from the worker; this records the outcome. Reports
// whether a job was actually canceled.
func (s *JobStore) Cancel(id uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE jobs SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status IN ($3, $4)
	`, models.JobCanceled, id, models.JobQueued, models.JobRunning)
	if err != nil {
		return false, fmt.Errorf("cancel job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel job rows: %w", err)
	}
	return n > 0, nil
}

// FindByID retrieves a job by ID. Returns nil if not found.
func (s *JobStore) FindByID(id uuid.UUID) (*models.Job, error) {
	row := s.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find job by id: %w", err)
	}
	return j, nil
}

// FindActiveByIssue returns the issue's queued or running job, if any.
func (s *JobStore) FindActiveByIssue(issueID uuid.UUID) (*models.Job, error) {
	row := s.db.QueryRow(`
		SELECT `+jobColumns+` FROM jobs
		WHERE issue_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`, issueID, models.JobQueued, models.JobRunning)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active job: %w", err)
	}
	return j, nil
}
