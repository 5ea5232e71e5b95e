// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// JobType names the kinds of background work the worker knows how to run.
type JobType string

const (
	JobGenerateIssue     JobType = "generate_issue"
	JobRegenerateArticle JobType = "regenerate_article"
)

// JobStatus is the lifecycle of a persisted background job. Unlike issue
// statuses, job statuses are linear: queued → running → one of the three
// terminal states, with failed jobs re-queued by incrementing attempts.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	JobCanceled  JobStatus = "canceled"
)

// Job is one unit of background work persisted in Postgres. Every issue
// generation runs through a job so completion, failure, and retries are
// observable instead of being side effects of a dangling goroutine.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	Type        JobType    `json:"type"`
	Status      JobStatus  `json:"status"`
	IssueID     uuid.UUID  `json:"issue_id"`
	Payload     []byte     `json:"-"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	Error       *string    `json:"error,omitempty"`
	HeartbeatAt *time.Time `json:"heartbeat_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Terminal reports whether the job will never run again.
func (j *Job) Terminal() bool {
	switch j.Status {
	case JobSucceeded, JobFailed, JobCanceled:
		return true
	}
	return false
}

// GeneratePayload is the payload for generate_issue and retry jobs.
type GeneratePayload struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	MagazineID uuid.UUID `json:"magazine_id"`
	IssueID    uuid.UUID `json:"issue_id"`
}

// RegeneratePayload is the payload for regenerate_article jobs.
type RegeneratePayload struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	IssueID   uuid.UUID `json:"issue_id"`
	ArticleID uuid.UUID `json:"article_id"`
	Guidance  string    `json:"guidance,omitempty"`
}
