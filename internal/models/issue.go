// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IssueStatus represents the lifecycle of a generated edition. The transition
// table below is the only definition of legal status changes; handlers and the
// worker must go through CanTransition / TransitionsInto rather than comparing
// statuses themselves.
type IssueStatus string

const (
	IssuePending    IssueStatus = "pending"
	IssueGenerating IssueStatus = "generating"
	IssueReady      IssueStatus = "ready"
	IssueRetrying   IssueStatus = "retrying"
	IssueScheduled  IssueStatus = "scheduled"
	IssuePublished  IssueStatus = "published"
	IssueCanceled   IssueStatus = "canceled"
	IssueError      IssueStatus = "error"
)

var allIssueStatuses = []IssueStatus{
	IssuePending,
	IssueGenerating,
	IssueReady,
	IssueRetrying,
	IssueScheduled,
	IssuePublished,
	IssueCanceled,
	IssueError,
}

// issueTransitions maps each target status to the set of statuses it may be
// reached from. Cancel is special-cased in TransitionsInto: it is legal from
// every status except published and canceled itself.
var issueTransitions = map[IssueStatus][]IssueStatus{
	IssueGenerating: {IssuePending, IssueRetrying},
	IssueReady:      {IssueGenerating, IssueScheduled},
	IssuePublished:  {IssueReady, IssueScheduled, IssueGenerating},
	IssueScheduled:  {IssueReady},
	IssueRetrying:   {IssueError},
	IssueError:      {IssueGenerating},
}

// ParseIssueStatus converts a string into a known IssueStatus.
func ParseIssueStatus(value string) (IssueStatus, bool) {
	normalized := IssueStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, s := range allIssueStatuses {
		if s == normalized {
			return s, true
		}
	}
	return "", false
}

// AllIssueStatuses returns the ordered list of known statuses.
func AllIssueStatuses() []IssueStatus {
	cp := make([]IssueStatus, len(allIssueStatuses))
	copy(cp, allIssueStatuses)
	return cp
}

// TransitionsInto returns the statuses from which `to` may legally be reached.
// The result feeds the store's guarded UPDATE, so the check and the write
// happen in one statement.
func TransitionsInto(to IssueStatus) []IssueStatus {
	if to == IssueCanceled {
		var from []IssueStatus
		for _, s := range allIssueStatuses {
			if s != IssuePublished && s != IssueCanceled {
				from = append(from, s)
			}
		}
		return from
	}
	cp := make([]IssueStatus, len(issueTransitions[to]))
	copy(cp, issueTransitions[to])
	return cp
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to IssueStatus) bool {
	for _, s := range TransitionsInto(to) {
		if s == from {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status admits no further transitions.
func (s IssueStatus) IsTerminal() bool {
	return s == IssuePublished || s == IssueCanceled
}

// IsPublic reports whether issues in this status are served by the public API.
func (s IssueStatus) IsPublic() bool {
	return s == IssuePublished
}

// Issue is one generated edition of a magazine for a period. The slug is the
// period identifier (e.g. "2026-09"); UNIQUE(magazine_id, slug) in the schema
// makes generation idempotent per period.
type Issue struct {
	ID           uuid.UUID   `json:"id"`
	MagazineID   uuid.UUID   `json:"magazine_id"`
	Slug         string      `json:"slug"`
	Status       IssueStatus `json:"status"`
	CoverURL     *string     `json:"cover_url,omitempty"`
	Sprites      []string    `json:"sprites,omitempty"`
	ScheduledAt  *time.Time  `json:"scheduled_at,omitempty"`
	PublishedAt  *time.Time  `json:"published_at,omitempty"`
	ErrorMessage *string     `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// PublishableFrom returns the statuses an editor-driven publish may start
// from. The generating -> published edge in the transition table is reserved
// for the worker's auto-approve save, which commits the draft in the same
// transaction; an interactive publish during generation must fail.
func PublishableFrom() []IssueStatus {
	return []IssueStatus{IssueReady, IssueScheduled}
}

// Publishable reports whether the issue may be published right now.
func (i *Issue) Publishable() bool {
	for _, s := range PublishableFrom() {
		if s == i.Status {
			return true
		}
	}
	return false
}
