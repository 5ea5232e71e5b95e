// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from IssueStatus
		to   IssueStatus
		want bool
	}{
		{"pending to generating", IssuePending, IssueGenerating, true},
		{"retrying to generating", IssueRetrying, IssueGenerating, true},
		{"ready to generating", IssueReady, IssueGenerating, false},
		{"generating to ready", IssueGenerating, IssueReady, true},
		{"scheduled to ready (unschedule)", IssueScheduled, IssueReady, true},
		{"pending to ready", IssuePending, IssueReady, false},
		{"ready to published", IssueReady, IssuePublished, true},
		{"scheduled to published", IssueScheduled, IssuePublished, true},
		{"generating to published (auto approve)", IssueGenerating, IssuePublished, true},
		{"pending to published", IssuePending, IssuePublished, false},
		{"error to published", IssueError, IssuePublished, false},
		{"ready to scheduled", IssueReady, IssueScheduled, true},
		{"published to scheduled", IssuePublished, IssueScheduled, false},
		{"error to retrying", IssueError, IssueRetrying, true},
		{"ready to retrying", IssueReady, IssueRetrying, false},
		{"generating to error", IssueGenerating, IssueError, true},
		{"pending to error", IssuePending, IssueError, false},
		{"pending to canceled", IssuePending, IssueCanceled, true},
		{"generating to canceled", IssueGenerating, IssueCanceled, true},
		{"error to canceled", IssueError, IssueCanceled, true},
		{"published to canceled", IssuePublished, IssueCanceled, false},
		{"canceled to canceled", IssueCanceled, IssueCanceled, false},
		{"canceled to retrying", IssueCanceled, IssueRetrying, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestParseIssueStatus(t *testing.T) {
	if s, ok := ParseIssueStatus("  Published "); !ok || s != IssuePublished {
		t.Errorf("ParseIssueStatus normalization failed: %q %v", s, ok)
	}
	if _, ok := ParseIssueStatus("draft"); ok {
		t.Error("ParseIssueStatus accepted unknown status 'draft'")
	}
	if _, ok := ParseIssueStatus(""); ok {
		t.Error("ParseIssueStatus accepted empty string")
	}
}

func TestPublishable(t *testing.T) {
	for _, tt := range []struct {
		status IssueStatus
		want   bool
	}{
		{IssueReady, true},
		{IssueScheduled, true},
		{IssueGenerating, false}, // auto-approve is worker-only, not API publish
		{IssuePending, false},
		{IssueError, false},
		{IssuePublished, false},
		{IssueCanceled, false},
	} {
		i := &Issue{Status: tt.status}
		if got := i.Publishable(); got != tt.want {
			t.Errorf("Publishable() with status %s = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range AllIssueStatuses() {
		wantTerminal := s == IssuePublished || s == IssueCanceled
		if s.IsTerminal() != wantTerminal {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, s.IsTerminal(), wantTerminal)
		}
	}
}
