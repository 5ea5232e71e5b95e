// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"testing"
	"time"
)

func TestPeriodSlug(t *testing.T) {
	sept := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)

	monthly := &Blueprint{Cadence: CadenceMonthly}
	if got := monthly.PeriodSlug(sept); got != "2026-09" {
		t.Errorf("monthly PeriodSlug = %q, want 2026-09", got)
	}

	weekly := &Blueprint{Cadence: CadenceWeekly}
	year, week := sept.ISOWeek()
	want := fmt.Sprintf("%04d-w%02d", year, week)
	if got := weekly.PeriodSlug(sept); got != want {
		t.Errorf("weekly PeriodSlug = %q, want %q", got, want)
	}

	manual := &Blueprint{Cadence: CadenceManual}
	if got := manual.PeriodSlug(sept); got != "2026-09" {
		t.Errorf("manual PeriodSlug = %q, want monthly form", got)
	}
}

func TestMembershipAllows(t *testing.T) {
	tests := []struct {
		role  Role
		check []Role
		want  bool
	}{
		{RoleOwner, []Role{RoleAdmin}, true},
		{RoleOwner, []Role{RoleEditor}, true},
		{RoleAdmin, []Role{RoleEditor}, true},
		{RoleAdmin, []Role{RoleOwner}, false},
		{RoleEditor, []Role{RoleAdmin}, false},
		{RoleEditor, []Role{RoleEditor}, true},
		{RoleViewer, []Role{RoleViewer}, true},
		{RoleViewer, []Role{RoleEditor}, false},
		{RoleEditor, []Role{RoleAdmin, RoleEditor}, true},
	}
	for _, tt := range tests {
		m := &TenantMembership{Role: tt.role}
		if got := m.Allows(tt.check...); got != tt.want {
			t.Errorf("Allows(%v) with role %s = %v, want %v", tt.check, tt.role, got, tt.want)
		}
	}
}

func TestReadingMinutesFor(t *testing.T) {
	for _, tt := range []struct{ words, want int }{
		{0, 0},
		{1, 1},
		{219, 1},
		{220, 1},
		{221, 2},
		{1100, 5},
	} {
		if got := ReadingMinutesFor(tt.words); got != tt.want {
			t.Errorf("ReadingMinutesFor(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}
}
