// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Cadence controls how often the scheduler produces a new issue.
type Cadence string

const (
	CadenceMonthly Cadence = "monthly"
	CadenceWeekly  Cadence = "weekly"
	CadenceManual  Cadence = "manual"
)

// ApprovalMode controls what happens when generation succeeds: auto-publish
// immediately, or park the issue in "ready" for an editor to review.
type ApprovalMode string

const (
	ApprovalAuto   ApprovalMode = "auto"
	ApprovalManual ApprovalMode = "manual"
)

// MinPages is the smallest page count a blueprint may request. A flipbook
// spread needs at least a cover, a TOC, and three content spreads.
const MinPages = 8

// Blueprint is the per-magazine configuration that drives generation:
// structure (pages, sections, ad slots), voice, niche, content sources,
// and publishing cadence. Exactly one blueprint exists per magazine and
// editors overwrite it in place.
type Blueprint struct {
	ID           uuid.UUID    `json:"id"`
	MagazineID   uuid.UUID    `json:"magazine_id"`
	Pages        int          `json:"pages"`
	Sections     []string     `json:"sections"`
	AdSlotKeys   []string     `json:"ad_slot_keys"`
	Tone         string       `json:"tone"`
	ReadingLevel string       `json:"reading_level"`
	Topics       []string     `json:"topics"`
	Geo          string       `json:"geo"`
	Keywords     []string     `json:"keywords"`
	Sources      []string     `json:"sources"`
	Cadence      Cadence      `json:"cadence"`
	ApprovalMode ApprovalMode `json:"approval_mode"`
	UpdatedBy    uuid.UUID    `json:"updated_by"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// PeriodSlug returns the issue slug for the period containing t, based on the
// blueprint cadence: "2026-09" for monthly, "2026-w36" for weekly. Manual
// blueprints use the monthly form, matching how editors think about editions.
func (b *Blueprint) PeriodSlug(t time.Time) string {
	t = t.UTC()
	if b.Cadence == CadenceWeekly {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-w%02d", year, week)
	}
	return t.Format("2006-01")
}
