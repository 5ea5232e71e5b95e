// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the reader interactions the analytics API accepts.
type EventType string

const (
	EventView     EventType = "view"
	EventPageTurn EventType = "page_turn"
	EventCTAClick EventType = "cta_click"
	EventAdClick  EventType = "ad_click"
	EventShare    EventType = "share"
)

// ValidEventType reports whether a string names a known event type.
func ValidEventType(s string) bool {
	switch EventType(s) {
	case EventView, EventPageTurn, EventCTAClick, EventAdClick, EventShare:
		return true
	}
	return false
}

// AnalyticsEvent is an append-only record of a reader interaction with a
// published issue. Payload is a free-form bag (device, referrer, viewport)
// stored as JSON; the ingestion endpoint never rejects a well-formed event
// because a write failed.
type AnalyticsEvent struct {
	ID         int64             `json:"id"`
	TenantID   uuid.UUID         `json:"tenant_id"`
	MagazineID uuid.UUID         `json:"magazine_id"`
	IssueID    *uuid.UUID        `json:"issue_id,omitempty"`
	EventType  EventType         `json:"event_type"`
	Page       int               `json:"page"`
	Device     string            `json:"device"`
	IP         string            `json:"-"`
	Payload    map[string]string `json:"payload,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// AnalyticsSummary aggregates event counts for a magazine over a window.
type AnalyticsSummary struct {
	Views     int64 `json:"views"`
	PageTurns int64 `json:"page_turns"`
	CTAClicks int64 `json:"cta_clicks"`
	AdClicks  int64 `json:"ad_clicks"`
	Shares    int64 `json:"shares"`
}
