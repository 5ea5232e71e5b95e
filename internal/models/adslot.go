// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// AdSlot is a named sponsor placement within an issue. The slot key comes
// from the blueprint's ad_slot_keys list (e.g. "p4" for page four) and is
// unique within an issue.
type AdSlot struct {
	ID           uuid.UUID `json:"id"`
	IssueID      uuid.UUID `json:"issue_id"`
	SlotKey      string    `json:"slot_key"`
	CreativeURL  *string   `json:"creative_url,omitempty"`
	TargetURL    *string   `json:"target_url,omitempty"`
	Sponsor      *string   `json:"sponsor,omitempty"`
	TrackingCode *string   `json:"tracking_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
