// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Magazine is one branding/identity unit owned by a tenant. A tenant may run
// several magazines (one per product line); each magazine has exactly one
// blueprint and any number of issues.
type Magazine struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Theme     string    `json:"theme"`
	Tagline   *string   `json:"tagline,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
