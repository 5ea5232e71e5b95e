// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

// Package store contains the PostgreSQL data access layer. Each entity gets
// its own XxxStore wrapping *sql.DB; multi-entity writes that must be atomic
// (issue + articles + ad slots) run inside a single transaction on IssueStore.
package store

import (
	"encoding/json"
	"fmt"
)

// jsonValue marshals a Go value for storage in a JSONB column. A nil slice
// is stored as an empty JSON array rather than SQL NULL.
func jsonValue(v any) ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb: %w", err)
	}
	return data, nil
}

// jsonScan unmarshals a JSONB column into dst. NULL and empty inputs leave
// dst untouched.
func jsonScan(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal jsonb: %w", err)
	}
	return nil
}
