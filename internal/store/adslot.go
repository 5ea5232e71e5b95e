// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"magazinify/internal/models"
)

// AdSlotStore handles ad slot database operations. Slot rows are created
// empty during generation from the blueprint's slot keys; sponsors fill
// them in through the API afterwards.
type AdSlotStore struct {
	db *sql.DB
}

// NewAdSlotStore creates a new AdSlotStore with the given database connection.
func NewAdSlotStore(db *sql.DB) *AdSlotStore {
	return &AdSlotStore{db: db}
}

const adSlotColumns = `id, issue_id, slot_key, creative_url, target_url, sponsor, tracking_code, created_at, updated_at`

func scanAdSlot(scanner interface{ Scan(...any) error }) (*models.AdSlot, error) {
	var a models.AdSlot
	err := scanner.Scan(
		&a.ID, &a.IssueID, &a.SlotKey, &a.CreativeURL, &a.TargetURL,
		&a.Sponsor, &a.TrackingCode, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByIssue returns an issue's ad slots in key order.
func (s *AdSlotStore) ListByIssue(issueID uuid.UUID) ([]models.AdSlot, error) {
	rows, err := s.db.Query(`
		SELECT `+adSlotColumns+` FROM ad_slots
		WHERE issue_id = $1
		ORDER BY slot_key
	`, issueID)
	if err != nil {
		return nil, fmt.Errorf("list ad slots: %w", err)
	}
	defer rows.Close()

	var items []models.AdSlot
	for rows.Next() {
		a, err := scanAdSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ad slot: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// Fill sets the creative for a slot, keyed by issue and slot key. Returns
// nil, nil when the slot key does not exist in the issue.
func (s *AdSlotStore) Fill(issueID uuid.UUID, slotKey string, creativeURL, targetURL, sponsor, trackingCode *string) (*models.AdSlot, error) {
	row := s.db.QueryRow(`
		UPDATE ad_slots SET creative_url = $1, target_url = $2, sponsor = $3,
			tracking_code = $4, updated_at = NOW()
		WHERE issue_id = $5 AND slot_key = $6
		RETURNING `+adSlotColumns,
		creativeURL, targetURL, sponsor, trackingCode, issueID, slotKey,
	)
	a, err := scanAdSlot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fill ad slot: %w", err)
	}
	return a, nil
}

// Clear empties a slot's creative without deleting the slot row.
func (s *AdSlotStore) Clear(issueID uuid.UUID, slotKey string) error {
	_, err := s.db.Exec(`
		UPDATE ad_slots SET creative_url = NULL, target_url = NULL, sponsor = NULL,
			tracking_code = NULL, updated_at = NOW()
		WHERE issue_id = $1 AND slot_key = $2
	`, issueID, slotKey)
	if err != nil {
		return fmt.Errorf("clear ad slot: %w", err)
	}
	return nil
}
