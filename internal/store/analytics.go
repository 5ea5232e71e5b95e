// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"magazinify/internal/models"
)

// AnalyticsStore handles the append-only analytics event log and its
// aggregations.
type AnalyticsStore struct {
	db *sql.DB
}

// NewAnalyticsStore creates a new AnalyticsStore with the given database connection.
func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

// Insert appends one reader event. Callers treat failures as
// fire-and-forget; the ingestion endpoint logs and moves on.
func (s *AnalyticsStore) Insert(e *models.AnalyticsEvent) error {
	payload, err := jsonValue(e.Payload)
	if err != nil {
		return err
	}
	// nil maps marshal to null, which the JSONB default does not accept
	if e.Payload == nil {
		payload = []byte("{}")
	}
	_, err = s.db.Exec(`
		INSERT INTO analytics_events (tenant_id, magazine_id, issue_id, event_type, page, device, ip, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.TenantID, e.MagazineID, e.IssueID, e.EventType, e.Page, e.Device, e.IP, payload)
	if err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

// Summarize aggregates event counts for a magazine since a point in time.
func (s *AnalyticsStore) Summarize(magazineID uuid.UUID, since time.Time) (*models.AnalyticsSummary, error) {
	var sum models.AnalyticsSummary
	err := s.db.QueryRow(`
		SELECT
			COUNT(*) FILTER (WHERE event_type = 'view'),
			COUNT(*) FILTER (WHERE event_type = 'page_turn'),
			COUNT(*) FILTER (WHERE event_type = 'cta_click'),
			COUNT(*) FILTER (WHERE event_type = 'ad_click'),
			COUNT(*) FILTER (WHERE event_type = 'share')
		FROM analytics_events
		WHERE magazine_id = $1 AND created_at >= $2
	`, magazineID, since).Scan(&sum.Views, &sum.PageTurns, &sum.CTAClicks, &sum.AdClicks, &sum.Shares)
	if err != nil {
		return nil, fmt.Errorf("summarize analytics: %w", err)
	}
	return &sum, nil
}

// TopPages returns page-turn counts per page for a magazine since a point
// in time, most-read pages first.
func (s *AnalyticsStore) TopPages(magazineID uuid.UUID, since time.Time, limit int) (map[int]int64, error) {
	rows, err := s.db.Query(`
		SELECT page, COUNT(*)
		FROM analytics_events
		WHERE magazine_id = $1 AND event_type = 'page_turn' AND created_at >= $2
		GROUP BY page
		ORDER BY COUNT(*) DESC
		LIMIT $3
	`, magazineID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}
	defer rows.Close()

	pages := make(map[int]int64)
	for rows.Next() {
		var page int
		var count int64
		if err := rows.Scan(&page, &count); err != nil {
			return nil, fmt.Errorf("scan top page: %w", err)
		}
		pages[page] = count
	}
	return pages, rows.Err()
}
