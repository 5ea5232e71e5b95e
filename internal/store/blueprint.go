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

// BlueprintStore handles all blueprint database operations. A magazine has
// at most one blueprint, so writes are upserts keyed on magazine_id.
type BlueprintStore struct {
	db *sql.DB
}

// NewBlueprintStore creates a new BlueprintStore with the given database connection.
func NewBlueprintStore(db *sql.DB) *BlueprintStore {
	return &BlueprintStore{db: db}
}

const blueprintColumns = `id, magazine_id, pages, sections, ad_slot_keys, tone, reading_level,
	topics, geo, keywords, sources, cadence, approval_mode, updated_by, created_at, updated_at`

func scanBlueprint(scanner interface{ Scan(...any) error }) (*models.Blueprint, error) {
	var b models.Blueprint
	var sections, adSlotKeys, topics, keywords, sources []byte
	err := scanner.Scan(
		&b.ID, &b.MagazineID, &b.Pages, &sections, &adSlotKeys,
		&b.Tone, &b.ReadingLevel, &topics, &b.Geo, &keywords, &sources,
		&b.Cadence, &b.ApprovalMode, &b.UpdatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		raw []byte
		dst *[]string
	}{
		{sections, &b.Sections},
		{adSlotKeys, &b.AdSlotKeys},
		{topics, &b.Topics},
		{keywords, &b.Keywords},
		{sources, &b.Sources},
	} {
		if err := jsonScan(pair.raw, pair.dst); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

// Upsert creates or replaces the blueprint for a magazine.
func (s *BlueprintStore) Upsert(b *models.Blueprint) (*models.Blueprint, error) {
	sections, err := jsonValue(b.Sections)
	if err != nil {
		return nil, err
	}
	adSlotKeys, err := jsonValue(b.AdSlotKeys)
	if err != nil {
		return nil, err
	}
	topics, err := jsonValue(b.Topics)
	if err != nil {
		return nil, err
	}
	keywords, err := jsonValue(b.Keywords)
	if err != nil {
		return nil, err
	}
	sources, err := jsonValue(b.Sources)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`
		INSERT INTO blueprints (magazine_id, pages, sections, ad_slot_keys, tone, reading_level,
			topics, geo, keywords, sources, cadence, approval_mode, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (magazine_id) DO UPDATE SET
			pages = EXCLUDED.pages,
			sections = EXCLUDED.sections,
			ad_slot_keys = EXCLUDED.ad_slot_keys,
			tone = EXCLUDED.tone,
			reading_level = EXCLUDED.reading_level,
			topics = EXCLUDED.topics,
			geo = EXCLUDED.geo,
			keywords = EXCLUDED.keywords,
			sources = EXCLUDED.sources,
			cadence = EXCLUDED.cadence,
			approval_mode = EXCLUDED.approval_mode,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING `+blueprintColumns,
		b.MagazineID, b.Pages, sections, adSlotKeys, b.Tone, b.ReadingLevel,
		topics, b.Geo, keywords, sources, b.Cadence, b.ApprovalMode, b.UpdatedBy,
	)
	saved, err := scanBlueprint(row)
	if err != nil {
		return nil, fmt.Errorf("upsert blueprint: %w", err)
	}
	return saved, nil
}

// FindByMagazine retrieves a magazine's blueprint. Returns nil if the
// magazine has no blueprint yet.
func (s *BlueprintStore) FindByMagazine(magazineID uuid.UUID) (*models.Blueprint, error) {
	row := s.db.QueryRow(`SELECT `+blueprintColumns+` FROM blueprints WHERE magazine_id = $1`, magazineID)
	b, err := scanBlueprint(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find blueprint: %w", err)
	}
	return b, nil
}

// DueForGeneration lists blueprints on an automatic cadence whose magazine
// has no issue yet for the period containing now. The scheduler calls this
// on every tick.
func (s *BlueprintStore) DueForGeneration(now time.Time) ([]models.Blueprint, error) {
	rows, err := s.db.Query(`
		SELECT ` + blueprintColumns + `
		FROM blueprints
		WHERE cadence IN ('monthly', 'weekly')
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list due blueprints: %w", err)
	}
	defer rows.Close()

	var due []models.Blueprint
	for rows.Next() {
		b, err := scanBlueprint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blueprint: %w", err)
		}
		due = append(due, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Filter out blueprints that already have an issue for this period.
	var pending []models.Blueprint
	for _, b := range due {
		var exists bool
		err := s.db.QueryRow(`
			SELECT EXISTS (SELECT 1 FROM issues WHERE magazine_id = $1 AND slug = $2)
		`, b.MagazineID, b.PeriodSlug(now)).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check period issue: %w", err)
		}
		if !exists {
			pending = append(pending, b)
		}
	}
	return pending, nil
}
