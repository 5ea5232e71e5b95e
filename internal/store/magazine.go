// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"magazinify/internal/models"
)

// MagazineStore handles all magazine database operations.
type MagazineStore struct {
	db *sql.DB
}

// NewMagazineStore creates a new MagazineStore with the given database connection.
func NewMagazineStore(db *sql.DB) *MagazineStore {
	return &MagazineStore{db: db}
}

const magazineColumns = `id, tenant_id, title, slug, theme, tagline, created_at, updated_at`

func scanMagazine(scanner interface{ Scan(...any) error }) (*models.Magazine, error) {
	var m models.Magazine
	err := scanner.Scan(
		&m.ID, &m.TenantID, &m.Title, &m.Slug, &m.Theme, &m.Tagline,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new magazine under a tenant.
func (s *MagazineStore) Create(tenantID uuid.UUID, title, slug, theme string) (*models.Magazine, error) {
	row := s.db.QueryRow(`
		INSERT INTO magazines (tenant_id, title, slug, theme)
		VALUES ($1, $2, $3, $4)
		RETURNING `+magazineColumns,
		tenantID, title, slug, theme,
	)
	m, err := scanMagazine(row)
	if err != nil {
		return nil, fmt.Errorf("create magazine: %w", err)
	}
	return m, nil
}

// FindBySlug retrieves a magazine by slug within a tenant. Returns nil if
// not found.
func (s *MagazineStore) FindBySlug(tenantID uuid.UUID, slug string) (*models.Magazine, error) {
	row := s.db.QueryRow(`
		SELECT `+magazineColumns+` FROM magazines WHERE tenant_id = $1 AND slug = $2
	`, tenantID, slug)
	m, err := scanMagazine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find magazine by slug: %w", err)
	}
	return m, nil
}

// FindByID retrieves a magazine by ID. Returns nil if not found.
func (s *MagazineStore) FindByID(id uuid.UUID) (*models.Magazine, error) {
	row := s.db.QueryRow(`SELECT `+magazineColumns+` FROM magazines WHERE id = $1`, id)
	m, err := scanMagazine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find magazine by id: %w", err)
	}
	return m, nil
}

// ListByTenant returns all magazines belonging to a tenant, newest first.
func (s *MagazineStore) ListByTenant(tenantID uuid.UUID) ([]models.Magazine, error) {
	rows, err := s.db.Query(`
		SELECT `+magazineColumns+` FROM magazines
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list magazines: %w", err)
	}
	defer rows.Close()

	var items []models.Magazine
	for rows.Next() {
		m, err := scanMagazine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan magazine: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// CountByTenant returns how many magazines a tenant has, used for plan
// limit enforcement.
func (s *MagazineStore) CountByTenant(tenantID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM magazines WHERE tenant_id = $1`, tenantID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count magazines: %w", err)
	}
	return n, nil
}

// Update changes a magazine's title, theme, and tagline.
func (s *MagazineStore) Update(id uuid.UUID, title, theme string, tagline *string) error {
	_, err := s.db.Exec(`
		UPDATE magazines SET title = $1, theme = $2, tagline = $3, updated_at = NOW() WHERE id = $4
	`, title, theme, tagline, id)
	if err != nil {
		return fmt.Errorf("update magazine: %w", err)
	}
	return nil
}
