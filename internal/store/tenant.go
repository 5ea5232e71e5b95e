// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"magazinify/internal/models"
)

// TenantStore handles all tenant database operations.
type TenantStore struct {
	db *sql.DB
}

// NewTenantStore creates a new TenantStore with the given database connection.
func NewTenantStore(db *sql.DB) *TenantStore {
	return &TenantStore{db: db}
}

const tenantColumns = `id, name, slug, plan, billing_status, stripe_customer_id,
	max_pages, max_magazines, custom_domain, created_at, updated_at`

func scanTenant(scanner interface{ Scan(...any) error }) (*models.Tenant, error) {
	var t models.Tenant
	err := scanner.Scan(
		&t.ID, &t.Name, &t.Slug, &t.Plan, &t.BillingStatus, &t.StripeCustomerID,
		&t.MaxPages, &t.MaxMagazines, &t.CustomDomain, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new tenant on the starter plan with a trialing billing
// status and caps derived from the plan.
func (s *TenantStore) Create(name, slug string) (*models.Tenant, error) {
	maxPages, maxMagazines := models.PlanLimits(models.PlanStarter)
	row := s.db.QueryRow(`
		INSERT INTO tenants (name, slug, plan, billing_status, max_pages, max_magazines)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+tenantColumns,
		name, slug, models.PlanStarter, models.BillingTrialing, maxPages, maxMagazines,
	)
	t, err := scanTenant(row)
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return t, nil
}

// FindBySlug retrieves a tenant by slug. Returns nil if not found.
func (s *TenantStore) FindBySlug(slug string) (*models.Tenant, error) {
	row := s.db.QueryRow(`SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tenant by slug: %w", err)
	}
	return t, nil
}

// FindByID retrieves a tenant by ID. Returns nil if not found.
func (s *TenantStore) FindByID(id uuid.UUID) (*models.Tenant, error) {
	row := s.db.QueryRow(`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tenant by id: %w", err)
	}
	return t, nil
}

// FindByStripeCustomer retrieves a tenant by its Stripe customer ID.
// Returns nil if not found.
func (s *TenantStore) FindByStripeCustomer(customerID string) (*models.Tenant, error) {
	row := s.db.QueryRow(`SELECT `+tenantColumns+` FROM tenants WHERE stripe_customer_id = $1`, customerID)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tenant by stripe customer: %w", err)
	}
	return t, nil
}

// SetStripeCustomer links a Stripe customer ID to a tenant.
func (s *TenantStore) SetStripeCustomer(id uuid.UUID, customerID string) error {
	_, err := s.db.Exec(`
		UPDATE tenants SET stripe_customer_id = $1, updated_at = NOW() WHERE id = $2
	`, customerID, id)
	if err != nil {
		return fmt.Errorf("set stripe customer: %w", err)
	}
	return nil
}

// UpdateBillingStatus records the billing state reported by the payment
// provider.
func (s *TenantStore) UpdateBillingStatus(id uuid.UUID, status models.BillingStatus) error {
	_, err := s.db.Exec(`
		UPDATE tenants SET billing_status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("update billing status: %w", err)
	}
	return nil
}

// UpdatePlan moves a tenant between plans and resets the caps accordingly.
func (s *TenantStore) UpdatePlan(id uuid.UUID, plan models.Plan) error {
	maxPages, maxMagazines := models.PlanLimits(plan)
	_, err := s.db.Exec(`
		UPDATE tenants SET plan = $1, max_pages = $2, max_magazines = $3, updated_at = NOW()
		WHERE id = $4
	`, plan, maxPages, maxMagazines, id)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return nil
}
