package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: one user, one
// demo tenant with an owner membership, one magazine, and its blueprint.
// No-op when any users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING id
	`, "admin@magazinify.local", string(hash), "Admin").Scan(&userID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	var tenantID string
	err = db.QueryRow(`
		INSERT INTO tenants (name, slug, plan, billing_status, max_pages, max_magazines)
		VALUES ('Demo Coffee Co', 'demo-coffee', 'starter', 'trialing', 16, 1)
		RETURNING id
	`).Scan(&tenantID)
	if err != nil {
		return fmt.Errorf("seed insert tenant: %w", err)
	}

	if _, err := db.Exec(`
		INSERT INTO tenant_memberships (user_id, tenant_id, role)
		VALUES ($1, $2, 'owner')
	`, userID, tenantID); err != nil {
		return fmt.Errorf("seed insert membership: %w", err)
	}

	var magazineID string
	err = db.QueryRow(`
		INSERT INTO magazines (tenant_id, title, slug, theme, tagline)
		VALUES ($1, 'The Daily Grind', 'daily-grind', 'classic', 'Coffee culture, monthly')
		RETURNING id
	`, tenantID).Scan(&magazineID)
	if err != nil {
		return fmt.Errorf("seed insert magazine: %w", err)
	}

	if _, err := db.Exec(`
		INSERT INTO blueprints (magazine_id, pages, sections, ad_slot_keys, tone, topics, cadence, approval_mode, updated_by)
		VALUES ($1, 12,
			'["Letter from the Editor","Industry News","Feature","Local Spotlight","Recipes"]',
			'["p4","p9"]',
			'warm', '["specialty coffee","cafe culture","roasting"]',
			'monthly', 'manual', $2)
	`, magazineID, userID); err != nil {
		return fmt.Errorf("seed insert blueprint: %w", err)
	}

	slog.Info("database seeded with demo tenant",
		"email", "admin@magazinify.local",
		"password", "admin",
		"tenant", "demo-coffee",
	)

	return nil
}
