// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan identifies the subscription tier a tenant is on.
type Plan string

const (
	PlanStarter Plan = "starter"
	PlanGrowth  Plan = "growth"
	PlanAgency  Plan = "agency"
)

// BillingStatus reflects the tenant's Stripe subscription state.
type BillingStatus string

const (
	BillingActive   BillingStatus = "active"
	BillingTrialing BillingStatus = "trialing"
	BillingPastDue  BillingStatus = "past_due"
	BillingCanceled BillingStatus = "canceled"
)

// Tenant is the top-level multi-tenancy boundary: one business customer
// account that owns magazines, users, and billing state.
type Tenant struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	Plan             Plan          `json:"plan"`
	BillingStatus    BillingStatus `json:"billing_status"`
	StripeCustomerID *string       `json:"-"`
	MaxPages         int           `json:"max_pages"`
	MaxMagazines     int           `json:"max_magazines"`
	CustomDomain     *string       `json:"custom_domain,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// CanGenerate reports whether the tenant's billing state permits issue
// generation and publishing. Past-due and canceled tenants keep read access
// to already-published issues but cannot produce new ones.
func (t *Tenant) CanGenerate() bool {
	return t.BillingStatus == BillingActive || t.BillingStatus == BillingTrialing
}

// PlanLimits returns the page and magazine caps for a plan. Used at signup
// and when a Stripe event moves a tenant between plans.
func PlanLimits(p Plan) (maxPages, maxMagazines int) {
	switch p {
	case PlanGrowth:
		return 32, 3
	case PlanAgency:
		return 64, 10
	default:
		return 16, 1
	}
}
