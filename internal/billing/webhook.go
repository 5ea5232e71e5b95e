// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package billing

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"magazinify/internal/models"
	"magazinify/internal/store"
)

// maxPayloadBytes caps the webhook body size.
const maxPayloadBytes = 64 * 1024

// Webhook processes Stripe events for tenant billing.
type Webhook struct {
	secret  string
	tenants *store.TenantStore
	log     *slog.Logger
}

// NewWebhook creates a webhook processor.
func NewWebhook(secret string, tenants *store.TenantStore, log *slog.Logger) *Webhook {
	return &Webhook{secret: secret, tenants: tenants, log: log}
}

// event is the subset of the Stripe event envelope we consume.
type event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// subscription is the subset of a Stripe subscription object we consume.
// The plan rides on the price lookup key, which we configure in Stripe to
// match our plan names.
type subscription struct {
	Customer string `json:"customer"`
	Status   string `json:"status"`
	Items    struct {
		Data []struct {
			Price struct {
				LookupKey string `json:"lookup_key"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// invoice is the subset of a Stripe invoice object we consume.
type invoice struct {
	Customer string `json:"customer"`
}

// checkoutSession is the subset of a Stripe checkout session we consume.
// ClientReferenceID carries our tenant ID through checkout.
type checkoutSession struct {
	Customer          string `json:"customer"`
	ClientReferenceID string `json:"client_reference_id"`
}

// Handler returns the HTTP handler for the webhook endpoint. Signature
// failures get 400; processing failures get 500 so Stripe retries.
// Unhandled event types are acknowledged with 200.
func (w *Webhook) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
		if err != nil {
			http.Error(rw, "read error", http.StatusBadRequest)
			return
		}

		if err := VerifySignature(payload, r.Header.Get("Stripe-Signature"), w.secret, time.Now()); err != nil {
			w.log.Warn("webhook signature rejected", "error", err)
			http.Error(rw, "invalid signature", http.StatusBadRequest)
			return
		}

		if err := w.Process(payload); err != nil {
			w.log.Error("webhook processing failed", "error", err)
			http.Error(rw, "processing failed", http.StatusInternalServerError)
			return
		}
		rw.WriteHeader(http.StatusOK)
	}
}

// Process applies a verified event to tenant state.
func (w *Webhook) Process(payload []byte) error {
	var ev event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	switch ev.Type {
	case "checkout.session.completed":
		return w.linkCustomer(ev.Data.Object)
	case "customer.subscription.created", "customer.subscription.updated":
		return w.syncSubscription(ev.Data.Object)
	case "customer.subscription.deleted":
		return w.setStatusByCustomerObject(ev.Data.Object, models.BillingCanceled)
	case "invoice.payment_failed":
		return w.setInvoiceStatus(ev.Data.Object, models.BillingPastDue)
	case "invoice.paid":
		return w.setInvoiceStatus(ev.Data.Object, models.BillingActive)
	default:
		w.log.Debug("ignoring webhook event", "type", ev.Type)
		return nil
	}
}

// linkCustomer attaches the Stripe customer ID to the tenant that started
// checkout.
func (w *Webhook) linkCustomer(raw json.RawMessage) error {
	var cs checkoutSession
	if err := json.Unmarshal(raw, &cs); err != nil {
		return fmt.Errorf("decode checkout session: %w", err)
	}
	if cs.Customer == "" || cs.ClientReferenceID == "" {
		return nil
	}

	tenantID, err := uuid.Parse(cs.ClientReferenceID)
	if err != nil {
		w.log.Warn("checkout session with bad tenant reference", "ref", cs.ClientReferenceID)
		return nil
	}
	if err := w.tenants.SetStripeCustomer(tenantID, cs.Customer); err != nil {
		return fmt.Errorf("link stripe customer: %w", err)
	}
	w.log.Info("linked stripe customer", "tenant", tenantID, "customer", cs.Customer)
	return nil
}

// syncSubscription maps the subscription status and plan onto the tenant.
func (w *Webhook) syncSubscription(raw json.RawMessage) error {
	var sub subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}

	tenant, err := w.tenants.FindByStripeCustomer(sub.Customer)
	if err != nil {
		return fmt.Errorf("find tenant by customer: %w", err)
	}
	if tenant == nil {
		// Customer not linked yet. Stripe will retry on 500, but an
		// unknown customer is permanent from our side, so acknowledge.
		w.log.Warn("subscription event for unknown customer", "customer", sub.Customer)
		return nil
	}

	status := mapSubscriptionStatus(sub.Status)
	if tenant.BillingStatus != status {
		if err := w.tenants.UpdateBillingStatus(tenant.ID, status); err != nil {
			return fmt.Errorf("update billing status: %w", err)
		}
		w.log.Info("billing status changed",
			"tenant", tenant.Slug, "from", tenant.BillingStatus, "to", status)
	}

	if plan, ok := mapPlan(sub); ok && plan != tenant.Plan {
		if err := w.tenants.UpdatePlan(tenant.ID, plan); err != nil {
			return fmt.Errorf("update plan: %w", err)
		}
		w.log.Info("plan changed", "tenant", tenant.Slug, "from", tenant.Plan, "to", plan)
	}
	return nil
}

func (w *Webhook) setStatusByCustomerObject(raw json.RawMessage, status models.BillingStatus) error {
	var sub subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}
	return w.setCustomerStatus(sub.Customer, status)
}

func (w *Webhook) setInvoiceStatus(raw json.RawMessage, status models.BillingStatus) error {
	var inv invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return fmt.Errorf("decode invoice: %w", err)
	}
	return w.setCustomerStatus(inv.Customer, status)
}

func (w *Webhook) setCustomerStatus(customer string, status models.BillingStatus) error {
	if customer == "" {
		return nil
	}
	tenant, err := w.tenants.FindByStripeCustomer(customer)
	if err != nil {
		return fmt.Errorf("find tenant by customer: %w", err)
	}
	if tenant == nil {
		w.log.Warn("billing event for unknown customer", "customer", customer)
		return nil
	}
	if tenant.BillingStatus == status {
		return nil
	}
	if err := w.tenants.UpdateBillingStatus(tenant.ID, status); err != nil {
		return fmt.Errorf("update billing status: %w", err)
	}
	w.log.Info("billing status changed",
		"tenant", tenant.Slug, "from", tenant.BillingStatus, "to", status)
	return nil
}

// mapSubscriptionStatus converts Stripe subscription states to ours.
func mapSubscriptionStatus(s string) models.BillingStatus {
	switch s {
	case "active":
		return models.BillingActive
	case "trialing":
		return models.BillingTrialing
	case "past_due", "unpaid", "incomplete":
		return models.BillingPastDue
	default:
		// canceled, incomplete_expired, paused
		return models.BillingCanceled
	}
}

// mapPlan reads the plan from the price lookup key of the first
// subscription item. Prices in Stripe use lookup keys matching our plan
// names.
func mapPlan(sub subscription) (models.Plan, bool) {
	if len(sub.Items.Data) == 0 {
		return "", false
	}
	switch sub.Items.Data[0].Price.LookupKey {
	case string(models.PlanStarter):
		return models.PlanStarter, true
	case string(models.PlanGrowth):
		return models.PlanGrowth, true
	case string(models.PlanAgency):
		return models.PlanAgency, true
	default:
		return "", false
	}
}
