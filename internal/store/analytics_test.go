// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"
	"time"

	"magazinify/internal/models"
)

func TestAnalyticsStoreInsertAndSummarize(t *testing.T) {
	db := testDB(t)
	tenant := testTenant(t, db, "analytics")
	mag := testMagazine(t, db, tenant, "analytics")
	s := NewAnalyticsStore(db)

	events := []models.EventType{
		models.EventView, models.EventView,
		models.EventPageTurn,
		models.EventAdClick,
	}
	for i, et := range events {
		err := s.Insert(&models.AnalyticsEvent{
			TenantID:   tenant.ID,
			MagazineID: mag.ID,
			EventType:  et,
			Page:       i,
			Device:     "mobile",
			Payload:    map[string]string{"referrer": "newsletter"},
		})
		if err != nil {
			t.Fatalf("Insert %s: %v", et, err)
		}
	}
	// Nil payload must not break the JSONB column.
	if err := s.Insert(&models.AnalyticsEvent{
		TenantID: tenant.ID, MagazineID: mag.ID, EventType: models.EventShare,
	}); err != nil {
		t.Fatalf("Insert nil payload: %v", err)
	}

	sum, err := s.Summarize(mag.ID, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Views != 2 || sum.PageTurns != 1 || sum.AdClicks != 1 || sum.Shares != 1 || sum.CTAClicks != 0 {
		t.Errorf("summary: %+v", sum)
	}

	// A window starting in the future sees nothing.
	empty, err := s.Summarize(mag.ID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Summarize future: %v", err)
	}
	if empty.Views != 0 {
		t.Errorf("expected empty summary, got %+v", empty)
	}
}

func TestAnalyticsStoreTopPages(t *testing.T) {
	db := testDB(t)
	tenant := testTenant(t, db, "analytics-pages")
	mag := testMagazine(t, db, tenant, "analytics-pages")
	s := NewAnalyticsStore(db)

	for _, page := range []int{3, 3, 3, 7, 7, 12} {
		if err := s.Insert(&models.AnalyticsEvent{
			TenantID: tenant.ID, MagazineID: mag.ID,
			EventType: models.EventPageTurn, Page: page,
		}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	pages, err := s.TopPages(mag.ID, time.Now().Add(-time.Hour), 2)
	if err != nil {
		t.Fatalf("TopPages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[3] != 3 || pages[7] != 2 {
		t.Errorf("pages: %v", pages)
	}
}
