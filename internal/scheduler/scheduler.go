// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

// Package scheduler drives time-based publishing: on every tick it creates
// pending issues for blueprints whose cadence period has no issue yet and
// flips scheduled issues whose publish time has passed to published. All
// generation goes through the job queue; the scheduler itself never calls
// the pipeline.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"magazinify/internal/cache"
	"magazinify/internal/models"
	"magazinify/internal/store"
)

// Config wires the scheduler's dependencies.
type Config struct {
	Blueprints *store.BlueprintStore
	Magazines  *store.MagazineStore
	Tenants    *store.TenantStore
	Issues     *store.IssueStore
	Jobs       *store.JobStore
	Cache      *cache.PublishedCache // may be nil
	Logger     *slog.Logger
	Interval   time.Duration
}

// Scheduler ticks on a fixed interval.
type Scheduler struct {
	cfg Config
	log *slog.Logger

	stop chan struct{}
	done chan struct{}
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Scheduler{
		cfg:  cfg,
		log:  cfg.Logger,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start launches the tick loop in a goroutine. The first tick runs
// immediately so a restart never waits a full interval to catch up.
func (s *Scheduler) Start() {
	go func() {
		defer close(s.done)
		s.tickLogged()

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.tickLogged()
			}
		}
	}()
}

// Stop halts the tick loop and waits for it to exit.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) tickLogged() {
	generated, published, err := s.Tick(context.Background(), time.Now())
	if err != nil {
		s.log.Error("scheduler tick failed", "error", err)
	}
	if generated > 0 || published > 0 {
		s.log.Info("scheduler tick", "issues_enqueued", generated, "issues_published", published)
	}
}

// Tick performs one scheduling pass and reports how many issues were
// enqueued for generation and how many scheduled issues were published.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (generated, published int, err error) {
	generated, genErr := s.enqueueDue(now)
	published, pubErr := s.publishDue(ctx, now)
	return generated, published, errors.Join(genErr, pubErr)
}

// enqueueDue creates pending issues and generation jobs for blueprints on
// an automatic cadence that have no issue for the current period.
func (s *Scheduler) enqueueDue(now time.Time) (int, error) {
	due, err := s.cfg.Blueprints.DueForGeneration(now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, bp := range due {
		mag, err := s.cfg.Magazines.FindByID(bp.MagazineID)
		if err != nil || mag == nil {
			s.log.Warn("due blueprint has no magazine", "magazine", bp.MagazineID, "error", err)
			continue
		}
		tenant, err := s.cfg.Tenants.FindByID(mag.TenantID)
		if err != nil || tenant == nil {
			s.log.Warn("due blueprint has no tenant", "magazine", mag.Slug, "error", err)
			continue
		}
		if !tenant.CanGenerate() {
			s.log.Info("skipping cadence for unbilled tenant",
				"tenant", tenant.Slug, "magazine", mag.Slug, "billing", tenant.BillingStatus)
			continue
		}

		issue, err := s.cfg.Issues.Create(mag.ID, bp.PeriodSlug(now))
		if err != nil {
			if errors.Is(err, store.ErrDuplicateIssue) {
				// Another instance won the race for this period.
				continue
			}
			s.log.Error("cadence issue create failed", "magazine", mag.Slug, "error", err)
			continue
		}

		payload, err := json.Marshal(models.GeneratePayload{
			TenantID: tenant.ID, MagazineID: mag.ID, IssueID: issue.ID,
		})
		if err != nil {
			return count, fmt.Errorf("marshal generate payload: %w", err)
		}
		if _, err := s.cfg.Jobs.Enqueue(models.JobGenerateIssue, issue.ID, payload); err != nil {
			s.log.Error("cadence job enqueue failed", "issue", issue.ID, "error", err)
			continue
		}
		count++
	}
	return count, nil
}

// publishDue publishes scheduled issues whose time has come.
func (s *Scheduler) publishDue(ctx context.Context, now time.Time) (int, error) {
	dueIssues, err := s.cfg.Issues.ListScheduledDue(now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, issue := range dueIssues {
		if _, err := s.cfg.Issues.Publish(issue.ID); err != nil {
			if errors.Is(err, store.ErrIllegalTransition) {
				continue
			}
			s.log.Error("scheduled publish failed", "issue", issue.ID, "error", err)
			continue
		}
		count++

		if s.cfg.Cache != nil {
			mag, merr := s.cfg.Magazines.FindByID(issue.MagazineID)
			if merr != nil || mag == nil {
				continue
			}
			tenant, terr := s.cfg.Tenants.FindByID(mag.TenantID)
			if terr != nil || tenant == nil {
				continue
			}
			s.cfg.Cache.InvalidateMagazine(ctx, tenant.Slug, mag.Slug)
		}
	}
	return count, nil
}
