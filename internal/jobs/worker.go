// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

// Package jobs runs the persisted background job queue. Issue generation
// and article regeneration are enqueued as rows in the jobs table and
// claimed by the worker with FOR UPDATE SKIP LOCKED, so work survives
// restarts, failures are recorded with attempts, and an admin cancel can
// abort an in-flight LLM call through the job's context.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"magazinify/internal/cache"
	"magazinify/internal/models"
	"magazinify/internal/pipeline"
	"magazinify/internal/store"
)

// heartbeatInterval is how often a running job refreshes its liveness
// timestamp.
const heartbeatInterval = 30 * time.Second

// Config wires the worker's dependencies.
type Config struct {
	Jobs       *store.JobStore
	Issues     *store.IssueStore
	Magazines  *store.MagazineStore
	Blueprints *store.BlueprintStore
	Tenants    *store.TenantStore
	Articles   *store.ArticleStore
	Generator  *pipeline.Generator
	Cache      *cache.PublishedCache // may be nil
	Logger     *slog.Logger
	Poll       time.Duration
}

// Worker polls the jobs table and executes claimed jobs one at a time.
type Worker struct {
	cfg Config
	log *slog.Logger

	mu      sync.Mutex
	running map[uuid.UUID]context.CancelFunc

	stop chan struct{}
	done chan struct{}
}

// New creates a Worker.
func New(cfg Config) *Worker {
	if cfg.Poll <= 0 {
		cfg.Poll = 2 * time.Second
	}
	return &Worker{
		cfg:     cfg,
		log:     cfg.Logger,
		running: make(map[uuid.UUID]context.CancelFunc),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the poll loop in a goroutine.
func (w *Worker) Start() {
	go w.loop()
}

// Stop asks the loop to finish the current job and exit. It blocks until
// the loop has drained or the context expires.
func (w *Worker) Stop(ctx context.Context) error {
	close(w.stop)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker drain: %w", ctx.Err())
	}
}

// Cancel aborts an in-flight job's context. Reports whether the job was
// running in this process. The caller is responsible for the job row and
// the issue status; this only interrupts the work.
func (w *Worker) Cancel(jobID uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	cancel, ok := w.running[jobID]
	if ok {
		cancel()
	}
	return ok
}

func (w *Worker) loop() {
	defer close(w.done)
	ticker := time.NewTicker(w.cfg.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.drain()
		}
	}
}

// drain claims and runs jobs until the queue is empty or a stop is requested.
func (w *Worker) drain() {
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		job, err := w.cfg.Jobs.ClaimNext()
		if err != nil {
			w.log.Error("job claim failed", "error", err)
			return
		}
		if job == nil {
			return
		}
		w.run(job)
	}
}

func (w *Worker) run(job *models.Job) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w.mu.Lock()
	w.running[job.ID] = cancel
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		delete(w.running, job.ID)
		w.mu.Unlock()
	}()

	stopHeartbeat := w.heartbeat(ctx, job.ID)
	defer stopHeartbeat()

	w.log.Info("job started", "job", job.ID, "type", job.Type, "attempt", job.Attempts)

	var err error
	switch job.Type {
	case models.JobGenerateIssue:
		err = w.generateIssue(ctx, job)
	case models.JobRegenerateArticle:
		err = w.regenerateArticle(ctx, job)
	default:
		err = fmt.Errorf("unknown job type %q", job.Type)
	}

	switch {
	case err == nil:
		if merr := w.cfg.Jobs.MarkSucceeded(job.ID); merr != nil {
			w.log.Error("job bookkeeping failed", "job", job.ID, "error", merr)
		}
		w.log.Info("job succeeded", "job", job.ID, "type", job.Type)
	case errors.Is(err, context.Canceled):
		// Cancellation is driven by the API, which already settled the
		// issue and job rows; make sure the job cannot be re-claimed.
		w.cfg.Jobs.Cancel(job.ID)
		w.log.Info("job canceled", "job", job.ID, "type", job.Type)
	default:
		status, merr := w.cfg.Jobs.MarkFailed(job.ID, err.Error())
		if merr != nil {
			w.log.Error("job bookkeeping failed", "job", job.ID, "error", merr)
		}
		w.log.Warn("job failed", "job", job.ID, "type", job.Type, "final", status == models.JobFailed, "error", err)
		if status == models.JobQueued && job.Type == models.JobGenerateIssue {
			// Another attempt is coming: park the issue in retrying so the
			// next claim can move it back to generating.
			if _, terr := w.cfg.Issues.Transition(job.IssueID, models.IssueRetrying); terr != nil {
				w.log.Error("issue retry transition failed", "issue", job.IssueID, "error", terr)
			}
		}
	}
}

// heartbeat keeps the job's liveness timestamp fresh while it runs.
func (w *Worker) heartbeat(ctx context.Context, jobID uuid.UUID) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.cfg.Jobs.Heartbeat(jobID); err != nil {
					w.log.Warn("job heartbeat failed", "job", jobID, "error", err)
				}
			}
		}
	}()
	return func() { close(done) }
}

// generateIssue runs the full pipeline for one issue and persists the draft
// atomically. The issue ends in ready (manual approval), published (auto),
// or error.
func (w *Worker) generateIssue(ctx context.Context, job *models.Job) error {
	var payload models.GeneratePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("decode generate payload: %w", err)
	}

	issue, err := w.cfg.Issues.FindByID(payload.IssueID)
	if err != nil {
		return err
	}
	if issue == nil {
		return fmt.Errorf("issue %s no longer exists", payload.IssueID)
	}

	mag, err := w.cfg.Magazines.FindByID(payload.MagazineID)
	if err != nil {
		return err
	}
	bp, err := w.cfg.Blueprints.FindByMagazine(payload.MagazineID)
	if err != nil {
		return err
	}
	tenant, err := w.cfg.Tenants.FindByID(payload.TenantID)
	if err != nil {
		return err
	}
	if mag == nil || bp == nil || tenant == nil {
		return fmt.Errorf("issue %s lost its magazine, blueprint, or tenant", issue.ID)
	}
	if _, err := w.cfg.Issues.Transition(issue.ID, models.IssueGenerating); err != nil {
		if errors.Is(err, store.ErrIllegalTransition) {
			// Canceled (or otherwise settled) before we got to it.
			return context.Canceled
		}
		return err
	}

	// Billing may have lapsed between enqueue and claim.
	if !tenant.CanGenerate() {
		w.failIssue(issue.ID, "tenant billing is not active")
		return fmt.Errorf("tenant %s cannot generate (billing %s)", tenant.Slug, tenant.BillingStatus)
	}

	draft, err := w.cfg.Generator.Run(ctx, mag, bp, issue.ID, issue.Slug)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		w.failIssue(issue.ID, err.Error())
		return err
	}

	finalStatus := models.IssueReady
	if bp.ApprovalMode == models.ApprovalAuto {
		finalStatus = models.IssuePublished
	}

	saved, err := w.cfg.Issues.SaveGenerated(issue.ID, draft.CoverURL, draft.Sprites, draft.Articles, draft.AdSlots, finalStatus)
	if err != nil {
		if errors.Is(err, store.ErrIllegalTransition) {
			return context.Canceled
		}
		w.failIssue(issue.ID, err.Error())
		return err
	}

	if saved.Status == models.IssuePublished {
		w.invalidate(ctx, tenant.Slug, mag.Slug)
	}
	return nil
}

// regenerateArticle rewrites a single article in place.
func (w *Worker) regenerateArticle(ctx context.Context, job *models.Job) error {
	var payload models.RegeneratePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("decode regenerate payload: %w", err)
	}

	article, err := w.cfg.Articles.FindByID(payload.ArticleID)
	if err != nil {
		return err
	}
	if article == nil {
		return fmt.Errorf("article %s no longer exists", payload.ArticleID)
	}
	issue, err := w.cfg.Issues.FindByID(article.IssueID)
	if err != nil {
		return err
	}
	if issue == nil {
		return fmt.Errorf("issue %s no longer exists", article.IssueID)
	}
	mag, err := w.cfg.Magazines.FindByID(issue.MagazineID)
	if err != nil {
		return err
	}
	bp, err := w.cfg.Blueprints.FindByMagazine(issue.MagazineID)
	if err != nil {
		return err
	}
	if mag == nil || bp == nil {
		return fmt.Errorf("article %s lost its magazine or blueprint", article.ID)
	}

	rewritten, err := w.cfg.Generator.RegenerateArticle(ctx, mag, bp, article, payload.Guidance)
	if err != nil {
		return err
	}

	err = w.cfg.Articles.ReplaceContent(article.ID, rewritten.Title, rewritten.HTML,
		rewritten.MarkdownSource, rewritten.Tags, rewritten.WordCount,
		rewritten.ReadingMinutes, rewritten.Quality)
	if err != nil {
		return err
	}

	if issue.Status == models.IssuePublished {
		tenant, terr := w.cfg.Tenants.FindByID(payload.TenantID)
		if terr == nil && tenant != nil {
			w.invalidate(ctx, tenant.Slug, mag.Slug)
		}
	}
	return nil
}

func (w *Worker) failIssue(issueID uuid.UUID, message string) {
	if _, err := w.cfg.Issues.MarkError(issueID, message); err != nil {
		w.log.Error("issue error transition failed", "issue", issueID, "error", err)
	}
}

func (w *Worker) invalidate(ctx context.Context, tenantSlug, magazineSlug string) {
	if w.cfg.Cache == nil {
		return
	}
	w.cfg.Cache.InvalidateMagazine(ctx, tenantSlug, magazineSlug)
}
