// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"magazinify/internal/models"
)

// ErrDuplicateIssue is returned when an issue already exists for the
// magazine and period. Generation is idempotent per period.
var ErrDuplicateIssue = errors.New("issue already exists for this period")

// ErrIllegalTransition is returned when a guarded status update matched no
// row, meaning the issue was not in any status the transition allows.
var ErrIllegalTransition = errors.New("issue is not in a status that allows this transition")

// IssueStore handles all issue database operations. Status changes go
// through guarded updates built from the transition table in models, so the
// legality check and the write happen in one statement.
type IssueStore struct {
	db *sql.DB
}

// NewIssueStore creates a new IssueStore with the given database connection.
func NewIssueStore(db *sql.DB) *IssueStore {
	return &IssueStore{db: db}
}

const issueColumns = `id, magazine_id, slug, status, cover_url, sprites,
	scheduled_at, published_at, error_message, created_at, updated_at`

func scanIssue(scanner interface{ Scan(...any) error }) (*models.Issue, error) {
	var i models.Issue
	var sprites []byte
	err := scanner.Scan(
		&i.ID, &i.MagazineID, &i.Slug, &i.Status, &i.CoverURL, &sprites,
		&i.ScheduledAt, &i.PublishedAt, &i.ErrorMessage, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := jsonScan(sprites, &i.Sprites); err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserts a pending issue for a magazine and period. Returns
// ErrDuplicateIssue when an issue for the period already exists; the unique
// constraint is what makes concurrent generate requests safe.
func (s *IssueStore) Create(magazineID uuid.UUID, slug string) (*models.Issue, error) {
	row := s.db.QueryRow(`
		INSERT INTO issues (magazine_id, slug, status)
		VALUES ($1, $2, $3)
		RETURNING `+issueColumns,
		magazineID, slug, models.IssuePending,
	)
	i, err := scanIssue(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateIssue
		}
		return nil, fmt.Errorf("create issue: %w", err)
	}
	return i, nil
}

// FindByID retrieves an issue by ID. Returns nil if not found.
func (s *IssueStore) FindByID(id uuid.UUID) (*models.Issue, error) {
	row := s.db.QueryRow(`SELECT `+issueColumns+` FROM issues WHERE id = $1`, id)
	i, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find issue by id: %w", err)
	}
	return i, nil
}

// FindBySlug retrieves an issue by its period slug within a magazine.
// Returns nil if not found.
func (s *IssueStore) FindBySlug(magazineID uuid.UUID, slug string) (*models.Issue, error) {
	row := s.db.QueryRow(`
		SELECT `+issueColumns+` FROM issues WHERE magazine_id = $1 AND slug = $2
	`, magazineID, slug)
	i, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find issue by slug: %w", err)
	}
	return i, nil
}

// ListByMagazine returns all issues of a magazine, newest period first.
func (s *IssueStore) ListByMagazine(magazineID uuid.UUID) ([]models.Issue, error) {
	rows, err := s.db.Query(`
		SELECT `+issueColumns+` FROM issues
		WHERE magazine_id = $1
		ORDER BY slug DESC
	`, magazineID)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()
	return collectIssues(rows)
}

// ListPublished returns the published issues of a magazine, newest first.
// This is the public archive.
func (s *IssueStore) ListPublished(magazineID uuid.UUID) ([]models.Issue, error) {
	rows, err := s.db.Query(`
		SELECT `+issueColumns+` FROM issues
		WHERE magazine_id = $1 AND status = $2
		ORDER BY published_at DESC
	`, magazineID, models.IssuePublished)
	if err != nil {
		return nil, fmt.Errorf("list published issues: %w", err)
	}
	defer rows.Close()
	return collectIssues(rows)
}

// LatestPublished returns the most recently published issue of a magazine.
// Returns nil when nothing has been published yet.
func (s *IssueStore) LatestPublished(magazineID uuid.UUID) (*models.Issue, error) {
	row := s.db.QueryRow(`
		SELECT `+issueColumns+` FROM issues
		WHERE magazine_id = $1 AND status = $2
		ORDER BY published_at DESC
		LIMIT 1
	`, magazineID, models.IssuePublished)
	i, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest published issue: %w", err)
	}
	return i, nil
}

// ListScheduledDue returns scheduled issues whose publish time has passed.
func (s *IssueStore) ListScheduledDue(now time.Time) ([]models.Issue, error) {
	rows, err := s.db.Query(`
		SELECT `+issueColumns+` FROM issues
		WHERE status = $1 AND scheduled_at <= $2
		ORDER BY scheduled_at
	`, models.IssueScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("list due scheduled issues: %w", err)
	}
	defer rows.Close()
	return collectIssues(rows)
}

func collectIssues(rows *sql.Rows) ([]models.Issue, error) {
	var items []models.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		items = append(items, *i)
	}
	return items, rows.Err()
}

// statusGuard builds the "status IN (...)" clause and args for the statuses
// that may legally precede a transition. Placeholders start at firstParam.
func statusGuard(from []models.IssueStatus, firstParam int) (string, []any) {
	placeholders := make([]string, len(from))
	args := make([]any, len(from))
	for i, s := range from {
		placeholders[i] = fmt.Sprintf("$%d", firstParam+i)
		args[i] = s
	}
	return strings.Join(placeholders, ", "), args
}

// Transition moves an issue into a new status, but only if its current
// status legally allows it. Publishing stamps published_at; unscheduling
// back to ready clears scheduled_at. Returns ErrIllegalTransition when the
// issue was in no admissible status.
func (s *IssueStore) Transition(id uuid.UUID, to models.IssueStatus) (*models.Issue, error) {
	return s.transition(s.db, id, to)
}

type execer interface {
	QueryRow(query string, args ...any) *sql.Row
}

func (s *IssueStore) transition(q execer, id uuid.UUID, to models.IssueStatus) (*models.Issue, error) {
	guard, guardArgs := statusGuard(models.TransitionsInto(to), 3)
	if guard == "" {
		return nil, ErrIllegalTransition
	}

	extra := ""
	switch to {
	case models.IssuePublished:
		extra = ", published_at = NOW()"
	case models.IssueReady:
		extra = ", scheduled_at = NULL"
	case models.IssueGenerating:
		extra = ", error_message = NULL"
	}

	args := append([]any{to, id}, guardArgs...)
	row := q.QueryRow(`
		UPDATE issues SET status = $1, updated_at = NOW()`+extra+`
		WHERE id = $2 AND status IN (`+guard+`)
		RETURNING `+issueColumns,
		args...,
	)
	i, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, ErrIllegalTransition
	}
	if err != nil {
		return nil, fmt.Errorf("transition issue to %s: %w", to, err)
	}
	return i, nil
}

// Publish moves a ready or scheduled issue to published and stamps
// published_at. Unlike the full transition table this guard excludes
// generating: that edge belongs to the worker's in-transaction save.
func (s *IssueStore) Publish(id uuid.UUID) (*models.Issue, error) {
	guard, guardArgs := statusGuard(models.PublishableFrom(), 2)
	args := append([]any{id}, guardArgs...)
	row := s.db.QueryRow(`
		UPDATE issues SET status = 'published', published_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status IN (`+guard+`)
		RETURNING `+issueColumns,
		args...,
	)
	i, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, ErrIllegalTransition
	}
	if err != nil {
		return nil, fmt.Errorf("publish issue: %w", err)
	}
	return i, nil
}

// Schedule moves a ready issue to scheduled with a publish time.
func (s *IssueStore) Schedule(id uuid.UUID, at time.Time) (*models.Issue, error) {
	guard, guardArgs := statusGuard(models.TransitionsInto(models.IssueScheduled), 3)
	args := append([]any{at, id}, guardArgs...)
	row := s.db.QueryRow(`
		UPDATE issues SET status = 'scheduled', scheduled_at = $1, updated_at = NOW()
		WHERE id = $2 AND status IN (`+guard+`)
		RETURNING `+issueColumns,
		args...,
	)
	i, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, ErrIllegalTransition
	}
	if err != nil {
		return nil, fmt.Errorf("schedule issue: %w", err)
	}
	return i, nil
}

// MarkError moves a generating issue to error with a message editors can see.
func (s *IssueStore) MarkError(id uuid.UUID, message string) (*models.Issue, error) {
	guard, guardArgs := statusGuard(models.TransitionsInto(models.IssueError), 3)
	args := append([]any{message, id}, guardArgs...)
	row := s.db.QueryRow(`
		UPDATE issues SET status = 'error', error_message = $1, updated_at = NOW()
		WHERE id = $2 AND status IN (`+guard+`)
		RETURNING `+issueColumns,
		args...,
	)
	i, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, ErrIllegalTransition
	}
	if err != nil {
		return nil, fmt.Errorf("mark issue error: %w", err)
	}
	return i, nil
}

// SaveGenerated atomically stores the output of a pipeline run: the issue's
// cover and sprites, its articles, and its ad slots, plus the transition out
// of generating. Either everything lands or the issue stays generating.
// finalStatus is ready for manual approval mode or published for auto.
func (s *IssueStore) SaveGenerated(
	issueID uuid.UUID,
	coverURL *string,
	sprites []string,
	articles []models.Article,
	adSlots []models.AdSlot,
	finalStatus models.IssueStatus,
) (*models.Issue, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin save generated: %w", err)
	}
	defer tx.Rollback()

	spritesJSON, err := jsonValue(sprites)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`
		UPDATE issues SET cover_url = $1, sprites = $2, updated_at = NOW() WHERE id = $3
	`, coverURL, spritesJSON, issueID); err != nil {
		return nil, fmt.Errorf("save issue media: %w", err)
	}

	// Retried generations replace whatever the failed attempt left behind.
	if _, err := tx.Exec(`DELETE FROM articles WHERE issue_id = $1`, issueID); err != nil {
		return nil, fmt.Errorf("clear articles: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM ad_slots WHERE issue_id = $1`, issueID); err != nil {
		return nil, fmt.Errorf("clear ad slots: %w", err)
	}

	for _, a := range articles {
		tags, err := jsonValue(a.Tags)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(`
			INSERT INTO articles (issue_id, position, slug, title, html, markdown_source,
				hero_url, tags, word_count, reading_minutes, quality)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, issueID, a.Position, a.Slug, a.Title, a.HTML, a.MarkdownSource,
			a.HeroURL, tags, a.WordCount, a.ReadingMinutes, a.Quality); err != nil {
			return nil, fmt.Errorf("insert article %d: %w", a.Position, err)
		}
	}

	for _, slot := range adSlots {
		if _, err := tx.Exec(`
			INSERT INTO ad_slots (issue_id, slot_key) VALUES ($1, $2)
		`, issueID, slot.SlotKey); err != nil {
			return nil, fmt.Errorf("insert ad slot %s: %w", slot.SlotKey, err)
		}
	}

	issue, err := s.transition(tx, issueID, finalStatus)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save generated: %w", err)
	}
	return issue, nil
}
