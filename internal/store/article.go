// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"magazinify/internal/models"
)

// ArticleStore handles reads and edits of individual articles. Bulk article
// writes during generation go through IssueStore.SaveGenerated.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleColumns = `id, issue_id, position, slug, title, html, markdown_source,
	hero_url, tags, word_count, reading_minutes, quality, created_at, updated_at`

func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	var a models.Article
	var tags []byte
	err := scanner.Scan(
		&a.ID, &a.IssueID, &a.Position, &a.Slug, &a.Title, &a.HTML, &a.MarkdownSource,
		&a.HeroURL, &tags, &a.WordCount, &a.ReadingMinutes, &a.Quality,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := jsonScan(tags, &a.Tags); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByIssue returns an issue's articles in page order.
func (s *ArticleStore) ListByIssue(issueID uuid.UUID) ([]models.Article, error) {
	rows, err := s.db.Query(`
		SELECT `+articleColumns+` FROM articles
		WHERE issue_id = $1
		ORDER BY position
	`, issueID)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// FindByID retrieves an article by ID. Returns nil if not found.
func (s *ArticleStore) FindByID(id uuid.UUID) (*models.Article, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// FindBySlug retrieves an article by its slug within an issue. Returns nil
// if not found.
func (s *ArticleStore) FindBySlug(issueID uuid.UUID, slug string) (*models.Article, error) {
	row := s.db.QueryRow(`
		SELECT `+articleColumns+` FROM articles WHERE issue_id = $1 AND slug = $2
	`, issueID, slug)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}
	return a, nil
}

// ReplaceContent swaps an article's content in place after a regeneration,
// keeping its position and slug stable.
func (s *ArticleStore) ReplaceContent(id uuid.UUID, title, html, markdownSource string, tags []string, wordCount, readingMinutes int, quality models.ContentQuality) error {
	tagsJSON, err := jsonValue(tags)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		UPDATE articles SET title = $1, html = $2, markdown_source = $3, tags = $4,
			word_count = $5, reading_minutes = $6, quality = $7, updated_at = NOW()
		WHERE id = $8
	`, title, html, markdownSource, tagsJSON, wordCount, readingMinutes, quality, id)
	if err != nil {
		return fmt.Errorf("replace article content: %w", err)
	}
	return nil
}

// SetHeroURL records the uploaded hero image location for an article.
func (s *ArticleStore) SetHeroURL(id uuid.UUID, url string) error {
	_, err := s.db.Exec(`
		UPDATE articles SET hero_url = $1, updated_at = NOW() WHERE id = $2
	`, url, id)
	if err != nil {
		return fmt.Errorf("set article hero: %w", err)
	}
	return nil
}
