// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentQuality records whether a piece of generated content came from the
// AI pipeline or from a fallback template. Fallback content is visible to
// editors so they know what needs a human pass before publishing.
type ContentQuality string

const (
	QualityGenerated ContentQuality = "generated"
	QualityFallback  ContentQuality = "fallback"
)

// Article is one section of an issue. Position is the 1-based order within
// the issue; HTML is rendered from the Markdown the model produced, and the
// Markdown source is kept for regeneration and editing.
type Article struct {
	ID             uuid.UUID      `json:"id"`
	IssueID        uuid.UUID      `json:"issue_id"`
	Position       int            `json:"position"`
	Slug           string         `json:"slug"`
	Title          string         `json:"title"`
	HTML           string         `json:"html"`
	MarkdownSource string         `json:"-"`
	HeroURL        *string        `json:"hero_url,omitempty"`
	Tags           []string       `json:"tags"`
	WordCount      int            `json:"word_count"`
	ReadingMinutes int            `json:"reading_minutes"`
	Quality        ContentQuality `json:"quality"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ReadingMinutesFor estimates reading time from a word count at ~220 wpm,
// never reporting less than one minute for non-empty articles.
func ReadingMinutesFor(wordCount int) int {
	if wordCount == 0 {
		return 0
	}
	minutes := (wordCount + 219) / 220
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
