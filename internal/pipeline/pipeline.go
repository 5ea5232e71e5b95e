// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

// Package pipeline turns a magazine blueprint into a full issue draft:
// topics, an outline, one article per planned section, and imagery. Every
// step degrades instead of failing: when an LLM call or its parsing breaks,
// the step substitutes deterministic fallback content and marks it
// QualityFallback so editors can see exactly which parts need a human pass.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"magazinify/internal/ai"
	"magazinify/internal/markdown"
	"magazinify/internal/models"
	"magazinify/internal/slug"
	"magazinify/internal/storage"
)

// ErrUnsafePrompt is returned when moderation flags the blueprint's inputs.
// The issue goes to error rather than generating flagged content.
type ErrUnsafePrompt struct {
	Categories []string
}

func (e *ErrUnsafePrompt) Error() string {
	return fmt.Sprintf("blueprint rejected by content moderation: %s", strings.Join(e.Categories, ", "))
}

// defaultSections is the outline fallback when a blueprint names none.
var defaultSections = []string{"features", "spotlight", "roundup"}

// Generator runs the content pipeline. The storage client may be nil, in
// which case all imagery falls back to seeded placeholder URLs.
type Generator struct {
	registry *ai.Registry
	store    *storage.Client
	log      *slog.Logger
}

// New creates a Generator.
func New(registry *ai.Registry, store *storage.Client, log *slog.Logger) *Generator {
	return &Generator{registry: registry, store: store, log: log}
}

// Draft is the complete output of one pipeline run, handed to the store for
// a single transactional write.
type Draft struct {
	Articles []models.Article
	AdSlots  []models.AdSlot
	CoverURL *string
	Sprites  []string
}

// Run executes the full pipeline for one issue. It returns an error only
// for moderation rejection or context cancellation; content-level failures
// degrade to fallback quality instead.
func (g *Generator) Run(ctx context.Context, mag *models.Magazine, bp *models.Blueprint, issueID uuid.UUID, period string) (*Draft, error) {
	if err := g.moderate(ctx, bp); err != nil {
		return nil, err
	}

	topics, topicsQuality := g.DiscoverTopics(ctx, mag, bp, period)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outline, outlineQuality := g.PlanOutline(ctx, mag, bp, topics)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	planQuality := worstQuality(topicsQuality, outlineQuality)

	draft := &Draft{}
	for i, entry := range outline {
		article := g.WriteArticle(ctx, mag, bp, entry, i+1)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		article.Quality = worstQuality(article.Quality, planQuality)
		draft.Articles = append(draft.Articles, article)
	}

	g.SelectImages(ctx, mag, issueID, period, topics, draft)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, key := range bp.AdSlotKeys {
		draft.AdSlots = append(draft.AdSlots, models.AdSlot{SlotKey: key})
	}

	return draft, nil
}

// moderate screens the blueprint's free-text inputs before any generation.
func (g *Generator) moderate(ctx context.Context, bp *models.Blueprint) error {
	input := strings.Join(append(append([]string{}, bp.Topics...), bp.Keywords...), "\n")
	if strings.TrimSpace(input) == "" {
		return nil
	}
	result, err := g.registry.CheckPrompt(ctx, input)
	if err != nil {
		// Moderation being down must not block paying tenants.
		g.log.Warn("moderation check failed, proceeding", "error", err)
		return nil
	}
	if !result.Safe {
		return &ErrUnsafePrompt{Categories: result.Categories}
	}
	return nil
}

// DiscoverTopics asks the model for the edition's topics. Falls back to the
// blueprint's static topic list when the call or its parsing fails.
func (g *Generator) DiscoverTopics(ctx context.Context, mag *models.Magazine, bp *models.Blueprint, period string) ([]string, models.ContentQuality) {
	raw, err := g.registry.Generate(ctx, systemPrompt(mag, bp), topicsPrompt(bp, period))
	if err != nil {
		g.log.Warn("topic discovery failed, using blueprint topics", "magazine", mag.Slug, "error", err)
		return fallbackTopics(bp), models.QualityFallback
	}
	topics, err := parseStringArray(raw)
	if err != nil {
		// Lenient second pass: models sometimes answer with a plain list.
		if lines := parseLines(raw); len(lines) >= 3 {
			return capTopics(lines), models.QualityGenerated
		}
		g.log.Warn("topic response unparsable, using blueprint topics", "magazine", mag.Slug, "error", err)
		return fallbackTopics(bp), models.QualityFallback
	}
	return capTopics(topics), models.QualityGenerated
}

func fallbackTopics(bp *models.Blueprint) []string {
	if len(bp.Topics) > 0 {
		return bp.Topics
	}
	return []string{"this month in review"}
}

// capTopics bounds the topic list to the 5–8 the outline expects.
func capTopics(topics []string) []string {
	if len(topics) > 8 {
		return topics[:8]
	}
	return topics
}

// PlanOutline asks the model for a section-to-pages plan. Falls back to an
// even distribution of the content pages across the blueprint's sections.
func (g *Generator) PlanOutline(ctx context.Context, mag *models.Magazine, bp *models.Blueprint, topics []string) ([]outlineEntry, models.ContentQuality) {
	sections := bp.Sections
	if len(sections) == 0 {
		sections = defaultSections
	}

	raw, err := g.registry.Generate(ctx, systemPrompt(mag, bp), outlinePrompt(bp, topics))
	if err == nil {
		if outline, perr := parseOutline(raw); perr == nil {
			return outline, models.QualityGenerated
		} else {
			err = perr
		}
	}
	g.log.Warn("outline planning failed, using even distribution", "magazine", mag.Slug, "error", err)
	return evenOutline(sections, topics, bp.Pages), models.QualityFallback
}

// evenOutline distributes the content pages (total minus cover and TOC)
// evenly across sections, pairing each section with a topic round-robin.
func evenOutline(sections, topics []string, totalPages int) []outlineEntry {
	contentPages := totalPages - 2
	if contentPages < len(sections) {
		contentPages = len(sections)
	}
	base := contentPages / len(sections)
	extra := contentPages % len(sections)

	entries := make([]outlineEntry, len(sections))
	for i, section := range sections {
		pages := base
		if i < extra {
			pages++
		}
		topic := section
		if len(topics) > 0 {
			topic = topics[i%len(topics)]
		}
		entries[i] = outlineEntry{Section: section, Topic: topic, Pages: pages}
	}
	return entries
}

// WriteArticle generates one article for a planned section. On failure it
// produces a templated placeholder the editor is expected to replace.
func (g *Generator) WriteArticle(ctx context.Context, mag *models.Magazine, bp *models.Blueprint, entry outlineEntry, position int) models.Article {
	raw, err := g.registry.Generate(ctx, systemPrompt(mag, bp), articlePrompt(entry.Section, entry.Topic, entry.Pages))
	if err == nil {
		if payload, perr := parseArticle(raw); perr == nil {
			if article, berr := g.buildArticle(payload, position); berr == nil {
				return article
			} else {
				err = berr
			}
		} else {
			err = perr
		}
	}
	g.log.Warn("article generation failed, using placeholder",
		"magazine", mag.Slug, "section", entry.Section, "error", err)
	return g.placeholderArticle(entry, position)
}

func (g *Generator) buildArticle(p *articlePayload, position int) (models.Article, error) {
	html, err := markdown.ToHTML(p.Markdown)
	if err != nil {
		return models.Article{}, fmt.Errorf("render article markdown: %w", err)
	}
	words := markdown.WordCount(p.Markdown)
	return models.Article{
		Position:       position,
		Slug:           slug.ForArticle(p.Title),
		Title:          p.Title,
		HTML:           html,
		MarkdownSource: p.Markdown,
		Tags:           p.Tags,
		WordCount:      words,
		ReadingMinutes: models.ReadingMinutesFor(words),
		Quality:        models.QualityGenerated,
	}, nil
}

// placeholderArticle is the deterministic stand-in for a failed generation.
func (g *Generator) placeholderArticle(entry outlineEntry, position int) models.Article {
	title := fmt.Sprintf("%s: %s", titleCase(entry.Section), entry.Topic)
	source := fmt.Sprintf(
		"## %s\n\nThis article could not be generated automatically. "+
			"It covers **%s** for the %s section and needs an editor's attention before publishing.",
		title, entry.Topic, entry.Section,
	)
	html, _ := markdown.ToHTML(source)
	words := markdown.WordCount(source)
	return models.Article{
		Position:       position,
		Slug:           slug.ForArticle(title),
		Title:          title,
		HTML:           html,
		MarkdownSource: source,
		Tags:           []string{entry.Section},
		WordCount:      words,
		ReadingMinutes: models.ReadingMinutesFor(words),
		Quality:        models.QualityFallback,
	}
}

// RegenerateArticle rewrites one existing article in place, keeping its
// position and slug. Unlike issue generation there is no fallback: replacing
// a published-quality article with a placeholder would be a regression, so
// failures surface to the job for retry.
func (g *Generator) RegenerateArticle(ctx context.Context, mag *models.Magazine, bp *models.Blueprint, article *models.Article, guidance string) (*models.Article, error) {
	raw, err := g.registry.Generate(ctx, systemPrompt(mag, bp), rewritePrompt(article, guidance))
	if err != nil {
		return nil, fmt.Errorf("regenerate article: %w", err)
	}
	payload, err := parseArticle(raw)
	if err != nil {
		return nil, fmt.Errorf("regenerate article: %w", err)
	}
	rewritten, err := g.buildArticle(payload, article.Position)
	if err != nil {
		return nil, err
	}
	rewritten.ID = article.ID
	rewritten.IssueID = article.IssueID
	rewritten.Slug = article.Slug
	rewritten.HeroURL = article.HeroURL
	return &rewritten, nil
}

// SelectImages fills in the draft's cover, article heroes, and page
// sprites. Real generation needs both an image-capable provider and object
// storage; anything else gets a seeded placeholder URL so layouts always
// have imagery.
func (g *Generator) SelectImages(ctx context.Context, mag *models.Magazine, issueID uuid.UUID, period string, topics []string, draft *Draft) {
	canGenerate := g.registry.SupportsImageGeneration() && g.store != nil

	cover := placeholderImage(issueID.String()+"-cover", 1024, 1536)
	if canGenerate {
		if url, err := g.generateAndUpload(ctx, coverPrompt(mag, period, topics), issueID, "cover"); err == nil {
			cover = url
		} else {
			g.log.Warn("cover generation failed, using placeholder", "issue", issueID, "error", err)
		}
	}
	draft.CoverURL = &cover

	for i := range draft.Articles {
		a := &draft.Articles[i]
		hero := placeholderImage(fmt.Sprintf("%s-hero-%d", issueID, a.Position), 1200, 675)
		if canGenerate {
			name := fmt.Sprintf("hero-%d", a.Position)
			if url, err := g.generateAndUpload(ctx, heroPrompt(a.Title), issueID, name); err == nil {
				hero = url
			} else {
				g.log.Warn("hero generation failed, using placeholder",
					"issue", issueID, "article", a.Slug, "error", err)
			}
		}
		a.HeroURL = &hero
	}

	// Page sprites back the flipbook spreads; they are always placeholders
	// seeded per page until a page renderer exists.
	pages := len(draft.Articles) + 2
	for page := 1; page <= pages; page++ {
		draft.Sprites = append(draft.Sprites, placeholderImage(fmt.Sprintf("%s-page-%d", issueID, page), 1024, 1536))
	}
}

func (g *Generator) generateAndUpload(ctx context.Context, prompt string, issueID uuid.UUID, name string) (string, error) {
	data, contentType, err := g.registry.GenerateImage(ctx, prompt)
	if err != nil {
		return "", err
	}
	key := storage.IssueKey(issueID, name+"."+storage.ExtFor(contentType))
	return g.store.Upload(ctx, key, contentType, data)
}

// placeholderImage returns a stable placeholder URL for a seed, so retries
// produce the same imagery.
func placeholderImage(seed string, w, h int) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/%d/%d", slug.Generate(seed), w, h)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func worstQuality(a, b models.ContentQuality) models.ContentQuality {
	if a == models.QualityFallback || b == models.QualityFallback {
		return models.QualityFallback
	}
	return models.QualityGenerated
}
