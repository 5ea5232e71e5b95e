// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"fmt"
	"strings"

	"magazinify/internal/models"
)

// systemPrompt builds the editorial persona every generation call shares,
// derived from the blueprint's voice settings.
func systemPrompt(mag *models.Magazine, bp *models.Blueprint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the senior editor of %q, a digital magazine.", mag.Title)
	if mag.Tagline != nil && *mag.Tagline != "" {
		fmt.Fprintf(&b, " Its tagline is %q.", *mag.Tagline)
	}
	fmt.Fprintf(&b, " Write in a %s tone for a %s reading level.", bp.Tone, bp.ReadingLevel)
	if bp.Geo != "" {
		fmt.Fprintf(&b, " The audience is located in %s.", bp.Geo)
	}
	if len(bp.Keywords) > 0 {
		fmt.Fprintf(&b, " Work these keywords in naturally where relevant: %s.", strings.Join(bp.Keywords, ", "))
	}
	return b.String()
}

// topicsPrompt asks for issue topics as a strict JSON array.
func topicsPrompt(bp *models.Blueprint, period string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Propose between 5 and 8 article topics for the %s edition.", period)
	if len(bp.Topics) > 0 {
		fmt.Fprintf(&b, " The magazine's beats are: %s.", strings.Join(bp.Topics, ", "))
	}
	if len(bp.Sources) > 0 {
		fmt.Fprintf(&b, " Draw inspiration from these sources: %s.", strings.Join(bp.Sources, ", "))
	}
	b.WriteString(` Respond with ONLY a JSON array of topic strings, e.g. ["topic one","topic two"].`)
	return b.String()
}

// outlinePrompt asks for a section-to-pages plan as strict JSON.
func outlinePrompt(bp *models.Blueprint, topics []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan a %d-page issue. The sections are: %s.",
		bp.Pages, strings.Join(bp.Sections, ", "))
	fmt.Fprintf(&b, " The topics to cover are: %s.", strings.Join(topics, "; "))
	b.WriteString(` Assign one topic per section and a page count per section summing to the issue size minus two (cover and table of contents). Respond with ONLY a JSON array of objects like [{"section":"news","topic":"...","pages":3}].`)
	return b.String()
}

// articlePrompt asks for one article as strict JSON with Markdown body.
func articlePrompt(section, topic string, pages int) string {
	words := pages * wordsPerPage
	return fmt.Sprintf(
		`Write the %q article about %q, roughly %d words, in Markdown with a few subheadings. Respond with ONLY a JSON object: {"title":"...","markdown":"...","tags":["..."]}.`,
		section, topic, words,
	)
}

// rewritePrompt asks for a fresh take on an existing article, honoring the
// editor's guidance when given.
func rewritePrompt(a *models.Article, guidance string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rewrite the article titled %q from scratch, keeping the subject but improving the writing. Aim for roughly %d words.", a.Title, a.WordCount)
	if guidance != "" {
		fmt.Fprintf(&b, " Editor guidance: %s.", guidance)
	}
	b.WriteString(` Respond with ONLY a JSON object: {"title":"...","markdown":"...","tags":["..."]}.`)
	return b.String()
}

// coverPrompt describes the issue cover for image generation.
func coverPrompt(mag *models.Magazine, period string, topics []string) string {
	lead := ""
	if len(topics) > 0 {
		lead = ", lead story: " + topics[0]
	}
	return fmt.Sprintf("Magazine cover for %q, %s edition%s. Editorial photography style, no text.",
		mag.Title, period, lead)
}

// heroPrompt describes an article hero image.
func heroPrompt(title string) string {
	return fmt.Sprintf("Editorial hero illustration for a magazine article titled %q. No text in the image.", title)
}

// wordsPerPage is the rough word budget for one flipbook page.
const wordsPerPage = 250
