// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Models wrap JSON in prose or code fences often enough that strict
// unmarshalling of the raw response is a losing game. These helpers cut the
// first JSON value of the wanted shape out of the text before decoding.

// extractJSON returns the first balanced JSON value in s delimited by open
// and close ('[' / ']' or '{' / '}').
func extractJSON(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// parseStringArray decodes a JSON array of strings out of model output.
func parseStringArray(raw string) ([]string, error) {
	blob, ok := extractJSON(raw, '[', ']')
	if !ok {
		return nil, fmt.Errorf("no JSON array in response")
	}
	var items []string
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		return nil, fmt.Errorf("parse string array: %w", err)
	}
	var out []string
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty array in response")
	}
	return out, nil
}

// parseLines is the lenient fallback for topic lists: one topic per line,
// with bullets and numbering stripped.
func parseLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789. )")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// outlineEntry is one planned article: a section, its topic, and how many
// pages it gets.
type outlineEntry struct {
	Section string `json:"section"`
	Topic   string `json:"topic"`
	Pages   int    `json:"pages"`
}

// parseOutline decodes the outline plan out of model output.
func parseOutline(raw string) ([]outlineEntry, error) {
	blob, ok := extractJSON(raw, '[', ']')
	if !ok {
		return nil, fmt.Errorf("no JSON array in response")
	}
	var entries []outlineEntry
	if err := json.Unmarshal([]byte(blob), &entries); err != nil {
		return nil, fmt.Errorf("parse outline: %w", err)
	}
	var out []outlineEntry
	for _, e := range entries {
		if strings.TrimSpace(e.Section) == "" || strings.TrimSpace(e.Topic) == "" {
			continue
		}
		if e.Pages < 1 {
			e.Pages = 1
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty outline in response")
	}
	return out, nil
}

// articlePayload is the JSON shape WriteArticle expects from the model.
type articlePayload struct {
	Title    string   `json:"title"`
	Markdown string   `json:"markdown"`
	Tags     []string `json:"tags"`
}

// parseArticle decodes one article out of model output.
func parseArticle(raw string) (*articlePayload, error) {
	blob, ok := extractJSON(raw, '{', '}')
	if !ok {
		return nil, fmt.Errorf("no JSON object in response")
	}
	var p articlePayload
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return nil, fmt.Errorf("parse article: %w", err)
	}
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Markdown) == "" {
		return nil, fmt.Errorf("article missing title or body")
	}
	return &p, nil
}
