// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

// Package markdown converts the Markdown produced by the content pipeline
// into the HTML stored on articles, using goldmark.
package markdown

import (
	"bytes"
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks, task lists
		extension.Typographer, // smart quotes and dashes
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(), // heading IDs for in-page anchors
	),
)

// ToHTML converts Markdown source into HTML. Raw HTML embedded in the input
// is escaped by goldmark's default renderer, which is what we want for
// model-generated text.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WordCount counts whitespace-separated words in Markdown source, ignoring
// heading markers and emphasis punctuation well enough for reading-time
// estimates.
func WordCount(source string) int {
	return len(strings.Fields(source))
}
