// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	html, err := ToHTML("## Beans\n\nSome **bold** coffee talk.")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(html, "<h2") || !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("unexpected HTML: %s", html)
	}
}

func TestToHTMLEscapesRawHTML(t *testing.T) {
	html, err := ToHTML(`hello <script>alert(1)</script>`)
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("raw HTML was not escaped: %s", html)
	}
}

func TestToHTMLTables(t *testing.T) {
	html, err := ToHTML("| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Errorf("GFM tables not rendered: %s", html)
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("## Title\n\none two three"); got != 5 {
		t.Errorf("WordCount = %d, want 5", got)
	}
	if got := WordCount(""); got != 0 {
		t.Errorf("WordCount empty = %d, want 0", got)
	}
}
