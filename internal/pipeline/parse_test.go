// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"reflect"
	"testing"
)

func TestParseStringArray(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
		ok   bool
	}{
		{"bare array", `["a","b","c"]`, []string{"a", "b", "c"}, true},
		{"prose around it", "Sure! Here you go:\n```json\n[\"one\", \"two\"]\n```\nEnjoy.", []string{"one", "two"}, true},
		{"blank entries dropped", `["a","","  ","b"]`, []string{"a", "b"}, true},
		{"brackets inside strings", `["a [draft] title","b"]`, []string{"a [draft] title", "b"}, true},
		{"no array", "just some prose", nil, false},
		{"not strings", `[{"x":1}]`, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStringArray(tt.raw)
			if tt.ok && err != nil {
				t.Fatalf("parseStringArray: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLines(t *testing.T) {
	raw := "Here are some ideas:\n- first topic\n2. second topic\n\n• third topic"
	got := parseLines(raw)
	want := []string{"Here are some ideas:", "first topic", "second topic", "third topic"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseOutline(t *testing.T) {
	raw := "```json\n" + `[
		{"section":"news","topic":"city elections","pages":3},
		{"section":"culture","topic":"autumn exhibitions","pages":0},
		{"section":"","topic":"dropped",   "pages":2}
	]` + "\n```"
	got, err := parseOutline(raw)
	if err != nil {
		t.Fatalf("parseOutline: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Section != "news" || got[0].Pages != 3 {
		t.Errorf("first entry: %+v", got[0])
	}
	// Zero pages are clamped to one.
	if got[1].Pages != 1 {
		t.Errorf("pages clamp: %+v", got[1])
	}

	if _, err := parseOutline("no json here"); err == nil {
		t.Error("expected error for missing array")
	}
}

func TestParseArticle(t *testing.T) {
	raw := `{"title":"Espresso at Home","markdown":"## Intro\n\nGood coffee.","tags":["coffee","howto"]}`
	got, err := parseArticle(raw)
	if err != nil {
		t.Fatalf("parseArticle: %v", err)
	}
	if got.Title != "Espresso at Home" || len(got.Tags) != 2 {
		t.Errorf("payload: %+v", got)
	}

	if _, err := parseArticle(`{"title":"","markdown":"body"}`); err == nil {
		t.Error("expected error for empty title")
	}
	if _, err := parseArticle("prose only"); err == nil {
		t.Error("expected error for missing object")
	}
}

func TestExtractJSONBalanced(t *testing.T) {
	raw := `prefix {"a":{"b":"}"}, "c":[1,2]} suffix {"d":1}`
	got, ok := extractJSON(raw, '{', '}')
	if !ok {
		t.Fatal("expected a match")
	}
	want := `{"a":{"b":"}"}, "c":[1,2]}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
