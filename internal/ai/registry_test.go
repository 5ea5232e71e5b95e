// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"testing"
)

// fakeProvider implements Provider for registry tests.
type fakeProvider struct {
	name     string
	response string
	err      error
	calls    int
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) Generate(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.response, f.err
}

// fakeImageProvider also implements ImageGenerator.
type fakeImageProvider struct {
	fakeProvider
}

func (f *fakeImageProvider) GenerateImage(_ context.Context, _ string) ([]byte, string, error) {
	return []byte{0x89, 0x50}, "image/png", nil
}

func TestRegistrySkipsProvidersWithoutKeys(t *testing.T) {
	reg := NewRegistry("openai", map[string]ProviderConfig{
		"openai": {APIKey: ""},
		"claude": {APIKey: "sk-test"},
	})

	if reg.HasProvider("openai") {
		t.Error("openai should be skipped without an API key")
	}
	if !reg.HasProvider("claude") {
		t.Error("claude should be registered")
	}
	if _, err := reg.Active(); err == nil {
		t.Error("Active should fail when the active provider has no key")
	}
}

func TestRegistrySetActive(t *testing.T) {
	reg := NewRegistry("openai", nil)
	reg.Register("fake", &fakeProvider{name: "fake", response: "hello"})

	if err := reg.SetActive("missing"); err == nil {
		t.Error("SetActive should reject unknown providers")
	}
	if err := reg.SetActive("fake"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if reg.ActiveName() != "fake" {
		t.Errorf("ActiveName = %q, want fake", reg.ActiveName())
	}

	out, err := reg.Generate(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "hello" {
		t.Errorf("Generate = %q, want hello", out)
	}
}

func TestRegistryRetriesTransientErrors(t *testing.T) {
	flaky := &flakyProvider{failures: 1, response: "recovered"}
	reg := NewRegistry("flaky", nil)
	reg.baseBackoff = 1 // keep the test fast
	reg.Register("flaky", flaky)

	out, err := reg.Generate(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Generate should recover after transient failure: %v", err)
	}
	if out != "recovered" {
		t.Errorf("Generate = %q, want recovered", out)
	}
	if flaky.calls != 2 {
		t.Errorf("calls = %d, want 2 (one failure, one success)", flaky.calls)
	}
}

func TestRegistryDoesNotRetryPermanentErrors(t *testing.T) {
	auth := &fakeProvider{name: "p", err: &APIError{Provider: "p", Status: 401, Body: "bad key"}}
	reg := NewRegistry("p", nil)
	reg.baseBackoff = 1
	reg.Register("p", auth)

	_, err := reg.Generate(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("Generate should fail on auth errors")
	}
	if auth.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries on 401)", auth.calls)
	}

	plain := &fakeProvider{name: "q", err: errors.New("parse failure")}
	reg.Register("q", plain)
	if err := reg.SetActive("q"); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Generate(context.Background(), "sys", "user"); err == nil {
		t.Fatal("Generate should surface non-API errors")
	}
	if plain.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries on non-API errors)", plain.calls)
	}
}

// flakyProvider fails with a transient APIError a set number of times.
type flakyProvider struct {
	failures int
	response string
	calls    int
}

func (f *flakyProvider) Name() string { return "flaky" }
func (f *flakyProvider) Generate(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", &APIError{Provider: "flaky", Status: 503, Body: "overloaded"}
	}
	return f.response, nil
}

func TestImageGenerationSupport(t *testing.T) {
	reg := NewRegistry("text", nil)
	reg.Register("text", &fakeProvider{name: "text"})
	reg.Register("img", &fakeImageProvider{fakeProvider{name: "img"}})

	if err := reg.SetActive("text"); err != nil {
		t.Fatal(err)
	}
	if reg.SupportsImageGeneration() {
		t.Error("text-only provider should not support images")
	}
	if _, _, err := reg.GenerateImage(context.Background(), "a cover"); err == nil {
		t.Error("GenerateImage should fail on text-only provider")
	}

	if err := reg.SetActive("img"); err != nil {
		t.Fatal(err)
	}
	if !reg.SupportsImageGeneration() {
		t.Error("image provider should support images")
	}
	data, ct, err := reg.GenerateImage(context.Background(), "a cover")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if len(data) == 0 || ct != "image/png" {
		t.Errorf("GenerateImage = %d bytes, %q", len(data), ct)
	}
}

func TestCheckPromptWithoutModerator(t *testing.T) {
	reg := NewRegistry("any", nil)
	result, err := reg.CheckPrompt(context.Background(), "anything")
	if err != nil {
		t.Fatalf("CheckPrompt: %v", err)
	}
	if !result.Safe {
		t.Error("CheckPrompt without moderator should default to safe")
	}
}
