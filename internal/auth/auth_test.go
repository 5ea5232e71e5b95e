// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

// Token tests run against a real Valkey and are skipped when it is not
// reachable. Password and TOTP tests need no infrastructure.
package auth

import (
	"context"
	"encoding/base64"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
)

func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port,
		DB:   15,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(context.Background(), keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
		client.Close()
	})
	return client
}

func TestTokenLifecycle(t *testing.T) {
	client := testValkeyClient(t)
	store := NewTokenStore(client)
	ctx := context.Background()

	userID := uuid.New()
	token, err := store.Issue(ctx, &TokenData{
		UserID: userID, Email: "auth@test.local", DisplayName: "Auth Test",
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(token) != idLength*2 {
		t.Errorf("token length: %d, want %d", len(token), idLength*2)
	}

	data, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if data == nil {
		t.Fatal("expected token data, got nil")
	}
	if data.UserID != userID || data.Email != "auth@test.local" {
		t.Errorf("unexpected data: %+v", data)
	}
	if data.TwoFADone {
		t.Error("fresh token should not have 2FA done")
	}
	if data.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}

	data.TwoFADone = true
	if err := store.Update(ctx, token, data); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, _ := store.Get(ctx, token)
	if updated == nil || !updated.TwoFADone {
		t.Error("Update did not persist TwoFADone")
	}

	if err := store.Revoke(ctx, token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	gone, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get after revoke: %v", err)
	}
	if gone != nil {
		t.Error("revoked token still resolves")
	}
}

func TestTokenGetUnknown(t *testing.T) {
	client := testValkeyClient(t)
	store := NewTokenStore(client)

	data, err := store.Get(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if data != nil {
		t.Errorf("unknown token resolved to %+v", data)
	}
}

func TestTokenTTL(t *testing.T) {
	client := testValkeyClient(t)
	store := NewTokenStore(client)
	ctx := context.Background()

	token, err := store.Issue(ctx, &TokenData{UserID: uuid.New(), Email: "ttl@test.local"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	ttl, err := client.TTL(ctx, keyPrefix+token).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > DefaultTTL {
		t.Errorf("ttl: %v, want within (0, %v]", ttl, DefaultTTL)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "Bearer abc123", "abc123", true},
		{"missing", "", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"empty token", "Bearer ", "", false},
		{"padded token", "Bearer  abc123", "abc123", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, ok := BearerToken(r)
			if got != tt.want || ok != tt.ok {
				t.Errorf("BearerToken() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "s3cret-password") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Error("wrong password accepted")
	}
}

func TestTOTPEnrollmentAndVerify(t *testing.T) {
	enrollment, err := NewTOTPEnrollment("totp@test.local")
	if err != nil {
		t.Fatalf("NewTOTPEnrollment: %v", err)
	}
	if enrollment.Secret == "" {
		t.Fatal("empty secret")
	}
	if _, err := base64.StdEncoding.DecodeString(enrollment.QRCode); err != nil {
		t.Errorf("QR code is not valid base64: %v", err)
	}

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if !VerifyTOTP(enrollment.Secret, code) {
		t.Error("valid code rejected")
	}
	if VerifyTOTP(enrollment.Secret, "000000") && code != "000000" {
		t.Error("bogus code accepted")
	}
}
