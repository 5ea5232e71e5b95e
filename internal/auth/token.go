// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

// Package auth provides bearer-token authentication backed by Valkey,
// bcrypt password hashing, and optional TOTP two-factor enrollment.
// Tokens are random identifiers stored server-side with a TTL, so logout
// and expiry are immediate and no signing keys exist to leak.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long a token lives in Valkey before automatic expiry.
	DefaultTTL = 24 * time.Hour

	// keyPrefix namespaces token keys in Valkey to avoid collisions.
	keyPrefix = "token:"

	// idLength is the byte length of the random token (32 bytes = 64 hex chars).
	idLength = 32
)

// TokenData holds the payload stored per token: the authenticated user's
// identity and 2FA completion status.
type TokenData struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	TwoFADone   bool      `json:"two_fa_done"`
	CreatedAt   time.Time `json:"created_at"`
}

// TokenStore manages token lifecycle in Valkey.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore creates a token store backed by the given Valkey client.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{
		client: client,
		ttl:    DefaultTTL,
	}
}

// Issue generates a new token and stores its payload in Valkey.
func (s *TokenStore) Issue(ctx context.Context, data *TokenData) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("token create: %w", err)
	}

	data.CreatedAt = time.Now()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("token marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("token store: %w", err)
	}
	return token, nil
}

// Get retrieves a token's payload. Returns nil if the token is unknown or
// expired (not an error).
func (s *TokenStore) Get(ctx context.Context, token string) (*TokenData, error) {
	if token == "" {
		return nil, nil
	}
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("token get: %w", err)
	}

	var data TokenData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("token unmarshal: %w", err)
	}
	return &data, nil
}

// Update replaces a token's payload without rotating the token. Resets the
// TTL. Used after 2FA verification to flip TwoFADone.
func (s *TokenStore) Update(ctx context.Context, token string, data *TokenData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("token marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("token update: %w", err)
	}
	return nil
}

// Revoke deletes a token. Unknown tokens are not an error.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("token revoke: %w", err)
	}
	return nil
}

// BearerToken extracts the token from a request's Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// generateToken creates a cryptographically random token.
func generateToken() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
