// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

// Package billing receives Stripe webhooks and keeps tenant plan and
// billing status in sync with the subscription. Only the webhook surface
// is implemented here; checkout and customer portal sessions are created
// out-of-band and land back as events.
package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// signatureTolerance bounds the age of a signed payload to blunt replays.
const signatureTolerance = 5 * time.Minute

var (
	// ErrInvalidSignature means the Stripe-Signature header failed
	// verification or was malformed.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrStaleTimestamp means the signed timestamp is outside the
	// tolerance window.
	ErrStaleTimestamp = errors.New("webhook timestamp outside tolerance")
)

// VerifySignature checks a Stripe-Signature header against the payload.
// The header carries `t=<unix>,v1=<hex hmac>` pairs; the signed message is
// `<t>.<payload>` keyed with the endpoint secret.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			signatures = append(signatures, v)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return ErrStaleTimestamp
	}

	expected := computeSignature(payload, timestamp, secret)
	for _, sig := range signatures {
		provided, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(provided, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// computeSignature returns the HMAC-SHA256 of `<timestamp>.<payload>`.
func computeSignature(payload []byte, timestamp, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s.", timestamp)
	mac.Write(payload)
	return mac.Sum(nil)
}
