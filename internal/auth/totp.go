// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package auth

import (
	"encoding/base64"
	"fmt"

	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"
)

// totpIssuer is shown in authenticator apps next to the account.
const totpIssuer = "Magazinify"

// TOTPEnrollment is the material returned during 2FA setup: the shared
// secret for manual entry and a provisioning QR code as base64 PNG.
type TOTPEnrollment struct {
	Secret     string `json:"secret"`
	QRCode     string `json:"qr_code"`
	OTPAuthURL string `json:"otpauth_url"`
}

// NewTOTPEnrollment generates a fresh TOTP secret for a user and renders
// the provisioning QR code.
func NewTOTPEnrollment(email string) (*TOTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: email,
	})
	if err != nil {
		return nil, fmt.Errorf("totp generate: %w", err)
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("totp qr encode: %w", err)
	}

	return &TOTPEnrollment{
		Secret:     key.Secret(),
		QRCode:     base64.StdEncoding.EncodeToString(qrPNG),
		OTPAuthURL: key.URL(),
	}, nil
}

// VerifyTOTP reports whether a 6-digit code is valid for the secret.
func VerifyTOTP(secret, code string) bool {
	return totp.Validate(code, secret)
}
