// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

// Package httpapi implements the JSON API server. Every response uses the
// same envelope: {"ok":true, ...} on success, {"ok":false,"error":
// {"code","message"}} on failure, with apperrors carrying the HTTP status.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"magazinify/internal/apperrors"
)

// maxBodyBytes caps request bodies. Articles edited by hand are the largest
// legitimate payload and stay well under this.
const maxBodyBytes = 1 << 20

// respondOK writes the success envelope with the given extra fields.
func respondOK(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// respondErr serializes an error into the failure envelope. Unexpected
// errors are logged and surfaced as a generic 500.
func respondErr(w http.ResponseWriter, log *slog.Logger, err error) {
	appErr := apperrors.From(err)
	if appErr.Status >= 500 && log != nil {
		log.Error("request failed", "code", appErr.Code, "error", err)
	}
	writeJSON(w, appErr.Status, map[string]any{
		"ok":    false,
		"error": appErr,
	})
}

// respondRaw writes a pre-serialized envelope, used for cache hits.
func respondRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a request body into dst, rejecting unknown garbage with
// a validation error the client can act on.
func decodeJSON(r *http.Request, dst any) error {
	defer io.Copy(io.Discard, r.Body)
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("request body is required")
		}
		return apperrors.Validation("malformed JSON body").WithCause(err)
	}
	return nil
}
