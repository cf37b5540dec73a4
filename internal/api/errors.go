// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error variables for the client-side failure taxonomy.
var (
	// ErrAuthFailed indicates rejected login credentials.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrValidation indicates the backend rejected submitted fields.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthenticated indicates a missing or rejected token; callers
	// must treat this as "re-login required", never as retryable.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrPermissionDenied indicates a role-gated action was rejected
	// server-side.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNetwork indicates the call did not complete at all.
	ErrNetwork = errors.New("network error")

	// ErrSendFailed indicates a chat message could not be delivered.
	ErrSendFailed = errors.New("message send failed")
)

// APIError represents an error response from the backend.
type APIError struct {
	// Status is the HTTP status code.
	Status int

	// Message is the backend's own description, surfaced verbatim to the
	// user where the UI shows errors inline.
	Message string

	// Fields holds per-field validation errors for registration, keyed by
	// field name, exactly as the backend serialized them.
	Fields map[string][]string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.FieldSummary())
	}
	if e.Message != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// FieldSummary flattens field errors into a single line for display.
func (e *APIError) FieldSummary() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, field+": "+strings.Join(msgs, "; "))
	}
	return strings.Join(parts, ", ")
}

// decodeError converts a non-2xx response body into the taxonomy error for
// its status code, preserving whatever detail the backend sent.
//
// The backend emits three error shapes: {"error": "..."} from the app
// views, {"detail": "..."} from the auth framework, and a field->messages
// map from the registration serializer. All three are handled here.
func decodeError(status int, body []byte) error {
	apiErr := &APIError{Status: status}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(body, &generic); err == nil {
		for key, raw := range generic {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				if key == "error" || key == "detail" || key == "message" {
					apiErr.Message = s
					continue
				}
				// Single-string field error.
				if apiErr.Fields == nil {
					apiErr.Fields = make(map[string][]string)
				}
				apiErr.Fields[key] = []string{s}
				continue
			}
			var list []string
			if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
				if apiErr.Fields == nil {
					apiErr.Fields = make(map[string][]string)
				}
				apiErr.Fields[key] = list
			}
		}
	}
	if apiErr.Message == "" && apiErr.Fields == nil && len(body) > 0 {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %w", ErrValidation, apiErr)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrUnauthenticated, apiErr)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrPermissionDenied, apiErr)
	default:
		return apiErr
	}
}

// AsAPIError unwraps err to its *APIError, or nil when err carries none.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// FieldErrors extracts per-field validation messages from err, or nil when
// err carries none.
func FieldErrors(err error) map[string][]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}

// UserMessage returns the backend-supplied message inside err, falling back
// to the error's own text. Used by screens that surface errors inline.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if s := apiErr.FieldSummary(); s != "" {
			return s
		}
	}
	return err.Error()
}
