// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP gateway client for the zatgpt backend.
//
// A single Client carries the backend base URL, a pooled HTTP client, and
// the token store. Every outbound request is decorated with the stored
// bearer token; a 401 response triggers exactly one reactive token refresh
// and replay, after which the session is invalidated and a signal is
// published for the active screen to act on. The client itself never
// navigates and never retries failed calls.
//
// Error taxonomy: sentinel errors (ErrUnauthenticated, ErrValidation,
// ErrPermissionDenied, ErrNetwork, ...) wrap a typed *APIError carrying the
// backend's status and message so callers can branch with errors.Is and
// still surface the server's own wording.
package api
