// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/zatgpt/zatgpt-tui/internal/session"
	"github.com/zatgpt/zatgpt-tui/internal/token"
)

func newTestStore(t *testing.T) *token.Store {
	t.Helper()
	return token.NewStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
}

func newTestClient(t *testing.T, url string, tokens *token.Store, hub *session.Hub) *Client {
	t.Helper()
	return NewClient(url, tokens, hub)
}

func TestBearerHeaderWithToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tokens := newTestStore(t)
	if err := tokens.SetPair("access-abc", "refresh-xyz"); err != nil {
		t.Fatal(err)
	}

	client := newTestClient(t, srv.URL, tokens, nil)
	if err := client.Get(context.Background(), PathUserInfo, nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "Bearer access-abc" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer access-abc")
	}
}

func TestBearerHeaderWithoutToken(t *testing.T) {
	// With nothing stored the header carries the literal "undefined",
	// matching the web client reading an absent localStorage key.
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, newTestStore(t), nil)
	if err := client.Get(context.Background(), PathSessions, nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "Bearer undefined" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer undefined")
	}
}

func TestRefreshAndReplayOn401(t *testing.T) {
	var refreshes, replays atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathTokenRefresh:
			refreshes.Add(1)
			w.Write([]byte(`{"access":"fresh-access"}`))
		case PathSessions:
			if r.Header.Get("Authorization") == "Bearer fresh-access" {
				replays.Add(1)
				w.Write([]byte(`{"sessions":[]}`))
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"token expired"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	tokens := newTestStore(t)
	if err := tokens.SetPair("stale-access", "valid-refresh"); err != nil {
		t.Fatal(err)
	}

	client := newTestClient(t, srv.URL, tokens, nil)
	if err := client.Get(context.Background(), PathSessions, nil); err != nil {
		t.Fatalf("Get() after refresh error = %v", err)
	}
	if n := refreshes.Load(); n != 1 {
		t.Errorf("refresh count = %d, want 1", n)
	}
	if n := replays.Load(); n != 1 {
		t.Errorf("replay count = %d, want 1", n)
	}

	// Rotation absent from the response must preserve the old refresh token.
	access, err := tokens.AccessToken()
	if err != nil || access != "fresh-access" {
		t.Errorf("stored access = %q, %v; want fresh-access", access, err)
	}
	refresh, err := tokens.RefreshToken()
	if err != nil || refresh != "valid-refresh" {
		t.Errorf("stored refresh = %q, %v; want valid-refresh", refresh, err)
	}
}

func TestRefreshFailureClearsTokensAndPublishes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"token invalid"}`))
	}))
	defer srv.Close()

	tokens := newTestStore(t)
	if err := tokens.SetPair("stale", "also-stale"); err != nil {
		t.Fatal(err)
	}
	hub := session.NewHub()
	events, cancel := hub.Subscribe()
	defer cancel()

	client := newTestClient(t, srv.URL, tokens, hub)
	err := client.Get(context.Background(), PathSessions, nil)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("Get() error = %v, want ErrUnauthenticated", err)
	}

	if tokens.HasTokens() {
		t.Error("tokens still present after failed refresh")
	}
	select {
	case <-events:
	default:
		t.Error("no session-invalidated event published")
	}
}

func TestNoRefreshForAuthEndpoints(t *testing.T) {
	// A 401 from the token endpoint means bad credentials, never a stale
	// access token. It must not trigger a refresh loop.
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, newTestStore(t), nil)
	err := client.Post(context.Background(), PathToken, map[string]string{"username": "u", "password": "p"}, nil)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("Post() error = %v, want ErrUnauthenticated", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("request count = %d, want 1 (no refresh, no replay)", n)
	}
}

func TestNoRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, newTestStore(t), nil)
	err := client.Get(context.Background(), PathSessions, nil)
	if err == nil {
		t.Fatal("Get() error = nil, want error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Errorf("error = %v, want *APIError with status 500", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("request count = %d, want 1 (failed requests are never retried)", n)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{
			name:     "validation with field errors",
			status:   http.StatusBadRequest,
			body:     `{"username":["A user with that username already exists."]}`,
			sentinel: ErrValidation,
			message:  "username: A user with that username already exists.",
		},
		{
			name:     "forbidden",
			status:   http.StatusForbidden,
			body:     `{"error":"Permission denied"}`,
			sentinel: ErrPermissionDenied,
			message:  "Permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tokens := newTestStore(t)
			if err := tokens.SetPair("a", "r"); err != nil {
				t.Fatal(err)
			}
			client := newTestClient(t, srv.URL, tokens, nil)
			err := client.Post(context.Background(), PathRegister, map[string]string{}, nil)
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want sentinel %v", err, tt.sentinel)
			}
			if got := UserMessage(err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}
}

func TestNetworkErrorWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := newTestClient(t, srv.URL, newTestStore(t), nil)
	err := client.Get(context.Background(), PathSessions, nil)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}
