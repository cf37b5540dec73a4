// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatgpt/zatgpt-tui/internal/api"
	"github.com/zatgpt/zatgpt-tui/internal/token"
)

func newFixture(t *testing.T, handler http.Handler) (*Service, *token.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tokens := token.NewStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
	client := api.NewClient(srv.URL, tokens, nil)
	return NewService(client, tokens), tokens
}

func TestLoginStoresTokenPair(t *testing.T) {
	svc, tokens := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, api.PathToken, r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "s3cret", body["password"])
		json.NewEncoder(w).Encode(map[string]string{
			"access":  "acc-1",
			"refresh": "ref-1",
		})
	}))

	require.NoError(t, svc.Login(context.Background(), "alice", "s3cret"))
	assert.True(t, svc.IsLoggedIn())

	access, err := tokens.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "acc-1", access)
	refresh, err := tokens.RefreshToken()
	require.NoError(t, err)
	assert.Equal(t, "ref-1", refresh)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, tokens := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"detail": "No active account found with the given credentials",
		})
	}))

	err := svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, api.ErrAuthFailed)
	assert.False(t, tokens.HasTokens())
}

func TestLoginEmptyFields(t *testing.T) {
	svc, _ := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty credentials")
	}))

	assert.ErrorIs(t, svc.Login(context.Background(), "", "pw"), api.ErrValidation)
	assert.ErrorIs(t, svc.Login(context.Background(), "alice", ""), api.ErrValidation)
	assert.ErrorIs(t, svc.Login(context.Background(), "   ", "pw"), api.ErrValidation)
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	svc, tokens := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, api.PathRegister, r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, svc.Register(context.Background(), "bob", "bob@example.com", "pw123456"))
	assert.False(t, tokens.HasTokens())
}

func TestRegisterFieldErrors(t *testing.T) {
	svc, _ := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"username":["A user with that username already exists."]}`))
	}))

	err := svc.Register(context.Background(), "bob", "bob@example.com", "pw123456")
	assert.ErrorIs(t, err, api.ErrValidation)
	fields := api.FieldErrors(err)
	require.Contains(t, fields, "username")
	assert.Equal(t, []string{"A user with that username already exists."}, fields["username"])
}

func TestCurrentUser(t *testing.T) {
	svc, tokens := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, api.PathUserInfo, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
		})
	}))
	require.NoError(t, tokens.SetPair("a", "r"))

	info, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, UserInfo{Username: "alice", Email: "alice@example.com"}, info)
}

func TestLogoutClearsTokens(t *testing.T) {
	svc, tokens := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("logout must not hit the backend")
	}))
	require.NoError(t, tokens.SetPair("a", "r"))

	require.NoError(t, svc.Logout())
	assert.False(t, svc.IsLoggedIn())
}
