// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth implements account operations against the backend: login,
// registration, identity lookup and logout. It owns the mapping from raw
// gateway errors to the auth-specific ones screens display.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zatgpt/zatgpt-tui/internal/api"
	"github.com/zatgpt/zatgpt-tui/internal/token"
)

// UserInfo is the caller's own identity as reported by GET /api/user-info/.
type UserInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Service performs authentication operations.
type Service struct {
	client *api.Client
	tokens *token.Store
}

// NewService creates an auth service over the shared gateway client.
func NewService(client *api.Client, tokens *token.Store) *Service {
	return &Service{client: client, tokens: tokens}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair and persists it. A 401 from
// the token endpoint means the credentials were wrong, so it surfaces as
// ErrAuthFailed rather than a session problem.
func (s *Service) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", api.ErrValidation)
	}

	var resp loginResponse
	err := s.client.Post(ctx, api.PathToken, loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			return fmt.Errorf("%w: invalid username or password", api.ErrAuthFailed)
		}
		return err
	}
	if resp.Access == "" || resp.Refresh == "" {
		return fmt.Errorf("%w: token response was incomplete", api.ErrAuthFailed)
	}
	return s.tokens.SetPair(resp.Access, resp.Refresh)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account. It does not log the account in; the
// backend expects a separate login after registration. Field-level
// validation errors from the backend are preserved on the returned error
// and can be recovered with api.FieldErrors.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("%w: username, email and password are required", api.ErrValidation)
	}
	return s.client.Post(ctx, api.PathRegister, registerRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, nil)
}

// CurrentUser fetches the identity behind the stored access token.
func (s *Service) CurrentUser(ctx context.Context) (UserInfo, error) {
	var info UserInfo
	if err := s.client.Get(ctx, api.PathUserInfo, &info); err != nil {
		return UserInfo{}, err
	}
	return info, nil
}

// IsLoggedIn reports whether a token pair is stored locally. It says
// nothing about whether the backend still accepts it; that is discovered
// on the first request.
func (s *Service) IsLoggedIn() bool {
	return s.tokens.HasTokens()
}

// Logout discards the stored token pair. The backend keeps no server-side
// session for this client, so logout is purely local.
func (s *Service) Logout() error {
	return s.tokens.Clear()
}

// RefreshAccessToken forces a token refresh. The gateway also refreshes
// reactively on 401; this exists for callers that want to validate a
// stored session up front.
func (s *Service) RefreshAccessToken(ctx context.Context) error {
	return s.client.RefreshTokens(ctx)
}
