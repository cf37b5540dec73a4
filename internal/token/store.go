// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package token persists the access/refresh token pair for the zatgpt
// client.
//
// The store is the client-side equivalent of the browser localStorage the
// backend's web frontend uses: two opaque strings keyed by the literal names
// "access_token" and "refresh_token". Tokens are never validated or decoded
// here; staleness is discovered only when a backend call fails.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zatgpt/zatgpt-tui/internal/config"
	"github.com/zatgpt/zatgpt-tui/internal/util"
)

// Storage keys. These literal names are part of the persisted format and
// match what the backend's web frontend stores.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// CredentialsFile is the name of the token file inside the config directory.
const CredentialsFile = "credentials.json"

// ErrNoToken indicates the requested token is not stored.
var ErrNoToken = errors.New("no token stored")

// Store holds the bearer token pair in a JSON file with 0600 permissions.
//
// WRITER DISCIPLINE: only the auth service (login/refresh/logout) and the
// gateway's 401 handler write the store; every other component reads.
// The read-then-use window is intentionally not transactional: a refresh
// racing a concurrent request may send the pre-refresh token once, which the
// backend tolerates and the next request corrects.
type Store struct {
	mu     sync.RWMutex
	path   string
	tokens map[string]string
}

// NewStore creates a store backed by the credentials file in the config
// directory.
func NewStore() (*Store, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(filepath.Join(dir, CredentialsFile)), nil
}

// NewStoreAt creates a store backed by the given file path.
// The file is loaded lazily on first access.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the credentials file path.
func (s *Store) Path() string {
	return s.path
}

// load reads the credentials file into memory. Callers must hold the write
// lock. A missing file is an empty store, not an error.
func (s *Store) load() error {
	if s.tokens != nil {
		return nil
	}
	s.tokens = make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read credentials file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.tokens); err != nil {
		// A corrupt credentials file means "logged out", not a fatal
		// condition; the next login rewrites it.
		s.tokens = make(map[string]string)
	}
	return nil
}

// save persists the in-memory tokens atomically. Callers must hold the
// write lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	// SECURITY: 0600 file in a 0700 directory; tokens are bearer credentials.
	return util.AtomicWriteFileWithDir(s.path, data, 0o600, 0o700)
}

// Get returns the stored value for name, or ErrNoToken when absent.
// No validation of token contents is performed; it is an opaque string.
func (s *Store) Get(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return "", err
	}
	v, ok := s.tokens[name]
	if !ok || v == "" {
		return "", ErrNoToken
	}
	return v, nil
}

// Set stores a value under name and persists immediately.
func (s *Store) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.tokens[name] = value
	return s.save()
}

// SetPair stores both tokens in a single write. Used by login and by
// refreshes that rotate the refresh token.
func (s *Store) SetPair(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.tokens[AccessTokenKey] = access
	if refresh != "" {
		s.tokens[RefreshTokenKey] = refresh
	}
	return s.save()
}

// Clear removes both tokens and deletes the credentials file.
// Pure local operation; logout performs no network call.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}

// AccessToken is shorthand for Get(AccessTokenKey).
func (s *Store) AccessToken() (string, error) {
	return s.Get(AccessTokenKey)
}

// RefreshToken is shorthand for Get(RefreshTokenKey).
func (s *Store) RefreshToken() (string, error) {
	return s.Get(RefreshTokenKey)
}

// HasTokens reports whether an access token is currently stored.
func (s *Store) HasTokens() bool {
	_, err := s.AccessToken()
	return err == nil
}

// Invalidate drops the in-memory cache so the next read hits the file.
// Used by the file watcher when another process rewrites credentials.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = nil
}
