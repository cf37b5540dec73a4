// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/zatgpt/zatgpt-tui/internal/session"
	"github.com/zatgpt/zatgpt-tui/internal/token"
)

// Configuration constants for the gateway client.
const (
	// DefaultTimeout is the default timeout for API requests. The source
	// frontend had none, which is how a dead backend produced a spinner
	// that never stopped.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared transport for all backend requests.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// Endpoint paths consumed by the services. Kept in one place so the path
// table in the client matches the backend's urls.py exactly.
const (
	PathToken           = "/api/token/"
	PathTokenRefresh    = "/api/token/refresh/"
	PathRegister        = "/api/register/"
	PathUserInfo        = "/api/user-info/"
	PathCheckAdmin      = "/api/check-admin-permission/"
	PathAllUsers        = "/api/get-all-users/"
	PathUpdateUserPerms = "/api/update-user-permissions/"
	PathSessions        = "/api/get-sessions/"
	PathCreateSession   = "/api/create-session/"
	PathMessages        = "/api/get-messages/" // + ":session_id/"
	PathSendMessage     = "/api/send-message/"
	PathDeleteSession   = "/api/delete-session/" // + ":session_id/"
)

// Client is the single HTTP gateway to the backend. All services share one
// instance so that token decoration, 401 handling, pacing and logging are
// uniform.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *token.Store
	hub        *session.Hub

	// limiter paces outbound requests; chat sends are user-driven but a
	// stuck key or scripted CLI use should not hammer the backend.
	limiter *rate.Limiter

	// refreshMu serializes the reactive token refresh so that concurrent
	// 401s produce one refresh, not a stampede.
	refreshMu sync.Mutex
}

// NewClient creates a gateway client for the given base URL.
func NewClient(baseURL string, tokens *token.Store, hub *session.Hub) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   DefaultTimeout,
		},
		tokens:  tokens,
		hub:     hub,
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 10),
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST DECORATION
// =============================================================================

// setHeaders attaches the standard headers, including the bearer token.
//
// KNOWN ISSUE: when no token is stored the Authorization header is sent as
// the literal "Bearer undefined", mirroring the web frontend reading an
// absent localStorage key. The backend treats it as any other invalid token
// (401); fixing it here would silently change observable behavior, so it is
// preserved and documented instead.
func (c *Client) setHeaders(req *http.Request) {
	access, err := c.tokens.AccessToken()
	if err != nil {
		access = "undefined"
	}
	req.Header.Set("Authorization", "Bearer "+access)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "zatgpt-tui/1.0")
}

// =============================================================================
// SECURE LOGGING (status and duration only, never headers or bodies)
// =============================================================================

func (c *Client) logRequest(req *http.Request) {
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}

// =============================================================================
// CORE REQUEST PATH
// =============================================================================

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out, true)
}

// Post performs a POST request with a JSON body and decodes the response
// into out. Either may be nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out, true)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, true)
}

// isAuthEndpoint reports whether a 401 from this path means "bad
// credentials", not "stale access token". Refreshing in reaction to those
// would loop.
func isAuthEndpoint(path string) bool {
	return strings.HasPrefix(path, "/api/token")
}

// do performs a single request with token decoration and reactive 401
// handling. allowRefresh guards the one replay after a successful refresh.
// No other retry is performed anywhere in the client.
func (c *Client) do(ctx context.Context, method, path string, body, out any, allowRefresh bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	c.logRequest(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)

	// SECURITY: Clear Authorization header after the request so a captured
	// *http.Request in logs or panics never carries the token.
	req.Header.Del("Authorization")

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	respBody, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && allowRefresh && !isAuthEndpoint(path) {
		// Reactive refresh-on-401: one refresh, one replay. If either
		// fails the session is gone and the active screen is told so.
		if refreshErr := c.RefreshTokens(ctx); refreshErr != nil {
			c.invalidateSession("session expired")
			return fmt.Errorf("%w: token rejected and refresh failed", ErrUnauthenticated)
		}
		return c.do(ctx, method, path, body, out, false)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := decodeError(resp.StatusCode, respBody)
		if resp.StatusCode == http.StatusUnauthorized && !isAuthEndpoint(path) {
			c.invalidateSession("session expired")
		}
		return err
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// =============================================================================
// TOKEN REFRESH
// =============================================================================

// refreshRequest/refreshResponse model POST /api/token/refresh/.
type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// RefreshTokens mints a new access token from the stored refresh token and
// persists it (and the refresh token too, when the backend rotates it).
// Returns ErrUnauthenticated when no refresh token is stored or the backend
// rejects it - the caller must treat that as "re-login required".
func (c *Client) RefreshTokens(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	refresh, err := c.tokens.RefreshToken()
	if err != nil {
		return fmt.Errorf("%w: no refresh token stored", ErrUnauthenticated)
	}

	var resp refreshResponse
	if err := c.do(ctx, http.MethodPost, PathTokenRefresh, refreshRequest{Refresh: refresh}, &resp, false); err != nil {
		if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrValidation) {
			return fmt.Errorf("%w: refresh token rejected", ErrUnauthenticated)
		}
		return err
	}
	if resp.Access == "" {
		return fmt.Errorf("%w: refresh response carried no access token", ErrUnauthenticated)
	}

	return c.tokens.SetPair(resp.Access, resp.Refresh)
}

// invalidateSession clears both tokens and publishes the session-invalidated
// signal. It deliberately does not navigate: interceptors live outside the
// view tree, so the active screen reacts to the signal instead.
func (c *Client) invalidateSession(reason string) {
	_ = c.tokens.Clear()
	if c.hub != nil {
		c.hub.Publish(session.Event{Reason: reason})
	}
}
