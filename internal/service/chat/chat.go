// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements conversation operations: listing sessions,
// reading message history and sending messages. Sending is synchronous
// from the caller's point of view; the backend only answers once the
// assistant reply exists.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zatgpt/zatgpt-tui/internal/api"
	"github.com/zatgpt/zatgpt-tui/internal/model"
)

// Service performs chat operations over the shared gateway client.
type Service struct {
	client *api.Client
}

// NewService creates a chat service.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// validateSessionID rejects anything that is not a UUID before it is
// spliced into a request path.
// SECURITY: Session IDs come back from the server but also from local
// state files; validating them here keeps a tampered state file from
// turning into path injection.
func validateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid session id %q", api.ErrValidation, id)
	}
	return nil
}

type sessionsResponse struct {
	Sessions []model.Session `json:"sessions"`
}

// ListSessions fetches every conversation the caller owns. Ordering and
// date grouping are presentation concerns; see model.GroupSessionsByDate.
func (s *Service) ListSessions(ctx context.Context) ([]model.Session, error) {
	var resp sessionsResponse
	if err := s.client.Get(ctx, api.PathSessions, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

// CreateSession starts a new empty conversation and returns its id.
func (s *Service) CreateSession(ctx context.Context) (string, error) {
	var resp createSessionResponse
	if err := s.client.Post(ctx, api.PathCreateSession, nil, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("create session: backend returned no session_id")
	}
	return resp.SessionID, nil
}

type messagesResponse struct {
	Messages []model.Message `json:"messages"`
}

// ListMessages fetches the full history of one conversation, oldest first.
func (s *Service) ListMessages(ctx context.Context, sessionID string) ([]model.Message, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	var resp messagesResponse
	if err := s.client.Get(ctx, api.PathMessages+sessionID+"/", &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

type sendRequest struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
	Role      string `json:"role"`
}

type sendResponse struct {
	AssistantMessage string `json:"assistant_message"`
	SessionID        string `json:"session_id"`
}

// SendMessage submits one user message and returns the assistant's reply.
// Empty or whitespace-only content is rejected locally. There is no retry:
// a failed send surfaces to the caller, who decides what to do with the
// draft.
func (s *Service) SendMessage(ctx context.Context, sessionID, content string) (model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return model.Message{}, fmt.Errorf("%w: message content is empty", api.ErrValidation)
	}
	if err := validateSessionID(sessionID); err != nil {
		return model.Message{}, err
	}

	var resp sendResponse
	err := s.client.Post(ctx, api.PathSendMessage, sendRequest{
		SessionID: sessionID,
		Content:   content,
		Role:      model.RoleUser.String(),
	}, &resp)
	if err != nil {
		return model.Message{}, fmt.Errorf("%w: %w", api.ErrSendFailed, err)
	}
	return model.NewAssistantMessage(resp.AssistantMessage), nil
}

// DeleteSession removes a conversation and its history.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	return s.client.Delete(ctx, api.PathDeleteSession+sessionID+"/")
}
