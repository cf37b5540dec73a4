// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/zatgpt/zatgpt-tui/internal/model"
	chatsvc "github.com/zatgpt/zatgpt-tui/internal/service/chat"
)

// =============================================================================
// COMMAND CONSTRUCTORS
// =============================================================================

// loadSessionsCmd fetches the session list.
func loadSessionsCmd(ctx context.Context, svc *chatsvc.Service) tea.Cmd {
	return func() tea.Msg {
		sessions, err := svc.ListSessions(ctx)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}
		return SessionsLoadedMsg{Sessions: sessions}
	}
}

// loadHistoryCmd fetches the message history of one session.
func loadHistoryCmd(ctx context.Context, svc *chatsvc.Service, sessionID string) tea.Cmd {
	return func() tea.Msg {
		msgs, err := svc.ListMessages(ctx, sessionID)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}
		return HistoryLoadedMsg{SessionID: sessionID, Messages: msgs}
	}
}

// initialLoadCmd fetches the session list and, when a session is already
// selected, its history in parallel. A session list failure fails the load;
// a history failure only drops the remembered selection, since that session
// may have been deleted from another client since the last run.
func initialLoadCmd(ctx context.Context, svc *chatsvc.Service, sessionID string) tea.Cmd {
	if sessionID == "" {
		return loadSessionsCmd(ctx, svc)
	}
	return func() tea.Msg {
		var (
			sessions   []model.Session
			history    []model.Message
			historyErr error
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			sessions, err = svc.ListSessions(gctx)
			return err
		})
		g.Go(func() error {
			history, historyErr = svc.ListMessages(gctx, sessionID)
			return nil
		})
		if err := g.Wait(); err != nil {
			return LoadErrorMsg{Err: err}
		}
		if historyErr != nil {
			return initialLoadedMsg{sessions: sessions}
		}
		return initialLoadedMsg{
			sessions:  sessions,
			sessionID: sessionID,
			history:   history,
		}
	}
}

// initialLoadedMsg carries the joined result of the parallel initial load.
type initialLoadedMsg struct {
	sessions  []model.Session
	sessionID string
	history   []model.Message
}

// sendCmd submits one message, creating a session first when the screen has
// none. The two-step path keeps empty sessions from piling up: a session
// only exists once something was actually said.
func sendCmd(ctx context.Context, svc *chatsvc.Service, sessionID, content string) tea.Cmd {
	return func() tea.Msg {
		created := false

		id := sessionID
		if id == "" {
			newID, err := svc.CreateSession(ctx)
			if err != nil {
				return SendErrorMsg{Draft: content, Err: err}
			}
			id = newID
			created = true
		}

		reply, err := svc.SendMessage(ctx, id, content)
		if err != nil {
			return SendErrorMsg{SessionID: id, Draft: content, Err: err}
		}
		return SendCompleteMsg{SessionID: id, Reply: reply, Created: created}
	}
}

// deleteSessionCmd removes a session.
func deleteSessionCmd(ctx context.Context, svc *chatsvc.Service, sessionID string) tea.Cmd {
	return func() tea.Msg {
		if err := svc.DeleteSession(ctx, sessionID); err != nil {
			return LoadErrorMsg{Err: err}
		}
		return SessionDeletedMsg{SessionID: sessionID}
	}
}
