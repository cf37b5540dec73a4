// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zatgpt/zatgpt-tui/internal/api"
	"github.com/zatgpt/zatgpt-tui/internal/model"
	"github.com/zatgpt/zatgpt-tui/internal/ui/components"
)

// Update handles messages for the conversation screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionsLoadedMsg:
		m.loading = false
		m.spinner.Stop()
		m.sidebar.SetSessions(msg.Sessions, time.Now())
		if m.sessionID != "" {
			m.sidebar.Select(m.sessionID)
		}
		m.status.Status = components.StatusReady
		return m, nil

	case initialLoadedMsg:
		m.loading = false
		m.spinner.Stop()
		m.sidebar.SetSessions(msg.sessions, time.Now())
		m.sidebar.Select(msg.sessionID)
		m.sessionID = msg.sessionID
		m.messages = msg.history
		m.status.Status = components.StatusReady
		m.refreshViewport()
		return m, nil

	case HistoryLoadedMsg:
		// A stale load for a session the user already left is dropped.
		if msg.SessionID != m.sessionID {
			return m, nil
		}
		m.loading = false
		m.spinner.Stop()
		m.messages = msg.Messages
		m.status.Status = components.StatusReady
		m.refreshViewport()
		return m, nil

	case SendCompleteMsg:
		// A reply for a thread the user already left must not land in the
		// one that is open now. A Created reply matches a still-fresh chat
		// because the screen had no id when the send went out.
		if msg.SessionID != m.sessionID && !(msg.Created && m.sessionID == "") {
			if msg.Created {
				// The abandoned send still created a session; show it.
				return m, loadSessionsCmd(m.ctx, m.svc)
			}
			return m, nil
		}
		m.sending = false
		m.optimistic = false
		m.spinner.Stop()
		m.input.Focus()
		m.status.Status = components.StatusReady
		m.messages = append(m.messages, msg.Reply)
		m.refreshViewport()
		if msg.Created {
			m.sessionID = msg.SessionID
			m.persistSelection()
			// The backend titles the session from the first message, so
			// the sidebar needs a refresh to show it.
			return m, loadSessionsCmd(m.ctx, m.svc)
		}
		return m, nil

	case SendErrorMsg:
		if msg.SessionID != m.sessionID && m.sessionID != "" {
			// The failed send belongs to a thread the user already left;
			// surface the error but leave the open thread alone.
			return m, m.toasts.Push(components.NewErrorToast(api.UserMessage(msg.Err)))
		}
		m.sending = false
		m.spinner.Stop()
		m.input.Focus()
		m.status.Status = components.StatusError

		draft := m.dropOptimistic()
		if draft == "" {
			draft = msg.Draft
		}
		if m.cfg.UI.RestoreDraftOnError {
			m.input.SetValue(draft)
			m.input.CursorEnd()
		}
		m.refreshViewport()

		cmds = append(cmds, m.toasts.Push(components.NewErrorToast(api.UserMessage(msg.Err))))
		if msg.SessionID != "" && m.sessionID == "" {
			// The session was created before the send failed; adopt it so
			// a retry does not create another one.
			m.sessionID = msg.SessionID
			m.persistSelection()
			cmds = append(cmds, loadSessionsCmd(m.ctx, m.svc))
		}
		return m, tea.Batch(cmds...)

	case SessionDeletedMsg:
		if msg.SessionID == m.sessionID {
			m.newChat()
		}
		return m, loadSessionsCmd(m.ctx, m.svc)

	case LoadErrorMsg:
		m.loading = false
		m.spinner.Stop()
		m.status.Status = components.StatusError
		return m, m.toasts.Push(components.NewErrorToast(api.UserMessage(msg.Err)))

	case components.ToastExpiredMsg:
		m.toasts.Expire(msg.ID)
		return m, nil
	}

	// Components that animate or buffer input get the remaining messages.
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.sending && !m.focusSidebar {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleKey routes key presses by focus area.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NewChat):
		m.newChat()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.status.Status = components.StatusLoading
		cmds := []tea.Cmd{loadSessionsCmd(m.ctx, m.svc)}
		if m.sessionID != "" {
			cmds = append(cmds, loadHistoryCmd(m.ctx, m.svc, m.sessionID))
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.keys.FocusSidebar):
		if !m.showSidebar() {
			return m, nil
		}
		m.focusSidebar = !m.focusSidebar
		if m.focusSidebar {
			m.input.Blur()
		} else {
			m.input.Focus()
		}
		return m, nil
	}

	if m.focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.MoveUp()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.sidebar.MoveDown()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if sel := m.sidebar.Selected(); sel != nil && sel.SessionID != m.sessionID {
			m.status.Status = components.StatusLoading
			return m, m.openSession(sel.SessionID)
		}
		return m, nil
	case key.Matches(msg, m.keys.DeleteSession):
		if sel := m.sidebar.Selected(); sel != nil {
			return m, deleteSessionCmd(m.ctx, m.svc, sel.SessionID)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown),
		key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.sending {
		// Input is locked while a send is in flight. Typing is dropped
		// rather than queued so nothing is sent by surprise later.
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit performs the optimistic send: the user message lands in the thread
// immediately, the input clears, and the draft only comes back if the send
// fails and the config asks for restoration.
func (m Model) submit() (Model, tea.Cmd) {
	if m.sending {
		return m, nil
	}
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}

	m.messages = append(m.messages, model.NewUserMessage(content))
	m.optimistic = true
	m.sending = true
	m.input.SetValue("")
	m.status.Status = components.StatusSending
	m.spinner.SetMessage("Waiting for reply")
	m.refreshViewport()

	return m, tea.Batch(
		sendCmd(m.ctx, m.svc, m.sessionID, content),
		m.spinner.Start(),
	)
}
