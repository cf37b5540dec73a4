// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation screen: the session sidebar, the
// message thread and the input line.
//
// This file defines the Bubble Tea message types used by the screen.
// Messages are organized into the following categories:
//   - Loading: session list and message history arrival
//   - Sending: send completion and failure
//   - Session lifecycle: creation and deletion
package chat

import (
	"github.com/zatgpt/zatgpt-tui/internal/model"
)

// =============================================================================
// LOADING MESSAGES
// =============================================================================

// SessionsLoadedMsg delivers the refreshed session list.
type SessionsLoadedMsg struct {
	Sessions []model.Session
}

// HistoryLoadedMsg delivers the message history of one session.
type HistoryLoadedMsg struct {
	SessionID string
	Messages  []model.Message
}

// LoadErrorMsg signals that a sidebar or history load failed.
type LoadErrorMsg struct {
	Err error
}

// =============================================================================
// SENDING MESSAGES
// =============================================================================

// SendCompleteMsg delivers the assistant reply for a sent message. SessionID
// names the session the backend wrote to, which is the new session when the
// send had to create one first.
type SendCompleteMsg struct {
	SessionID string
	Reply     model.Message
	Created   bool // a session was created as part of this send
}

// SendErrorMsg signals that a send failed. Draft carries the original
// content so the input can be restored when the config asks for it.
type SendErrorMsg struct {
	SessionID string
	Draft     string
	Err       error
}

// =============================================================================
// SESSION LIFECYCLE MESSAGES
// =============================================================================

// SessionDeletedMsg signals that a session was removed.
type SessionDeletedMsg struct {
	SessionID string
}
