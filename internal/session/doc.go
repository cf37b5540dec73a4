// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks client-side session state: the process-wide
// "session invalidated" signal and the last selected chat session.
//
// The signal exists because the HTTP layer must never navigate. When the
// gateway sees an irrecoverable 401 it clears the stored tokens and
// publishes an event here; whichever screen is active observes the event
// and routes to the login screen itself.
package session
