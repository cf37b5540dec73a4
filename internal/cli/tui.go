// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - launches the full-screen bubbletea interface.
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zatgpt/zatgpt-tui/internal/session"
	"github.com/zatgpt/zatgpt-tui/internal/token"
	"github.com/zatgpt/zatgpt-tui/internal/ui/app"
)

// HandleTUI starts the full-screen interface. This is the default command.
func HandleTUI(args Args) int {
	wired, err := NewApp(args)
	if err != nil {
		return fail(err)
	}

	if !IsStdoutTTY() {
		fmt.Fprintln(os.Stderr, "the TUI needs an interactive terminal; see 'zatgpt help' for scriptable commands")
		return 1
	}

	// RELIABILITY: credentials changed by another process (a second
	// terminal running logout, or a fresh login) invalidate this process
	// too, via the same hub event the API layer publishes on refresh
	// failure.
	watcher, err := token.Watch(wired.Tokens, func() {
		if !wired.Tokens.HasTokens() {
			wired.Hub.Publish(session.Event{Reason: "signed out in another terminal"})
		}
	})
	if err == nil {
		defer watcher.Close()
	}

	shell := app.New(app.Services{
		Auth:  wired.Auth,
		Chat:  wired.Chat,
		Admin: wired.Admin,
	}, wired.Config, wired.Hub)
	defer shell.Close()

	program := tea.NewProgram(shell, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fail(err)
	}
	return 0
}
