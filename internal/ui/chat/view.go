// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zatgpt/zatgpt-tui/internal/ui/components"
)

// View renders the conversation screen.
func (m Model) View() string {
	m.status.Detail = ""
	if n := m.sidebar.Len(); n > 0 {
		m.status.Detail = strconv.Itoa(n) + " sessions"
	}
	m.status.Shortcuts = []components.Shortcut{
		{Key: "enter", Desc: "send"},
		{Key: "tab", Desc: "sessions"},
		{Key: "ctrl+n", Desc: "new"},
		{Key: "ctrl+c", Desc: "quit"},
	}

	main := m.viewMain()
	body := main
	if m.showSidebar() {
		body = lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.sidebar.View(m.theme, m.focusSidebar),
			main,
		)
	}

	sections := []string{body}
	if m.toasts.Len() > 0 {
		sections = append(sections, m.toasts.View())
	}
	sections = append(sections, m.status.View())
	return strings.Join(sections, "\n")
}

// viewMain renders the thread column: viewport, activity line, input.
func (m Model) viewMain() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.spinner.IsActive() {
		b.WriteString(m.spinner.View())
	}
	b.WriteString("\n")

	prompt := m.theme.InputPrompt.Render("> ")
	b.WriteString(m.theme.InputContainer.Render(prompt + m.input.View()))
	return b.String()
}

