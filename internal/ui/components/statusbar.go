// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zatgpt/zatgpt-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current screen status.
type Status int

const (
	StatusReady Status = iota
	StatusLoading
	StatusSending
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusLoading:
		return "Loading..."
	case StatusSending:
		return "Sending..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape indicator for the status.
// ACCESSIBILITY: Distinct shapes alongside colors for colorblind users.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusLoading, StatusSending:
		return styles.StatusIndicators.Off
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// Shortcut is one key hint shown on the right side of the bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom status line: state on the left, key hints on the
// right.
type StatusBar struct {
	Status    Status
	Detail    string // extra text after the status ("3 sessions")
	Width     int
	Shortcuts []Shortcut
	theme     *styles.Theme
}

// NewStatusBar creates a StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status: StatusReady,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the bar width.
func (b *StatusBar) SetWidth(width int) {
	b.Width = width
}

// View renders the status bar line.
func (b *StatusBar) View() string {
	statusStyle := b.theme.StatusIdle
	switch b.Status {
	case StatusLoading, StatusSending:
		statusStyle = b.theme.StatusBusy
	case StatusError:
		statusStyle = b.theme.ErrorTitle
	}

	left := statusStyle.Render(b.Status.Icon() + " " + b.Status.String())
	if b.Detail != "" {
		left += "  " + b.theme.ShortcutDesc.Render(b.Detail)
	}

	var hints []string
	for _, sc := range b.Shortcuts {
		hints = append(hints, b.theme.ShortcutKey.Render(sc.Key)+" "+b.theme.ShortcutDesc.Render(sc.Desc))
	}
	right := strings.Join(hints, "  ")

	// lipgloss.Width strips the ANSI sequences the styled segments carry.
	gap := b.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Too narrow for hints; the state always wins.
		return b.theme.StatusBar.Width(b.Width).Render(left)
	}
	return b.theme.StatusBar.Width(b.Width).Render(left + strings.Repeat(" ", gap) + right)
}
