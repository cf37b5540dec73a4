// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - lipgloss styles shared by the CLI command handlers.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zatgpt/zatgpt-tui/internal/ui/styles"
)

var (
	headingStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	successStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)
)
