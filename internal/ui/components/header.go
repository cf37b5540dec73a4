// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zatgpt/zatgpt-tui/internal/ui/styles"
	"github.com/zatgpt/zatgpt-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: brand on the left, signed-in identity on the
// right, screen name in the middle.
type Header struct {
	Title    string // current screen name ("Chat", "User Management")
	Username string // signed-in account, empty before login
	IsAdmin  bool
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a Header component.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "ZatGPT",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetIdentity updates the signed-in account shown on the right.
func (h *Header) SetIdentity(username string, isAdmin bool) {
	h.Username = username
	h.IsAdmin = isAdmin
}

// View renders the header line.
func (h *Header) View() string {
	brand := h.theme.HeaderBrand.Render("ZatGPT")

	title := ""
	if h.Title != "" && h.Title != "ZatGPT" {
		title = h.theme.HeaderTitle.Render(h.Title)
	}

	identity := ""
	if h.Username != "" {
		name := util.TruncateWidth(h.Username, 24)
		if h.IsAdmin {
			name += " (admin)"
		}
		identity = h.theme.HeaderSubtitle.Render(name)
	}

	// Brand left, title centered, identity right. Fill with spaces rather
	// than lipgloss.Place so narrow terminals degrade to simple truncation.
	// lipgloss.Width, not runewidth: the segments carry ANSI sequences.
	used := lipgloss.Width(brand) + lipgloss.Width(title) + lipgloss.Width(identity)
	gap := h.Width - used - 4
	if gap < 2 {
		return h.theme.Header.Width(h.Width).Render(brand + " " + title)
	}
	left := gap / 2
	right := gap - left

	line := brand + strings.Repeat(" ", left) + title + strings.Repeat(" ", right) + identity
	return h.theme.Header.Width(h.Width).Render(line)
}

// Divider renders a horizontal rule matching the header width.
func (h *Header) Divider() string {
	return lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(strings.Repeat("-", max(h.Width, 1)))
}
