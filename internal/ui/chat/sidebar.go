// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/zatgpt/zatgpt-tui/internal/model"
	"github.com/zatgpt/zatgpt-tui/internal/ui/styles"
	"github.com/zatgpt/zatgpt-tui/internal/util"
)

// =============================================================================
// SESSION SIDEBAR
// =============================================================================

// sidebarRow is one navigable line: either a date group label or a session.
type sidebarRow struct {
	label   string
	session *model.Session // nil for group labels
}

// Sidebar is the date-grouped session list on the left of the screen.
type Sidebar struct {
	rows   []sidebarRow
	cursor int // index into rows, always on a session row when any exist

	width  int
	height int
	scroll int
}

// NewSidebar creates an empty sidebar.
func NewSidebar() *Sidebar {
	return &Sidebar{width: 28}
}

// SetSize updates the render dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// SetSessions rebuilds the rows from a fresh session list, keeping the
// cursor on the previously selected session when it still exists.
func (s *Sidebar) SetSessions(sessions []model.Session, now time.Time) {
	var keep string
	if sel := s.Selected(); sel != nil {
		keep = sel.SessionID
	}

	groups := model.GroupSessionsByDate(sessions, now)
	s.rows = s.rows[:0]
	for _, g := range groups {
		s.rows = append(s.rows, sidebarRow{label: g.Label})
		for i := range g.Sessions {
			sess := g.Sessions[i]
			s.rows = append(s.rows, sidebarRow{session: &sess})
		}
	}

	s.cursor = s.firstSessionRow()
	if keep != "" {
		for i, row := range s.rows {
			if row.session != nil && row.session.SessionID == keep {
				s.cursor = i
				break
			}
		}
	}
	s.clampScroll()
}

func (s *Sidebar) firstSessionRow() int {
	for i, row := range s.rows {
		if row.session != nil {
			return i
		}
	}
	return 0
}

// Selected returns the session under the cursor, or nil when the list is
// empty.
func (s *Sidebar) Selected() *model.Session {
	if s.cursor >= 0 && s.cursor < len(s.rows) && s.rows[s.cursor].session != nil {
		return s.rows[s.cursor].session
	}
	return nil
}

// Select moves the cursor onto the session with the given id.
func (s *Sidebar) Select(sessionID string) {
	for i, row := range s.rows {
		if row.session != nil && row.session.SessionID == sessionID {
			s.cursor = i
			s.clampScroll()
			return
		}
	}
}

// MoveUp moves the cursor to the previous session row, skipping labels.
func (s *Sidebar) MoveUp() {
	for i := s.cursor - 1; i >= 0; i-- {
		if s.rows[i].session != nil {
			s.cursor = i
			s.clampScroll()
			return
		}
	}
}

// MoveDown moves the cursor to the next session row, skipping labels.
func (s *Sidebar) MoveDown() {
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].session != nil {
			s.cursor = i
			s.clampScroll()
			return
		}
	}
}

// Len returns the number of sessions in the sidebar.
func (s *Sidebar) Len() int {
	n := 0
	for _, row := range s.rows {
		if row.session != nil {
			n++
		}
	}
	return n
}

func (s *Sidebar) clampScroll() {
	if s.height <= 0 {
		return
	}
	if s.cursor < s.scroll {
		s.scroll = s.cursor
	}
	if s.cursor >= s.scroll+s.height {
		s.scroll = s.cursor - s.height + 1
	}
}

// View renders the sidebar.
func (s *Sidebar) View(theme *styles.Theme, focused bool) string {
	var b strings.Builder
	b.WriteString(theme.NewChatButton.Render("+ New chat"))
	b.WriteString("\n")

	end := len(s.rows)
	if s.height > 0 && s.scroll+s.height < end {
		end = s.scroll + s.height
	}
	for i := s.scroll; i < end; i++ {
		row := s.rows[i]
		b.WriteString("\n")
		if row.session == nil {
			b.WriteString(theme.SessionGroupLabel.Render(util.TruncateWidth(row.label, s.width-2)))
			continue
		}

		title := row.session.Title
		if title == "" {
			title = "Untitled"
		}
		title = util.TruncateWidth(title, s.width-4)
		if i == s.cursor && focused {
			b.WriteString(theme.SessionItemSelected.Render(title))
		} else if i == s.cursor {
			b.WriteString(theme.SessionItem.Bold(true).Render(title))
		} else {
			b.WriteString(theme.SessionItem.Render(title))
		}
	}

	style := theme.Sidebar
	if focused {
		style = theme.SidebarFocused
	}
	return style.Width(s.width).Render(b.String())
}
