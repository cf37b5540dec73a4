// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"time"
)

// =============================================================================
// CHAT SESSION
// =============================================================================

// Session represents a chat session as returned by GET /api/get-sessions/.
// The title is derived server-side from the first user message; Date is the
// calendar date of StartTime in the backend's timezone, already split out so
// the client does not re-derive it.
type Session struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	Date      string    `json:"date"` // "2006-01-02"
}

// Day returns the session's calendar date. Falls back to StartTime when the
// Date field is missing or malformed.
func (s Session) Day() time.Time {
	if d, err := time.Parse("2006-01-02", s.Date); err == nil {
		return d
	}
	return time.Date(s.StartTime.Year(), s.StartTime.Month(), s.StartTime.Day(),
		0, 0, 0, 0, s.StartTime.Location())
}

// =============================================================================
// DATE GROUPING
// =============================================================================

// SessionGroup is a set of sessions sharing a calendar date, labeled for
// sidebar display.
type SessionGroup struct {
	Label    string
	Day      time.Time
	Sessions []Session
}

// GroupSessionsByDate groups sessions by calendar date for display, newest
// day first, newest session first within a day. The backend returns the
// list unordered; grouping and ordering are purely client-side.
func GroupSessionsByDate(sessions []Session, now time.Time) []SessionGroup {
	byDay := make(map[time.Time][]Session)
	for _, s := range sessions {
		day := s.Day()
		byDay[day] = append(byDay[day], s)
	}

	groups := make([]SessionGroup, 0, len(byDay))
	for day, ss := range byDay {
		sort.Slice(ss, func(i, j int) bool {
			return ss[i].StartTime.After(ss[j].StartTime)
		})
		groups = append(groups, SessionGroup{
			Label:    dayLabel(day, now),
			Day:      day,
			Sessions: ss,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Day.After(groups[j].Day)
	})
	return groups
}

// dayLabel renders a group heading relative to "now".
func dayLabel(day, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, day.Location())
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	case day.Year() == today.Year():
		return day.Format("January 2")
	default:
		return day.Format("January 2, 2006")
	}
}
