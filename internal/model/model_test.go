// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

func TestVisibleMessages_FiltersSystem(t *testing.T) {
	history := []Message{
		{Role: RoleSystem, Content: "You are a helpful assistant."},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleSystem, Content: "injected"},
		{Role: RoleUser, Content: "bye"},
	}

	visible := VisibleMessages(history)
	if len(visible) != 3 {
		t.Fatalf("len = %d, want 3", len(visible))
	}
	for i, m := range visible {
		if m.IsSystem() {
			t.Errorf("message %d is system-role", i)
		}
	}
	// Order preserved.
	if visible[0].Content != "hi" || visible[1].Content != "hello" || visible[2].Content != "bye" {
		t.Errorf("order not preserved: %+v", visible)
	}
}

func TestVisibleMessages_Empty(t *testing.T) {
	if got := VisibleMessages(nil); len(got) != 0 {
		t.Errorf("VisibleMessages(nil) = %v", got)
	}
	only := []Message{{Role: RoleSystem, Content: "prompt"}}
	if got := VisibleMessages(only); len(got) != 0 {
		t.Errorf("system-only history should render empty, got %v", got)
	}
}

func TestGroupSessionsByDate(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	sessions := []Session{
		{SessionID: "a", Title: "old", Date: "2024-12-01",
			StartTime: time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)},
		{SessionID: "b", Title: "today-early", Date: "2025-03-15",
			StartTime: time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)},
		{SessionID: "c", Title: "yesterday", Date: "2025-03-14",
			StartTime: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)},
		{SessionID: "d", Title: "today-late", Date: "2025-03-15",
			StartTime: time.Date(2025, 3, 15, 11, 0, 0, 0, time.UTC)},
	}

	groups := GroupSessionsByDate(sessions, now)
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}

	if groups[0].Label != "Today" {
		t.Errorf("group 0 label = %q, want Today", groups[0].Label)
	}
	if groups[1].Label != "Yesterday" {
		t.Errorf("group 1 label = %q, want Yesterday", groups[1].Label)
	}
	if groups[2].Label != "December 1, 2024" {
		t.Errorf("group 2 label = %q", groups[2].Label)
	}

	// Newest session first within the Today group.
	today := groups[0].Sessions
	if len(today) != 2 || today[0].SessionID != "d" || today[1].SessionID != "b" {
		t.Errorf("today group order wrong: %+v", today)
	}
}

func TestGroupSessionsByDate_BadDateFallsBackToStartTime(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	sessions := []Session{
		{SessionID: "x", Date: "garbage",
			StartTime: time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)},
	}

	groups := GroupSessionsByDate(sessions, now)
	if len(groups) != 1 || groups[0].Label != "Today" {
		t.Errorf("fallback grouping wrong: %+v", groups)
	}
}

func TestUser_WithPermission_Coupling(t *testing.T) {
	tests := []struct {
		name  string
		start User
		field string
		value bool
		want  User
	}{
		{
			name:  "superuser on forces staff on",
			start: User{UUID: "u1"},
			field: "is_superuser", value: true,
			want: User{UUID: "u1", IsStaff: true, IsSuperuser: true},
		},
		{
			name:  "staff off forces superuser off",
			start: User{UUID: "u1", IsStaff: true, IsSuperuser: true},
			field: "is_staff", value: false,
			want: User{UUID: "u1"},
		},
		{
			name:  "staff on alone",
			start: User{UUID: "u1"},
			field: "is_staff", value: true,
			want: User{UUID: "u1", IsStaff: true},
		},
		{
			name:  "active toggle independent",
			start: User{UUID: "u1", IsStaff: true},
			field: "is_active", value: true,
			want: User{UUID: "u1", IsActive: true, IsStaff: true},
		},
		{
			name:  "superuser off leaves staff",
			start: User{UUID: "u1", IsStaff: true, IsSuperuser: true},
			field: "is_superuser", value: false,
			want: User{UUID: "u1", IsStaff: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start.WithPermission(tt.field, tt.value)
			if got != tt.want {
				t.Errorf("WithPermission(%s, %v) = %+v, want %+v",
					tt.field, tt.value, got, tt.want)
			}
		})
	}
}

func TestAdminRole_CanEdit(t *testing.T) {
	if !RoleSuperuser.CanEdit("is_active") || !RoleSuperuser.CanEdit("is_superuser") || !RoleSuperuser.CanEdit("is_staff") {
		t.Error("superuser should edit all three fields")
	}
	if RoleStaff.CanEdit("is_active") || RoleStaff.CanEdit("is_superuser") {
		t.Error("staff must not edit is_active or is_superuser")
	}
	if !RoleStaff.CanEdit("is_staff") {
		t.Error("staff should edit is_staff")
	}
	if RoleStaff.CanEdit("username") {
		t.Error("unknown fields are never editable")
	}
}

func TestUser_MatchesSearch(t *testing.T) {
	u := User{Username: "Alice", Email: "alice@Example.COM"}

	tests := []struct {
		term string
		want bool
	}{
		{"", true},
		{"ali", true},
		{"ALI", true},
		{"example.com", true},
		{"EXAMPLE", true},
		{"bob", false},
	}
	for _, tt := range tests {
		if got := u.MatchesSearch(tt.term); got != tt.want {
			t.Errorf("MatchesSearch(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestRole_DisplayName(t *testing.T) {
	if RoleUser.DisplayName() != "You" {
		t.Errorf("user display = %q", RoleUser.DisplayName())
	}
	if RoleAssistant.DisplayName() != "Assistant" {
		t.Errorf("assistant display = %q", RoleAssistant.DisplayName())
	}
	if Role("other").DisplayName() != "other" {
		t.Error("unknown roles pass through")
	}
}
