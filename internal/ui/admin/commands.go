// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zatgpt/zatgpt-tui/internal/model"
	adminsvc "github.com/zatgpt/zatgpt-tui/internal/service/admin"
)

// =============================================================================
// MESSAGES
// =============================================================================

// PermissionCheckedMsg delivers the caller's own admin standing.
type PermissionCheckedMsg struct {
	Perm adminsvc.Permission
}

// UsersLoadedMsg delivers the full user list.
type UsersLoadedMsg struct {
	Users []model.User
}

// UpdateDoneMsg confirms a permission update reached the backend.
type UpdateDoneMsg struct {
	User model.User
}

// UpdateErrorMsg signals a failed update. The screen reconciles by
// reloading, since the optimistic row may now disagree with the backend.
type UpdateErrorMsg struct {
	Err error
}

// LoadErrorMsg signals a failed permission check or list load.
type LoadErrorMsg struct {
	Err error
}

// =============================================================================
// COMMANDS
// =============================================================================

func checkPermissionCmd(ctx context.Context, svc *adminsvc.Service) tea.Cmd {
	return func() tea.Msg {
		perm, err := svc.CheckPermission(ctx)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}
		return PermissionCheckedMsg{Perm: perm}
	}
}

func loadUsersCmd(ctx context.Context, svc *adminsvc.Service) tea.Cmd {
	return func() tea.Msg {
		users, err := svc.ListUsers(ctx)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}
		return UsersLoadedMsg{Users: users}
	}
}

func updateUserCmd(ctx context.Context, svc *adminsvc.Service, user model.User) tea.Cmd {
	return func() tea.Msg {
		if err := svc.UpdatePermissions(ctx, user); err != nil {
			return UpdateErrorMsg{Err: err}
		}
		return UpdateDoneMsg{User: user}
	}
}
