// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zatgpt/zatgpt-tui/internal/api"
	"github.com/zatgpt/zatgpt-tui/internal/config"
	adminsvc "github.com/zatgpt/zatgpt-tui/internal/service/admin"
	authsvc "github.com/zatgpt/zatgpt-tui/internal/service/auth"
	chatsvc "github.com/zatgpt/zatgpt-tui/internal/service/chat"
	"github.com/zatgpt/zatgpt-tui/internal/session"
	"github.com/zatgpt/zatgpt-tui/internal/token"
)

func newShell(t *testing.T) (Model, *session.Hub) {
	t.Helper()
	t.Setenv("ZATGPT_CONFIG_DIR", t.TempDir())
	tokens := token.NewStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
	hub := session.NewHub()
	client := api.NewClient("http://127.0.0.1:1", tokens, hub)

	m := New(Services{
		Auth:  authsvc.NewService(client, tokens),
		Chat:  chatsvc.NewService(client),
		Admin: adminsvc.NewService(client),
	}, config.Default(), hub)
	t.Cleanup(m.Close)

	resized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return resized.(Model), hub
}

func TestStartsChecking(t *testing.T) {
	m, _ := newShell(t)
	if m.route != RouteChecking {
		t.Errorf("initial route = %v, want RouteChecking", m.route)
	}
	if !strings.Contains(m.View(), "Checking session") {
		t.Error("checking view missing status text")
	}
}

func TestInvalidSessionLandsOnLogin(t *testing.T) {
	m, _ := newShell(t)
	updated, _ := m.Update(sessionInvalidMsg{})
	m = updated.(Model)
	if m.route != RouteLogin {
		t.Errorf("route = %v, want RouteLogin", m.route)
	}
}

func TestValidSessionLandsOnChat(t *testing.T) {
	m, _ := newShell(t)
	updated, _ := m.Update(sessionValidMsg{username: "alice", isAdmin: true})
	m = updated.(Model)
	if m.route != RouteChat {
		t.Errorf("route = %v, want RouteChat", m.route)
	}
	if !strings.Contains(m.View(), "alice (admin)") {
		t.Error("header missing signed-in identity")
	}
}

func TestAdminRouteIsGated(t *testing.T) {
	m, _ := newShell(t)
	updated, _ := m.Update(sessionValidMsg{username: "bob", isAdmin: false})
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	m = updated.(Model)
	if m.route == RouteAdmin {
		t.Error("non-admin reached the admin route")
	}
}

func TestAdminRouteForAdmins(t *testing.T) {
	m, _ := newShell(t)
	updated, _ := m.Update(sessionValidMsg{username: "alice", isAdmin: true})
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	m = updated.(Model)
	if m.route != RouteAdmin {
		t.Errorf("route = %v, want RouteAdmin", m.route)
	}

	// Esc returns to chat.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.route != RouteChat {
		t.Errorf("route after esc = %v, want RouteChat", m.route)
	}
}

func TestHubEventForcesLogin(t *testing.T) {
	m, _ := newShell(t)
	updated, _ := m.Update(sessionValidMsg{username: "alice"})
	m = updated.(Model)

	updated, cmd := m.Update(hubEventMsg{event: session.Event{Reason: "session expired"}})
	m = updated.(Model)
	if m.route != RouteLogin {
		t.Errorf("route = %v, want RouteLogin after invalidation", m.route)
	}
	if cmd == nil {
		t.Error("hub event did not re-arm the subscription")
	}
	if m.username != "" {
		t.Error("identity not cleared on invalidation")
	}
}

func TestLogoutClearsTokensAndRoutes(t *testing.T) {
	m, _ := newShell(t)
	updated, _ := m.Update(sessionValidMsg{username: "alice"})
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = updated.(Model)
	if m.route != RouteLogin {
		t.Errorf("route after logout = %v, want RouteLogin", m.route)
	}
	if m.svcs.Auth.IsLoggedIn() {
		t.Error("tokens survive logout")
	}
}
