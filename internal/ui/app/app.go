// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the application shell: it owns the route guard, the header,
// screen switching and the reaction to session invalidation events from the
// gateway.
package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zatgpt/zatgpt-tui/internal/config"
	adminsvc "github.com/zatgpt/zatgpt-tui/internal/service/admin"
	authsvc "github.com/zatgpt/zatgpt-tui/internal/service/auth"
	chatsvc "github.com/zatgpt/zatgpt-tui/internal/service/chat"
	"github.com/zatgpt/zatgpt-tui/internal/session"
	adminui "github.com/zatgpt/zatgpt-tui/internal/ui/admin"
	chatui "github.com/zatgpt/zatgpt-tui/internal/ui/chat"
	"github.com/zatgpt/zatgpt-tui/internal/ui/components"
	loginui "github.com/zatgpt/zatgpt-tui/internal/ui/login"
	"github.com/zatgpt/zatgpt-tui/internal/ui/styles"
)

// Route names the active screen.
type Route int

const (
	// RouteChecking is the startup state while a stored session is being
	// validated against the backend.
	RouteChecking Route = iota
	RouteLogin
	RouteChat
	RouteAdmin
)

// Services bundles the three backend services the shell hands to screens.
type Services struct {
	Auth  *authsvc.Service
	Chat  *chatsvc.Service
	Admin *adminsvc.Service
}

// =============================================================================
// SHELL MESSAGES
// =============================================================================

// sessionValidMsg reports the startup validation outcome.
type sessionValidMsg struct {
	username string
	isAdmin  bool
}

// sessionInvalidMsg sends the user to the login screen.
type sessionInvalidMsg struct {
	reason string
}

// hubEventMsg wraps a session invalidation event from the gateway.
type hubEventMsg struct {
	event session.Event
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the root Bubble Tea model.
type Model struct {
	theme  *styles.Theme
	cfg    *config.Config
	svcs   Services
	hub    *session.Hub
	events <-chan session.Event
	cancel func()

	route    Route
	username string
	isAdmin  bool

	header *components.Header

	login loginui.Model
	chat  chatui.Model
	admin adminui.Model

	width  int
	height int
}

// New creates the shell. The hub must be the one wired into the gateway
// client so invalidation events actually arrive here.
func New(svcs Services, cfg *config.Config, hub *session.Hub) Model {
	theme := styles.NewTheme()
	events, cancel := hub.Subscribe()

	m := Model{
		theme:  theme,
		cfg:    cfg,
		svcs:   svcs,
		hub:    hub,
		events: events,
		cancel: cancel,
		route:  RouteChecking,
		header: components.NewHeader(theme),
		login:  loginui.New(svcs.Auth, theme),
	}
	return m
}

// Init validates any stored session and starts listening for invalidation.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.validateSessionCmd(),
		m.waitForHubCmd(),
		m.login.Init(),
	)
}

// validateSessionCmd decides the initial route. A stored token pair is only
// trusted after the backend confirms it; anything else lands on login.
func (m Model) validateSessionCmd() tea.Cmd {
	svc := m.svcs.Auth
	adminSvc := m.svcs.Admin
	return func() tea.Msg {
		if !svc.IsLoggedIn() {
			return sessionInvalidMsg{}
		}
		ctx := context.Background()
		info, err := svc.CurrentUser(ctx)
		if err != nil {
			return sessionInvalidMsg{reason: "session expired"}
		}
		perm, err := adminSvc.CheckPermission(ctx)
		if err != nil {
			// Identity is confirmed; a failed permission probe only means
			// no admin surface.
			return sessionValidMsg{username: info.Username}
		}
		return sessionValidMsg{username: info.Username, isAdmin: perm.IsAdmin}
	}
}

// waitForHubCmd blocks on the invalidation channel. It re-arms itself after
// every event so the subscription lives as long as the program.
func (m Model) waitForHubCmd() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return hubEventMsg{event: ev}
	}
}

// closeScreens cancels the request contexts of the previous screens before
// they are replaced.
func (m *Model) closeScreens() {
	m.chat.Close()
	m.admin.Close()
}

// enterChat builds a fresh chat screen for the signed-in user.
func (m *Model) enterChat() tea.Cmd {
	m.closeScreens()
	state := session.LoadState()
	m.chat = chatui.New(m.svcs.Chat, m.cfg, m.theme, state.LastSessionID)
	m.route = RouteChat
	m.header.Title = "Chat"
	m.header.SetIdentity(m.username, m.isAdmin)

	cmds := []tea.Cmd{m.chat.Init()}
	if m.width > 0 {
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(tea.WindowSizeMsg{Width: m.width, Height: m.bodyHeight()})
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// enterAdmin builds the user management screen.
func (m *Model) enterAdmin() tea.Cmd {
	m.closeScreens()
	m.admin = adminui.New(m.svcs.Admin, m.cfg, m.theme)
	m.route = RouteAdmin
	m.header.Title = "User Management"

	cmds := []tea.Cmd{m.admin.Init()}
	if m.width > 0 {
		var cmd tea.Cmd
		m.admin, cmd = m.admin.Update(tea.WindowSizeMsg{Width: m.width, Height: m.bodyHeight()})
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// enterLogin drops to the login screen, wiping identity state.
func (m *Model) enterLogin() {
	m.closeScreens()
	m.route = RouteLogin
	m.username = ""
	m.isAdmin = false
	m.header.Title = "ZatGPT"
	m.header.SetIdentity("", false)
	m.login = loginui.New(m.svcs.Auth, m.theme)
	if m.width > 0 {
		m.login, _ = m.login.Update(tea.WindowSizeMsg{Width: m.width, Height: m.bodyHeight()})
	}
}

// bodyHeight is the window height minus the header line.
func (m Model) bodyHeight() int {
	h := m.height - 1
	if h < 1 {
		h = 1
	}
	return h
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the active screen and handles shell concerns.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(msg.Width)
		body := tea.WindowSizeMsg{Width: msg.Width, Height: m.bodyHeight()}
		var cmd tea.Cmd
		m.login, _ = m.login.Update(body)
		switch m.route {
		case RouteChat:
			m.chat, cmd = m.chat.Update(body)
		case RouteAdmin:
			m.admin, cmd = m.admin.Update(body)
		}
		return m, cmd

	case sessionValidMsg:
		m.username = msg.username
		m.isAdmin = msg.isAdmin
		return m, m.enterChat()

	case sessionInvalidMsg:
		m.enterLogin()
		return m, m.login.Init()

	case hubEventMsg:
		// The gateway cleared the tokens already; the shell only has to
		// navigate. Re-arm the subscription either way.
		m.enterLogin()
		return m, tea.Batch(m.login.Init(), m.waitForHubCmd())

	case loginui.LoginSuccessMsg:
		m.username = msg.Username
		// Probe the admin permission after login so the header and the
		// ctrl+a route know what to show.
		return m, tea.Batch(m.validateSessionCmd())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+a":
			if m.route == RouteChat && m.isAdmin {
				return m, m.enterAdmin()
			}
			return m.forward(msg)
		case "esc":
			if m.route == RouteAdmin {
				return m, m.enterChat()
			}
			return m.forward(msg)
		case "ctrl+l":
			if m.route == RouteChat || m.route == RouteAdmin {
				_ = m.svcs.Auth.Logout()
				m.enterLogin()
				return m, m.login.Init()
			}
			return m.forward(msg)
		}
		return m.forward(msg)
	}

	return m.forward(msg)
}

// forward hands a message to the active screen.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.route {
	case RouteLogin, RouteChecking:
		m.login, cmd = m.login.Update(msg)
	case RouteChat:
		m.chat, cmd = m.chat.Update(msg)
	case RouteAdmin:
		m.admin, cmd = m.admin.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the header and the active screen.
func (m Model) View() string {
	var body string
	switch m.route {
	case RouteChecking:
		body = m.theme.Container.Render("Checking session...")
	case RouteLogin:
		body = m.login.View()
	case RouteChat:
		body = m.chat.View()
	case RouteAdmin:
		body = m.admin.View()
	}
	return m.header.View() + "\n" + body
}

// Close releases the hub subscription and any live screen contexts.
func (m Model) Close() {
	m.chat.Close()
	m.admin.Close()
	if m.cancel != nil {
		m.cancel()
	}
}
