// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package admin provides the user management screen: a searchable,
// paginated account table with role-gated permission toggles.
package admin

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zatgpt/zatgpt-tui/internal/api"
	"github.com/zatgpt/zatgpt-tui/internal/config"
	"github.com/zatgpt/zatgpt-tui/internal/model"
	adminsvc "github.com/zatgpt/zatgpt-tui/internal/service/admin"
	"github.com/zatgpt/zatgpt-tui/internal/ui/components"
	"github.com/zatgpt/zatgpt-tui/internal/ui/styles"
	"github.com/zatgpt/zatgpt-tui/internal/util"
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the user management screen.
type Model struct {
	theme *styles.Theme
	svc   *adminsvc.Service
	cfg   *config.Config

	// Screen-scoped request context, cancelled on teardown.
	ctx    context.Context
	cancel context.CancelFunc

	role    model.AdminRole
	isAdmin bool

	users []model.User // full list, search and paging are client-side
	page  int

	table     table.Model
	search    textinput.Model
	searching bool

	spinner components.Spinner
	status  *components.StatusBar
	toasts  *components.ToastStack
	loading bool

	width  int
	height int
}

// New creates the user management screen.
func New(svc *adminsvc.Service, cfg *config.Config, theme *styles.Theme) Model {
	search := textinput.New()
	search.Placeholder = "search username or email"
	search.CharLimit = 100

	columns := []table.Column{
		{Title: "UUID", Width: 10},
		{Title: "Username", Width: 20},
		{Title: "Email", Width: 28},
		{Title: "Active", Width: 8},
		{Title: "Staff", Width: 8},
		{Title: "Superuser", Width: 10},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(cfg.UI.UsersPerPage),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).Foreground(styles.TextSecondary)
	st.Selected = st.Selected.Background(styles.Indigo).Foreground(styles.TextInverse).Bold(true)
	tbl.SetStyles(st)

	ctx, cancel := context.WithCancel(context.Background())

	// Started here, not in Init: Init's value receiver would discard the
	// activation and the loading view would render an empty box.
	sp := components.NewSpinner("Loading users")
	sp.Start()

	return Model{
		ctx:     ctx,
		cancel:  cancel,
		theme:   theme,
		svc:     svc,
		cfg:     cfg,
		table:   tbl,
		search:  search,
		spinner: sp,
		status:  components.NewStatusBar(theme),
		toasts:  components.NewToastStack(theme),
		loading: true,
	}
}

// Init starts the permission check and the user list load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		checkPermissionCmd(m.ctx, m.svc),
		loadUsersCmd(m.ctx, m.svc),
		m.spinner.Tick(),
	)
}

// Close cancels the screen's in-flight requests.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Role returns the caller's admin role once the permission check landed.
func (m Model) Role() model.AdminRole {
	return m.role
}

// =============================================================================
// DERIVED STATE
// =============================================================================

// filtered returns the users matching the current search.
func (m *Model) filtered() []model.User {
	return adminsvc.FilterUsers(m.users, strings.TrimSpace(m.search.Value()))
}

// pageUsers returns the rows of the current page and clamps m.page.
func (m *Model) pageUsers() []model.User {
	rows, page := adminsvc.Page(m.filtered(), m.page, m.cfg.UI.UsersPerPage)
	m.page = page
	return rows
}

// selectedUser returns the user under the table cursor.
func (m *Model) selectedUser() *model.User {
	rows := m.pageUsers()
	i := m.table.Cursor()
	if i < 0 || i >= len(rows) {
		return nil
	}
	return &rows[i]
}

// refreshTable rebuilds the table rows for the current search and page.
func (m *Model) refreshTable() {
	rows := m.pageUsers()
	tableRows := make([]table.Row, len(rows))
	for i, u := range rows {
		tableRows[i] = table.Row{
			util.TruncateWidth(u.UUID, 10),
			u.Username,
			u.Email,
			styles.RenderToggle(u.IsActive, m.role.CanEdit("is_active")),
			styles.RenderToggle(u.IsStaff, m.role.CanEdit("is_staff")),
			styles.RenderToggle(u.IsSuperuser, m.role.CanEdit("is_superuser")),
		}
	}
	m.table.SetRows(tableRows)
	if m.table.Cursor() >= len(tableRows) && len(tableRows) > 0 {
		m.table.SetCursor(len(tableRows) - 1)
	}
}

// applyLocal replaces a user record in the full list.
func (m *Model) applyLocal(updated model.User) {
	for i := range m.users {
		if m.users[i].UUID == updated.UUID {
			m.users[i] = updated
			return
		}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the user management screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.status.SetWidth(msg.Width)
		m.toasts.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case PermissionCheckedMsg:
		m.isAdmin = msg.Perm.IsAdmin
		m.role = msg.Perm.Role
		m.refreshTable()
		return m, nil

	case UsersLoadedMsg:
		m.loading = false
		m.spinner.Stop()
		m.users = msg.Users
		m.status.Status = components.StatusReady
		m.refreshTable()
		return m, nil

	case UpdateDoneMsg:
		// Optimistic state already matches; nothing to reconcile.
		return m, nil

	case UpdateErrorMsg:
		// The optimistic row may be wrong now. Reload and tell the user.
		m.status.Status = components.StatusError
		return m, tea.Batch(
			m.toasts.Push(components.NewErrorToast(api.UserMessage(msg.Err))),
			loadUsersCmd(m.ctx, m.svc),
		)

	case LoadErrorMsg:
		m.loading = false
		m.spinner.Stop()
		m.status.Status = components.StatusError
		return m, m.toasts.Push(components.NewErrorToast(api.UserMessage(msg.Err)))

	case components.ToastExpiredMsg:
		m.toasts.Expire(msg.ID)
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	if m.searching {
		m.search, cmd = m.search.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.searching {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			m.searching = false
			m.search.Blur()
			return m, nil
		case tea.KeyCtrlC:
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.page = 0
		m.refreshTable()
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case "left", "h":
		if m.page > 0 {
			m.page--
			m.table.SetCursor(0)
			m.refreshTable()
		}
		return m, nil

	case "right", "l":
		if m.page < adminsvc.PageCount(len(m.filtered()), m.cfg.UI.UsersPerPage)-1 {
			m.page++
			m.table.SetCursor(0)
			m.refreshTable()
		}
		return m, nil

	case "a":
		return m.toggle("is_active")
	case "s":
		return m.toggle("is_staff")
	case "u":
		return m.toggle("is_superuser")

	case "ctrl+r":
		m.status.Status = components.StatusLoading
		return m, loadUsersCmd(m.ctx, m.svc)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// toggle flips one permission on the selected user. Gated fields are a
// silent no-op, matching the dimmed switches in the table. The local row
// updates immediately; a failed submit reconciles by reloading.
func (m Model) toggle(field string) (Model, tea.Cmd) {
	if !m.role.CanEdit(field) {
		return m, nil
	}
	sel := m.selectedUser()
	if sel == nil {
		return m, nil
	}

	current := false
	switch field {
	case "is_active":
		current = sel.IsActive
	case "is_staff":
		current = sel.IsStaff
	case "is_superuser":
		current = sel.IsSuperuser
	}

	updated := sel.WithPermission(field, !current)
	m.applyLocal(updated)
	m.refreshTable()
	return m, updateUserCmd(m.ctx, m.svc, updated)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the user management screen.
func (m Model) View() string {
	if !m.isAdmin && !m.loading {
		return m.theme.Container.Render(
			styles.RenderWarning("You do not have access to user management."))
	}

	var b strings.Builder

	searchLine := m.theme.SearchPrompt.Render("/ ") + m.search.View()
	if !m.searching && m.search.Value() == "" {
		searchLine = m.theme.FormHint.Render("press / to search")
	}
	b.WriteString(searchLine)
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View())
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")

		total := adminsvc.PageCount(len(m.filtered()), m.cfg.UI.UsersPerPage)
		pager := "page " + strconv.Itoa(m.page+1) + " of " + strconv.Itoa(total) +
			"  (" + strconv.Itoa(len(m.filtered())) + " users)"
		b.WriteString(m.theme.PagerText.Render(pager))
	}

	m.status.Shortcuts = []components.Shortcut{
		{Key: "a/s/u", Desc: "toggle"},
		{Key: "h/l", Desc: "page"},
		{Key: "/", Desc: "search"},
	}

	sections := []string{m.theme.AdminBox.Render(b.String())}
	if m.toasts.Len() > 0 {
		sections = append(sections, m.toasts.View())
	}
	sections = append(sections, m.status.View())
	return strings.Join(sections, "\n")
}

