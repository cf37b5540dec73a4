// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zatgpt/zatgpt-tui/internal/api"
	"github.com/zatgpt/zatgpt-tui/internal/config"
	"github.com/zatgpt/zatgpt-tui/internal/model"
	adminsvc "github.com/zatgpt/zatgpt-tui/internal/service/admin"
	"github.com/zatgpt/zatgpt-tui/internal/token"
	"github.com/zatgpt/zatgpt-tui/internal/ui/styles"
)

func newTestModel(t *testing.T, role model.AdminRole) Model {
	t.Helper()
	tokens := token.NewStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
	svc := adminsvc.NewService(api.NewClient("http://127.0.0.1:1", tokens, nil))

	m := New(svc, config.Default(), styles.NewTheme())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.Update(PermissionCheckedMsg{Perm: adminsvc.Permission{IsAdmin: true, Role: role}})
	m, _ = m.Update(UsersLoadedMsg{Users: testUsers(20)})
	return m
}

func testUsers(n int) []model.User {
	users := make([]model.User, n)
	for i := range users {
		users[i] = model.User{
			UUID:     "uuid-" + string(rune('a'+i)),
			Username: "user" + string(rune('a'+i)),
			Email:    "user" + string(rune('a'+i)) + "@example.com",
			IsActive: true,
		}
	}
	return users
}

func press(m Model, keys string) Model {
	for _, r := range keys {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestPaginationKeys(t *testing.T) {
	m := newTestModel(t, model.RoleSuperuser)
	// 20 users at 8 per page is 3 pages.
	if got := len(m.pageUsers()); got != 8 {
		t.Fatalf("first page has %d rows, want 8", got)
	}

	m = press(m, "l")
	if m.page != 1 {
		t.Errorf("page after l = %d, want 1", m.page)
	}
	m = press(m, "ll")
	if m.page != 2 {
		t.Errorf("page clamps at last, got %d", m.page)
	}
	if got := len(m.pageUsers()); got != 4 {
		t.Errorf("last page has %d rows, want 4", got)
	}

	m = press(m, "h")
	if m.page != 1 {
		t.Errorf("page after h = %d, want 1", m.page)
	}
}

func TestSearchResetsPage(t *testing.T) {
	m := newTestModel(t, model.RoleSuperuser)
	m = press(m, "ll")
	if m.page != 2 {
		t.Fatal("setup: not on last page")
	}

	m = press(m, "/")
	if !m.searching {
		t.Fatal("/ did not enter search mode")
	}
	m = press(m, "usera")
	if m.page != 0 {
		t.Errorf("search did not reset page, page = %d", m.page)
	}
	if got := len(m.filtered()); got != 1 {
		t.Errorf("filtered = %d users, want 1", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.searching {
		t.Error("esc did not leave search mode")
	}
}

func TestSuperuserToggleIsOptimistic(t *testing.T) {
	m := newTestModel(t, model.RoleSuperuser)

	var cmd tea.Cmd
	m, cmd = m.toggle("is_active")
	if cmd == nil {
		t.Fatal("allowed toggle produced no update command")
	}
	if m.users[0].IsActive {
		t.Error("toggle not applied locally before the backend answered")
	}
}

func TestStaffCannotToggleGatedFields(t *testing.T) {
	m := newTestModel(t, model.RoleStaff)

	var cmd tea.Cmd
	m, cmd = m.toggle("is_active")
	if cmd != nil {
		t.Error("gated toggle produced a command")
	}
	if !m.users[0].IsActive {
		t.Error("gated toggle changed local state")
	}

	m, cmd = m.toggle("is_superuser")
	if cmd != nil {
		t.Error("gated superuser toggle produced a command")
	}

	// The one field staff may touch still works.
	m, cmd = m.toggle("is_staff")
	if cmd == nil {
		t.Error("staff toggle of is_staff was blocked")
	}
	if !m.users[0].IsStaff {
		t.Error("is_staff toggle not applied locally")
	}
}

func TestCouplingAppliedOnToggle(t *testing.T) {
	m := newTestModel(t, model.RoleSuperuser)

	m, _ = m.toggle("is_superuser")
	if !m.users[0].IsSuperuser || !m.users[0].IsStaff {
		t.Errorf("granting superuser must grant staff, got %+v", m.users[0])
	}

	m, _ = m.toggle("is_staff")
	if m.users[0].IsStaff || m.users[0].IsSuperuser {
		t.Errorf("revoking staff must revoke superuser, got %+v", m.users[0])
	}
}

func TestUpdateErrorTriggersReload(t *testing.T) {
	m := newTestModel(t, model.RoleSuperuser)

	m, cmd := m.Update(UpdateErrorMsg{Err: &api.APIError{Status: 500, Message: "boom"}})
	if cmd == nil {
		t.Fatal("update error did not schedule a reconcile reload")
	}
	_ = m
}

func TestSpinnerRunsDuringInitialLoad(t *testing.T) {
	tokens := token.NewStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
	svc := adminsvc.NewService(api.NewClient("http://127.0.0.1:1", tokens, nil))
	m := New(svc, config.Default(), styles.NewTheme())

	if !m.loading {
		t.Fatal("fresh model is not in its loading state")
	}
	if !m.spinner.IsActive() {
		t.Error("spinner inactive while the user list loads")
	}
	if m.Init() == nil {
		t.Error("Init returned no spinner tick")
	}

	m, _ = m.Update(UsersLoadedMsg{})
	if m.spinner.IsActive() {
		t.Error("spinner still active after the list arrived")
	}
}

func TestNonAdminView(t *testing.T) {
	tokens := token.NewStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
	svc := adminsvc.NewService(api.NewClient("http://127.0.0.1:1", tokens, nil))
	m := New(svc, config.Default(), styles.NewTheme())
	m, _ = m.Update(PermissionCheckedMsg{Perm: adminsvc.Permission{}})
	m, _ = m.Update(UsersLoadedMsg{})

	view := m.View()
	if view == "" {
		t.Fatal("empty view")
	}
	if !strings.Contains(view, "do not have access") {
		t.Errorf("non-admin view missing denial text: %q", view)
	}
}
