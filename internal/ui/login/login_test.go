// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zatgpt/zatgpt-tui/internal/api"
	authsvc "github.com/zatgpt/zatgpt-tui/internal/service/auth"
	"github.com/zatgpt/zatgpt-tui/internal/token"
	"github.com/zatgpt/zatgpt-tui/internal/ui/styles"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	tokens := token.NewStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
	svc := authsvc.NewService(api.NewClient("http://127.0.0.1:1", tokens, nil), tokens)
	m := New(svc, styles.NewTheme())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: k})
}

func TestLoginFormHasTwoFields(t *testing.T) {
	m := newTestModel(t)
	if len(m.inputs) != 2 {
		t.Fatalf("login form has %d fields, want 2", len(m.inputs))
	}
	if m.form != FormLogin {
		t.Error("initial form is not login")
	}
}

func TestToggleToRegisterKeepsUsername(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "alice")

	m, _ = press(m, tea.KeyCtrlT)
	if m.form != FormRegister {
		t.Fatal("ctrl+t did not switch to register")
	}
	if len(m.inputs) != 3 {
		t.Fatalf("register form has %d fields, want 3", len(m.inputs))
	}
	if m.inputs[0].Value() != "alice" {
		t.Errorf("username lost on toggle, got %q", m.inputs[0].Value())
	}
}

func TestEmptySubmitShowsValidation(t *testing.T) {
	m := newTestModel(t)
	// Move to the password field and submit with both blank.
	m, _ = press(m, tea.KeyTab)
	m, cmd := press(m, tea.KeyEnter)
	if cmd != nil {
		t.Error("empty form still submitted")
	}
	if m.errText == "" {
		t.Error("no validation message for empty form")
	}
}

func TestEnterAdvancesThenSubmits(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "alice")

	// Enter on the username field advances focus rather than submitting.
	m, cmd := press(m, tea.KeyEnter)
	if cmd != nil {
		t.Error("enter on first field submitted")
	}
	if m.focus != 1 {
		t.Errorf("focus = %d, want 1", m.focus)
	}

	m = typeText(m, "s3cret")
	m, cmd = press(m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("enter on last field did not submit")
	}
	if !m.submitting {
		t.Error("model not in submitting state")
	}
}

func TestAuthErrorShowsMessage(t *testing.T) {
	m := newTestModel(t)
	m.submitting = true

	m, _ = m.Update(authErrorMsg{err: fmt.Errorf("%w: invalid username or password", api.ErrAuthFailed)})
	if m.submitting {
		t.Error("still submitting after error")
	}
	if !strings.Contains(m.errText, "invalid username or password") {
		t.Errorf("errText = %q", m.errText)
	}
	if !strings.Contains(m.View(), "invalid username or password") {
		t.Error("view does not show the error")
	}
}

func TestRegisteredFlipsBackToLogin(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(m, tea.KeyCtrlT)
	m.submitting = true

	m, _ = m.Update(RegisteredMsg{Username: "bob"})
	if m.form != FormLogin {
		t.Error("registration success did not return to login form")
	}
	if m.inputs[0].Value() != "bob" {
		t.Errorf("username not carried over, got %q", m.inputs[0].Value())
	}
	if !strings.Contains(m.View(), "Account created") {
		t.Error("view missing the registration notice")
	}
}

func TestKeysIgnoredWhileSubmitting(t *testing.T) {
	m := newTestModel(t)
	m.submitting = true

	before := m.inputs[0].Value()
	m = typeText(m, "zzz")
	if m.inputs[0].Value() != before {
		t.Error("input accepted text while submitting")
	}
}

func TestFieldErrorsRenderedInline(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(m, tea.KeyCtrlT)
	m.submitting = true

	m, _ = m.Update(authErrorMsg{err: fieldErr()})
	view := m.View()
	if !strings.Contains(view, "already exists") {
		t.Errorf("view missing field error: %q", view)
	}
}

func fieldErr() error {
	return fmt.Errorf("%w: %w", api.ErrValidation, &api.APIError{
		Status: 400,
		Fields: map[string][]string{"username": {"A user with that username already exists."}},
	})
}
