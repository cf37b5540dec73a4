// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the sign-in and registration screen. Both forms
// live in one model; tab order and submission are shared, only the field
// set differs.
package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zatgpt/zatgpt-tui/internal/api"
	authsvc "github.com/zatgpt/zatgpt-tui/internal/service/auth"
	"github.com/zatgpt/zatgpt-tui/internal/ui/components"
	"github.com/zatgpt/zatgpt-tui/internal/ui/styles"
)

// Form selects which form is visible.
type Form int

const (
	FormLogin Form = iota
	FormRegister
)

// =============================================================================
// RESULT MESSAGES
// =============================================================================

// LoginSuccessMsg tells the application shell the user is signed in.
type LoginSuccessMsg struct {
	Username string
}

// RegisteredMsg signals that the account was created. Registration does not
// sign in; the screen flips back to the login form with the username kept.
type RegisteredMsg struct {
	Username string
}

// authErrorMsg carries a failed login or registration.
type authErrorMsg struct {
	err error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the auth screen.
type Model struct {
	theme *styles.Theme
	svc   *authsvc.Service

	form   Form
	inputs []textinput.Model // username, [email], password
	focus  int

	submitting bool
	spinner    components.Spinner
	errText    string
	fieldErrs  map[string][]string
	notice     string // one-line success notice after registration

	width  int
	height int
}

// New creates the auth screen showing the login form.
func New(svc *authsvc.Service, theme *styles.Theme) Model {
	m := Model{
		theme:   theme,
		svc:     svc,
		spinner: components.NewSpinner("Signing in"),
	}
	m.buildInputs("")
	return m
}

// buildInputs rebuilds the field set for the current form.
func (m *Model) buildInputs(keepUsername string) {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 150
	username.SetValue(keepUsername)
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	if m.form == FormRegister {
		email := textinput.New()
		email.Placeholder = "email"
		email.CharLimit = 254
		m.inputs = []textinput.Model{username, email, password}
	} else {
		m.inputs = []textinput.Model{username, password}
	}
	m.focus = 0
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the auth screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case LoginSuccessMsg:
		// Consumed by the application shell; nothing to do here.
		return m, nil

	case RegisteredMsg:
		m.submitting = false
		m.spinner.Stop()
		m.form = FormLogin
		m.errText = ""
		m.fieldErrs = nil
		m.notice = "Account created. Sign in to continue."
		m.buildInputs(msg.Username)
		return m, nil

	case authErrorMsg:
		m.submitting = false
		m.spinner.Stop()
		m.errText = api.UserMessage(msg.err)
		m.fieldErrs = api.FieldErrors(msg.err)
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	for i := range m.inputs {
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.submitting {
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyTab, tea.KeyDown:
		m.setFocus((m.focus + 1) % len(m.inputs))
		return m, nil

	case tea.KeyShiftTab, tea.KeyUp:
		m.setFocus((m.focus - 1 + len(m.inputs)) % len(m.inputs))
		return m, nil

	case tea.KeyEnter:
		if m.focus < len(m.inputs)-1 {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		return m.submit()

	case tea.KeyCtrlT:
		// Flip between sign-in and registration.
		if m.form == FormLogin {
			m.form = FormRegister
		} else {
			m.form = FormLogin
		}
		m.errText = ""
		m.fieldErrs = nil
		m.notice = ""
		m.buildInputs(m.inputs[0].Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) {
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	m.focus = i
}

// submit validates locally and fires the backend call.
func (m Model) submit() (Model, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[0].Value())
	password := m.inputs[len(m.inputs)-1].Value()
	email := ""
	if m.form == FormRegister {
		email = strings.TrimSpace(m.inputs[1].Value())
	}

	if username == "" || password == "" || (m.form == FormRegister && email == "") {
		m.errText = "All fields are required."
		return m, nil
	}

	m.submitting = true
	m.errText = ""
	m.fieldErrs = nil
	m.notice = ""
	if m.form == FormRegister {
		m.spinner.SetMessage("Creating account")
	} else {
		m.spinner.SetMessage("Signing in")
	}

	svc := m.svc
	form := m.form
	cmd := func() tea.Msg {
		ctx := context.Background()
		if form == FormRegister {
			if err := svc.Register(ctx, username, email, password); err != nil {
				return authErrorMsg{err: err}
			}
			return RegisteredMsg{Username: username}
		}
		if err := svc.Login(ctx, username, password); err != nil {
			return authErrorMsg{err: err}
		}
		return LoginSuccessMsg{Username: username}
	}
	return m, tea.Batch(cmd, m.spinner.Start())
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the auth screen centered in the window.
func (m Model) View() string {
	title := "Sign in to ZatGPT"
	action := "register instead"
	if m.form == FormRegister {
		title = "Create your account"
		action = "sign in instead"
	}

	labels := []string{"Username", "Password"}
	if m.form == FormRegister {
		labels = []string{"Username", "Email", "Password"}
	}

	var b strings.Builder
	b.WriteString(m.theme.FormTitle.Render(title))
	b.WriteString("\n")
	for i, input := range m.inputs {
		b.WriteString("\n")
		b.WriteString(m.theme.FormLabel.Render(labels[i]))
		b.WriteString(" ")
		b.WriteString(input.View())
		if m.fieldErrs != nil {
			if msgs, ok := m.fieldErrs[strings.ToLower(labels[i])]; ok && len(msgs) > 0 {
				b.WriteString("\n")
				b.WriteString(m.theme.FormFieldError.Render("  " + msgs[0]))
			}
		}
	}
	b.WriteString("\n\n")

	switch {
	case m.submitting:
		b.WriteString(m.spinner.View())
	case m.errText != "":
		b.WriteString(styles.RenderError(m.errText))
	case m.notice != "":
		b.WriteString(styles.RenderSuccess(m.notice))
	default:
		b.WriteString(m.theme.FormHint.Render("enter to submit, ctrl+t to " + action))
	}

	box := m.theme.FormBox.Render(b.String())
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
