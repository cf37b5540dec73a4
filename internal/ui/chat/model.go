// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/zatgpt/zatgpt-tui/internal/config"
	"github.com/zatgpt/zatgpt-tui/internal/model"
	chatsvc "github.com/zatgpt/zatgpt-tui/internal/service/chat"
	"github.com/zatgpt/zatgpt-tui/internal/session"
	"github.com/zatgpt/zatgpt-tui/internal/ui/components"
	"github.com/zatgpt/zatgpt-tui/internal/ui/styles"
)

// sidebarWidth is the fixed width of the session list column.
const sidebarWidth = 28

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the conversation screen.
type Model struct {
	theme *styles.Theme
	keys  KeyMap
	svc   *chatsvc.Service
	cfg   *config.Config

	// Screen-scoped request context, cancelled on teardown so responses
	// cannot land after the screen is gone.
	ctx    context.Context
	cancel context.CancelFunc

	// Components
	sidebar  *Sidebar
	viewport viewport.Model
	input    textinput.Model
	spinner  components.Spinner
	status   *components.StatusBar
	toasts   *components.ToastStack

	// Conversation state
	sessionID string
	messages  []model.Message
	sending   bool // a send is in flight; input is locked
	loading   bool

	// True while the last message slot holds the optimistic user message
	// that has not been confirmed by the backend yet.
	optimistic bool

	focusSidebar bool

	renderer *glamour.TermRenderer

	width  int
	height int
}

// New creates the conversation screen. lastSessionID preseeds the selection
// from the persisted UI state; empty means start on a fresh conversation.
func New(svc *chatsvc.Service, cfg *config.Config, theme *styles.Theme, lastSessionID string) Model {
	input := textinput.New()
	input.Placeholder = "Send a message..."
	input.CharLimit = 0
	input.Focus()

	vp := viewport.New(80, 20)

	ctx, cancel := context.WithCancel(context.Background())

	// The screen opens in its loading state, so the spinner starts here.
	// Init returns the tick; calling Start there would only mutate the
	// receiver copy bubbletea discards.
	sp := components.NewSpinner("Loading conversations")
	sp.Start()

	return Model{
		ctx:       ctx,
		cancel:    cancel,
		theme:     theme,
		keys:      DefaultKeyMap(),
		svc:       svc,
		cfg:       cfg,
		sidebar:   NewSidebar(),
		viewport:  vp,
		input:     input,
		spinner:   sp,
		status:    components.NewStatusBar(theme),
		toasts:    components.NewToastStack(theme),
		sessionID: lastSessionID,
		loading:   true,
	}
}

// Init starts the initial parallel load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		initialLoadCmd(m.ctx, m.svc, m.sessionID),
		m.spinner.Tick(),
	)
}

// Close cancels the screen's in-flight requests.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// SessionID returns the currently open session, empty for a fresh chat.
func (m Model) SessionID() string {
	return m.sessionID
}

// setSize recomputes component dimensions from the window size.
func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	mainWidth := width
	if m.showSidebar() {
		mainWidth = width - sidebarWidth - 1
	}

	// viewport above, one spinner line, input line, status bar
	vpHeight := height - 5
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = mainWidth
	m.viewport.Height = vpHeight
	m.input.Width = mainWidth - 4
	m.sidebar.SetSize(sidebarWidth, vpHeight)
	m.status.SetWidth(width)
	m.toasts.SetWidth(width)

	// Word wrap tracks the viewport, so the renderer is rebuilt on resize.
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(mainWidth-6),
	)
	if err == nil {
		m.renderer = renderer
	}

	m.refreshViewport()
}

func (m *Model) showSidebar() bool {
	return m.width >= 60
}

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// renderMarkdown renders assistant content through glamour when enabled,
// falling back to the raw text on renderer errors.
func (m *Model) renderMarkdown(content string) string {
	if !m.cfg.UI.Markdown || m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// renderMessages builds the viewport content for the thread.
func (m *Model) renderMessages() string {
	visible := model.VisibleMessages(m.messages)
	if len(visible) == 0 && !m.sending {
		return m.theme.InputPlaceholder.Render("No messages yet. Say something.")
	}

	var b strings.Builder
	for i, msg := range visible {
		if i > 0 {
			b.WriteString("\n\n")
		}
		ts := ""
		if !msg.Timestamp.IsZero() {
			ts = "  " + m.theme.MessageTime.Render(msg.Timestamp.Local().Format("15:04"))
		}
		switch msg.Role {
		case model.RoleUser:
			b.WriteString(m.theme.UserLabel.Render(msg.Role.DisplayName()) + ts + "\n")
			b.WriteString(m.theme.UserBubble.Render(msg.Content))
		default:
			b.WriteString(m.theme.AssistantLabel.Render(msg.Role.DisplayName()) + ts + "\n")
			b.WriteString(m.theme.AssistantBubble.Render(m.renderMarkdown(msg.Content)))
		}
	}
	return b.String()
}

// refreshViewport re-renders the thread and keeps the view pinned to the
// bottom, where the conversation happens.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

// openSession switches the thread to another session and starts its load.
// A send still pending for the previous thread is disowned here; its
// completion will not match the new session id and gets dropped.
func (m *Model) openSession(sessionID string) tea.Cmd {
	m.sessionID = sessionID
	m.messages = nil
	m.optimistic = false
	m.sending = false
	m.spinner.Stop()
	m.loading = true
	m.refreshViewport()
	m.persistSelection()
	return loadHistoryCmd(m.ctx, m.svc, sessionID)
}

// newChat clears the thread without creating a backend session. The session
// is created lazily on the first send.
func (m *Model) newChat() {
	m.sessionID = ""
	m.messages = nil
	m.optimistic = false
	m.sending = false
	m.spinner.Stop()
	m.focusSidebar = false
	m.input.Focus()
	m.refreshViewport()
	m.persistSelection()
}

func (m *Model) persistSelection() {
	// Selection survives restarts; failure to persist is invisible and
	// harmless, the next start just opens a fresh chat.
	_ = session.SaveState(session.State{LastSessionID: m.sessionID})
}

// dropOptimistic removes the unconfirmed user message after a failed send.
func (m *Model) dropOptimistic() (draft string) {
	if !m.optimistic || len(m.messages) == 0 {
		return ""
	}
	last := m.messages[len(m.messages)-1]
	m.messages = m.messages[:len(m.messages)-1]
	m.optimistic = false
	return last.Content
}
