// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zatgpt/zatgpt-tui/internal/api"
	"github.com/zatgpt/zatgpt-tui/internal/config"
	"github.com/zatgpt/zatgpt-tui/internal/model"
	chatsvc "github.com/zatgpt/zatgpt-tui/internal/service/chat"
	"github.com/zatgpt/zatgpt-tui/internal/token"
	"github.com/zatgpt/zatgpt-tui/internal/ui/styles"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	t.Setenv("ZATGPT_CONFIG_DIR", t.TempDir())
	tokens := token.NewStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
	svc := chatsvc.NewService(api.NewClient("http://127.0.0.1:1", tokens, nil))
	cfg := config.Default()

	m := New(svc, cfg, styles.NewTheme(), "")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func pressEnter(m Model) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestSubmitIsOptimistic(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "hello")

	m, cmd := pressEnter(m)
	if cmd == nil {
		t.Fatal("submit returned no command")
	}
	if !m.sending {
		t.Error("model not in sending state after submit")
	}
	if len(m.messages) != 1 || m.messages[0].Content != "hello" {
		t.Fatalf("optimistic message missing, messages = %v", m.messages)
	}
	if m.messages[0].Role != model.RoleUser {
		t.Errorf("optimistic role = %v, want user", m.messages[0].Role)
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared, still %q", m.input.Value())
	}
}

func TestSubmitRejectsBlank(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "   ")

	m, _ = pressEnter(m)
	if m.sending {
		t.Error("blank submit started a send")
	}
	if len(m.messages) != 0 {
		t.Error("blank submit appended a message")
	}
}

func TestInputLockedWhileSending(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "first")
	m, _ = pressEnter(m)

	m = typeText(m, "typed during send")
	if m.input.Value() != "" {
		t.Errorf("input accepted text while sending: %q", m.input.Value())
	}

	// A second enter must not start another send.
	m, cmd := pressEnter(m)
	if cmd != nil {
		t.Error("enter during send produced a command")
	}
	_ = m
}

func TestSendErrorRestoresDraft(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "hello")
	m, _ = pressEnter(m)

	m, _ = m.Update(SendErrorMsg{Draft: "hello", Err: errors.New("boom")})
	if m.sending {
		t.Error("still sending after error")
	}
	if len(m.messages) != 0 {
		t.Errorf("optimistic message not removed, messages = %v", m.messages)
	}
	if m.input.Value() != "hello" {
		t.Errorf("draft not restored, input = %q", m.input.Value())
	}
}

func TestSendErrorDiscardsDraftWhenConfigured(t *testing.T) {
	m := newTestModel(t)
	m.cfg.UI.RestoreDraftOnError = false
	m = typeText(m, "hello")
	m, _ = pressEnter(m)

	m, _ = m.Update(SendErrorMsg{Draft: "hello", Err: errors.New("boom")})
	if m.input.Value() != "" {
		t.Errorf("draft restored despite config, input = %q", m.input.Value())
	}
	if len(m.messages) != 0 {
		t.Error("optimistic message not removed")
	}
}

func TestSendCompleteAppendsReply(t *testing.T) {
	m := newTestModel(t)
	m.sessionID = "s1"
	m = typeText(m, "hello")
	m, _ = pressEnter(m)

	reply := model.NewAssistantMessage("hi there")
	m, _ = m.Update(SendCompleteMsg{SessionID: "s1", Reply: reply, Created: false})

	if m.sending {
		t.Error("still sending after completion")
	}
	if len(m.messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(m.messages))
	}
	if m.messages[1].Content != "hi there" {
		t.Errorf("reply content = %q", m.messages[1].Content)
	}
}

func TestSendCompleteAdoptsCreatedSession(t *testing.T) {
	m := newTestModel(t)
	if m.SessionID() != "" {
		t.Fatal("fresh model has a session")
	}
	m = typeText(m, "hello")
	m, _ = pressEnter(m)

	m, cmd := m.Update(SendCompleteMsg{
		SessionID: "new-session",
		Reply:     model.NewAssistantMessage("hi"),
		Created:   true,
	})
	if m.SessionID() != "new-session" {
		t.Errorf("session not adopted, got %q", m.SessionID())
	}
	if cmd == nil {
		t.Error("created session should trigger a sidebar refresh")
	}
}

func TestReplyForLeftSessionDropped(t *testing.T) {
	m := newTestModel(t)
	m.sessionID = "session-a"
	m = typeText(m, "question for a")
	m, _ = pressEnter(m)

	// The user switches threads while the send is still in flight.
	_ = m.openSession("session-b")
	bHistory := []model.Message{model.NewUserMessage("b history")}
	m, _ = m.Update(HistoryLoadedMsg{SessionID: "session-b", Messages: bHistory})

	m, _ = m.Update(SendCompleteMsg{
		SessionID: "session-a",
		Reply:     model.NewAssistantMessage("answer for a"),
	})

	if len(m.messages) != 1 || m.messages[0].Content != "b history" {
		t.Fatalf("reply for the left session leaked into the open thread: %v", m.messages)
	}
	if m.sending {
		t.Error("send lock survived the session switch")
	}
}

func TestCreatedReplyAfterSwitchNotAdopted(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "first message")
	m, _ = pressEnter(m)

	_ = m.openSession("session-b")
	m, _ = m.Update(HistoryLoadedMsg{SessionID: "session-b"})

	m, cmd := m.Update(SendCompleteMsg{
		SessionID: "freshly-created",
		Reply:     model.NewAssistantMessage("late answer"),
		Created:   true,
	})
	if m.SessionID() != "session-b" {
		t.Errorf("open session hijacked by a late create, got %q", m.SessionID())
	}
	if len(m.messages) != 0 {
		t.Errorf("late reply appended, messages = %v", m.messages)
	}
	if cmd == nil {
		t.Error("the created session should still trigger a sidebar refresh")
	}
}

func TestSendErrorForLeftSessionLeavesThreadAlone(t *testing.T) {
	m := newTestModel(t)
	m.sessionID = "session-a"
	m = typeText(m, "doomed")
	m, _ = pressEnter(m)

	_ = m.openSession("session-b")
	bHistory := []model.Message{model.NewUserMessage("b history")}
	m, _ = m.Update(HistoryLoadedMsg{SessionID: "session-b", Messages: bHistory})

	m, cmd := m.Update(SendErrorMsg{SessionID: "session-a", Draft: "doomed", Err: errors.New("boom")})
	if m.input.Value() != "" {
		t.Errorf("draft from the left session restored into the open thread: %q", m.input.Value())
	}
	if len(m.messages) != 1 || m.messages[0].Content != "b history" {
		t.Errorf("open thread disturbed by a stale send error: %v", m.messages)
	}
	if cmd == nil {
		t.Error("stale send error should still raise a toast")
	}
}

func TestSpinnerRunsDuringInitialLoad(t *testing.T) {
	m := newTestModel(t)
	if !m.loading {
		t.Fatal("fresh model is not in its loading state")
	}
	if !m.spinner.IsActive() {
		t.Error("loading indicator inactive on screen entry")
	}
	if m.Init() == nil {
		t.Error("Init returned no command")
	}

	m, _ = m.Update(SessionsLoadedMsg{})
	if m.spinner.IsActive() {
		t.Error("indicator still running after the load finished")
	}
}

func TestNewChatClearsThread(t *testing.T) {
	m := newTestModel(t)
	m.sessionID = "s1"
	m.messages = []model.Message{model.NewUserMessage("old")}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.SessionID() != "" {
		t.Errorf("session not cleared, got %q", m.SessionID())
	}
	if len(m.messages) != 0 {
		t.Error("messages not cleared")
	}
}

func TestStaleHistoryDropped(t *testing.T) {
	m := newTestModel(t)
	m.sessionID = "current"

	m, _ = m.Update(HistoryLoadedMsg{
		SessionID: "previous",
		Messages:  []model.Message{model.NewUserMessage("stale")},
	})
	if len(m.messages) != 0 {
		t.Error("stale history applied to the wrong session")
	}
}

func TestSendOnFreshChatCreatesExactlyOneSession(t *testing.T) {
	const newID = "4b2f7a61-1c3e-4f7b-9a2d-8e5c6d1f0a9b"
	var createCalls, sendCalls int
	var sentSessionID string

	mux := http.NewServeMux()
	mux.HandleFunc(api.PathCreateSession, func(w http.ResponseWriter, r *http.Request) {
		createCalls++
		_ = json.NewEncoder(w).Encode(map[string]string{"session_id": newID})
	})
	mux.HandleFunc(api.PathSendMessage, func(w http.ResponseWriter, r *http.Request) {
		sendCalls++
		var body struct {
			SessionID string `json:"session_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		sentSessionID = body.SessionID
		_ = json.NewEncoder(w).Encode(map[string]string{
			"assistant_message": "hi",
			"session_id":        body.SessionID,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokens := token.NewStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
	svc := chatsvc.NewService(api.NewClient(srv.URL, tokens, nil))

	msg := sendCmd(context.Background(), svc, "", "hello")()
	done, ok := msg.(SendCompleteMsg)
	if !ok {
		t.Fatalf("sendCmd returned %T: %v", msg, msg)
	}
	if !done.Created || done.SessionID != newID {
		t.Errorf("result = %+v, want created session %s", done, newID)
	}
	if createCalls != 1 || sendCalls != 1 {
		t.Errorf("create=%d send=%d, want exactly one of each", createCalls, sendCalls)
	}
	if sentSessionID != newID {
		t.Errorf("send used session %q, want the freshly created id", sentSessionID)
	}
}

func TestSendOnExistingSessionSkipsCreate(t *testing.T) {
	const existingID = "9f1d2c3b-4a5e-4f6d-8b7c-0a1b2c3d4e5f"
	var createCalls int

	mux := http.NewServeMux()
	mux.HandleFunc(api.PathCreateSession, func(w http.ResponseWriter, r *http.Request) {
		createCalls++
		_ = json.NewEncoder(w).Encode(map[string]string{"session_id": "should-not-happen"})
	})
	mux.HandleFunc(api.PathSendMessage, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"assistant_message": "hi"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokens := token.NewStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
	svc := chatsvc.NewService(api.NewClient(srv.URL, tokens, nil))

	msg := sendCmd(context.Background(), svc, existingID, "hello")()
	done, ok := msg.(SendCompleteMsg)
	if !ok {
		t.Fatalf("sendCmd returned %T: %v", msg, msg)
	}
	if done.Created || done.SessionID != existingID {
		t.Errorf("result = %+v, want send on the existing session", done)
	}
	if createCalls != 0 {
		t.Errorf("createCalls = %d, want 0", createCalls)
	}
}

func TestSidebarSkipsGroupLabels(t *testing.T) {
	sb := NewSidebar()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	sb.SetSessions([]model.Session{
		{SessionID: "a", Title: "Today chat", Date: "2026-08-29"},
		{SessionID: "b", Title: "Older chat", Date: "2026-08-25"},
	}, now)

	sel := sb.Selected()
	if sel == nil || sel.SessionID != "a" {
		t.Fatalf("initial selection = %v, want session a", sel)
	}

	sb.MoveDown()
	if sel = sb.Selected(); sel == nil || sel.SessionID != "b" {
		t.Fatalf("after MoveDown selection = %v, want session b", sel)
	}

	sb.MoveDown() // at the end, stays put
	if sel = sb.Selected(); sel.SessionID != "b" {
		t.Error("MoveDown past end moved the cursor")
	}

	sb.MoveUp()
	if sel = sb.Selected(); sel.SessionID != "a" {
		t.Error("MoveUp did not return to the first session")
	}
}

func TestSidebarKeepsSelectionAcrossRefresh(t *testing.T) {
	sb := NewSidebar()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	sessions := []model.Session{
		{SessionID: "a", Title: "One", Date: "2026-08-29"},
		{SessionID: "b", Title: "Two", Date: "2026-08-29"},
	}
	sb.SetSessions(sessions, now)
	sb.MoveDown()

	// Refresh with a new session prepended; selection must stay on b.
	refreshed := append([]model.Session{
		{SessionID: "c", Title: "Three", Date: "2026-08-29"},
	}, sessions...)
	sb.SetSessions(refreshed, now)
	if sel := sb.Selected(); sel == nil || sel.SessionID != "b" {
		t.Errorf("selection lost on refresh, got %v", sel)
	}
}
