// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - interactive chat REPL for plain terminal use.
//
// The REPL covers environments where the full TUI is unwanted, such as
// ssh sessions with odd terminfo or screen readers.
//
// ACCESSIBILITY: line-oriented output works with terminal screen readers.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"github.com/zatgpt/zatgpt-tui/internal/api"
	"github.com/zatgpt/zatgpt-tui/internal/config"
	"github.com/zatgpt/zatgpt-tui/internal/model"
	"github.com/zatgpt/zatgpt-tui/internal/session"
)

// ChatREPL wraps liner with persistent input history.
type ChatREPL struct {
	line        *liner.State
	historyFile string
}

// NewChatREPL creates the REPL input reader. History lives next to the
// config file so 'zatgpt chat' remembers input across runs.
func NewChatREPL() (*ChatREPL, error) {
	if err := config.EnsureConfigDir(); err != nil {
		return nil, err
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &ChatREPL{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	r.loadHistory()
	return r, nil
}

func (r *ChatREPL) loadHistory() {
	f, err := os.Open(r.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.ReadHistory(f)
}

// SaveHistory writes input history back to disk.
//
// SECURITY: 0600, chat input can contain sensitive text.
func (r *ChatREPL) SaveHistory() error {
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = r.line.WriteHistory(f)
	return err
}

// ReadInput prompts for one line and records it in history.
func (r *ChatREPL) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	input = strings.TrimSpace(input)
	if input != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close releases the terminal.
func (r *ChatREPL) Close() {
	r.line.Close()
}

const chatHelpText = `Commands:
  /new            Start a new chat session
  /sessions       List your sessions
  /switch ID      Switch to another session
  /help           Show this help
  /quit           Exit (also ctrl+d)`

// HandleChat runs the line-oriented chat loop. An optional positional
// argument resumes an existing session by ID.
func HandleChat(args Args) int {
	app, err := NewApp(args)
	if err != nil {
		return fail(err)
	}
	if !IsTTY() {
		fmt.Fprintln(os.Stderr, "chat requires an interactive terminal")
		return 1
	}
	if !app.Auth.IsLoggedIn() {
		fmt.Fprintln(os.Stderr, "Not signed in. Run 'zatgpt login' first.")
		return 1
	}

	repl, err := NewChatREPL()
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := repl.SaveHistory(); err != nil {
			fmt.Fprintln(os.Stderr, warningStyle.Render("could not save history: "+err.Error()))
		}
		repl.Close()
	}()

	var renderer *glamour.TermRenderer
	if app.Config.UI.Markdown && IsStdoutTTY() {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(GetTerminalWidth()),
		)
	}

	loop := &chatLoop{app: app, repl: repl, renderer: renderer}
	if args.Subcommand != "" {
		loop.sessionID = args.Subcommand
		if code := loop.replayHistory(); code != 0 {
			return code
		}
	} else {
		fmt.Println(headingStyle.Render("ZatGPT"))
		fmt.Println(labelStyle.Render("Type a message, /help for commands, /quit to exit."))
	}
	return loop.run()
}

type chatLoop struct {
	app       *App
	repl      *ChatREPL
	renderer  *glamour.TermRenderer
	sessionID string
}

func (l *chatLoop) run() int {
	for {
		input, err := l.repl.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			// ctrl+c aborts the prompt, ctrl+d ends the loop.
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			fmt.Println()
			return 0
		}
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := l.command(input); quit {
				return 0
			}
			continue
		}

		l.send(input)
	}
}

// command handles slash commands. Returns true when the loop should end.
func (l *chatLoop) command(input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit", "/q":
		return true
	case "/new":
		l.sessionID = ""
		fmt.Println(labelStyle.Render("New chat. The session is created on your first message."))
	case "/sessions":
		ctx, cancel := l.ctx()
		defer cancel()
		sessions, err := l.app.Chat.ListSessions(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(api.UserMessage(err)))
			return false
		}
		groups := model.GroupSessionsByDate(sessions, time.Now())
		for _, g := range groups {
			fmt.Println(headingStyle.Render(g.Label))
			for _, s := range g.Sessions {
				marker := " "
				if s.SessionID == l.sessionID {
					marker = "*"
				}
				fmt.Printf(" %s %s  %s\n", marker, labelStyle.Render(s.SessionID), s.Title)
			}
		}
	case "/switch":
		if len(fields) < 2 {
			fmt.Fprintln(os.Stderr, "usage: /switch SESSION_ID")
			return false
		}
		l.sessionID = fields[1]
		if code := l.replayHistory(); code != 0 {
			l.sessionID = ""
		}
	case "/help":
		fmt.Println(chatHelpText)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %s, try /help\n", fields[0])
	}
	return false
}

// replayHistory prints the existing transcript when resuming a session.
func (l *chatLoop) replayHistory() int {
	ctx, cancel := l.ctx()
	defer cancel()

	messages, err := l.app.Chat.ListMessages(ctx, l.sessionID)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(api.UserMessage(err)))
		return 1
	}
	for _, m := range model.VisibleMessages(messages) {
		if m.Role == model.RoleUser {
			fmt.Println(promptStyle.Render("you> ") + m.Content)
		} else {
			l.printReply(m.Content)
		}
	}
	return 0
}

func (l *chatLoop) send(content string) {
	ctx, cancel := l.ctx()
	defer cancel()

	if l.sessionID == "" {
		id, err := l.app.Chat.CreateSession(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(api.UserMessage(err)))
			return
		}
		l.sessionID = id
	}

	reply, err := l.app.Chat.SendMessage(ctx, l.sessionID, content)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Session expired. Run 'zatgpt login'."))
			return
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render(api.UserMessage(err)))
		return
	}
	l.printReply(reply.Content)

	st := session.LoadState()
	st.LastSessionID = l.sessionID
	if err := session.SaveState(st); err != nil {
		fmt.Fprintln(os.Stderr, warningStyle.Render("could not save session state: "+err.Error()))
	}
}

func (l *chatLoop) printReply(content string) {
	if l.renderer != nil {
		if out, err := l.renderer.Render(content); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Println(content)
}

func (l *chatLoop) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), l.app.Config.Timeout())
}
