// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - chat session management from the command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/zatgpt/zatgpt-tui/internal/model"
	"github.com/zatgpt/zatgpt-tui/internal/util"
)

// HandleSessions lists or deletes chat sessions.
func HandleSessions(args Args) int {
	app, err := NewApp(args)
	if err != nil {
		return fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.Config.Timeout())
	defer cancel()

	switch args.Subcommand {
	case "", "list":
		return listSessions(ctx, app, args)
	case "delete", "rm":
		if len(args.Raw) == 0 {
			fmt.Fprintln(os.Stderr, "usage: zatgpt sessions delete SESSION_ID")
			return 1
		}
		if err := app.Chat.DeleteSession(ctx, args.Raw[0]); err != nil {
			return fail(err)
		}
		if !args.Quiet {
			fmt.Println("Session deleted.")
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown sessions subcommand: %s\n", args.Subcommand)
		return 1
	}
}

func listSessions(ctx context.Context, app *App, args Args) int {
	sessions, err := app.Chat.ListSessions(ctx)
	if err != nil {
		return fail(err)
	}
	if len(sessions) == 0 {
		fmt.Println("No chat sessions yet. Start one with 'zatgpt chat'.")
		return 0
	}

	width := GetTerminalWidth()
	titleWidth := width - 40
	if titleWidth < 16 {
		titleWidth = 16
	}

	groups := model.GroupSessionsByDate(sessions, time.Now())
	for _, g := range groups {
		fmt.Println(headingStyle.Render(g.Label))
		for _, s := range g.Sessions {
			title := util.TruncateWidth(s.Title, titleWidth)
			if args.Quiet {
				fmt.Println(s.SessionID)
				continue
			}
			fmt.Printf("  %s  %s\n", labelStyle.Render(s.SessionID), title)
		}
	}
	return 0
}
