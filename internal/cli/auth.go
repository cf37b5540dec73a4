// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth.go - login, register, logout and whoami command handlers.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zatgpt/zatgpt-tui/internal/api"
)

// HandleLogin signs in interactively and stores the token pair.
func HandleLogin(args Args) int {
	app, err := NewApp(args)
	if err != nil {
		return fail(err)
	}

	if !IsTTY() {
		fmt.Fprintln(os.Stderr, "login requires an interactive terminal")
		return 1
	}

	username, err := promptLine("Username: ")
	if err != nil {
		return fail(err)
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.Config.Timeout())
	defer cancel()

	if err := app.Auth.Login(ctx, username, password); err != nil {
		if errors.Is(err, api.ErrAuthFailed) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Invalid username or password."))
			return 1
		}
		return fail(err)
	}

	if !args.Quiet {
		fmt.Println(successStyle.Render("Signed in as " + username + "."))
	}
	return 0
}

// HandleRegister creates an account. Registration does not sign in; the
// user logs in afterwards with the new credentials.
func HandleRegister(args Args) int {
	app, err := NewApp(args)
	if err != nil {
		return fail(err)
	}

	if !IsTTY() {
		fmt.Fprintln(os.Stderr, "register requires an interactive terminal")
		return 1
	}

	username, err := promptLine("Username: ")
	if err != nil {
		return fail(err)
	}
	email, err := promptLine("Email: ")
	if err != nil {
		return fail(err)
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return fail(err)
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return fail(err)
	}
	if password != confirm {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Passwords do not match."))
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.Config.Timeout())
	defer cancel()

	if err := app.Auth.Register(ctx, username, email, password); err != nil {
		fields := api.FieldErrors(err)
		if len(fields) == 0 {
			return fail(err)
		}
		for field, msgs := range fields {
			fmt.Fprintln(os.Stderr, errorStyle.Render(field+": "+strings.Join(msgs, "; ")))
		}
		return 1
	}

	fmt.Println(successStyle.Render("Account created. Run 'zatgpt login' to sign in."))
	return 0
}

// HandleLogout discards the stored token pair. Purely local, the backend
// has no revocation endpoint.
func HandleLogout(args Args) int {
	app, err := NewApp(args)
	if err != nil {
		return fail(err)
	}
	if err := app.Auth.Logout(); err != nil {
		return fail(err)
	}
	if !args.Quiet {
		fmt.Println("Signed out.")
	}
	return 0
}

// HandleWhoami shows the signed-in account and its admin role, if any.
func HandleWhoami(args Args) int {
	app, err := NewApp(args)
	if err != nil {
		return fail(err)
	}

	if !app.Auth.IsLoggedIn() {
		fmt.Println("Not signed in.")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.Config.Timeout())
	defer cancel()

	info, err := app.Auth.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			fmt.Println("Session expired. Run 'zatgpt login'.")
			return 1
		}
		return fail(err)
	}

	fmt.Printf("%s %s\n", labelStyle.Render("username:"), info.Username)
	if info.Email != "" {
		fmt.Printf("%s %s\n", labelStyle.Render("email:   "), info.Email)
	}

	perm, err := app.Admin.CheckPermission(ctx)
	if err == nil && perm.IsAdmin {
		fmt.Printf("%s %s\n", labelStyle.Render("role:    "), string(perm.Role))
	}
	return 0
}
