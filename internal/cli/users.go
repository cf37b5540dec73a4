// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// users.go - admin user management from the command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/zatgpt/zatgpt-tui/internal/model"
	adminsvc "github.com/zatgpt/zatgpt-tui/internal/service/admin"
)

// HandleUsers lists users or updates their permission flags. Both
// operations require an admin role on the signed-in account.
func HandleUsers(args Args) int {
	app, err := NewApp(args)
	if err != nil {
		return fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.Config.Timeout())
	defer cancel()

	perm, err := app.Admin.CheckPermission(ctx)
	if err != nil {
		return fail(err)
	}
	if !perm.IsAdmin {
		fmt.Fprintln(os.Stderr, errorStyle.Render("You do not have access to user management."))
		return 1
	}

	switch args.Subcommand {
	case "", "list":
		return listUsers(ctx, app, args)
	case "set":
		return setUserPerms(ctx, app, perm, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown users subcommand: %s\n", args.Subcommand)
		return 1
	}
}

func listUsers(ctx context.Context, app *App, args Args) int {
	users, err := app.Admin.ListUsers(ctx)
	if err != nil {
		return fail(err)
	}

	if filter, ok := args.Options["filter"]; ok {
		users = adminsvc.FilterUsers(users, filter)
	}

	if args.Quiet {
		for _, u := range users {
			fmt.Printf("%s\t%s\n", u.UUID, u.Username)
		}
		return 0
	}

	fmt.Println(headingStyle.Render(fmt.Sprintf("%d users", len(users))))
	for _, u := range users {
		fmt.Printf("  %s  %-20s  active=%-5t staff=%-5t superuser=%t\n",
			labelStyle.Render(u.UUID), u.Username, u.IsActive, u.IsStaff, u.IsSuperuser)
	}
	return 0
}

// setUserPerms applies --active / --staff / --superuser flags to a user.
// Flags the caller's role may not edit are rejected up front rather than
// letting the backend bounce the request.
func setUserPerms(ctx context.Context, app *App, perm adminsvc.Permission, args Args) int {
	if len(args.Raw) == 0 {
		fmt.Fprintln(os.Stderr, "usage: zatgpt users set UUID [--active=BOOL] [--staff=BOOL] [--superuser=BOOL]")
		return 1
	}
	uuid := args.Raw[0]

	users, err := app.Admin.ListUsers(ctx)
	if err != nil {
		return fail(err)
	}
	var target *model.User
	for i := range users {
		if users[i].UUID == uuid {
			target = &users[i]
			break
		}
	}
	if target == nil {
		fmt.Fprintf(os.Stderr, "no user with UUID %s\n", uuid)
		return 1
	}

	updated := *target
	changed := false
	for _, field := range []struct {
		flag string
		name string
	}{
		{"active", "is_active"},
		{"staff", "is_staff"},
		{"superuser", "is_superuser"},
	} {
		v, ok := args.BoolOpts[field.flag]
		if !ok {
			continue
		}
		if !perm.Role.CanEdit(field.name) {
			fmt.Fprintln(os.Stderr, warningStyle.Render(
				"your role may not change "+field.name+", skipping"))
			continue
		}
		updated = updated.WithPermission(field.name, v)
		changed = true
	}
	if !changed {
		fmt.Fprintln(os.Stderr, "nothing to change")
		return 1
	}

	if err := app.Admin.UpdatePermissions(ctx, updated); err != nil {
		return fail(err)
	}
	if !args.Quiet {
		fmt.Println(successStyle.Render(fmt.Sprintf(
			"%s: active=%t staff=%t superuser=%t",
			updated.Username, updated.IsActive, updated.IsStaff, updated.IsSuperuser)))
	}
	return 0
}
