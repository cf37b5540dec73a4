// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// configcmd.go - configuration inspection and editing.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zatgpt/zatgpt-tui/internal/config"
)

// HandleConfig shows, edits, or locates the config file.
func HandleConfig(args Args) int {
	switch args.Subcommand {
	case "", "show":
		return showConfig(args)
	case "set":
		return setConfig(args)
	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return fail(err)
		}
		fmt.Println(path)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown config subcommand: %s\n", args.Subcommand)
		return 1
	}
}

func showConfig(args Args) int {
	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%s %s\n", labelStyle.Render("api.base_url:              "), cfg.API.BaseURL)
	fmt.Printf("%s %d\n", labelStyle.Render("api.timeout_secs:          "), cfg.API.TimeoutSecs)
	fmt.Printf("%s %t\n", labelStyle.Render("ui.restore_draft_on_error:"), cfg.UI.RestoreDraftOnError)
	fmt.Printf("%s %d\n", labelStyle.Render("ui.users_per_page:         "), cfg.UI.UsersPerPage)
	fmt.Printf("%s %t\n", labelStyle.Render("ui.markdown:               "), cfg.UI.Markdown)
	return 0
}

func setConfig(args Args) int {
	if len(args.Raw) < 2 {
		fmt.Fprintln(os.Stderr, "usage: zatgpt config set KEY VALUE")
		return 1
	}
	key, value := args.Raw[0], args.Raw[1]

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}

	if err := applyConfigKey(cfg, key, value); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("invalid value: "+err.Error()))
		return 1
	}
	if err := config.Save(cfg); err != nil {
		return fail(err)
	}
	if !args.Quiet {
		fmt.Println(successStyle.Render(key + " = " + value))
	}
	return 0
}

func applyConfigKey(cfg *config.Config, key, value string) error {
	switch key {
	case "api.base_url":
		cfg.API.BaseURL = value
	case "api.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer", key)
		}
		cfg.API.TimeoutSecs = n
	case "ui.users_per_page":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer", key)
		}
		cfg.UI.UsersPerPage = n
	case "ui.restore_draft_on_error":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false", key)
		}
		cfg.UI.RestoreDraftOnError = b
	case "ui.markdown":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false", key)
		}
		cfg.UI.Markdown = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, strconv.ErrSyntax
}
