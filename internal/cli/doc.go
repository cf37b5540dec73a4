// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the command line surface of zatgpt.
//
// The default invocation starts the full-screen TUI; subcommands cover the
// scriptable paths (auth, sessions, users, config) and a line-oriented chat
// REPL for terminals where the TUI is impractical.
package cli
