// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// main.go - entry point for the zatgpt terminal client.
package main

import (
	"os"

	"github.com/zatgpt/zatgpt-tui/internal/cli"
)

// Version information (overridden at build time via -ldflags)
var (
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = gitCommit
	cli.BuildDate = buildDate
}

func main() {
	cmd, args := cli.Parse()

	var code int
	switch cmd {
	case cli.CmdTUI:
		code = cli.HandleTUI(args)
	case cli.CmdLogin:
		code = cli.HandleLogin(args)
	case cli.CmdRegister:
		code = cli.HandleRegister(args)
	case cli.CmdLogout:
		code = cli.HandleLogout(args)
	case cli.CmdWhoami:
		code = cli.HandleWhoami(args)
	case cli.CmdSessions:
		code = cli.HandleSessions(args)
	case cli.CmdUsers:
		code = cli.HandleUsers(args)
	case cli.CmdChat:
		code = cli.HandleChat(args)
	case cli.CmdConfig:
		code = cli.HandleConfig(args)
	case cli.CmdVersion:
		code = cli.HandleVersion(args)
	case cli.CmdHelp:
		code = cli.HandleHelp(args)
	default:
		code = cli.HandleHelp(args)
	}
	os.Exit(code)
}
