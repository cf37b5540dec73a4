// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for zatgpt.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/zatgpt/zatgpt-tui/internal/api"
	"github.com/zatgpt/zatgpt-tui/internal/config"
	adminsvc "github.com/zatgpt/zatgpt-tui/internal/service/admin"
	authsvc "github.com/zatgpt/zatgpt-tui/internal/service/auth"
	chatsvc "github.com/zatgpt/zatgpt-tui/internal/service/chat"
	"github.com/zatgpt/zatgpt-tui/internal/session"
	"github.com/zatgpt/zatgpt-tui/internal/token"
)

// Version information (can be overridden at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdRegister
	CmdLogout
	CmdWhoami
	CmdSessions
	CmdUsers
	CmdChat
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	APIURL  string // --api-url override

	// Command-specific
	Subcommand string
	Raw        []string
	Options    map[string]string
	BoolOpts   map[string]bool
}

const usageText = `zatgpt - terminal client for the ZatGPT chat service

Usage:
  zatgpt                       Start the TUI (default)
  zatgpt login                 Sign in and store tokens
  zatgpt register              Create an account
  zatgpt logout                Discard stored tokens
  zatgpt whoami                Show the signed-in account
  zatgpt chat [session-id]     Interactive chat in the terminal
  zatgpt sessions [list|delete ID]
                               Manage chat sessions
  zatgpt users [list|set UUID] Manage users (admins only)
  zatgpt config [show|set KEY VALUE|path]
                               Configuration
  zatgpt version               Show version information

Global flags:
  --api-url URL    Override the backend URL for this invocation
  -q, --quiet      Minimal output
  -v, --verbose    Verbose output

Examples:
  zatgpt login
  zatgpt chat
  zatgpt sessions list
  zatgpt sessions delete 4b2f7a61-1c3e-4f7b-9a2d-8e5c6d1f0a9b
  zatgpt users set 0c9a... --staff=true
  zatgpt config set api.base_url https://chat.example.com

Environment:
  ZATGPT_API_URL        Backend base URL
  ZATGPT_CONFIG_DIR     Config directory (default ~/.zatgpt)
  ZATGPT_TIMEOUT_SECS   Request timeout in seconds
`

// Parse reads os.Args and returns the command plus its arguments.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given argument list.
func ParseArgs(argv []string) (Command, Args) {
	args := Args{
		Options:  make(map[string]string),
		BoolOpts: make(map[string]bool),
	}

	var positional []string
	i := 0
	for i < len(argv) {
		arg := argv[i]
		switch {
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "-v" || arg == "--verbose":
			args.Verbose = true
		case arg == "--api-url" && i+1 < len(argv):
			i++
			args.APIURL = argv[i]
		case strings.HasPrefix(arg, "--api-url="):
			args.APIURL = strings.TrimPrefix(arg, "--api-url=")
		case strings.HasPrefix(arg, "--"):
			name := strings.TrimPrefix(arg, "--")
			if eq := strings.Index(name, "="); eq >= 0 {
				value := name[eq+1:]
				name = name[:eq]
				if value == "true" || value == "false" {
					args.BoolOpts[name] = value == "true"
				} else {
					args.Options[name] = value
				}
			} else {
				args.BoolOpts[name] = true
			}
		default:
			positional = append(positional, arg)
		}
		i++
	}

	if len(positional) == 0 {
		return CmdTUI, args
	}

	cmd := positional[0]
	if len(positional) > 1 {
		args.Subcommand = positional[1]
		args.Raw = positional[2:]
	}

	switch cmd {
	case "login":
		return CmdLogin, args
	case "register":
		return CmdRegister, args
	case "logout":
		return CmdLogout, args
	case "whoami":
		return CmdWhoami, args
	case "sessions", "session":
		return CmdSessions, args
	case "users", "user":
		return CmdUsers, args
	case "chat":
		return CmdChat, args
	case "config":
		return CmdConfig, args
	case "version", "-V", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}

// =============================================================================
// SHARED WIRING
// =============================================================================

// App bundles everything a command handler needs.
type App struct {
	Config *config.Config
	Tokens *token.Store
	Client *api.Client
	Auth   *authsvc.Service
	Chat   *chatsvc.Service
	Admin  *adminsvc.Service
	Hub    *session.Hub
}

// setupLogging sends the stdlib logger to a file in the config dir. The
// default stderr output would tear the TUI, and request lines are only
// useful after the fact anyway. Failures fall back to a discarded logger.
func setupLogging() {
	if err := config.EnsureConfigDir(); err != nil {
		log.SetOutput(io.Discard)
		return
	}
	dir, err := config.ConfigDir()
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "zatgpt.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(f)
}

// NewApp loads config and wires the service stack.
func NewApp(args Args) (*App, error) {
	setupLogging()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if args.APIURL != "" {
		cfg.API.BaseURL = args.APIURL
	}

	tokens, err := token.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	hub := session.Default()
	client := api.NewClient(cfg.API.BaseURL, tokens, hub).WithTimeout(cfg.Timeout())

	return &App{
		Config: cfg,
		Tokens: tokens,
		Client: client,
		Auth:   authsvc.NewService(client, tokens),
		Chat:   chatsvc.NewService(client),
		Admin:  adminsvc.NewService(client),
		Hub:    hub,
	}, nil
}

// HandleHelp prints usage.
func HandleHelp(Args) int {
	fmt.Print(usageText)
	return 0
}

// HandleVersion prints build information.
func HandleVersion(args Args) int {
	if args.Quiet {
		fmt.Println(Version)
		return 0
	}
	fmt.Printf("zatgpt %s\n", Version)
	fmt.Printf("  commit: %s\n", GitCommit)
	fmt.Printf("  built:  %s\n", BuildDate)
	return 0
}

// fail prints an error the way every command handler does and returns the
// exit code.
func fail(err error) int {
	fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+api.UserMessage(err)))
	return 1
}
