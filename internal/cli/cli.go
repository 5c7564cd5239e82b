// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line argument parsing and dispatch for clippy.
//
// Commands:
//   clippy             Interactive chat (default)
//   clippy serve       Start the web chat server
//   clippy config      Show resolved configuration
//   clippy version     Show version information
//   clippy help        Show usage

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// Build-time variables, set via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMAND TYPES
// =============================================================================

// Command identifies which subcommand was requested.
type Command int

const (
	CmdChat Command = iota // default when no subcommand given
	CmdServe
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds the parsed command-line arguments.
type Args struct {
	Command Command

	// Serve options
	Port int // 0 means use configured port

	// Chat options
	Model        string // overrides configured deployment
	SystemPrompt string // overrides configured system prompt
	NoColor      bool
}

// =============================================================================
// USAGE
// =============================================================================

const usageText = `clippy - a bouncing paperclip chat assistant

Usage:
  clippy [flags]            Start an interactive chat session
  clippy serve [flags]      Start the web chat server
  clippy config             Show resolved configuration
  clippy version            Show version information
  clippy help               Show this help

Chat Flags:
  -m, --model NAME          Use a specific model deployment
  --system TEXT             Override the system prompt
  --no-color                Disable colored output

Serve Flags:
  -p, --port N              Listen port (default: 5000)

Chat Commands (inside a session):
  /help                     Show available commands
  /clear (or clear)         Clear the conversation
  /history                  Show the conversation so far
  /save [FILE]              Export the conversation as markdown
  /status                   Show connection status
  /quit (or quit, exit)     Leave the chat

Configuration:
  Settings are read from ~/.clippy/config.toml and may be
  overridden with environment variables:

    AZURE_AI_FOUNDRY_ENDPOINT   Endpoint URL (required)
    AZURE_AI_FOUNDRY_API_KEY    API key (required)
    AZURE_AI_FOUNDRY_MODEL      Model deployment (default: gpt-4o)
    CLIPPY_SYSTEM_PROMPT        System prompt override
    CLIPPY_PORT                 Web server port
`

// Usage returns the top-level help text.
func Usage() string {
	return usageText
}

// =============================================================================
// PARSING
// =============================================================================

// ParseError describes an invalid command line.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

// Parse parses command-line arguments (excluding the program name).
func Parse(argv []string) (*Args, error) {
	args := &Args{Command: CmdChat}

	i := 0
	if len(argv) > 0 && !strings.HasPrefix(argv[0], "-") {
		switch argv[0] {
		case "serve":
			args.Command = CmdServe
		case "config":
			args.Command = CmdConfig
		case "version":
			args.Command = CmdVersion
		case "help":
			args.Command = CmdHelp
		case "chat":
			args.Command = CmdChat
		default:
			return nil, &ParseError{Message: fmt.Sprintf("unknown command: %s", argv[0])}
		}
		i = 1
	}

	for ; i < len(argv); i++ {
		arg := argv[i]

		// Support --flag=value form.
		inline := ""
		hasInline := false
		if strings.HasPrefix(arg, "--") {
			if eq := strings.Index(arg, "="); eq >= 0 {
				inline = arg[eq+1:]
				hasInline = true
				arg = arg[:eq]
			}
		}

		takeValue := func() (string, error) {
			if hasInline {
				return inline, nil
			}
			if i+1 >= len(argv) {
				return "", &ParseError{Message: fmt.Sprintf("%s requires a value", arg)}
			}
			i++
			return argv[i], nil
		}

		switch arg {
		case "-h", "--help":
			args.Command = CmdHelp
		case "--version", "-V":
			args.Command = CmdVersion
		case "--no-color":
			args.NoColor = true
		case "-m", "--model":
			val, err := takeValue()
			if err != nil {
				return nil, err
			}
			args.Model = val
		case "--system":
			val, err := takeValue()
			if err != nil {
				return nil, err
			}
			args.SystemPrompt = val
		case "-p", "--port":
			val, err := takeValue()
			if err != nil {
				return nil, err
			}
			port, convErr := strconv.Atoi(val)
			if convErr != nil || port < 1 || port > 65535 {
				return nil, &ParseError{Message: fmt.Sprintf("invalid port: %s", val)}
			}
			args.Port = port
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, &ParseError{Message: fmt.Sprintf("unknown flag: %s", arg)}
			}
			return nil, &ParseError{Message: fmt.Sprintf("unexpected argument: %s", arg)}
		}
	}

	return args, nil
}

// FormatVersion returns the version banner.
func FormatVersion() string {
	return fmt.Sprintf("clippy %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
