// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for pppw.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name as typed.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdHistory:
		return "history"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool // Output in JSON format
	NoColor bool

	// Command-specific
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	Follow     bool // history --follow
	Confirm    bool // history clear --yes

	// Name is the unrecognized command for CmdUnknown
	Name string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `pppw - Pocket Poker Pal in your terminal

Ask questions about the poker rulebook by typing or by voice.

Usage:
  pppw                         Start the TUI (default)
  pppw ask "question"          Ask a single question
  pppw chat                    Line-mode chat with /record support
  pppw history [show|clear]    Show or clear the saved chat
  pppw config [show|get|set|reset|path]
                               Configuration
  pppw version                 Show version
  pppw help                    Show this help

History:
  pppw history show            Print the saved transcript
    --follow, -f               Keep printing as other sessions write (file backend)
    --json                     Output the raw messages
  pppw history clear --yes     Delete the saved transcript

Config:
  pppw config show             Print the effective configuration
  pppw config path             Print the config file path
  pppw config get KEY          Print one value, e.g. api.base_url
  pppw config set KEY VALUE    Set and save one value

Chat commands:
  /record   start recording       /stop     stop and transcribe
  /discard  drop the recording    /clear    clear the chat
  /history  print the transcript  /help     list commands
  /quit     exit

Global Flags:
  -q, --quiet     Minimal output
  -v, --verbose   Debug output on stderr
  --json          Output in JSON format
  --no-color      Disable colors

Environment:
  PPPW_API_BASE_URL     API server (also VITE_API_BASE_URL)
  PPPW_STORAGE_BACKEND  file, sqlite or memory
  PPPW_DATA_DIR         Where history is stored
  PPPW_FFMPEG           Path to ffmpeg
  PPPW_AUDIO_INPUT      Capture input as format:device, e.g. pulse:default
  PPPW_HOME             Config directory (default ~/.pppw)

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "pppw version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments and returns the command and args.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask", "a":
		parsedArgs.Query = strings.TrimSpace(strings.Join(remaining, " "))
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "history", "h":
		parseHistoryArgs(&parsedArgs, remaining)
		return CmdHistory, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "--version", "-V":
		return CmdVersion, parsedArgs

	case "help", "--help", "-h":
		return CmdHelp, parsedArgs

	default:
		parsedArgs.Name = cmd
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags strips global flags wherever they appear. Arguments after
// "--" are passed through untouched.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i+1:]...)
			break
		}
		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--no-color":
			parsedArgs.NoColor = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsedArgs
}

func parseHistoryArgs(args *Args, remaining []string) {
	for _, arg := range remaining {
		switch arg {
		case "-f", "--follow":
			args.Follow = true
		case "-y", "--yes", "--confirm":
			args.Confirm = true
		default:
			if args.Subcommand == "" {
				args.Subcommand = strings.ToLower(arg)
			}
		}
	}
	if args.Subcommand == "" {
		args.Subcommand = "show"
	}
}

func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) == 0 {
		args.Subcommand = "show"
		return
	}
	args.Subcommand = strings.ToLower(remaining[0])
	if len(remaining) > 1 {
		args.ConfigKey = remaining[1]
	}
	if len(remaining) > 2 {
		args.ConfigVal = strings.Join(remaining[2:], " ")
	}
}
