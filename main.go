// pppw - Pocket Poker Pal in the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/jeranaias/pppw/internal/cli"
	"github.com/jeranaias/pppw/internal/config"
	"github.com/jeranaias/pppw/internal/ui/chat"
	"github.com/jeranaias/pppw/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	// A .env next to the binary supplies PPPW_* and VITE_API_BASE_URL
	_ = godotenv.Load()

	cmd, args := cli.Parse()
	cli.ApplyColorProfile(args.NoColor)

	cfg, err := config.Load()
	if cfg == nil {
		cli.DisplayError(os.Stderr, err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}
	if err != nil && !args.Quiet {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	closeLog := setupLogging(cfg, args, cmd == cli.CmdTUI)
	err = run(cmd, args, cfg)
	closeLog()

	if err != nil && !errors.Is(err, cli.ErrAnswerFailed) {
		cli.DisplayError(os.Stderr, err, args.JSON)
	}
	os.Exit(cli.GetExitCode(err))
}

func run(cmd cli.Command, args cli.Args, cfg *config.Config) error {
	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return nil
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return nil
	case cli.CmdUnknown:
		cli.PrintUsage(os.Stderr)
		return &cli.UsageError{Message: "unknown command: " + args.Name}
	case cli.CmdConfig:
		return cli.HandleConfig(cfg, args, os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd == cli.CmdHistory {
		return cli.HandleHistory(ctx, cfg, args, os.Stdout)
	}

	env, err := cli.OpenEnv(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := env.Close(); cerr != nil {
			log.Printf("SHUTDOWN_ERROR | error=%v", cerr)
		}
	}()

	switch cmd {
	case cli.CmdAsk:
		return cli.HandleAsk(ctx, env, args, os.Stdout)
	case cli.CmdChat:
		// chat cancels per request on Ctrl+C instead of exiting
		stop()
		return cli.HandleChat(env, args)
	default:
		return runTUI(ctx, env)
	}
}

// runTUI starts the full-screen interface.
func runTUI(ctx context.Context, env *cli.Env) error {
	if !cli.IsTTY() {
		return &cli.UsageError{
			Message: "the interactive interface needs a terminal",
			Usage:   "pppw ask <question> | pppw chat",
		}
	}
	cfg := env.Config
	theme := styles.NewTheme(cfg.UI.Theme)

	app := NewApp(env.Controller, theme, chat.Options{
		Context:  ctx,
		SaveDir:  cfg.Recorder.SaveDir,
		Markdown: cfg.UI.Markdown,
	}, ParseScreen(cfg.UI.StartScreen))

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running pppw: %w", err)
	}
	return nil
}

// setupLogging routes the standard logger. The TUI owns the terminal, so it
// only ever logs to a file.
func setupLogging(cfg *config.Config, args cli.Args, tui bool) func() {
	log.SetFlags(log.LstdFlags)

	if args.Verbose && !tui {
		log.SetOutput(os.Stderr)
		return func() {}
	}
	if !cfg.Logging.Enabled || cfg.Logging.File == "" {
		log.SetOutput(io.Discard)
		return func() {}
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0700); err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	var (
		f   *os.File
		err error
	)
	if tui {
		f, err = tea.LogToFile(cfg.Logging.File, "pppw")
	} else {
		f, err = os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err == nil {
			log.SetOutput(f)
		}
	}
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	return func() { f.Close() }
}
