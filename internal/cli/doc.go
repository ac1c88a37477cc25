// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the line-mode commands of
// pppw.
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    env, err := cli.OpenEnv(cfg)
//	    ...
//	    err = cli.HandleAsk(ctx, env, args, os.Stdout)
//	case cli.CmdHistory:
//	    err = cli.HandleHistory(ctx, cfg, args, os.Stdout)
//	}
//	os.Exit(cli.GetExitCode(err))
//
// # Commands
//
//   - ask: one question, answer printed and saved to the chat
//   - chat: line-mode REPL with voice recording via /record
//   - history: print, follow or clear the saved chat
//   - config: show, get, set, reset and locate the configuration
//
// ask, history and config support --json.
package cli
