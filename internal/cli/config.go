// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Display the effective configuration
//   get <key>           Print one value
//   set <key> <value>   Set a value in the config file
//   reset               Write the default configuration
//   path                Show the config file path
//
// Examples:
//   pppw config
//   pppw config show --json
//   pppw config get api.base_url
//   pppw config set api.base_url https://pal.example.com
//   pppw config set storage.backend sqlite
//   pppw config set recorder.mime_candidates "audio/ogg;codecs=opus,audio/ogg"
//
// show and get include environment overrides. set and reset edit only the
// file, so an override in the environment is never written back.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/pppw/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(cfg *config.Config, args Args, w io.Writer) error {
	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			_, err := fmt.Fprintln(w, cfg.String())
			return err
		}
		return showConfig(cfg, w)

	case "get":
		if args.ConfigKey == "" {
			return ErrMissingArgument("key", "pppw config get <key>")
		}
		v, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return &UsageError{Message: err.Error(), Usage: "pppw config get <key>"}
		}
		if args.JSON {
			return json.NewEncoder(w).Encode(map[string]interface{}{args.ConfigKey: v})
		}
		fmt.Fprintln(w, formatValue(v))
		return nil

	case "set":
		if args.ConfigKey == "" {
			return ErrMissingArgument("key", "pppw config set <key> <value>")
		}
		return setConfig(args.ConfigKey, args.ConfigVal, w)

	case "reset":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		if err := config.SaveTOML(config.Default(), path); err != nil {
			return NewCommandError("config", "reset", "failed to save config", err)
		}
		fmt.Fprintf(w, "%s wrote defaults to %s\n", SuccessStyle.Render("[OK]"), path)
		return nil

	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		if args.JSON {
			return json.NewEncoder(w).Encode(map[string]string{"path": path})
		}
		fmt.Fprintln(w, path)
		return nil

	default:
		return &UsageError{
			Message: fmt.Sprintf("unknown config subcommand: %s", args.Subcommand),
			Usage:   "pppw config [show|get|set|reset|path]",
		}
	}
}

func showConfig(cfg *config.Config, w io.Writer) error {
	fmt.Fprintln(w, TitleStyle.Render("pppw configuration"))
	section := ""
	for _, key := range config.GetAllKeys() {
		v, err := cfg.Get(key)
		if err != nil {
			return err
		}
		name := key
		if i := strings.IndexByte(key, '.'); i >= 0 {
			if s := key[:i]; s != section {
				section = s
				fmt.Fprintln(w)
				fmt.Fprintln(w, SpeakerStyle.Render("["+s+"]"))
			}
			name = key[i+1:]
		}
		fmt.Fprintf(w, "  %-18s %s\n", DimStyle.Render(name), formatValue(v))
	}
	if path, err := config.ConfigPathTOML(); err == nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, DimStyle.Render("File: "+path))
	}
	return nil
}

func setConfig(key, value string, w io.Writer) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return NewCommandError("config", "set", "existing config file is invalid", err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return statErr
	}

	if err := cfg.Set(key, value); err != nil {
		return &UsageError{Message: err.Error(), Usage: "pppw config set <key> <value>"}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration value: %w", err)
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return NewCommandError("config", "set", "failed to save config", err)
	}

	fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("[OK]"), key, value)
	return nil
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case []string:
		return strings.Join(t, ",")
	case string:
		if t == "" {
			return `""`
		}
		return t
	default:
		return fmt.Sprint(t)
	}
}
