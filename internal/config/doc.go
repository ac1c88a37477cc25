// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for pppw.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (PPPW_*, VITE_API_BASE_URL)
//   - ~/.pppw/config.toml
//   - ~/.pppw/config.json
//   - Built-in defaults
//
// PPPW_HOME relocates ~/.pppw.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Printf("config: %v", err)
//	}
//	fmt.Println(cfg.API.BaseURL)
//
// Access values by dot notation:
//
//	val, _ := cfg.Get("storage.backend")
//	_ = cfg.Set("ui.theme", "dark")
//
// There is no process-wide instance; the loaded Config is passed to the
// components that need it.
package config
