// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/pppw/internal/audio"
	"github.com/jeranaias/pppw/internal/util"
)

// CurrentVersion is written into new config files.
const CurrentVersion = "1"

// DefaultBaseURL is used when neither the config file nor the environment
// names an API server.
const DefaultBaseURL = "http://localhost:3000"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete pppw configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	API      APIConfig      `toml:"api" json:"api"`
	Storage  StorageConfig  `toml:"storage" json:"storage"`
	Recorder RecorderConfig `toml:"recorder" json:"recorder"`
	UI       UIConfig       `toml:"ui" json:"ui"`
	Logging  LoggingConfig  `toml:"logging" json:"logging"`
}

// APIConfig locates the remote answer and transcription endpoints.
type APIConfig struct {
	// BaseURL is prefixed to /api/ask and /api/transcribe-audio
	BaseURL string `toml:"base_url" json:"base_url"`
}

// StorageConfig controls where chat history is kept.
type StorageConfig struct {
	// Backend is "file" (default), "sqlite" or "memory"
	Backend string `toml:"backend" json:"backend"`
	// Dir holds the history file or database. Default: ~/.pppw/data
	Dir string `toml:"dir" json:"dir"`
	// Key is the storage key for the transcript
	Key string `toml:"key" json:"key"`
}

// RecorderConfig controls audio capture.
type RecorderConfig struct {
	// FFmpegPath is the capture binary. Default: "ffmpeg" on PATH
	FFmpegPath string `toml:"ffmpeg_path" json:"ffmpeg_path"`
	// InputFormat is the ffmpeg input (pulse, alsa, avfoundation, dshow). Empty: per-OS default
	InputFormat string `toml:"input_format" json:"input_format"`
	// InputDevice is the ffmpeg -i value. Empty: per-OS default
	InputDevice string `toml:"input_device" json:"input_device"`
	// MimeCandidates is the encoding negotiation order
	MimeCandidates []string `toml:"mime_candidates" json:"mime_candidates"`
	// SaveDir receives recordings saved for playback. Default: ~/.pppw/recordings
	SaveDir string `toml:"save_dir" json:"save_dir"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// Markdown renders assistant answers as markdown
	Markdown bool `toml:"markdown" json:"markdown"`
	// StartScreen is the first screen shown: "home" or "chat"
	StartScreen string `toml:"start_screen" json:"start_screen"`
}

// LoggingConfig controls the debug log.
type LoggingConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	File    string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with default values.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = ".pppw"
	}
	return &Config{
		Version: CurrentVersion,
		API: APIConfig{
			BaseURL: DefaultBaseURL,
		},
		Storage: StorageConfig{
			Backend: "file",
			Dir:     filepath.Join(dir, "data"),
			Key:     "pppw.chat.v1",
		},
		Recorder: RecorderConfig{
			FFmpegPath:     "ffmpeg",
			MimeCandidates: append([]string(nil), audio.DefaultCandidates...),
			SaveDir:        filepath.Join(dir, "recordings"),
		},
		UI: UIConfig{
			Theme:       "auto",
			Markdown:    true,
			StartScreen: "home",
		},
		Logging: LoggingConfig{
			Enabled: true,
			File:    filepath.Join(dir, "pppw.log"),
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the pppw configuration directory. PPPW_HOME overrides
// the default ~/.pppw.
func ConfigDir() (string, error) {
	if dir := os.Getenv("PPPW_HOME"); dir != "" {
		return expandHome(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".pppw"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
//
// When a file exists but cannot be parsed, the defaults are returned
// together with the parse error so callers can warn and continue.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	if loadErr == nil {
		if jsonPath, err := ConfigPathJSON(); err == nil {
			if _, statErr := os.Stat(jsonPath); statErr == nil {
				if err := LoadJSON(cfg, jsonPath); err != nil {
					loadErr = fmt.Errorf("failed to load JSON config: %w", err)
					cfg = Default()
				} else {
					return finish(cfg)
				}
			}
		}
	}

	out, err := finish(cfg)
	if err != nil {
		return nil, err
	}
	return out, loadErr
}

// finish applies env overrides, fills defaults and validates.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := fillDefaults(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Storage
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = defaults.Storage.Dir
	}
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = defaults.Storage.Key
	}

	// Recorder
	if cfg.Recorder.FFmpegPath == "" {
		cfg.Recorder.FFmpegPath = defaults.Recorder.FFmpegPath
	}
	if len(cfg.Recorder.MimeCandidates) == 0 {
		cfg.Recorder.MimeCandidates = defaults.Recorder.MimeCandidates
	}
	if cfg.Recorder.SaveDir == "" {
		cfg.Recorder.SaveDir = defaults.Recorder.SaveDir
	}
	cfg.Recorder.SaveDir = expandHome(cfg.Recorder.SaveDir)

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.StartScreen == "" {
		cfg.UI.StartScreen = defaults.UI.StartScreen
	}

	// Logging
	if cfg.Logging.File == "" {
		cfg.Logging.File = defaults.Logging.File
	}
	cfg.Logging.File = expandHome(cfg.Logging.File)

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# pppw configuration file\n")
	b.WriteString("# Generated by pppw - edit with care\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// An empty base URL is allowed; requests then fail with a clear message
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "api.base_url",
				Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.API.BaseURL),
			})
		}
	}

	validBackends := map[string]bool{"file": true, "sqlite": true, "memory": true}
	if !validBackends[strings.ToLower(c.Storage.Backend)] {
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite, memory", c.Storage.Backend),
		})
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		errs = append(errs, ValidationError{Field: "storage.key", Message: "must not be empty"})
	}

	for _, m := range c.Recorder.MimeCandidates {
		if !strings.HasPrefix(m, "audio/") {
			errs = append(errs, ValidationError{
				Field:   "recorder.mime_candidates",
				Message: fmt.Sprintf("'%s' is not an audio type", m),
			})
		}
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}
	validScreens := map[string]bool{"home": true, "chat": true, "about": true}
	if !validScreens[strings.ToLower(c.UI.StartScreen)] {
		errs = append(errs, ValidationError{
			Field:   "ui.start_screen",
			Message: fmt.Sprintf("invalid screen '%s', must be one of: home, chat, about", c.UI.StartScreen),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - PPPW_API_BASE_URL: overrides api.base_url
//   - VITE_API_BASE_URL: same, used when PPPW_API_BASE_URL is unset
//   - PPPW_STORAGE_BACKEND: overrides storage.backend
//   - PPPW_DATA_DIR: overrides storage.dir
//   - PPPW_FFMPEG: overrides recorder.ffmpeg_path
//   - PPPW_AUDIO_INPUT: "format:device", overrides recorder.input_format/input_device
//   - PPPW_THEME: overrides ui.theme
//   - PPPW_LOG_FILE: overrides logging.file
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("PPPW_API_BASE_URL"); base != "" {
		c.API.BaseURL = base
	} else if base := os.Getenv("VITE_API_BASE_URL"); base != "" {
		c.API.BaseURL = base
	}

	if backend := os.Getenv("PPPW_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}

	if dir := os.Getenv("PPPW_DATA_DIR"); dir != "" {
		c.Storage.Dir = dir
	}

	if ffmpeg := os.Getenv("PPPW_FFMPEG"); ffmpeg != "" {
		c.Recorder.FFmpegPath = ffmpeg
	}

	// First colon only: avfoundation devices look like ":0"
	if input := os.Getenv("PPPW_AUDIO_INPUT"); input != "" {
		if format, device, ok := strings.Cut(input, ":"); ok && format != "" && device != "" {
			c.Recorder.InputFormat = format
			c.Recorder.InputDevice = device
		}
	}

	if theme := os.Getenv("PPPW_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if logFile := os.Getenv("PPPW_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
		c.Logging.Enabled = true
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "api.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	if key == "" || len(parts) == 0 {
		return reflect.Value{}, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field
// equivalent. "base_url" becomes "BaseUrl", which matches BaseURL case-insensitively.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.EqualFold(strVal, "true") || strings.EqualFold(strVal, "yes")
			field.SetBool(boolVal)
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, s := range strings.Split(strVal, ",") {
					if s = strings.TrimSpace(s); s != "" {
						items = append(items, s)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"api.base_url",
		"storage.backend",
		"storage.dir",
		"storage.key",
		"recorder.ffmpeg_path",
		"recorder.input_format",
		"recorder.input_device",
		"recorder.mime_candidates",
		"recorder.save_dir",
		"ui.theme",
		"ui.markdown",
		"ui.start_screen",
		"logging.enabled",
		"logging.file",
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Recorder.MimeCandidates = append([]string(nil), c.Recorder.MimeCandidates...)
	return &clone
}

// String returns the config as indented JSON for display.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
