// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/pppw/internal/recorder"
	"github.com/jeranaias/pppw/internal/ui/styles"
)

// Status texts for the recorder transitions.
const (
	TranscribingText = "Transcribing…"
	StartingText     = "Starting microphone…"
	StoppingText     = "Finishing recording…"
)

// RecordingText is the status line while recording.
func RecordingText(seconds int) string {
	return fmt.Sprintf("Recording… %ds — press ctrl+r when done.", seconds)
}

// StatusInfo is what the status row shows.
type StatusInfo struct {
	Recorder     recorder.State
	Transcribing bool
	Asking       bool
	Stopping     bool
	Notice       string // transient, e.g. a saved file path
	Spinner      string
}

// StatusRow renders the recorder state line followed by the key hints that
// currently apply.
func StatusRow(theme *styles.Theme, info StatusInfo) string {
	var parts []string

	switch {
	case info.Recorder.Starting:
		parts = append(parts, theme.Recording.Render(StartingText))
	case info.Stopping:
		parts = append(parts, theme.Recording.Render(StoppingText))
	case info.Recorder.Status == recorder.StatusRecording:
		parts = append(parts, theme.Recording.Render("● "+RecordingText(info.Recorder.Seconds)))
	case info.Transcribing:
		parts = append(parts, theme.Transcribing.Render(strings.TrimSpace(info.Spinner+" "+TranscribingText)))
	case info.Recorder.Status == recorder.StatusError && info.Recorder.Error != "":
		parts = append(parts, theme.ErrorText.Render(info.Recorder.Error))
	}
	if info.Notice != "" {
		parts = append(parts, theme.Notice.Render(info.Notice))
	}

	parts = append(parts, strings.Join(Hints(theme, info), "  "))
	return theme.StatusBar.Render(strings.Join(parts, "  "))
}

// Hints lists the shortcuts available in the given state.
func Hints(theme *styles.Theme, info StatusInfo) []string {
	busy := info.Asking || info.Transcribing
	var hints []string

	switch {
	case info.Recorder.Starting || info.Stopping:
	case info.Recorder.Status == recorder.StatusRecording:
		hints = append(hints, theme.Shortcut("ctrl+r", "stop"))
	case !busy:
		hints = append(hints, theme.Shortcut("enter", "send"), theme.Shortcut("ctrl+r", "record"))
	}
	if info.Recorder.Artifact != nil && !info.Transcribing {
		hints = append(hints, theme.Shortcut("ctrl+d", "discard"), theme.Shortcut("ctrl+s", "save"))
	}
	hints = append(hints, theme.Shortcut("ctrl+y", "copy"), theme.Shortcut("esc", "home"))
	return hints
}
