// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styles for line-mode output.

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/pppw/internal/ui/styles"
)

// ApplyColorProfile configures lipgloss for command output.
func ApplyColorProfile(noColorFlag bool) {
	lipgloss.SetColorProfile(GetColorProfile(noColorFlag))
}

var (
	// TitleStyle is used for command titles and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Felt)

	// SpeakerStyle labels transcript lines
	SpeakerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextSecondary)

	// DimStyle is used for timestamps and hints
	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	// PromptStyle colors the REPL prompt
	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.Felt).
			Bold(true)

	// RecordingStyle marks the recording indicator
	RecordingStyle = lipgloss.NewStyle().
			Foreground(styles.Chip).
			Bold(true)

	// SuccessStyle is used for confirmations
	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Felt)

	// ErrorStyle is used for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Chip).
			Bold(true)

	// WarningStyle is used for failed answers and notices
	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Gold)
)
