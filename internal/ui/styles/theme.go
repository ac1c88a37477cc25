// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderHint  lipgloss.Style

	// Home and about screens
	Logo     lipgloss.Style
	Tagline  lipgloss.Style
	MenuItem lipgloss.Style
	MenuKey  lipgloss.Style
	Body     lipgloss.Style

	// Messages
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	FailedBubble    lipgloss.Style
	PendingBubble   lipgloss.Style
	Speaker         lipgloss.Style
	Timestamp       lipgloss.Style
	EmptyState      lipgloss.Style

	// Input and status
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	StatusBar      lipgloss.Style
	Recording      lipgloss.Style
	Transcribing   lipgloss.Style
	ErrorText      lipgloss.Style
	Notice         lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style
	Spinner        lipgloss.Style
}

// NewTheme creates a theme for mode ("dark", "light" or "auto").
// Explicit modes override terminal background detection.
func NewTheme(mode string) *Theme {
	t := &Theme{ColorProfile: termenv.ColorProfile()}

	switch strings.ToLower(mode) {
	case "dark":
		t.IsDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		t.IsDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		t.IsDark = termenv.HasDarkBackground()
	}

	t.initStyles()
	return t
}

// GlamourStyle returns the glamour standard style name matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Felt)

	t.HeaderHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Logo = lipgloss.NewStyle().
		Bold(true).
		Foreground(Felt).
		Align(lipgloss.Center)

	t.Tagline = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true).
		Align(lipgloss.Center)

	t.MenuItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)

	t.MenuKey = lipgloss.NewStyle().
		Foreground(Gold).
		Bold(true)

	t.Body = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(1, 2)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.FailedBubble = t.AssistantBubble.
		BorderForeground(FailedBubbleBorder)

	t.PendingBubble = t.AssistantBubble.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Italic(true)

	t.Speaker = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.EmptyState = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Felt).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.Recording = lipgloss.NewStyle().
		Foreground(Chip).
		Bold(true)

	t.Transcribing = lipgloss.NewStyle().
		Foreground(Sky)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Chip)

	t.Notice = lipgloss.NewStyle().
		Foreground(Sky).
		Italic(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Gold)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Gold)
}

// Shortcut renders "key desc" for the status bar.
func (t *Theme) Shortcut(key, desc string) string {
	return t.ShortcutKey.Render(key) + " " + t.ShortcutDesc.Render(desc)
}
