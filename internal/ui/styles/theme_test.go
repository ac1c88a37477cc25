// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewTheme_ExplicitModes(t *testing.T) {
	dark := NewTheme("dark")
	if !dark.IsDark {
		t.Error("dark theme should report IsDark")
	}
	if dark.GlamourStyle() != "dark" {
		t.Errorf("GlamourStyle() = %q, want dark", dark.GlamourStyle())
	}

	light := NewTheme("LIGHT")
	if light.IsDark {
		t.Error("light theme should not report IsDark")
	}
	if light.GlamourStyle() != "light" {
		t.Errorf("GlamourStyle() = %q, want light", light.GlamourStyle())
	}
}

func TestThemeStylesRender(t *testing.T) {
	theme := NewTheme("dark")

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"UserBubble", theme.UserBubble},
		{"AssistantBubble", theme.AssistantBubble},
		{"FailedBubble", theme.FailedBubble},
		{"PendingBubble", theme.PendingBubble},
		{"InputContainer", theme.InputContainer},
		{"StatusBar", theme.StatusBar},
		{"Recording", theme.Recording},
	}

	for _, s := range styles {
		if !strings.Contains(s.style.Render("test"), "test") {
			t.Errorf("%s style should render its content", s.name)
		}
	}
}

func TestBubbleBordersAddLines(t *testing.T) {
	theme := NewTheme("dark")
	out := theme.UserBubble.Render("hi")
	if lines := strings.Count(out, "\n") + 1; lines != 3 {
		t.Errorf("bordered bubble should span 3 lines, got %d", lines)
	}
}

func TestShortcut(t *testing.T) {
	theme := NewTheme("light")
	got := theme.Shortcut("ctrl+r", "record")
	if !strings.Contains(got, "ctrl+r") || !strings.Contains(got, "record") {
		t.Errorf("Shortcut() = %q", got)
	}
}
