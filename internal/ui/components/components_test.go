// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/pppw/internal/model"
	"github.com/jeranaias/pppw/internal/recorder"
	"github.com/jeranaias/pppw/internal/ui/styles"
	"github.com/jeranaias/pppw/internal/util"
)

func TestWordWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "a string bet", 20, "a string bet"},
		{"wraps on spaces", "a string bet is illegal", 12, "a string bet\nis illegal"},
		{"keeps newlines", "one\ntwo", 10, "one\ntwo"},
		{"long word whole", "unbelievably", 4, "unbelievably"},
		{"zero width", "as is", 0, "as is"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordWrap(tt.text, tt.width); got != tt.want {
				t.Errorf("WordWrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWordWrap_WideRunes(t *testing.T) {
	got := WordWrap("牌 牌 牌", 4)
	for _, line := range strings.Split(got, "\n") {
		if util.StringWidth(line) > 4 {
			t.Errorf("line %q wider than 4 columns", line)
		}
	}
}

func TestRenderList_Empty(t *testing.T) {
	r := NewMessageRenderer(styles.NewTheme("dark"), false)
	if got := r.RenderList(nil, ""); !strings.Contains(got, EmptyStateText) {
		t.Errorf("empty list should show %q, got %q", EmptyStateText, got)
	}
}

func TestRender_Roles(t *testing.T) {
	r := NewMessageRenderer(styles.NewTheme("dark"), false)
	r.SetWidth(60)

	user := r.Render(model.NewUserMessage("What is a string bet?"), "")
	if !strings.Contains(user, "You") || !strings.Contains(user, "string bet?") {
		t.Errorf("user bubble = %q", user)
	}

	pending := r.Render(model.NewPlaceholder(), "*")
	if !strings.Contains(pending, "* Thinking") {
		t.Errorf("pending bubble should show the spinner, got %q", pending)
	}

	failed := model.NewPlaceholder().Apply(model.Settle("Error: db down", model.StatusFailed))
	if out := r.Render(failed, ""); !strings.Contains(out, "Error: db down") {
		t.Errorf("failed bubble = %q", out)
	}
}

func TestRender_MarkdownAnswer(t *testing.T) {
	r := NewMessageRenderer(styles.NewTheme("dark"), true)
	answer := model.NewPlaceholder().Apply(model.Settle("**Fold** when unsure.", model.StatusResolved))

	out := r.Render(answer, "")
	if !strings.Contains(out, "Fold") {
		t.Errorf("markdown answer lost its content: %q", out)
	}
	if strings.Contains(out, "**") {
		t.Errorf("markdown emphasis should be rendered, got %q", out)
	}
	if !strings.Contains(out, model.RoleAssistant.DisplayName()) {
		t.Errorf("missing speaker line: %q", out)
	}
}

func TestHeader(t *testing.T) {
	theme := styles.NewTheme("dark")
	out := Header(theme, 60, true)
	if !strings.Contains(out, ChatTitle) || !strings.Contains(out, "clear") {
		t.Errorf("Header() = %q", out)
	}
	if w := lipgloss.Width(out); w != 60 {
		t.Errorf("header width = %d, want 60", w)
	}
}

func TestStatusRow(t *testing.T) {
	theme := styles.NewTheme("dark")

	rec := StatusRow(theme, StatusInfo{Recorder: recorder.State{Status: recorder.StatusRecording, Seconds: 3}})
	if !strings.Contains(rec, "Recording… 3s — press ctrl+r when done.") {
		t.Errorf("recording status = %q", rec)
	}

	tr := StatusRow(theme, StatusInfo{Transcribing: true})
	if !strings.Contains(tr, TranscribingText) {
		t.Errorf("transcribing status = %q", tr)
	}

	failed := StatusRow(theme, StatusInfo{Recorder: recorder.State{Status: recorder.StatusError, Error: recorder.StartFailedMessage}})
	if !strings.Contains(failed, recorder.StartFailedMessage) {
		t.Errorf("error status = %q", failed)
	}
}

func TestHints(t *testing.T) {
	theme := styles.NewTheme("dark")
	joined := func(info StatusInfo) string { return strings.Join(Hints(theme, info), " ") }

	idle := joined(StatusInfo{})
	if !strings.Contains(idle, "record") || !strings.Contains(idle, "send") {
		t.Errorf("idle hints = %q", idle)
	}

	busy := joined(StatusInfo{Asking: true})
	if strings.Contains(busy, "record") {
		t.Errorf("record should be hidden while busy: %q", busy)
	}

	withArtifact := StatusInfo{Recorder: recorder.State{Status: recorder.StatusStopped, Artifact: &recorder.Artifact{ID: 1}}}
	if got := joined(withArtifact); !strings.Contains(got, "discard") {
		t.Errorf("discard should show for a finished recording: %q", got)
	}
	withArtifact.Transcribing = true
	if got := joined(withArtifact); strings.Contains(got, "discard") {
		t.Errorf("discard should hide while transcribing: %q", got)
	}
}

func TestScreens(t *testing.T) {
	theme := styles.NewTheme("light")
	if out := Home(theme, 80, 24); !strings.Contains(out, Tagline) {
		t.Errorf("home screen missing tagline")
	}
	if out := About(theme, 80, 24); !strings.Contains(out, "About "+ProductName) {
		t.Errorf("about screen missing title")
	}
}
