// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// transcript.go - Line-mode rendering of chat messages.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/pppw/internal/model"
	"github.com/jeranaias/pppw/internal/ui/styles"
)

// Renderer formats assistant answers for line-mode output.
type Renderer struct {
	md *glamour.TermRenderer
}

// NewRenderer returns a renderer. With markdown off, or when glamour cannot
// be initialized, answers are printed as-is.
func NewRenderer(markdown bool, theme string, width int) *Renderer {
	if !markdown {
		return &Renderer{}
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.NewTheme(theme).GlamourStyle()),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return &Renderer{}
	}
	return &Renderer{md: md}
}

// Answer renders content for display.
func (r *Renderer) Answer(content string) string {
	if r == nil || r.md == nil {
		return content
	}
	out, err := r.md.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

// writeMessage prints one transcript line.
func writeMessage(w io.Writer, m model.Message) {
	label := SpeakerStyle.Render(m.Role.DisplayName() + ":")
	stamp := ""
	if t := m.Time(); !t.IsZero() {
		stamp = DimStyle.Render("["+t.Format("Jan 2 3:04 PM")+"]") + " "
	}

	content := m.Content
	switch {
	case m.IsPending():
		content = DimStyle.Render(content + " (no answer yet)")
	case m.Status == model.StatusFailed:
		content = WarningStyle.Render(content)
	}
	fmt.Fprintf(w, "%s%s %s\n", stamp, label, content)
}

// writeTranscript prints every message, or a note for an empty chat.
func writeTranscript(w io.Writer, msgs []model.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No saved messages."))
		return
	}
	for _, m := range msgs {
		writeMessage(w, m)
	}
}
