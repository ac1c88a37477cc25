// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"log"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/pppw/internal/model"
	"github.com/jeranaias/pppw/internal/ui/styles"
	"github.com/jeranaias/pppw/internal/util"
)

// EmptyStateText is shown in place of an empty transcript.
const EmptyStateText = "Ask a question about the rulebook."

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageRenderer renders transcript messages as bubbles. Resolved assistant
// answers go through glamour when markdown is enabled.
type MessageRenderer struct {
	theme    *styles.Theme
	width    int
	markdown bool

	md      *glamour.TermRenderer
	mdWidth int
}

// NewMessageRenderer creates a renderer at the default width of 80.
func NewMessageRenderer(theme *styles.Theme, markdown bool) *MessageRenderer {
	return &MessageRenderer{theme: theme, width: 80, markdown: markdown}
}

// SetWidth sets the available width.
func (r *MessageRenderer) SetWidth(width int) {
	if width > 0 {
		r.width = width
	}
}

// contentWidth is the wrap width inside a bubble: margin, border and padding
// take 8 columns.
func (r *MessageRenderer) contentWidth() int {
	w := r.width - 8
	if w < 20 {
		w = 20
	}
	return w
}

// RenderList renders all messages separated by blank lines. spinner replaces
// the ellipsis of a pending placeholder when non-empty.
func (r *MessageRenderer) RenderList(msgs []model.Message, spinner string) string {
	if len(msgs) == 0 {
		return r.theme.EmptyState.Render(EmptyStateText)
	}
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, r.Render(m, spinner))
	}
	return strings.Join(parts, "\n\n")
}

// Render renders one message with its speaker line.
func (r *MessageRenderer) Render(m model.Message, spinner string) string {
	header := r.theme.Speaker.Render(m.Role.DisplayName())
	if t := m.Time(); !t.IsZero() {
		header += " " + r.theme.Timestamp.Render(t.Format("3:04 PM"))
	}

	var bubble string
	switch {
	case m.Role == model.RoleUser:
		bubble = r.theme.UserBubble.Render(WordWrap(m.Content, r.contentWidth()))
	case m.IsPending():
		text := m.Content
		if spinner != "" {
			text = spinner + " " + strings.TrimSuffix(text, "…")
		}
		bubble = r.theme.PendingBubble.Render(text)
	case m.Status == model.StatusFailed:
		bubble = r.theme.FailedBubble.Render(WordWrap(m.Content, r.contentWidth()))
	default:
		bubble = r.theme.AssistantBubble.Render(r.answer(m.Content))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, bubble)
}

// answer renders assistant content, falling back to plain wrapping when
// markdown is off or glamour fails.
func (r *MessageRenderer) answer(content string) string {
	if !r.markdown {
		return WordWrap(content, r.contentWidth())
	}
	md, err := r.renderer()
	if err != nil {
		log.Printf("MARKDOWN_ERROR | error=%v", err)
		return WordWrap(content, r.contentWidth())
	}
	out, err := md.Render(content)
	if err != nil {
		log.Printf("MARKDOWN_ERROR | error=%v", err)
		return WordWrap(content, r.contentWidth())
	}
	return strings.Trim(out, "\n")
}

// renderer returns a glamour renderer for the current width, rebuilding it
// on resize.
func (r *MessageRenderer) renderer() (*glamour.TermRenderer, error) {
	w := r.contentWidth()
	if r.md != nil && r.mdWidth == w {
		return r.md, nil
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.theme.GlamourStyle()),
		glamour.WithWordWrap(w),
	)
	if err != nil {
		return nil, err
	}
	r.md, r.mdWidth = md, w
	return md, nil
}

// ==========================================================================
// UTILITY FUNCTIONS
// ==========================================================================

// WordWrap wraps text on spaces so no line is wider than width display
// columns. Words longer than width are left whole.
func WordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	for lineIdx, line := range strings.Split(text, "\n") {
		if lineIdx > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			if util.StringWidth(current)+1+util.StringWidth(word) <= width {
				current += " " + word
			} else {
				result.WriteString(current)
				result.WriteString("\n")
				current = word
			}
		}
		result.WriteString(current)
	}
	return result.String()
}
