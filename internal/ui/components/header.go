// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/pppw/internal/ui/styles"
)

// ChatTitle is the chat screen heading.
const ChatTitle = "Pocket Poker Pal — Chat"

// Header renders the chat title with the clear hint right-aligned. The hint
// is dimmed out while clearing is unavailable.
func Header(theme *styles.Theme, width int, canClear bool) string {
	title := theme.HeaderTitle.Render(ChatTitle)

	hint := theme.Shortcut("ctrl+l", "clear")
	if !canClear {
		hint = theme.HeaderHint.Render("ctrl+l clear")
	}

	inner := width - theme.Header.GetHorizontalPadding()
	gap := inner - lipgloss.Width(title) - lipgloss.Width(hint)
	if gap < 1 {
		return theme.Header.Width(width).Render(title)
	}
	return theme.Header.Width(width).Render(title + strings.Repeat(" ", gap) + hint)
}
