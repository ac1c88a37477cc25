// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/pppw/internal/ui/styles"
)

// Brand strings.
const (
	ProductName = "Pocket Poker Pal"
	Tagline     = "Your rulebook, in your pocket."
)

var benefits = []string{
	"Answers grounded in the house rulebook",
	"Ask by typing or by voice",
	"Your chat history stays on this machine",
}

const aboutText = `Pocket Poker Pal answers questions about poker rules while you play.

Type a question, or press ctrl+r to ask out loud. Your recording is
transcribed and put in the composer so you can check it before sending.

Answers come from the Pocket Poker Pal service. Your transcript is stored
only on this machine and can be cleared at any time with ctrl+l.`

const logo = `♠ ♥  POCKET POKER PAL  ♦ ♣`

// Home renders the landing screen centered in width x height.
func Home(theme *styles.Theme, width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Logo.Render(logo))
	b.WriteString("\n")
	b.WriteString(theme.Tagline.Render(Tagline))
	b.WriteString("\n\n")
	for _, line := range benefits {
		b.WriteString(theme.MenuItem.Render("• " + line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.MenuItem.Render(theme.MenuKey.Render("c") + " open chat   " +
		theme.MenuKey.Render("a") + " about   " +
		theme.MenuKey.Render("q") + " quit"))

	return place(width, height, b.String())
}

// About renders the product information screen.
func About(theme *styles.Theme, width, height int) string {
	body := theme.HeaderTitle.Render("About "+ProductName) + "\n\n" +
		theme.Body.Render(aboutText) + "\n" +
		theme.MenuItem.Render(theme.MenuKey.Render("esc")+" back   "+theme.MenuKey.Render("c")+" open chat")
	return place(width, height, body)
}

func place(width, height int, content string) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
