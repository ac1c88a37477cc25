// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling for the pppw terminal UI.

Colors are Lip Gloss AdaptiveColor values so they follow the terminal's
light or dark background. The Theme type groups the rendered styles the
screens use:

	theme := styles.NewTheme(cfg.UI.Theme)
	title := theme.HeaderTitle.Render("Pocket Poker Pal")

An explicit "dark" or "light" theme overrides background detection.
*/
package styles
