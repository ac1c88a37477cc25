// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/pppw/internal/pipeline"
	"github.com/jeranaias/pppw/internal/ui/chat"
	"github.com/jeranaias/pppw/internal/ui/components"
	"github.com/jeranaias/pppw/internal/ui/styles"
)

// Screen is the page currently shown.
type Screen int

const (
	ScreenHome Screen = iota
	ScreenChat
	ScreenAbout
)

// ParseScreen maps a config value to a Screen. Unknown names give home.
func ParseScreen(s string) Screen {
	switch strings.ToLower(s) {
	case "chat":
		return ScreenChat
	case "about":
		return ScreenAbout
	default:
		return ScreenHome
	}
}

// App is the root model. It owns the chat screen for the whole run so the
// chat keeps receiving store and recorder updates while another page is
// shown.
type App struct {
	theme  *styles.Theme
	chat   chat.Model
	screen Screen
	width  int
	height int
}

// NewApp creates the root model starting on start.
func NewApp(ctrl *pipeline.Controller, theme *styles.Theme, opts chat.Options, start Screen) App {
	return App{
		theme:  theme,
		chat:   chat.New(ctrl, theme, opts),
		screen: start,
	}
}

// Screen returns the page being shown.
func (a App) Screen() Screen { return a.screen }

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return a.chat.Init()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height

	case tea.KeyMsg:
		if a.screen != ScreenChat {
			return a.handleKey(msg)
		}

	case chat.GoHomeMsg:
		a.screen = ScreenHome
		return a, nil
	}

	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	return a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit
	case "c", "enter":
		a.screen = ScreenChat
		return a, a.chat.Focus()
	case "a":
		if a.screen == ScreenHome {
			a.screen = ScreenAbout
		}
	case "esc", "backspace":
		a.screen = ScreenHome
	}
	return a, nil
}

// View implements tea.Model.
func (a App) View() string {
	switch a.screen {
	case ScreenChat:
		return a.chat.View()
	case ScreenAbout:
		return components.About(a.theme, a.width, a.height)
	default:
		return components.Home(a.theme, a.width, a.height)
	}
}
