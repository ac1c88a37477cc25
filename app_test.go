// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/pppw/internal/api"
	"github.com/jeranaias/pppw/internal/cli"
	"github.com/jeranaias/pppw/internal/pipeline"
	"github.com/jeranaias/pppw/internal/recorder"
	"github.com/jeranaias/pppw/internal/recorder/recordertest"
	"github.com/jeranaias/pppw/internal/session"
	"github.com/jeranaias/pppw/internal/storage"
	"github.com/jeranaias/pppw/internal/ui/chat"
	"github.com/jeranaias/pppw/internal/ui/components"
	"github.com/jeranaias/pppw/internal/ui/styles"
)

func newTestApp(t *testing.T, start Screen) App {
	t.Helper()
	store := session.Open(storage.NewMemoryBackend(), session.DefaultKey)
	ctrl := pipeline.NewController(store, recorder.New(&recordertest.Device{}), api.NewClient(""))
	t.Cleanup(func() { ctrl.Close() })

	app := NewApp(ctrl, styles.NewTheme("dark"), chat.Options{SaveDir: t.TempDir()}, start)
	m, _ := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m.(App)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(a App, s string) (App, tea.Cmd) {
	m, cmd := a.Update(key(s))
	return m.(App), cmd
}

func TestParseScreen(t *testing.T) {
	require.Equal(t, ScreenChat, ParseScreen("chat"))
	require.Equal(t, ScreenAbout, ParseScreen("ABOUT"))
	require.Equal(t, ScreenHome, ParseScreen("home"))
	require.Equal(t, ScreenHome, ParseScreen(""))
}

func TestApp_Navigation(t *testing.T) {
	a := newTestApp(t, ScreenHome)
	require.Contains(t, a.View(), components.Tagline)

	a, _ = press(a, "a")
	require.Equal(t, ScreenAbout, a.Screen())
	require.Contains(t, a.View(), "About "+components.ProductName)

	a, _ = press(a, "esc")
	require.Equal(t, ScreenHome, a.Screen())

	a, _ = press(a, "c")
	require.Equal(t, ScreenChat, a.Screen())
	require.Contains(t, a.View(), components.ChatTitle)

	// Letters typed in chat go to the composer, not navigation
	a, _ = press(a, "q")
	require.Equal(t, ScreenChat, a.Screen())

	m, _ := a.Update(chat.GoHomeMsg{})
	require.Equal(t, ScreenHome, m.(App).Screen())
}

func TestApp_Quit(t *testing.T) {
	a := newTestApp(t, ScreenHome)
	_, cmd := press(a, "q")
	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_StartScreen(t *testing.T) {
	a := newTestApp(t, ScreenChat)
	require.Equal(t, ScreenChat, a.Screen())
	require.NotNil(t, a.Init())
}

func TestRunTUI_RequiresTerminal(t *testing.T) {
	if cli.IsTTY() {
		t.Skip("stdin is a terminal")
	}
	err := runTUI(context.Background(), &cli.Env{})
	require.Error(t, err)
	require.Equal(t, cli.ExitUsageError, cli.GetExitCode(err))
}
