// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/pppw/internal/ui/components"
)

// View renders the chat screen.
func (m Model) View() string {
	header := components.Header(m.theme, m.width, !m.ctrl.Busy())

	input := m.theme.InputContainer.Width(m.width).Render(m.input.View())

	status := components.StatusRow(m.theme, m.statusInfo())

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), input, status)
}

func (m Model) statusInfo() components.StatusInfo {
	info := components.StatusInfo{
		Recorder:     m.ctrl.Recorder.State(),
		Transcribing: m.ctrl.Transcription.Busy(),
		Asking:       m.ctrl.Ask.Busy(),
		Stopping:     m.stopping,
		Notice:       m.notice,
	}
	if info.Transcribing {
		info.Spinner = m.spinner.View()
	}
	return info
}
