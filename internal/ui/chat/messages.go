// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/pppw/internal/pipeline"
	"github.com/jeranaias/pppw/internal/recorder"
)

// =============================================================================
// MESSAGES
// =============================================================================

// StoreChangedMsg is sent after the transcript changed.
type StoreChangedMsg struct{}

// RecorderChangedMsg is sent after the recorder state changed, including
// each elapsed-second tick.
type RecorderChangedMsg struct{}

// AskDoneMsg carries the outcome of an in-flight question.
type AskDoneMsg struct {
	Result pipeline.Result
}

// TranscribeDoneMsg carries the text for the composer.
type TranscribeDoneMsg struct {
	Text string
}

// RecordStartedMsg is sent once the capture device is open, or failed to open.
type RecordStartedMsg struct {
	Err error
}

// RecordStoppedMsg carries the finished recording. Artifact is nil when
// nothing was produced.
type RecordStoppedMsg struct {
	Artifact *recorder.Artifact
}

// GoHomeMsg asks the application to leave the chat screen.
type GoHomeMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// waitFor turns one signal on ch into msg. A closed channel ends the loop.
func waitFor(ch <-chan struct{}, msg tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return msg
	}
}

func fetchAnswer(ctx context.Context, p *pipeline.AskPipeline, pending *pipeline.Pending) tea.Cmd {
	return func() tea.Msg {
		return AskDoneMsg{Result: p.Fetch(ctx, pending)}
	}
}

func fetchTranscript(ctx context.Context, p *pipeline.TranscriptionPipeline, a *recorder.Artifact) tea.Cmd {
	return func() tea.Msg {
		return TranscribeDoneMsg{Text: p.Fetch(ctx, a)}
	}
}

// startRecording acquires the device off the event loop; Open can wait on a
// permission prompt.
func startRecording(ctx context.Context, c *pipeline.Controller) tea.Cmd {
	return func() tea.Msg {
		return RecordStartedMsg{Err: c.StartRecording(ctx)}
	}
}

// stopRecording waits for the device to flush off the event loop.
func stopRecording(c *pipeline.Controller) tea.Cmd {
	return func() tea.Msg {
		return RecordStoppedMsg{Artifact: c.StopRecording()}
	}
}

func goHome() tea.Msg { return GoHomeMsg{} }
