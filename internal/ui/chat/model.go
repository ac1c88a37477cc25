// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/pppw/internal/model"
	"github.com/jeranaias/pppw/internal/pipeline"
	"github.com/jeranaias/pppw/internal/recorder"
	"github.com/jeranaias/pppw/internal/ui/components"
	"github.com/jeranaias/pppw/internal/ui/styles"
)

// nearBottomLines is how close to the end the viewport must be for new
// content to scroll it.
const nearBottomLines = 3

// Layout: header (1) + input separator and line (2) + status row (1).
const reservedHeight = 4

const inputPlaceholder = "Ask about a rule…"

// Options configures the chat screen.
type Options struct {
	// Context bounds every request started from the screen.
	Context context.Context
	// SaveDir receives recordings saved with ctrl+s.
	SaveDir string
	// Markdown renders answers through glamour.
	Markdown bool
	// Copy writes text to the clipboard. Defaults to atotto/clipboard.
	Copy func(string) error
}

// Model is the chat screen.
type Model struct {
	ctrl     *pipeline.Controller
	theme    *styles.Theme
	keys     KeyMap
	renderer *components.MessageRenderer

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	ctx     context.Context
	saveDir string
	copy    func(string) error

	storeCh  <-chan struct{}
	notice   string
	stopping bool
	width    int
	height   int
}

// New creates the chat screen over ctrl.
func New(ctrl *pipeline.Controller, theme *styles.Theme, opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	input := textinput.New()
	input.Placeholder = inputPlaceholder
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.SetValue(ctrl.Input())
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	m := Model{
		ctrl:     ctrl,
		theme:    theme,
		keys:     DefaultKeyMap(),
		renderer: components.NewMessageRenderer(theme, opts.Markdown),
		viewport: viewport.New(80, 20),
		input:    input,
		spinner:  sp,
		ctx:      opts.Context,
		saveDir:  opts.SaveDir,
		copy:     opts.Copy,
		storeCh:  ctrl.Store.Subscribe(),
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

// Init starts listening for store and recorder changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitFor(m.storeCh, StoreChangedMsg{}),
		waitFor(m.ctrl.Recorder.Changes(), RecorderChangedMsg{}),
	)
}

// Focus gives the composer keyboard focus unless a question is in flight.
func (m *Model) Focus() tea.Cmd {
	if m.ctrl.Ask.Busy() {
		return nil
	}
	return m.input.Focus()
}

// Notice returns the transient status text.
func (m Model) Notice() string { return m.notice }

// Input returns the composer value.
func (m Model) Input() string { return m.input.Value() }

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StoreChangedMsg:
		m.refresh()
		return m, waitFor(m.storeCh, StoreChangedMsg{})

	case RecorderChangedMsg:
		return m, waitFor(m.ctrl.Recorder.Changes(), RecorderChangedMsg{})

	case AskDoneMsg:
		if err := m.ctrl.Ask.Finish(msg.Result); err != nil {
			m.notice = fmt.Sprintf("Could not save answer: %v", err)
		}
		m.refresh()
		return m, m.input.Focus()

	case RecordStartedMsg:
		if msg.Err != nil && !errors.Is(msg.Err, recorder.ErrAborted) {
			// Unsupported and device failures show through the recorder state
			log.Printf("TUI_RECORD_START | error=%v", msg.Err)
		}
		return m, nil

	case RecordStoppedMsg:
		m.stopping = false
		if !m.ctrl.BeginTranscription(msg.Artifact) {
			return m, nil
		}
		return m, tea.Batch(fetchTranscript(m.ctx, m.ctrl.Transcription, msg.Artifact), m.spinner.Tick)

	case TranscribeDoneMsg:
		m.ctrl.FinishTranscription(msg.Text)
		m.input.SetValue(msg.Text)
		m.input.CursorEnd()
		return m, m.Focus()

	case spinner.TickMsg:
		if !m.ctrl.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.ctrl.Ask.Busy() {
			m.refresh()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Home):
		return m, goHome

	case key.Matches(msg, m.keys.Send):
		return m.send()

	case key.Matches(msg, m.keys.Record):
		return m.toggleRecording()

	case key.Matches(msg, m.keys.Discard):
		if m.ctrl.Transcription.Busy() {
			return m, nil
		}
		m.ctrl.DiscardRecording()
		m.input.SetValue("")
		m.notice = ""
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if err := m.ctrl.Clear(); err != nil {
			if !errors.Is(err, pipeline.ErrBusy) {
				m.notice = fmt.Sprintf("Could not clear chat: %v", err)
			}
			return m, nil
		}
		m.notice = ""
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Save):
		m.saveRecording()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		m.copyLastAnswer()
		return m, nil

	case key.Matches(msg, m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.ctrl.Ask.Busy() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetInput(m.input.Value())
	return m, cmd
}

// send starts asking the composer text. The network call runs in a command;
// the placeholder is already in the transcript when send returns.
func (m Model) send() (Model, tea.Cmd) {
	m.ctrl.SetInput(m.input.Value())
	pending, err := m.ctrl.BeginSend()
	if err != nil {
		return m, nil
	}
	m.input.SetValue("")
	m.input.Blur()
	m.notice = ""
	m.refresh()
	m.viewport.GotoBottom()
	return m, tea.Batch(fetchAnswer(m.ctx, m.ctrl.Ask, pending), m.spinner.Tick)
}

// toggleRecording starts or stops the recorder. Both run as commands; the
// key is ignored while either transition is in progress.
func (m Model) toggleRecording() (Model, tea.Cmd) {
	st := m.ctrl.Recorder.State()
	switch {
	case st.Starting || m.stopping:
		return m, nil
	case st.Status == recorder.StatusRecording:
		m.stopping = true
		return m, stopRecording(m.ctrl)
	case m.ctrl.Busy():
		return m, nil
	}
	m.notice = ""
	return m, startRecording(m.ctx, m.ctrl)
}

func (m *Model) saveRecording() {
	a := m.ctrl.Recorder.Artifact()
	if a == nil {
		m.notice = "No recording to save."
		return
	}
	path, err := a.Save(m.saveDir)
	if err != nil {
		m.notice = fmt.Sprintf("Could not save recording: %v", err)
		return
	}
	m.notice = "Saved " + path
}

func (m *Model) copyLastAnswer() {
	answer, ok := lastAnswer(m.ctrl.Store.Messages())
	if !ok {
		m.notice = "No answer to copy."
		return
	}
	if err := m.copy(answer); err != nil {
		m.notice = fmt.Sprintf("Clipboard unavailable: %v", err)
		return
	}
	m.notice = "Copied answer to clipboard."
}

// lastAnswer returns the newest resolved assistant message.
func lastAnswer(msgs []model.Message) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAssistant && msgs[i].Status == model.StatusResolved {
			return msgs[i].Content, true
		}
	}
	return "", false
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	vh := height - reservedHeight
	if vh < 1 {
		vh = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vh

	// prompt "> " plus container padding
	iw := width - 6
	if iw < 10 {
		iw = 10
	}
	m.input.Width = iw

	m.renderer.SetWidth(width)
	m.refresh()
}

// refresh re-renders the transcript. The viewport follows new content only
// when the reader was already at or near the bottom.
func (m *Model) refresh() {
	follow := m.viewport.TotalLineCount()-(m.viewport.YOffset+m.viewport.Height) <= nearBottomLines

	spin := ""
	if m.ctrl.Ask.Busy() {
		spin = m.spinner.View()
	}
	m.viewport.SetContent(m.renderer.RenderList(m.ctrl.Store.Messages(), spin))
	if follow {
		m.viewport.GotoBottom()
	}
}
