// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode interactive chat.
//
// Command: chat
//
// Plain lines are questions. Slash commands drive the recorder and the
// saved chat:
//   /record    start recording a voice question
//   /stop      stop and transcribe (an empty line does the same)
//   /discard   drop the recording and its transcript
//   /history   print the saved chat
//   /clear     delete the saved chat
//   /help      list commands
//   /quit      leave
//
// A transcript is pre-filled at the next prompt for editing; it is never
// sent on its own.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/peterh/liner"

	"github.com/jeranaias/pppw/internal/config"
	"github.com/jeranaias/pppw/internal/pipeline"
	"github.com/jeranaias/pppw/internal/recorder"
	"github.com/jeranaias/pppw/internal/ui/components"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads the saved input history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line. A non-empty prefill is offered as editable text.
func (c *ChatCLI) ReadInput(prompt, prefill string) (string, error) {
	var (
		input string
		err   error
	)
	if prefill != "" {
		input, err = c.line.PromptWithSuggestion(prompt, prefill, -1)
	} else {
		input, err = c.line.Prompt(prompt)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// REPL executes chat input lines against a controller.
type REPL struct {
	ctrl   *pipeline.Controller
	out    io.Writer
	render *Renderer
}

// NewREPL returns a REPL writing to out.
func NewREPL(ctrl *pipeline.Controller, out io.Writer, render *Renderer) *REPL {
	return &REPL{ctrl: ctrl, out: out, render: render}
}

// Prefill returns the composer text to offer at the next prompt.
func (r *REPL) Prefill() string {
	return r.ctrl.Input()
}

// Handle runs one line of input. It reports whether the user asked to quit.
func (r *REPL) Handle(ctx context.Context, line string) (quit bool) {
	input := strings.TrimSpace(line)
	recording := r.ctrl.Recorder.Status() == recorder.StatusRecording

	switch {
	case input == "":
		if recording {
			r.stop(ctx)
		} else {
			// the user erased the prefill
			r.ctrl.SetInput("")
		}
		return false
	case strings.HasPrefix(input, "/"):
		return r.command(ctx, input)
	case strings.EqualFold(input, "exit"), strings.EqualFold(input, "quit"):
		return true
	case recording:
		fmt.Fprintln(r.out, WarningStyle.Render("Stop the recording first (/stop or an empty line)."))
		return false
	}

	r.ctrl.SetInput(input)
	fmt.Fprintln(r.out, DimStyle.Render("Thinking…"))
	res, err := r.ctrl.Send(ctx)
	if res.PlaceholderID == "" {
		fmt.Fprintf(r.out, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		return false
	}
	printResult(r.out, res, r.render)
	if err != nil {
		fmt.Fprintf(r.out, "%s answer not saved: %v\n", WarningStyle.Render("[Warning]"), err)
	}
	return false
}

func (r *REPL) command(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	switch strings.ToLower(parts[0]) {
	case "/record", "/r":
		r.record(ctx)
	case "/stop", "/s":
		if r.ctrl.Recorder.Status() != recorder.StatusRecording {
			fmt.Fprintln(r.out, DimStyle.Render("Not recording."))
			return false
		}
		r.stop(ctx)
	case "/discard", "/d":
		r.ctrl.DiscardRecording()
		fmt.Fprintln(r.out, DimStyle.Render("Recording discarded."))
	case "/history":
		writeTranscript(r.out, r.ctrl.Store.Messages())
	case "/clear", "/c":
		if err := r.ctrl.Clear(); err != nil {
			fmt.Fprintf(r.out, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			return false
		}
		fmt.Fprintln(r.out, SuccessStyle.Render("[Chat cleared]"))
	case "/help", "/h", "/?", "/":
		printChatHelp(r.out)
	case "/quit", "/q", "/exit":
		return true
	default:
		fmt.Fprintf(r.out, "%s unknown command: %s (type /help for commands)\n", ErrorStyle.Render("[Error]"), parts[0])
	}
	return false
}

func (r *REPL) record(ctx context.Context) {
	err := r.ctrl.StartRecording(ctx)
	switch {
	case err == nil:
		fmt.Fprintln(r.out, RecordingStyle.Render("● Recording…")+" "+DimStyle.Render("press enter or type /stop when done."))
	case errors.Is(err, pipeline.ErrBusy):
		fmt.Fprintln(r.out, WarningStyle.Render("Busy, try again in a moment."))
	default:
		msg := r.ctrl.Recorder.State().Error
		if msg == "" {
			msg = err.Error()
		}
		fmt.Fprintln(r.out, ErrorStyle.Render(msg))
	}
}

func (r *REPL) stop(ctx context.Context) {
	a := r.ctrl.StopRecording()
	if a == nil {
		fmt.Fprintln(r.out, WarningStyle.Render("Nothing was recorded."))
		return
	}
	fmt.Fprintln(r.out, DimStyle.Render(fmt.Sprintf("Transcribing %ds of audio…", a.Seconds)))
	if !r.ctrl.Transcribe(ctx, a) {
		return
	}
	fmt.Fprintln(r.out, DimStyle.Render("Edit the transcript and press enter to send."))
}

func printChatHelp(w io.Writer) {
	commands := []struct {
		cmd  string
		desc string
	}{
		{"/record, /r", "Start recording a voice question"},
		{"/stop, /s", "Stop and transcribe (or press enter)"},
		{"/discard, /d", "Drop the recording and its transcript"},
		{"/history", "Show the saved chat"},
		{"/clear, /c", "Delete the saved chat"},
		{"/help, /h", "Show this help"},
		{"/quit, /q", "Exit chat"},
	}
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %s  %s\n", PromptStyle.Render(fmt.Sprintf("%-14s", c.cmd)), DimStyle.Render(c.desc))
	}
	fmt.Fprintln(w)
}

// =============================================================================
// COMMAND
// =============================================================================

// HandleChat runs the interactive chat until EOF, Ctrl+C at the prompt, or
// /quit. Ctrl+C during a request cancels only that request.
func HandleChat(env *Env, args Args) error {
	render := NewRenderer(env.Config.UI.Markdown && IsStdoutTTY(), env.Config.UI.Theme, GetTerminalWidth())
	repl := NewREPL(env.Controller, os.Stdout, render)

	if !args.Quiet {
		fmt.Println()
		fmt.Println(TitleStyle.Render(components.ProductName + " chat"))
		fmt.Println(DimStyle.Render(strings.Repeat("─", 30)))
		if n := env.Store.Len(); n > 0 {
			fmt.Println(DimStyle.Render(fmt.Sprintf("%d saved messages (/history to show)", n)))
		}
		if !env.Client.IsConfigured() {
			fmt.Println(WarningStyle.Render("API base URL not configured; set PPPW_API_BASE_URL."))
		}
		fmt.Println(DimStyle.Render("Ask a question and press Enter. Commands: /record, /help, /quit"))
		fmt.Println()
	}

	input := NewChatCLI()
	defer input.Close()

	var (
		mu     sync.Mutex
		cancel context.CancelFunc
	)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			mu.Lock()
			if cancel != nil {
				cancel()
				cancel = nil
				fmt.Fprintln(os.Stderr, "\n"+WarningStyle.Render("[Cancelled]"))
			}
			mu.Unlock()
		}
	}()

	for {
		prompt := "you> "
		if env.Recorder.Status() == recorder.StatusRecording {
			prompt = "rec> "
		}
		line, err := input.ReadInput(prompt, repl.Prefill())
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D, or a closed stdin.
			fmt.Println()
			return nil
		}

		ctx, c := context.WithCancel(context.Background())
		mu.Lock()
		cancel = c
		mu.Unlock()

		quit := repl.Handle(ctx, line)

		mu.Lock()
		cancel = nil
		mu.Unlock()
		c()

		if quit {
			return nil
		}
	}
}
