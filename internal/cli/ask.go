// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command.
//
// Command: ask [question]
//
// Examples:
//   pppw ask "What is a string bet?"
//   pppw ask --json "Can I check-raise?"
//
// The question and the answer are added to the saved chat, the same as
// asking in the TUI.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jeranaias/pppw/internal/pipeline"
)

// AskOutput is the --json result of ask.
type AskOutput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Status   string `json:"status"`
}

// HandleAsk asks one question and prints the answer to w.
func HandleAsk(ctx context.Context, env *Env, args Args, w io.Writer) error {
	if args.Query == "" {
		return ErrMissingArgument("question", `pppw ask "What is a string bet?"`)
	}

	ctrl := env.Controller
	ctrl.SetInput(args.Query)
	r, err := ctrl.Send(ctx)
	if r.PlaceholderID == "" {
		return NewCommandError("ask", "send", "could not start the question", err)
	}

	if args.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(AskOutput{Question: args.Query, Answer: r.Content, Status: string(r.Status)}); encErr != nil {
			return encErr
		}
	} else {
		printResult(w, r, NewRenderer(env.Config.UI.Markdown && IsStdoutTTY(), env.Config.UI.Theme, GetTerminalWidth()))
	}

	if err != nil {
		return NewCommandError("ask", "save", "answer not saved to history", err)
	}
	if r.Failed() {
		return ErrAnswerFailed
	}
	return nil
}

func printResult(w io.Writer, r pipeline.Result, render *Renderer) {
	if r.Failed() {
		fmt.Fprintln(w, WarningStyle.Render(r.Content))
		return
	}
	fmt.Fprintln(w, render.Answer(r.Content))
}
