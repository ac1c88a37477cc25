// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Saved chat inspection.
//
// Command: history [show|clear]
//
// Examples:
//   pppw history                 Print the saved chat
//   pppw history --json          Raw messages
//   pppw history -f              Keep printing as the TUI writes
//   pppw history clear --yes     Delete the saved chat

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jeranaias/pppw/internal/config"
	"github.com/jeranaias/pppw/internal/model"
	"github.com/jeranaias/pppw/internal/session"
	"github.com/jeranaias/pppw/internal/storage"
)

// HandleHistory handles the "history" command. It opens the storage backend
// directly so that reading never rewrites the saved chat.
func HandleHistory(ctx context.Context, cfg *config.Config, args Args, w io.Writer) error {
	backend, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		return NewCommandError("history", "open", "failed to open storage", err)
	}
	key := cfg.Storage.Key

	switch args.Subcommand {
	case "", "show":
		defer backend.Close()
		if args.Follow {
			return followHistory(ctx, backend, key, w, storage.DefaultWatchDebounce)
		}
		return showHistory(session.Load(backend, key), args.JSON, w)

	case "clear":
		if !args.Confirm {
			backend.Close()
			return &UsageError{
				Message: "refusing to clear the saved chat without --yes",
				Usage:   "pppw history clear --yes",
			}
		}
		store := session.Open(backend, key)
		clearErr := store.Clear()
		if err := errors.Join(clearErr, store.Close()); err != nil {
			return NewCommandError("history", "clear", "failed to clear history", err)
		}
		if !args.Quiet {
			fmt.Fprintln(w, SuccessStyle.Render("[OK]")+" saved chat cleared")
		}
		return nil

	default:
		backend.Close()
		return &UsageError{
			Message: fmt.Sprintf("unknown history subcommand: %s", args.Subcommand),
			Usage:   "pppw history [show|clear]",
		}
	}
}

func showHistory(msgs []model.Message, asJSON bool, w io.Writer) error {
	if asJSON {
		if msgs == nil {
			msgs = []model.Message{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(msgs)
	}
	writeTranscript(w, msgs)
	return nil
}

// followHistory prints the chat and then every change to it until ctx ends.
func followHistory(ctx context.Context, backend storage.Backend, key string, w io.Writer, debounce time.Duration) error {
	fb, ok := backend.(*storage.FileBackend)
	if !ok {
		return &UsageError{
			Message: "--follow needs the file storage backend",
			Usage:   "PPPW_STORAGE_BACKEND=file pppw history --follow",
		}
	}

	watcher, err := storage.NewWatcher(fb.Path(key), debounce)
	if err != nil {
		return NewCommandError("history", "follow", "failed to watch history", err)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go watcher.Run(ctx)

	f := newFollower(w)
	f.update(session.Load(backend, key))
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-watcher.Changes():
			if !ok {
				return nil
			}
			f.update(session.Load(backend, key))
		}
	}
}

// follower prints messages that are new or whose status changed since the
// previous update.
type follower struct {
	w    io.Writer
	seen map[string]model.Status
}

func newFollower(w io.Writer) *follower {
	return &follower{w: w, seen: make(map[string]model.Status)}
}

func (f *follower) update(msgs []model.Message) {
	if len(msgs) == 0 && len(f.seen) > 0 {
		fmt.Fprintln(f.w, DimStyle.Render("[chat cleared]"))
		f.seen = make(map[string]model.Status)
		return
	}
	present := make(map[string]bool, len(msgs))
	for _, m := range msgs {
		present[m.ID] = true
		if prev, ok := f.seen[m.ID]; ok && prev == m.Status {
			continue
		}
		f.seen[m.ID] = m.Status
		writeMessage(f.w, m)
	}
	for id := range f.seen {
		if !present[id] {
			delete(f.seen, id)
		}
	}
}
