// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline connects user input and recordings to the remote API and
// writes the outcome into the session store.
package pipeline

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/pppw/internal/api"
	"github.com/jeranaias/pppw/internal/model"
	"github.com/jeranaias/pppw/internal/session"
	"github.com/jeranaias/pppw/internal/util"
)

// Texts written into the transcript.
const (
	NoAnswerText   = "No answer returned."
	AskFailureText = "failed to ask"
	ErrorPrefix    = "Error: "
)

// logPreviewRunes bounds how much of a question goes into the log.
const logPreviewRunes = 40

var (
	// ErrBusy is returned when a request is already in flight.
	ErrBusy = errors.New("a request is already in progress")

	// ErrEmpty is returned for blank input.
	ErrEmpty = errors.New("nothing to send")
)

// Asker is the answer endpoint.
type Asker interface {
	Ask(ctx context.Context, question string) (*api.AskResponse, error)
}

// =============================================================================
// ASK PIPELINE
// =============================================================================

// Pending is a question whose placeholder is in the transcript.
type Pending struct {
	Question      string
	UserID        string
	PlaceholderID string
}

// Result is the final content of a placeholder.
type Result struct {
	PlaceholderID string
	Content       string
	Status        model.Status
}

// Failed reports whether the request failed.
func (r Result) Failed() bool {
	return r.Status == model.StatusFailed
}

// AskPipeline sends one question at a time. Submissions while a question
// is in flight are rejected, never queued.
//
// The work is split so an event loop can run Begin and Finish on its own
// goroutine and only Fetch elsewhere: Begin writes the user message and the
// placeholder, Fetch does the network call, Finish settles the placeholder.
type AskPipeline struct {
	store  *session.Store
	client Asker

	mu   sync.Mutex
	busy bool
}

// NewAskPipeline creates a pipeline writing to store.
func NewAskPipeline(store *session.Store, client Asker) *AskPipeline {
	return &AskPipeline{store: store, client: client}
}

// Busy reports whether a question is in flight.
func (p *AskPipeline) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Begin appends the user message and a "Thinking…" placeholder and marks the
// pipeline busy.
func (p *AskPipeline) Begin(text string) (*Pending, error) {
	q := strings.TrimSpace(text)
	if q == "" {
		return nil, ErrEmpty
	}

	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	p.busy = true
	p.mu.Unlock()

	user := model.NewUserMessage(q)
	placeholder := model.NewPlaceholder()

	// Storage errors are logged by the store; the placeholder still exists
	// in memory and will be settled normally.
	_ = p.store.Add(user)
	_ = p.store.Add(placeholder)

	log.Printf("ASK_BEGIN | placeholder=%s question=%q", placeholder.ID, util.TruncateRunes(q, logPreviewRunes))
	return &Pending{Question: q, UserID: user.ID, PlaceholderID: placeholder.ID}, nil
}

// Fetch performs the network call for pending. It touches no shared state.
func (p *AskPipeline) Fetch(ctx context.Context, pending *Pending) Result {
	resp, err := p.client.Ask(ctx, pending.Question)
	r := AskOutcome(resp, err)
	r.PlaceholderID = pending.PlaceholderID
	return r
}

// Finish settles the placeholder and clears busy.
func (p *AskPipeline) Finish(r Result) error {
	defer func() {
		p.mu.Lock()
		p.busy = false
		p.mu.Unlock()
	}()

	log.Printf("ASK_COMPLETE | placeholder=%s status=%s", r.PlaceholderID, r.Status)
	if r.Failed() {
		return p.store.Fail(r.PlaceholderID, r.Content)
	}
	return p.store.Resolve(r.PlaceholderID, r.Content)
}

// Submit runs Begin, Fetch and Finish in sequence.
func (p *AskPipeline) Submit(ctx context.Context, text string) (Result, error) {
	pending, err := p.Begin(text)
	if err != nil {
		return Result{}, err
	}
	r := p.Fetch(ctx, pending)
	if err := p.Finish(r); err != nil {
		return r, err
	}
	return r, nil
}

// AskOutcome maps an API result to placeholder content: the answer, else the
// returned error text, else NoAnswerText. A failed request becomes
// "Error: <reason>".
func AskOutcome(resp *api.AskResponse, err error) Result {
	if err != nil {
		reason := strings.TrimSpace(err.Error())
		if reason == "" {
			reason = AskFailureText
		}
		return Result{Content: ErrorPrefix + reason, Status: model.StatusFailed}
	}
	switch {
	case resp == nil:
		return Result{Content: NoAnswerText, Status: model.StatusResolved}
	case resp.Answer != "":
		return Result{Content: resp.Answer, Status: model.StatusResolved}
	case resp.Error != "":
		return Result{Content: resp.Error, Status: model.StatusResolved}
	default:
		return Result{Content: NoAnswerText, Status: model.StatusResolved}
	}
}
