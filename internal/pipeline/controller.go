// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jeranaias/pppw/internal/recorder"
	"github.com/jeranaias/pppw/internal/session"
)

// Client is the remote API as the controller uses it.
type Client interface {
	Asker
	Transcriber
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the chat screen state shared by every front end: the composer
// input, the two pipelines, the recorder and the transcript.
type Controller struct {
	Store         *session.Store
	Recorder      *recorder.Recorder
	Ask           *AskPipeline
	Transcription *TranscriptionPipeline

	mu    sync.Mutex
	input string
}

// NewController wires the pipelines to store, rec and client.
func NewController(store *session.Store, rec *recorder.Recorder, client Client) *Controller {
	return &Controller{
		Store:         store,
		Recorder:      rec,
		Ask:           NewAskPipeline(store, client),
		Transcription: NewTranscriptionPipeline(client),
	}
}

// Input returns the composer text.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput replaces the composer text.
func (c *Controller) SetInput(s string) {
	c.mu.Lock()
	c.input = s
	c.mu.Unlock()
}

// Busy is true while either a question or a transcription is in flight.
func (c *Controller) Busy() bool {
	return c.Ask.Busy() || c.Transcription.Busy()
}

// CanSend reports whether the current input would be accepted by BeginSend.
func (c *Controller) CanSend() bool {
	return !c.Busy() && strings.TrimSpace(c.Input()) != ""
}

// BeginSend starts asking the current input and clears it.
func (c *Controller) BeginSend() (*Pending, error) {
	if c.Busy() {
		return nil, ErrBusy
	}
	c.mu.Lock()
	text := c.input
	c.mu.Unlock()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmpty
	}

	pending, err := c.Ask.Begin(text)
	if err != nil {
		return nil, err
	}
	c.SetInput("")
	return pending, nil
}

// Send asks the current input and waits for the answer.
func (c *Controller) Send(ctx context.Context) (Result, error) {
	pending, err := c.BeginSend()
	if err != nil {
		return Result{}, err
	}
	r := c.Ask.Fetch(ctx, pending)
	return r, c.Ask.Finish(r)
}

// StartRecording starts the recorder. Not allowed while busy.
func (c *Controller) StartRecording(ctx context.Context) error {
	if c.Busy() {
		return ErrBusy
	}
	c.Transcription.Forget()
	return c.Recorder.Start(ctx)
}

// StopRecording stops the recorder and returns the new artifact, if any.
func (c *Controller) StopRecording() *recorder.Artifact {
	return c.Recorder.Stop()
}

// BeginTranscription claims a for upload.
func (c *Controller) BeginTranscription(a *recorder.Artifact) bool {
	return c.Transcription.Begin(a)
}

// FinishTranscription puts text in the composer and clears busy. The text is
// not sent.
func (c *Controller) FinishTranscription(text string) {
	c.SetInput(text)
	c.Transcription.Finish()
}

// Transcribe uploads a and fills the composer with the result. It returns
// false when a was already processed.
func (c *Controller) Transcribe(ctx context.Context, a *recorder.Artifact) bool {
	if !c.BeginTranscription(a) {
		return false
	}
	c.FinishTranscription(c.Transcription.Fetch(ctx, a))
	return true
}

// DiscardRecording drops the recording and whatever its transcript put in
// the composer.
func (c *Controller) DiscardRecording() {
	c.Recorder.Reset()
	c.Transcription.Forget()
	c.SetInput("")
}

// Clear empties the transcript. Not allowed while busy.
func (c *Controller) Clear() error {
	if c.Busy() {
		return ErrBusy
	}
	return c.Store.Clear()
}

// Close releases the recorder and the store.
func (c *Controller) Close() error {
	return errors.Join(c.Recorder.Close(), c.Store.Close())
}
