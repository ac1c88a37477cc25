// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/pppw/internal/api"
	"github.com/jeranaias/pppw/internal/recorder"
	"github.com/jeranaias/pppw/internal/util"
)

// Texts placed in the input field when no usable transcript came back.
const (
	NoSpeechText          = "[No speech detected]"
	unknownTranscribeText = "unknown error"
)

// Transcriber is the transcription endpoint.
type Transcriber interface {
	Transcribe(ctx context.Context, data []byte, mimeType string) (*api.TranscribeResponse, error)
}

// =============================================================================
// TRANSCRIPTION PIPELINE
// =============================================================================

// TranscriptionPipeline uploads each finished recording once. Handing it the
// same artifact again, by ID, does nothing.
type TranscriptionPipeline struct {
	client Transcriber

	mu        sync.Mutex
	busy      bool
	processed uint64 // last artifact ID taken, 0 for none
}

// NewTranscriptionPipeline creates a pipeline.
func NewTranscriptionPipeline(client Transcriber) *TranscriptionPipeline {
	return &TranscriptionPipeline{client: client}
}

// Busy reports whether an upload is in flight.
func (p *TranscriptionPipeline) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Begin claims a for processing. It returns false for nil, empty or
// already-processed artifacts.
func (p *TranscriptionPipeline) Begin(a *recorder.Artifact) bool {
	if a == nil || len(a.Data) == 0 {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if a.ID == p.processed {
		return false
	}
	p.processed = a.ID
	p.busy = true
	log.Printf("TRANSCRIBE_BEGIN | artifact=%d mime=%q bytes=%d", a.ID, a.MimeType, a.Size())
	return true
}

// Fetch uploads a and returns the text for the input field.
func (p *TranscriptionPipeline) Fetch(ctx context.Context, a *recorder.Artifact) string {
	resp, err := p.client.Transcribe(ctx, a.Data, a.MimeType)
	if err != nil {
		log.Printf("TRANSCRIBE_FAILED | artifact=%d error=%v", a.ID, err)
	}
	return TranscriptText(resp, err)
}

// Finish clears busy.
func (p *TranscriptionPipeline) Finish() {
	p.mu.Lock()
	p.busy = false
	p.mu.Unlock()
}

// Process runs Begin, Fetch and Finish. ok is false when a was skipped.
func (p *TranscriptionPipeline) Process(ctx context.Context, a *recorder.Artifact) (text string, ok bool) {
	if !p.Begin(a) {
		return "", false
	}
	defer p.Finish()
	return p.Fetch(ctx, a), true
}

// Forget clears the processed marker.
func (p *TranscriptionPipeline) Forget() {
	p.mu.Lock()
	p.processed = 0
	p.mu.Unlock()
}

// TranscriptText maps an API result to the input field text.
func TranscriptText(resp *api.TranscribeResponse, err error) string {
	if err != nil {
		reason := strings.TrimSpace(err.Error())
		if reason == "" {
			reason = unknownTranscribeText
		}
		return "[Transcription failed: " + reason + "]"
	}
	if resp == nil {
		return NoSpeechText
	}
	if t := util.NormalizeText(resp.Transcript); t != "" {
		return t
	}
	if resp.Error != "" {
		return "[Transcription error] " + resp.Error
	}
	return NoSpeechText
}
