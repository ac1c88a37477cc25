// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package recorder turns a platform capture device into a start/stop/reset
// state machine that produces one audio artifact per recording.
package recorder

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/pppw/internal/audio"
)

// DefaultTickInterval is how often the elapsed-seconds counter advances.
const DefaultTickInterval = time.Second

// =============================================================================
// STATUS
// =============================================================================

// Status is the recorder lifecycle state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRecording Status = "recording"
	StatusStopped   Status = "stopped"
	StatusError     Status = "error"
)

// =============================================================================
// ARTIFACT
// =============================================================================

// artifactSeq issues artifact ids. Ids are unique for the life of the process.
var artifactSeq atomic.Uint64

// Artifact is one finished recording.
type Artifact struct {
	// ID is a process-wide sequence number. Two artifacts are the same
	// recording exactly when their IDs are equal.
	ID       uint64
	MimeType string
	Data     []byte
	Seconds  int
	Created  time.Time
}

// Size returns the artifact length in bytes.
func (a *Artifact) Size() int {
	return len(a.Data)
}

// State is a point-in-time snapshot of the recorder.
type State struct {
	Status   Status
	Seconds  int
	Error    string
	MimeType string
	Artifact *Artifact
	// Starting is set while the device is being acquired.
	Starting bool
}

// =============================================================================
// OPTIONS
// =============================================================================

// Option configures a Recorder.
type Option func(*Recorder)

// WithTickInterval sets the elapsed-counter period.
func WithTickInterval(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.tick = d
		}
	}
}

// WithCandidates overrides the encoding negotiation order.
func WithCandidates(candidates []string) Option {
	return func(r *Recorder) {
		if len(candidates) > 0 {
			r.candidates = append([]string(nil), candidates...)
		}
	}
}

// =============================================================================
// RECORDER
// =============================================================================

// Recorder owns at most one capture session at a time.
type Recorder struct {
	device     Device
	tick       time.Duration
	candidates []string

	mu       sync.Mutex
	status   Status
	seconds  int
	err      error
	errText  string
	mime     string
	artifact *Artifact
	closed   bool
	starting bool
	stopping bool

	// active session, nil unless recording
	gen      uint64
	stream   Stream
	done     chan []byte
	stopTick chan struct{}

	changes chan struct{}
}

// New creates an idle recorder over device.
func New(device Device, opts ...Option) *Recorder {
	r := &Recorder{
		device:     device,
		tick:       DefaultTickInterval,
		candidates: audio.DefaultCandidates,
		status:     StatusIdle,
		changes:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Changes receives a value whenever the snapshot changes. Signals coalesce.
func (r *Recorder) Changes() <-chan struct{} {
	return r.changes
}

// State returns a snapshot.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{
		Status:   r.status,
		Seconds:  r.seconds,
		Error:    r.errText,
		MimeType: r.mime,
		Artifact: r.artifact,
		Starting: r.starting,
	}
}

// Status returns the current lifecycle state.
func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Seconds returns whole seconds elapsed in the current or last recording.
func (r *Recorder) Seconds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seconds
}

// Err returns the underlying error behind an error state.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Artifact returns the last finished recording, or nil.
func (r *Recorder) Artifact() *Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.artifact
}

// Start begins a recording. Calling Start while already recording, or while
// another Start is acquiring the device, does nothing. From stopped or error
// the previous artifact and error are discarded first.
//
// The lock is not held while the device opens, which may wait on a
// permission prompt; State stays readable and reports Starting.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.status == StatusRecording || r.starting {
		r.mu.Unlock()
		return nil
	}

	r.err = nil
	r.errText = ""
	r.artifact = nil
	r.seconds = 0

	if r.device == nil || !r.device.Supported() {
		r.failLocked(ErrUnsupported, UnsupportedMessage)
		r.mu.Unlock()
		return ErrUnsupported
	}

	mime := audio.Negotiate(r.device.IsTypeSupported, r.candidates)
	device := r.device
	r.gen++
	gen := r.gen
	r.status = StatusIdle
	r.starting = true
	r.notify()
	r.mu.Unlock()

	stream, err := device.Open(ctx, mime)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gen != gen || r.closed {
		// Reset or Close ran while the device was opening
		if err == nil {
			go discardStream(stream)
		}
		if r.closed {
			return ErrClosed
		}
		return ErrAborted
	}
	r.starting = false

	if err != nil {
		r.failLocked(err, StartFailedMessage)
		log.Printf("RECORDER_START_FAILED | mime=%q error=%v", mime, err)
		return err
	}

	r.mime = mime
	r.stream = stream
	r.done = make(chan []byte, 1)
	r.stopTick = make(chan struct{})
	r.status = StatusRecording

	go r.collect(gen, stream, r.done)
	go r.ticker(gen, r.stopTick)

	log.Printf("RECORDER_START | mime=%q reported=%q", mime, stream.MimeType())
	r.notify()
	return nil
}

// Stop ends the recording and returns the finished artifact. It returns nil
// when not recording, when another Stop is already finalizing, or when the
// recording was reset while it was being finalized.
//
// The counter freezes immediately; the lock is released while the device
// flushes its last data.
func (r *Recorder) Stop() *Artifact {
	r.mu.Lock()
	if r.status != StatusRecording || r.stopping {
		r.mu.Unlock()
		return nil
	}
	r.stopping = true
	close(r.stopTick)
	r.stopTick = nil
	gen, stream, done := r.gen, r.stream, r.done
	r.mu.Unlock()

	if err := stream.Stop(); err != nil {
		log.Printf("RECORDER_STOP_ERROR | error=%v", err)
	}
	data := <-done

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		return nil
	}
	releaseTracks(stream)

	a := &Artifact{
		ID:       artifactSeq.Add(1),
		MimeType: audio.ArtifactType(r.mime, stream.MimeType()),
		Data:     data,
		Seconds:  r.seconds,
		Created:  time.Now(),
	}
	r.artifact = a
	r.status = StatusStopped
	r.clearSessionLocked()

	log.Printf("RECORDER_STOP | artifact=%d mime=%q bytes=%d seconds=%d", a.ID, a.MimeType, a.Size(), a.Seconds)
	r.notify()
	return a
}

// Reset discards any artifact or error, releases a held device and returns
// to idle.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.abortLocked()
	r.gen++
	r.starting = false
	r.status = StatusIdle
	r.seconds = 0
	r.err = nil
	r.errText = ""
	r.artifact = nil
	r.notify()
}

// Close releases everything the recorder holds, even mid-recording. The
// recorder cannot be started again.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.abortLocked()
	r.gen++
	r.closed = true
	r.starting = false
	if r.status == StatusRecording {
		r.status = StatusIdle
	}
	return nil
}

// =============================================================================
// INTERNAL
// =============================================================================

// collect accumulates chunks until the stream ends, then hands the buffer to
// whoever finalizes the session.
func (r *Recorder) collect(gen uint64, s Stream, done chan<- []byte) {
	var buf bytes.Buffer
	for chunk := range s.Data() {
		if len(chunk) > 0 {
			buf.Write(chunk)
		}
	}
	done <- buf.Bytes()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen || r.status != StatusRecording || r.stopping {
		return
	}
	// The stream ended on its own
	<-r.done
	close(r.stopTick)
	releaseTracks(r.stream)
	r.clearSessionLocked()
	r.failLocked(errors.New("capture ended unexpectedly"), "Recording stopped unexpectedly")
	log.Printf("RECORDER_STREAM_ENDED | gen=%d", gen)
}

func (r *Recorder) ticker(gen uint64, stop <-chan struct{}) {
	t := time.NewTicker(r.tick)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			r.mu.Lock()
			if r.gen == gen && r.status == StatusRecording {
				r.seconds++
				r.notify()
			}
			r.mu.Unlock()
		}
	}
}

// abortLocked tears down an active session without producing an artifact.
func (r *Recorder) abortLocked() {
	if r.status != StatusRecording || r.stream == nil {
		return
	}
	// A Stop in progress has already closed the ticker and is stopping the
	// stream; it notices the new generation and returns nil.
	if !r.stopping {
		close(r.stopTick)
		// Best effort: errors here only mean the device was already gone
		_ = r.stream.Stop()
	}
	releaseTracks(r.stream)
	r.gen++ // orphan the collector; it drains into its buffered channel
	r.clearSessionLocked()
	log.Printf("RECORDER_ABORT")
}

func (r *Recorder) clearSessionLocked() {
	r.stream = nil
	r.done = nil
	r.stopTick = nil
	r.stopping = false
}

// discardStream releases a stream that was opened for a start that no longer
// applies.
func discardStream(s Stream) {
	go func() {
		for range s.Data() {
		}
	}()
	if err := s.Stop(); err != nil {
		log.Printf("RECORDER_DISCARD_ERROR | error=%v", err)
	}
	releaseTracks(s)
}

func (r *Recorder) failLocked(err error, text string) {
	r.status = StatusError
	r.err = err
	r.errText = text
	r.notify()
}

func (r *Recorder) notify() {
	select {
	case r.changes <- struct{}{}:
	default:
	}
}

func releaseTracks(s Stream) {
	for _, t := range s.Tracks() {
		t.Stop()
	}
}
