// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package recordertest provides an in-memory capture device for tests.
package recordertest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jeranaias/pppw/internal/recorder"
)

// Device is a scripted recorder.Device.
type Device struct {
	// Unsupported makes Supported return false.
	Unsupported bool
	// Types lists the encodings IsTypeSupported accepts.
	Types map[string]bool
	// OpenErr is returned by Open when set.
	OpenErr error
	// Reported is the stream's MimeType.
	Reported string
	// Chunks are emitted by each stream on Stop, before Data is closed.
	Chunks [][]byte
	// Hold, when non-nil, makes Open wait until it is closed, like a
	// permission prompt.
	Hold chan struct{}
	// StopHold, when non-nil, makes each stream's Stop wait until it is
	// closed, like a device flushing its last buffer.
	StopHold chan struct{}

	opens   atomic.Int32
	mu      sync.Mutex
	streams []*Stream
}

// Supported implements recorder.Device.
func (d *Device) Supported() bool { return !d.Unsupported }

// IsTypeSupported implements recorder.Device.
func (d *Device) IsTypeSupported(mime string) bool { return d.Types[mime] }

// Open implements recorder.Device.
func (d *Device) Open(ctx context.Context, mime string) (recorder.Stream, error) {
	d.opens.Add(1)
	if d.Hold != nil {
		select {
		case <-d.Hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	s := &Stream{
		requested: mime,
		reported:  d.Reported,
		chunks:    d.Chunks,
		data:      make(chan []byte, len(d.Chunks)+1),
		tracks:    []*Track{{}, {}},
		stopHold:  d.StopHold,
	}
	d.mu.Lock()
	d.streams = append(d.streams, s)
	d.mu.Unlock()
	return s, nil
}

// Opens returns how many times Open was called.
func (d *Device) Opens() int { return int(d.opens.Load()) }

// Last returns the most recently opened stream, or nil.
func (d *Device) Last() *Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.streams) == 0 {
		return nil
	}
	return d.streams[len(d.streams)-1]
}

// Stream is the fake capture session.
type Stream struct {
	requested string
	reported  string
	chunks    [][]byte
	data      chan []byte
	tracks    []*Track
	stopHold  chan struct{}

	once    sync.Once
	stopped atomic.Bool
}

// Requested is the encoding passed to Open.
func (s *Stream) Requested() string { return s.requested }

// Data implements recorder.Stream.
func (s *Stream) Data() <-chan []byte { return s.data }

// MimeType implements recorder.Stream.
func (s *Stream) MimeType() string { return s.reported }

// Stop implements recorder.Stream.
func (s *Stream) Stop() error {
	s.once.Do(func() {
		s.stopped.Store(true)
		if s.stopHold != nil {
			<-s.stopHold
		}
		for _, c := range s.chunks {
			s.data <- c
		}
		close(s.data)
	})
	return nil
}

// End closes the stream as if the device vanished mid-recording.
func (s *Stream) End() {
	s.once.Do(func() { close(s.data) })
}

// Stopped reports whether Stop was called.
func (s *Stream) Stopped() bool { return s.stopped.Load() }

// Tracks implements recorder.Stream.
func (s *Stream) Tracks() []recorder.Track {
	out := make([]recorder.Track, len(s.tracks))
	for i, t := range s.tracks {
		out[i] = t
	}
	return out
}

// FakeTracks returns the underlying fake tracks.
func (s *Stream) FakeTracks() []*Track { return s.tracks }

// Track records whether it was released.
type Track struct {
	stops atomic.Int32
}

// Stop implements recorder.Track.
func (t *Track) Stop() { t.stops.Add(1) }

// Stopped reports whether Stop was called at least once.
func (t *Track) Stopped() bool { return t.stops.Load() > 0 }
