// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recorder

import (
	"context"
	"errors"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnsupported indicates the platform has no usable capture capability.
	ErrUnsupported = errors.New("audio capture not supported")

	// ErrPermissionDenied indicates the OS refused microphone access.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrDeviceUnavailable indicates no input device could be opened.
	ErrDeviceUnavailable = errors.New("audio input device unavailable")

	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("recorder closed")

	// ErrAborted is returned by a Start that was overtaken by Reset while the
	// device was opening.
	ErrAborted = errors.New("recording start aborted")
)

// User-facing error texts. Permission and device failures share one message.
const (
	UnsupportedMessage = "Audio recording isn't supported on this system."
	StartFailedMessage = "Failed to start microphone"
)

// =============================================================================
// PLATFORM CAPABILITY
// =============================================================================

// Device is the platform audio capture capability.
type Device interface {
	// Supported reports whether capture is possible at all.
	Supported() bool

	// IsTypeSupported reports whether the device can produce the encoding.
	IsTypeSupported(mimeType string) bool

	// Open acquires the input device and starts producing encoded chunks.
	// An empty mimeType asks for the platform default.
	Open(ctx context.Context, mimeType string) (Stream, error)
}

// Stream is an active capture session.
type Stream interface {
	// Data delivers encoded chunks. It is closed once the stream has ended,
	// after Stop has flushed any buffered audio.
	Data() <-chan []byte

	// MimeType is the encoding the stream is actually producing, if known.
	MimeType() string

	// Stop ends capture and flushes remaining data to Data.
	Stop() error

	// Tracks returns the device handles held by the stream.
	Tracks() []Track
}

// Track is an exclusively held input device handle.
type Track interface {
	// Stop releases the device. Calling it more than once is allowed.
	Stop()
}
