// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audio holds the encoding names shared by the recorder and the
// transcription upload.
package audio

import "strings"

// Encoding names.
const (
	WebMOpus = "audio/webm;codecs=opus"
	WebM     = "audio/webm"
	OggOpus  = "audio/ogg;codecs=opus"
	Ogg      = "audio/ogg"
	WAV      = "audio/wav"

	// FallbackType is assumed when neither negotiation nor the capture
	// stream produced a type.
	FallbackType = WebM
)

// DefaultCandidates is the negotiation order, most preferred first.
var DefaultCandidates = []string{WebMOpus, WebM, OggOpus, Ogg}

// Negotiate returns the first candidate the platform accepts, or "" to let
// the platform pick its own default.
func Negotiate(supported func(string) bool, candidates []string) string {
	if supported == nil {
		return ""
	}
	for _, c := range candidates {
		if supported(c) {
			return c
		}
	}
	return ""
}

// ArtifactType picks the type a finished recording is tagged with: the
// negotiated type, else what the stream reported, else FallbackType.
func ArtifactType(negotiated, reported string) string {
	if negotiated != "" {
		return negotiated
	}
	if reported != "" {
		return reported
	}
	return FallbackType
}

// NormalizeUploadType maps types some capture stacks report for audio-only
// WebM back to audio/webm.
func NormalizeUploadType(mime string) string {
	if mime == "" || strings.HasPrefix(mime, "video/webm") {
		return WebM
	}
	return mime
}

// Extension returns the file extension (without dot) for an encoding.
func Extension(mime string) string {
	switch {
	case strings.Contains(mime, "webm"):
		return "webm"
	case strings.Contains(mime, "ogg"):
		return "ogg"
	case strings.Contains(mime, "wav"):
		return "wav"
	default:
		return "bin"
	}
}

// FileName returns the upload file name for an encoding, e.g. "recording.webm".
func FileName(mime string) string {
	return "recording." + Extension(mime)
}
