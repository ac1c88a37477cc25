// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recorder

import (
	"errors"
	"strings"
	"testing"
)

func TestHasEncoder(t *testing.T) {
	listing := ` A..... aac                  AAC (Advanced Audio Coding)
 A..... libopus              libopus Opus (codec opus)
 A..... pcm_s16le            PCM signed 16-bit little-endian
`
	if !hasEncoder(listing, "libopus") {
		t.Error("libopus should be found")
	}
	if hasEncoder(listing, "libvorbis") {
		t.Error("libvorbis is not listed")
	}
	if hasEncoder(listing, "opus") {
		t.Error("partial names must not match")
	}
}

func TestClassifyStartFailure(t *testing.T) {
	tests := []struct {
		stderr string
		want   error
	}{
		{"[pulse] pa_context_connect() failed: Access denied", ErrPermissionDenied},
		{"default: Permission denied", ErrPermissionDenied},
		{"[alsa] cannot open audio device hw:9 (No such file or directory)", ErrDeviceUnavailable},
		{"", ErrDeviceUnavailable},
	}
	for _, tt := range tests {
		err := classifyStartFailure(tt.stderr, errors.New("exit status 1"))
		if !errors.Is(err, tt.want) {
			t.Errorf("classify(%q) = %v, want %v", tt.stderr, err, tt.want)
		}
	}
}

func TestFFmpegArgs(t *testing.T) {
	d := NewFFmpegDevice(FFmpegConfig{InputFormat: "alsa", InputDevice: "hw:0"})

	args := strings.Join(d.Args("audio/ogg;codecs=opus"), " ")
	for _, want := range []string{"-f alsa -i hw:0", "-c:a libopus -f ogg", "pipe:1"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}

	// Unknown or empty types fall back to WAV
	args = strings.Join(d.Args(""), " ")
	if !strings.Contains(args, "-f wav") {
		t.Errorf("default args %q should produce wav", args)
	}
}

func TestNewFFmpegDevice_Defaults(t *testing.T) {
	d := NewFFmpegDevice(FFmpegConfig{})
	f, dev := DefaultInput()
	if d.cfg.Path != "ffmpeg" || d.cfg.InputFormat != f || d.cfg.InputDevice != dev {
		t.Errorf("unexpected defaults: %+v", d.cfg)
	}
}

func TestFFmpegDevice_MissingBinary(t *testing.T) {
	d := NewFFmpegDevice(FFmpegConfig{Path: "/nonexistent/ffmpeg-for-tests"})
	if d.Supported() {
		t.Fatal("missing binary must be unsupported")
	}
	if d.IsTypeSupported("audio/webm") {
		t.Error("no types without a binary")
	}
}
