// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package recorder turns a platform capture device into a start/stop/reset
// state machine that produces one audio artifact per recording.
//
// # States
//
//	idle ──Start──▶ recording ──Stop──▶ stopped
//	  │                 │                  │
//	  └──(failure)──▶ error ◀──(stream ends)┘
//	stopped, error ──Reset──▶ idle
//
// Start is a no-op while recording and is also accepted from stopped and
// error, discarding the previous artifact. The device is held from Start
// until Stop, Reset or Close.
//
// # Devices
//
// Device abstracts the capture capability. FFmpegDevice drives an ffmpeg
// child process (pulse/alsa on Linux, avfoundation on macOS, dshow on
// Windows); tests use an in-memory fake.
//
// # Usage
//
//	rec := recorder.New(recorder.NewFFmpegDevice(recorder.FFmpegConfig{}))
//	defer rec.Close()
//	if err := rec.Start(ctx); err != nil { ... }
//	...
//	artifact := rec.Stop()
package recorder
