// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recorder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/pppw/internal/audio"
)

const (
	// startupGrace is how long ffmpeg must stay alive before the device is
	// considered acquired.
	startupGrace = 300 * time.Millisecond

	// stopTimeout bounds how long Stop waits for ffmpeg to finalize.
	stopTimeout = 3 * time.Second

	chunkSize = 32 * 1024

	// maxStderr bounds the diagnostic output kept per process.
	maxStderr = 16 * 1024
)

// =============================================================================
// FFMPEG DEVICE
// =============================================================================

// FFmpegConfig selects the ffmpeg binary and capture input.
type FFmpegConfig struct {
	// Path to the ffmpeg binary. Empty means "ffmpeg" on PATH.
	Path string
	// InputFormat is the ffmpeg -f input (pulse, alsa, avfoundation, dshow).
	InputFormat string
	// InputDevice is the ffmpeg -i argument for that input.
	InputDevice string
}

// DefaultInput returns the capture input for the current OS.
func DefaultInput() (format, device string) {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation", ":0"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "pulse", "default"
	}
}

// encoderArgs maps each encoding the device can produce to ffmpeg output args.
var encoderArgs = map[string][]string{
	audio.WebMOpus: {"-c:a", "libopus", "-f", "webm"},
	audio.WebM:     {"-c:a", "libvorbis", "-f", "webm"},
	audio.OggOpus:  {"-c:a", "libopus", "-f", "ogg"},
	audio.Ogg:      {"-c:a", "libvorbis", "-f", "ogg"},
	audio.WAV:      {"-c:a", "pcm_s16le", "-f", "wav"},
}

// requiredEncoder names the ffmpeg encoder each type needs.
var requiredEncoder = map[string]string{
	audio.WebMOpus: "libopus",
	audio.WebM:     "libvorbis",
	audio.OggOpus:  "libopus",
	audio.Ogg:      "libvorbis",
	audio.WAV:      "pcm_s16le",
}

// FFmpegDevice captures from the system microphone through an ffmpeg child process.
type FFmpegDevice struct {
	cfg FFmpegConfig

	probeOnce sync.Once
	binary    string
	encoders  string
}

// NewFFmpegDevice creates a device. Nothing is executed until first use.
func NewFFmpegDevice(cfg FFmpegConfig) *FFmpegDevice {
	if cfg.Path == "" {
		cfg.Path = "ffmpeg"
	}
	if cfg.InputFormat == "" || cfg.InputDevice == "" {
		f, d := DefaultInput()
		if cfg.InputFormat == "" {
			cfg.InputFormat = f
		}
		if cfg.InputDevice == "" {
			cfg.InputDevice = d
		}
	}
	return &FFmpegDevice{cfg: cfg}
}

func (d *FFmpegDevice) probe() {
	d.probeOnce.Do(func() {
		bin, err := exec.LookPath(d.cfg.Path)
		if err != nil {
			log.Printf("FFMPEG_NOT_FOUND | path=%s", d.cfg.Path)
			return
		}
		d.binary = bin
		out, err := exec.Command(bin, "-hide_banner", "-encoders").Output()
		if err != nil {
			log.Printf("FFMPEG_PROBE_FAILED | error=%v", err)
			return
		}
		d.encoders = string(out)
	})
}

// Supported implements Device.
func (d *FFmpegDevice) Supported() bool {
	d.probe()
	return d.binary != ""
}

// IsTypeSupported implements Device.
func (d *FFmpegDevice) IsTypeSupported(mimeType string) bool {
	d.probe()
	enc, ok := requiredEncoder[mimeType]
	if !ok || d.binary == "" {
		return false
	}
	return hasEncoder(d.encoders, enc)
}

// hasEncoder looks for name as a whole word in `ffmpeg -encoders` output.
func hasEncoder(listing, name string) bool {
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

// Args returns the ffmpeg command line used for mimeType.
func (d *FFmpegDevice) Args(mimeType string) []string {
	enc, ok := encoderArgs[mimeType]
	if !ok {
		enc = encoderArgs[audio.WAV]
	}
	args := []string{
		"-hide_banner", "-loglevel", "error", "-nostats",
		"-f", d.cfg.InputFormat, "-i", d.cfg.InputDevice,
		"-ac", "1", "-ar", "48000",
	}
	args = append(args, enc...)
	return append(args, "pipe:1")
}

// Open implements Device.
func (d *FFmpegDevice) Open(ctx context.Context, mimeType string) (Stream, error) {
	if !d.Supported() {
		return nil, ErrUnsupported
	}

	reported := mimeType
	if _, ok := encoderArgs[mimeType]; !ok {
		reported = audio.WAV
	}

	cmd := exec.Command(d.binary, d.Args(mimeType)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	stderr := &limitedBuffer{max: maxStderr}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	s := &ffmpegStream{
		cmd:    cmd,
		stdin:  stdin,
		mime:   reported,
		data:   make(chan []byte, 16),
		exited: make(chan struct{}),
		stderr: stderr,
	}
	readDone := make(chan struct{})
	go s.pump(stdout, readDone)
	go func() {
		<-readDone
		s.waitErr = cmd.Wait()
		close(s.exited)
		close(s.data)
	}()

	select {
	case <-s.exited:
		go drain(s.data)
		return nil, classifyStartFailure(stderr.String(), s.waitErr)
	case <-ctx.Done():
		go drain(s.data)
		s.kill()
		return nil, ctx.Err()
	case <-time.After(startupGrace):
	}

	log.Printf("FFMPEG_START | pid=%d format=%s device=%s mime=%s", cmd.Process.Pid, d.cfg.InputFormat, d.cfg.InputDevice, reported)
	return s, nil
}

// classifyStartFailure decides between a permission problem and a missing
// device from what ffmpeg printed before exiting.
func classifyStartFailure(stderr string, waitErr error) error {
	msg := strings.TrimSpace(stderr)
	if msg == "" && waitErr != nil {
		msg = waitErr.Error()
	}
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "operation not permitted"),
		strings.Contains(lower, "not authorized"),
		strings.Contains(lower, "access denied"):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, msg)
	default:
		return fmt.Errorf("%w: %s", ErrDeviceUnavailable, msg)
	}
}

// =============================================================================
// FFMPEG STREAM
// =============================================================================

type ffmpegStream struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	mime    string
	data    chan []byte
	exited  chan struct{}
	waitErr error
	stderr  *limitedBuffer

	stopOnce sync.Once
}

func (s *ffmpegStream) pump(r io.Reader, done chan<- struct{}) {
	defer close(done)
	for {
		buf := make([]byte, chunkSize)
		n, err := r.Read(buf)
		if n > 0 {
			s.data <- buf[:n]
		}
		if err != nil {
			return
		}
	}
}

func (s *ffmpegStream) Data() <-chan []byte { return s.data }

func (s *ffmpegStream) MimeType() string { return s.mime }

// Stop asks ffmpeg to finish the container ("q" on stdin) and waits for it.
func (s *ffmpegStream) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		_, _ = io.WriteString(s.stdin, "q\n")
		_ = s.stdin.Close()

		select {
		case <-s.exited:
		case <-time.After(stopTimeout):
			s.kill()
			<-s.exited
			err = errors.New("ffmpeg did not exit in time")
		}
	})
	return err
}

func (s *ffmpegStream) Tracks() []Track {
	return []Track{trackFunc(s.kill)}
}

func (s *ffmpegStream) kill() {
	select {
	case <-s.exited:
	default:
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
	}
}

func drain(ch <-chan []byte) {
	for range ch {
	}
}

type trackFunc func()

func (f trackFunc) Stop() { f() }

// limitedBuffer keeps the first max bytes written to it.
type limitedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := b.max - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
