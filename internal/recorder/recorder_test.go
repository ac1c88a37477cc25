// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recorder_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/pppw/internal/audio"
	"github.com/jeranaias/pppw/internal/recorder"
	"github.com/jeranaias/pppw/internal/recorder/recordertest"
)

func newDevice() *recordertest.Device {
	return &recordertest.Device{
		Types:  map[string]bool{audio.WebMOpus: true, audio.WebM: true},
		Chunks: [][]byte{[]byte("chunk-1|"), []byte("chunk-2")},
	}
}

// =============================================================================
// START / STOP
// =============================================================================

func TestStartStop_ProducesArtifact(t *testing.T) {
	dev := newDevice()
	rec := recorder.New(dev)
	defer rec.Close()

	require.NoError(t, rec.Start(context.Background()))
	require.Equal(t, recorder.StatusRecording, rec.Status())
	require.Equal(t, audio.WebMOpus, dev.Last().Requested())

	a := rec.Stop()
	require.NotNil(t, a)
	require.Equal(t, recorder.StatusStopped, rec.Status())
	require.Equal(t, "chunk-1|chunk-2", string(a.Data))
	require.Equal(t, audio.WebMOpus, a.MimeType)
	require.Same(t, a, rec.Artifact())
}

func TestStart_IdempotentWhileRecording(t *testing.T) {
	dev := newDevice()
	rec := recorder.New(dev)
	defer rec.Close()

	ctx := context.Background()
	require.NoError(t, rec.Start(ctx))
	require.NoError(t, rec.Start(ctx))
	require.NoError(t, rec.Start(ctx))

	require.Equal(t, 1, dev.Opens(), "device must be acquired once")
	require.Equal(t, recorder.StatusRecording, rec.Status())
}

func TestStop_ReleasesAllTracks(t *testing.T) {
	dev := newDevice()
	rec := recorder.New(dev)
	defer rec.Close()

	require.NoError(t, rec.Start(context.Background()))
	rec.Stop()

	s := dev.Last()
	require.True(t, s.Stopped())
	for i, tr := range s.FakeTracks() {
		require.True(t, tr.Stopped(), "track %d still held", i)
	}
}

func TestStop_NoopWhenNotRecording(t *testing.T) {
	rec := recorder.New(newDevice())
	require.Nil(t, rec.Stop())
	require.Equal(t, recorder.StatusIdle, rec.Status())
}

func TestArtifactIDsAreDistinct(t *testing.T) {
	rec := recorder.New(newDevice())
	defer rec.Close()

	require.NoError(t, rec.Start(context.Background()))
	first := rec.Stop()
	require.NoError(t, rec.Start(context.Background()))
	second := rec.Stop()

	require.NotEqual(t, first.ID, second.ID)
	require.Greater(t, second.ID, first.ID)
}

func TestStart_FromStoppedDiscardsArtifact(t *testing.T) {
	rec := recorder.New(newDevice())
	defer rec.Close()

	require.NoError(t, rec.Start(context.Background()))
	rec.Stop()
	require.NotNil(t, rec.Artifact())

	require.NoError(t, rec.Start(context.Background()))
	require.Nil(t, rec.Artifact())
	require.Equal(t, 0, rec.Seconds())
}

// =============================================================================
// ENCODING
// =============================================================================

func TestArtifactType_FallsBackToReportedThenWebM(t *testing.T) {
	dev := newDevice()
	dev.Types = nil
	dev.Reported = audio.WAV
	rec := recorder.New(dev)

	require.NoError(t, rec.Start(context.Background()))
	require.Equal(t, "", dev.Last().Requested(), "no candidate supported: platform default")
	require.Equal(t, audio.WAV, rec.Stop().MimeType)

	dev.Reported = ""
	require.NoError(t, rec.Start(context.Background()))
	require.Equal(t, "audio/webm", rec.Stop().MimeType)
}

func TestWithCandidates(t *testing.T) {
	dev := newDevice()
	dev.Types = map[string]bool{audio.Ogg: true, audio.WebM: true}
	rec := recorder.New(dev, recorder.WithCandidates([]string{audio.Ogg, audio.WebM}))

	require.NoError(t, rec.Start(context.Background()))
	require.Equal(t, audio.Ogg, dev.Last().Requested())
	rec.Stop()
}

// =============================================================================
// ERRORS
// =============================================================================

func TestStart_Unsupported(t *testing.T) {
	dev := newDevice()
	dev.Unsupported = true
	rec := recorder.New(dev)

	err := rec.Start(context.Background())
	require.ErrorIs(t, err, recorder.ErrUnsupported)

	st := rec.State()
	require.Equal(t, recorder.StatusError, st.Status)
	require.Equal(t, recorder.UnsupportedMessage, st.Error)
	require.Equal(t, 0, dev.Opens())
}

func TestStart_PermissionAndDeviceFailuresShareMessage(t *testing.T) {
	for _, cause := range []error{recorder.ErrPermissionDenied, recorder.ErrDeviceUnavailable} {
		dev := newDevice()
		dev.OpenErr = cause
		rec := recorder.New(dev)

		err := rec.Start(context.Background())
		require.True(t, errors.Is(err, cause))
		require.Equal(t, recorder.StatusError, rec.Status())
		require.Equal(t, recorder.StartFailedMessage, rec.State().Error)
		require.ErrorIs(t, rec.Err(), cause, "underlying cause stays reachable")
	}
}

func TestStart_RetryAfterError(t *testing.T) {
	dev := newDevice()
	dev.OpenErr = recorder.ErrPermissionDenied
	rec := recorder.New(dev)
	require.Error(t, rec.Start(context.Background()))

	dev.OpenErr = nil
	require.NoError(t, rec.Start(context.Background()))
	require.Equal(t, recorder.StatusRecording, rec.Status())
	require.Empty(t, rec.State().Error)
	rec.Stop()
}

func TestStreamEndingEarly_EntersError(t *testing.T) {
	dev := newDevice()
	rec := recorder.New(dev)
	defer rec.Close()

	require.NoError(t, rec.Start(context.Background()))
	dev.Last().End()

	require.Eventually(t, func() bool {
		return rec.Status() == recorder.StatusError
	}, 2*time.Second, 5*time.Millisecond)
	for _, tr := range dev.Last().FakeTracks() {
		require.True(t, tr.Stopped())
	}
	require.Nil(t, rec.Stop())
}

// =============================================================================
// RESET / CLOSE / TIMER
// =============================================================================

func TestReset_ReturnsToIdleAndReleasesDevice(t *testing.T) {
	dev := newDevice()
	rec := recorder.New(dev)

	require.NoError(t, rec.Start(context.Background()))
	rec.Reset()

	require.Equal(t, recorder.StatusIdle, rec.Status())
	require.Nil(t, rec.Artifact())
	for _, tr := range dev.Last().FakeTracks() {
		require.True(t, tr.Stopped())
	}

	// Reset from stopped and error too
	require.NoError(t, rec.Start(context.Background()))
	rec.Stop()
	rec.Reset()
	require.Equal(t, recorder.StatusIdle, rec.Status())
	require.Nil(t, rec.Artifact())

	dev.OpenErr = recorder.ErrDeviceUnavailable
	_ = rec.Start(context.Background())
	rec.Reset()
	require.Equal(t, recorder.StatusIdle, rec.Status())
	require.Empty(t, rec.State().Error)
}

func TestClose_ReleasesWithoutStop(t *testing.T) {
	dev := newDevice()
	rec := recorder.New(dev)

	require.NoError(t, rec.Start(context.Background()))
	require.NoError(t, rec.Close())

	for _, tr := range dev.Last().FakeTracks() {
		require.True(t, tr.Stopped())
	}
	require.ErrorIs(t, rec.Start(context.Background()), recorder.ErrClosed)
	require.NoError(t, rec.Close())
}

func TestSeconds_TicksWhileRecording(t *testing.T) {
	rec := recorder.New(newDevice(), recorder.WithTickInterval(10*time.Millisecond))
	defer rec.Close()

	require.NoError(t, rec.Start(context.Background()))
	require.Eventually(t, func() bool { return rec.Seconds() >= 3 }, 2*time.Second, 5*time.Millisecond)

	a := rec.Stop()
	frozen := rec.Seconds()
	require.Equal(t, frozen, a.Seconds)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, frozen, rec.Seconds(), "counter must stop with the recording")
}

func TestChanges_SignalsTransitions(t *testing.T) {
	rec := recorder.New(newDevice())
	defer rec.Close()

	require.NoError(t, rec.Start(context.Background()))
	select {
	case <-rec.Changes():
	case <-time.After(time.Second):
		t.Fatal("no change after Start")
	}
}

// =============================================================================
// SAVE
// =============================================================================

func TestArtifactSave(t *testing.T) {
	rec := recorder.New(newDevice())
	require.NoError(t, rec.Start(context.Background()))
	a := rec.Stop()

	path, err := a.Save(t.TempDir())
	require.NoError(t, err)
	require.Contains(t, path, ".webm")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, a.Data, data)

	var empty *recorder.Artifact
	_, err = empty.Save(t.TempDir())
	require.Error(t, err)
}

// =============================================================================
// SLOW DEVICES
// =============================================================================

func TestStart_StateReadableWhileDeviceOpens(t *testing.T) {
	dev := newDevice()
	dev.Hold = make(chan struct{})
	rec := recorder.New(dev)
	defer rec.Close()

	errc := make(chan error, 1)
	go func() { errc <- rec.Start(context.Background()) }()

	require.Eventually(t, func() bool { return rec.State().Starting }, time.Second, time.Millisecond)
	require.Equal(t, recorder.StatusIdle, rec.Status())

	// A second Start while the first is acquiring the device is a no-op
	require.NoError(t, rec.Start(context.Background()))
	require.Nil(t, rec.Stop())

	close(dev.Hold)
	require.NoError(t, <-errc)
	require.Equal(t, recorder.StatusRecording, rec.Status())
	require.False(t, rec.State().Starting)
	require.Equal(t, 1, dev.Opens())
}

func TestStart_ResetWhileOpeningReleasesStream(t *testing.T) {
	dev := newDevice()
	dev.Hold = make(chan struct{})
	rec := recorder.New(dev)
	defer rec.Close()

	errc := make(chan error, 1)
	go func() { errc <- rec.Start(context.Background()) }()
	require.Eventually(t, func() bool { return rec.State().Starting }, time.Second, time.Millisecond)

	rec.Reset()
	close(dev.Hold)
	require.ErrorIs(t, <-errc, recorder.ErrAborted)
	require.Equal(t, recorder.StatusIdle, rec.Status())
	require.Eventually(t, func() bool { return dev.Last().Stopped() }, time.Second, time.Millisecond)
}

func TestStop_StateReadableWhileFlushing(t *testing.T) {
	dev := newDevice()
	dev.StopHold = make(chan struct{})
	rec := recorder.New(dev)
	defer rec.Close()
	require.NoError(t, rec.Start(context.Background()))

	done := make(chan *recorder.Artifact, 1)
	go func() { done <- rec.Stop() }()
	require.Eventually(t, func() bool { return dev.Last().Stopped() }, time.Second, time.Millisecond)

	// The lock is free while the stream flushes
	_ = rec.State()
	require.Nil(t, rec.Stop(), "a second Stop while finalizing returns nil")

	close(dev.StopHold)
	a := <-done
	require.NotNil(t, a)
	require.Equal(t, "chunk-1|chunk-2", string(a.Data))
	require.Equal(t, recorder.StatusStopped, rec.Status())
}

func TestReset_WhileStoppingDropsArtifact(t *testing.T) {
	dev := newDevice()
	dev.StopHold = make(chan struct{})
	rec := recorder.New(dev)
	defer rec.Close()
	require.NoError(t, rec.Start(context.Background()))

	done := make(chan *recorder.Artifact, 1)
	go func() { done <- rec.Stop() }()
	require.Eventually(t, func() bool { return dev.Last().Stopped() }, time.Second, time.Millisecond)

	rec.Reset()
	close(dev.StopHold)
	require.Nil(t, <-done)
	require.Equal(t, recorder.StatusIdle, rec.Status())
	require.Nil(t, rec.Artifact())
}
