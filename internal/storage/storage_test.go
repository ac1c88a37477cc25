// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// BACKEND CONTRACT TESTS
// =============================================================================

func backends(t *testing.T) map[string]Backend {
	t.Helper()

	fb, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	sb, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "pppw.db"))
	require.NoError(t, err)

	return map[string]Backend{
		"file":   fb,
		"sqlite": sb,
		"memory": NewMemoryBackend(),
	}
}

func TestBackend_Contract(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer b.Close()

			_, ok, err := b.Get("pppw.chat.v1")
			require.NoError(t, err)
			require.False(t, ok, "absent key must report ok=false")

			require.NoError(t, b.Set("pppw.chat.v1", []byte(`[]`)))
			require.NoError(t, b.Set("pppw.chat.v1", []byte(`[{"id":"a"}]`)))

			got, ok, err := b.Get("pppw.chat.v1")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, `[{"id":"a"}]`, string(got))

			require.NoError(t, b.Delete("pppw.chat.v1"))
			require.NoError(t, b.Delete("pppw.chat.v1"), "deleting twice is fine")

			_, ok, err = b.Get("pppw.chat.v1")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestBackend_RejectsEmptyKey(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer b.Close()
			err := b.Set("  ", []byte("x"))
			require.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestBackend_ClosedErrors(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Close())
			err := b.Set("k", []byte("v"))
			require.True(t, errors.Is(err, ErrClosed), "Set after Close = %v", err)
		})
	}
}

func TestSQLiteBackend_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pppw.db")

	b, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	require.NoError(t, b.Set("pppw.chat.v1", []byte(`["persisted"]`)))
	require.NoError(t, b.Close())

	b2, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	defer b2.Close()

	got, ok, err := b2.Get("pppw.chat.v1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `["persisted"]`, string(got))
}

func TestFileBackend_PathAndPermissions(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "pppw.chat.v1.json"), b.Path("pppw.chat.v1"))
	require.Equal(t, filepath.Join(dir, "a_b.json"), b.Path("a/b"))

	require.NoError(t, b.Set("pppw.chat.v1", []byte("[]")))
	info, err := os.Stat(b.Path("pppw.chat.v1"))
	require.NoError(t, err)
	if mode := info.Mode().Perm(); mode != 0600 && os.PathSeparator == '/' {
		t.Errorf("file mode = %o, want 600", mode)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"", "file", "sqlite", "memory", "SQLite"} {
		b, err := Open(name, dir)
		require.NoError(t, err, "Open(%q)", name)
		require.NoError(t, b.Close())
	}

	_, err := Open("redis", dir)
	require.ErrorIs(t, err, ErrUnknownBackend)
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcher_ReportsAtomicWrites(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	path := b.Path("pppw.chat.v1")

	w, err := NewWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, b.Set("pppw.chat.v1", []byte("[]")))

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported after write")
	}

	// Unrelated files in the same directory are ignored
	require.NoError(t, b.Set("other", []byte("[]")))
	select {
	case <-w.Changes():
		t.Fatal("change reported for an unrelated key")
	case <-time.After(200 * time.Millisecond):
	}
}
