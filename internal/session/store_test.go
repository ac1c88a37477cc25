// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/pppw/internal/model"
	"github.com/jeranaias/pppw/internal/storage"
)

// persisted decodes whatever the backend currently holds for key.
func persisted(t *testing.T, b storage.Backend, key string) []model.Message {
	t.Helper()
	data, ok, err := b.Get(key)
	require.NoError(t, err)
	require.True(t, ok, "nothing persisted under %q", key)
	var msgs []model.Message
	require.NoError(t, json.Unmarshal(data, &msgs))
	return msgs
}

func requireLockstep(t *testing.T, s *Store, b storage.Backend) {
	t.Helper()
	mem := s.Messages()
	disk := persisted(t, b, s.Key())
	require.Equal(t, len(mem), len(disk), "length mismatch")
	for i := range mem {
		require.Equal(t, mem[i], disk[i], "message %d differs", i)
	}
}

// =============================================================================
// BASIC OPERATIONS
// =============================================================================

func TestStore_AddPersists(t *testing.T) {
	b := storage.NewMemoryBackend()
	s := Open(b, DefaultKey)

	m := model.NewUserMessage("What is a string bet?")
	require.NoError(t, s.Add(m))

	require.Equal(t, 1, s.Len())
	requireLockstep(t, s, b)
}

func TestStore_ReplaceByID(t *testing.T) {
	b := storage.NewMemoryBackend()
	s := Open(b, DefaultKey)

	p := model.NewPlaceholder()
	require.NoError(t, s.Add(model.NewUserMessage("q")))
	require.NoError(t, s.Add(p))

	require.NoError(t, s.ReplaceByID(p.ID, model.ContentPatch("answer")))

	got, ok := s.Get(p.ID)
	require.True(t, ok)
	require.Equal(t, "answer", got.Content)
	require.Equal(t, p.CreatedAt, got.CreatedAt)
	requireLockstep(t, s, b)
}

func TestStore_ReplaceByID_MissingIDIsNoop(t *testing.T) {
	b := storage.NewMemoryBackend()
	s := Open(b, DefaultKey)
	require.NoError(t, s.Add(model.NewUserMessage("hello")))
	before := s.Messages()
	writes := b.Writes()

	require.NoError(t, s.ReplaceByID("does-not-exist", model.ContentPatch("x")))

	require.Equal(t, before, s.Messages())
	require.Equal(t, writes, b.Writes(), "no write expected for a missing id")
}

func TestStore_ClearPersistsEmptyList(t *testing.T) {
	b := storage.NewMemoryBackend()
	s := Open(b, DefaultKey)
	require.NoError(t, s.Add(model.NewUserMessage("one")))
	require.NoError(t, s.Add(model.NewUserMessage("two")))

	require.NoError(t, s.Clear())

	require.Equal(t, 0, s.Len())
	data, ok, err := b.Get(DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[]`, string(data))
}

func TestStore_ResolveAndFail(t *testing.T) {
	s := Open(storage.NewMemoryBackend(), DefaultKey)

	ok := model.NewPlaceholder()
	bad := model.NewPlaceholder()
	require.NoError(t, s.Add(ok))
	require.NoError(t, s.Add(bad))

	require.NoError(t, s.Resolve(ok.ID, "answer"))
	require.NoError(t, s.Fail(bad.ID, "Error: boom"))

	got, _ := s.Get(ok.ID)
	require.Equal(t, model.StatusResolved, got.Status)
	require.Equal(t, "answer", got.Content)

	got, _ = s.Get(bad.ID)
	require.Equal(t, model.StatusFailed, got.Status)

	// Exactly one transition per placeholder
	require.ErrorIs(t, s.Resolve(ok.ID, "again"), ErrNotPending)
	require.ErrorIs(t, s.Fail(bad.ID, "again"), ErrNotPending)
	require.ErrorIs(t, s.Resolve("missing", "x"), ErrNotFound)

	user := model.NewUserMessage("q")
	require.NoError(t, s.Add(user))
	require.ErrorIs(t, s.Resolve(user.ID, "x"), ErrNotPending)
}

// =============================================================================
// LOADING
// =============================================================================

func TestOpen_LoadsExistingTranscript(t *testing.T) {
	dir := t.TempDir()
	b, err := storage.NewFileBackend(dir)
	require.NoError(t, err)

	s := Open(b, DefaultKey)
	require.NoError(t, s.Add(model.NewUserMessage("first")))
	require.NoError(t, s.Add(model.NewUserMessage("second")))
	want := s.Messages()
	require.NoError(t, s.Close())

	b2, err := storage.NewFileBackend(dir)
	require.NoError(t, err)
	s2 := Open(b2, DefaultKey)
	defer s2.Close()

	require.Equal(t, want, s2.Messages())
}

func TestOpen_MalformedDataYieldsEmpty(t *testing.T) {
	cases := map[string]string{
		"not json":     `{{{`,
		"object":       `{"id":"a"}`,
		"missing id":   `[{"role":"user","content":"x","createdAt":1}]`,
		"unknown role": `[{"id":"a","role":"robot","content":"x","createdAt":1}]`,
		"null":         `null`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			b := storage.NewMemoryBackend()
			require.NoError(t, b.Set(DefaultKey, []byte(raw)))

			s := Open(b, DefaultKey)
			require.Equal(t, 0, s.Len())

			// The store is still usable and overwrites the bad value
			require.NoError(t, s.Add(model.NewUserMessage("fresh")))
			requireLockstep(t, s, b)
		})
	}
}

func TestOpen_EmptyKeyUsesDefault(t *testing.T) {
	s := Open(storage.NewMemoryBackend(), "")
	require.Equal(t, DefaultKey, s.Key())
}

// =============================================================================
// PROPERTIES
// =============================================================================

// TestStore_RandomSequencesStayInLockstep applies random add, replace and
// clear operations and checks storage after each one.
func TestStore_RandomSequencesStayInLockstep(t *testing.T) {
	backends := map[string]func(t *testing.T) storage.Backend{
		"memory": func(t *testing.T) storage.Backend { return storage.NewMemoryBackend() },
		"file": func(t *testing.T) storage.Backend {
			b, err := storage.NewFileBackend(t.TempDir())
			require.NoError(t, err)
			return b
		},
		"sqlite": func(t *testing.T) storage.Backend {
			b, err := storage.NewSQLiteBackend(filepath.Join(t.TempDir(), "pppw.db"))
			require.NoError(t, err)
			return b
		},
	}

	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			b := mk(t)
			s := Open(b, DefaultKey)
			defer s.Close()
			require.NoError(t, s.Flush())

			rng := rand.New(rand.NewSource(7))
			for step := 0; step < 60; step++ {
				msgs := s.Messages()
				switch op := rng.Intn(10); {
				case op < 5:
					require.NoError(t, s.Add(model.NewUserMessage(fmt.Sprintf("m%d", step))))
				case op < 9:
					id := "missing"
					if len(msgs) > 0 && rng.Intn(4) != 0 {
						id = msgs[rng.Intn(len(msgs))].ID
					}
					require.NoError(t, s.ReplaceByID(id, model.ContentPatch(fmt.Sprintf("edit%d", step))))
				default:
					require.NoError(t, s.Clear())
				}
				requireLockstep(t, s, b)
			}
		})
	}
}

// =============================================================================
// FAILURES AND LIFECYCLE
// =============================================================================

type failingBackend struct {
	*storage.MemoryBackend
	fail bool
}

func (f *failingBackend) Set(key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryBackend.Set(key, value)
}

func TestStore_PersistFailureIsReported(t *testing.T) {
	b := &failingBackend{MemoryBackend: storage.NewMemoryBackend()}
	s := Open(b, DefaultKey)

	b.fail = true
	err := s.Add(model.NewUserMessage("lost?"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
	require.Equal(t, 1, s.Len(), "memory keeps the message")

	b.fail = false
	require.NoError(t, s.Add(model.NewUserMessage("next")))
	requireLockstep(t, s, b)
}

func TestStore_CloseRejectsMutations(t *testing.T) {
	s := Open(storage.NewMemoryBackend(), DefaultKey)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close is idempotent")

	require.ErrorIs(t, s.Add(model.NewUserMessage("x")), ErrClosed)
	require.ErrorIs(t, s.Clear(), ErrClosed)
	require.ErrorIs(t, s.ReplaceByID("a", model.ContentPatch("b")), ErrClosed)
}

func TestStore_SubscribeAfterClose(t *testing.T) {
	s := Open(storage.NewMemoryBackend(), DefaultKey)
	require.NoError(t, s.Close())

	select {
	case _, open := <-s.Subscribe():
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscription after Close never closed")
	}
}

func TestStore_SubscribeCoalesces(t *testing.T) {
	s := Open(storage.NewMemoryBackend(), DefaultKey)
	ch := s.Subscribe()

	require.NoError(t, s.Add(model.NewUserMessage("a")))
	require.NoError(t, s.Add(model.NewUserMessage("b")))

	select {
	case <-ch:
	default:
		t.Fatal("expected a change signal")
	}
	select {
	case <-ch:
		t.Fatal("signals should coalesce")
	default:
	}

	require.NoError(t, s.Close())
	_, open := <-ch
	require.False(t, open, "Close closes subscriber channels")
}
