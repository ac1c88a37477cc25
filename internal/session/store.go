// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the chat transcript and keeps it persisted.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jeranaias/pppw/internal/model"
	"github.com/jeranaias/pppw/internal/storage"
)

// DefaultKey is the storage key holding the serialized transcript.
const DefaultKey = "pppw.chat.v1"

var (
	// ErrNotFound indicates no message has the requested id.
	ErrNotFound = errors.New("message not found")

	// ErrNotPending indicates a resolve or fail on a message that is not a
	// pending placeholder.
	ErrNotPending = errors.New("message is not pending")

	// ErrClosed is returned by mutations after Close.
	ErrClosed = errors.New("session store closed")
)

// =============================================================================
// STORE
// =============================================================================

// Store is the ordered chat transcript. Every mutation rewrites the full list
// under one key before returning, so the persisted value always matches what
// Messages returns.
//
// A failed write is reported to the caller but the in-memory change is kept;
// the next successful write brings storage back in line.
type Store struct {
	mu       sync.Mutex
	backend  storage.Backend
	key      string
	messages []model.Message
	closed   bool

	subsMu     sync.Mutex
	subs       []chan struct{}
	subsClosed bool
}

// Open loads the transcript stored under key. Missing or unreadable data
// yields an empty transcript rather than an error.
func Open(backend storage.Backend, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		backend:  backend,
		key:      key,
		messages: Load(backend, key),
	}
	log.Printf("SESSION_OPEN | key=%s messages=%d", key, len(s.messages))
	return s
}

// Load reads and decodes the transcript under key without creating a Store.
func Load(backend storage.Backend, key string) []model.Message {
	data, ok, err := backend.Get(key)
	if err != nil {
		log.Printf("SESSION_LOAD_ERROR | key=%s error=%v", key, err)
		return []model.Message{}
	}
	if !ok || len(data) == 0 {
		return []model.Message{}
	}
	msgs, err := Decode(data)
	if err != nil {
		log.Printf("SESSION_LOAD_CORRUPT | key=%s error=%v", key, err)
		return []model.Message{}
	}
	return msgs
}

// Decode parses a persisted transcript. Entries that are not usable messages
// make the whole value invalid.
func Decode(data []byte) ([]model.Message, error) {
	var msgs []model.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, err
	}
	if msgs == nil {
		return []model.Message{}, nil
	}
	for i, m := range msgs {
		if m.ID == "" {
			return nil, fmt.Errorf("entry %d: missing id", i)
		}
		if !m.Role.Valid() {
			return nil, fmt.Errorf("entry %d: unknown role %q", i, m.Role)
		}
	}
	return msgs, nil
}

// Key returns the storage key the store persists under.
func (s *Store) Key() string {
	return s.key
}

// Messages returns a copy of the transcript in insertion order.
func (s *Store) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Get returns the message with the given id.
func (s *Store) Get(id string) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.messages[i], true
	}
	return model.Message{}, false
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Add appends m and persists.
func (s *Store) Add(m model.Message) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.messages = append(s.messages, m)
	err := s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return err
}

// ReplaceByID merges patch into the message with the given id and persists.
// An unknown id leaves the transcript unchanged and returns nil.
func (s *Store) ReplaceByID(id string, patch model.Patch) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.messages[i] = s.messages[i].Apply(patch)
	err := s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return err
}

// Resolve settles a pending placeholder with its answer.
func (s *Store) Resolve(id, content string) error {
	return s.settle(id, content, model.StatusResolved)
}

// Fail settles a pending placeholder with an error text.
func (s *Store) Fail(id, content string) error {
	return s.settle(id, content, model.StatusFailed)
}

func (s *Store) settle(id, content string, status model.Status) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !s.messages[i].IsPending() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotPending, id)
	}
	s.messages[i] = s.messages[i].Apply(model.Settle(content, status))
	err := s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return err
}

// Clear empties the transcript and persists the empty list.
func (s *Store) Clear() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.messages = []model.Message{}
	err := s.persistLocked()
	s.mu.Unlock()

	log.Printf("SESSION_CLEAR | key=%s", s.key)
	s.notify()
	return err
}

// Flush rewrites the current transcript to storage.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.persistLocked()
}

// Close flushes, closes the backend and all subscription channels.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	flushErr := s.persistLocked()
	s.closed = true
	closeErr := s.backend.Close()
	s.mu.Unlock()

	s.subsMu.Lock()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.subsClosed = true
	s.subsMu.Unlock()

	return errors.Join(flushErr, closeErr)
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe returns a channel that receives a value after mutations. Signals
// coalesce: a slow reader sees at most one pending value. The channel is
// closed by Close; after Close it is returned already closed.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.subsClosed {
		close(ch)
		return ch
	}
	s.subs = append(s.subs, ch)
	return ch
}

func (s *Store) notify() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// =============================================================================
// INTERNAL
// =============================================================================

func (s *Store) indexOf(id string) int {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the full transcript. Caller holds s.mu.
func (s *Store) persistLocked() error {
	data, err := json.Marshal(s.messages)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := s.backend.Set(s.key, data); err != nil {
		log.Printf("SESSION_PERSIST_ERROR | key=%s messages=%d error=%v", s.key, len(s.messages), err)
		return fmt.Errorf("persist transcript: %w", err)
	}
	return nil
}
