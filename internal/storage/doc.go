// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local key-value persistence used for chat history.
//
// # Backends
//
//   - FileBackend: one JSON file per key, written atomically (default)
//   - SQLiteBackend: a single kv table in an embedded SQLite database
//   - MemoryBackend: process memory, for tests and throwaway sessions
//
// All backends are synchronous: when Set returns nil the value is durable.
//
// # File Locations
//
//   - ~/.pppw/data/pppw.chat.v1.json (file backend)
//   - ~/.pppw/data/pppw.db (sqlite backend)
//
// # Usage
//
//	b, err := storage.Open("file", dataDir)
//	defer b.Close()
//	err = b.Set("pppw.chat.v1", data)
//
// Watcher follows a file backend key for changes written by other processes:
//
//	w, _ := storage.NewWatcher(fb.Path(key), 0)
//	go w.Run(ctx)
//	for range w.Changes() { ... }
package storage
