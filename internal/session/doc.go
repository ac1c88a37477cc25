// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the chat transcript and keeps it persisted.
//
// A Store is constructed explicitly with the backend it writes to and is
// closed by its owner; there is no package-level instance. Each mutation
// (Add, ReplaceByID, Resolve, Fail, Clear) serializes the whole message list
// as one JSON array and writes it under a single key before returning.
//
// # Usage
//
//	backend, _ := storage.Open("file", dir)
//	store := session.Open(backend, session.DefaultKey)
//	defer store.Close()
//
//	q := model.NewUserMessage("What is a string bet?")
//	p := model.NewPlaceholder()
//	store.Add(q)
//	store.Add(p)
//	store.Resolve(p.ID, answer)
package session
