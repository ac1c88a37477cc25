// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the chat message types shared by the session store,
// the pipelines and the front ends.
//
// # Key Types
//
//   - Message: one transcript entry with id, role, content and createdAt (epoch ms)
//   - Role: user or assistant
//   - Status: lifecycle of an assistant placeholder (pending, resolved, failed)
//   - Patch: partial update applied by id through the session store
//
// # Usage
//
//	q := model.NewUserMessage("What is a string bet?")
//	p := model.NewPlaceholder() // "Thinking…", pending
//	done := p.Apply(model.Settle("A string bet is...", model.StatusResolved))
package model
