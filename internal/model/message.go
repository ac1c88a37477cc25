// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the chat message types shared by the session store,
// the pipelines and the front ends.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Pocket Poker Pal"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status tracks the lifecycle of an assistant placeholder. Messages that were
// never placeholders carry StatusNone.
type Status string

const (
	StatusNone     Status = ""
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusFailed   Status = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusFailed
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// PlaceholderText is the content of an assistant message awaiting its answer.
const PlaceholderText = "Thinking…"

// Message is a single entry in the chat transcript.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"` // epoch milliseconds

	Status Status `json:"status,omitempty"`
}

// NewMessage creates a message with a fresh ID and the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		CreatedAt: NowMillis(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewPlaceholder creates a pending assistant message showing PlaceholderText.
func NewPlaceholder() Message {
	m := NewMessage(RoleAssistant, PlaceholderText)
	m.Status = StatusPending
	return m
}

// IsPending reports whether the message is an unresolved placeholder.
func (m Message) IsPending() bool {
	return m.Status == StatusPending
}

// Time returns CreatedAt as a time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.CreatedAt)
}

// Apply returns a copy of m with the non-nil fields of p merged in. ID is
// never changed.
func (m Message) Apply(p Patch) Message {
	if p.Role != nil {
		m.Role = *p.Role
	}
	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.CreatedAt != nil {
		m.CreatedAt = *p.CreatedAt
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	return m
}

// =============================================================================
// PATCH TYPE
// =============================================================================

// Patch is a partial update of a Message. Nil fields are left untouched.
type Patch struct {
	Role      *Role
	Content   *string
	CreatedAt *int64
	Status    *Status
}

// ContentPatch builds a patch replacing only the content.
func ContentPatch(content string) Patch {
	return Patch{Content: &content}
}

// Settle builds a patch that sets the final content and status of a placeholder.
func Settle(content string, status Status) Patch {
	return Patch{Content: &content, Status: &status}
}

// =============================================================================
// HELPERS
// =============================================================================

// NewID returns a new unique message identifier.
func NewID() string {
	return uuid.NewString()
}

// NowMillis returns the current time in epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
