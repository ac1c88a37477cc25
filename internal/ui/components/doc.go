// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components renders the pieces of the pppw terminal UI: the home
// and about screens, the chat header, message bubbles and the status row.
//
// Components are plain render functions or small stateful renderers; the
// Bubble Tea model in package chat owns all state.
package components
