// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across pppw.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file replacement with fsync
//
// Text:
//   - TruncateRunes, TruncateWidth: UTF-8 and column aware truncation
//   - Preview: single-line, width-bounded excerpt for history listings
//   - NormalizeText: trim plus NFC normalization for transcripts
//
// # Usage
//
//	err := util.AtomicWriteFile(path, data, 0600)
//	line := util.Preview(msg.Content, 60)
package util
