// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the relay client.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateRunesNoEllipsis: silent truncation, used for reply excerpts
//   - TruncateWidth: column-aware truncation for the terminal
//   - SingleLine: whitespace collapsing for one-line previews
//   - FormatClock: MM:SS rendering for the recording timer
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	excerpt := util.TruncateRunesNoEllipsis(parent.Text, 50)
//	label := util.FormatClock(time.Since(started))
//	err := util.AtomicWriteFile(path, data, 0600)
package util
