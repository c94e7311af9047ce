// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures of the chat view model.
//
// Nothing in this package performs I/O or synchronization. Every value is
// owned by the UI dispatcher and mutated only from it.
//
// # Key Types
//
//   - ID: opaque server identifier, decoded from numbers or strings
//   - Message: one rendered chat message with flags and optional parent
//   - Attachment: uploaded file reference with an inferred kind
//   - Conversation: ordered, ID-indexed message view of a room
//   - Badges: unread counts per conversation
//   - InteractionMode: Idle, Replying or Editing
//   - ConnectionState: Connecting, Open or Closed
//
// # Usage
//
//	conv := model.NewConversation("lobby")
//	conv.Append(&model.Message{ID: "42", Author: "alice", Text: "hi"})
//	if msg, ok := conv.Get("42"); ok {
//	    msg.Edited = true
//	}
package model
