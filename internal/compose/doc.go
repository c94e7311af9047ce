// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compose implements the local side of sending: the draft, the
// reply/edit interaction mode, and the translation of both into outbound
// chat commands.
//
// # Key Types
//
//   - Composer: draft text and staged attachment
//   - ModeController: Idle, Replying and Editing with mutual exclusion
//   - Builder: plans edit_message, send_message or an upload-then-send
//
// # Usage
//
//	composer := compose.NewComposer()
//	modes := compose.NewModeController(composer, 50)
//	builder := compose.NewBuilder(modes, composer)
//
//	modes.BeginReply("42", "alice", "hello")
//	composer.SetText("hi")
//	plan := builder.Submit() // send_message{message:"hi", parent_id:42}
//	builder.Dispatched()
package compose
