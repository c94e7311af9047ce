// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol defines the JSON frames exchanged over the chat and
// notification channels.
//
// Chat frames are discriminated by their "command" key, notification frames
// by their "type" key. Outbound commands always carry "command".
//
// # Key Types
//
//   - Command: SendMessage, EditMessage, DeleteMessage, MarkRead
//   - Event: NewMessage, MessageRead, MessageUpdated, MessageDeleted
//   - UnreadCountUpdate: notification-channel badge count
//
// # Usage
//
//	data, err := protocol.Encode(protocol.SendMessage{Message: "hi", ParentID: "42"})
//	// {"command":"send_message","message":"hi","parent_id":42}
//
//	evt, err := protocol.DecodeEvent(frame)
//	if errors.Is(err, protocol.ErrUnknownEvent) {
//	    // ignore
//	}
package protocol
