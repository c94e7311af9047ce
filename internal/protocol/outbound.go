// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"encoding/json"

	"github.com/jeranaias/relay-tui/internal/model"
)

// Outbound command names on the chat channel.
const (
	CmdSendMessage   = "send_message"
	CmdEditMessage   = "edit_message"
	CmdDeleteMessage = "delete_message"
	CmdMarkRead      = "mark_read"
)

// Command is a frame the client writes to the chat channel. Every command
// encodes to a JSON object whose "command" key carries CommandName.
type Command interface {
	CommandName() string
}

// =============================================================================
// COMMANDS
// =============================================================================

// SendMessage announces a new message. ParentID is set only when replying.
// MessageID and FileURL are set only when an upload preceded the send, in
// which case MessageID is the server-provisioned identifier.
type SendMessage struct {
	Message   string   `json:"message"`
	ParentID  model.ID `json:"parent_id,omitempty"`
	MessageID model.ID `json:"message_id,omitempty"`
	FileURL   string   `json:"file_url,omitempty"`
}

// EditMessage replaces the text of an existing message.
type EditMessage struct {
	MessageID model.ID `json:"message_id"`
	Message   string   `json:"message"`
}

// DeleteMessage removes a message.
type DeleteMessage struct {
	MessageID model.ID `json:"message_id"`
}

// MarkRead is a read receipt for a message authored by someone else.
type MarkRead struct {
	MessageID model.ID `json:"message_id"`
}

func (SendMessage) CommandName() string   { return CmdSendMessage }
func (EditMessage) CommandName() string   { return CmdEditMessage }
func (DeleteMessage) CommandName() string { return CmdDeleteMessage }
func (MarkRead) CommandName() string      { return CmdMarkRead }

// HasAttachment reports whether the send announces an uploaded file.
func (c SendMessage) HasAttachment() bool {
	return c.FileURL != ""
}

// MarshalJSON implementations prepend the command discriminator.

func (c SendMessage) MarshalJSON() ([]byte, error) {
	type plain SendMessage
	return json.Marshal(struct {
		Command string `json:"command"`
		plain
	}{CmdSendMessage, plain(c)})
}

func (c EditMessage) MarshalJSON() ([]byte, error) {
	type plain EditMessage
	return json.Marshal(struct {
		Command string `json:"command"`
		plain
	}{CmdEditMessage, plain(c)})
}

func (c DeleteMessage) MarshalJSON() ([]byte, error) {
	type plain DeleteMessage
	return json.Marshal(struct {
		Command string `json:"command"`
		plain
	}{CmdDeleteMessage, plain(c)})
}

func (c MarkRead) MarshalJSON() ([]byte, error) {
	type plain MarkRead
	return json.Marshal(struct {
		Command string `json:"command"`
		plain
	}{CmdMarkRead, plain(c)})
}

// Encode serializes a command for the wire.
func Encode(cmd Command) ([]byte, error) {
	if cmd == nil {
		return nil, &Error{Type: ErrTypeMalformed, Message: "nil command"}
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, &Error{Type: ErrTypeMalformed, Message: "failed to encode " + cmd.CommandName(), Cause: err}
	}
	return data, nil
}
