// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"bytes"
	"encoding/json"

	"github.com/jeranaias/relay-tui/internal/model"
)

// Inbound event names on the chat channel.
const (
	EvtNewMessage     = "new_message"
	EvtMessageRead    = "message_read"
	EvtMessageUpdated = "message_updated"
	EvtMessageDeleted = "message_deleted"
)

// Event is a decoded chat-channel frame.
type Event interface {
	EventName() string
	// Target is the message the event refers to.
	Target() model.ID
}

// =============================================================================
// EVENTS
// =============================================================================

// NewMessage announces a message, whether sent locally or by someone else.
type NewMessage struct {
	MessageID model.ID    `json:"message_id"`
	User      string      `json:"user"`
	Message   string      `json:"message"`
	Timestamp string      `json:"timestamp"`
	File      *FileRef    `json:"file"`
	FileURL   string      `json:"file_url"`
	Parent    *ParentInfo `json:"parent"`
}

// FileRef is the attachment object of a new_message event.
type FileRef struct {
	URL string `json:"url"`
}

// ParentInfo is the server's snapshot of the replied-to message.
type ParentInfo struct {
	ID     model.ID `json:"id"`
	Sender Sender   `json:"sender"`
	Text   string   `json:"text"`
}

// Sender identifies a message author. The server emits it either as
// {"username": "..."} or as a bare string.
type Sender struct {
	Username string `json:"username"`
}

// UnmarshalJSON accepts both sender encodings.
func (s *Sender) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Username)
	}
	if bytes.Equal(data, []byte("null")) {
		s.Username = ""
		return nil
	}
	type plain Sender
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Sender(p)
	return nil
}

// AttachmentURL returns the attachment URL from either wire field.
func (e NewMessage) AttachmentURL() string {
	if e.File != nil && e.File.URL != "" {
		return e.File.URL
	}
	return e.FileURL
}

// MessageRead is a read receipt broadcast for a message.
type MessageRead struct {
	MessageID model.ID `json:"message_id"`
}

// MessageUpdated carries the new text of an edited message.
type MessageUpdated struct {
	MessageID model.ID `json:"message_id"`
	Message   string   `json:"message"`
}

// MessageDeleted announces the removal of a message.
type MessageDeleted struct {
	MessageID model.ID `json:"message_id"`
}

func (NewMessage) EventName() string     { return EvtNewMessage }
func (MessageRead) EventName() string    { return EvtMessageRead }
func (MessageUpdated) EventName() string { return EvtMessageUpdated }
func (MessageDeleted) EventName() string { return EvtMessageDeleted }

func (e NewMessage) Target() model.ID     { return e.MessageID }
func (e MessageRead) Target() model.ID    { return e.MessageID }
func (e MessageUpdated) Target() model.ID { return e.MessageID }
func (e MessageDeleted) Target() model.ID { return e.MessageID }

// =============================================================================
// DECODING
// =============================================================================

type envelope struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// DecodeEvent decodes a chat-channel frame. Frames without a command are
// treated as new_message. Unrecognized commands return ErrUnknownEvent.
func DecodeEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &Error{Type: ErrTypeMalformed, Message: "invalid chat frame", Cause: err}
	}

	name := env.Command
	if name == "" {
		name = EvtNewMessage
	}

	var (
		evt Event
		err error
	)
	switch name {
	case EvtNewMessage:
		var e NewMessage
		err = json.Unmarshal(data, &e)
		evt = e
	case EvtMessageRead:
		var e MessageRead
		err = json.Unmarshal(data, &e)
		evt = e
	case EvtMessageUpdated:
		var e MessageUpdated
		err = json.Unmarshal(data, &e)
		evt = e
	case EvtMessageDeleted:
		var e MessageDeleted
		err = json.Unmarshal(data, &e)
		evt = e
	default:
		return nil, &Error{Type: ErrTypeUnknownEvent, Message: "unknown chat command " + name}
	}
	if err != nil {
		return nil, &Error{Type: ErrTypeMalformed, Message: "invalid " + name + " payload", Cause: err}
	}
	return evt, nil
}
