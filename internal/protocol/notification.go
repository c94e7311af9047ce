// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"encoding/json"

	"github.com/jeranaias/relay-tui/internal/model"
)

// NotifyUnreadCount is the only frame type on the notification channel.
const NotifyUnreadCount = "unread_count_update"

// UnreadCountUpdate is the latest unread count for one conversation.
type UnreadCountUpdate struct {
	ChatID model.ID `json:"chat_id"`
	Count  int      `json:"count"`
}

// DecodeNotification decodes a notification-channel frame, discriminated by
// its "type" key.
func DecodeNotification(data []byte) (UnreadCountUpdate, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return UnreadCountUpdate{}, &Error{Type: ErrTypeMalformed, Message: "invalid notification frame", Cause: err}
	}
	if env.Type != NotifyUnreadCount {
		return UnreadCountUpdate{}, &Error{Type: ErrTypeUnknownEvent, Message: "unknown notification type " + env.Type}
	}

	var u UnreadCountUpdate
	if err := json.Unmarshal(data, &u); err != nil {
		return UnreadCountUpdate{}, &Error{Type: ErrTypeMalformed, Message: "invalid unread_count_update payload", Cause: err}
	}
	if u.ChatID.IsZero() {
		return UnreadCountUpdate{}, &Error{Type: ErrTypeMalformed, Message: "unread_count_update without chat_id"}
	}
	return u, nil
}
