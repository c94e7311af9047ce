// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

// =============================================================================
// ERROR TYPES
// =============================================================================

// Error represents a failure of a push channel.
type Error struct {
	Type    ErrorType
	Channel string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Channel != "" {
		msg = e.Channel + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches transport errors of the same type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Type == e.Type
}

// ErrorType categorizes transport errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeClosed
	ErrTypeDial
	ErrTypeQueueFull
	ErrTypeEncode
)

// Sentinel errors for easy checking.
var (
	ErrChannelClosed = &Error{Type: ErrTypeClosed, Message: "channel closed"}
	ErrQueueFull     = &Error{Type: ErrTypeQueueFull, Message: "send queue full"}
)
