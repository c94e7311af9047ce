// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

// =============================================================================
// ERROR TYPES
// =============================================================================

// Error represents a frame that could not be decoded or dispatched.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any protocol error of the same type, so wrapped errors compare
// equal to the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Type == e.Type
}

// ErrorType categorizes protocol errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeMalformed
	ErrTypeUnknownEvent
)

// Sentinel errors for easy checking.
var (
	ErrMalformedFrame = &Error{Type: ErrTypeMalformed, Message: "malformed frame"}
	ErrUnknownEvent   = &Error{Type: ErrTypeUnknownEvent, Message: "unknown event"}
)
