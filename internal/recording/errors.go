// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recording

// Error represents a recording failure.
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

// Is matches recording errors of the same type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Type == e.Type
}

// ErrorType categorizes recording errors.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeDevice
	ErrTypeBusy
	ErrTypeNotRecording
	ErrTypeEmpty
)

var (
	// ErrDeviceUnavailable means the capture device could not be acquired,
	// either because it is missing or because access was denied.
	ErrDeviceUnavailable = &Error{Type: ErrTypeDevice, Message: "audio device unavailable"}
	ErrAlreadyRecording  = &Error{Type: ErrTypeBusy, Message: "already recording"}
	ErrNotRecording      = &Error{Type: ErrTypeNotRecording, Message: "not recording"}
	ErrEmptyRecording    = &Error{Type: ErrTypeEmpty, Message: "recording is empty"}
)
