// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

// =============================================================================
// ERROR TYPES
// =============================================================================

// Error represents a failed upload. Uploads are never retried.
type Error struct {
	Type    ErrorType
	Status  int // HTTP status, when the server answered
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

// Is matches upload errors of the same type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Type == e.Type
}

// ErrorType categorizes upload errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNetwork
	ErrTypeRejected
	ErrTypeTooLarge
	ErrTypeInvalidResponse
	ErrTypeEmpty
)

// Sentinel errors for easy checking.
var (
	ErrNetwork         = &Error{Type: ErrTypeNetwork, Message: "upload failed"}
	ErrUploadRejected  = &Error{Type: ErrTypeRejected, Message: "upload rejected"}
	ErrTooLarge        = &Error{Type: ErrTypeTooLarge, Message: "attachment too large"}
	ErrInvalidResponse = &Error{Type: ErrTypeInvalidResponse, Message: "invalid upload response"}
	ErrEmpty           = &Error{Type: ErrTypeEmpty, Message: "attachment is empty"}
)
