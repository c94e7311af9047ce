// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// CONNECTION STATE
// =============================================================================

// ConnectionState is the lifecycle of one push channel.
type ConnectionState int

const (
	StateConnecting ConnectionState = iota
	StateOpen
	StateClosed
)

// String returns the string representation of the state.
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// =============================================================================
// INTERACTION MODE
// =============================================================================

// ModeKind identifies which targeted action the composer is in.
type ModeKind int

const (
	ModeIdle ModeKind = iota
	ModeReplying
	ModeEditing
)

// String returns the string representation of the mode kind.
func (k ModeKind) String() string {
	switch k {
	case ModeIdle:
		return "idle"
	case ModeReplying:
		return "replying"
	case ModeEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// InteractionMode is the composer's current targeting. At most one of
// replying and editing is active; Target is zero when Idle.
type InteractionMode struct {
	Kind ModeKind

	// Target is the message being replied to or edited.
	Target ID

	// Snapshot of the reply target, for the preview bar.
	TargetAuthor  string
	TargetExcerpt string

	// OriginalText is the edited message's text when editing began.
	OriginalText string
}

// Idle returns the idle mode.
func Idle() InteractionMode {
	return InteractionMode{Kind: ModeIdle}
}

// Replying returns a reply mode targeting the given message.
func Replying(target ID, author, excerpt string) InteractionMode {
	return InteractionMode{Kind: ModeReplying, Target: target, TargetAuthor: author, TargetExcerpt: excerpt}
}

// Editing returns an edit mode targeting the given message.
func Editing(target ID, original string) InteractionMode {
	return InteractionMode{Kind: ModeEditing, Target: target, OriginalText: original}
}

// IsIdle reports whether no targeted action is active.
func (m InteractionMode) IsIdle() bool { return m.Kind == ModeIdle }

// IsReplying reports whether the composer is replying.
func (m InteractionMode) IsReplying() bool { return m.Kind == ModeReplying }

// IsEditing reports whether the composer is editing.
func (m InteractionMode) IsEditing() bool { return m.Kind == ModeEditing }

// ParentID returns the reply target, or the zero ID when not replying.
func (m InteractionMode) ParentID() ID {
	if m.Kind == ModeReplying {
		return m.Target
	}
	return ""
}
