// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/relay-tui/internal/config"
	"github.com/jeranaias/relay-tui/internal/recording"
	"github.com/jeranaias/relay-tui/internal/transport"
	"github.com/jeranaias/relay-tui/internal/upload"
)

// =============================================================================
// CHANNEL MESSAGES
// =============================================================================

// ChannelEventMsg wraps one event from the transport manager.
type ChannelEventMsg struct {
	Event transport.Event
}

// channelsDrainedMsg is delivered once the event stream is closed.
type channelsDrainedMsg struct{}

// ConfigReloadMsg carries a hot-reloaded config, or the error that stopped
// the reload.
type ConfigReloadMsg struct {
	Reload config.Reload
}

// =============================================================================
// UPLOAD MESSAGES
// =============================================================================

// UploadDoneMsg is the outcome of one out-of-band upload.
type UploadDoneMsg struct {
	FlowID string
	Result upload.Result
	Err    error
}

// =============================================================================
// RECORDING MESSAGES
// =============================================================================

// RecordingStartedMsg reports the outcome of device acquisition.
type RecordingStartedMsg struct {
	Generation uint64
	Err        error
}

// RecordingTickMsg drives the elapsed-time readout. Ticks from an earlier
// generation are dropped.
type RecordingTickMsg struct {
	Generation uint64
}

// RecordingStoppedMsg carries the finalized artifact.
type RecordingStoppedMsg struct {
	Artifact recording.Artifact
	Err      error
}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// HighlightClearMsg ends a jump-to-parent highlight. Seq guards against
// clearing a newer highlight.
type HighlightClearMsg struct {
	Seq int
}

// NoticeLevel is the severity of a transient notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

// notice is a one-line message shown above the composer until the next key.
type notice struct {
	Level NoticeLevel
	Text  string
}
