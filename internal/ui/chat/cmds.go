// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/relay-tui/internal/config"
	"github.com/jeranaias/relay-tui/internal/recording"
	"github.com/jeranaias/relay-tui/internal/session"
	"github.com/jeranaias/relay-tui/internal/transport"
)

// deviceTimeout bounds how long acquiring the capture device may block.
const deviceTimeout = 10 * time.Second

// =============================================================================
// LISTENERS
// =============================================================================

// listenEvents waits for the next transport event. Update re-arms it after
// every delivery so events are handled strictly one at a time.
func listenEvents(events <-chan transport.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return channelsDrainedMsg{}
		}
		return ChannelEventMsg{Event: ev}
	}
}

// listenReloads waits for the next config reload.
func listenReloads(reloads <-chan config.Reload) tea.Cmd {
	if reloads == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-reloads
		if !ok {
			return nil
		}
		return ConfigReloadMsg{Reload: r}
	}
}

// =============================================================================
// UPLOAD
// =============================================================================

// uploadCmd runs one upload job off the UI loop. The job is attempted once.
func uploadCmd(job *session.UploadJob) tea.Cmd {
	return func() tea.Msg {
		res, err := job.Run(context.Background())
		return UploadDoneMsg{FlowID: job.Flow.FlowID, Result: res, Err: err}
	}
}

// =============================================================================
// RECORDING
// =============================================================================

// startRecordingCmd acquires the capture device.
func startRecordingCmd(rec *recording.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), deviceTimeout)
		defer cancel()
		if err := rec.Start(ctx); err != nil {
			return RecordingStartedMsg{Err: err}
		}
		return RecordingStartedMsg{Generation: rec.Generation()}
	}
}

// stopRecordingCmd finalizes the recording and returns the artifact.
func stopRecordingCmd(rec *recording.Controller) tea.Cmd {
	return func() tea.Msg {
		art, err := rec.Stop(context.Background())
		return RecordingStoppedMsg{Artifact: art, Err: err}
	}
}

// recordingTick schedules the next elapsed-time refresh.
func recordingTick(gen uint64) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return RecordingTickMsg{Generation: gen}
	})
}

// =============================================================================
// HIGHLIGHT
// =============================================================================

func clearHighlightAfter(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return HighlightClearMsg{Seq: seq}
	})
}
