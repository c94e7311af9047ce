// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/relay-tui/internal/model"
)

// =============================================================================
// TWO-PHASE SEND
// =============================================================================

// Phase is the progress of a send that needs an upload first.
type Phase int

const (
	PhaseUploading Phase = iota // Upload in flight
	PhaseUploaded               // Server provisioned an ID; announce pending
	PhaseAnnounced              // send_message queued on the chat channel
	PhaseFailed                 // Upload failed; nothing was announced
	PhaseAbandoned              // User cancelled before the upload finished
)

func (p Phase) String() string {
	switch p {
	case PhaseUploading:
		return "uploading"
	case PhaseUploaded:
		return "uploaded"
	case PhaseAnnounced:
		return "announced"
	case PhaseFailed:
		return "failed"
	case PhaseAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseAnnounced || p == PhaseFailed || p == PhaseAbandoned
}

// Purpose distinguishes composer attachments from voice messages.
type Purpose int

const (
	PurposeAttachment Purpose = iota
	PurposeVoice
)

func (p Purpose) String() string {
	if p == PurposeVoice {
		return "voice"
	}
	return "attachment"
}

// PendingSend is one upload-then-announce flow. The interaction mode is
// captured when the flow starts so the announcement does not depend on
// what the user does while the upload is running.
type PendingSend struct {
	FlowID   string
	Purpose  Purpose
	Room     string
	Text     string
	Mode     model.InteractionMode
	FileName string
	Started  time.Time

	Phase  Phase
	Result Result
	Err    error
}

// ParentID returns the reply target to announce, if the flow began as a reply.
func (p *PendingSend) ParentID() model.ID {
	return p.Mode.ParentID()
}

// Tracker keeps the pending sends of one session. It is owned by the UI
// goroutine and is not safe for concurrent use.
type Tracker struct {
	flows map[string]*PendingSend
	log   zerolog.Logger
	now   func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker(log zerolog.Logger) *Tracker {
	return &Tracker{
		flows: make(map[string]*PendingSend),
		log:   log,
		now:   time.Now,
	}
}

// Begin records a new flow in PhaseUploading.
func (t *Tracker) Begin(purpose Purpose, room, text string, mode model.InteractionMode, fileName string) *PendingSend {
	p := &PendingSend{
		FlowID:   uuid.NewString(),
		Purpose:  purpose,
		Room:     room,
		Text:     text,
		Mode:     mode,
		FileName: fileName,
		Started:  t.now(),
		Phase:    PhaseUploading,
	}
	t.flows[p.FlowID] = p
	t.log.Debug().Str("flow", p.FlowID).Str("purpose", purpose.String()).Str("file", fileName).Msg("upload started")
	return p
}

// Get returns the flow with id.
func (t *Tracker) Get(flowID string) (*PendingSend, bool) {
	p, ok := t.flows[flowID]
	return p, ok
}

// Complete records the outcome of an upload. It returns the flow and true
// only when the caller should announce the message. Results for abandoned
// or unknown flows are discarded.
func (t *Tracker) Complete(flowID string, res Result, err error) (*PendingSend, bool) {
	p, ok := t.flows[flowID]
	if !ok {
		t.log.Warn().Str("flow", flowID).Msg("upload result for unknown flow discarded")
		return nil, false
	}
	if p.Phase == PhaseAbandoned {
		delete(t.flows, flowID)
		// The server already stored the file and provisioned an ID.
		t.log.Info().
			Str("flow", flowID).
			Str("message_id", res.MessageID.String()).
			Str("file_url", res.FileURL).
			Msg("orphaned upload after cancel")
		return p, false
	}
	if p.Phase != PhaseUploading {
		return p, false
	}
	if err != nil {
		p.Phase = PhaseFailed
		p.Err = err
		delete(t.flows, flowID)
		t.log.Warn().Err(err).Str("flow", flowID).Msg("upload failed, nothing announced")
		return p, false
	}
	p.Phase = PhaseUploaded
	p.Result = res
	return p, true
}

// MarkAnnounced finishes a flow once its send_message has been queued.
func (t *Tracker) MarkAnnounced(flowID string) {
	p, ok := t.flows[flowID]
	if !ok {
		return
	}
	p.Phase = PhaseAnnounced
	delete(t.flows, flowID)
	t.log.Debug().
		Str("flow", flowID).
		Str("message_id", p.Result.MessageID.String()).
		Dur("elapsed", t.now().Sub(p.Started)).
		Msg("upload announced")
}

// Drop ends an uploaded flow whose announcement could not be queued. The
// server keeps the file; the flow is logged as orphaned.
func (t *Tracker) Drop(flowID string, err error) {
	p, ok := t.flows[flowID]
	if !ok {
		return
	}
	p.Phase = PhaseFailed
	p.Err = err
	delete(t.flows, flowID)
	t.log.Warn().
		Err(err).
		Str("flow", flowID).
		Str("message_id", p.Result.MessageID.String()).
		Msg("orphaned upload, announcement not sent")
}

// Abandon marks an in-flight flow as cancelled. A later result is dropped.
func (t *Tracker) Abandon(flowID string) bool {
	p, ok := t.flows[flowID]
	if !ok || p.Phase != PhaseUploading {
		return false
	}
	p.Phase = PhaseAbandoned
	return true
}

// AbandonPurpose abandons every in-flight flow of the given purpose and
// returns how many were affected.
func (t *Tracker) AbandonPurpose(purpose Purpose) int {
	n := 0
	for id, p := range t.flows {
		if p.Purpose == purpose && t.Abandon(id) {
			n++
		}
	}
	return n
}

// InFlight returns the flows still uploading, oldest first.
func (t *Tracker) InFlight() []*PendingSend {
	out := make([]*PendingSend, 0, len(t.flows))
	for _, p := range t.flows {
		if p.Phase == PhaseUploading {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}

// Busy reports whether a flow of the given purpose is uploading.
func (t *Tracker) Busy(purpose Purpose) bool {
	for _, p := range t.flows {
		if p.Purpose == purpose && p.Phase == PhaseUploading {
			return true
		}
	}
	return false
}

// Len returns the number of tracked flows, including abandoned ones still
// awaiting their result.
func (t *Tracker) Len() int {
	return len(t.flows)
}
