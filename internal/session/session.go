// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/relay-tui/internal/compose"
	"github.com/jeranaias/relay-tui/internal/model"
	"github.com/jeranaias/relay-tui/internal/projector"
	"github.com/jeranaias/relay-tui/internal/protocol"
	"github.com/jeranaias/relay-tui/internal/recording"
	"github.com/jeranaias/relay-tui/internal/upload"
)

// Channel names used for connection state.
const (
	ChatChannel         = "chat"
	NotificationChannel = "notifications"
)

// ErrNoChannel is returned when no chat channel is attached.
var ErrNoChannel = errors.New("chat channel not attached")

// Sender queues a command on the chat channel.
type Sender interface {
	Send(cmd protocol.Command) error
}

// =============================================================================
// SESSION STATE
// =============================================================================

// Session owns the whole client view model for one room: the message view,
// the badges, the composer and its interaction mode, the recorder and the
// pending two-phase sends. It is driven from a single goroutine; the only
// part used concurrently is the recorder, which locks itself.
type Session struct {
	id        string
	room      string
	self      string
	startTime time.Time

	lastActivity time.Time

	Conversation *model.Conversation
	Badges       *model.Badges

	Composer *compose.Composer
	Modes    *compose.ModeController
	Builder  *compose.Builder

	Events    *projector.EventProjector
	BadgeProj *projector.BadgeProjector
	Recorder  *recording.Controller
	Pending   *upload.Tracker

	uploader  upload.Uploader
	maxUpload int64
	chat      Sender
	channels  map[string]model.ConnectionState
	log       zerolog.Logger
	now       func() time.Time
}

// Config holds what a session needs from the outside.
type Config struct {
	// ID names the session in logs and the journal; empty generates one.
	ID   string
	Room string
	// Self is the local username.
	Self         string
	ExcerptRunes int
	CatchUp      bool

	Recorder *recording.Controller
	Uploader upload.Uploader
	// MaxUploadBytes bounds staged files; 0 means unlimited.
	MaxUploadBytes int64
	// MaxMessages bounds the message view. Zero uses
	// model.DefaultMaxMessages; a negative value keeps every message.
	MaxMessages int

	Logger zerolog.Logger
}

// New creates a session. The chat channel is attached later with SetChat.
func New(cfg Config) *Session {
	now := time.Now()
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	log := cfg.Logger.With().Str("room", cfg.Room).Logger()

	conv := model.NewConversation(cfg.Room)
	if cfg.MaxMessages != 0 {
		conv.SetLimit(cfg.MaxMessages)
	}
	badges := &model.Badges{}
	composer := compose.NewComposer()
	modes := compose.NewModeController(composer, cfg.ExcerptRunes)

	return &Session{
		id:           id,
		room:         cfg.Room,
		self:         cfg.Self,
		startTime:    now,
		lastActivity: now,
		Conversation: conv,
		Badges:       badges,
		Composer:     composer,
		Modes:        modes,
		Builder:      compose.NewBuilder(modes, composer),
		Events: projector.NewEventProjector(conv, projector.Options{
			Self:         cfg.Self,
			ExcerptRunes: cfg.ExcerptRunes,
			CatchUp:      cfg.CatchUp,
			Logger:       log.With().Str("component", "projector").Logger(),
		}),
		BadgeProj: projector.NewBadgeProjector(badges, log.With().Str("component", "badges").Logger()),
		Recorder:  cfg.Recorder,
		Pending:   upload.NewTracker(log.With().Str("component", "upload").Logger()),
		uploader:  cfg.Uploader,
		maxUpload: cfg.MaxUploadBytes,
		channels: map[string]model.ConnectionState{
			ChatChannel:         model.StateConnecting,
			NotificationChannel: model.StateConnecting,
		},
		log: log,
		now: time.Now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Room returns the room this session shows.
func (s *Session) Room() string { return s.room }

// Self returns the local username.
func (s *Session) Self() string { return s.self }

// StartTime returns when the session was created.
func (s *Session) StartTime() time.Time { return s.startTime }

// SetChat attaches the chat channel used for outbound commands.
func (s *Session) SetChat(chat Sender) {
	s.chat = chat
}

// RecordActivity marks user activity.
func (s *Session) RecordActivity() {
	s.lastActivity = s.now()
}

// SetChannelState records the lifecycle state of a channel.
func (s *Session) SetChannelState(name string, state model.ConnectionState) {
	s.channels[name] = state
}

// ChannelState returns the last known state of a channel.
func (s *Session) ChannelState(name string) model.ConnectionState {
	st, ok := s.channels[name]
	if !ok {
		return model.StateClosed
	}
	return st
}

// send queues cmd on the chat channel.
func (s *Session) send(cmd protocol.Command) error {
	if s.chat == nil {
		return ErrNoChannel
	}
	if err := s.chat.Send(cmd); err != nil {
		s.log.Warn().Err(err).Str("command", cmd.CommandName()).Msg("command dropped")
		return err
	}
	return nil
}

// =============================================================================
// INBOUND
// =============================================================================

// HandleChatFrame decodes and projects one chat frame, sending the read
// receipt it calls for.
func (s *Session) HandleChatFrame(data []byte) (projector.Outcome, error) {
	evt, err := protocol.DecodeEvent(data)
	if err != nil {
		s.log.Debug().Err(err).Msg("chat frame ignored")
		return projector.Outcome{}, err
	}

	out := s.Events.Apply(evt)
	if out.Removed {
		s.Modes.Forget(out.Target)
	}
	if out.Receipt != nil {
		// A receipt that cannot be sent is not retried.
		_ = s.send(*out.Receipt)
	}
	return out, nil
}

// HandleNotificationFrame decodes and projects one notification frame. It
// reports whether the badges changed.
func (s *Session) HandleNotificationFrame(data []byte) (bool, error) {
	u, err := protocol.DecodeNotification(data)
	if err != nil {
		s.log.Debug().Err(err).Msg("notification frame ignored")
		return false, err
	}
	return s.BadgeProj.Apply(u), nil
}

// SetVisible records a focus change and sends any catch-up receipts.
func (s *Session) SetVisible(visible bool) int {
	receipts := s.Events.SetVisible(visible)
	sent := 0
	for _, r := range receipts {
		if s.send(r) == nil {
			sent++
		}
	}
	return sent
}

// =============================================================================
// OUTBOUND
// =============================================================================

// UploadJob is the blocking half of a two-phase send. Run it off the UI
// loop and hand its result to CompleteUpload.
type UploadJob struct {
	Flow     *upload.PendingSend
	load     func() (upload.Attachment, error)
	uploader upload.Uploader
}

// Run loads the attachment and uploads it once.
func (j *UploadJob) Run(ctx context.Context) (upload.Result, error) {
	att, err := j.load()
	if err != nil {
		return upload.Result{}, err
	}
	return j.uploader.Upload(ctx, j.Flow.Room, j.Flow.Text, att)
}

// Submit sends the composer content according to the interaction mode.
// Plain sends and edits are queued at once; a staged file returns an
// UploadJob and nothing is announced until CompleteUpload. On a send
// error the composer and mode are left as they were.
func (s *Session) Submit() (compose.Plan, *UploadJob, error) {
	plan := s.Builder.Submit()
	switch plan.Kind {
	case compose.PlanCommand:
		if err := s.send(plan.Command); err != nil {
			return plan, nil, err
		}
		s.Builder.Dispatched()
		return plan, nil, nil

	case compose.PlanUpload:
		if s.uploader == nil {
			return plan, nil, fmt.Errorf("uploads are not configured")
		}
		if s.Pending.Busy(upload.PurposeAttachment) {
			return plan, nil, fmt.Errorf("an upload is already in progress")
		}
		staged := plan.Attachment
		flow := s.Pending.Begin(upload.PurposeAttachment, s.room, plan.Text, plan.Mode, staged.Name())
		limit := s.maxUpload
		return plan, &UploadJob{
			Flow:     flow,
			load:     func() (upload.Attachment, error) { return upload.AttachmentFromFile(staged.Path, limit) },
			uploader: s.uploader,
		}, nil
	}
	return plan, nil, nil
}

// SubmitVoice starts the two-phase send of a finished recording. The
// message text is empty and the reply target is the one active now.
func (s *Session) SubmitVoice(art recording.Artifact) (*UploadJob, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("uploads are not configured")
	}
	flow := s.Pending.Begin(upload.PurposeVoice, s.room, "", s.Modes.Current(), art.FileName)
	att := upload.Attachment{FileName: art.FileName, ContentType: art.MediaType, Data: art.Data}
	return &UploadJob{
		Flow:     flow,
		load:     func() (upload.Attachment, error) { return att, nil },
		uploader: s.uploader,
	}, nil
}

// CompleteUpload finishes a two-phase send. On success the send_message is
// announced with the provisioned ID; on failure nothing is sent and the
// composer is untouched. It reports whether a message was announced.
func (s *Session) CompleteUpload(flowID string, res upload.Result, uploadErr error) (bool, error) {
	flow, announce := s.Pending.Complete(flowID, res, uploadErr)
	if !announce {
		if flow != nil && flow.Phase == upload.PhaseFailed {
			return false, flow.Err
		}
		return false, nil
	}

	cmd := compose.Announce(flow.Text, flow.Mode, flow.Result)
	if err := s.send(cmd); err != nil {
		s.Pending.Drop(flowID, err)
		return false, err
	}
	s.Pending.MarkAnnounced(flowID)

	switch flow.Purpose {
	case upload.PurposeVoice:
		s.Builder.VoiceAnnounced(flow.Mode)
	default:
		s.Builder.AttachmentAnnounced(flow.Mode, flow.Text, flow.FileName)
	}
	return true, nil
}

// CancelUpload abandons the in-flight attachment upload, if any. Its
// result will be discarded when it arrives.
func (s *Session) CancelUpload() bool {
	return s.Pending.AbandonPurpose(upload.PurposeAttachment) > 0
}

// Delete sends delete_message for id. The caller confirms with the user
// first. Composer state is not touched.
func (s *Session) Delete(id model.ID) error {
	return s.send(compose.Delete(id))
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status is a snapshot for the status bar.
type Status struct {
	SessionID     string
	Room          string
	Duration      time.Duration
	IdleTime      time.Duration
	Chat          model.ConnectionState
	Notifications model.ConnectionState
	Messages      int
	Unread        int
	Uploading     int
}

// GetStatus returns the current session status.
func (s *Session) GetStatus() Status {
	now := s.now()
	return Status{
		SessionID:     s.id,
		Room:          s.room,
		Duration:      now.Sub(s.startTime),
		IdleTime:      now.Sub(s.lastActivity),
		Chat:          s.ChannelState(ChatChannel),
		Notifications: s.ChannelState(NotificationChannel),
		Messages:      s.Conversation.Len(),
		Unread:        s.Badges.Total(),
		Uploading:     len(s.Pending.InFlight()),
	}
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		if secs == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
