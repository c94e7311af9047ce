// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package projector

import (
	"github.com/rs/zerolog"

	"github.com/jeranaias/relay-tui/internal/compose"
	"github.com/jeranaias/relay-tui/internal/model"
	"github.com/jeranaias/relay-tui/internal/protocol"
	"github.com/jeranaias/relay-tui/internal/util"
)

// Outcome reports what applying one event did to the view.
type Outcome struct {
	Event  string
	Target model.ID

	// Applied is false when the event was a no-op: unknown ID, duplicate,
	// or a state that was already in effect.
	Applied bool

	Appended *model.Message
	Removed  bool

	// Receipt is set when a read receipt must be dispatched.
	Receipt *protocol.MarkRead
}

// Options configures an EventProjector.
type Options struct {
	// Self is the local username; messages by Self are own messages.
	Self         string
	ExcerptRunes int
	// CatchUp enables receipts for messages that arrived while hidden.
	CatchUp bool
	Logger  zerolog.Logger
}

// EventProjector applies inbound chat events to a conversation view.
// Every operation tolerates IDs that are not in the view.
type EventProjector struct {
	conv         *model.Conversation
	self         string
	excerptRunes int
	catchUp      bool
	visible      bool
	missed       []model.ID
	log          zerolog.Logger
}

// NewEventProjector creates a projector over conv. The view starts visible.
func NewEventProjector(conv *model.Conversation, opts Options) *EventProjector {
	if opts.ExcerptRunes <= 0 {
		opts.ExcerptRunes = compose.DefaultExcerptRunes
	}
	return &EventProjector{
		conv:         conv,
		self:         opts.Self,
		excerptRunes: opts.ExcerptRunes,
		catchUp:      opts.CatchUp,
		visible:      true,
		log:          opts.Logger,
	}
}

// Conversation returns the projected view.
func (p *EventProjector) Conversation() *model.Conversation {
	return p.conv
}

// SetCatchUp toggles catch-up receipts.
func (p *EventProjector) SetCatchUp(on bool) {
	p.catchUp = on
	if !on {
		p.missed = nil
	}
}

// Visible reports whether the conversation is in the foreground.
func (p *EventProjector) Visible() bool {
	return p.visible
}

// SetVisible records a visibility change. When the view becomes visible
// again and catch-up is enabled, it returns receipts for messages from
// others that arrived while it was hidden and are still in the view.
func (p *EventProjector) SetVisible(visible bool) []protocol.MarkRead {
	was := p.visible
	p.visible = visible
	if !visible || was {
		return nil
	}

	missed := p.missed
	p.missed = nil
	if !p.catchUp {
		return nil
	}

	var receipts []protocol.MarkRead
	for _, id := range missed {
		if p.conv.Has(id) {
			receipts = append(receipts, compose.MarkRead(id))
		}
	}
	if len(receipts) > 0 {
		p.log.Debug().Int("count", len(receipts)).Msg("catch-up receipts")
	}
	return receipts
}

// Apply projects one event.
func (p *EventProjector) Apply(evt protocol.Event) Outcome {
	out := Outcome{Event: evt.EventName(), Target: evt.Target()}
	switch e := evt.(type) {
	case protocol.NewMessage:
		p.applyNew(e, &out)
	case protocol.MessageRead:
		p.applyRead(e, &out)
	case protocol.MessageUpdated:
		p.applyUpdated(e, &out)
	case protocol.MessageDeleted:
		p.applyDeleted(e, &out)
	default:
		p.log.Debug().Str("event", out.Event).Msg("unhandled event")
	}
	return out
}

func (p *EventProjector) applyNew(e protocol.NewMessage, out *Outcome) {
	if e.MessageID.IsZero() {
		p.log.Debug().Msg("new_message without id ignored")
		return
	}
	if p.conv.Has(e.MessageID) {
		p.log.Debug().Str("id", e.MessageID.String()).Msg("duplicate new_message ignored")
		return
	}

	msg := p.buildMessage(e)
	if !p.conv.Append(msg) {
		return
	}
	out.Applied = true
	out.Appended = msg

	if msg.Own {
		return
	}
	if p.visible {
		r := compose.MarkRead(msg.ID)
		out.Receipt = &r
		return
	}
	if p.catchUp {
		p.missed = append(p.missed, msg.ID)
	}
}

// buildMessage resolves every field before the message enters the view.
func (p *EventProjector) buildMessage(e protocol.NewMessage) *model.Message {
	msg := &model.Message{
		ID:         e.MessageID,
		Author:     e.User,
		Own:        p.self != "" && e.User == p.self,
		Text:       e.Message,
		Attachment: model.NewAttachment(e.AttachmentURL()),
		Timestamp:  e.Timestamp,
	}
	if e.Parent != nil && !e.Parent.ID.IsZero() {
		msg.Parent = &model.ParentRef{
			ID:      e.Parent.ID,
			Author:  e.Parent.Sender.Username,
			Excerpt: util.TruncateRunesNoEllipsis(util.SingleLine(e.Parent.Text), p.excerptRunes),
		}
	}
	return msg
}

func (p *EventProjector) applyRead(e protocol.MessageRead, out *Outcome) {
	msg, ok := p.conv.Get(e.MessageID)
	if !ok {
		p.log.Debug().Str("id", e.MessageID.String()).Msg("message_read for unknown message")
		return
	}
	if msg.Read {
		return
	}
	msg.Read = true
	out.Applied = true
}

func (p *EventProjector) applyUpdated(e protocol.MessageUpdated, out *Outcome) {
	msg, ok := p.conv.Get(e.MessageID)
	if !ok {
		p.log.Debug().Str("id", e.MessageID.String()).Msg("message_updated for unknown message")
		return
	}
	if msg.Text == e.Message && msg.Edited {
		return
	}
	msg.Text = e.Message
	msg.Edited = true
	out.Applied = true
}

func (p *EventProjector) applyDeleted(e protocol.MessageDeleted, out *Outcome) {
	if !p.conv.Remove(e.MessageID) {
		p.log.Debug().Str("id", e.MessageID.String()).Msg("message_deleted for unknown message")
		return
	}
	out.Applied = true
	out.Removed = true
}
