// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compose

import (
	"github.com/jeranaias/relay-tui/internal/model"
	"github.com/jeranaias/relay-tui/internal/protocol"
	"github.com/jeranaias/relay-tui/internal/upload"
)

// =============================================================================
// SUBMIT PLAN
// =============================================================================

// PlanKind is the outcome of a submit.
type PlanKind int

const (
	PlanNone    PlanKind = iota // Nothing to send
	PlanCommand                 // Dispatch Command now
	PlanUpload                  // Upload Attachment first, then announce
)

func (k PlanKind) String() string {
	switch k {
	case PlanNone:
		return "none"
	case PlanCommand:
		return "command"
	case PlanUpload:
		return "upload"
	default:
		return "unknown"
	}
}

// Plan describes what a submit should do. Mode and Text are snapshots
// taken at submit time.
type Plan struct {
	Kind       PlanKind
	Command    protocol.Command
	Text       string
	Mode       model.InteractionMode
	Attachment *Staged
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder turns the composer and the interaction mode into outbound
// commands, and resets them after dispatch.
type Builder struct {
	modes    *ModeController
	composer *Composer
}

// NewBuilder creates a builder over modes and composer.
func NewBuilder(modes *ModeController, composer *Composer) *Builder {
	return &Builder{modes: modes, composer: composer}
}

// Submit plans the send of the current draft.
//
// Editing always produces a text-only edit_message; an empty edit is a
// no-op and a staged file is ignored. Otherwise a staged file requires an
// upload before send_message, and plain text produces send_message with
// parent_id when replying.
func (b *Builder) Submit() Plan {
	mode := b.modes.Current()
	text := b.composer.Content()

	if mode.IsEditing() {
		if text == "" {
			return Plan{Kind: PlanNone, Mode: mode}
		}
		return Plan{
			Kind:    PlanCommand,
			Command: protocol.EditMessage{MessageID: mode.Target, Message: text},
			Text:    text,
			Mode:    mode,
		}
	}

	if staged := b.composer.Staged(); staged != nil {
		return Plan{Kind: PlanUpload, Text: text, Mode: mode, Attachment: staged}
	}
	if text == "" {
		return Plan{Kind: PlanNone, Mode: mode}
	}
	return Plan{
		Kind:    PlanCommand,
		Command: protocol.SendMessage{Message: text, ParentID: mode.ParentID()},
		Text:    text,
		Mode:    mode,
	}
}

// Dispatched resets the mode to Idle and clears the composer, including
// the staged file. Call it once an edit or send has been queued.
func (b *Builder) Dispatched() {
	b.modes.Reset()
	b.composer.Clear()
}

// Announce builds the send_message that publishes an uploaded attachment.
// The server-provisioned ID and file URL are threaded through.
func Announce(text string, mode model.InteractionMode, res upload.Result) protocol.SendMessage {
	return protocol.SendMessage{
		Message:   text,
		ParentID:  mode.ParentID(),
		MessageID: res.MessageID,
		FileURL:   res.FileURL,
	}
}

// AttachmentAnnounced applies the post-send rule for an uploaded
// attachment. Only state that still belongs to the announced send is
// reset: the mode if it is unchanged since Submit, the draft if it still
// holds the sent text, and the staged file if it is the one uploaded.
// A reply or edit begun while the upload ran survives.
func (b *Builder) AttachmentAnnounced(mode model.InteractionMode, sentText, fileName string) {
	cur := b.modes.Current()
	if cur.Kind == mode.Kind && cur.Target == mode.Target {
		b.modes.Reset()
	}
	if b.composer.Content() == sentText {
		b.composer.ClearText()
	}
	if staged := b.composer.Staged(); staged != nil && staged.Name() == fileName {
		b.composer.Unstage()
	}
}

// VoiceAnnounced applies the post-send rule for voice messages: a reply
// to the same target ends, while an edit and the draft are left alone.
func (b *Builder) VoiceAnnounced(mode model.InteractionMode) {
	cur := b.modes.Current()
	if mode.IsReplying() && cur.IsReplying() && cur.Target == mode.Target {
		b.modes.Reset()
	}
}

// Delete builds a delete_message. It never touches the composer.
func Delete(id model.ID) protocol.DeleteMessage {
	return protocol.DeleteMessage{MessageID: id}
}

// MarkRead builds a read receipt.
func MarkRead(id model.ID) protocol.MarkRead {
	return protocol.MarkRead{MessageID: id}
}
