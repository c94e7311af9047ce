// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compose

import (
	"github.com/jeranaias/relay-tui/internal/model"
	"github.com/jeranaias/relay-tui/internal/util"
)

// DefaultExcerptRunes bounds reply excerpts when no limit is configured.
const DefaultExcerptRunes = 50

// ModeController owns the composer's interaction mode. Replying and
// editing exclude each other: entering one discards the other.
type ModeController struct {
	mode         model.InteractionMode
	composer     *Composer
	excerptRunes int
}

// NewModeController creates an idle controller bound to composer.
func NewModeController(composer *Composer, excerptRunes int) *ModeController {
	if excerptRunes <= 0 {
		excerptRunes = DefaultExcerptRunes
	}
	return &ModeController{
		mode:         model.Idle(),
		composer:     composer,
		excerptRunes: excerptRunes,
	}
}

// Current returns a snapshot of the mode.
func (m *ModeController) Current() model.InteractionMode {
	return m.mode
}

// BeginReply targets a message for reply. Any edit in progress is
// discarded but the composer keeps its content.
func (m *ModeController) BeginReply(target model.ID, author, text string) {
	excerpt := util.TruncateRunesNoEllipsis(util.SingleLine(text), m.excerptRunes)
	m.mode = model.Replying(target, author, excerpt)
}

// BeginEdit targets a message for editing and pre-fills the composer with
// its current text. Any reply in progress is discarded.
func (m *ModeController) BeginEdit(target model.ID, original string) {
	m.mode = model.Editing(target, original)
	m.composer.SetText(original)
}

// Cancel returns to Idle. The composer is cleared only when leaving
// Editing. It reports whether a mode was active.
func (m *ModeController) Cancel() bool {
	switch m.mode.Kind {
	case model.ModeIdle:
		return false
	case model.ModeEditing:
		m.composer.ClearText()
	}
	m.mode = model.Idle()
	return true
}

// Reset returns to Idle without touching the composer.
func (m *ModeController) Reset() {
	m.mode = model.Idle()
}

// Forget drops the mode if it targets id, e.g. after that message was
// deleted. An edit target being forgotten clears the composer like Cancel.
func (m *ModeController) Forget(id model.ID) bool {
	if m.mode.IsIdle() || m.mode.Target != id {
		return false
	}
	return m.Cancel()
}
