// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package projector

import (
	"github.com/rs/zerolog"

	"github.com/jeranaias/relay-tui/internal/model"
	"github.com/jeranaias/relay-tui/internal/protocol"
)

// BadgeProjector applies unread-count updates. The latest update for a
// conversation wins; a zero count removes its badge.
type BadgeProjector struct {
	badges *model.Badges
	log    zerolog.Logger
}

// NewBadgeProjector creates a projector over badges.
func NewBadgeProjector(badges *model.Badges, log zerolog.Logger) *BadgeProjector {
	return &BadgeProjector{badges: badges, log: log}
}

// Badges returns the projected badge set.
func (p *BadgeProjector) Badges() *model.Badges {
	return p.badges
}

// Apply sets the badge of u.ChatID to u.Count. It reports whether the
// visible badge set changed.
func (p *BadgeProjector) Apply(u protocol.UnreadCountUpdate) bool {
	prev, had := p.badges.Count(u.ChatID)
	p.badges.Set(u.ChatID, u.Count)
	now, has := p.badges.Count(u.ChatID)

	changed := had != has || prev != now
	if changed {
		p.log.Debug().Str("chat", u.ChatID.String()).Int("count", u.Count).Msg("badge updated")
	}
	return changed
}
