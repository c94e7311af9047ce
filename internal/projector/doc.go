// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projector turns inbound channel events into view mutations.
//
// Projections are keyed by server-assigned IDs and are idempotent, so the
// arrival order of our own confirmations relative to other participants'
// events does not matter. Events for IDs that are not in the view are
// no-ops.
//
// # Key Types
//
//   - EventProjector: new_message, message_read, message_updated, message_deleted
//   - BadgeProjector: unread_count_update from the notification channel
//   - Outcome: what an event changed, plus any receipt to send
package projector
