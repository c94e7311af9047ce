// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "sort"

// Badge is the displayed unread count of one conversation.
type Badge struct {
	ChatID ID
	Count  int
}

// Badges maps conversation IDs to unread counts. A conversation without an
// entry has no visible badge. The zero value is ready to use.
type Badges struct {
	counts map[ID]int
}

// Set records the latest server count for chatID. Counts of zero or below
// clear the badge.
func (b *Badges) Set(chatID ID, count int) {
	if count <= 0 {
		delete(b.counts, chatID)
		return
	}
	if b.counts == nil {
		b.counts = make(map[ID]int)
	}
	b.counts[chatID] = count
}

// Count returns the badge value for chatID and whether a badge is shown.
func (b *Badges) Count(chatID ID) (int, bool) {
	n, ok := b.counts[chatID]
	return n, ok
}

// Total returns the sum of all visible badges.
func (b *Badges) Total() int {
	total := 0
	for _, n := range b.counts {
		total += n
	}
	return total
}

// Len returns the number of visible badges.
func (b *Badges) Len() int {
	return len(b.counts)
}

// List returns the visible badges ordered by chat ID.
func (b *Badges) List() []Badge {
	out := make([]Badge, 0, len(b.counts))
	for id, n := range b.counts {
		out = append(out, Badge{ChatID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, c := out[i].ChatID, out[j].ChatID
		if len(a) != len(c) {
			return len(a) < len(c)
		}
		return a < c
	})
	return out
}
