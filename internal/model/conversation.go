// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// DefaultMaxMessages is the view bound used by NewConversation. Past it
// the oldest messages are pruned; later events naming a pruned ID are
// ignored like any unknown ID.
const DefaultMaxMessages = 1000

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the ordered, ID-indexed message view of a single room.
// Order is arrival order. IDs are unique within the view.
type Conversation struct {
	Room     string
	messages []*Message
	index    map[ID]*Message
	limit    int
}

// NewConversation creates an empty view for room.
func NewConversation(room string) *Conversation {
	return &Conversation{
		Room:     room,
		messages: make([]*Message, 0),
		index:    make(map[ID]*Message),
		limit:    DefaultMaxMessages,
	}
}

// SetLimit changes the view bound and prunes at once if the view is over
// it. A limit of zero or less keeps every message.
func (c *Conversation) SetLimit(n int) {
	c.limit = n
	c.pruneOldMessages()
}

// Limit returns the view bound; zero means unbounded.
func (c *Conversation) Limit() int {
	if c.limit <= 0 {
		return 0
	}
	return c.limit
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds msg to the end of the view. It returns false and leaves the
// view untouched when msg has no ID or the ID is already present.
func (c *Conversation) Append(msg *Message) bool {
	if msg == nil || msg.ID.IsZero() {
		return false
	}
	if _, exists := c.index[msg.ID]; exists {
		return false
	}
	c.messages = append(c.messages, msg)
	c.index[msg.ID] = msg
	c.pruneOldMessages()
	return true
}

// Get returns the message with the given ID.
func (c *Conversation) Get(id ID) (*Message, bool) {
	msg, ok := c.index[id]
	return msg, ok
}

// Has reports whether id is present in the view.
func (c *Conversation) Has(id ID) bool {
	_, ok := c.index[id]
	return ok
}

// Remove deletes the message with the given ID. Removing an unknown ID is a
// no-op and returns false.
func (c *Conversation) Remove(id ID) bool {
	if _, ok := c.index[id]; !ok {
		return false
	}
	delete(c.index, id)
	for i, m := range c.messages {
		if m.ID == id {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)
			break
		}
	}
	return true
}

// IndexOf returns the position of id in arrival order, or -1.
func (c *Conversation) IndexOf(id ID) int {
	if _, ok := c.index[id]; !ok {
		return -1
	}
	for i, m := range c.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// Messages returns the messages in arrival order. The slice is a copy; the
// messages themselves are shared.
func (c *Conversation) Messages() []*Message {
	out := make([]*Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// At returns the message at position i, or nil when out of range.
func (c *Conversation) At(i int) *Message {
	if i < 0 || i >= len(c.messages) {
		return nil
	}
	return c.messages[i]
}

// Last returns the most recent message, or nil if empty.
func (c *Conversation) Last() *Message {
	return c.At(len(c.messages) - 1)
}

// Len returns the number of messages in the view.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// IsEmpty reports whether the view holds no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.messages) == 0
}

// pruneOldMessages drops the oldest messages once the limit is exceeded.
func (c *Conversation) pruneOldMessages() {
	if c.limit <= 0 {
		return
	}
	excess := len(c.messages) - c.limit
	if excess <= 0 {
		return
	}
	for _, m := range c.messages[:excess] {
		delete(c.index, m.ID)
	}
	c.messages = append([]*Message(nil), c.messages[excess:]...)
}
