// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package projector

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/relay-tui/internal/model"
	"github.com/jeranaias/relay-tui/internal/protocol"
)

func newProjector(self string, catchUp bool) *EventProjector {
	return NewEventProjector(model.NewConversation("lobby"), Options{
		Self:         self,
		ExcerptRunes: 50,
		CatchUp:      catchUp,
		Logger:       zerolog.Nop(),
	})
}

func decode(t *testing.T, frame string) protocol.Event {
	t.Helper()
	evt, err := protocol.DecodeEvent([]byte(frame))
	require.NoError(t, err)
	return evt
}

func newMsg(id model.ID, user, text string) protocol.NewMessage {
	return protocol.NewMessage{MessageID: id, User: user, Message: text, Timestamp: "12:00"}
}

// snapshot copies the view so later mutation cannot affect comparisons.
func snapshot(conv *model.Conversation) []model.Message {
	var out []model.Message
	for _, m := range conv.Messages() {
		out = append(out, *m.Clone())
	}
	return out
}

func TestNewMessageReplyScenario(t *testing.T) {
	p := newProjector("carol", false)

	out := p.Apply(decode(t, `{"type":"chat_message","command":"new_message","message_id":101,"user":"bob","message":"hi","timestamp":"10:00","file":null,"parent":{"id":42,"sender":{"username":"alice"},"text":"hello"}}`))
	require.True(t, out.Applied)

	msg, ok := p.Conversation().Get("101")
	require.True(t, ok)
	assert.Equal(t, "bob", msg.Author)
	assert.False(t, msg.Own)
	require.NotNil(t, msg.Parent)
	assert.Equal(t, model.ID("42"), msg.Parent.ID)
	assert.Equal(t, "alice", msg.Parent.Author)
	assert.Equal(t, "hello", msg.Parent.Excerpt)

	require.NotNil(t, out.Receipt, "visible message from others is marked read")
	assert.Equal(t, model.ID("101"), out.Receipt.MessageID)
}

func TestNewMessageOwnNoReceipt(t *testing.T) {
	p := newProjector("bob", false)
	out := p.Apply(newMsg("1", "bob", "mine"))
	assert.True(t, out.Applied)
	assert.Nil(t, out.Receipt)
	assert.True(t, out.Appended.Own)
}

func TestNewMessageAttachmentAndExcerpt(t *testing.T) {
	p := NewEventProjector(model.NewConversation("lobby"), Options{Self: "me", ExcerptRunes: 5})

	e := newMsg("2", "bob", "")
	e.File = &protocol.FileRef{URL: "/media/uploads/voice_message.webm"}
	e.Parent = &protocol.ParentInfo{ID: "1", Sender: protocol.Sender{Username: "al"}, Text: "a long\nparent text"}
	out := p.Apply(e)

	require.NotNil(t, out.Appended.Attachment)
	assert.Equal(t, model.AttachmentAudio, out.Appended.Attachment.Kind)
	assert.Equal(t, "a lon", out.Appended.Parent.Excerpt)
}

func TestNewMessageArrivalOrderAndDuplicates(t *testing.T) {
	p := newProjector("me", false)
	p.Apply(newMsg("5", "a", "first"))
	p.Apply(newMsg("3", "b", "second"))

	out := p.Apply(newMsg("5", "a", "again"))
	assert.False(t, out.Applied)
	assert.Nil(t, out.Receipt, "no second receipt for a duplicate")

	msgs := p.Conversation().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.ID("5"), msgs[0].ID)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, model.ID("3"), msgs[1].ID)

	assert.False(t, p.Apply(newMsg("", "a", "no id")).Applied)
}

func TestReadIdempotent(t *testing.T) {
	p := newProjector("me", false)
	p.Apply(newMsg("1", "me", "hello"))

	first := p.Apply(protocol.MessageRead{MessageID: "1"})
	assert.True(t, first.Applied)
	once := snapshot(p.Conversation())

	for i := 0; i < 3; i++ {
		out := p.Apply(protocol.MessageRead{MessageID: "1"})
		assert.False(t, out.Applied)
	}
	assert.Equal(t, once, snapshot(p.Conversation()))
	msg, _ := p.Conversation().Get("1")
	assert.True(t, msg.Read)
}

func TestEditScenario(t *testing.T) {
	p := newProjector("me", false)
	p.Apply(newMsg("7", "me", "foo"))

	out := p.Apply(decode(t, `{"type":"chat_message","command":"message_updated","message_id":7,"message":"bar"}`))
	assert.True(t, out.Applied)
	once := snapshot(p.Conversation())

	out = p.Apply(decode(t, `{"type":"chat_message","command":"message_updated","message_id":7,"message":"bar"}`))
	assert.False(t, out.Applied)
	assert.Equal(t, once, snapshot(p.Conversation()))

	msg, _ := p.Conversation().Get("7")
	assert.Equal(t, "bar", msg.Text)
	assert.True(t, msg.Edited)
}

func TestDeleted(t *testing.T) {
	p := newProjector("me", false)
	p.Apply(newMsg("1", "a", "x"))
	p.Apply(newMsg("2", "b", "y"))

	out := p.Apply(protocol.MessageDeleted{MessageID: "1"})
	assert.True(t, out.Removed)
	assert.False(t, p.Conversation().Has("1"))

	out = p.Apply(protocol.MessageDeleted{MessageID: "1"})
	assert.False(t, out.Applied)
	assert.Equal(t, 1, p.Conversation().Len())
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	p := newProjector("me", false)
	p.Apply(newMsg("1", "a", "x"))
	before := snapshot(p.Conversation())

	events := []protocol.Event{
		protocol.MessageRead{MessageID: "404"},
		protocol.MessageUpdated{MessageID: "404", Message: "z"},
		protocol.MessageDeleted{MessageID: "404"},
	}
	for _, evt := range events {
		t.Run(evt.EventName(), func(t *testing.T) {
			out := p.Apply(evt)
			assert.False(t, out.Applied)
			assert.Equal(t, model.ID("404"), out.Target)
			assert.Equal(t, before, snapshot(p.Conversation()))
		})
	}
}

func TestHiddenSuppressesReceipts(t *testing.T) {
	p := newProjector("me", false)
	p.SetVisible(false)

	out := p.Apply(newMsg("1", "bob", "while away"))
	assert.True(t, out.Applied)
	assert.Nil(t, out.Receipt)

	assert.Empty(t, p.SetVisible(true), "no catch-up by default")
	assert.True(t, p.Visible())
}

func TestCatchUpReceipts(t *testing.T) {
	p := newProjector("me", true)
	p.SetVisible(false)

	p.Apply(newMsg("1", "bob", "a"))
	p.Apply(newMsg("2", "me", "mine"))
	p.Apply(newMsg("3", "bob", "b"))
	p.Apply(protocol.MessageDeleted{MessageID: "3"})

	receipts := p.SetVisible(true)
	require.Len(t, receipts, 1)
	assert.Equal(t, model.ID("1"), receipts[0].MessageID)

	assert.Empty(t, p.SetVisible(true), "already visible")
}

func TestBadgeProjector(t *testing.T) {
	badges := &model.Badges{}
	p := NewBadgeProjector(badges, zerolog.Nop())

	assert.True(t, p.Apply(protocol.UnreadCountUpdate{ChatID: "7", Count: 3}))
	assert.True(t, p.Apply(protocol.UnreadCountUpdate{ChatID: "7", Count: 0}))
	_, ok := badges.Count("7")
	assert.False(t, ok)

	assert.True(t, p.Apply(protocol.UnreadCountUpdate{ChatID: "8", Count: 5}))
	n, ok := badges.Count("8")
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	assert.False(t, p.Apply(protocol.UnreadCountUpdate{ChatID: "8", Count: 5}))
	assert.False(t, p.Apply(protocol.UnreadCountUpdate{ChatID: "9", Count: 0}))
}

func TestBadgeFromWire(t *testing.T) {
	badges := &model.Badges{}
	p := NewBadgeProjector(badges, zerolog.Nop())

	u, err := protocol.DecodeNotification([]byte(`{"type":"unread_count_update","chat_id":7,"count":3}`))
	require.NoError(t, err)
	p.Apply(u)
	assert.Equal(t, 3, badges.Total())
}
