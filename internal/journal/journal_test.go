// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T, retain int) *Journal {
	t.Helper()
	j, err := Open(Options{
		Path:      filepath.Join(t.TempDir(), "sub", "journal.db"),
		SessionID: "sess-1",
		Retain:    retain,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestObserveAndTail(t *testing.T) {
	j := openTemp(t, 0)
	ctx := context.Background()

	j.ObserveFrame("chat", false, []byte(`{"command":"send_message","message":"hi"}`))
	j.ObserveFrame("chat", true, []byte(`{"command":"new_message","message_id":1}`))
	j.ObserveFrame("notifications", true, []byte(`{"type":"unread_count_update","chat_id":7,"count":3}`))
	require.NoError(t, j.Sync(ctx))

	n, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := j.Tail(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "chat", entries[0].Channel)
	assert.Equal(t, "in", entries[0].Direction())
	assert.Equal(t, "notifications", entries[1].Channel)
	assert.Equal(t, "sess-1", entries[1].Session)
	assert.Less(t, entries[0].Seq, entries[1].Seq)
	assert.NotEmpty(t, entries[0].ID)

	none, err := j.Tail(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPruneKeepsMostRecent(t *testing.T) {
	j := openTemp(t, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		j.ObserveFrame("chat", true, []byte(fmt.Sprintf(`{"n":%d}`, i)))
	}
	require.NoError(t, j.Sync(ctx))

	deleted, err := j.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	entries, err := j.Tail(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, `{"n":2}`, entries[0].Payload)
	assert.Equal(t, `{"n":4}`, entries[2].Payload)

	deleted, err = j.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestCloseIsFinal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(Options{Path: path, SessionID: "a"})
	require.NoError(t, err)

	j.ObserveFrame("chat", true, []byte(`{}`))
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	// Dropped silently after close.
	j.ObserveFrame("chat", true, []byte(`{}`))
	assert.ErrorIs(t, j.Sync(context.Background()), ErrClosed)

	// The queued frame was drained before closing.
	reopened, err := Open(Options{Path: path, SessionID: "b"})
	require.NoError(t, err)
	defer reopened.Close()
	n, err := reopened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Options{})
	assert.Error(t, err)
}
