// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrClosed        = errors.New("journal closed")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// ENTRY
// =============================================================================

// Entry is one recorded frame.
type Entry struct {
	Seq     int64
	ID      string
	Session string
	Channel string
	Inbound bool
	At      time.Time
	Payload string
}

// Direction returns "in" for received frames and "out" for sent ones.
func (e Entry) Direction() string {
	if e.Inbound {
		return "in"
	}
	return "out"
}

// =============================================================================
// JOURNAL
// =============================================================================

// Options configures a Journal.
type Options struct {
	Path      string
	SessionID string
	// Retain is the number of most recent frames kept; 0 keeps everything.
	Retain    int
	QueueSize int
	Logger    zerolog.Logger
}

// Journal records websocket frames to SQLite. Frames are queued and written
// by a single goroutine so observers never block the transport.
type Journal struct {
	db      *sql.DB
	opts    Options
	log     zerolog.Logger
	queue   chan request
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	written int
}

type request struct {
	entry *Entry
	sync  chan struct{}
}

// pruneEvery is how many inserts pass between retention sweeps.
const pruneEvery = 500

// Open opens or creates the journal at opts.Path.
func Open(opts Options) (*Journal, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("journal path is empty")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 512
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	j := &Journal{
		db:    db,
		opts:  opts,
		log:   opts.Logger,
		queue: make(chan request, opts.QueueSize),
		done:  make(chan struct{}),
	}
	go j.writer()
	return j, nil
}

// ObserveFrame queues a frame for writing. It never blocks; frames are
// dropped when the queue is full or the journal is closed.
func (j *Journal) ObserveFrame(channel string, inbound bool, data []byte) {
	entry := &Entry{
		ID:      uuid.NewString(),
		Session: j.opts.SessionID,
		Channel: channel,
		Inbound: inbound,
		At:      time.Now(),
		Payload: string(data),
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return
	}
	select {
	case j.queue <- request{entry: entry}:
	default:
		j.log.Warn().Str("channel", channel).Msg("journal queue full, frame dropped")
	}
}

// Sync waits until every frame queued so far has been written.
func (j *Journal) Sync(ctx context.Context) error {
	done := make(chan struct{})

	j.mu.RLock()
	if j.closed {
		j.mu.RUnlock()
		return ErrClosed
	}
	select {
	case j.queue <- request{sync: done}:
	case <-ctx.Done():
		j.mu.RUnlock()
		return ctx.Err()
	}
	j.mu.RUnlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Journal) writer() {
	defer close(j.done)
	for req := range j.queue {
		if req.sync != nil {
			close(req.sync)
			continue
		}
		if err := j.insert(req.entry); err != nil {
			j.log.Warn().Err(err).Msg("journal write failed")
			continue
		}
		j.written++
		if j.opts.Retain > 0 && j.written%pruneEvery == 0 {
			if _, err := j.Prune(context.Background()); err != nil {
				j.log.Warn().Err(err).Msg("journal prune failed")
			}
		}
	}
}

func (j *Journal) insert(e *Entry) error {
	inbound := 0
	if e.Inbound {
		inbound = 1
	}
	_, err := j.db.Exec(`
		INSERT INTO frames (id, session, channel, inbound, at, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Session, e.Channel, inbound, e.At.UnixNano(), e.Payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Tail returns the last n frames, oldest first.
func (j *Journal) Tail(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, id, session, channel, inbound, at, payload FROM (
			SELECT * FROM frames ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			inbound int
			at      int64
		)
		if err := rows.Scan(&e.Seq, &e.ID, &e.Session, &e.Channel, &inbound, &at, &e.Payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		e.Inbound = inbound == 1
		e.At = time.Unix(0, at)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return out, nil
}

// Count returns the number of stored frames.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM frames").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// Prune deletes all but the most recent Retain frames.
func (j *Journal) Prune(ctx context.Context) (int64, error) {
	if j.opts.Retain <= 0 {
		return 0, nil
	}
	res, err := j.db.ExecContext(ctx, `
		DELETE FROM frames WHERE seq <= (
			SELECT seq FROM frames ORDER BY seq DESC LIMIT 1 OFFSET ?
		)`, j.opts.Retain)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		j.log.Debug().Int64("deleted", n).Msg("journal pruned")
	}
	return n, nil
}

// Close drains the queue, applies retention and closes the database.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	close(j.queue)
	j.mu.Unlock()

	<-j.done
	if _, err := j.Prune(context.Background()); err != nil {
		j.log.Warn().Err(err).Msg("journal prune failed")
	}
	return j.db.Close()
}
