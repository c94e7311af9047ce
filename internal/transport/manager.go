// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/fasthttp/websocket"
	"golang.org/x/time/rate"

	"github.com/jeranaias/relay-tui/internal/model"
)

// Channel names used by the client.
const (
	ChatChannel         = "chat"
	NotificationChannel = "notifications"
)

// =============================================================================
// EVENTS
// =============================================================================

// EventKind discriminates Event.
type EventKind int

const (
	// EventFrame carries one inbound text frame in Data.
	EventFrame EventKind = iota
	// EventState reports a connection state transition.
	EventState
)

// Event is delivered on Manager.Events for every inbound frame and every
// state change of every channel.
type Event struct {
	Channel string
	Kind    EventKind

	Data []byte

	State   model.ConnectionState
	Err     error // Cause of a Closed state, or of a reconnect
	Attempt int   // Reconnect attempt number, 0 on first connect
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the push channels of one session. All channels deliver into a
// single event stream so the consumer observes them in one order.
type Manager struct {
	opts   Options
	dialer *websocket.Dialer
	events chan Event

	mu      sync.Mutex
	handles map[string]*Handle

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a manager. No connection is made until Open.
func NewManager(opts Options) *Manager {
	opts.setDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		opts: opts,
		dialer: &websocket.Dialer{
			HandshakeTimeout: opts.HandshakeTimeout,
			Proxy:            http.ProxyFromEnvironment,
		},
		events:  make(chan Event, 256),
		handles: make(map[string]*Handle),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Events returns the merged event stream of every channel.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Open starts a channel to endpoint and returns its handle immediately. The
// connection is established in the background; progress is reported as
// EventState events. Each name may be opened once per manager.
func (m *Manager) Open(name, endpoint string) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx.Err() != nil {
		return nil, &Error{Type: ErrTypeClosed, Channel: name, Message: "manager closed"}
	}
	if _, exists := m.handles[name]; exists {
		return nil, fmt.Errorf("channel %q already open", name)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	h := &Handle{
		name:     name,
		endpoint: endpoint,
		opts:     &m.opts,
		dialer:   m.dialer,
		queue:    make(chan []byte, m.opts.QueueSize),
		limiter:  rate.NewLimiter(m.opts.SendRate, m.opts.SendBurst),
		sink:     m.events,
		log:      m.opts.Logger.With().Str("channel", name).Logger(),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		state:    model.StateConnecting,
	}
	m.handles[name] = h

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		h.run()
	}()
	return h, nil
}

// Handle returns the open handle named name.
func (m *Manager) Handle(name string) (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.handles[name]
	return h, ok
}

// Close shuts every channel down and waits for their goroutines to exit.
// Only process shutdown calls this.
func (m *Manager) Close() error {
	m.cancel()
	m.wg.Wait()
	return nil
}
