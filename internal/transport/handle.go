// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/relay-tui/internal/model"
	"github.com/jeranaias/relay-tui/internal/protocol"
)

// Handle is one push channel. Send is fire-and-forget: delivery is
// confirmed, if at all, by a later inbound event.
type Handle struct {
	name     string
	endpoint string
	opts     *Options
	dialer   *websocket.Dialer

	queue   chan []byte
	retry   []byte // frame whose write failed, resent after reconnect
	limiter *rate.Limiter
	sink    chan<- Event
	log     zerolog.Logger

	mu    sync.Mutex
	state model.ConnectionState

	done      chan struct{}
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
}

// Name returns the channel name.
func (h *Handle) Name() string { return h.name }

// Endpoint returns the websocket URL.
func (h *Handle) Endpoint() string { return h.endpoint }

// State returns the current connection state.
func (h *Handle) State() model.ConnectionState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Done is closed once the channel is terminally closed.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Send encodes cmd and queues it for the write pump. Commands sent while
// connecting are held until the channel opens. Once the channel is
// terminally closed Send returns an error matching ErrChannelClosed.
func (h *Handle) Send(cmd protocol.Command) error {
	data, err := protocol.Encode(cmd)
	if err != nil {
		return &Error{Type: ErrTypeEncode, Channel: h.name, Message: "failed to encode command", Cause: err}
	}
	return h.SendRaw(data)
}

// SendRaw queues an already-encoded frame.
func (h *Handle) SendRaw(data []byte) error {
	select {
	case <-h.done:
		return &Error{Type: ErrTypeClosed, Channel: h.name, Message: "channel closed"}
	default:
	}
	select {
	case h.queue <- data:
		return nil
	case <-h.done:
		return &Error{Type: ErrTypeClosed, Channel: h.name, Message: "channel closed"}
	default:
		return &Error{Type: ErrTypeQueueFull, Channel: h.name, Message: "send queue full"}
	}
}

// Close terminates this channel.
func (h *Handle) Close() error {
	h.cancel()
	return nil
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func (h *Handle) run() {
	attempt := 0
	for {
		h.setState(model.StateConnecting, nil, attempt)

		conn, err := h.dial()
		if err == nil {
			attempt = 0
			h.log.Info().Str("endpoint", h.endpoint).Msg("channel open")
			h.setState(model.StateOpen, nil, 0)
			err = h.serve(conn)
		}

		if h.ctx.Err() != nil {
			h.finish(nil)
			return
		}
		if !h.opts.Reconnect || attempt >= h.opts.ReconnectAttempts {
			h.log.Warn().Err(err).Msg("channel closed")
			h.finish(err)
			return
		}

		attempt++
		delay := h.opts.backoff(attempt)
		h.log.Info().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("reconnecting")

		timer := time.NewTimer(delay)
		select {
		case <-h.ctx.Done():
			timer.Stop()
			h.finish(nil)
			return
		case <-timer.C:
		}
	}
}

// finish marks the channel terminally closed before announcing it, so no
// Send issued in reaction to the announcement can be silently queued.
func (h *Handle) finish(cause error) {
	h.closeOnce.Do(func() { close(h.done) })
	if n := len(h.queue); n > 0 {
		h.log.Warn().Int("dropped", n).Msg("discarding unsent frames")
	}
	h.setState(model.StateClosed, cause, 0)
}

func (h *Handle) setState(s model.ConnectionState, cause error, attempt int) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
	h.emit(Event{Channel: h.name, Kind: EventState, State: s, Err: cause, Attempt: attempt})
}

func (h *Handle) emit(ev Event) {
	if ev.Kind == EventState && ev.State == model.StateClosed {
		// The final state is delivered even after shutdown began, unless
		// nobody is draining the stream.
		select {
		case h.sink <- ev:
		case <-time.After(h.opts.WriteWait):
		}
		return
	}
	select {
	case h.sink <- ev:
	case <-h.ctx.Done():
	}
}

func (h *Handle) dial() (*websocket.Conn, error) {
	ctx, cancel := context.WithTimeout(h.ctx, h.opts.HandshakeTimeout)
	defer cancel()

	conn, resp, err := h.dialer.DialContext(ctx, h.endpoint, h.opts.Header)
	if err != nil {
		msg := "dial failed"
		if resp != nil {
			msg += " (" + resp.Status + ")"
		}
		return nil, &Error{Type: ErrTypeDial, Channel: h.name, Message: msg, Cause: err}
	}
	return conn, nil
}

// =============================================================================
// PUMPS
// =============================================================================

// serve runs the read and write pumps over conn until either fails or the
// handle is closed.
func (h *Handle) serve(conn *websocket.Conn) error {
	readDone := make(chan struct{})
	var readErr error
	go func() {
		readErr = h.readPump(conn)
		close(readDone)
	}()

	writeErr := h.writePump(conn, readDone)
	conn.Close()
	<-readDone

	if writeErr != nil {
		return writeErr
	}
	return readErr
}

func (h *Handle) readPump(conn *websocket.Conn) error {
	conn.SetReadLimit(h.opts.MaxMessageBytes)
	conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Msg("unexpected close")
			}
			return &Error{Type: ErrTypeClosed, Channel: h.name, Message: "read failed", Cause: err}
		}
		if h.opts.Observer != nil {
			h.opts.Observer.ObserveFrame(h.name, true, data)
		}
		h.emit(Event{Channel: h.name, Kind: EventFrame, Data: data})
	}
}

func (h *Handle) writePump(conn *websocket.Conn, readDone <-chan struct{}) error {
	ticker := time.NewTicker(h.opts.PingPeriod)
	defer ticker.Stop()

	if h.retry != nil {
		data := h.retry
		h.retry = nil
		if err := h.write(conn, data); err != nil {
			return err
		}
	}

	for {
		select {
		case <-readDone:
			return nil

		case data := <-h.queue:
			if err := h.limiter.Wait(h.ctx); err != nil {
				h.retry = data
				h.closeConn(conn)
				return nil
			}
			if err := h.write(conn, data); err != nil {
				return err
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(h.opts.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return &Error{Type: ErrTypeClosed, Channel: h.name, Message: "ping failed", Cause: err}
			}

		case <-h.ctx.Done():
			h.closeConn(conn)
			return nil
		}
	}
}

func (h *Handle) write(conn *websocket.Conn, data []byte) error {
	conn.SetWriteDeadline(time.Now().Add(h.opts.WriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.retry = data
		return &Error{Type: ErrTypeClosed, Channel: h.name, Message: "write failed", Cause: err}
	}
	if h.opts.Observer != nil {
		h.opts.Observer.ObserveFrame(h.name, false, data)
	}
	return nil
}

func (h *Handle) closeConn(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.opts.WriteWait))
}
