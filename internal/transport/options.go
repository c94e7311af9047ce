// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/relay-tui/internal/config"
)

// Observer sees every frame that crosses a channel. Implementations must be
// safe for concurrent use; they are called from the pump goroutines.
type Observer interface {
	ObserveFrame(channel string, inbound bool, data []byte)
}

// Options configures a Manager.
type Options struct {
	HandshakeTimeout time.Duration
	WriteWait        time.Duration
	PongWait         time.Duration
	PingPeriod       time.Duration
	MaxMessageBytes  int64

	// Outbound frames are paced by a token bucket.
	SendRate  rate.Limit
	SendBurst int

	// Reconnect policy. With Reconnect false a closed channel is terminal.
	Reconnect         bool
	ReconnectBase     time.Duration
	ReconnectMax      time.Duration
	ReconnectAttempts int

	// Header is sent with every handshake (session cookie, origin).
	Header http.Header

	// QueueSize bounds the per-channel outbound queue.
	QueueSize int

	Observer Observer
	Logger   zerolog.Logger
}

// DefaultOptions returns options matching the built-in configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig maps the transport and server config sections onto
// Options. The session cookie, if any, is attached to the handshake header.
func OptionsFromConfig(cfg *config.Config) Options {
	t := cfg.Transport
	header := http.Header{}
	if cfg.Server.SessionCookie != "" {
		header.Set("Cookie", "sessionid="+cfg.Server.SessionCookie)
	}
	if cfg.Server.BaseURL != "" {
		header.Set("Origin", cfg.Server.BaseURL)
	}
	return Options{
		HandshakeTimeout:  t.HandshakeTimeout(),
		WriteWait:         t.WriteWait(),
		PongWait:          t.PongWait(),
		PingPeriod:        t.PingPeriod(),
		MaxMessageBytes:   t.MaxMessageBytes,
		SendRate:          rate.Limit(t.SendRatePerSec),
		SendBurst:         t.SendBurst,
		Reconnect:         t.Reconnect,
		ReconnectBase:     t.ReconnectBase(),
		ReconnectMax:      t.ReconnectMax(),
		ReconnectAttempts: t.ReconnectAttempts,
		Header:            header,
		QueueSize:         64,
		Logger:            zerolog.Nop(),
	}
}

func (o *Options) setDefaults() {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = 512 * 1024
	}
	if o.SendRate <= 0 {
		o.SendRate = rate.Inf
	}
	if o.SendBurst < 1 {
		o.SendBurst = 1
	}
	if o.ReconnectBase <= 0 {
		o.ReconnectBase = 500 * time.Millisecond
	}
	if o.ReconnectMax < o.ReconnectBase {
		o.ReconnectMax = 30 * time.Second
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
}

// backoff returns the delay before reconnect attempt n (1-based): base
// doubled per attempt, capped at max.
func (o *Options) backoff(n int) time.Duration {
	d := o.ReconnectBase
	for i := 1; i < n; i++ {
		d *= 2
		if d >= o.ReconnectMax {
			return o.ReconnectMax
		}
	}
	return d
}
