// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recording

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/relay-tui/internal/config"
	"github.com/jeranaias/relay-tui/internal/util"
)

// State is the recording lifecycle state.
type State int

const (
	StateIdle State = iota
	StateActive
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// Artifact is a finished recording ready for upload.
type Artifact struct {
	FileName  string
	MediaType string
	Data      []byte
	Duration  time.Duration
}

// Options configures a Controller.
type Options struct {
	FileName    string
	MediaType   string
	ChunkBytes  int
	MaxDuration time.Duration
	// StopTimeout bounds how long Stop waits for the device to flush.
	StopTimeout time.Duration
	Logger      zerolog.Logger
}

// OptionsFromConfig builds Options from the recording section.
func OptionsFromConfig(cfg config.RecordingConfig) Options {
	return Options{
		FileName:    cfg.FileName,
		MediaType:   cfg.MediaType,
		ChunkBytes:  cfg.ChunkBytes,
		MaxDuration: cfg.MaxDuration(),
		StopTimeout: 5 * time.Second,
		Logger:      zerolog.Nop(),
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller drives one capture device through Idle, Active and
// Finalizing. Chunks produced by an earlier recording are rejected by
// comparing generations, so a slow device can never leak audio into the
// next recording.
type Controller struct {
	mu sync.Mutex

	device Device
	opts   Options
	log    zerolog.Logger
	now    func() time.Time

	state      State
	generation uint64
	stream     Stream
	chunks     [][]byte
	started    time.Time
	readerDone chan struct{}
	readErr    error
}

// NewController creates a controller for device.
func NewController(device Device, opts Options) *Controller {
	if opts.ChunkBytes <= 0 {
		opts.ChunkBytes = 4096
	}
	if opts.FileName == "" {
		opts.FileName = "voice_message.webm"
	}
	if opts.MediaType == "" {
		opts.MediaType = "audio/webm"
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = 5 * time.Second
	}
	return &Controller{
		device: device,
		opts:   opts,
		log:    opts.Logger,
		now:    time.Now,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Recording reports whether a recording is active.
func (c *Controller) Recording() bool {
	return c.State() == StateActive
}

// Generation identifies the current recording.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Start acquires the device and begins buffering. On failure the
// controller stays Idle and holds no device.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyRecording
	}
	c.mu.Unlock()

	stream, err := c.device.Acquire(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("audio device unavailable")
		var rerr *Error
		if errors.As(err, &rerr) {
			return err
		}
		return &Error{Type: ErrTypeDevice, Message: "audio device unavailable", Cause: err}
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		_ = stream.Close()
		return ErrAlreadyRecording
	}
	c.generation++
	gen := c.generation
	c.state = StateActive
	c.stream = stream
	c.chunks = nil
	c.readErr = nil
	c.started = c.now()
	done := make(chan struct{})
	c.readerDone = done
	c.mu.Unlock()

	go c.read(gen, stream, done)

	c.log.Info().Uint64("generation", gen).Msg("recording started")
	return nil
}

// read copies chunks from the stream until it ends.
func (c *Controller) read(gen uint64, stream Stream, done chan struct{}) {
	defer close(done)
	buf := make([]byte, c.opts.ChunkBytes)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			c.Append(gen, chunk)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.mu.Lock()
				if c.generation == gen {
					c.readErr = err
				}
				c.mu.Unlock()
			}
			return
		}
	}
}

// Append adds a chunk to the buffer of recording gen. Chunks that arrive
// after the recording was cancelled or finished are dropped.
func (c *Controller) Append(gen uint64, chunk []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.state == StateIdle {
		return false
	}
	c.chunks = append(c.chunks, chunk)
	return true
}

// Stop finishes the recording and returns the artifact. The device is
// released before Stop returns and the controller is back to Idle.
func (c *Controller) Stop(ctx context.Context) (Artifact, error) {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return Artifact{}, ErrNotRecording
	}
	c.state = StateFinalizing
	stream := c.stream
	done := c.readerDone
	gen := c.generation
	c.mu.Unlock()

	if err := stream.Stop(); err != nil {
		c.log.Debug().Err(err).Msg("device stop")
	}

	timer := time.NewTimer(c.opts.StopTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		c.log.Warn().Dur("timeout", c.opts.StopTimeout).Msg("device did not flush in time")
	case <-ctx.Done():
	}
	_ = stream.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen || c.state != StateFinalizing {
		// Cancelled while finalizing.
		return Artifact{}, ErrNotRecording
	}

	var data bytes.Buffer
	for _, chunk := range c.chunks {
		data.Write(chunk)
	}
	art := Artifact{
		FileName:  c.opts.FileName,
		MediaType: c.opts.MediaType,
		Data:      data.Bytes(),
		Duration:  c.now().Sub(c.started),
	}
	readErr := c.readErr
	c.reset()

	if readErr != nil {
		c.log.Warn().Err(readErr).Msg("recording read error")
	}
	if len(art.Data) == 0 {
		return Artifact{}, ErrEmptyRecording
	}
	c.log.Info().Int("bytes", len(art.Data)).Dur("duration", art.Duration).Msg("recording finished")
	return art, nil
}

// Cancel discards the recording and releases the device synchronously.
// It is a no-op when Idle.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	stream := c.stream
	c.generation++
	c.reset()
	c.mu.Unlock()

	if stream != nil {
		_ = stream.Close()
	}
	c.log.Info().Msg("recording cancelled")
}

// reset returns to Idle. Callers hold mu.
func (c *Controller) reset() {
	c.state = StateIdle
	c.stream = nil
	c.chunks = nil
	c.readErr = nil
	c.readerDone = nil
	c.started = time.Time{}
}

// Elapsed returns the time since Start, or zero when Idle.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateIdle {
		return 0
	}
	return c.now().Sub(c.started)
}

// Clock returns the elapsed time as MM:SS. It reads 00:00 when Idle.
func (c *Controller) Clock() string {
	return util.FormatClock(c.Elapsed())
}

// LimitReached reports whether an active recording hit the maximum duration.
func (c *Controller) LimitReached() bool {
	if c.opts.MaxDuration <= 0 {
		return false
	}
	return c.State() == StateActive && c.Elapsed() >= c.opts.MaxDuration
}

// BufferedBytes returns the size of the current buffer.
func (c *Controller) BufferedBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, chunk := range c.chunks {
		n += len(chunk)
	}
	return n
}
