// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the structured logger.
//
// The terminal belongs to the UI, so records go to a rotated file instead of
// stderr. Components receive a child logger tagged with their name.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how much is logged.
type Options struct {
	Level      string // trace, debug, info, warn, error, disabled
	File       string // empty disables file output
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// SessionID is attached to every record.
	SessionID string
}

// Logger owns the rotating writer behind a zerolog.Logger.
type Logger struct {
	zerolog.Logger
	closer io.Closer
}

// ParseLevel converts a level name into a zerolog level. Empty means info.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return lvl, nil
}

// New builds a logger from opts. With no file configured the logger
// discards everything.
func New(opts Options) (*Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var (
		out    io.Writer = io.Discard
		closer io.Closer
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		out, closer = lj, lj
	}

	return wrap(out, closer, lvl, opts.SessionID), nil
}

// NewWriter builds a logger that writes JSON records to w. Used by tests
// and by the CLI when --log-file=- is given.
func NewWriter(w io.Writer, level string, sessionID string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return wrap(w, nil, lvl, sessionID), nil
}

// Nop returns a logger that discards every record.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

func wrap(w io.Writer, closer io.Closer, lvl zerolog.Level, sessionID string) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	ctx := zerolog.New(w).Level(lvl).With().Timestamp()
	if sessionID != "" {
		ctx = ctx.Str("session", sessionID)
	}
	return &Logger{Logger: ctx.Logger(), closer: closer}
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Close flushes and closes the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
