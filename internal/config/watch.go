// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// Reload is the outcome of re-reading a changed config file.
type Reload struct {
	Config *Config
	Err    error
}

// Watcher re-reads a config file whenever it changes on disk.
//
// The parent directory is watched rather than the file itself, so editors
// that save by rename are picked up. Bursts of events are debounced.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	changes  chan Reload
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewWatcher creates a watcher for path. Call Start to begin delivering
// reloads on Changes.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     abs,
		debounce: debounce,
		watcher:  fw,
		changes:  make(chan Reload, 1),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.processEvents()
	return nil
}

// Changes delivers one Reload per settled burst of changes. Only the most
// recent reload is buffered.
func (w *Watcher) Changes() <-chan Reload {
	return w.changes
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			cfg, err := LoadFromPath(w.path)
			w.publish(Reload{Config: cfg, Err: err})

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// publish replaces any undelivered reload with the newer one.
func (w *Watcher) publish(r Reload) {
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- r:
	case <-w.ctx.Done():
	}
}
