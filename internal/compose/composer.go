// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compose

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Staged is a local file chosen for the next send. It is read only when
// the send is submitted.
type Staged struct {
	Path string
}

// Name returns the file name shown in the preview.
func (s *Staged) Name() string {
	if s == nil {
		return ""
	}
	return filepath.Base(s.Path)
}

// Composer holds the draft text and the staged attachment.
type Composer struct {
	text   string
	staged *Staged
}

// NewComposer returns an empty composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Text returns the raw draft.
func (c *Composer) Text() string {
	return c.text
}

// SetText replaces the draft.
func (c *Composer) SetText(text string) {
	c.text = text
}

// Content returns the draft as it will be sent: NFC-normalized with
// surrounding whitespace removed.
func (c *Composer) Content() string {
	return strings.TrimSpace(norm.NFC.String(c.text))
}

// Stage attaches a local file to the next send.
func (c *Composer) Stage(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		c.staged = nil
		return
	}
	c.staged = &Staged{Path: path}
}

// Unstage drops the staged attachment.
func (c *Composer) Unstage() {
	c.staged = nil
}

// Staged returns the staged attachment, or nil.
func (c *Composer) Staged() *Staged {
	return c.staged
}

// HasAttachment reports whether a file is staged.
func (c *Composer) HasAttachment() bool {
	return c.staged != nil
}

// IsEmpty reports whether there is nothing to send.
func (c *Composer) IsEmpty() bool {
	return c.Content() == "" && c.staged == nil
}

// ClearText empties the draft but keeps the staged file.
func (c *Composer) ClearText() {
	c.text = ""
}

// Clear empties the draft and drops the staged file.
func (c *Composer) Clear() {
	c.text = ""
	c.staged = nil
}
