// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat view model.
package model

import (
	"net/url"
	"path"
	"strings"
)

// =============================================================================
// ATTACHMENT
// =============================================================================

// AttachmentKind is the rendering class of an attachment, inferred from the
// file extension.
type AttachmentKind string

const (
	AttachmentImage   AttachmentKind = "image"
	AttachmentAudio   AttachmentKind = "audio"
	AttachmentGeneric AttachmentKind = "file"
)

var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	audioExtensions = map[string]bool{".mp3": true, ".wav": true, ".ogg": true, ".webm": true}
)

// String returns the string representation of the kind.
func (k AttachmentKind) String() string {
	return string(k)
}

// Label returns a short human-readable tag for the kind.
func (k AttachmentKind) Label() string {
	switch k {
	case AttachmentImage:
		return "image"
	case AttachmentAudio:
		return "voice"
	default:
		return "attachment"
	}
}

// KindForURL infers the attachment kind from the extension of the URL path.
// Query strings and fragments are ignored and the match is case-insensitive.
func KindForURL(raw string) AttachmentKind {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	switch {
	case imageExtensions[ext]:
		return AttachmentImage
	case audioExtensions[ext]:
		return AttachmentAudio
	default:
		return AttachmentGeneric
	}
}

// Attachment is a reference to an uploaded file.
type Attachment struct {
	URL  string
	Kind AttachmentKind
}

// NewAttachment returns an attachment for url, or nil when url is empty.
func NewAttachment(rawURL string) *Attachment {
	if strings.TrimSpace(rawURL) == "" {
		return nil
	}
	return &Attachment{URL: rawURL, Kind: KindForURL(rawURL)}
}

// Name returns the last path element of the attachment URL.
func (a *Attachment) Name() string {
	if a == nil {
		return ""
	}
	p := a.URL
	if u, err := url.Parse(a.URL); err == nil && u.Path != "" {
		p = u.Path
	}
	return path.Base(p)
}

// =============================================================================
// PARENT REFERENCE
// =============================================================================

// ParentRef is a denormalized snapshot of the message being replied to.
// It is a copy taken when the reply was created, not a live reference.
type ParentRef struct {
	ID      ID
	Author  string
	Excerpt string
}

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single chat message in the local view.
type Message struct {
	// Identity
	ID     ID
	Author string
	Own    bool // Authored by the local user

	// Content. Text may be empty when only an attachment is present.
	Text       string
	Attachment *Attachment
	Parent     *ParentRef

	// Server-formatted creation time (e.g. "14:05")
	Timestamp string

	// Mutable flags
	Edited bool
	Read   bool // Meaningful only when Own is true
}

// HasAttachment reports whether the message carries a file.
func (m *Message) HasAttachment() bool {
	return m.Attachment != nil
}

// IsReply reports whether the message carries a parent snapshot.
func (m *Message) IsReply() bool {
	return m.Parent != nil
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	if m.Attachment != nil {
		a := *m.Attachment
		c.Attachment = &a
	}
	if m.Parent != nil {
		p := *m.Parent
		c.Parent = &p
	}
	return &c
}
