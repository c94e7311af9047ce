// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Attachment is a binary artifact ready to be uploaded.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Size returns the artifact length in bytes.
func (a Attachment) Size() int {
	return len(a.Data)
}

// AttachmentFromFile reads path into an Attachment. Files larger than
// maxBytes are rejected before being read; maxBytes <= 0 disables the check.
func AttachmentFromFile(path string, maxBytes int64) (Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("cannot attach %s: %w", path, err)
	}
	if info.IsDir() {
		return Attachment{}, fmt.Errorf("cannot attach %s: is a directory", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return Attachment{}, &Error{
			Type:    ErrTypeTooLarge,
			Message: fmt.Sprintf("%s is %d bytes, limit is %d", filepath.Base(path), info.Size(), maxBytes),
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("cannot attach %s: %w", path, err)
	}
	name := filepath.Base(path)
	return Attachment{FileName: name, ContentType: ContentTypeFor(name), Data: data}, nil
}

// ContentTypeFor guesses a content type from the file extension.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".webm":
		return "audio/webm"
	case ".ogg":
		return "audio/ogg"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
