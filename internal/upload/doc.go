// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload sends binary attachments to the server over HTTP and
// tracks the two-phase sends that depend on them.
//
// A message with an attachment is published in two steps: the file is
// uploaded out of band, the server answers with a provisional message ID
// and file URL, and only then is a send_message command announced on the
// chat channel carrying that ID. A failed upload announces nothing.
//
// # Key Types
//
//   - Coordinator: performs one multipart POST per upload, never retried
//   - Attachment: file name, content type and bytes
//   - Tracker: pending two-phase sends keyed by flow ID
//   - Error: typed upload error with HTTP status
//
// # Usage
//
//	coord := upload.NewCoordinator(upload.OptionsFromConfig(cfg))
//	res, err := coord.Upload(ctx, "lobby", "look at this", att)
//	if errors.Is(err, upload.ErrUploadRejected) {
//	    // 403 or 400 from the server
//	}
package upload
