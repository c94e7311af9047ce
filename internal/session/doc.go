// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the explicit client state of one chat session.
//
// A Session replaces process-wide reply/edit targets and socket handles
// with a single value that owns the conversation view, the unread badges,
// the composer and interaction mode, the recorder and the pending uploads.
// User actions and inbound frames are applied through its methods.
//
// # Key Types
//
//   - Session: owner of the view model and the outbound command flow
//   - UploadJob: blocking half of an upload-then-announce send
//   - Status: snapshot for the status bar
//
// # Usage
//
//	s := session.New(session.Config{Room: "lobby", Self: "carol", Uploader: coord})
//	s.SetChat(chatHandle)
//
//	s.Composer.SetText("hi")
//	plan, job, err := s.Submit()
//	if job != nil {
//	    res, err := job.Run(ctx)
//	    s.CompleteUpload(job.Flow.FlowID, res, err)
//	}
package session
