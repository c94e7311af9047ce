// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package journal records chat and notification frames to a local SQLite
// database for diagnostics.
//
// A Journal implements the transport frame observer, so enabling it is a
// matter of passing it in the transport options. Writes happen on a single
// background goroutine; a full queue drops frames rather than stalling the
// connection.
//
// # Key Types
//
//   - Journal: frame recorder with Tail, Count and Prune
//   - Entry: one recorded frame
//
// # Usage
//
//	j, err := journal.Open(journal.Options{Path: cfg.Journal.Path, SessionID: sid, Retain: 10000})
//	if err != nil {
//	    return err
//	}
//	defer j.Close()
//	entries, _ := j.Tail(ctx, 20)
package journal
