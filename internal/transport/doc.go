// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport manages the websocket push channels of a chat session.
//
// A session opens exactly two channels, chat and notifications, once at
// startup. Each Handle runs a read pump and a write pump; inbound frames and
// state transitions of every channel are merged into Manager.Events. Sends
// are queued, rate limited and written without acknowledgement.
//
// By default a closed channel stays closed. Options.Reconnect enables
// exponential-backoff redial.
//
// # Usage
//
//	mgr := transport.NewManager(transport.OptionsFromConfig(cfg))
//	chat, _ := mgr.Open(transport.ChatChannel, cfg.Server.ChatURL(room))
//	_ = chat.Send(protocol.MarkRead{MessageID: "42"})
//	for ev := range mgr.Events() {
//	    ...
//	}
package transport
