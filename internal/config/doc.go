// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for relay.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env files, environment variable overrides, validation and hot reload.
//
// # Key Types
//
//   - Config: main configuration structure
//   - ServerConfig: endpoints and session credentials
//   - TransportConfig: websocket keepalive, rate limit and reconnect policy
//   - RecordingConfig: capture command and artifact format
//   - Watcher: fsnotify-based reloader
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (RELAY_*), including those from ./.env
//   - ~/.relay/config.toml
//   - ~/.relay/config.json
//   - Built-in defaults
//
// # Usage
//
//	_ = config.LoadDotEnv()
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	endpoint := cfg.Server.ChatURL("lobby")
package config
