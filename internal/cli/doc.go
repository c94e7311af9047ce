// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the relay command tree.
//
// # Commands
//
//	relay chat <room-id>        Open the room in the TUI
//	relay config show           Print the effective config, secrets redacted
//	relay config path           Print the config file location
//	relay config init           Write a default config file
//	relay config get <key>      Print one setting (dotted TOML key)
//	relay config set <key> <v>  Change one setting in the config file
//	relay journal tail [-n N]   Print the last N journaled frames
//	relay version               Print version information
//
// # Global Flags
//
//	--config      Config file (default ~/.relay/config.toml)
//	--user        Override user.username
//	--server      Override server.base_url
//	--log-level   Override log.level
//
// # Usage
//
//	func main() {
//		os.Exit(cli.Execute())
//	}
package cli
