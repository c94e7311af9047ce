// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for the relay TUI.
//
// All colors are lipgloss AdaptiveColor values so the same theme works on
// light and dark terminals. Own and other messages share one bubble layout
// and differ only in color and alignment.
//
// # Key Types
//
//   - Theme: every lipgloss style used by the chat view
//   - SpinnerConfig: frames for the upload and recording spinners
//   - LayoutMode: narrow, medium or wide layout
//
// # Usage
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	theme.SetSize(width, height)
//	if theme.GetLayoutMode() == styles.LayoutNarrow {
//	    // hide the sidebar
//	}
package styles
