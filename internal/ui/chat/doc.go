// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the room view of the relay TUI.

The package wires a session.Session into a Bubble Tea program. The Update
loop is the only place session state is mutated: channel frames, upload
results, recorder ticks and config reloads all arrive as messages and are
applied one at a time.

# Key Components

## Model (model.go)

The Model holds the session, the composer textinput, the timeline viewport
and the UI-only state: focus, selection, the jump highlight, the delete
confirmation and the attach-path prompt.

## Update Loop (update.go)

  - Channel events are re-armed with listenEvents after each delivery
  - Enter submits through Session.Submit; staged files become an upload cmd
  - Focus and blur map to Session.SetVisible for read receipts
  - The recorder is ticked once per second while active

## View Rendering (view.go)

Header with channel states, the message timeline, an unread sidebar on wide
terminals, the composer with its reply/edit/staged/recording bars, and the
status bar.

# Usage

	m := chat.New(chat.Deps{
		Session: sess,
		Theme:   styles.NewTheme(cfg.UI.Theme),
		Config:  cfg,
		Events:  manager.Events(),
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return err
	}
*/
package chat
