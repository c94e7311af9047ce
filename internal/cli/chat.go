// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeranaias/relay-tui/internal/config"
	"github.com/jeranaias/relay-tui/internal/journal"
	"github.com/jeranaias/relay-tui/internal/logging"
	"github.com/jeranaias/relay-tui/internal/recording"
	"github.com/jeranaias/relay-tui/internal/session"
	"github.com/jeranaias/relay-tui/internal/transport"
	"github.com/jeranaias/relay-tui/internal/ui/chat"
	"github.com/jeranaias/relay-tui/internal/ui/styles"
	"github.com/jeranaias/relay-tui/internal/upload"
)

// reloadDebounce settles editor save bursts before the config is re-read.
const reloadDebounce = 250 * time.Millisecond

func newChatCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <room-id>",
		Short: "Open a room in the terminal UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room := strings.TrimSpace(args[0])
			if room == "" {
				return &CommandError{Command: "chat", Action: "open", Reason: "room id is empty", Code: ExitUsageError}
			}
			if err := RequireTerminal("relay chat"); err != nil {
				return err
			}
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.User.Username) == "" {
				return &CommandError{
					Command: "chat",
					Action:  "open",
					Reason:  "no username configured (set user.username, RELAY_USER or --user)",
					Code:    ExitConfigError,
				}
			}
			return runChat(cfg, flags, room)
		},
	}
}

// runChat wires every component for one room and runs the UI until quit.
func runChat(cfg *config.Config, flags *globalFlags, room string) error {
	sessionID := uuid.NewString()

	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		SessionID:  sessionID,
	})
	if err != nil {
		return configError("logging", err)
	}
	defer logger.Close()
	log := logger.Component("cli")
	log.Info().Str("room", room).Str("user", cfg.User.Username).Str("config", cfg.Redacted().String()).Msg("starting session")

	// Transport, with the optional frame journal observing every frame.
	topts := transport.OptionsFromConfig(cfg)
	topts.Logger = logger.Component("transport")
	if cfg.Journal.Enabled {
		jr, err := journal.Open(journal.Options{
			Path:      cfg.Journal.Path,
			SessionID: sessionID,
			Retain:    cfg.Journal.Retain,
			Logger:    logger.Component("journal"),
		})
		if err != nil {
			// Diagnostics only; the session runs without it.
			log.Warn().Err(err).Msg("journal unavailable")
		} else {
			defer jr.Close()
			topts.Observer = jr
		}
	}

	uopts := upload.OptionsFromConfig(cfg)
	uopts.Logger = logger.Component("upload")

	var recorder *recording.Controller
	if len(cfg.Recording.Command) > 0 {
		ropts := recording.OptionsFromConfig(cfg.Recording)
		ropts.Logger = logger.Component("recording")
		recorder = recording.NewController(recording.NewCommandDevice(cfg.Recording.Command), ropts)
	}

	sess := session.New(session.Config{
		ID:             sessionID,
		Room:           room,
		Self:           cfg.User.Username,
		ExcerptRunes:   cfg.UI.ParentExcerptRunes,
		CatchUp:        cfg.UI.CatchUpReceipts,
		Recorder:       recorder,
		Uploader:       upload.NewCoordinator(uopts),
		MaxUploadBytes: cfg.Upload.MaxBytes(),
		MaxMessages:    cfg.UI.MaxMessages,
		Logger:         logger.Logger,
	})

	manager := transport.NewManager(topts)
	defer manager.Close()

	chatHandle, err := manager.Open(transport.ChatChannel, cfg.Server.ChatURL(room))
	if err != nil {
		return err
	}
	sess.SetChat(chatHandle)
	if _, err := manager.Open(transport.NotificationChannel, cfg.Server.NotificationURL()); err != nil {
		return err
	}

	var reloads <-chan config.Reload
	if w := startWatcher(flags, log); w != nil {
		defer w.Close()
		reloads = w.Changes()
	}

	model := chat.New(chat.Deps{
		Session: sess,
		Theme:   styles.NewTheme(cfg.UI.Theme),
		Config:  cfg,
		Events:  manager.Events(),
		Reloads: reloads,
		Logger:  logger.Logger,
	})

	opts := []tea.ProgramOption{tea.WithReportFocus()}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	if recorder != nil && recorder.Recording() {
		recorder.Cancel()
	}
	if n := len(sess.Pending.InFlight()); n > 0 {
		log.Warn().Int("uploads", n).Msg("exiting with uploads in flight; their files stay orphaned")
	}
	st := sess.GetStatus()
	log.Info().Dur("duration", st.Duration).Int("messages", st.Messages).Msg("session ended")
	return nil
}

// startWatcher watches the config file for hot reloads. A missing file or a
// watcher error only disables reloading.
func startWatcher(flags *globalFlags, log zerolog.Logger) *config.Watcher {
	path, err := flags.filePath()
	if err != nil {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	w, err := config.NewWatcher(path, reloadDebounce)
	if err != nil {
		log.Warn().Err(err).Msg("config watcher unavailable")
		return nil
	}
	if err := w.Start(); err != nil {
		log.Warn().Err(err).Msg("config watcher unavailable")
		_ = w.Close()
		return nil
	}
	return w
}
