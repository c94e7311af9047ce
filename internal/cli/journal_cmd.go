// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/relay-tui/internal/journal"
	"github.com/jeranaias/relay-tui/internal/logging"
	"github.com/jeranaias/relay-tui/internal/util"
)

// tailPayloadWidth bounds each printed payload so one frame stays on one line.
const tailPayloadWidth = 160

func newJournalCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the websocket frame journal",
	}
	cmd.AddCommand(newJournalTailCmd(flags))
	return cmd
}

func newJournalTailCmd(flags *globalFlags) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the most recent journaled frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 1 {
				return &CommandError{Command: "journal", Action: "tail", Reason: "-n must be at least 1", Code: ExitUsageError}
			}
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			path := cfg.Journal.Path
			if _, err := os.Stat(path); err != nil {
				return &CommandError{Command: "journal", Action: "tail", Reason: "no journal at " + path, Code: ExitNotFoundError, Err: err}
			}

			jr, err := journal.Open(journal.Options{Path: path, Logger: logging.Nop().Logger})
			if err != nil {
				return NewCommandError("journal", "tail", "could not open journal", err)
			}
			defer jr.Close()

			entries, err := jr.Tail(cmd.Context(), n)
			if err != nil {
				return NewCommandError("journal", "tail", "could not read journal", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, mutedStyle().Render("journal is empty"))
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%6d  %s  %-3s  %-13s  %s\n",
					e.Seq,
					e.At.Local().Format("2006-01-02 15:04:05.000"),
					e.Direction(),
					e.Channel,
					util.TruncateRunes(util.SingleLine(e.Payload), tailPayloadWidth),
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "lines", "n", 20, "number of frames to print")
	return cmd
}
