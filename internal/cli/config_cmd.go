// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/relay-tui/internal/config"
)

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the relay configuration",
	}
	cmd.AddCommand(
		newConfigShowCmd(flags),
		newConfigPathCmd(flags),
		newConfigInitCmd(flags),
		newConfigGetCmd(flags),
		newConfigSetCmd(flags),
	)
	return cmd
}

func newConfigShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.String())
			return nil
		},
	}
}

func newConfigPathCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := flags.filePath()
			if err != nil {
				return configError("path", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigInitCmd(flags *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := flags.filePath()
			if err != nil {
				return configError("init", err)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return &CommandError{
					Command: "config",
					Action:  "init",
					Reason:  fmt.Sprintf("%s already exists (use --force to overwrite)", path),
					Code:    ExitUsageError,
				}
			}
			if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
				return NewCommandError("config", "init", "could not create config directory", err)
			}
			if err := config.SaveTOML(config.Default(), path); err != nil {
				return NewCommandError("config", "init", "could not write config", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func newConfigGetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting by its dotted key (e.g. transport.reconnect)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			// Secrets print masked, also when a whole section is requested.
			val, err := cfg.Redacted().Get(normalizeKey(args[0]))
			if err != nil {
				return &CommandError{Command: "config", Action: "get", Reason: "unknown key", Code: ExitNotFoundError, Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatValue(val))
			return nil
		},
	}
}

func newConfigSetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting in the config file",
		Long: `Change one setting in the config file. List values such as
recording.command are split on whitespace.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := flags.filePath()
			if err != nil {
				return configError("set", err)
			}

			// Only the file is edited; env and flag overrides stay out of it.
			cfg := config.Default()
			if _, statErr := os.Stat(path); statErr == nil {
				if err := config.LoadTOML(cfg, path); err != nil {
					return configError("set", err)
				}
			}
			key := normalizeKey(args[0])
			if err := cfg.Set(key, args[1]); err != nil {
				return &CommandError{Command: "config", Action: "set", Reason: "could not set " + key, Code: ExitUsageError, Err: err}
			}
			check := cfg.Clone()
			check.SetDefaults()
			if err := check.Validate(); err != nil {
				return configError("set", err)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
				return NewCommandError("config", "set", "could not create config directory", err)
			}
			if err := config.SaveTOML(cfg, path); err != nil {
				return NewCommandError("config", "set", "could not write config", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated in %s\n", key, path)
			return nil
		},
	}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case []string:
		return strings.Join(t, " ")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
