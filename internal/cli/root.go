// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jeranaias/relay-tui/internal/config"
)

// Version information, set from main at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	user       string
	server     string
	logLevel   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "relay",
		Short: "Terminal client for relay chat rooms",
		Long: `relay connects to a chat server over websockets and opens a room in the
terminal: send, reply, edit and delete messages, attach files and record
voice messages.`,
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			lipgloss.SetColorProfile(ColorProfile())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file path (default is ~/.relay/config.toml)")
	pf.StringVar(&flags.user, "user", "", "username to chat as (overrides user.username)")
	pf.StringVar(&flags.server, "server", "", "server base URL (overrides server.base_url)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		newChatCmd(flags),
		newConfigCmd(flags),
		newJournalCmd(flags),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		DisplayError(os.Stderr, err)
		return ExitCode(err)
	}
	return ExitSuccess
}

// =============================================================================
// CONFIG LOADING
// =============================================================================

// loadConfig loads .env, the config file and the environment, then applies
// the command-line overrides.
func (f *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, configError("load", err)
	}

	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFromPath(f.configPath)
		if err != nil {
			return nil, configError("load", err)
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, configError("load", err)
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v (using defaults)\n", mutedStyle().Render("warning:"), err)
		}
	}

	if f.user != "" {
		cfg.User.Username = f.user
	}
	if f.server != "" {
		cfg.Server.BaseURL = f.server
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, configError("load", err)
	}
	return cfg, nil
}

// filePath returns the config file the commands read and write.
func (f *globalFlags) filePath() (string, error) {
	if f.configPath != "" {
		return f.configPath, nil
	}
	return config.ConfigPathTOML()
}

// =============================================================================
// VERSION
// =============================================================================

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "relay %s\n", Version)
			fmt.Fprintf(out, "  commit:  %s\n", GitCommit)
			fmt.Fprintf(out, "  built:   %s\n", BuildDate)
			fmt.Fprintf(out, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
