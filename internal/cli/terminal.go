// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TTYRequiredError is returned when an operation requires a TTY but none is
// available.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	return fmt.Sprintf("%s requires an interactive terminal (stdin and stdout must be a TTY)", e.Operation)
}

// ttyCheck is replaced in tests.
var ttyCheck = func() bool { return IsTTY() && IsStdoutTTY() }

// RequireTerminal returns an error unless both stdin and stdout are
// terminals.
func RequireTerminal(operation string) error {
	if !ttyCheck() {
		return &TTYRequiredError{Operation: operation}
	}
	return nil
}

// =============================================================================
// TERMINAL SIZE
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80
	// MinTerminalWidth is the minimum width used for wrapping
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the current terminal width, or
// DefaultTerminalWidth if it cannot be determined.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

var (
	colorsOnce    sync.Once
	colorsEnabled bool
)

// ColorsEnabled reports whether colored output should be used. It honors
// NO_COLOR (https://no-color.org/) and is off when stdout is not a TTY.
func ColorsEnabled() bool {
	colorsOnce.Do(func() {
		colorsEnabled = IsStdoutTTY() && !termenv.EnvNoColor()
	})
	return colorsEnabled
}

// ColorProfile returns the termenv profile for plain CLI output.
func ColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

func errorStyle() lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	if ColorsEnabled() {
		s = s.Foreground(lipgloss.Color("#FB7185"))
	}
	return s
}

func mutedStyle() lipgloss.Style {
	s := lipgloss.NewStyle()
	if ColorsEnabled() {
		s = s.Foreground(lipgloss.Color("#94A3B8"))
	}
	return s
}
