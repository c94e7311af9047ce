// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/relay-tui/internal/model"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style

	// Messages
	OwnBubble     lipgloss.Style
	OtherBubble   lipgloss.Style
	Author        lipgloss.Style
	OwnAuthor     lipgloss.Style
	Timestamp     lipgloss.Style
	ParentQuote   lipgloss.Style
	EditedMarker  lipgloss.Style
	SeenMarker    lipgloss.Style
	Attachment    lipgloss.Style
	Selected      lipgloss.Style
	Highlighted   lipgloss.Style
	EmptyTimeline lipgloss.Style

	// Composer
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	ReplyBar       lipgloss.Style
	EditBar        lipgloss.Style
	StagedFile     lipgloss.Style
	RecordingBar   lipgloss.Style
	ConfirmBar     lipgloss.Style

	// Sidebar
	Sidebar      lipgloss.Style
	SidebarTitle lipgloss.Style
	Badge        lipgloss.Style
	BadgeLabel   lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	StateOpen    lipgloss.Style
	StateWaiting lipgloss.Style
	StateClosed  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	Spinner      lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto"; auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.HeaderMeta = lipgloss.NewStyle().Foreground(TextSecondary)

	// Own and other messages share one layout and differ only in color
	// and alignment.
	t.OwnBubble = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Teal).
		Padding(0, 1).
		MarginLeft(4)
	t.OtherBubble = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(0, 1).
		MarginRight(4)
	t.Author = lipgloss.NewStyle().Bold(true).Foreground(Indigo)
	t.OwnAuthor = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.ParentQuote = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderTop(false).
		BorderRight(false).
		BorderBottom(false).
		BorderForeground(Indigo).
		PaddingLeft(1)
	t.EditedMarker = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.SeenMarker = lipgloss.NewStyle().Foreground(Emerald)
	t.Attachment = lipgloss.NewStyle().Foreground(LinkColor).Underline(true)
	t.Selected = lipgloss.NewStyle().Background(SelectionBg)
	t.Highlighted = lipgloss.NewStyle().Background(HighlightBg)
	t.EmptyTimeline = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.ReplyBar = lipgloss.NewStyle().Foreground(Indigo).Padding(0, 1)
	t.EditBar = lipgloss.NewStyle().Foreground(Amber).Bold(true).Padding(0, 1)
	t.StagedFile = lipgloss.NewStyle().Foreground(LinkColor).Padding(0, 1)
	t.RecordingBar = lipgloss.NewStyle().Foreground(Rose).Bold(true).Padding(0, 1)
	t.ConfirmBar = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true).
		Padding(0, 1)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderTop(false).
		BorderRight(false).
		BorderBottom(false).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarTitle = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	t.Badge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true).
		Padding(0, 1)
	t.BadgeLabel = lipgloss.NewStyle().Foreground(TextPrimary)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StateOpen = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.StateWaiting = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.StateClosed = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Teal).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().Foreground(Teal)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.WarningStyle = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.InfoStyle = lipgloss.NewStyle().Foreground(Indigo)
}

// ConnectionState returns the style for a channel state.
func (t *Theme) ConnectionState(s model.ConnectionState) lipgloss.Style {
	switch s {
	case model.StateOpen:
		return t.StateOpen
	case model.StateConnecting:
		return t.StateWaiting
	default:
		return t.StateClosed
	}
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, no sidebar
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
