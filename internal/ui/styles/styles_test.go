// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/relay-tui/internal/model"
)

func TestNewThemeModes(t *testing.T) {
	tests := []struct {
		mode string
		dark bool
	}{
		{"dark", true},
		{"light", false},
	}
	for _, tt := range tests {
		theme := NewTheme(tt.mode)
		if theme.IsDark != tt.dark {
			t.Errorf("NewTheme(%q).IsDark = %v, want %v", tt.mode, theme.IsDark, tt.dark)
		}
	}
}

func TestThemeStylesRender(t *testing.T) {
	theme := NewTheme("dark")

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"OwnBubble", theme.OwnBubble},
		{"OtherBubble", theme.OtherBubble},
		{"ParentQuote", theme.ParentQuote},
		{"InputContainer", theme.InputContainer},
		{"StatusBar", theme.StatusBar},
		{"Badge", theme.Badge},
		{"ConfirmBar", theme.ConfirmBar},
	}
	for _, s := range styles {
		if !strings.Contains(s.style.Render("test"), "test") {
			t.Errorf("%s style dropped its content", s.name)
		}
	}
}

func TestConnectionStateStyle(t *testing.T) {
	theme := NewTheme("dark")
	if got := theme.ConnectionState(model.StateOpen).Render("x"); got != theme.StateOpen.Render("x") {
		t.Error("open should use StateOpen")
	}
	if got := theme.ConnectionState(model.StateClosed).Render("x"); got != theme.StateClosed.Render("x") {
		t.Error("closed should use StateClosed")
	}
}

func TestLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	theme := NewTheme("dark")
	for _, tt := range tests {
		theme.SetSize(tt.width, 30)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: GetLayoutMode() = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestSpinnerConfig(t *testing.T) {
	if d := LineSpinner.Duration(); d != 100*time.Millisecond {
		t.Errorf("LineSpinner.Duration() = %v", d)
	}
	if d := (SpinnerConfig{}).Duration(); d != time.Second {
		t.Errorf("zero FPS Duration() = %v", d)
	}
	sp := PulseSpinner.Spinner()
	if len(sp.Frames) != len(PulseSpinner.Frames) {
		t.Error("Spinner() should keep frames")
	}
}

func TestRenderHelpers(t *testing.T) {
	if !strings.Contains(RenderError("boom"), "[X] boom") {
		t.Error("RenderError should prefix the indicator")
	}
	if !strings.Contains(RenderWarning("careful"), "[!]") {
		t.Error("RenderWarning should prefix the indicator")
	}
	if !strings.Contains(RenderInfo("fyi"), "fyi") {
		t.Error("RenderInfo should keep the message")
	}
	if !strings.Contains(RenderLink("file.png"), "file.png") {
		t.Error("RenderLink should keep the text")
	}
}
