// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/relay-tui/internal/config"
	"github.com/jeranaias/relay-tui/internal/model"
	"github.com/jeranaias/relay-tui/internal/session"
	"github.com/jeranaias/relay-tui/internal/transport"
	"github.com/jeranaias/relay-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Pane identifies which part of the view receives keys.
type Pane int

const (
	PaneComposer Pane = iota
	PaneTimeline
)

// Layout constants for fixed-height chrome.
const (
	headerHeight    = 1
	statusBarHeight = 1
	sidebarWidth    = 24
	minViewportRows = 3
)

// defaultHighlight is used when the config does not set one.
const defaultHighlight = 2 * time.Second

// =============================================================================
// CHAT MODEL
// =============================================================================

// Deps are the collaborators the room view is built from. Events and
// Reloads may be nil in tests.
type Deps struct {
	Session *session.Session
	Theme   *styles.Theme
	Config  *config.Config
	Events  <-chan transport.Event
	Reloads <-chan config.Reload
	Logger  zerolog.Logger
}

// Model is the Bubble Tea model for one room.
type Model struct {
	session *session.Session
	theme   *styles.Theme
	keys    KeyMap
	log     zerolog.Logger

	events  <-chan transport.Event
	reloads <-chan config.Reload

	// Components
	input     textinput.Model
	pathInput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	help      help.Model

	// UI state
	pane      Pane
	selected  model.ID
	highlight model.ID
	hlSeq     int
	hlFor     time.Duration
	attaching bool
	confirm   model.ID // message awaiting delete confirmation
	showHelp  bool
	notice    *notice

	// Recorder lifecycle as seen by the UI
	acquiring  bool
	finalizing bool

	// Line offset of each rendered message, for keeping the selection
	// in view.
	msgLines map[model.ID][2]int

	width  int
	height int
	ready  bool
}

// New creates the room view.
func New(deps Deps) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	pi := textinput.New()
	pi.Prompt = "file: "
	pi.Placeholder = "path to attach"
	pi.CharLimit = 1024

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = styles.LineSpinner.Spinner()

	theme := deps.Theme
	if theme == nil {
		theme = styles.NewTheme("dark")
	}
	sp.Style = theme.Spinner

	hlFor := defaultHighlight
	if deps.Config != nil && deps.Config.UI.HighlightMs > 0 {
		hlFor = deps.Config.UI.Highlight()
	}

	return Model{
		session:   deps.Session,
		theme:     theme,
		keys:      DefaultKeyMap(),
		log:       deps.Logger.With().Str("component", "ui").Logger(),
		events:    deps.Events,
		reloads:   deps.Reloads,
		input:     ti,
		pathInput: pi,
		viewport:  vp,
		spinner:   sp,
		help:      help.New(),
		pane:      PaneComposer,
		hlFor:     hlFor,
		msgLines:  make(map[model.ID][2]int),
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the blinking cursor and the event listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		listenEvents(m.events),
		listenReloads(m.reloads),
	)
}

// Update dispatches one message, then re-syncs the composer and the
// layout with whatever the handler changed.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.syncInput()
	m.layout()
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.FocusMsg:
		return m.handleVisibility(true)

	case tea.BlurMsg:
		return m.handleVisibility(false)

	case ChannelEventMsg:
		return m.handleChannelEvent(msg)

	case channelsDrainedMsg:
		m.log.Debug().Msg("transport event stream closed")
		return m, nil

	case ConfigReloadMsg:
		return m.handleConfigReload(msg)

	case UploadDoneMsg:
		return m.handleUploadDone(msg)

	case RecordingStartedMsg:
		return m.handleRecordingStarted(msg)

	case RecordingTickMsg:
		return m.handleRecordingTick(msg)

	case RecordingStoppedMsg:
		return m.handleRecordingStopped(msg)

	case HighlightClearMsg:
		if msg.Seq == m.hlSeq {
			m.highlight = ""
			m.refreshTimeline(false)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInputs(msg)
}

// View renders the room.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// GETTERS
// =============================================================================

// Session returns the session driven by the view.
func (m Model) Session() *session.Session {
	return m.session
}

// Pane returns the focused pane.
func (m Model) Pane() Pane {
	return m.pane
}

// Selected returns the selected message ID, or the zero ID.
func (m Model) Selected() model.ID {
	return m.selected
}

// Highlighted returns the message currently highlighted by a jump.
func (m Model) Highlighted() model.ID {
	return m.highlight
}

// ConfirmingDelete returns the message awaiting delete confirmation.
func (m Model) ConfirmingDelete() model.ID {
	return m.confirm
}

// Attaching reports whether the attach-path prompt is open.
func (m Model) Attaching() bool {
	return m.attaching
}

// InputValue returns the composer text as shown.
func (m Model) InputValue() string {
	return m.input.Value()
}

// busy reports whether the spinner should animate.
func (m Model) busy() bool {
	return m.session != nil && (len(m.session.Pending.InFlight()) > 0 || m.acquiring || m.finalizing)
}
