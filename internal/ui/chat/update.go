// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/relay-tui/internal/compose"
	"github.com/jeranaias/relay-tui/internal/model"
	"github.com/jeranaias/relay-tui/internal/recording"
	"github.com/jeranaias/relay-tui/internal/session"
	"github.com/jeranaias/relay-tui/internal/transport"
	"github.com/jeranaias/relay-tui/internal/ui/styles"
	"github.com/jeranaias/relay-tui/internal/upload"
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.help.Width = msg.Width
	m.input.Width = max(msg.Width-lipgloss.Width(m.input.Prompt)-2, 10)
	m.pathInput.Width = m.input.Width
	m.ready = true

	m.layout()
	m.refreshTimeline(false)
	return m, nil
}

// layout sizes the viewport to the space left by the header, the composer
// and the status bar. The composer grows with its reply, edit and staged
// bars, so this runs after every update.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	h := m.height - headerHeight - statusBarHeight - lipgloss.Height(m.renderComposer())
	if h < minViewportRows {
		h = minViewportRows
	}
	w := m.timelineWidth()
	if m.viewport.Height != h || m.viewport.Width != w {
		m.viewport.Height = h
		m.viewport.Width = w
	}
}

// timelineWidth is the viewport width with the sidebar taken out.
func (m Model) timelineWidth() int {
	if m.showSidebar() {
		return max(m.width-sidebarWidth, 20)
	}
	return max(m.width, 20)
}

func (m Model) showSidebar() bool {
	return m.theme.GetLayoutMode() == styles.LayoutWide
}

// refreshTimeline re-renders the message list. follow scrolls to the end;
// a view already at the end stays there.
func (m *Model) refreshTimeline(follow bool) {
	if !m.ready || m.session == nil {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTimeline(m.timelineWidth()))
	if follow || atBottom {
		m.viewport.GotoBottom()
	}
}

// syncInput copies the composer text into the textinput when a session
// operation changed it.
func (m *Model) syncInput() {
	if m.session == nil {
		return
	}
	if text := m.session.Composer.Text(); text != m.input.Value() {
		m.input.SetValue(text)
		m.input.CursorEnd()
	}
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	m.notice = nil

	if m.confirm != "" {
		return m.handleConfirmKey(msg)
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Cancel) {
			m.showHelp = false
		}
		return m, nil
	}
	if m.attaching {
		return m.handleAttachKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m.handleCancel()
	case key.Matches(msg, m.keys.Focus):
		return m.toggleFocus(), nil
	case key.Matches(msg, m.keys.Attach):
		return m.openAttachPrompt()
	case key.Matches(msg, m.keys.Record):
		return m.toggleRecording()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.pane == PaneTimeline {
		return m.handleTimelineKey(msg)
	}
	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}
	return m.updateInputs(msg)
}

// updateInputs forwards a message to the active textinput and mirrors the
// composer text into the session.
func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.attaching {
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}
	m.input, cmd = m.input.Update(msg)
	if m.session != nil {
		m.session.Composer.SetText(m.input.Value())
	}
	return m, cmd
}

func (m Model) toggleFocus() Model {
	if m.pane == PaneComposer {
		m.pane = PaneTimeline
		m.input.Blur()
		if m.selected == "" {
			if last := m.session.Conversation.Last(); last != nil {
				m.selected = last.ID
			}
		}
	} else {
		m.pane = PaneComposer
		m.input.Focus()
	}
	m.refreshTimeline(false)
	m.ensureVisible(m.selected)
	return m
}

func (m Model) focusComposer() Model {
	m.pane = PaneComposer
	m.input.Focus()
	m.refreshTimeline(false)
	return m
}

// handleCancel unwinds the innermost active thing: a recording, then an
// upload, then the reply or edit mode, then the staged file.
func (m Model) handleCancel() (Model, tea.Cmd) {
	s := m.session
	switch {
	case s.Recorder != nil && s.Recorder.Recording():
		s.Recorder.Cancel()
		m.notice = &notice{Level: NoticeInfo, Text: "recording discarded"}
	case s.Pending.Busy(upload.PurposeAttachment):
		if s.CancelUpload() {
			m.notice = &notice{Level: NoticeInfo, Text: "upload cancelled"}
		}
	case !s.Modes.Current().IsIdle():
		s.Modes.Cancel()
	case s.Composer.HasAttachment():
		s.Composer.Unstage()
	case m.pane == PaneTimeline:
		m = m.focusComposer()
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.confirm
		m.confirm = ""
		if err := m.session.Delete(id); err != nil {
			m.notice = &notice{Level: NoticeError, Text: "delete failed: " + err.Error()}
		}
		m.session.RecordActivity()
	case key.Matches(msg, m.keys.Deny):
		m.confirm = ""
	}
	return m, nil
}

// =============================================================================
// ATTACH PROMPT
// =============================================================================

func (m Model) openAttachPrompt() (Model, tea.Cmd) {
	if m.session.Modes.Current().IsEditing() {
		m.notice = &notice{Level: NoticeWarning, Text: "attachments cannot be added to an edit"}
		return m, nil
	}
	m.attaching = true
	m.pathInput.Reset()
	m.pathInput.Focus()
	m.input.Blur()
	return m, nil
}

func (m Model) closeAttachPrompt() Model {
	m.attaching = false
	m.pathInput.Blur()
	m.pathInput.Reset()
	if m.pane == PaneComposer {
		m.input.Focus()
	}
	return m
}

func (m Model) handleAttachKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m.closeAttachPrompt(), nil
	case key.Matches(msg, m.keys.Submit):
		path := strings.TrimSpace(m.pathInput.Value())
		m = m.closeAttachPrompt()
		if path == "" {
			return m, nil
		}
		m.session.Composer.Stage(path)
		m = m.focusComposer()
		return m, nil
	}
	return m.updateInputs(msg)
}

// =============================================================================
// SUBMIT AND UPLOAD
// =============================================================================

func (m Model) submit() (Model, tea.Cmd) {
	s := m.session
	s.Composer.SetText(m.input.Value())

	plan, job, err := s.Submit()
	if err != nil {
		m.notice = &notice{Level: NoticeError, Text: err.Error()}
		return m, nil
	}
	if plan.Kind == compose.PlanNone {
		return m, nil
	}
	s.RecordActivity()

	if job == nil {
		return m, nil
	}
	m.notice = &notice{Level: NoticeInfo, Text: "uploading " + job.Flow.FileName}
	return m, tea.Batch(uploadCmd(job), m.spinner.Tick)
}

func (m Model) handleUploadDone(msg UploadDoneMsg) (Model, tea.Cmd) {
	s := m.session
	flow, ok := s.Pending.Get(msg.FlowID)
	if !ok {
		return m, nil
	}
	purpose := flow.Purpose

	if _, err := s.CompleteUpload(msg.FlowID, msg.Result, msg.Err); err != nil {
		m.notice = &notice{Level: NoticeError, Text: uploadFailureText(purpose, err)}
	}
	return m, nil
}

func uploadFailureText(purpose upload.Purpose, err error) string {
	what := "upload"
	if purpose == upload.PurposeVoice {
		what = "voice message"
	}
	var uerr *upload.Error
	if errors.As(err, &uerr) && uerr.Type == upload.ErrTypeTooLarge {
		return what + " too large: " + err.Error()
	}
	return what + " failed: " + err.Error()
}

// =============================================================================
// RECORDING
// =============================================================================

func (m Model) toggleRecording() (Model, tea.Cmd) {
	rec := m.session.Recorder
	switch {
	case rec == nil:
		m.notice = &notice{Level: NoticeWarning, Text: "voice recording is not configured"}
		return m, nil
	case m.acquiring || m.finalizing:
		return m, nil
	case rec.Recording():
		m.finalizing = true
		return m, tea.Batch(stopRecordingCmd(rec), m.spinner.Tick)
	}
	m.acquiring = true
	return m, tea.Batch(startRecordingCmd(rec), m.spinner.Tick)
}

func (m Model) handleRecordingStarted(msg RecordingStartedMsg) (Model, tea.Cmd) {
	m.acquiring = false
	if msg.Err != nil {
		m.notice = &notice{Level: NoticeWarning, Text: "microphone unavailable: " + msg.Err.Error()}
		return m, nil
	}
	return m, recordingTick(msg.Generation)
}

func (m Model) handleRecordingTick(msg RecordingTickMsg) (Model, tea.Cmd) {
	rec := m.session.Recorder
	if rec == nil || !rec.Recording() || rec.Generation() != msg.Generation {
		return m, nil
	}
	if rec.LimitReached() && !m.finalizing {
		m.finalizing = true
		m.notice = &notice{Level: NoticeInfo, Text: "recording limit reached"}
		return m, stopRecordingCmd(rec)
	}
	return m, recordingTick(msg.Generation)
}

func (m Model) handleRecordingStopped(msg RecordingStoppedMsg) (Model, tea.Cmd) {
	m.finalizing = false
	if msg.Err != nil {
		level := NoticeError
		if errors.Is(msg.Err, recording.ErrEmptyRecording) {
			level = NoticeWarning
		}
		m.notice = &notice{Level: level, Text: "recording: " + msg.Err.Error()}
		return m, nil
	}

	job, err := m.session.SubmitVoice(msg.Artifact)
	if err != nil {
		m.notice = &notice{Level: NoticeError, Text: err.Error()}
		return m, nil
	}
	m.session.RecordActivity()
	return m, tea.Batch(uploadCmd(job), m.spinner.Tick)
}

// =============================================================================
// TIMELINE
// =============================================================================

func (m Model) handleTimelineKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Up):
		return m.moveSelection(-1), nil
	case key.Matches(msg, m.keys.Down):
		return m.moveSelection(1), nil
	}

	sel, ok := m.session.Conversation.Get(m.selected)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Reply):
		excerpt := sel.Text
		if excerpt == "" && sel.Attachment != nil {
			excerpt = "[" + sel.Attachment.Kind.Label() + "]"
		}
		m.session.Modes.BeginReply(sel.ID, sel.Author, excerpt)
		return m.focusComposer(), nil

	case key.Matches(msg, m.keys.Edit):
		if !sel.Own {
			m.notice = &notice{Level: NoticeWarning, Text: "only your own messages can be edited"}
			return m, nil
		}
		m.session.Modes.BeginEdit(sel.ID, sel.Text)
		return m.focusComposer(), nil

	case key.Matches(msg, m.keys.Delete):
		if !sel.Own {
			m.notice = &notice{Level: NoticeWarning, Text: "only your own messages can be deleted"}
			return m, nil
		}
		m.confirm = sel.ID
		return m, nil

	case key.Matches(msg, m.keys.Parent):
		return m.jumpToParent(sel)
	}
	return m, nil
}

// moveSelection moves the selection by delta, clamped to the timeline. With
// nothing selected it starts from the newest message.
func (m Model) moveSelection(delta int) Model {
	conv := m.session.Conversation
	if conv.IsEmpty() {
		return m
	}
	idx := conv.IndexOf(m.selected)
	if idx < 0 {
		idx = conv.Len() - 1
	} else {
		idx += delta
	}
	idx = max(0, min(idx, conv.Len()-1))
	m.selected = conv.At(idx).ID
	m.refreshTimeline(false)
	m.ensureVisible(m.selected)
	return m
}

// jumpToParent selects the parent of msg when it is still in the view and
// highlights it for a short time.
func (m Model) jumpToParent(msg *model.Message) (Model, tea.Cmd) {
	if msg.Parent == nil {
		return m, nil
	}
	if !m.session.Conversation.Has(msg.Parent.ID) {
		m.notice = &notice{Level: NoticeInfo, Text: "original message is not in view"}
		return m, nil
	}
	m.selected = msg.Parent.ID
	m.highlight = msg.Parent.ID
	m.hlSeq++
	m.refreshTimeline(false)
	m.ensureVisible(m.selected)
	return m, clearHighlightAfter(m.hlFor, m.hlSeq)
}

// ensureVisible scrolls the viewport so the rendered lines of id are shown.
func (m *Model) ensureVisible(id model.ID) {
	span, ok := m.msgLines[id]
	if !ok {
		return
	}
	top, bottom := span[0], span[1]
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height)
	}
}

// =============================================================================
// CHANNELS
// =============================================================================

func (m Model) handleChannelEvent(msg ChannelEventMsg) (Model, tea.Cmd) {
	ev := msg.Event
	s := m.session

	switch ev.Kind {
	case transport.EventState:
		s.SetChannelState(ev.Channel, ev.State)
		switch {
		case ev.State == model.StateClosed:
			text := ev.Channel + " channel closed"
			if ev.Err != nil {
				text += ": " + ev.Err.Error()
			}
			m.notice = &notice{Level: NoticeWarning, Text: text}
		case ev.State == model.StateConnecting && ev.Attempt > 0:
			m.notice = &notice{Level: NoticeInfo, Text: fmt.Sprintf("reconnecting %s (attempt %d)", ev.Channel, ev.Attempt)}
		}

	case transport.EventFrame:
		switch ev.Channel {
		case session.ChatChannel:
			out, err := s.HandleChatFrame(ev.Data)
			if err == nil && out.Applied {
				m.applyOutcomeToView(out.Target, out.Removed)
				// Own messages always scroll the view to the end.
				m.refreshTimeline(out.Appended != nil && out.Appended.Own)
			}
		case session.NotificationChannel:
			// Badges live outside the viewport content.
			_, _ = s.HandleNotificationFrame(ev.Data)
		}
	}
	return m, listenEvents(m.events)
}

// applyOutcomeToView drops UI references to a removed message.
func (m *Model) applyOutcomeToView(target model.ID, removed bool) {
	if !removed {
		return
	}
	if m.selected == target {
		m.selected = ""
	}
	if m.highlight == target {
		m.highlight = ""
	}
	if m.confirm == target {
		m.confirm = ""
	}
	delete(m.msgLines, target)
}

func (m Model) handleVisibility(visible bool) (Model, tea.Cmd) {
	if n := m.session.SetVisible(visible); n > 0 {
		m.log.Debug().Int("receipts", n).Msg("sent catch-up read receipts")
	}
	return m, nil
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func (m Model) handleConfigReload(msg ConfigReloadMsg) (Model, tea.Cmd) {
	r := msg.Reload
	if r.Err != nil {
		m.notice = &notice{Level: NoticeWarning, Text: "config reload failed: " + r.Err.Error()}
		return m, listenReloads(m.reloads)
	}
	if cfg := r.Config; cfg != nil {
		theme := styles.NewTheme(cfg.UI.Theme)
		theme.SetSize(m.width, m.height)
		m.theme = theme
		m.spinner.Style = theme.Spinner
		m.session.Events.SetCatchUp(cfg.UI.CatchUpReceipts)
		if cfg.UI.HighlightMs > 0 {
			m.hlFor = cfg.UI.Highlight()
		}
		m.log.Info().Str("theme", cfg.UI.Theme).Bool("catch_up", cfg.UI.CatchUpReceipts).Msg("config reloaded")
		m.refreshTimeline(false)
	}
	return m, listenReloads(m.reloads)
}
