// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/relay-tui/internal/config"
	"github.com/jeranaias/relay-tui/internal/model"
	"github.com/jeranaias/relay-tui/internal/protocol"
	"github.com/jeranaias/relay-tui/internal/recording"
	"github.com/jeranaias/relay-tui/internal/session"
	"github.com/jeranaias/relay-tui/internal/transport"
	"github.com/jeranaias/relay-tui/internal/ui/styles"
	"github.com/jeranaias/relay-tui/internal/upload"
)

// =============================================================================
// FAKES AND HELPERS
// =============================================================================

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(cmd protocol.Command) error {
	data, err := protocol.Encode(cmd)
	if err != nil {
		return err
	}
	f.sent = append(f.sent, string(data))
	return nil
}

func (f *fakeSender) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type fakeUploader struct {
	res upload.Result
	err error
}

func (f *fakeUploader) Upload(ctx context.Context, room, text string, att upload.Attachment) (upload.Result, error) {
	return f.res, f.err
}

type deniedDevice struct{}

func (deniedDevice) Acquire(ctx context.Context) (recording.Stream, error) {
	return nil, errors.New("permission denied")
}

type fixture struct {
	sess   *session.Session
	sender *fakeSender
}

func newModel(t *testing.T, cfg session.Config) (Model, fixture) {
	t.Helper()
	if cfg.Room == "" {
		cfg.Room = "lobby"
	}
	if cfg.Self == "" {
		cfg.Self = "carol"
	}
	if cfg.ExcerptRunes == 0 {
		cfg.ExcerptRunes = 50
	}
	sess := session.New(cfg)
	sender := &fakeSender{}
	sess.SetChat(sender)

	m := New(Deps{Session: sess, Theme: styles.NewTheme("dark")})
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, fixture{sess: sess, sender: sender}
}

// step feeds one message through Update and returns the new model.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func stepCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = step(t, m, keyRunes(string(r)))
	}
	return m
}

func chatFrame(data string) ChannelEventMsg {
	return ChannelEventMsg{Event: transport.Event{
		Channel: session.ChatChannel,
		Kind:    transport.EventFrame,
		Data:    []byte(data),
	}}
}

// =============================================================================
// COMPOSER
// =============================================================================

func TestSubmitPlainText(t *testing.T) {
	m, fx := newModel(t, session.Config{})

	m = typeText(t, m, "hello")
	if got := fx.sess.Composer.Text(); got != "hello" {
		t.Fatalf("composer = %q, want %q", got, "hello")
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	want := `{"command":"send_message","message":"hello"}`
	if got := fx.sender.last(); got != want {
		t.Errorf("sent %s, want %s", got, want)
	}
	if m.InputValue() != "" {
		t.Errorf("input not cleared: %q", m.InputValue())
	}
}

func TestSubmitEmptyIsNoop(t *testing.T) {
	m, fx := newModel(t, session.Config{})

	m = typeText(t, m, "   ")
	step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(fx.sender.sent) != 0 {
		t.Errorf("sent %v, want nothing", fx.sender.sent)
	}
}

func TestReplyFromTimeline(t *testing.T) {
	m, fx := newModel(t, session.Config{})

	m = step(t, m, chatFrame(`{"command":"new_message","message_id":42,"user":"alice","message":"hello there"}`))
	if got := fx.sender.last(); got != `{"command":"mark_read","message_id":42}` {
		t.Fatalf("receipt = %s", got)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Pane() != PaneTimeline || m.Selected() != "42" {
		t.Fatalf("pane=%v selected=%q, want timeline/42", m.Pane(), m.Selected())
	}

	m = step(t, m, keyRunes("r"))
	if m.Pane() != PaneComposer {
		t.Error("reply should return focus to the composer")
	}
	mode := fx.sess.Modes.Current()
	if !mode.IsReplying() || mode.Target != "42" || mode.TargetAuthor != "alice" {
		t.Fatalf("mode = %+v", mode)
	}
	if !strings.Contains(m.View(), "replying to alice") {
		t.Error("reply bar not rendered")
	}

	m = typeText(t, m, "hi")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	want := `{"command":"send_message","message":"hi","parent_id":42}`
	if got := fx.sender.last(); got != want {
		t.Errorf("sent %s, want %s", got, want)
	}
	if !fx.sess.Modes.Current().IsIdle() {
		t.Error("mode not reset after dispatch")
	}
}

func TestEditOwnMessage(t *testing.T) {
	m, fx := newModel(t, session.Config{})

	m = step(t, m, chatFrame(`{"command":"new_message","message_id":7,"user":"carol","message":"foo"}`))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = step(t, m, keyRunes("e"))

	if m.InputValue() != "foo" {
		t.Fatalf("input = %q, want pre-filled %q", m.InputValue(), "foo")
	}
	for i := 0; i < 3; i++ {
		m = step(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m = typeText(t, m, "bar")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	want := `{"command":"edit_message","message_id":7,"message":"bar"}`
	if got := fx.sender.last(); got != want {
		t.Errorf("sent %s, want %s", got, want)
	}
	if m.InputValue() != "" || !fx.sess.Modes.Current().IsIdle() {
		t.Error("edit dispatch should clear the composer and reset the mode")
	}
}

func TestEditAndDeleteRequireOwnMessage(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"edit", "e"},
		{"delete", "d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fx := newModel(t, session.Config{})
			m = step(t, m, chatFrame(`{"command":"new_message","message_id":5,"user":"alice","message":"theirs"}`))
			m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
			m = step(t, m, keyRunes(tt.key))

			if m.notice == nil || m.notice.Level != NoticeWarning {
				t.Errorf("notice = %+v, want warning", m.notice)
			}
			if !fx.sess.Modes.Current().IsIdle() || m.ConfirmingDelete() != "" {
				t.Error("no action should start on another user's message")
			}
		})
	}
}

func TestEscCancelsEditAndClearsComposer(t *testing.T) {
	m, fx := newModel(t, session.Config{})

	m = step(t, m, chatFrame(`{"command":"new_message","message_id":7,"user":"carol","message":"foo"}`))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = step(t, m, keyRunes("e"))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if !fx.sess.Modes.Current().IsIdle() {
		t.Error("esc should leave editing")
	}
	if m.InputValue() != "" {
		t.Errorf("input = %q, want cleared", m.InputValue())
	}
}

func TestEscCancelsReplyKeepsDraft(t *testing.T) {
	m, fx := newModel(t, session.Config{})

	m = step(t, m, chatFrame(`{"command":"new_message","message_id":42,"user":"alice","message":"hello"}`))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = step(t, m, keyRunes("r"))
	m = typeText(t, m, "draft")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if !fx.sess.Modes.Current().IsIdle() {
		t.Error("esc should leave replying")
	}
	if m.InputValue() != "draft" {
		t.Errorf("input = %q, want draft kept", m.InputValue())
	}
}

// =============================================================================
// DELETE
// =============================================================================

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, fx := newModel(t, session.Config{})

	m = step(t, m, chatFrame(`{"command":"new_message","message_id":7,"user":"carol","message":"foo"}`))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m = step(t, m, keyRunes("d"))
	if m.ConfirmingDelete() != "7" {
		t.Fatalf("confirming = %q, want 7", m.ConfirmingDelete())
	}
	if len(fx.sender.sent) != 0 {
		t.Fatalf("sent %v before confirmation", fx.sender.sent)
	}

	m = step(t, m, keyRunes("n"))
	if m.ConfirmingDelete() != "" || len(fx.sender.sent) != 0 {
		t.Fatal("n should dismiss without sending")
	}

	m = step(t, m, keyRunes("d"))
	m = step(t, m, keyRunes("y"))
	if got := fx.sender.last(); got != `{"command":"delete_message","message_id":7}` {
		t.Errorf("sent %s", got)
	}

	m = step(t, m, chatFrame(`{"command":"message_deleted","message_id":7}`))
	if m.Selected() != "" {
		t.Errorf("selection %q survived deletion", m.Selected())
	}
	if fx.sess.Conversation.Has("7") {
		t.Error("message still in view")
	}
}

// =============================================================================
// TIMELINE
// =============================================================================

func TestJumpToParentHighlights(t *testing.T) {
	m, _ := newModel(t, session.Config{})

	m = step(t, m, chatFrame(`{"command":"new_message","message_id":1,"user":"alice","message":"question"}`))
	m = step(t, m, chatFrame(`{"command":"new_message","message_id":2,"user":"bob","message":"answer","parent":{"id":1,"sender":"alice","text":"question"}}`))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Selected() != "2" {
		t.Fatalf("selected = %q, want newest", m.Selected())
	}

	m, cmd := stepCmd(t, m, keyRunes("p"))
	if m.Selected() != "1" || m.Highlighted() != "1" {
		t.Fatalf("selected=%q highlighted=%q, want parent", m.Selected(), m.Highlighted())
	}
	if cmd == nil {
		t.Fatal("expected a highlight clear tick")
	}

	m = step(t, m, HighlightClearMsg{Seq: m.hlSeq - 1})
	if m.Highlighted() != "1" {
		t.Error("a stale clear must not end a newer highlight")
	}
	m = step(t, m, HighlightClearMsg{Seq: m.hlSeq})
	if m.Highlighted() != "" {
		t.Error("highlight not cleared")
	}
}

func TestSelectionIsClamped(t *testing.T) {
	m, _ := newModel(t, session.Config{})

	for _, f := range []string{
		`{"command":"new_message","message_id":1,"user":"alice","message":"a"}`,
		`{"command":"new_message","message_id":2,"user":"alice","message":"b"}`,
	} {
		m = step(t, m, chatFrame(f))
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.Selected() != "2" {
		t.Errorf("down past the end: selected %q", m.Selected())
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Selected() != "1" {
		t.Errorf("up past the start: selected %q", m.Selected())
	}
}

// =============================================================================
// CHANNELS AND VISIBILITY
// =============================================================================

func TestBlurSuppressesReceipts(t *testing.T) {
	m, fx := newModel(t, session.Config{})

	m = step(t, m, tea.BlurMsg{})
	m = step(t, m, chatFrame(`{"command":"new_message","message_id":9,"user":"alice","message":"ping"}`))
	if len(fx.sender.sent) != 0 {
		t.Fatalf("receipt sent while unfocused: %v", fx.sender.sent)
	}

	step(t, m, tea.FocusMsg{})
	if len(fx.sender.sent) != 0 {
		t.Errorf("catch-up is off by default, got %v", fx.sender.sent)
	}
}

func TestConfigReloadEnablesCatchUp(t *testing.T) {
	m, fx := newModel(t, session.Config{})

	cfg := config.Default()
	cfg.UI.CatchUpReceipts = true
	m = step(t, m, ConfigReloadMsg{Reload: config.Reload{Config: cfg}})

	m = step(t, m, tea.BlurMsg{})
	m = step(t, m, chatFrame(`{"command":"new_message","message_id":9,"user":"alice","message":"ping"}`))
	step(t, m, tea.FocusMsg{})

	if got := fx.sender.last(); got != `{"command":"mark_read","message_id":9}` {
		t.Errorf("catch-up receipt = %q", got)
	}
}

func TestChannelStateAndBadges(t *testing.T) {
	m, fx := newModel(t, session.Config{})

	m = step(t, m, ChannelEventMsg{Event: transport.Event{
		Channel: session.ChatChannel,
		Kind:    transport.EventState,
		State:   model.StateClosed,
		Err:     errors.New("eof"),
	}})
	if fx.sess.ChannelState(session.ChatChannel) != model.StateClosed {
		t.Error("chat state not recorded")
	}
	if m.notice == nil || !strings.Contains(m.notice.Text, "chat channel closed") {
		t.Errorf("notice = %+v", m.notice)
	}

	m = step(t, m, ChannelEventMsg{Event: transport.Event{
		Channel: session.NotificationChannel,
		Kind:    transport.EventFrame,
		Data:    []byte(`{"type":"unread_count_update","chat_id":3,"count":4}`),
	}})
	if n, ok := fx.sess.Badges.Count("3"); !ok || n != 4 {
		t.Errorf("badge = %d,%v want 4,true", n, ok)
	}
	if !strings.Contains(m.View(), "Unread") {
		t.Error("sidebar not rendered on a wide terminal")
	}
}

func TestChannelEventRearmsListener(t *testing.T) {
	events := make(chan transport.Event, 1)
	sess := session.New(session.Config{Room: "lobby", Self: "carol"})
	sess.SetChat(&fakeSender{})
	m := New(Deps{Session: sess, Events: events})

	_, cmd := stepCmd(t, m, chatFrame(`{"command":"new_message","message_id":1,"user":"alice","message":"a"}`))
	if cmd == nil {
		t.Fatal("listener not re-armed")
	}
	events <- transport.Event{Channel: session.ChatChannel, Kind: transport.EventState, State: model.StateOpen}
	if _, ok := cmd().(ChannelEventMsg); !ok {
		t.Error("re-armed listener should deliver the next event")
	}
}

// =============================================================================
// UPLOAD
// =============================================================================

func stagePath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOwnMessageFollowsTimeline(t *testing.T) {
	m, _ := newModel(t, session.Config{})
	for i := 1; i <= 60; i++ {
		m = step(t, m, chatFrame(fmt.Sprintf(`{"command":"new_message","message_id":%d,"user":"bob","message":"line %d"}`, i, i)))
	}
	if !m.viewport.AtBottom() {
		t.Fatal("a view at the end should stay there")
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	if m.viewport.AtBottom() {
		t.Fatal("page up should leave the end")
	}

	m = step(t, m, chatFrame(`{"command":"new_message","message_id":61,"user":"bob","message":"other"}`))
	if m.viewport.AtBottom() {
		t.Error("another user's message must not move a scrolled-back view")
	}

	m = step(t, m, chatFrame(`{"command":"new_message","message_id":62,"user":"carol","message":"mine"}`))
	if !m.viewport.AtBottom() {
		t.Error("own message should scroll to the end")
	}
}

func TestAttachUploadAnnounce(t *testing.T) {
	up := &fakeUploader{res: upload.Result{FileURL: "/media/photo.png", MessageID: "99"}}
	m, fx := newModel(t, session.Config{Uploader: up})

	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if !m.Attaching() {
		t.Fatal("attach prompt not open")
	}
	m = typeText(t, m, stagePath(t))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Attaching() || !fx.sess.Composer.HasAttachment() {
		t.Fatal("file not staged")
	}

	m = typeText(t, m, "look")
	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected an upload cmd")
	}
	if len(fx.sender.sent) != 0 {
		t.Fatal("nothing may be announced before the upload succeeds")
	}
	flows := fx.sess.Pending.InFlight()
	if len(flows) != 1 {
		t.Fatalf("in flight = %d, want 1", len(flows))
	}

	m = step(t, m, UploadDoneMsg{FlowID: flows[0].FlowID, Result: up.res})

	want := `{"command":"send_message","message":"look","message_id":99,"file_url":"/media/photo.png"}`
	if got := fx.sender.last(); got != want {
		t.Errorf("sent %s, want %s", got, want)
	}
	if fx.sess.Composer.HasAttachment() || m.InputValue() != "" {
		t.Error("composer not cleared after announce")
	}
}

func TestEditBegunDuringUploadSurvivesAnnounce(t *testing.T) {
	up := &fakeUploader{res: upload.Result{FileURL: "/media/photo.png", MessageID: "99"}}
	m, fx := newModel(t, session.Config{Uploader: up})
	m = step(t, m, chatFrame(`{"command":"new_message","message_id":7,"user":"carol","message":"foo"}`))

	fx.sess.Composer.Stage(stagePath(t))
	m = typeText(t, m, "look")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	flowID := fx.sess.Pending.InFlight()[0].FlowID

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = step(t, m, keyRunes("e"))
	m = step(t, m, UploadDoneMsg{FlowID: flowID, Result: up.res})

	want := `{"command":"send_message","message":"look","message_id":99,"file_url":"/media/photo.png"}`
	if got := fx.sender.last(); got != want {
		t.Fatalf("sent %s, want %s", got, want)
	}
	if mode := fx.sess.Modes.Current(); !mode.IsEditing() || mode.Target != "7" {
		t.Fatalf("mode = %v %q, want editing 7", mode.Kind, mode.Target)
	}
	if m.InputValue() != "foo" {
		t.Fatalf("input = %q, want %q", m.InputValue(), "foo")
	}

	for i := 0; i < 3; i++ {
		m = step(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m = typeText(t, m, "bar")
	step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	want = `{"command":"edit_message","message_id":7,"message":"bar"}`
	if got := fx.sender.last(); got != want {
		t.Errorf("sent %s, want %s", got, want)
	}
}

func TestUploadFailureKeepsComposer(t *testing.T) {
	up := &fakeUploader{err: upload.ErrUploadRejected}
	m, fx := newModel(t, session.Config{Uploader: up})

	fx.sess.Composer.Stage(stagePath(t))
	m = typeText(t, m, "look")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	flowID := fx.sess.Pending.InFlight()[0].FlowID

	m = step(t, m, UploadDoneMsg{FlowID: flowID, Err: up.err})

	if len(fx.sender.sent) != 0 {
		t.Errorf("sent %v after failed upload", fx.sender.sent)
	}
	if m.notice == nil || m.notice.Level != NoticeError {
		t.Errorf("notice = %+v, want error", m.notice)
	}
	if m.InputValue() != "look" || !fx.sess.Composer.HasAttachment() {
		t.Error("composer should be untouched")
	}
}

func TestEscAbandonsUpload(t *testing.T) {
	up := &fakeUploader{res: upload.Result{FileURL: "/media/photo.png", MessageID: "99"}}
	m, fx := newModel(t, session.Config{Uploader: up})

	fx.sess.Composer.Stage(stagePath(t))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	flowID := fx.sess.Pending.InFlight()[0].FlowID

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	step(t, m, UploadDoneMsg{FlowID: flowID, Result: up.res})

	if len(fx.sender.sent) != 0 {
		t.Errorf("abandoned upload was announced: %v", fx.sender.sent)
	}
}

// =============================================================================
// RECORDING
// =============================================================================

func TestRecordWithoutRecorder(t *testing.T) {
	m, _ := newModel(t, session.Config{})

	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd != nil {
		t.Error("no cmd expected without a recorder")
	}
	if m.notice == nil || m.notice.Level != NoticeWarning {
		t.Errorf("notice = %+v", m.notice)
	}
}

func TestRecordDeviceDenied(t *testing.T) {
	rec := recording.NewController(deniedDevice{}, recording.Options{})
	m, _ := newModel(t, session.Config{Recorder: rec})

	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd == nil || !m.acquiring {
		t.Fatal("expected device acquisition to start")
	}

	err := rec.Start(context.Background())
	m = step(t, m, RecordingStartedMsg{Err: err})

	if m.acquiring {
		t.Error("acquiring flag not cleared")
	}
	if rec.State() != recording.StateIdle {
		t.Errorf("recorder state = %v, want idle", rec.State())
	}
	if m.notice == nil || !strings.Contains(m.notice.Text, "microphone unavailable") {
		t.Errorf("notice = %+v", m.notice)
	}
}

func TestStaleRecordingTickIgnored(t *testing.T) {
	rec := recording.NewController(deniedDevice{}, recording.Options{})
	m, _ := newModel(t, session.Config{Recorder: rec})

	_, cmd := stepCmd(t, m, RecordingTickMsg{Generation: 3})
	if cmd != nil {
		t.Error("tick for an idle recorder should not re-arm")
	}
}

func TestRecordingStoppedEmpty(t *testing.T) {
	m, fx := newModel(t, session.Config{Uploader: &fakeUploader{}})

	m = step(t, m, RecordingStoppedMsg{Err: recording.ErrEmptyRecording})
	if m.notice == nil || m.notice.Level != NoticeWarning {
		t.Errorf("notice = %+v, want warning", m.notice)
	}
	if fx.sess.Pending.Len() != 0 {
		t.Error("an empty recording must not be uploaded")
	}
}

// =============================================================================
// VIEW
// =============================================================================

func TestViewRendersMessages(t *testing.T) {
	m, _ := newModel(t, session.Config{})

	if !strings.Contains(m.View(), "No messages yet") {
		t.Error("empty state missing")
	}

	m = step(t, m, chatFrame(`{"command":"new_message","message_id":1,"user":"alice","message":"hello world","timestamp":"10:00"}`))
	m = step(t, m, chatFrame(`{"command":"new_message","message_id":2,"user":"carol","message":"","file_url":"/media/clip.webm"}`))
	m = step(t, m, chatFrame(`{"command":"message_read","message_id":2}`))
	m = step(t, m, chatFrame(`{"command":"message_updated","message_id":1,"message":"hello again"}`))

	view := m.View()
	for _, want := range []string{"#lobby", "alice", "hello again", "(edited)", "[voice] clip.webm", "seen"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHelpOverlayToggle(t *testing.T) {
	m, _ := newModel(t, session.Config{})

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = step(t, m, keyRunes("?"))
	if !strings.Contains(m.View(), "jump to parent") {
		t.Error("help overlay not shown")
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Error("esc should close help")
	}
}
