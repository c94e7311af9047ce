// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/relay-tui/internal/model"
	"github.com/jeranaias/relay-tui/internal/session"
	"github.com/jeranaias/relay-tui/internal/ui/styles"
	"github.com/jeranaias/relay-tui/internal/util"
)

// =============================================================================
// MAIN VIEW
// =============================================================================

func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 || m.session == nil {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	header := m.renderHeader()
	composer := m.renderComposer()
	status := m.renderStatusBar()

	body := m.viewport.View()
	if m.showSidebar() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderSidebar(m.viewport.Height))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, composer, status)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	s := m.session
	title := m.theme.HeaderTitle.Render("relay")
	room := m.theme.HeaderMeta.Render(" | #" + util.TruncateWidth(s.Room(), 32))
	user := ""
	if s.Self() != "" {
		user = m.theme.HeaderMeta.Render(" | " + s.Self())
	}

	chat := s.ChannelState(session.ChatChannel)
	indicator := m.theme.ConnectionState(chat).Render(" " + stateIndicator(chat))

	return m.theme.Header.Width(m.width).MaxWidth(m.width).MaxHeight(headerHeight).
		Render(title + room + user + indicator)
}

func stateIndicator(s model.ConnectionState) string {
	switch s {
	case model.StateOpen:
		return styles.StatusIndicators.Success
	case model.StateConnecting:
		return styles.StatusIndicators.Pending
	default:
		return styles.StatusIndicators.Error
	}
}

// =============================================================================
// TIMELINE
// =============================================================================

// renderTimeline renders every message and records the line span of each
// so the selection can be scrolled into view.
func (m *Model) renderTimeline(width int) string {
	conv := m.session.Conversation
	m.msgLines = make(map[model.ID][2]int, conv.Len())

	if conv.IsEmpty() {
		return m.renderEmptyState(width)
	}

	var sb strings.Builder
	line := 0
	for i, msg := range conv.Messages() {
		if i > 0 {
			sb.WriteString("\n")
		}
		block := m.renderMessage(msg, width)
		h := lipgloss.Height(block)
		m.msgLines[msg.ID] = [2]int{line, line + h}
		line += h
		sb.WriteString(block)
	}
	return sb.String()
}

func (m Model) renderEmptyState(width int) string {
	text := m.theme.EmptyTimeline.Render("No messages yet. Say hello.")
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, "\n"+text)
}

// renderMessage renders one message. Own and other messages share this path
// and differ only in style and alignment.
func (m Model) renderMessage(msg *model.Message, width int) string {
	bubbleWidth := max(min(width*3/4, width-6), 16)

	style := m.theme.OtherBubble
	author := m.theme.Author.Render(msg.Author)
	if msg.Own {
		style = m.theme.OwnBubble
		author = m.theme.OwnAuthor.Render("you")
	}

	meta := author
	if msg.Timestamp != "" {
		meta += " " + m.theme.Timestamp.Render(msg.Timestamp)
	}
	switch {
	case msg.ID == m.highlight:
		meta = m.theme.Highlighted.Render(meta)
		style = style.BorderForeground(styles.Amber).BorderStyle(lipgloss.DoubleBorder())
	case msg.ID == m.selected && m.pane == PaneTimeline:
		meta = m.theme.Selected.Render(meta)
		style = style.BorderStyle(lipgloss.ThickBorder())
	}

	inner := bubbleWidth - style.GetHorizontalPadding()
	parts := []string{meta}
	if p := msg.Parent; p != nil {
		quote := p.Author + ": " + p.Excerpt
		parts = append(parts, m.theme.ParentQuote.Render(util.TruncateWidth(quote, max(inner-2, 4))))
	}
	if msg.Text != "" {
		parts = append(parts, msg.Text)
	}
	if a := msg.Attachment; a != nil {
		parts = append(parts, m.theme.Attachment.Render(fmt.Sprintf("[%s] %s", a.Kind.Label(), a.Name())))
	}

	var flags []string
	if msg.Edited {
		flags = append(flags, m.theme.EditedMarker.Render("(edited)"))
	}
	if msg.Own && msg.Read {
		flags = append(flags, m.theme.SeenMarker.Render("seen"))
	}
	if len(flags) > 0 {
		parts = append(parts, strings.Join(flags, " "))
	}

	bubble := style.Width(bubbleWidth).Render(strings.Join(parts, "\n"))
	if msg.Own {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
	}
	return bubble
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar(height int) string {
	inner := sidebarWidth - 3
	lines := []string{m.theme.SidebarTitle.Render("Unread")}

	badges := m.session.Badges.List()
	if len(badges) == 0 {
		lines = append(lines, m.theme.EmptyTimeline.Render("none"))
	}
	for _, b := range badges {
		count := m.theme.Badge.Render(fmt.Sprintf("%d", b.Count))
		label := util.TruncateWidth("#"+b.ChatID.String(), max(inner-lipgloss.Width(count)-1, 1))
		lines = append(lines, m.theme.BadgeLabel.Render(label)+" "+count)
	}

	return m.theme.Sidebar.
		Width(sidebarWidth - 1).
		Height(height).
		MaxHeight(height).
		Render(strings.Join(lines, "\n"))
}

// =============================================================================
// COMPOSER
// =============================================================================

// renderComposer renders the bars above the input and the input itself.
func (m Model) renderComposer() string {
	if m.session == nil {
		return ""
	}
	s := m.session
	width := max(m.width, 20)
	var lines []string

	if n := m.notice; n != nil {
		lines = append(lines, renderNotice(*n))
	}

	if m.confirm != "" {
		lines = append(lines, m.theme.ConfirmBar.Render("Delete this message? (y/n)"))
	}

	switch mode := s.Modes.Current(); mode.Kind {
	case model.ModeReplying:
		bar := fmt.Sprintf("replying to %s: %s", mode.TargetAuthor, mode.TargetExcerpt)
		lines = append(lines, m.theme.ReplyBar.Render(util.TruncateWidth(bar, width-4)+"  (Esc cancel)"))
	case model.ModeEditing:
		lines = append(lines, m.theme.EditBar.Render("editing message  (Esc cancel)"))
	}

	if staged := s.Composer.Staged(); staged != nil {
		lines = append(lines, m.theme.StagedFile.Render("attached: "+util.TruncateWidth(staged.Name(), width-16)))
	}

	for _, flow := range s.Pending.InFlight() {
		lines = append(lines, m.theme.StagedFile.Render(m.spinner.View()+" uploading "+flow.FileName))
	}

	if rec := s.Recorder; rec != nil {
		switch {
		case m.acquiring:
			lines = append(lines, m.theme.RecordingBar.Render(m.spinner.View()+" opening microphone"))
		case m.finalizing:
			lines = append(lines, m.theme.RecordingBar.Render(m.spinner.View()+" finishing recording"))
		case rec.Recording():
			lines = append(lines, m.theme.RecordingBar.Render(
				styles.StatusIndicators.Active+" REC "+rec.Clock()+"  (C-r send, Esc discard)"))
		}
	}

	input := m.input.View()
	if m.attaching {
		input = m.pathInput.View()
	}
	lines = append(lines, m.theme.InputContainer.Width(width-2).Render(input))

	return strings.Join(lines, "\n")
}

func renderNotice(n notice) string {
	switch n.Level {
	case NoticeError:
		return styles.RenderError(n.Text)
	case NoticeWarning:
		return styles.RenderWarning(n.Text)
	default:
		return styles.RenderInfo(n.Text)
	}
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	st := m.session.GetStatus()
	sep := m.theme.ShortcutDesc.Render(" | ")

	left := []string{
		"chat " + m.theme.ConnectionState(st.Chat).Render(st.Chat.String()),
		"notify " + m.theme.ConnectionState(st.Notifications).Render(st.Notifications.String()),
		fmt.Sprintf("%d msgs", st.Messages),
	}
	if st.Unread > 0 {
		left = append(left, m.theme.WarningStyle.Render(fmt.Sprintf("%d unread", st.Unread)))
	}
	left = append(left, session.FormatDuration(st.Duration))
	leftText := strings.Join(left, sep)

	right := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.pane == PaneTimeline {
		right = m.theme.ShortcutKey.Render("r") + m.theme.ShortcutDesc.Render(" reply ") +
			m.theme.ShortcutKey.Render("p") + m.theme.ShortcutDesc.Render(" parent ") +
			m.theme.ShortcutKey.Render("?") + m.theme.ShortcutDesc.Render(" help")
	}

	gap := m.width - 2 - lipgloss.Width(leftText) - lipgloss.Width(right)
	content := leftText
	if gap >= 2 {
		content = leftText + strings.Repeat(" ", gap) + right
	}
	return m.theme.StatusBar.Width(m.width).MaxWidth(m.width).MaxHeight(statusBarHeight).Render(content)
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m Model) renderHelpOverlay() string {
	h := m.help
	h.ShowAll = true
	content := m.theme.HeaderTitle.Render("Keys") + "\n\n" + h.FullHelpView(m.keys.FullHelp()) +
		"\n\n" + m.theme.ShortcutDesc.Render("? or Esc to close")

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Teal).
		Padding(1, 2).
		Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
