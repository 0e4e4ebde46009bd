package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gemchat/gemchat/internal/chat"
	"github.com/gemchat/gemchat/pkg/models"
)

const sidebarWidth = 28

type model struct {
	ctx        context.Context
	registry   *chat.Registry
	controller *chat.Controller
	engine     *chat.Engine

	input         textarea.Model
	chatViewport  viewport.Model
	spinner       *Spinner
	confirmDelete bool
	ticking       bool
	ready         bool
	err           error
	width         int
	height        int
}

func initialModel(ctx context.Context, registry *chat.Registry, controller *chat.Controller, engine *chat.Engine) model {
	input := textarea.New()
	input.Placeholder = "Send a message"
	input.Prompt = "┃ "
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	return model{
		ctx:        ctx,
		registry:   registry,
		controller: controller,
		engine:     engine,
		input:      input,
		spinner:    NewSpinner(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, textarea.Blink)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := msg.Width - sidebarWidth - 1
		chatHeight := msg.Height - m.input.Height() - 4

		if !m.ready {
			m.chatViewport = viewport.New(chatWidth, chatHeight)
			m.ready = true
		} else {
			m.chatViewport.Width = chatWidth
			m.chatViewport.Height = chatHeight
		}
		m.input.SetWidth(chatWidth - 2)
		m.updateViewport()

	case tea.KeyMsg:
		if m.confirmDelete {
			// Deletion is an explicit, confirmable action.
			if msg.String() == "y" {
				m.confirmDelete = false
				return m, deleteSessionCmd(m.ctx, m.controller, m.registry.ActiveSessionID())
			}
			m.confirmDelete = false
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			active := m.registry.ActiveSessionID()
			m.registry.UpdateDraft(active, m.input.Value())
			m.input.Reset()
			cmds = append(cmds, submitCmd(m.ctx, m.engine, active))
			if !m.ticking {
				m.ticking = true
				cmds = append(cmds, tickCmd())
			}
			m.updateViewport()
			return m, tea.Batch(cmds...)

		case "ctrl+n":
			m.stashDraft()
			return m, createSessionCmd(m.ctx, m.controller)

		case "ctrl+x":
			m.confirmDelete = true
			return m, nil

		case "ctrl+up":
			if id, ok := m.neighborSession(-1); ok {
				m.stashDraft()
				return m, selectSessionCmd(m.ctx, m.controller, id)
			}
			return m, nil

		case "ctrl+down":
			if id, ok := m.neighborSession(1); ok {
				m.stashDraft()
				return m, selectSessionCmd(m.ctx, m.controller, id)
			}
			return m, nil

		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.chatViewport, cmd = m.chatViewport.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		m.registry.UpdateDraft(m.registry.ActiveSessionID(), m.input.Value())

	case sessionChangedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.input.SetValue(m.registry.Draft(m.registry.ActiveSessionID()))
		m.input.CursorEnd()
		m.updateViewport()

	case dispatchDoneMsg:
		if !msg.Accepted && msg.SessionID == m.registry.ActiveSessionID() {
			// A rejected send keeps its draft; put it back in the input so
			// the next keystroke does not overwrite it.
			m.input.SetValue(m.registry.Draft(msg.SessionID))
			m.input.CursorEnd()
		}
		m.updateViewport()

	case tickMsg:
		m.spinner.Next()
		m.updateViewport()
		if m.registry.Generating() {
			cmds = append(cmds, tickCmd())
		} else {
			m.ticking = false
		}

	case tea.MouseMsg:
		if m.ready {
			var cmd tea.Cmd
			m.chatViewport, cmd = m.chatViewport.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// stashDraft mirrors the input buffer into the registry before the view moves
// to another session.
func (m *model) stashDraft() {
	m.registry.UpdateDraft(m.registry.ActiveSessionID(), m.input.Value())
}

// neighborSession returns the session id offset places away from the active
// one in index order.
func (m model) neighborSession(offset int) (int64, bool) {
	sessions := m.registry.Sessions()
	active := m.registry.ActiveSessionID()
	for i, s := range sessions {
		if s.ID == active {
			j := i + offset
			if j < 0 || j >= len(sessions) {
				return 0, false
			}
			return sessions[j].ID, true
		}
	}
	return 0, false
}

func (m *model) updateViewport() {
	if !m.ready {
		return
	}
	atBottom := m.chatViewport.AtBottom()
	m.chatViewport.SetContent(m.renderMessages())
	if atBottom {
		m.chatViewport.GotoBottom()
	}
}

func (m model) renderSidebar() string {
	var s strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	s.WriteString(headerStyle.Render("Chats") + "\n")
	s.WriteString(strings.Repeat("─", sidebarWidth-2) + "\n")

	active := m.registry.ActiveSessionID()
	for _, session := range m.registry.Sessions() {
		cursor := "  "
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		if session.ID == active {
			cursor = "> "
			style = style.Foreground(lipgloss.Color("212")).Bold(true)
		}

		indicator := "💬"
		if m.registry.IsGenerating(session.ID) {
			indicator = m.spinner.View()
		}

		line := fmt.Sprintf("%s%s %s", cursor, indicator, truncate(session.Title, sidebarWidth-8))
		s.WriteString(style.Render(line) + "\n")
	}

	return s.String()
}

func (m model) renderMessages() string {
	messages := m.registry.Messages()
	active := m.registry.ActiveSessionID()

	if len(messages) == 0 && !m.registry.IsGenerating(active) {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
		return "\n\n" + emptyStyle.Render("  What can I help with?")
	}

	wrapWidth := m.chatViewport.Width - 6
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	var s strings.Builder
	for _, msg := range messages {
		s.WriteString(renderMessage(msg, wrapWidth) + "\n")
	}

	if m.registry.IsGenerating(active) {
		pendingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		s.WriteString(pendingStyle.Render("  ...") + "\n")
	}

	return s.String()
}

func renderMessage(msg models.Message, wrapWidth int) string {
	label := "model"
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	if msg.IsUser {
		label = "you"
		labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	}

	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	var s strings.Builder
	s.WriteString(labelStyle.Render(label) + "\n")
	for _, paragraph := range strings.Split(msg.Text, "\n") {
		for _, line := range wrapText(paragraph, wrapWidth) {
			s.WriteString("  " + textStyle.Render(line) + "\n")
		}
	}
	return s.String()
}

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	currentLine := words[0]
	for _, word := range words[1:] {
		if len(currentLine)+1+len(word) > width {
			lines = append(lines, currentLine)
			currentLine = word
		} else {
			currentLine += " " + word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n", m.err)
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	sidebarStyle := lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(m.chatViewport.Height)

	dividerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238"))

	divider := strings.Builder{}
	for i := 0; i < m.chatViewport.Height; i++ {
		divider.WriteString("│")
		if i < m.chatViewport.Height-1 {
			divider.WriteString("\n")
		}
	}

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		sidebarStyle.Render(m.renderSidebar()),
		dividerStyle.Render(divider.String()),
		m.chatViewport.View(),
	)

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, main, m.input.View(), footer)
}

func (m model) renderHeader() string {
	active := m.registry.ActiveSessionID()
	title := "gemchat"
	for _, s := range m.registry.Sessions() {
		if s.ID == active {
			title = fmt.Sprintf("gemchat - %s", s.Title)
		}
	}
	if m.registry.IsGenerating(active) {
		title += "  (generating...)"
	}

	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("63"))

	return style.Render(title)
}

func (m model) renderFooter() string {
	if m.confirmDelete {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
		return style.Render("delete this chat? y/n")
	}

	info := "enter: send • ctrl+n: new chat • ctrl+x: delete • ctrl+↑/↓: switch chat • esc: quit"
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	return style.Render(info)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Run starts the TUI over an already-bootstrapped registry.
func Run(ctx context.Context, registry *chat.Registry, controller *chat.Controller, engine *chat.Engine) error {
	p := tea.NewProgram(
		initialModel(ctx, registry, controller, engine),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
