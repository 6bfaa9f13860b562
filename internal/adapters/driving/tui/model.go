// Package tui implements the interactive chat screen.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driving"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// Options tweaks the initial screen state.
type Options struct {
	// RepairNeeded shows a corruption banner until the user runs repair.
	RepairNeeded bool
	RepairReason string
}

// answerMsg carries a finished exchange back into the update loop.
type answerMsg struct {
	question string
	answer   string
	sources  []string
	err      error
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	chat     driving.ChatService
	opts     Options
	input    textinput.Model
	viewport viewport.Model
	lines    []string
	status   string
	waiting  bool
	ready    bool
}

// New creates the chat model.
func New(chat driving.ChatService, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	vp := viewport.New(0, 0)
	return Model{
		chat:     chat,
		opts:     opts,
		input:    ti,
		viewport: vp,
		status:   "Ready. ctrl+r clears the conversation, ctrl+c quits.",
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + ih + 1 // header, input frame, status
		if m.opts.RepairNeeded {
			reserved++
		}
		h := msg.Height - reserved
		if h < 3 {
			h = 3
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = h
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.chat.ResetHistory()
			m.lines = nil
			m.status = "Conversation cleared."
			m.viewport.SetContent("")
			return m, nil
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.status = "Thinking..."
			return m, m.ask(question)
		}

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = errorStyle.Render("Error: " + msg.err.Error())
			return m, nil
		}
		m.chat.Remember(msg.question, msg.answer)
		m.appendExchange(msg)
		m.status = "Ready."
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs the question off the update loop.
func (m Model) ask(question string) tea.Cmd {
	chat := m.chat
	return func() tea.Msg {
		answer, chunks, err := chat.Answer(context.Background(), question)
		return answerMsg{
			question: question,
			answer:   answer,
			sources:  uniqueSources(chunks),
			err:      err,
		}
	}
}

func (m *Model) appendExchange(msg answerMsg) {
	if len(m.lines) > 0 {
		m.lines = append(m.lines, "")
	}
	m.lines = append(m.lines, userStyle.Render("You: ")+msg.question)
	m.lines = append(m.lines, assistantStyle.Render("Answer: ")+msg.answer)
	if len(msg.sources) > 0 {
		m.lines = append(m.lines, statusStyle.Render("Sources: "+strings.Join(msg.sources, ", ")))
	}
}

// View renders the chat screen.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("docsage chat"))
	b.WriteString("\n")
	if m.opts.RepairNeeded {
		b.WriteString(warnStyle.Render(fmt.Sprintf("Index flagged corrupted (%s); run 'docsage repair'.", m.opts.RepairReason)))
		b.WriteString("\n")
	}
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(inputBoxStyle.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	return b.String()
}

// uniqueSources lists each source document once, in retrieval order.
func uniqueSources(chunks []domain.Chunk) []string {
	seen := make(map[string]bool)
	var out []string
	for _, chunk := range chunks {
		if chunk.Source == "" || seen[chunk.Source] {
			continue
		}
		seen[chunk.Source] = true
		out = append(out, chunk.Source)
	}
	return out
}
