package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"doc-chat/internal/docs"
	"doc-chat/internal/models"
	"doc-chat/internal/session"
	"doc-chat/internal/stream"
)

// Answerer is the TUI-facing answering service. It never fails: errors come
// back as user-readable fallback text.
type Answerer interface {
	Answer(ctx context.Context, documentName, question string) string
}

type answerMsg struct {
	question string
	text     string
}

type tokenMsg struct {
	token string
	ok    bool
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	svc     Answerer
	sess    *session.Session
	catalog []models.SupportedDocument

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	picking    bool
	cursor     int
	thinking   bool
	pending    string // assistant tokens streamed so far
	fullAnswer string
	tokens     <-chan string
	cancel     context.CancelFunc
	delay      time.Duration
	status     string
	ready      bool
}

// New creates the chat model. delay paces the word stream.
func New(svc Answerer, sess *session.Session, delay time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "How can I help you?"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		svc:      svc,
		sess:     sess,
		catalog:  docs.Supported(),
		input:    ti,
		viewport: viewport.New(0, 0),
		spin:     sp,
		picking:  true,
		delay:    delay,
		status:   "Select a document to start the chat.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-2)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.updateChat(msg)

	case answerMsg:
		m.thinking = false
		m.fullAnswer = msg.text
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		m.tokens = stream.Words(msg.text, stream.WithDelay(m.delay)).Chan(ctx)
		return m, waitToken(m.tokens)

	case tokenMsg:
		if !msg.ok {
			m.sess.Append(models.RoleAssistant, m.fullAnswer)
			m.pending = ""
			m.tokens = nil
			if m.cancel != nil {
				m.cancel()
				m.cancel = nil
			}
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, nil
		}
		m.pending += msg.token
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, waitToken(m.tokens)

	case spinner.TickMsg:
		if !m.thinking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.viewport.SetContent(m.renderTranscript())
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(m.catalog)
	case "up", "k":
		m.cursor = (m.cursor - 1 + len(m.catalog)) % len(m.catalog)
	case "p":
		doc := m.catalog[m.cursor]
		if err := docs.Preview(doc); err != nil {
			log.Error().Err(err).Str("document", doc.Name).Msg("Error opening preview")
			m.status = "Could not open preview: " + err.Error()
		} else {
			m.status = fmt.Sprintf("Opened preview for %s.", doc.Name)
		}
	case "enter":
		doc := m.catalog[m.cursor]
		m.sess.SelectDocument(doc.Name)
		m.picking = false
		m.status = fmt.Sprintf("The %s has been successfully selected. You can now start asking questions about it.", doc.Name)
		m.viewport.SetContent(m.renderTranscript())
	}
	return m, nil
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if !m.thinking && m.tokens == nil {
			m.picking = true
			m.status = "Select a document to start the chat."
			return m, nil
		}
	case "enter":
		question := strings.TrimSpace(m.input.Value())
		if question == "" || m.thinking || m.tokens != nil {
			return m, nil
		}
		m.input.Reset()
		m.sess.Append(models.RoleUser, question)
		m.thinking = true
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		doc := m.sess.SelectedDocument()
		log.Info().Str("document", doc).Str("prompt", question).Msg("Asking")
		return m, tea.Batch(m.spin.Tick, askCmd(m.svc, doc, question))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func askCmd(svc Answerer, documentName, question string) tea.Cmd {
	return func() tea.Msg {
		text := svc.Answer(context.Background(), documentName, question)
		return answerMsg{question: question, text: text}
	}
}

func waitToken(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		tok, ok := <-ch
		return tokenMsg{token: tok, ok: ok}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("doc-chat")
	status := statusStyle.Render(m.status)
	if m.picking {
		return header + "\n" + m.renderPicker() + "\n" + status
	}
	chat := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	return header + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderPicker() string {
	var b strings.Builder
	b.WriteString("Available documents\n\n")
	for i, doc := range m.catalog {
		line := fmt.Sprintf("  %s", doc.Name)
		if i == m.cursor {
			line = selectedStyle.Render(fmt.Sprintf("> %s", doc.Name))
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\nenter: select  p: preview  q: quit")
	return b.String()
}

func (m Model) renderTranscript() string {
	var b strings.Builder
	for _, msg := range m.sess.Transcript() {
		switch msg.Role {
		case models.RoleUser:
			b.WriteString(userStyle.Render("You: ") + msg.Content + "\n\n")
		default:
			b.WriteString(assistantStyle.Render("Assistant: ") + msg.Content + "\n\n")
		}
	}
	if m.pending != "" {
		b.WriteString(assistantStyle.Render("Assistant: ") + m.pending + "\n")
	} else if m.thinking {
		b.WriteString(m.spin.View() + " Thinking...\n")
	}
	return b.String()
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
