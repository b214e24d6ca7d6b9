package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdf-chat/internal/models"
	"pdf-chat/internal/session"
)

// ChatPort is the subset of a session the chat screen drives.
type ChatPort interface {
	Upload(ctx context.Context, files []models.UploadedFile) (*session.BuildReport, error)
	Ask(ctx context.Context, question string) (*models.Answer, error)
	Clear(ctx context.Context) error
	Ready() bool
}

type lineKind int

const (
	lineUser lineKind = iota
	lineBot
	lineInfo
	lineWarn
	lineError
)

type line struct {
	kind lineKind
	text string
}

type answerMsg struct {
	answer *models.Answer
	err    error
}

type uploadMsg struct {
	report *session.BuildReport
	files  int
	err    error
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	chat     ChatPort
	ctx      context.Context
	readFile func(string) ([]byte, error)

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	lines     []line
	busy      bool
	busyLabel string
	ready     bool
}

// New creates the chat screen for chat.
func New(ctx context.Context, chat ChatPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "ask a question, /upload <files>, /clear or /quit"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	m := Model{
		chat:     chat,
		ctx:      ctx,
		readFile: os.ReadFile,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
	}
	if !chat.Ready() {
		m.lines = append(m.lines, line{kind: lineWarn, text: "Please upload PDFs"})
	}
	return m
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + 1 + ih // header, input line, status
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-fh)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			if m.busy {
				return m, nil
			}
			value := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if value == "" {
				return m, nil
			}
			return m.submit(value)
		}

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.appendError(msg.err)
		} else {
			m.lines = append(m.lines, line{kind: lineBot, text: msg.answer.Text})
		}
		m.refresh()
		return m, nil

	case uploadMsg:
		m.busy = false
		switch {
		case errors.Is(msg.err, models.ErrNoFiles):
			m.lines = append(m.lines, line{kind: lineWarn, text: "Please upload PDFs"})
		case msg.err != nil:
			m.appendError(msg.err)
		default:
			m.lines = append(m.lines, line{kind: lineInfo, text: fmt.Sprintf(
				"Uploaded %d file(s): %d pages, %d chunks indexed", msg.files, msg.report.Pages, msg.report.Chunks)})
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(value string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(value)
	switch fields[0] {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/clear":
		if err := m.chat.Clear(m.ctx); err != nil {
			m.appendError(err)
		} else {
			m.lines = nil
		}
		m.refresh()
		return m, nil
	case "/upload":
		m.busy, m.busyLabel = true, "making a vectorstore database..."
		m.refresh()
		return m, tea.Batch(m.spinner.Tick, m.upload(fields[1:]))
	}

	m.lines = append(m.lines, line{kind: lineUser, text: value})
	m.busy, m.busyLabel = true, "thinking..."
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, m.ask(value))
}

func (m Model) ask(question string) tea.Cmd {
	chat, ctx := m.chat, m.ctx
	return func() tea.Msg {
		answer, err := chat.Ask(ctx, question)
		return answerMsg{answer: answer, err: err}
	}
}

func (m Model) upload(paths []string) tea.Cmd {
	chat, ctx, readFile := m.chat, m.ctx, m.readFile
	return func() tea.Msg {
		files := make([]models.UploadedFile, 0, len(paths))
		for _, p := range paths {
			data, err := readFile(p)
			if err != nil {
				return uploadMsg{err: err}
			}
			files = append(files, models.UploadedFile{Name: filepath.Base(p), Data: data})
		}
		report, err := chat.Upload(ctx, files)
		return uploadMsg{report: report, files: len(files), err: err}
	}
}

func (m *Model) appendError(err error) {
	text := "Error: " + err.Error()
	if errors.Is(err, models.ErrNotReady) || errors.Is(err, models.ErrIndexUnavailable) {
		text = "Please upload PDFs before asking a question"
	}
	m.lines = append(m.lines, line{kind: lineError, text: text})
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderLines())
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Chat LLM")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())

	status := "ready"
	if m.busy {
		status = m.spinner.View() + " " + m.busyLabel
	} else if !m.chat.Ready() {
		status = "no documents indexed"
	}
	return header + "\n" + chat + "\n" + input + "\n" + statusStyle.Render(status)
}

func (m Model) renderLines() string {
	if len(m.lines) == 0 {
		return ""
	}
	width := max(10, m.viewport.Width)
	wrap := lipgloss.NewStyle().Width(width)
	rendered := make([]string, 0, len(m.lines))
	for _, l := range m.lines {
		var text string
		switch l.kind {
		case lineUser:
			text = userStyle.Render("user: ") + l.text
		case lineBot:
			text = botStyle.Render("bot: ") + l.text
		case lineInfo:
			text = infoStyle.Render(l.text)
		case lineWarn:
			text = warnStyle.Render(l.text)
		case lineError:
			text = errorStyle.Render(l.text)
		}
		rendered = append(rendered, wrap.Render(text))
	}
	return strings.Join(rendered, "\n\n")
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
