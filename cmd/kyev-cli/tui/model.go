// Package tui is the Bubble Tea REPL for kyev-cli: a line editor that sends
// one RSP command at a time to a kyev-server and renders its reply.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jffjs/kyev/internal/highlight"
	"github.com/jffjs/kyev/internal/resp"
	"github.com/jffjs/kyev/internal/tuiclient"
)

// historyEntry is one submitted command and the reply it produced.
type historyEntry struct {
	command string
	reply   string
	isErr   bool
}

// Model is the Bubble Tea model for the kyev-cli REPL.
type Model struct {
	target string
	client *tuiclient.Client

	input  string
	cursor int

	history []historyEntry
	err     error

	width  int
	height int
}

// connectedMsg carries a freshly dialed client.
type connectedMsg struct {
	client *tuiclient.Client
}

// errMsg carries a connection-level error.
type errMsg struct{ Err error }

// replyMsg carries a decoded reply to the most recently sent command.
type replyMsg struct {
	command string
	value   resp.Value
}

// New creates a Model targeting a kyev-server at addr.
func New(addr string) Model {
	return Model{target: addr}
}

// Init starts the connection.
func (m Model) Init() tea.Cmd {
	return connect(m.target)
}

func connect(target string) tea.Cmd {
	return func() tea.Msg {
		c, err := tuiclient.Dial(target)
		if err != nil {
			return errMsg{Err: err}
		}
		return connectedMsg{client: c}
	}
}

func send(c *tuiclient.Client, command string) tea.Cmd {
	return func() tea.Msg {
		args := strings.Fields(command)
		v, err := c.Do(args)
		if err != nil {
			return errMsg{Err: err}
		}
		return replyMsg{command: command, value: v}
	}
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case connectedMsg:
		m.client = msg.client
		return m, nil

	case errMsg:
		m.err = msg.Err
		return m, nil

	case replyMsg:
		m.history = append(m.history, historyEntry{
			command: msg.command,
			reply:   renderValue(msg.value),
			isErr:   msg.value.Kind == resp.Error,
		})
		return m, nil

	case tea.KeyMsg:
		return m.updateInput(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+d":
		return m, tea.Quit

	case "enter":
		line := strings.TrimSpace(m.input)
		m.input = ""
		m.cursor = 0
		if line == "" {
			return m, nil
		}
		if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			return m, tea.Quit
		}
		if m.client == nil {
			m.err = fmt.Errorf("not connected to %s", m.target)
			return m, nil
		}
		return m, send(m.client, line)

	case "backspace":
		if m.cursor > 0 {
			m.input = m.input[:m.cursor-1] + m.input[m.cursor:]
			m.cursor--
		}
		return m, nil

	case "left":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "right":
		if m.cursor < len(m.input) {
			m.cursor++
		}
		return m, nil

	default:
		if len(msg.Runes) > 0 {
			r := string(msg.Runes)
			m.input = m.input[:m.cursor] + r + m.input[m.cursor:]
			m.cursor += len(r)
		}
		return m, nil
	}
}

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// View renders the REPL.
func (m Model) View() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	}

	for _, h := range m.history {
		b.WriteString(promptStyle.Render("> ") + highlight.Command(h.command) + "\n")
		if h.isErr {
			b.WriteString(errorStyle.Render(h.reply) + "\n")
		} else {
			b.WriteString(h.reply + "\n")
		}
	}

	b.WriteString(promptStyle.Render("> ") + m.input)
	b.WriteString("\n" + faintStyle.Render("ctrl+c to quit"))

	return b.String()
}
