package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "healthdash/internal/modules/session/dto"
	"healthdash/internal/ui/theme"
)

type SessionPort interface {
	Register(ctx context.Context, username, password string) (sessiondto.AccountOutput, error)
	Login(ctx context.Context, username, password string) (sessiondto.SessionOutput, error)
}

type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "Create account"
	}
	return "Log in"
}

// LoggedInMsg reports a finished login attempt.
type LoggedInMsg struct {
	Session sessiondto.SessionOutput
	Err     error
}

// RegisteredMsg reports a finished registration attempt.
type RegisteredMsg struct {
	Account sessiondto.AccountOutput
	Err     error
}

var errMissingFields = errors.New("username and password are required")

type Model struct {
	port    SessionPort
	mode    Mode
	inputs  []textinput.Model
	focus   int
	spinner spinner.Model
	pending bool
	err     string
	notice  string
	width   int
	height  int
}

func New(port SessionPort, mode Mode) Model {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 64
	user.Prompt = "› "

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.CharLimit = 128
	pass.Prompt = "› "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		mode:    mode,
		inputs:  []textinput.Model{user, pass},
		spinner: sp,
	}
}

// Focus resets the form for a fresh attempt and focuses the username field.
func (m *Model) Focus() tea.Cmd {
	m.err = ""
	m.focus = 0
	m.inputs[1].SetValue("")
	m.inputs[1].Blur()
	return m.inputs[0].Focus()
}

// SetNotice shows an informational line above the form.
func (m *Model) SetNotice(s string) { m.notice = s }

// Prefill puts a username in the form, as after a registration.
func (m *Model) Prefill(username string) {
	m.inputs[0].SetValue(username)
}

func (m Model) Pending() bool { return m.pending }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case LoggedInMsg:
		m.pending = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
		}
		return m, nil

	case RegisteredMsg:
		m.pending = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down", "shift+tab", "up":
			return m, m.cycle(msg.String() == "shift+tab" || msg.String() == "up")
		case "enter":
			if m.focus == 0 {
				return m, m.cycle(false)
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) cycle(back bool) tea.Cmd {
	m.inputs[m.focus].Blur()
	if back {
		m.focus = (m.focus + len(m.inputs) - 1) % len(m.inputs)
	} else {
		m.focus = (m.focus + 1) % len(m.inputs)
	}
	return m.inputs[m.focus].Focus()
}

// submit refuses to start a second request while one is in flight.
func (m Model) submit() (Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	username := strings.TrimSpace(m.inputs[0].Value())
	password := m.inputs[1].Value()
	if username == "" || password == "" {
		m.err = errMissingFields.Error()
		return m, nil
	}
	m.err = ""
	m.notice = ""
	m.pending = true
	if m.mode == ModeRegister {
		return m, tea.Batch(m.registerCmd(username, password), m.spinner.Tick)
	}
	return m, tea.Batch(m.loginCmd(username, password), m.spinner.Tick)
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(m.mode.String()) + "\n\n")
	if m.notice != "" {
		sb.WriteString(theme.Good.Render(m.notice) + "\n\n")
	}
	labels := []string{"Username", "Password"}
	for i, in := range m.inputs {
		label := theme.Muted.Render(labels[i])
		if i == m.focus {
			label = theme.Hot.Render(labels[i])
		}
		sb.WriteString(label + "\n" + in.View() + "\n\n")
	}
	switch {
	case m.pending:
		sb.WriteString(m.spinner.View() + " " + theme.Muted.Render(m.pendingLabel()))
	case m.err != "":
		sb.WriteString(theme.Error.Render(m.err))
	default:
		sb.WriteString(theme.Muted.Render("enter: submit  tab: next field  esc: back"))
	}

	form := theme.PaneActive.Width(44).Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
}

func (m Model) pendingLabel() string {
	if m.mode == ModeRegister {
		return "Creating account…"
	}
	return "Logging in…"
}

func (m Model) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Login(context.Background(), username, password)
		return LoggedInMsg{Session: out, Err: err}
	}
}

func (m Model) registerCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Register(context.Background(), username, password)
		return RegisteredMsg{Account: out, Err: err}
	}
}
