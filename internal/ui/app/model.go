package app

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	analyticsdto "healthdash/internal/modules/analytics/dto"
	recordsdto "healthdash/internal/modules/records/dto"
	sessiondto "healthdash/internal/modules/session/dto"
	apperrors "healthdash/internal/platform/errors"
	"healthdash/internal/ui/components"
	"healthdash/internal/ui/theme"
	authview "healthdash/internal/ui/views/auth"
	dashboardview "healthdash/internal/ui/views/dashboard"
	homeview "healthdash/internal/ui/views/home"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type sessionPort interface {
	Register(ctx context.Context, username, password string) (sessiondto.AccountOutput, error)
	Login(ctx context.Context, username, password string) (sessiondto.SessionOutput, error)
	Logout(ctx context.Context) error
}

type recordsPort interface {
	Create(ctx context.Context, input recordsdto.CreateInput) (recordsdto.RecordOutput, error)
	Update(ctx context.Context, input recordsdto.UpdateInput) (recordsdto.RecordOutput, error)
	Delete(ctx context.Context, id int64) (recordsdto.DeleteOutput, error)
}

type analyticsPort interface {
	Dashboard(ctx context.Context) (analyticsdto.DashboardOutput, error)
}

// ─── routes ──────────────────────────────────────────────────────────────────

type route int

const (
	routeHome route = iota
	routeLogin
	routeRegister
	routeDashboard
	routeCount
)

var routeLabels = [routeCount]string{"Home", "Login", "Register", "Dashboard"}

var routeNames = map[string]route{
	"home":      routeHome,
	"login":     routeLogin,
	"register":  routeRegister,
	"dashboard": routeDashboard,
}

// ─── messages ────────────────────────────────────────────────────────────────

// SessionChangedMsg is sent from outside the program whenever the session
// store changes, so every screen reflects logins and logouts.
type SessionChangedMsg struct {
	Authenticated bool
	Username      string
}

type loggedOutMsg struct{ err error }

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Home      key.Binding
	Login     key.Binding
	Register  key.Binding
	Dashboard key.Binding
	Logout    key.Binding
	Add       key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Palette   key.Binding
	Back      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Home:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home")),
		Login:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log in")),
		Register:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new account")),
		Dashboard: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dashboard")),
		Logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add record")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit record")),
		Delete:    key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d/x", "delete record")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:   key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Palette, k.Back, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Home, k.Login, k.Register, k.Dashboard},
		{k.Add, k.Edit, k.Delete, k.Refresh},
		{k.Logout, k.Help, k.Palette, k.Back, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns routing, the signed-in state,
// the help overlay and the command palette. Network calls go through the
// ports; rendering is delegated to the route views.
type Model struct {
	session sessionPort

	homeView     homeview.Model
	loginView    authview.Model
	registerView authview.Model
	dashView     dashboardview.Model

	active     route
	signedIn   bool
	loggingOut bool
	username   string
	keys       keyMap
	help       help.Model
	showHelp   bool
	palette    components.Palette
	status     string
	width      int
	height     int
}

func NewModel(session sessionPort, records recordsPort, analytics analyticsPort, signedIn bool, username string) Model {
	home := homeview.New()
	if signedIn {
		home.SetUser(username)
	}
	auth := authPortBridge{p: session}
	return Model{
		session:      session,
		homeView:     home,
		loginView:    authview.New(auth, authview.ModeLogin),
		registerView: authview.New(auth, authview.ModeRegister),
		dashView:     dashboardview.New(dashboardBridge{records: records, analytics: analytics}),
		active:       routeHome,
		signedIn:     signedIn,
		username:     username,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette intercepts keys while open; async results still land below.
	if _, ok := msg.(tea.KeyMsg); ok && m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case SessionChangedMsg:
		if msg.Authenticated {
			m.applySignedIn(msg.Username)
			return m, nil
		}
		return m, m.applySignedOut("Your session has ended. Please log in again.")

	case authview.LoggedInMsg:
		var cmd tea.Cmd
		m.loginView, cmd = m.loginView.Update(msg)
		if msg.Err != nil {
			m.status = "login failed"
			return m, cmd
		}
		m.applySignedIn(msg.Session.Username)
		m.status = "logged in as " + msg.Session.Username
		return m, tea.Batch(cmd, m.navigate(routeDashboard))

	case authview.RegisteredMsg:
		var cmd tea.Cmd
		m.registerView, cmd = m.registerView.Update(msg)
		if msg.Err != nil {
			m.status = "registration failed"
			return m, cmd
		}
		m.loginView.Prefill(msg.Account.Username)
		m.loginView.SetNotice("Account created. Log in to continue.")
		m.status = "account created: " + msg.Account.Username
		return m, tea.Batch(cmd, m.navigate(routeLogin))

	case loggedOutMsg:
		m.loggingOut = false
		if msg.err != nil {
			m.status = "logout failed: " + msg.err.Error()
			return m, nil
		}
		cmd := m.applySignedOut("")
		m.status = "logged out"
		return m, tea.Batch(cmd, m.navigate(routeHome))

	case dashboardview.LoadedMsg:
		var cmd tea.Cmd
		m.dashView, cmd = m.dashView.Update(msg)
		if sessionLost(msg.Err) {
			return m, tea.Batch(cmd, m.applySignedOut("Your session has ended. Please log in again."))
		}
		return m, cmd

	case dashboardview.MutatedMsg:
		var cmd tea.Cmd
		m.dashView, cmd = m.dashView.Update(msg)
		if msg.Err != nil {
			m.status = msg.Verb + " failed"
			if sessionLost(msg.Err) {
				return m, tea.Batch(cmd, m.applySignedOut("Your session has ended. Please log in again."))
			}
		} else {
			m.status = msg.Message
		}
		return m, cmd

	case spinner.TickMsg:
		// Spinners filter ticks by id, so each view only advances its own.
		var c1, c2, c3 tea.Cmd
		m.loginView, c1 = m.loginView.Update(msg)
		m.registerView, c2 = m.registerView.Update(msg)
		m.dashView, c3 = m.dashView.Update(msg)
		return m, tea.Batch(c1, c2, c3)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.typing() {
			if msg.String() == "esc" && !m.activePending() {
				return m, m.navigate(routeHome)
			}
			break
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "esc":
			if m.active != routeHome {
				return m, m.navigate(routeHome)
			}
			return m, nil
		case "L":
			return m, m.logoutCmd()
		}
		if m.active == routeHome {
			switch msg.String() {
			case "l":
				return m, m.navigate(routeLogin)
			case "n":
				return m, m.navigate(routeRegister)
			case "d", "enter":
				return m, m.navigate(routeDashboard)
			}
		}
	}

	var cmd tea.Cmd
	switch m.active {
	case routeHome:
		m.homeView, cmd = m.homeView.Update(msg)
	case routeLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case routeRegister:
		m.registerView, cmd = m.registerView.Update(msg)
	case routeDashboard:
		m.dashView, cmd = m.dashView.Update(msg)
	}
	return m, cmd
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	navBar := m.renderNavBar()
	statusBar := m.renderStatusBar()

	contentH := m.height - lipgloss.Height(navBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, navBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.active {
	case routeHome:
		return m.homeView.View()
	case routeLogin:
		return m.loginView.View()
	case routeRegister:
		return m.registerView.View()
	case routeDashboard:
		return m.dashView.View()
	}
	return ""
}

func (m Model) renderNavBar() string {
	parts := make([]string, 0, routeCount)
	for r := route(0); r < routeCount; r++ {
		if m.signedIn && (r == routeLogin || r == routeRegister) {
			continue
		}
		label := " " + routeLabels[r] + " "
		if r == m.active {
			parts = append(parts, theme.Hot.Render(label))
		} else {
			parts = append(parts, theme.Muted.Render(label))
		}
	}
	bar := "healthdash  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.signedIn {
		left = theme.Badge.Render(m.username) + "  " + left
	}
	right := theme.Muted.Render("?:help  :::palette  esc:back  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch {
	case parts[0] == "records:refresh" || parts[0] == "stats:refresh":
		if m.active != routeDashboard {
			return m, m.navigate(routeDashboard)
		}
		return m, m.dashView.Refresh()

	case parts[0] == "records:add":
		if len(parts) != 4 {
			m.status = "usage: records:add <steps> <sleep> <weight>"
			return m, nil
		}
		rec, err := parseCreate(parts[1:])
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		if !m.signedIn {
			return m, m.navigate(routeDashboard)
		}
		m.active = routeDashboard
		m.status = "saving record…"
		return m, m.dashView.CreateCmd(rec)

	case parts[0] == "records:delete":
		if len(parts) != 2 {
			m.status = "usage: records:delete <id>"
			return m, nil
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || id <= 0 {
			m.status = "invalid record id: " + parts[1]
			return m, nil
		}
		if !m.signedIn {
			return m, m.navigate(routeDashboard)
		}
		m.active = routeDashboard
		return m, m.dashView.DeleteCmd(id)

	case strings.HasPrefix(parts[0], "goto:"):
		r, ok := routeNames[strings.TrimPrefix(parts[0], "goto:")]
		if !ok {
			m.status = "unknown route: " + strings.TrimPrefix(parts[0], "goto:")
			return m, nil
		}
		return m, m.navigate(r)

	case parts[0] == "logout":
		return m, m.logoutCmd()
	}

	m.status = "unknown command: " + parts[0]
	return m, nil
}

func parseCreate(args []string) (recordsdto.CreateInput, error) {
	steps, err := strconv.Atoi(args[0])
	if err != nil {
		return recordsdto.CreateInput{}, errors.New("steps must be a whole number")
	}
	sleep, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return recordsdto.CreateInput{}, errors.New("sleep hours must be a number")
	}
	weight, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return recordsdto.CreateInput{}, errors.New("weight must be a number")
	}
	return recordsdto.CreateInput{Steps: steps, SleepHours: sleep, Weight: weight}, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// navigate switches route. The dashboard is only reachable while signed in;
// otherwise the user lands on the login form.
func (m *Model) navigate(r route) tea.Cmd {
	if r == routeDashboard && !m.signedIn {
		m.loginView.SetNotice("Log in to see your dashboard.")
		r = routeLogin
	}
	if (r == routeLogin || r == routeRegister) && m.signedIn {
		r = routeDashboard
	}
	m.active = r
	switch r {
	case routeLogin:
		return m.loginView.Focus()
	case routeRegister:
		return m.registerView.Focus()
	case routeDashboard:
		return m.dashView.Refresh()
	}
	return nil
}

func (m *Model) applySignedIn(username string) {
	m.signedIn = true
	m.username = username
	m.homeView.SetUser(username)
}

// applySignedOut drops the per-user state and leaves protected routes. The
// notice is shown only when the session ended without the user asking.
func (m *Model) applySignedOut(notice string) tea.Cmd {
	wasSignedIn := m.signedIn
	m.signedIn = false
	m.username = ""
	m.homeView.SetUser("")
	m.dashView.Reset()
	if m.loggingOut || !wasSignedIn {
		notice = ""
	}
	if notice != "" {
		m.status = "signed out"
		m.loginView.SetNotice(notice)
	}
	if m.active != routeDashboard {
		return nil
	}
	return m.navigate(routeLogin)
}

// typing reports whether the active view has a focused text field, in which
// case global key bindings must yield to allow free typing.
func (m Model) typing() bool {
	switch m.active {
	case routeLogin, routeRegister:
		return true
	case routeDashboard:
		return m.dashView.Editing()
	}
	return false
}

func (m Model) activePending() bool {
	switch m.active {
	case routeLogin:
		return m.loginView.Pending()
	case routeRegister:
		return m.registerView.Pending()
	case routeDashboard:
		return m.dashView.Pending()
	}
	return false
}

func sessionLost(err error) bool {
	return errors.Is(err, apperrors.ErrSessionExpired) || errors.Is(err, apperrors.ErrNotAuthenticated)
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.homeView, _ = m.homeView.Update(sz)
	m.loginView, _ = m.loginView.Update(sz)
	m.registerView, _ = m.registerView.Update(sz)
	m.dashView, _ = m.dashView.Update(sz)
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m *Model) logoutCmd() tea.Cmd {
	m.loggingOut = true
	return func() tea.Msg {
		return loggedOutMsg{err: m.session.Logout(context.Background())}
	}
}

// ─── port bridges ────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view, keeping view packages free of knowledge about the wider
// port surface.

type authPortBridge struct{ p sessionPort }

func (b authPortBridge) Register(ctx context.Context, username, password string) (sessiondto.AccountOutput, error) {
	return b.p.Register(ctx, username, password)
}
func (b authPortBridge) Login(ctx context.Context, username, password string) (sessiondto.SessionOutput, error) {
	return b.p.Login(ctx, username, password)
}

type dashboardBridge struct {
	records   recordsPort
	analytics analyticsPort
}

func (b dashboardBridge) Dashboard(ctx context.Context) (analyticsdto.DashboardOutput, error) {
	return b.analytics.Dashboard(ctx)
}
func (b dashboardBridge) Create(ctx context.Context, input recordsdto.CreateInput) (recordsdto.RecordOutput, error) {
	return b.records.Create(ctx, input)
}
func (b dashboardBridge) Update(ctx context.Context, input recordsdto.UpdateInput) (recordsdto.RecordOutput, error) {
	return b.records.Update(ctx, input)
}
func (b dashboardBridge) Delete(ctx context.Context, id int64) (recordsdto.DeleteOutput, error) {
	return b.records.Delete(ctx, id)
}
