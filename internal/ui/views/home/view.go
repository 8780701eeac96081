package home

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"healthdash/internal/ui/theme"
)

const intro = `# Health Dashboard

Track your **steps**, **sleep** and **weight** and see how they add up.

- Log a daily record in seconds
- Review your history, newest first
- Watch your totals and averages grow

## Get started

| key | action |
|-----|--------|
| ` + "`l`" + ` | log in |
| ` + "`n`" + ` | create an account |
| ` + "`d`" + ` | open the dashboard |
| ` + "`:`" + ` | command palette |
`

type Model struct {
	viewport viewport.Model
	renderer *glamour.TermRenderer
	username string
	width    int
	height   int
}

func New() Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Base)
	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)
	m := Model{viewport: vp, renderer: r}
	m.render()
	return m
}

// SetUser changes the greeting line; an empty name means signed out.
func (m *Model) SetUser(username string) {
	m.username = username
	m.render()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.viewport.Width = size.Width
		m.viewport.Height = size.Height
		if r, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(size.Width-4),
		); err == nil {
			m.renderer = r
		}
		m.render()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) render() {
	src := intro
	if m.username != "" {
		src = strings.Replace(intro, "# Health Dashboard\n",
			"# Health Dashboard\n\nWelcome back, **"+m.username+"**.\n", 1)
	}
	out := src
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(src); err == nil {
			out = rendered
		}
	}
	m.viewport.SetContent(out)
}
