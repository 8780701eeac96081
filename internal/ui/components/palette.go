package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"healthdash/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// paletteHints must stay in sync with app.Model.executePalette.
var paletteHints = []string{
	"records:refresh",
	"records:add <steps> <sleep> <weight>",
	"records:delete <id>",
	"stats:refresh",
	"goto:home",
	"goto:login",
	"goto:register",
	"goto:dashboard",
	"logout",
}

const maxHistory = 20

// Palette is a command-palette overlay with tab completion and a short
// history recalled with up/down.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
	history []string
	cursor  int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 256
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette with an empty input and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.cursor = len(p.history)
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.remember(val)
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			if matches := p.matching(); len(matches) > 0 {
				p.input.SetValue(completion(matches[0]))
				p.input.CursorEnd()
			}
			return p, nil
		case "up":
			if p.cursor > 0 {
				p.cursor--
				p.input.SetValue(p.history[p.cursor])
				p.input.CursorEnd()
			}
			return p, nil
		case "down":
			if p.cursor < len(p.history)-1 {
				p.cursor++
				p.input.SetValue(p.history[p.cursor])
			} else {
				p.cursor = len(p.history)
				p.input.SetValue("")
			}
			p.input.CursorEnd()
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p *Palette) remember(val string) {
	if val == "" || (len(p.history) > 0 && p.history[len(p.history)-1] == val) {
		return
	}
	p.history = append(p.history, val)
	if len(p.history) > maxHistory {
		p.history = p.history[len(p.history)-maxHistory:]
	}
}

func (p Palette) matching() []string {
	prefix := strings.ToLower(p.input.Value())
	var out []string
	for _, h := range paletteHints {
		if prefix == "" || strings.HasPrefix(h, prefix) {
			out = append(out, h)
		}
	}
	return out
}

// completion drops argument placeholders from a hint.
func completion(hint string) string {
	if i := strings.Index(hint, " <"); i >= 0 {
		return hint[:i] + " "
	}
	return hint
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	matching := p.matching()
	if len(matching) > 5 {
		matching = matching[:5]
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command Palette") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if len(matching) > 0 {
		sb.WriteString("\n")
		for _, h := range matching {
			sb.WriteString(hintStyle.Render("  "+h) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
