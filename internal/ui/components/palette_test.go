package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeInto(p Palette, s string) Palette {
	for _, r := range s {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return p
}

func submit(t *testing.T, p Palette) (Palette, string) {
	t.Helper()
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected submit command")
	}
	msg, ok := cmd().(PaletteSubmitMsg)
	if !ok {
		t.Fatalf("expected PaletteSubmitMsg")
	}
	return p, msg.Input
}

func TestPaletteSubmitsTrimmedInput(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p = typeInto(p, " stats:refresh ")
	p, got := submit(t, p)
	if got != "stats:refresh" {
		t.Fatalf("unexpected input %q", got)
	}
	if p.Visible() {
		t.Fatalf("palette must close on submit")
	}
}

func TestPaletteTabCompletesFirstMatch(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p = typeInto(p, "records:d")
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := p.input.Value(); got != "records:delete " {
		t.Fatalf("unexpected completion %q", got)
	}
}

func TestPaletteHistory(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	for _, cmd := range []string{"goto:home", "logout"} {
		p.Open()
		p = typeInto(p, cmd)
		p, _ = submit(t, p)
	}
	p.Open()
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyUp})
	if p.input.Value() != "logout" {
		t.Fatalf("expected last command, got %q", p.input.Value())
	}
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyUp})
	if p.input.Value() != "goto:home" {
		t.Fatalf("expected first command, got %q", p.input.Value())
	}
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	if p.input.Value() != "" {
		t.Fatalf("expected empty input past newest entry, got %q", p.input.Value())
	}
}

func TestPaletteEscCancels(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.Visible() {
		t.Fatalf("palette must close on esc")
	}
	if _, ok := cmd().(PaletteCancelMsg); !ok {
		t.Fatalf("expected cancel message")
	}
}
