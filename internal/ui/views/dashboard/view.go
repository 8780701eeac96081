package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	analyticsdto "healthdash/internal/modules/analytics/dto"
	recordsdto "healthdash/internal/modules/records/dto"
	"healthdash/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type DashboardPort interface {
	Dashboard(ctx context.Context) (analyticsdto.DashboardOutput, error)
	Create(ctx context.Context, input recordsdto.CreateInput) (recordsdto.RecordOutput, error)
	Update(ctx context.Context, input recordsdto.UpdateInput) (recordsdto.RecordOutput, error)
	Delete(ctx context.Context, id int64) (recordsdto.DeleteOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// LoadedMsg carries a dashboard fetch. Results from superseded fetches are
// dropped.
type LoadedMsg struct {
	Dashboard analyticsdto.DashboardOutput
	Err       error

	seq int
}

// MutatedMsg reports a finished create, update or delete.
type MutatedMsg struct {
	Verb    string
	Message string
	Err     error
}

// ─── form ────────────────────────────────────────────────────────────────────

const (
	fieldSteps = iota
	fieldSleep
	fieldWeight
	fieldHeartRate
	fieldCount
)

var fieldLabels = [fieldCount]string{"Steps", "Sleep (hours)", "Weight (kg)", "Heart rate (optional)"}

type form struct {
	open    bool
	editID  int64
	inputs  [fieldCount]textinput.Model
	initial [fieldCount]string
	focus   int
	err     string
}

func newForm() form {
	var f form
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = "› "
		ti.CharLimit = 16
		f.inputs[i] = ti
	}
	return f
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port          DashboardPort
	table         table.Model
	spinner       spinner.Model
	form          form
	data          analyticsdto.DashboardOutput
	loaded        bool
	loading       bool
	loadSeq       int
	pending       bool
	confirmDelete bool
	err           string
	notice        string
	width         int
	height        int
}

func New(port DashboardPort) Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Surface1).
		BorderBottom(true).
		Foreground(theme.Sapphire).
		Bold(true)
	styles.Selected = styles.Selected.Foreground(theme.Base).Background(theme.Lavender)
	t.SetStyles(styles)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		table:   t,
		spinner: sp,
		form:    newForm(),
	}
}

// Refresh refetches records and stats. A refresh already in flight is not
// duplicated.
func (m *Model) Refresh() tea.Cmd {
	if m.loading {
		return nil
	}
	return m.reload()
}

// reload starts a fetch that supersedes any fetch still in flight.
func (m *Model) reload() tea.Cmd {
	m.loadSeq++
	m.loading = true
	m.err = ""
	return tea.Batch(m.loadCmd(m.loadSeq), m.spinner.Tick)
}

// Reset drops everything shown for the previous user.
func (m *Model) Reset() {
	m.data = analyticsdto.DashboardOutput{}
	m.loaded = false
	m.loading = false
	m.loadSeq++
	m.pending = false
	m.confirmDelete = false
	m.form.open = false
	m.err = ""
	m.notice = ""
	m.table.SetRows(nil)
}

// Editing reports whether the add/edit form owns the keyboard.
func (m Model) Editing() bool { return m.form.open }

func (m Model) Pending() bool { return m.pending }

// CreateCmd submits a new record built outside the form, as from the palette.
func (m *Model) CreateCmd(input recordsdto.CreateInput) tea.Cmd {
	if m.pending {
		return nil
	}
	m.pending = true
	return m.createCmd(input)
}

// DeleteCmd deletes a record by id.
func (m *Model) DeleteCmd(id int64) tea.Cmd {
	if m.pending {
		return nil
	}
	m.pending = true
	return m.deleteCmd(id)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case LoadedMsg:
		if msg.seq != m.loadSeq {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.loaded = true
		m.data = msg.Dashboard
		m.table.SetRows(rows(msg.Dashboard.Records))
		if m.table.Cursor() >= len(msg.Dashboard.Records) {
			m.table.SetCursor(max(len(msg.Dashboard.Records)-1, 0))
		}
		return m, nil

	case MutatedMsg:
		m.pending = false
		if msg.Err != nil {
			if m.form.open {
				m.form.err = msg.Err.Error()
			} else {
				m.err = msg.Err.Error()
			}
			return m, nil
		}
		m.form.open = false
		m.notice = msg.Message
		return m, m.reload()

	case spinner.TickMsg:
		if !m.loading && !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.form.open {
			return m.updateForm(msg)
		}
		if m.confirmDelete {
			m.confirmDelete = false
			if msg.String() == "y" {
				if rec, ok := m.selected(); ok {
					return m, m.DeleteCmd(rec.ID)
				}
			}
			m.notice = "delete cancelled"
			return m, nil
		}
		switch msg.String() {
		case "r":
			return m, m.Refresh()
		case "a":
			if m.pending {
				return m, nil
			}
			return m, m.openForm(nil)
		case "e":
			if rec, ok := m.selected(); ok && !m.pending {
				return m, m.openForm(&rec)
			}
			return m, nil
		case "d", "x":
			if _, ok := m.selected(); ok && !m.pending {
				m.confirmDelete = true
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.loaded && m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading your records…")
	}

	if m.form.open {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderForm())
	}

	tableW := m.tableWidth()
	tablePane := lipgloss.NewStyle().Width(tableW).Render(m.renderTable())
	var body string
	if tableW != m.width {
		body = lipgloss.JoinHorizontal(lipgloss.Top, tablePane, m.renderStats(statsWidth))
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, tablePane, m.renderStats(m.width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

// ─── private ─────────────────────────────────────────────────────────────────

const statsWidth = 34

// tableWidth leaves room for the stats pane beside the table, or stacks the
// two on narrow terminals.
func (m Model) tableWidth() int {
	if w := m.width - statsWidth; w >= 40 {
		return w
	}
	return m.width
}

func (m *Model) resize() {
	tableW := m.tableWidth()
	m.table.SetColumns(columns(tableW))
	m.table.SetWidth(tableW)
	m.table.SetHeight(max(m.height-4, 3))
}

func (m Model) selected() (recordsdto.RecordOutput, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.data.Records) {
		return recordsdto.RecordOutput{}, false
	}
	return m.data.Records[idx], true
}

func (m *Model) openForm(rec *recordsdto.RecordOutput) tea.Cmd {
	m.form = newForm()
	m.form.open = true
	if rec != nil {
		m.form.editID = rec.ID
		m.form.initial[fieldSteps] = strconv.Itoa(rec.Steps)
		m.form.initial[fieldSleep] = formatFloat(rec.SleepHours)
		m.form.initial[fieldWeight] = formatFloat(rec.Weight)
		if rec.HeartRate != nil {
			m.form.initial[fieldHeartRate] = strconv.Itoa(*rec.HeartRate)
		}
		for i := range m.form.inputs {
			m.form.inputs[i].SetValue(m.form.initial[i])
		}
	}
	return m.form.inputs[0].Focus()
}

func (m Model) updateForm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if !m.pending {
			m.form.open = false
		}
		return m, nil
	case "tab", "down", "shift+tab", "up":
		m.form.inputs[m.form.focus].Blur()
		step := 1
		if msg.String() == "shift+tab" || msg.String() == "up" {
			step = fieldCount - 1
		}
		m.form.focus = (m.form.focus + step) % fieldCount
		return m, m.form.inputs[m.form.focus].Focus()
	case "enter":
		return m.submitForm()
	}
	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

func (m Model) submitForm() (Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	values, err := m.form.parse()
	if err != nil {
		m.form.err = err.Error()
		return m, nil
	}
	m.form.err = ""

	if m.form.editID == 0 {
		m.pending = true
		return m, tea.Batch(m.createCmd(values.create()), m.spinner.Tick)
	}

	input := recordsdto.UpdateInput{ID: m.form.editID}
	if m.form.changed(fieldSteps) {
		input.Steps = &values.steps
	}
	if m.form.changed(fieldSleep) {
		input.SleepHours = &values.sleep
	}
	if m.form.changed(fieldWeight) {
		input.Weight = &values.weight
	}
	if m.form.changed(fieldHeartRate) && values.heartRate != nil {
		input.HeartRate = values.heartRate
	}
	m.pending = true
	return m, tea.Batch(m.updateCmd(input), m.spinner.Tick)
}

type formValues struct {
	steps     int
	sleep     float64
	weight    float64
	heartRate *int
}

func (v formValues) create() recordsdto.CreateInput {
	return recordsdto.CreateInput{
		Steps:      v.steps,
		SleepHours: v.sleep,
		Weight:     v.weight,
		HeartRate:  v.heartRate,
	}
}

func (f form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f form) changed(i int) bool {
	return f.value(i) != f.initial[i]
}

func (f form) parse() (formValues, error) {
	var v formValues
	var err error
	if v.steps, err = strconv.Atoi(f.value(fieldSteps)); err != nil {
		return v, fmt.Errorf("steps must be a whole number")
	}
	if v.sleep, err = strconv.ParseFloat(f.value(fieldSleep), 64); err != nil {
		return v, fmt.Errorf("sleep hours must be a number")
	}
	if v.weight, err = strconv.ParseFloat(f.value(fieldWeight), 64); err != nil {
		return v, fmt.Errorf("weight must be a number")
	}
	if raw := f.value(fieldHeartRate); raw != "" {
		hr, err := strconv.Atoi(raw)
		if err != nil {
			return v, fmt.Errorf("heart rate must be a whole number")
		}
		v.heartRate = &hr
	}
	return v, nil
}

func columns(width int) []table.Column {
	fixed := 8 + 10 + 10 + 10
	date := width - fixed - 10
	if date < 16 {
		date = 16
	}
	return []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Recorded", Width: date},
		{Title: "Steps", Width: 10},
		{Title: "Sleep", Width: 10},
		{Title: "Weight", Width: 10},
	}
}

func rows(records []recordsdto.RecordOutput) []table.Row {
	out := make([]table.Row, len(records))
	for i, r := range records {
		out[i] = table.Row{
			strconv.FormatInt(r.ID, 10),
			displayTime(r),
			strconv.Itoa(r.Steps),
			formatFloat(r.SleepHours) + "h",
			formatFloat(r.Weight) + "kg",
		}
	}
	return out
}

func displayTime(r recordsdto.RecordOutput) string {
	if r.RecordedAt.IsZero() {
		return r.Timestamp
	}
	return r.RecordedAt.Local().Format("2006-01-02 15:04")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (m Model) renderTable() string {
	title := theme.Title.Render("Records")
	if m.data.Username != "" {
		title += theme.Muted.Render("  " + m.data.Username)
	}
	if m.loading {
		title += "  " + m.spinner.View()
	}
	if m.loaded && len(m.data.Records) == 0 {
		return title + "\n\n" + theme.Muted.Render("No records yet. Press a to add your first one.")
	}
	return title + "\n" + m.table.View()
}

func (m Model) renderStats(width int) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Analytics") + "\n\n")
	switch {
	case m.data.Stats != nil:
		s := m.data.Stats
		sb.WriteString(theme.Muted.Render("total steps   ") + strconv.FormatInt(s.TotalSteps, 10) + "\n")
		sb.WriteString(theme.Muted.Render("records       ") + strconv.Itoa(s.RecordCount) + "\n")
		sb.WriteString(theme.Muted.Render("average steps ") + fmt.Sprintf("%.1f", s.AverageSteps) + "\n")
	case m.data.StatsPending:
		sb.WriteString(theme.Muted.Render("Stats are still being computed."))
	default:
		sb.WriteString(theme.Muted.Render("Add a record to see your stats."))
	}
	return theme.Pane.Width(max(width-4, 10)).Render(sb.String())
}

func (m Model) renderFooter() string {
	switch {
	case m.confirmDelete:
		rec, _ := m.selected()
		return theme.Hot.Render(fmt.Sprintf("Delete record %d? y to confirm, any other key cancels", rec.ID))
	case m.pending:
		return m.spinner.View() + " " + theme.Muted.Render("Saving…")
	case m.err != "":
		return theme.Error.Render(m.err)
	case m.notice != "":
		return theme.Good.Render(m.notice)
	}
	return theme.Muted.Render("a: add  e: edit  d: delete  r: refresh")
}

func (m Model) renderForm() string {
	var sb strings.Builder
	title := "New record"
	if m.form.editID != 0 {
		title = fmt.Sprintf("Edit record %d", m.form.editID)
	}
	sb.WriteString(theme.Title.Render(title) + "\n\n")
	for i, in := range m.form.inputs {
		label := theme.Muted.Render(fieldLabels[i])
		if i == m.form.focus {
			label = theme.Hot.Render(fieldLabels[i])
		}
		sb.WriteString(label + "\n" + in.View() + "\n\n")
	}
	switch {
	case m.pending:
		sb.WriteString(m.spinner.View() + " " + theme.Muted.Render("Saving…"))
	case m.form.err != "":
		sb.WriteString(theme.Error.Render(m.form.err))
	default:
		sb.WriteString(theme.Muted.Render("enter: save  tab: next field  esc: cancel"))
	}
	return theme.PaneActive.Width(48).Render(sb.String())
}

func (m Model) loadCmd(seq int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Dashboard(context.Background())
		return LoadedMsg{Dashboard: out, Err: err, seq: seq}
	}
}

func (m Model) createCmd(input recordsdto.CreateInput) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Create(context.Background(), input)
		if err != nil {
			return MutatedMsg{Verb: "create", Err: err}
		}
		return MutatedMsg{Verb: "create", Message: fmt.Sprintf("record %d saved", out.ID)}
	}
}

func (m Model) updateCmd(input recordsdto.UpdateInput) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Update(context.Background(), input)
		if err != nil {
			return MutatedMsg{Verb: "update", Err: err}
		}
		return MutatedMsg{Verb: "update", Message: fmt.Sprintf("record %d updated", out.ID)}
	}
}

func (m Model) deleteCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Delete(context.Background(), id)
		if err != nil {
			return MutatedMsg{Verb: "delete", Err: err}
		}
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("record %d deleted", id)
		}
		return MutatedMsg{Verb: "delete", Message: msg}
	}
}
