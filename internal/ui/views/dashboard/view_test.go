package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	analyticsdto "healthdash/internal/modules/analytics/dto"
	recordsdto "healthdash/internal/modules/records/dto"
)

type fakePort struct {
	dashboard analyticsdto.DashboardOutput
	created   []recordsdto.CreateInput
	updated   []recordsdto.UpdateInput
	deleted   []int64
	err       error
}

func (f *fakePort) Dashboard(context.Context) (analyticsdto.DashboardOutput, error) {
	return f.dashboard, f.err
}

func (f *fakePort) Create(_ context.Context, in recordsdto.CreateInput) (recordsdto.RecordOutput, error) {
	f.created = append(f.created, in)
	return recordsdto.RecordOutput{ID: 9}, f.err
}

func (f *fakePort) Update(_ context.Context, in recordsdto.UpdateInput) (recordsdto.RecordOutput, error) {
	f.updated = append(f.updated, in)
	return recordsdto.RecordOutput{ID: in.ID}, f.err
}

func (f *fakePort) Delete(_ context.Context, id int64) (recordsdto.DeleteOutput, error) {
	f.deleted = append(f.deleted, id)
	return recordsdto.DeleteOutput{ID: id, Message: "Record deleted successfully"}, f.err
}

func keys(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// run executes cmd and any batched children, dropping spinner ticks.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, run(c)...)
		}
		return out
	case spinner.TickMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

func loaded(records ...recordsdto.RecordOutput) LoadedMsg {
	return LoadedMsg{Dashboard: analyticsdto.DashboardOutput{
		Username: "ada",
		Records:  records,
		Stats:    &analyticsdto.StatsOutput{Username: "ada", TotalSteps: 100, RecordCount: len(records), AverageSteps: 100},
	}}
}

// latest stamps msg as the answer to the fetch m is waiting for.
func latest(m Model, msg LoadedMsg) LoadedMsg {
	msg.seq = m.loadSeq
	return msg
}

func TestRefreshIsNotDuplicatedWhileLoading(t *testing.T) {
	t.Parallel()
	m := New(&fakePort{})
	if cmd := m.Refresh(); cmd == nil {
		t.Fatalf("expected first refresh to issue a request")
	}
	if cmd := m.Refresh(); cmd != nil {
		t.Fatalf("expected refresh to be refused while loading")
	}
	m, _ = m.Update(latest(m, loaded()))
	if cmd := m.Refresh(); cmd == nil {
		t.Fatalf("expected refresh after load completed")
	}
}

func TestLoadedFillsTableAndStats(t *testing.T) {
	t.Parallel()
	m := New(&fakePort{})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = m.Update(loaded(
		recordsdto.RecordOutput{ID: 2, Steps: 60, Timestamp: "2024-01-02T00:00:00"},
		recordsdto.RecordOutput{ID: 1, Steps: 40, Timestamp: "2024-01-01T00:00:00"},
	))
	if got := len(m.table.Rows()); got != 2 {
		t.Fatalf("expected 2 rows, got %d", got)
	}
	if rec, ok := m.selected(); !ok || rec.ID != 2 {
		t.Fatalf("expected newest record selected, got %+v", rec)
	}
	if m.View() == "" {
		t.Fatalf("expected rendered dashboard")
	}
}

func TestLoadErrorIsShown(t *testing.T) {
	t.Parallel()
	m := New(&fakePort{})
	m.Refresh()
	m, _ = m.Update(latest(m, LoadedMsg{Err: errors.New("boom")}))
	if m.err != "boom" || m.loading {
		t.Fatalf("expected error state, got err=%q loading=%v", m.err, m.loading)
	}
}

func TestAddFormCreatesRecordAndRefetches(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := New(port)
	m, _ = m.Update(loaded())

	m = keys(m, "a")
	if !m.Editing() {
		t.Fatalf("expected form to open")
	}
	m = keys(m, "1200")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = keys(m, "7.5")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = keys(m, "70")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Pending() {
		t.Fatalf("expected pending after submit")
	}
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); again != nil {
		t.Fatalf("expected resubmission to be refused")
	}

	msgs := run(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one result message, got %d", len(msgs))
	}
	if len(port.created) != 1 {
		t.Fatalf("expected one create call, got %d", len(port.created))
	}
	got := port.created[0]
	if got.Steps != 1200 || got.SleepHours != 7.5 || got.Weight != 70 || got.HeartRate != nil {
		t.Fatalf("unexpected create input %+v", got)
	}

	m, cmd = m.Update(msgs[0])
	if m.Editing() || m.Pending() {
		t.Fatalf("expected form closed after success")
	}
	if cmd == nil || !m.loading {
		t.Fatalf("expected refetch after mutation")
	}
}

func TestAddFormRejectsBadNumbers(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := New(port)
	m = keys(m, "a")
	m = keys(m, "lots")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.Pending() {
		t.Fatalf("expected no request for invalid input")
	}
	if m.form.err == "" {
		t.Fatalf("expected form error")
	}
}

func TestEditSendsOnlyChangedFields(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := New(port)
	m, _ = m.Update(loaded(recordsdto.RecordOutput{ID: 3, Steps: 100, SleepHours: 8, Weight: 60}))

	m = keys(m, "e")
	m = keys(m, "0")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(cmd)

	if len(port.updated) != 1 {
		t.Fatalf("expected one update, got %d", len(port.updated))
	}
	in := port.updated[0]
	if in.ID != 3 || in.Steps == nil || *in.Steps != 1000 {
		t.Fatalf("unexpected update %+v", in)
	}
	if in.SleepHours != nil || in.Weight != nil || in.HeartRate != nil {
		t.Fatalf("expected untouched fields omitted, got %+v", in)
	}
}

func TestMutationErrorStaysInForm(t *testing.T) {
	t.Parallel()
	port := &fakePort{err: errors.New("steps must be non-negative")}
	m := New(port)
	m = keys(m, "a1")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = keys(m, "1")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = keys(m, "1")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for _, msg := range run(cmd) {
		m, _ = m.Update(msg)
	}
	if !m.Editing() || m.form.err != "steps must be non-negative" {
		t.Fatalf("expected form to stay open with error, got editing=%v err=%q", m.Editing(), m.form.err)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := New(port)
	m, _ = m.Update(loaded(recordsdto.RecordOutput{ID: 5}))

	m = keys(m, "dn")
	if len(port.deleted) != 0 || m.notice != "delete cancelled" {
		t.Fatalf("expected delete to be cancelled")
	}

	m = keys(m, "d")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	msgs := run(cmd)
	if len(port.deleted) != 1 || port.deleted[0] != 5 {
		t.Fatalf("expected record 5 deleted, got %v", port.deleted)
	}
	m, _ = m.Update(msgs[0])
	if m.notice != "Record deleted successfully" {
		t.Fatalf("unexpected notice %q", m.notice)
	}
}

func TestResetClearsPreviousUser(t *testing.T) {
	t.Parallel()
	m := New(&fakePort{})
	m, _ = m.Update(loaded(recordsdto.RecordOutput{ID: 1}))
	m.Reset()
	if len(m.table.Rows()) != 0 || m.data.Username != "" || m.loaded {
		t.Fatalf("expected state cleared")
	}
}

func TestMutationRefetchesEvenWhileALoadIsInFlight(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := New(port)
	m, _ = m.Update(loaded(recordsdto.RecordOutput{ID: 1}))

	before := m.Refresh()
	if before == nil {
		t.Fatalf("expected initial fetch")
	}
	staleMsgs := run(before)

	create := m.CreateCmd(recordsdto.CreateInput{Steps: 10})
	m, after := m.Update(run(create)[0])
	if after == nil {
		t.Fatalf("expected a refetch after the mutation")
	}

	// The fetch issued before the mutation answers late and must not win.
	port.dashboard = analyticsdto.DashboardOutput{Username: "ada", Records: []recordsdto.RecordOutput{{ID: 9}, {ID: 1}}}
	m, _ = m.Update(staleMsgs[0])
	if !m.loading {
		t.Fatalf("stale result must not settle the newer fetch")
	}
	if len(m.table.Rows()) != 1 {
		t.Fatalf("stale result must not replace rows, got %d", len(m.table.Rows()))
	}

	for _, msg := range run(after) {
		m, _ = m.Update(msg)
	}
	if m.loading || len(m.table.Rows()) != 2 {
		t.Fatalf("expected post-mutation data, loading=%v rows=%d", m.loading, len(m.table.Rows()))
	}
}

func TestResetDropsFetchForPreviousUser(t *testing.T) {
	t.Parallel()
	port := &fakePort{dashboard: analyticsdto.DashboardOutput{Username: "ada", Records: []recordsdto.RecordOutput{{ID: 1}}}}
	m := New(port)
	msgs := run(m.Refresh())
	m.Reset()
	m, _ = m.Update(msgs[0])
	if m.loaded || len(m.table.Rows()) != 0 {
		t.Fatalf("expected previous user's data to be ignored")
	}
	if m.Refresh() == nil {
		t.Fatalf("expected refresh to be available after reset")
	}
}
