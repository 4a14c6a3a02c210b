package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ragnaroek/terminus/internal/domain"
)

func typeLine(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	m = next.(Model)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func sampleFrames() []domain.Frame {
	ms := time.Millisecond
	frames := framesOf(5*ms, 12*ms, 12*ms, 3*ms)
	frames[1].Children = []domain.Record{
		{SpanName: "calc_tics", Target: "iw::time", TimeBusy: 2 * ms},
		{SpanName: "draw", Target: "iw::play", TimeBusy: 7 * ms},
	}
	return frames
}

func TestCommandsUpdateView(t *testing.T) {
	m := New("trace.log", sampleFrames(), Options{ChartHeight: 5})
	m, _ = typeLine(t, m, ":f 1..2")
	if f := m.CurrentView().Filter; f == nil || *f != (domain.FilterState{Start: 1, End: 2}) {
		t.Fatalf("filter = %+v", f)
	}
	if m.input.Value() != "" {
		t.Fatalf("input not cleared: %q", m.input.Value())
	}
	m, _ = typeLine(t, m, ":f inspect max")
	d := m.CurrentView().Detail
	if d == nil || d.Index != 1 || d.Frame.Children[0].SpanName != "draw" {
		t.Fatalf("detail = %+v", d)
	}
	out := m.View()
	if !strings.Contains(out, "frame #1") || !strings.Contains(out, "showing 1..2") {
		t.Fatalf("view missing detail or filter:\n%s", out)
	}
	m, _ = typeLine(t, m, "nonsense")
	if m.input.Value() != "" || m.CurrentView().Detail == nil {
		t.Fatalf("unknown input should be cleared without changing the view")
	}
	m, _ = typeLine(t, m, ":f all")
	if v := m.CurrentView(); v.Filter != nil || v.Detail != nil {
		t.Fatalf(":f all left %+v", v)
	}
}

func TestQuitCommand(t *testing.T) {
	m := New("trace.log", sampleFrames(), Options{})
	m, cmd := typeLine(t, m, ":q")
	if !m.Quitting() || cmd == nil {
		t.Fatalf("expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("cmd should produce QuitMsg")
	}
	if m.View() != "" {
		t.Fatalf("quitting model should render nothing")
	}
}

func TestEscQuits(t *testing.T) {
	next, _ := New("t", nil, Options{}).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(Model).Quitting() {
		t.Fatalf("esc should quit")
	}
}

func TestEmptyTraceRenders(t *testing.T) {
	m := New("empty.log", nil, Options{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	m = next.(Model)
	m, _ = typeLine(t, m, ":f inspect max")
	if m.CurrentView().Detail != nil {
		t.Fatalf("inspect on empty trace should be a no-op")
	}
	if out := m.View(); !strings.Contains(out, "0 frames") {
		t.Fatalf("unexpected view:\n%s", out)
	}
}

func TestSummaryTableWithoutDetail(t *testing.T) {
	m := New("trace.log", sampleFrames(), Options{ChartHeight: 5})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m = next.(Model)
	out := m.View()
	if !strings.Contains(out, "children") || !strings.Contains(out, "12ms") || !strings.Contains(out, "5ms") {
		t.Fatalf("summary table missing:\n%s", out)
	}
	m, _ = typeLine(t, m, ":f 3..3")
	out = m.View()
	if strings.Contains(out, "12ms") || !strings.Contains(out, "3ms") {
		t.Fatalf("summary should follow the filter:\n%s", out)
	}
}
