// Package tui is the interactive terminal front end: a frame duration chart,
// a detail pane for the inspected frame and a command line.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/Ragnaroek/terminus/internal/adapters/decoders/duration"
	"github.com/Ragnaroek/terminus/internal/domain"
	"github.com/Ragnaroek/terminus/internal/usecase"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	chartStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("201")) // magenta bars
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type Options struct {
	ChartHeight int
	Logger      *zerolog.Logger
}

// Model holds the UI state for the Bubbletea application. The frame slice is
// never modified; commands only replace view.
type Model struct {
	path        string
	frames      []domain.Frame
	max         time.Duration
	view        domain.View
	input       textinput.Model
	width       int
	height      int
	chartHeight int
	lastCommand string
	quitting    bool
	logger      *zerolog.Logger
}

func New(path string, frames []domain.Frame, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = ":f 0..100  :f inspect max  :f all  :q"
	ti.CharLimit = 120
	ti.Width = 60
	ti.Focus()

	h := opts.ChartHeight
	if h <= 0 {
		h = 10
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return Model{
		path:        path,
		frames:      frames,
		max:         usecase.MaxTotal(frames),
		input:       ti,
		width:       80,
		height:      24,
		chartHeight: h,
		logger:      logger,
	}
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) CurrentView() domain.View { return m.view }
func (m Model) Quitting() bool           { return m.quitting }

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - 4
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.runCommand()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) runCommand() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	out := usecase.Interpret(m.frames, m.view, line)
	m.view = out.View
	if out.ClearInput {
		m.input.Reset()
	}
	m.lastCommand = strings.TrimSpace(line)
	m.logger.Debug().Str("cmd", out.Command.Kind.String()).Str("input", line).Bool("recognized", out.Recognized).Msg("command")
	if out.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	first, window := usecase.Visible(m.frames, m.view.Filter)
	header := fmt.Sprintf("%s  %d frames", m.path, len(m.frames))
	if m.view.Filter != nil {
		header += fmt.Sprintf("  showing %d..%d (%d)", m.view.Filter.Start, m.view.Filter.End, len(window))
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")

	b.WriteString(dimStyle.Render("ms (log scale)"))
	b.WriteString("\n")
	for _, line := range renderChart(window, first, m.max, m.width, m.chartHeight) {
		b.WriteString(chartStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString(axisStyle.Render("frame"))
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")

	// rows left for the detail pane after header, chart, rule, input and help
	rows := m.height - (m.chartHeight + 6) - 4
	b.WriteString(m.renderDetail(rows))

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	help := "enter run · esc quit"
	if m.lastCommand != "" {
		help = "last: " + m.lastCommand + " · " + help
	}
	b.WriteString(dimStyle.Render(help))
	return b.String()
}

func (m Model) renderDetail(rows int) string {
	d := m.view.Detail
	if d == nil {
		return m.renderSummary(rows)
	}
	var b strings.Builder
	title := fmt.Sprintf("frame #%d", d.Index)
	if d.Frame.Record.SpanID != nil {
		title += fmt.Sprintf(" (span %d)", *d.Frame.Record.SpanID)
	}
	title += "  " + duration.Format(d.Frame.TotalDuration()) + "  " + d.Frame.Record.Target
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if rows < 1 {
		rows = 1
	}
	for i, c := range d.Frame.Children {
		if i >= rows {
			b.WriteString(dimStyle.Render(fmt.Sprintf("… %d more", len(d.Frame.Children)-rows)))
			b.WriteString("\n")
			break
		}
		b.WriteString(valueStyle.Render(fmt.Sprintf("%10s", duration.Format(c.TotalDuration()))))
		b.WriteString("  ")
		b.WriteString(fmt.Sprintf("%-12s %s  %s", c.SpanName, c.Target, c.Message))
		b.WriteString("\n")
	}
	if len(d.Frame.Children) == 0 {
		b.WriteString(dimStyle.Render("no child records"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderSummary lists the visible frames while none is inspected.
func (m Model) renderSummary(rows int) string {
	first, window := usecase.Visible(m.frames, m.view.Filter)
	if len(window) == 0 {
		return dimStyle.Render("no frames in view") + "\n"
	}
	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("%6s %6s %10s %8s   (:f inspect max for detail)", "frame", "span", "total", "children")))
	b.WriteString("\n")
	rows--
	if rows < 1 {
		rows = 1
	}
	for i, f := range window {
		if i >= rows {
			b.WriteString(dimStyle.Render(fmt.Sprintf("… %d more", len(window)-rows)))
			b.WriteString("\n")
			break
		}
		span := "-"
		if f.Record.SpanID != nil {
			span = fmt.Sprint(*f.Record.SpanID)
		}
		b.WriteString(fmt.Sprintf("%6d %6s ", first+i, span))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%10s", duration.Format(f.TotalDuration()))))
		b.WriteString(fmt.Sprintf(" %8d", len(f.Children)))
		b.WriteString("\n")
	}
	return b.String()
}
