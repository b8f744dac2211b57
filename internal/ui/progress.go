// Package ui renders workspace loading progress in the terminal.
package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"luasema/internal/workspace"
)

const (
	maxActive   = 6
	maxFailures = 5
)

var (
	headStyle   = lipgloss.NewStyle().Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

type failure struct {
	file string
	err  error
}

// loadModel counts files per phase instead of listing every file: a Lua
// tree easily has thousands of them.
type loadModel struct {
	title  string
	label  func(string) string
	events <-chan workspace.Event

	total     int
	parsed    int
	committed int
	active    []string // parsing right now, oldest first
	failures  []failure
	phase     workspace.Stage

	spin     spinner.Model
	bar      progress.Model
	width    int
	finished bool
}

type loadEvent workspace.Event
type loadClosed struct{}

// NewProgressModel returns a Bubble Tea model that follows a workspace load
// of files through events until the channel is closed. label turns paths into
// display names; nil shows them unchanged.
func NewProgressModel(title string, files []string, label func(string) string, events <-chan workspace.Event) tea.Model {
	if label == nil {
		label = func(s string) string { return s }
	}
	spin := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(activeStyle))
	return &loadModel{
		title:  title,
		label:  label,
		events: events,
		total:  len(files),
		phase:  workspace.StageLoad,
		spin:   spin,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),
		width:  80,
	}
}

func (m *loadModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.next())
}

// next blocks on the event channel in a tea command.
func (m *loadModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return loadEvent(ev)
		}
		return loadClosed{}
	}
}

func (m *loadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadEvent:
		m.apply(workspace.Event(msg))
		return m, tea.Batch(m.bar.SetPercent(m.fraction()), m.next())
	case loadClosed:
		m.finished = true
		m.active = nil
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 20)
		m.bar.Width = min(m.width-4, 80)
	case spinner.TickMsg:
		if !m.finished {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *loadModel) apply(ev workspace.Event) {
	if ev.File == "" {
		m.phase = ev.Stage
		return
	}
	name := m.label(ev.File)
	switch {
	case ev.Status == workspace.StatusError:
		m.drop(name)
		m.failures = append(m.failures, failure{file: name, err: ev.Err})
	case ev.Stage == workspace.StageParse && ev.Status == workspace.StatusWorking:
		m.active = append(m.active, name)
		m.phase = workspace.StageParse
	case ev.Stage == workspace.StageParse && ev.Status == workspace.StatusDone:
		m.drop(name)
		m.parsed++
	case ev.Stage == workspace.StageCommit && ev.Status == workspace.StatusDone:
		m.committed++
		m.phase = workspace.StageCommit
	}
}

func (m *loadModel) drop(name string) {
	if i := slices.Index(m.active, name); i >= 0 {
		m.active = slices.Delete(m.active, i, i+1)
	}
}

// fraction: разбор занимает большую часть времени, фиксация быстрая
func (m *loadModel) fraction() float64 {
	if m.total == 0 {
		return 1
	}
	work := 0.8*float64(m.parsed) + 0.2*float64(m.committed) + float64(len(m.failures))
	return min(work/float64(m.total), 1)
}

func (m *loadModel) View() string {
	if m.total == 0 {
		return ""
	}
	var b strings.Builder
	if m.finished {
		b.WriteString(okStyle.Render("✓") + " " + headStyle.Render(m.title))
	} else {
		b.WriteString(m.spin.View() + " " + headStyle.Render(m.title) + dimStyle.Render(" · "+phaseLabel(m.phase)))
	}
	b.WriteByte('\n')

	counts := fmt.Sprintf("parsed %d/%d  indexed %d/%d", m.parsed, m.total, m.committed, m.total)
	if n := len(m.failures); n > 0 {
		counts += "  " + failStyle.Render(fmt.Sprintf("failed %d", n))
	}
	b.WriteString("  " + counts + "\n")

	nameWidth := max(m.width-6, 10)
	shown := m.active[:min(len(m.active), maxActive)]
	for _, name := range shown {
		b.WriteString("  " + activeStyle.Render("›") + " " + fit(name, nameWidth) + "\n")
	}
	if extra := len(m.active) - len(shown); extra > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("    … %d more\n", extra)))
	}
	for _, f := range m.failures[:min(len(m.failures), maxFailures)] {
		line := f.file
		if f.err != nil {
			line += ": " + f.err.Error()
		}
		b.WriteString("  " + failStyle.Render("✗ "+fit(line, nameWidth)) + "\n")
	}

	b.WriteByte('\n')
	if m.finished {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func phaseLabel(stage workspace.Stage) string {
	switch stage {
	case workspace.StageParse:
		return "parsing"
	case workspace.StageCommit:
		return "indexing"
	case workspace.StageResolve:
		return "resolving members"
	default:
		return "scanning"
	}
}

// fit cuts s to width terminal cells.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
