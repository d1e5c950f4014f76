// Package ui renders batch analysis progress in the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ompscope/internal/pipeline"
)

const (
	labelWidth   = 10
	defaultWidth = 80
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stateStyles = [...]lipgloss.Style{
		rowQueued:    lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		rowLoading:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		rowLoaded:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		rowAnalyzing: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		rowDone:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		rowFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

type model struct {
	title  string
	events <-chan pipeline.Event
	board  board
	spin   spinner.Model
	bar    progress.Model
	width  int
	closed bool
}

type (
	eventMsg  pipeline.Event
	closedMsg struct{}
)

// NewProgressModel returns a Bubble Tea model showing one row per file.
// It quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan pipeline.Event) tea.Model {
	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultWidth-4))
	return &model{
		title:  title,
		events: events,
		board:  newBoard(files),
		spin:   spin,
		bar:    bar,
		width:  defaultWidth,
	}
}

// Run shows the progress view on out until events is closed.
func Run(out io.Writer, title string, files []string, events <-chan pipeline.Event) error {
	_, err := tea.NewProgram(NewProgressModel(title, files, events), tea.WithOutput(out), tea.WithInput(nil)).Run()
	return err
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.next())
}

// next waits for one pipeline event.
func (m *model) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return closedMsg{}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		var cmd tea.Cmd
		if m.board.apply(pipeline.Event(msg)) {
			cmd = m.bar.SetPercent(m.board.fraction())
		}
		return m, tea.Batch(cmd, m.next())
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case spinner.TickMsg:
		if !m.closed {
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

func (m *model) View() string {
	if len(m.board.rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.header()))
	b.WriteString("\n\n")

	pathWidth := max(m.width-labelWidth-14, 20)
	for _, r := range m.board.rows {
		label := stateStyles[r.state].Render(fmt.Sprintf("%*s", labelWidth, r.state))
		fmt.Fprintf(&b, "  %s %s", label, truncate(r.path, pathWidth))
		if r.state.terminal() && r.took > 0 {
			b.WriteString(dimStyle.Render(" " + r.took.Round(time.Millisecond).String()))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.closed {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func (m *model) header() string {
	finished, failed := m.board.tally()
	h := fmt.Sprintf("%s %d/%d", m.title, finished, len(m.board.rows))
	if failed > 0 {
		h += fmt.Sprintf(", %d with errors", failed)
	}
	if m.closed {
		return "done: " + h
	}
	return m.spin.View() + " " + h
}

// truncate shortens value to width terminal cells, marking the cut with
// "..." when there is room for it.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(value, width, tail)
}
