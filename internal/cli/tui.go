package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/beamforge/pkg/observability"
	"github.com/matzehuels/beamforge/pkg/zgoubi"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// progressFrames animates the running state.
var progressFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// =============================================================================
// RunProgressModel - Live tracker run table
// =============================================================================

// runState is the lifecycle stage of one tracked run.
type runState int

const (
	runPending runState = iota
	runActive
	runDone
	runFailed
)

// Messages delivered by the run hooks and the ticker.
type (
	runStartedMsg  struct{ name string }
	runFinishedMsg struct {
		name    string
		cpu     float64
		elapsed time.Duration
		err     error
	}
	runsDoneMsg struct{}
	tickMsg     time.Time
)

// progressRow is the display state of one run.
type progressRow struct {
	name    string
	state   runState
	cpu     float64
	elapsed time.Duration
}

// RunProgressModel is the bubbletea model for the live run table.
type RunProgressModel struct {
	rows    []progressRow
	index   map[string]int
	frame   int
	done    bool
	aborted bool
}

// NewRunProgressModel creates a progress model with one pending row per input.
func NewRunProgressModel(inputs []zgoubi.Input) RunProgressModel {
	rows := make([]progressRow, len(inputs))
	index := make(map[string]int, len(inputs))
	for i, in := range inputs {
		rows[i] = progressRow{name: in.Name}
		index[in.Name] = i
	}
	return RunProgressModel{rows: rows, index: index}
}

func (m RunProgressModel) Init() tea.Cmd {
	return progressTick()
}

func progressTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m RunProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, progressTick()
	case runStartedMsg:
		if i, ok := m.index[msg.name]; ok {
			m.rows[i].state = runActive
		}
	case runFinishedMsg:
		if i, ok := m.index[msg.name]; ok {
			m.rows[i].state = runDone
			if msg.err != nil {
				m.rows[i].state = runFailed
			}
			m.rows[i].cpu = msg.cpu
			m.rows[i].elapsed = msg.elapsed
		}
	case runsDoneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m RunProgressModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Tracker runs"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("q abort"))
	b.WriteString("\n\n")

	rows := [][]string{}
	finished := 0
	for _, r := range m.rows {
		icon := "·"
		cpu, wall := "—", "—"
		switch r.state {
		case runActive:
			icon = progressFrames[m.frame%len(progressFrames)]
		case runDone, runFailed:
			icon = iconSuccess
			if r.state == runFailed {
				icon = iconError
			}
			if r.cpu >= 0 {
				cpu = fmt.Sprintf("%.2f", r.cpu)
			}
			wall = r.elapsed.Round(10 * time.Millisecond).String()
			finished++
		}
		rows = append(rows, []string{icon, r.name, cpu, wall})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Run", "CPU [s]", "Wall").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			if row >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			switch m.rows[row].state {
			case runPending:
				return lipgloss.NewStyle().Foreground(colorDim)
			case runActive:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case runFailed:
				if col == 0 {
					return lipgloss.NewStyle().Foreground(colorRed)
				}
			case runDone:
				if col == 0 {
					return lipgloss.NewStyle().Foreground(colorGreen)
				}
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d done]", finished, len(m.rows))))
	b.WriteString("\n")

	return b.String()
}

// =============================================================================
// Hook Bridge
// =============================================================================

// progressHooks forwards run lifecycle events into the bubbletea program.
type progressHooks struct {
	p *tea.Program
}

func (h progressHooks) OnRunStart(_ context.Context, name string) {
	h.p.Send(runStartedMsg{name: name})
}

func (h progressHooks) OnRunComplete(_ context.Context, name string, cpu float64, elapsed time.Duration, err error) {
	h.p.Send(runFinishedMsg{name: name, cpu: cpu, elapsed: elapsed, err: err})
}

// runWithProgress executes the batch under a live progress table on stderr.
// Quitting the table cancels the remaining runs. The runner's own logging is
// silenced while the table owns the terminal.
func runWithProgress(ctx context.Context, runner *zgoubi.Runner, inputs []zgoubi.Input) ([]*zgoubi.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewRunProgressModel(inputs), tea.WithOutput(os.Stderr), tea.WithContext(ctx))

	observability.SetRunHooks(progressHooks{p: p})
	defer observability.SetRunHooks(observability.NoopRunHooks{})

	prevLogger := runner.Logger
	runner.Logger = log.NewWithOptions(io.Discard, log.Options{})
	defer func() { runner.Logger = prevLogger }()

	type outcome struct {
		results []*zgoubi.Result
		err     error
	}
	outc := make(chan outcome, 1)
	go func() {
		results, err := runner.RunAll(ctx, inputs)
		p.Send(runsDoneMsg{})
		outc <- outcome{results: results, err: err}
	}()

	final, uiErr := p.Run()
	if m, ok := final.(RunProgressModel); ok && m.aborted {
		cancel()
	}
	if uiErr != nil {
		cancel()
	}

	out := <-outc
	return out.results, out.err
}
