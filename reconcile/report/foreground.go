package report

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gosynctasks/reconcile"
)

type tickMsg struct{ step, outOf int }
type labelMsg string
type summaryMsg struct {
	stats reconcile.Stats
	log   string
}

var labelStyle = lipgloss.NewStyle().Bold(true)

type progressModel struct {
	bar   progress.Model
	step  int
	outOf int
	label string
	done  bool
}

func newProgressModel() progressModel {
	return progressModel{bar: progress.New(progress.WithDefaultGradient())}
}

func (m progressModel) Init() tea.Cmd { return nil }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
		return m, nil
	case tickMsg:
		m.step, m.outOf = msg.step, msg.outOf
		return m, nil
	case labelMsg:
		m.label = string(msg)
		return m, nil
	case summaryMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	pct := 0.0
	if m.outOf > 0 {
		pct = float64(m.step) / float64(m.outOf)
	}
	return fmt.Sprintf("%s\n%s %d/%d\n", labelStyle.Render(m.label), m.bar.ViewAs(pct), m.step, m.outOf)
}

// Foreground is a bubbletea-driven reconcile.Reporter for interactive
// runs. Tick/Label calls are forwarded to the running program through
// tea.Program.Send, which is safe to call from other goroutines and
// does not block the reconciler. Summary ends the program and hands
// its result to Wait.
type Foreground struct {
	providerName    string
	suppressSummary bool

	program *tea.Program
	result  chan finalResult
}

type finalResult struct {
	stats reconcile.Stats
	log   string
}

// NewForeground constructs a Foreground reporter for providerName. Call
// Start before running the sync, and Wait afterward to block until the
// TUI exits and the run summary has been printed.
func NewForeground(providerName string, suppressSummary bool) *Foreground {
	return &Foreground{
		providerName:    providerName,
		suppressSummary: suppressSummary,
		program:         tea.NewProgram(newProgressModel()),
		result:          make(chan finalResult, 1),
	}
}

// Start runs the bubbletea program in its own goroutine.
func (f *Foreground) Start() {
	go func() { _, _ = f.program.Run() }()
}

// Tick implements reconcile.Reporter.
func (f *Foreground) Tick(step, outOf int) { f.program.Send(tickMsg{step: step, outOf: outOf}) }

// Label implements reconcile.Reporter.
func (f *Foreground) Label(text string) { f.program.Send(labelMsg(text)) }

// Summary implements reconcile.Reporter.
func (f *Foreground) Summary(stats reconcile.Stats, log string) {
	f.program.Send(summaryMsg{stats: stats, log: log})
	f.result <- finalResult{stats: stats, log: log}
}

// Wait blocks until the TUI has exited, then prints the run summary to
// stdout unless SuppressSummaryDialog is set.
func (f *Foreground) Wait() {
	res := <-f.result
	if f.suppressSummary {
		return
	}
	if text := reconcile.FormatSummary(f.providerName, res.stats, res.log); text != "" {
		fmt.Print(text)
	}
}
