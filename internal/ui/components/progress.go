// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/time/rate"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ProgressMsg carries one trial completion into the progress model.
type ProgressMsg benchmark.Progress

// RunDoneMsg ends the progress view once the benchmark returns.
type RunDoneMsg struct {
	Err error
}

// =============================================================================
// RUN PROGRESS MODEL
// =============================================================================

// RunProgress is a bubbletea model showing a spinner, the current series and
// an overall progress bar for one benchmark run.
type RunProgress struct {
	spinner    spinner.Model
	bar        progress.Model
	title      string
	last       benchmark.Progress
	started    bool
	start      time.Time
	now        func() time.Time
	cancel     context.CancelFunc
	cancelling bool
	done       bool
	err        error
}

// NewRunProgress creates the model. cancel is called when the user presses
// ctrl+c or q; the view keeps running until RunDoneMsg arrives.
func NewRunProgress(title string, cancel context.CancelFunc) *RunProgress {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	return &RunProgress{
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient()),
		title:   title,
		now:     time.Now,
		start:   time.Now(),
		cancel:  cancel,
	}
}

// Init implements tea.Model.
func (m *RunProgress) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *RunProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.cancelling && m.cancel != nil {
				m.cancel()
			}
			m.cancelling = true
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
		if m.bar.Width > 100 {
			m.bar.Width = 100
		}
		if m.bar.Width < 20 {
			m.bar.Width = 20
		}
		return m, nil

	case ProgressMsg:
		m.last = benchmark.Progress(msg)
		m.started = true
		return m, m.bar.SetPercent(m.last.Percent())

	case RunDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.bar.Update(msg)
		m.bar = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *RunProgress) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(titleStyle.Render(m.title))

	if !m.started {
		b.WriteString(mutedStyle.Render("  preparing..."))
		b.WriteString("\n")
		return b.String()
	}

	engineStyle := lipgloss.NewStyle().Foreground(styles.EngineColor(string(m.last.Engine)))
	b.WriteString("  ")
	b.WriteString(engineStyle.Render(string(m.last.Engine)))
	b.WriteString(fmt.Sprintf("  size %s  trial %d/%d",
		benchmark.FormatCount(float64(m.last.Size)), m.last.Trial, m.last.SeriesLength))
	b.WriteString("\n\n  ")
	b.WriteString(m.bar.View())
	b.WriteString("\n\n  ")

	status := fmt.Sprintf("%d/%d trials  elapsed %s", m.last.Completed, m.last.Total,
		benchmark.FormatDuration(m.now().Sub(m.start)))
	if m.cancelling {
		status += "  stopping after current trial..."
	} else {
		status += "  (q to stop)"
	}
	b.WriteString(mutedStyle.Render(status))
	b.WriteString("\n")

	return b.String()
}

// Err returns the run error delivered by RunDoneMsg.
func (m *RunProgress) Err() error {
	return m.err
}

// =============================================================================
// THROTTLED REPORTER
// =============================================================================

// ProgressReporter forwards benchmark progress to a sender at a bounded rate.
// The last trial of every series is always forwarded.
type ProgressReporter struct {
	send    func(tea.Msg)
	limiter *rate.Limiter
}

// NewProgressReporter creates a reporter allowing perSecond updates.
func NewProgressReporter(send func(tea.Msg), perSecond float64) *ProgressReporter {
	return &ProgressReporter{
		send:    send,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Report forwards p if the rate allows it or it closes a series.
func (r *ProgressReporter) Report(p benchmark.Progress) {
	if p.Trial >= p.SeriesLength || p.Done() || r.limiter.Allow() {
		r.send(ProgressMsg(p))
	}
}

// =============================================================================
// PROGRAM
// =============================================================================

// RunFunc runs a benchmark, reporting progress through report.
type RunFunc func(ctx context.Context, report func(benchmark.Progress)) error

// RunWithProgress runs fn while drawing a progress view on out.
// Returns fn's error once the view has closed.
func RunWithProgress(ctx context.Context, out io.Writer, title string, fn RunFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewRunProgress(title, cancel)
	p := tea.NewProgram(model, tea.WithOutput(out))
	reporter := NewProgressReporter(p.Send, 15)

	errCh := make(chan error, 1)
	go func() {
		err := fn(ctx, reporter.Report)
		errCh <- err
		p.Send(RunDoneMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errCh
		return fmt.Errorf("progress view: %w", err)
	}
	return <-errCh
}
