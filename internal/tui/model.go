// Package tui shows a run in progress in the terminal and lets the user
// stop it.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/sim"
)

const (
	historyLen = 120
	trailLen   = 80
)

// StepMsg carries a snapshot of the run taken by the observer.
type StepMsg struct {
	Step   int
	State  dynamo.State
	Signal float64
	Noise  float64
}

type ProgressMsg struct {
	Done, Total int
}

// DoneMsg is sent once the run returns.
type DoneMsg struct {
	Result *sim.Result
	Err    error
}

type Model struct {
	cancel context.CancelFunc
	cfg    dynamo.Config
	terms  int

	done     int
	state    dynamo.State
	signal   []float64
	theta1   []float64
	noise    float64
	trail    []trailPoint
	started  time.Time
	elapsed  time.Duration
	finished bool
	stopping bool
	err      error

	width  int
	height int
}

func NewModel(cfg dynamo.Config, terms int, cancel context.CancelFunc) Model {
	return Model{
		cancel:  cancel,
		cfg:     cfg,
		terms:   terms,
		signal:  make([]float64, 0, historyLen),
		theta1:  make([]float64, 0, historyLen),
		trail:   make([]trailPoint, 0, trailLen),
		started: time.Now(),
		width:   80,
		height:  30,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.finished {
				return m, tea.Quit
			}
			m.stopping = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case StepMsg:
		m.state = msg.State
		m.noise = msg.Noise
		m.signal = appendBounded(m.signal, msg.Signal, historyLen)
		m.theta1 = appendBounded(m.theta1, msg.State.Theta1, historyLen)
		m.trail = append(m.trail, trailPoint{
			theta1:   msg.State.Theta1,
			theta2:   msg.State.Theta2,
			velocity: math.Abs(msg.State.Omega1) + math.Abs(msg.State.Omega2),
		})
		if len(m.trail) > trailLen {
			m.trail = m.trail[1:]
		}
		return m, nil

	case ProgressMsg:
		m.done = msg.Done
		return m, nil

	case DoneMsg:
		m.finished = true
		m.elapsed = time.Since(m.started)
		if msg.Result != nil {
			m.done = msg.Result.StepsTaken
			m.state = msg.Result.Final
		}
		if msg.Err != nil && !errors.Is(msg.Err, dynamo.ErrCanceled) {
			m.err = msg.Err
		}
		return m, tea.Quit
	}
	return m, nil
}

func appendBounded(s []float64, v float64, max int) []float64 {
	s = append(s, v)
	if len(s) > max {
		s = s[len(s)-max:]
	}
	return s
}

func (m Model) Progress() float64 {
	if m.cfg.Steps <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.cfg.Steps)
}

func (m Model) View() string {
	var b strings.Builder

	statusIcon, statusText := green.Render("●"), green.Render("running")
	switch {
	case m.err != nil:
		statusIcon, statusText = red.Render("●"), red.Render("failed")
	case m.finished && m.done < m.cfg.Steps:
		statusIcon, statusText = yellow.Render("○"), yellow.Render("stopped")
	case m.finished:
		statusIcon, statusText = cyan.Render("●"), cyan.Render("done")
	case m.stopping:
		statusIcon, statusText = yellow.Render("○"), yellow.Render("stopping")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n", statusIcon, cyan.Render("driven double pendulum"),
		statusText, dim.Render(fmt.Sprintf("%d terms", m.terms))))

	barWidth := 36
	filled := int(m.Progress() * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	stepStr := fmt.Sprintf("%d/%d", m.done, m.cfg.Steps)
	timeStr := fmt.Sprintf("t=%.3fs/%.0fs", m.state.T, m.cfg.Duration)
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar, dim.Render(stepStr), dim.Render(timeStr)))

	cw := m.width - 6
	ch := m.height / 3
	if cw < 40 {
		cw = 40
	}
	if ch < 8 {
		ch = 8
	}
	canvas := newCanvas(cw, ch)
	pivot := 0.0
	if m.cfg.Length > 0 {
		pivot = m.noise / m.cfg.Length
	}
	drawPendulum(canvas, cw, ch, m.state.Theta1, m.state.Theta2, pivot, m.trail)
	for _, row := range canvas {
		b.WriteString("   " + string(row) + "\n")
	}

	b.WriteString(fmt.Sprintf("\n   %s%s  %s%s  %s%s  %s%s\n",
		dim.Render("θ₁="), white.Render(fmt.Sprintf("%.3f", m.state.Theta1)),
		dim.Render("θ₂="), white.Render(fmt.Sprintf("%.3f", m.state.Theta2)),
		dim.Render("ω₁="), white.Render(fmt.Sprintf("%.3f", m.state.Omega1)),
		dim.Render("ω₂="), white.Render(fmt.Sprintf("%.3f", m.state.Omega2))))

	if len(m.theta1) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("θ₁"), cyan.Render(sparkline(m.theta1, 40))))
	}

	if len(m.signal) > 1 && finiteAll(m.signal) {
		graph := asciigraph.Plot(m.signal,
			asciigraph.Height(8),
			asciigraph.Width(cw-12),
			asciigraph.Caption("dati"),
		)
		b.WriteString("\n" + magenta.Render(graph) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n   " + red.Render(m.err.Error()) + "\n")
	}
	if m.finished {
		b.WriteString("\n" + dim.Render(fmt.Sprintf("   finished in %s", m.elapsed.Round(time.Millisecond))) + "\n")
	}
	b.WriteString("\n" + dim.Render("   q stop") + "\n")

	return b.String()
}

func finiteAll(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
