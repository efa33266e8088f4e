package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/forcing"
	"github.com/san-kum/drivenpend/internal/sim"
)

// Frames bounds how many snapshots a run sends to the view.
const Frames = 400

type runOutcome struct {
	result *sim.Result
	err    error
}

// Run executes the simulation in its own goroutine while the view renders
// its progress. Quitting the view cancels the run; the (possibly partial)
// result is returned once the goroutine has finished.
func Run(ctx context.Context, s *sim.Simulator, terms []forcing.Term, cfg dynamo.Config, opts ...tea.ProgramOption) (*sim.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(cfg, len(terms), cancel), opts...)

	every := cfg.Steps / Frames
	if every < 1 {
		every = 1
	}
	s.AddObserver(dynamo.ObserverFunc(func(step int, x dynamo.State, signal, noise float64) {
		if step%every == 0 {
			p.Send(StepMsg{Step: step, State: x, Signal: signal, Noise: noise})
		}
	}))
	s.SetProgress(every, func(done, total int) {
		p.Send(ProgressMsg{Done: done, Total: total})
	})

	outcome := make(chan runOutcome, 1)
	go func() {
		result, err := s.Run(ctx, terms, cfg)
		p.Send(DoneMsg{Result: result, Err: err})
		outcome <- runOutcome{result: result, err: err}
	}()

	_, progErr := p.Run()
	cancel()
	out := <-outcome
	if progErr != nil && out.err == nil {
		return out.result, progErr
	}
	return out.result, out.err
}
