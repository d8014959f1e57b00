package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vinhnx/vtagent-sub002/internal/orchestrator"
	"github.com/vinhnx/vtagent-sub002/internal/tui"
)

// dashboardSession runs the live dashboard alongside an engine,
// forwarding engine events and periodic status snapshots.
type dashboardSession struct {
	program *tea.Program
	quit    chan struct{}
	done    chan struct{}
}

// startDashboard launches the dashboard program and its feeder
// goroutines.
func startDashboard(engine *orchestrator.Engine, refresh time.Duration) *dashboardSession {
	if refresh <= 0 {
		refresh = 100 * time.Millisecond
	}

	s := &dashboardSession{
		program: tui.NewDashboardProgram(engine.SessionID()),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go func() {
		s.program.Run()
		close(s.done)
	}()

	// Forward engine events until the session ends.
	go func() {
		for {
			select {
			case ev, ok := <-engine.Events():
				if !ok {
					return
				}
				s.program.Send(tui.EngineEventMsg{Event: ev})
				if ev.Type == orchestrator.EventSessionDone {
					return
				}
			case <-s.quit:
				return
			}
		}
	}()

	// Push status snapshots at the configured refresh rate.
	go func() {
		ticker := time.NewTicker(refresh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.program.Send(tui.StatusMsg{Report: engine.StatusReport()})
			case <-s.quit:
				return
			}
		}
	}()

	return s
}

// stop shuts the dashboard down and waits for the terminal to be
// restored.
func (s *dashboardSession) stop() {
	close(s.quit)
	s.program.Send(tui.DoneMsg{})
	<-s.done
}
