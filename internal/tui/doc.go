// Package tui provides the terminal dashboard for a running vtagent
// session.
//
// The dashboard is read-only: it renders the worker pool, in-flight
// tasks, and a rolling activity log from engine events. Users can only
// quit with 'q' or Ctrl+C; quitting the dashboard does not stop the
// session.
//
// Usage:
//
//	program := tui.NewDashboardProgram(sessionID)
//	go program.Run()
//
//	// Forward engine events
//	for ev := range engine.Events() {
//	    program.Send(tui.EngineEventMsg{Event: ev})
//	}
//
//	// Push periodic status snapshots
//	program.Send(tui.StatusMsg{Report: engine.StatusReport()})
//
//	// Signal completion
//	program.Send(tui.DoneMsg{})
package tui
