package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vinhnx/vtagent-sub002/internal/agent"
	"github.com/vinhnx/vtagent-sub002/internal/pool"
	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

func TestShutdown_CleanDrain(t *testing.T) {
	e := newTestEngine(t, passVerifier(),
		&pool.Worker{ID: "coder-0", Role: models.RoleCoder, Executor: okExecutor("done")})

	if _, err := e.Execute(context.Background(), TaskRequest{Role: models.RoleCoder, Title: "quick"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	rep, err := e.Shutdown(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !rep.Drained {
		t.Error("expected clean drain")
	}
	if len(rep.Forced) != 0 {
		t.Errorf("forced = %v, want none", rep.Forced)
	}
	if rep.TotalTasks != 1 || rep.SuccessRate != 1.0 {
		t.Errorf("report = %+v", rep)
	}

	// Draining engines reject new work.
	if _, err := e.Execute(context.Background(), TaskRequest{Role: models.RoleCoder, Title: "late"}); !errors.Is(err, ErrShuttingDown) {
		t.Errorf("post-shutdown Execute error = %v, want ErrShuttingDown", err)
	}
	if _, err := e.Shutdown(context.Background(), time.Second); !errors.Is(err, ErrShuttingDown) {
		t.Errorf("second Shutdown error = %v, want ErrShuttingDown", err)
	}
}

func TestShutdown_ForceFinalizesStuckTasks(t *testing.T) {
	release := make(chan struct{})
	stuckExec := agent.ExecutorFunc(func(ctx context.Context, task *models.Task, deps []string) (*models.TaskResults, error) {
		<-release
		return &models.TaskResults{Summary: "too late"}, nil
	})

	e := newTestEngine(t, passVerifier(),
		&pool.Worker{ID: "coder-0", Role: models.RoleCoder, Executor: stuckExec})

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := e.Execute(context.Background(), TaskRequest{Role: models.RoleCoder, Title: "stuck"})
		done <- err
	}()
	<-started
	waitForActive(t, e, 1)

	rep, err := e.Shutdown(context.Background(), 200*time.Millisecond)
	if err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if rep.Drained {
		t.Error("expected forced shutdown, got clean drain")
	}
	if len(rep.Forced) != 1 {
		t.Fatalf("forced = %v, want one task", rep.Forced)
	}

	hist := e.Registry().History(0)
	if len(hist) != 1 {
		t.Fatalf("history length = %d, want 1", len(hist))
	}
	if hist[0].Task.Status != models.TaskStatusFailed || hist[0].Task.Error != "shutdown" {
		t.Errorf("archived task = status %s error %q", hist[0].Task.Status, hist[0].Task.Error)
	}

	// The abandoned task's worker is out of rotation for good.
	snap, err := e.Pool().Get("coder-0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if snap.Status.Kind != pool.StatusUnavailable {
		t.Errorf("worker status = %+v, want unavailable", snap.Status)
	}

	// Let the stuck executor return; its late release must not bring
	// the worker back.
	close(release)
	<-done
	snap, _ = e.Pool().Get("coder-0")
	if snap.Status.Kind != pool.StatusUnavailable {
		t.Errorf("worker resurrected after late release, status %+v", snap.Status)
	}
}

func TestShutdown_WaitsForSlowTaskWithinGrace(t *testing.T) {
	e := newTestEngine(t, passVerifier(),
		&pool.Worker{ID: "coder-0", Role: models.RoleCoder, Executor: agent.ExecutorFunc(
			func(ctx context.Context, task *models.Task, deps []string) (*models.TaskResults, error) {
				time.Sleep(50 * time.Millisecond)
				return &models.TaskResults{Summary: "slow but fine"}, nil
			})})

	done := make(chan error, 1)
	go func() {
		_, err := e.Execute(context.Background(), TaskRequest{Role: models.RoleCoder, Title: "slow"})
		done <- err
	}()
	waitForActive(t, e, 1)

	rep, err := e.Shutdown(context.Background(), 2*time.Second)
	if err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !rep.Drained {
		t.Error("expected drain to wait out the slow task")
	}
	if execErr := <-done; execErr != nil {
		t.Errorf("slow task failed: %v", execErr)
	}

	hist := e.Registry().History(0)
	if len(hist) != 1 || hist[0].Task.Status != models.TaskStatusCompleted {
		t.Errorf("slow task should archive as completed, got %+v", hist)
	}
}

func waitForActive(t *testing.T, e *Engine, want int) {
	t.Helper()
	deadline := time.After(time.Second)
	for e.Registry().ActiveCount() != want {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d active tasks", want)
		case <-time.After(time.Millisecond):
		}
	}
}
