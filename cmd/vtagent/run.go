package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vinhnx/vtagent-sub002/internal/api"
	"github.com/vinhnx/vtagent-sub002/internal/config"
	"github.com/vinhnx/vtagent-sub002/internal/orchestrator"
	"github.com/vinhnx/vtagent-sub002/internal/perf"
	"github.com/vinhnx/vtagent-sub002/internal/pool"
	"github.com/vinhnx/vtagent-sub002/internal/signals"
	"github.com/vinhnx/vtagent-sub002/internal/state"
	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

var (
	runConfigPath string
	runRosterPath string
	runRole       string
	runModel      string
	runTUI        bool
	runNoVerify   bool
)

var runCmd = &cobra.Command{
	Use:   "run <task> [task...]",
	Short: "Run one or more tasks through the worker pool",
	Long: `Run tasks using a pool of Claude-backed workers.

Each argument is submitted as one task. Tasks run concurrently up to
the pool's capacity for the requested role; submissions beyond capacity
are rejected rather than queued. Every result is reviewed by the
verification gate before it counts as a success.

Roles (--role):
  - coder:    implementation work with write access (default)
  - explorer: read-only investigation

The session drains on completion or Ctrl+C: active tasks get the
configured grace period to finish before they are abandoned.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTasks,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to config file (default: standard lookup)")
	runCmd.Flags().StringVar(&runRosterPath, "roster", "", "Path to agents.yaml worker roster")
	runCmd.Flags().StringVar(&runRole, "role", "coder", "Worker role for the submitted tasks (coder|explorer)")
	runCmd.Flags().StringVar(&runModel, "model", "", "Override the configured model")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Show the live session dashboard")
	runCmd.Flags().BoolVar(&runNoVerify, "no-verify", false, "Accept executor output without LLM review")
}

func runTasks(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}
	if runModel != "" {
		cfg.Anthropic.Model = runModel
	}
	if runTUI {
		cfg.TUI.Enabled = true
	}

	role, err := models.ParseRole(runRole)
	if err != nil {
		return err
	}

	roster, err := loadRoster(cfg)
	if err != nil {
		return err
	}

	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.Region,
	})
	if err != nil {
		return err
	}

	engine, store, err := buildEngine(cfg, client, roster)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	// The shutdown grace is reloadable mid-session: edits to the
	// watched config file apply at drain time.
	var shutdownGrace atomic.Int64
	shutdownGrace.Store(int64(cfg.Shutdown.Grace))
	if watchPath := configWatchPath(); watchPath != "" {
		_, err := config.Watch(watchPath, func(fresh *config.Config, err error) {
			if err != nil {
				fmt.Fprintf(os.Stderr, "config reload rejected: %v\n", err)
				return
			}
			shutdownGrace.Store(int64(fresh.Shutdown.Grace))
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "config watch disabled: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A leftover stop file would drain the new session immediately.
	if err := signals.Clear("."); err != nil {
		return fmt.Errorf("clear stale stop signal: %w", err)
	}
	if sw, err := signals.NewWatcher("."); err == nil {
		defer sw.Close()
		go func() {
			select {
			case <-sw.Notify():
				stop()
			case <-ctx.Done():
			}
		}()
	}

	var ui *dashboardSession
	if cfg.TUI.Enabled {
		ui = startDashboard(engine, cfg.TUI.RefreshRate)
	}

	g, gctx := errgroup.WithContext(ctx)
	results := make([]*orchestrator.TaskResult, len(args))
	errs := make([]error, len(args))
	for i, title := range args {
		g.Go(func() error {
			res, err := engine.Execute(gctx, orchestrator.TaskRequest{
				Role:  role,
				Title: title,
			})
			results[i], errs[i] = res, err
			// A failed task does not abort its siblings.
			return nil
		})
	}
	g.Wait()

	report, err := engine.Shutdown(context.Background(), time.Duration(shutdownGrace.Load()))
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if ui != nil {
		ui.stop()
	}

	printResults(args, results, errs)
	printShutdownReport(report)

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("%d of %d tasks did not complete", countErrors(errs), len(args))
		}
	}
	return nil
}

func loadRunConfig() (*config.Config, error) {
	if runConfigPath != "" {
		return config.LoadFromPath(runConfigPath)
	}
	return config.Load()
}

// configWatchPath returns the config file to watch for reloads, or ""
// when the session runs purely on defaults.
func configWatchPath() string {
	if runConfigPath != "" {
		return runConfigPath
	}
	return config.GetProjectConfigPath()
}

func loadRoster(cfg *config.Config) (*config.Roster, error) {
	if runRosterPath != "" {
		return config.LoadRoster(runRosterPath)
	}
	return config.RosterFromWorkers(cfg.Workers), nil
}

// buildEngine assembles the pool, verifier, recorder, and engine from
// the resolved configuration.
func buildEngine(cfg *config.Config, client *api.Client, roster *config.Roster) (*orchestrator.Engine, *state.Store, error) {
	factory := api.NewFactory(client)

	p := pool.New()
	counts := map[models.Role]int{}
	for _, entry := range roster.Workers {
		role, err := models.ParseRole(entry.Role)
		if err != nil {
			return nil, nil, err
		}
		for i := 0; i < entry.Count; i++ {
			w := &pool.Worker{
				ID:       fmt.Sprintf("%s-%d", role, counts[role]),
				Role:     role,
				Executor: factory.NewExecutor(role),
			}
			counts[role]++
			if err := p.Add(w); err != nil {
				return nil, nil, err
			}
		}
	}

	verifier := newVerifier(cfg, client)

	perfOpts := []perf.Option{}
	var store *state.Store
	if cfg.Telemetry.Enabled {
		dbPath := cfg.Telemetry.DBPath
		if dbPath == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, nil, fmt.Errorf("get working directory: %w", err)
			}
			dbPath = state.ProjectDBPath(cwd)
		}
		var err error
		store, err = state.Open(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open telemetry journal: %w", err)
		}
		perfOpts = append(perfOpts, perf.WithStore(store))
	}
	recorder := perf.NewMonitor(perf.DefaultConfig(), perfOpts...)

	cwd, _ := os.Getwd()
	engine, err := orchestrator.New(
		orchestrator.RequiredConfig{Pool: p, Verifier: verifier},
		orchestrator.WithRecorder(recorder),
		orchestrator.WithLogger(orchestrator.NewDebugLoggerForDir(cwd)),
		orchestrator.WithModel(cfg.Anthropic.Model),
		orchestrator.WithHistoryLimit(cfg.Session.HistoryLimit),
		orchestrator.WithDrainInterval(cfg.Shutdown.PollInterval),
	)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}
	return engine, store, nil
}

func printResults(titles []string, results []*orchestrator.TaskResult, errs []error) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	fmt.Println()
	for i, title := range titles {
		switch {
		case errs[i] != nil:
			red.Printf("✗ %s\n", title)
			fmt.Printf("  %v\n", errs[i])
		case !results[i].Verification.Passed:
			yellow.Printf("✗ %s (rejected by verification)\n", title)
			fmt.Printf("  %s\n", results[i].Verification.Feedback)
		default:
			green.Printf("✓ %s\n", title)
			fmt.Printf("  %s (%s on %s)\n", results[i].Results.Summary,
				results[i].Duration.Round(time.Millisecond), results[i].WorkerID)
		}
	}
}

func printShutdownReport(report *orchestrator.ShutdownReport) {
	bold := color.New(color.Bold)

	fmt.Println()
	bold.Println("Session summary")
	fmt.Printf("  tasks:        %d\n", report.TotalTasks)
	fmt.Printf("  success rate: %.0f%%\n", report.SuccessRate*100)
	fmt.Printf("  avg duration: %s\n", report.AvgDuration.Round(time.Millisecond))
	if !report.Drained {
		color.New(color.FgYellow).Printf("  abandoned:    %d task(s) at shutdown\n", len(report.Forced))
	}
}

func countErrors(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}
