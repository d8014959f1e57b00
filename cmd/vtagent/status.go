package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vinhnx/vtagent-sub002/internal/state"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recorded session telemetry",
	Long: `Display aggregate telemetry from past sessions.

Reads the execution journal under .vtagent/telemetry.db and shows
overall counters plus the most recent task executions.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Number of recent executions to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	dbPath := state.ProjectDBPath(cwd)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No telemetry recorded yet. Run 'vtagent run <task>' to start.")
		return nil
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open telemetry journal: %w", err)
	}
	defer db.Close()

	totals, err := db.Totals("")
	if err != nil {
		return fmt.Errorf("read totals: %w", err)
	}

	bold := color.New(color.Bold)
	bold.Println("All sessions")
	fmt.Printf("  tasks:        %d\n", totals.Tasks)
	if totals.Tasks > 0 {
		fmt.Printf("  success rate: %.0f%%\n", float64(totals.Successes)/float64(totals.Tasks)*100)
		fmt.Printf("  avg duration: %s\n", totals.AvgDuration.Round(time.Millisecond))
		fmt.Printf("  total tokens: %d\n", totals.TotalTokens)
	}

	recent, err := db.RecentExecutions(statusLimit)
	if err != nil {
		return fmt.Errorf("read recent executions: %w", err)
	}
	if len(recent) == 0 {
		return nil
	}

	fmt.Println()
	bold.Println("Recent executions")
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	for _, e := range recent {
		mark := green.Sprint("✓")
		if !e.Success {
			mark = red.Sprint("✗")
		}
		fmt.Printf("  %s %-14s %-9s %8s  %s\n",
			mark, e.TaskID, e.Role, e.Duration.Round(time.Millisecond),
			e.StartedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
