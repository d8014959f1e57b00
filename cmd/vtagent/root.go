package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vtagent",
	Short: "Multi-agent coding session coordinator",
	Long: `vtagent coordinates a session of Claude-backed coding subagents.

Tasks are assigned to pooled workers by role (coders write, explorers
investigate), every result passes a verification gate before it counts,
and the session drains cleanly on shutdown.

Core flow:
- Submit tasks with 'vtagent run'
- Each task is executed by one worker and reviewed by the verifier
- Worker and session statistics accumulate as tasks finish
- 'vtagent status' reads the telemetry journal of past sessions`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
