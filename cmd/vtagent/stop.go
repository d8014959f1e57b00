package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vinhnx/vtagent-sub002/internal/signals"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask the session running in this project to drain",
	Long: `Signal the vtagent session running in the current project to stop.

Writes a stop file under .vtagent/signals. The running session begins
draining: active tasks get the configured grace period to finish, the
same as pressing Ctrl+C in the session terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signals.SendStop("."); err != nil {
			return fmt.Errorf("send stop signal: %w", err)
		}
		fmt.Println("Stop signal sent. The running session will drain.")
		return nil
	},
}
