package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vinhnx/vtagent-sub002/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show resolved configuration",
	Long: `Display the effective configuration after defaults, the user
config, the project config, and environment variables are merged.

Configuration is stored at ~/.config/vtagent/config.yaml
Project-specific overrides can be placed in .vtagent.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		displayConfig(cfg)
	},
}

func displayConfig(cfg *config.Config) {
	fmt.Println("Configuration:")
	fmt.Printf("  anthropic.api_key:        %s\n", describeAPIKey(cfg))
	fmt.Printf("  anthropic.model:          %s\n", cfg.Anthropic.Model)
	if cfg.Anthropic.VerifierModel != "" {
		fmt.Printf("  anthropic.verifier_model: %s\n", cfg.Anthropic.VerifierModel)
	}
	fmt.Printf("  anthropic.use_bedrock:    %v\n", cfg.Anthropic.UseBedrock)
	if cfg.Anthropic.UseBedrock {
		fmt.Printf("  anthropic.region:         %s\n", cfg.Anthropic.Region)
	}
	fmt.Printf("  workers.coders:           %d\n", cfg.Workers.Coders)
	fmt.Printf("  workers.explorers:        %d\n", cfg.Workers.Explorers)
	fmt.Printf("  session.history_limit:    %d\n", cfg.Session.HistoryLimit)
	fmt.Printf("  shutdown.grace:           %s\n", cfg.Shutdown.Grace)
	fmt.Printf("  shutdown.poll_interval:   %s\n", cfg.Shutdown.PollInterval)
	fmt.Printf("  telemetry.enabled:        %v\n", cfg.Telemetry.Enabled)
	fmt.Printf("  tui.enabled:              %v\n", cfg.TUI.Enabled)

	fmt.Println()
	fmt.Printf("User config:    %s\n", config.GetUserConfigPath())
	if project := config.GetProjectConfigPath(); project != "" {
		fmt.Printf("Project config: %s\n", project)
	}
}

// describeAPIKey renders the masked key, its source, and a format
// warning for keys that do not look like Anthropic keys.
func describeAPIKey(cfg *config.Config) string {
	key, _ := config.GetAPIKey(cfg)
	desc := fmt.Sprintf("%s (%s)", config.MaskAPIKey(key), config.GetAPIKeySource(cfg))
	if key != "" {
		if err := config.ValidateAPIKey(key); err != nil {
			desc += fmt.Sprintf(" [warning: %v]", err)
		}
	}
	return desc
}
