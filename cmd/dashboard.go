package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/llmtuner/llmtuner/internal/apiclient"
	"github.com/llmtuner/llmtuner/internal/config"
	"github.com/llmtuner/llmtuner/internal/provider"
	"github.com/llmtuner/llmtuner/internal/ui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Launch the fine-tuning dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if flagAPIURL != "" {
			cfg.APIURL = flagAPIURL
		}
		if flagPushURL != "" {
			cfg.PushURL = flagPushURL
		}
		if flagSimulate {
			cfg.Simulate = true
		}
		if err := config.EnsureDirs(cfg); err != nil {
			exitError("prepare directories: %v", err)
		}

		var svc provider.TrainerService
		if cfg.Simulate {
			svc = provider.NewSim(time.Second, 800*time.Millisecond)
		} else {
			client := apiclient.New(cfg.APIURL, cfg.RequestTimeout)
			svc = provider.NewLive(client, cfg.PushURL, cfg.PollInterval)
		}

		return ui.New(svc, cfg).Run(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
