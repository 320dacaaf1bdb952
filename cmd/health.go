package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llmtuner/llmtuner/internal/apiclient"
	"github.com/llmtuner/llmtuner/internal/config"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if flagAPIURL != "" {
			cfg.APIURL = flagAPIURL
		}

		client := apiclient.New(cfg.APIURL, cfg.RequestTimeout)
		resp, err := client.Health(context.Background())
		if err != nil {
			return fmt.Errorf("backend unreachable: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "backend: %s\n", resp.Status)
		if resp.Version != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "version: %s\n", resp.Version)
		}
		if resp.Message != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "message: %s\n", resp.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
