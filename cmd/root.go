package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagAPIURL   string
	flagPushURL  string
	flagSimulate bool
)

var rootCmd = &cobra.Command{
	Use:   "llmtuner",
	Short: "LLM Tuner — fine-tuning dashboard",
	Long:  "LLM Tuner — terminal dashboard for dataset prep, fine-tuning runs, monitoring, chat testing, and model export.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "backend API URL (overrides LLMTUNER_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagPushURL, "push-url", "", "push channel URL (overrides LLMTUNER_PUSH_URL)")
	rootCmd.PersistentFlags().BoolVar(&flagSimulate, "simulate", false, "use the simulated backend")
}

func exitError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
