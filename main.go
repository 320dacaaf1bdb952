package main

import (
	"os"

	"github.com/llmtuner/llmtuner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
