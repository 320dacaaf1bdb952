package ui

import (
	"fmt"
	"strings"

	"github.com/llmtuner/llmtuner/pkg/api"
)

// renderProgressBar draws a fixed-width percentage bar like
// "[██████░░░░░░░░░] 42%".
func renderProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	filled := int(progress * float64(width) / 100)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %.0f%%", bar, progress)
}

// renderEpochs formats the epoch counters as "current / total".
func renderEpochs(s api.TrainingStatus) string {
	return fmt.Sprintf("%d / %d", s.CurrentEpoch, s.TotalEpochs)
}

// renderMetrics formats the optional loss/accuracy pair, or "—" when the
// update carried none.
func renderMetrics(s api.TrainingStatus) string {
	if s.Metrics == nil {
		return "—"
	}
	return fmt.Sprintf("loss %.4f   accuracy %.2f%%", s.Metrics.Loss, s.Metrics.Accuracy*100)
}

// renderLossChart draws the loss history as one horizontal bar per sample,
// scaled to the largest loss seen.
func renderLossChart(history []float64, width int) string {
	if len(history) == 0 {
		return "no loss samples yet"
	}
	max := history[0]
	for _, v := range history {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		max = 1
	}

	var b strings.Builder
	for i, v := range history {
		n := int(v * float64(width) / max)
		if n < 1 && v > 0 {
			n = 1
		}
		fmt.Fprintf(&b, "%3d  %-*s %.4f\n", i+1, width, strings.Repeat("▰", n), v)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatBytes renders a byte count the way file pickers do.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
