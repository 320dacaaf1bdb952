package ui

import (
	"strings"
	"testing"

	"github.com/llmtuner/llmtuner/pkg/api"
)

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		progress float64
		want     string
	}{
		{42, "42%"},
		{0, "0%"},
		{100, "100%"},
		{-5, "0%"},
		{140, "100%"},
	}
	for _, tt := range tests {
		got := renderProgressBar(tt.progress, 20)
		if !strings.HasSuffix(got, tt.want) {
			t.Errorf("renderProgressBar(%v) = %q, want suffix %q", tt.progress, got, tt.want)
		}
	}

	full := renderProgressBar(100, 10)
	if strings.Contains(full, "░") {
		t.Errorf("full bar still has empty cells: %q", full)
	}
	empty := renderProgressBar(0, 10)
	if strings.Contains(empty, "█") {
		t.Errorf("empty bar has filled cells: %q", empty)
	}
}

func TestRenderEpochs(t *testing.T) {
	s := api.TrainingStatus{Status: api.StatusRunning, Progress: 42, CurrentEpoch: 4, TotalEpochs: 10}
	if got := renderEpochs(s); got != "4 / 10" {
		t.Errorf("renderEpochs = %q, want %q", got, "4 / 10")
	}
}

func TestRenderMetrics(t *testing.T) {
	if got := renderMetrics(api.TrainingStatus{}); got != "—" {
		t.Errorf("no metrics = %q", got)
	}
	s := api.TrainingStatus{Metrics: &api.RunMetrics{Loss: 1.2345, Accuracy: 0.87}}
	got := renderMetrics(s)
	if !strings.Contains(got, "1.2345") || !strings.Contains(got, "87.00%") {
		t.Errorf("renderMetrics = %q", got)
	}
}

func TestRenderLossChart(t *testing.T) {
	if got := renderLossChart(nil, 20); got != "no loss samples yet" {
		t.Errorf("empty chart = %q", got)
	}

	chart := renderLossChart([]float64{2.4, 1.8, 0.9}, 20)
	lines := strings.Split(chart, "\n")
	if len(lines) != 3 {
		t.Fatalf("chart has %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[0], "2.4000") {
		t.Errorf("first line = %q", lines[0])
	}
	// The largest loss fills the full width; smaller ones are shorter.
	if strings.Count(lines[0], "▰") <= strings.Count(lines[2], "▰") {
		t.Errorf("bar lengths not scaled: %q vs %q", lines[0], lines[2])
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
