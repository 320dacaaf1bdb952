package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/llmtuner/llmtuner/internal/dataset"
	"github.com/llmtuner/llmtuner/internal/monitor"
	"github.com/llmtuner/llmtuner/pkg/api"
)

// Sim is an offline stand-in for the backend. Training runs progress on a
// ticker instead of real gradient steps, chat replies arrive after a fixed
// delay, and exports write a small stub artifact. It exists so the dashboard
// can be demoed without a backend, with the same timing shape as the real one.
type Sim struct {
	step      time.Duration // wall time per simulated progress step
	chatDelay time.Duration

	mu   sync.Mutex
	runs map[string]api.TrainingConfig
}

// NewSim creates a simulated provider. step controls how fast runs progress;
// chatDelay how long the canned chat reply takes.
func NewSim(step, chatDelay time.Duration) *Sim {
	return &Sim{
		step:      step,
		chatDelay: chatDelay,
		runs:      make(map[string]api.TrainingConfig),
	}
}

func (s *Sim) Health(ctx context.Context) (*api.HealthResponse, error) {
	return &api.HealthResponse{Status: "healthy", Message: "simulated backend"}, nil
}

func (s *Sim) Upload(ctx context.Context, path string) (*api.UploadResponse, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !dataset.Allowed(path) {
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	return &api.UploadResponse{
		Success: true,
		FileID:  uuid.NewString(),
		Message: fmt.Sprintf("accepted %s (%d bytes)", filepath.Base(path), info.Size()),
	}, nil
}

func (s *Sim) SaveDataset(ctx context.Context, entries []api.DatasetEntry) (*api.SaveDatasetResponse, error) {
	return &api.SaveDatasetResponse{
		Success: true,
		Count:   len(entries),
		Message: fmt.Sprintf("saved %d entries", len(entries)),
	}, nil
}

func (s *Sim) SaveTemplate(ctx context.Context, format, template string) error {
	return nil
}

func (s *Sim) ListModels(ctx context.Context) ([]api.ModelInfo, error) {
	return []api.ModelInfo{
		{ID: "dialogpt-medium-ft", Name: "DialoGPT-medium (fine-tuned)", BaseModel: "microsoft/DialoGPT-medium"},
		{ID: "tinyllama-ft", Name: "TinyLlama-1.1B (fine-tuned)", BaseModel: "TinyLlama/TinyLlama-1.1B"},
	}, nil
}

func (s *Sim) StartTraining(ctx context.Context, cfg api.TrainingConfig) (*api.TrainingResponse, error) {
	if cfg.Epochs < 1 {
		return nil, fmt.Errorf("epochs must be at least 1")
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.runs[id] = cfg
	s.mu.Unlock()

	return &api.TrainingResponse{Success: true, TrainingID: id, Message: "started"}, nil
}

// ObserveStatus replays a full run: pending, a running update per progress
// step, then completed. Loss decays toward zero as epochs pass.
func (s *Sim) ObserveStatus(ctx context.Context, trainingID string) (<-chan monitor.Update, StopFunc, error) {
	s.mu.Lock()
	cfg, ok := s.runs[trainingID]
	s.mu.Unlock()
	if !ok {
		return nil, nil, fmt.Errorf("no training run %s", trainingID)
	}

	epochs := cfg.Epochs
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan monitor.Update)

	go func() {
		defer close(out)
		ticker := time.NewTicker(s.step)
		defer ticker.Stop()

		const steps = 10
		for i := 0; i <= steps; i++ {
			var status api.TrainingStatus
			switch {
			case i == 0:
				status = api.TrainingStatus{Status: api.StatusPending, TotalEpochs: epochs}
			case i == steps:
				status = api.TrainingStatus{
					Status:       api.StatusCompleted,
					Progress:     100,
					CurrentEpoch: epochs,
					TotalEpochs:  epochs,
					Metrics:      &api.RunMetrics{Loss: 0.42, Accuracy: 0.91},
					Message:      "training complete",
				}
			default:
				progress := float64(i) * 100 / steps
				epoch := 1 + (i-1)*epochs/steps
				status = api.TrainingStatus{
					Status:       api.StatusRunning,
					Progress:     progress,
					CurrentEpoch: epoch,
					TotalEpochs:  epochs,
					Metrics: &api.RunMetrics{
						Loss:     2.4 * (1 - progress/120),
						Accuracy: 0.5 + progress/250,
					},
				}
			}

			select {
			case out <- monitor.Update{Status: status}:
			case <-ctx.Done():
				return
			}
			if status.Terminal() {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	return out, func() { once.Do(cancel) }, nil
}

func (s *Sim) Chat(ctx context.Context, message string) (string, error) {
	select {
	case <-time.After(s.chatDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return fmt.Sprintf("I understand you're asking about %q. This is a response from your "+
		"fine-tuned model, trained on your specific dataset.", message), nil
}

func (s *Sim) ExportModel(ctx context.Context, modelID, format, destPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("create downloads dir: %w", err)
	}
	stub := fmt.Sprintf("llmtuner stub artifact: model=%s format=%s\n", modelID, format)
	if err := os.WriteFile(destPath, []byte(stub), 0644); err != nil {
		return 0, fmt.Errorf("write artifact: %w", err)
	}
	return int64(len(stub)), nil
}

func (s *Sim) Deploy(ctx context.Context, modelID, deploymentType string) (*api.DeployResponse, error) {
	return &api.DeployResponse{
		Success:     true,
		EndpointURL: fmt.Sprintf("https://api-inference.example.com/models/%s", modelID),
		Message:     "deployed",
	}, nil
}
