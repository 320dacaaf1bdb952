// Package provider defines the data-service capability set the views consume,
// with two interchangeable implementations: a live one backed by the HTTP API
// and push channel, and a simulated one for demos and offline use. Views never
// know which one they got; composition picks.
package provider

import (
	"context"

	"github.com/llmtuner/llmtuner/internal/monitor"
	"github.com/llmtuner/llmtuner/pkg/api"
)

// StopFunc tears down a status observation. It must be called when the
// monitoring view goes away, and is safe to call more than once.
type StopFunc func()

// TrainerService is everything the dashboard needs from a training backend.
type TrainerService interface {
	// Health checks whether the backend is reachable.
	Health(ctx context.Context) (*api.HealthResponse, error)

	// Upload sends a dataset file to the backend.
	Upload(ctx context.Context, path string) (*api.UploadResponse, error)

	// SaveDataset persists the manual-entry list.
	SaveDataset(ctx context.Context, entries []api.DatasetEntry) (*api.SaveDatasetResponse, error)

	// SaveTemplate persists an edited prompt template.
	SaveTemplate(ctx context.Context, format, template string) error

	// ListModels returns the models known to the backend.
	ListModels(ctx context.Context) ([]api.ModelInfo, error)

	// StartTraining submits a config and returns the run identifier.
	StartTraining(ctx context.Context, cfg api.TrainingConfig) (*api.TrainingResponse, error)

	// ObserveStatus streams status updates for a run until it reaches a
	// terminal state or the returned StopFunc is called. The provider owns
	// the sourcing choice (polling vs push) and its cancellation.
	ObserveStatus(ctx context.Context, trainingID string) (<-chan monitor.Update, StopFunc, error)

	// Chat sends a message to the fine-tuned model and returns its reply.
	Chat(ctx context.Context, message string) (string, error)

	// ExportModel downloads a model artifact to destPath and returns its size.
	ExportModel(ctx context.Context, modelID, format, destPath string) (int64, error)

	// Deploy requests a hosted inference endpoint for a model.
	Deploy(ctx context.Context, modelID, deploymentType string) (*api.DeployResponse, error)
}
