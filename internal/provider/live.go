package provider

import (
	"context"
	"sync"
	"time"

	"github.com/llmtuner/llmtuner/internal/apiclient"
	"github.com/llmtuner/llmtuner/internal/monitor"
	"github.com/llmtuner/llmtuner/internal/pushchan"
	"github.com/llmtuner/llmtuner/pkg/api"
)

// Live talks to the real backend. Status observation uses the push channel
// when a push URL is configured, and falls back to polling otherwise.
type Live struct {
	client       *apiclient.Client
	pushURL      string
	pollInterval time.Duration
}

// NewLive creates a Live provider. pushURL may be empty to force polling.
func NewLive(client *apiclient.Client, pushURL string, pollInterval time.Duration) *Live {
	return &Live{
		client:       client,
		pushURL:      pushURL,
		pollInterval: pollInterval,
	}
}

func (l *Live) Health(ctx context.Context) (*api.HealthResponse, error) {
	return l.client.Health(ctx)
}

func (l *Live) Upload(ctx context.Context, path string) (*api.UploadResponse, error) {
	return l.client.Upload(ctx, path)
}

func (l *Live) SaveDataset(ctx context.Context, entries []api.DatasetEntry) (*api.SaveDatasetResponse, error) {
	return l.client.SaveDataset(ctx, entries)
}

func (l *Live) SaveTemplate(ctx context.Context, format, template string) error {
	return l.client.SaveTemplate(ctx, format, template)
}

func (l *Live) ListModels(ctx context.Context) ([]api.ModelInfo, error) {
	resp, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Models, nil
}

func (l *Live) StartTraining(ctx context.Context, cfg api.TrainingConfig) (*api.TrainingResponse, error) {
	return l.client.StartTraining(ctx, cfg)
}

func (l *Live) ObserveStatus(ctx context.Context, trainingID string) (<-chan monitor.Update, StopFunc, error) {
	if l.pushURL != "" {
		return l.observePush(ctx, trainingID)
	}
	return l.observePoll(ctx, trainingID)
}

func (l *Live) observePoll(ctx context.Context, trainingID string) (<-chan monitor.Update, StopFunc, error) {
	w := monitor.NewWatcher(l.client.TrainingStatus, l.pollInterval)
	ch := w.Watch(ctx, trainingID)

	var once sync.Once
	return ch, func() { once.Do(w.Stop) }, nil
}

func (l *Live) observePush(ctx context.Context, trainingID string) (<-chan monitor.Update, StopFunc, error) {
	conn, err := pushchan.Dial(ctx, l.pushURL)
	if err != nil {
		return nil, nil, err
	}
	if err := conn.Subscribe(trainingID); err != nil {
		conn.Close()
		return nil, nil, err
	}

	out := make(chan monitor.Update)
	go func() {
		defer close(out)
		defer conn.Close()
		for status := range conn.Updates() {
			select {
			case out <- monitor.Update{Status: status}:
			case <-ctx.Done():
				return
			}
			if status.Terminal() {
				return
			}
		}
	}()

	var once sync.Once
	return out, func() { once.Do(func() { conn.Close() }) }, nil
}

func (l *Live) Chat(ctx context.Context, message string) (string, error) {
	resp, err := l.client.Chat(ctx, message)
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (l *Live) ExportModel(ctx context.Context, modelID, format, destPath string) (int64, error) {
	return l.client.ExportModel(ctx, modelID, format, destPath)
}

func (l *Live) Deploy(ctx context.Context, modelID, deploymentType string) (*api.DeployResponse, error) {
	return l.client.Deploy(ctx, modelID, deploymentType)
}
