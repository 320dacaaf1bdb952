package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/llmtuner/llmtuner/pkg/api"
)

// Client is a typed HTTP client that talks to the training backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new Client for the given backend URL. A zero timeout means
// requests only give up when their context is cancelled.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Health checks backend reachability via GET /health.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var result api.HealthResponse
	if err := c.getJSON(ctx, c.baseURL+"/health", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Upload sends a dataset file as a multipart request to POST /upload.
func (c *Client) Upload(ctx context.Context, path string) (*api.UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result api.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// SaveDataset sends the full manual-entry list to POST /dataset.
func (c *Client) SaveDataset(ctx context.Context, entries []api.DatasetEntry) (*api.SaveDatasetResponse, error) {
	body, _ := json.Marshal(api.SaveDatasetRequest{Entries: entries})

	var result api.SaveDatasetResponse
	if err := c.postJSON(ctx, "/dataset", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveTemplate persists the edited prompt template via POST /template.
func (c *Client) SaveTemplate(ctx context.Context, format, template string) error {
	body, _ := json.Marshal(api.SaveTemplateRequest{Format: format, Template: template})
	return c.postJSON(ctx, "/template", body, nil)
}

// ListModels returns the backend's model list from GET /models.
func (c *Client) ListModels(ctx context.Context) (*api.ModelListResponse, error) {
	var result api.ModelListResponse
	if err := c.getJSON(ctx, c.baseURL+"/models", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StartTraining submits a training config to POST /training/start.
func (c *Client) StartTraining(ctx context.Context, cfg api.TrainingConfig) (*api.TrainingResponse, error) {
	body, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	var result api.TrainingResponse
	if err := c.postJSON(ctx, "/training/start", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TrainingStatus polls the run status from GET /monitor/{trainingId}.
func (c *Client) TrainingStatus(ctx context.Context, trainingID string) (*api.TrainingStatus, error) {
	var result api.TrainingStatus
	url := fmt.Sprintf("%s/monitor/%s", c.baseURL, trainingID)
	if err := c.getJSON(ctx, url, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Chat sends a user message to POST /chat and returns the model's reply.
func (c *Client) Chat(ctx context.Context, message string) (*api.ChatResponse, error) {
	body, _ := json.Marshal(api.ChatRequest{Message: message})

	var result api.ChatResponse
	if err := c.postJSON(ctx, "/chat", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExportModel downloads the model artifact from GET /export/{modelId} and
// writes it to destPath. The format is passed as a query parameter so the
// backend can convert before streaming.
func (c *Client) ExportModel(ctx context.Context, modelID, format, destPath string) (int64, error) {
	url := fmt.Sprintf("%s/export/%s?format=%s", c.baseURL, modelID, format)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("create downloads dir: %w", err)
	}
	f, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("create artifact file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		os.Remove(destPath)
		return 0, fmt.Errorf("write artifact: %w", err)
	}
	return n, nil
}

// Deploy requests a hosted inference endpoint via POST /deploy.
func (c *Client) Deploy(ctx context.Context, modelID, deploymentType string) (*api.DeployResponse, error) {
	body, _ := json.Marshal(api.DeployRequest{ModelID: modelID, DeploymentType: deploymentType})

	var result api.DeployResponse
	if err := c.postJSON(ctx, "/deploy", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Internal helpers ---

func (c *Client) postJSON(ctx context.Context, path string, body []byte, result any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, url string, result any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
