package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/llmtuner/llmtuner/pkg/api"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return New(srv.URL, 5*time.Second), srv
}

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.HealthResponse{Status: "healthy", Message: "backend is running"})
	})
	client, srv := newTestClient(mux)
	defer srv.Close()

	resp, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Status = %q, want %q", resp.Status, "healthy")
	}
}

func TestHealthUnreachable(t *testing.T) {
	client := New("http://127.0.0.1:1", time.Second)
	if _, err := client.Health(context.Background()); err == nil {
		t.Error("expected error for unreachable backend")
	}
}

func TestStartTraining(t *testing.T) {
	var got api.TrainingConfig
	mux := http.NewServeMux()
	mux.HandleFunc("POST /training/start", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode config: %v", err)
		}
		json.NewEncoder(w).Encode(api.TrainingResponse{Success: true, TrainingID: "abc123", Message: "started"})
	})
	client, srv := newTestClient(mux)
	defer srv.Close()

	cfg := api.TrainingConfig{
		Epochs:        10,
		BatchSize:     4,
		LearningRate:  2e-4,
		FinetuneType:  api.MethodLora,
		LoraR:         16,
		LoraAlpha:     32,
		LoraDropout:   0.05,
		TargetModules: []string{"q_proj", "v_proj"},
	}
	resp, err := client.StartTraining(context.Background(), cfg)
	if err != nil {
		t.Fatalf("StartTraining: %v", err)
	}
	if !resp.Success || resp.TrainingID != "abc123" || resp.Message != "started" {
		t.Errorf("response = %+v, want success/abc123/started", resp)
	}
	if got.Epochs != 10 || got.LoraR != 16 || len(got.TargetModules) != 2 {
		t.Errorf("backend received config %+v", got)
	}
}

func TestTrainingStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /monitor/abc123", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.TrainingStatus{
			Status:       api.StatusRunning,
			Progress:     42,
			CurrentEpoch: 4,
			TotalEpochs:  10,
		})
	})
	client, srv := newTestClient(mux)
	defer srv.Close()

	status, err := client.TrainingStatus(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("TrainingStatus: %v", err)
	}
	if status.Status != api.StatusRunning {
		t.Errorf("Status = %q, want %q", status.Status, api.StatusRunning)
	}
	if status.Progress != 42 {
		t.Errorf("Progress = %v, want 42", status.Progress)
	}
	if status.CurrentEpoch != 4 || status.TotalEpochs != 10 {
		t.Errorf("epochs = %d/%d, want 4/10", status.CurrentEpoch, status.TotalEpochs)
	}
	if status.Terminal() {
		t.Error("running status reported as terminal")
	}
}

func TestUpload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer f.Close()
		if header.Filename != "data.csv" {
			t.Errorf("filename = %q, want data.csv", header.Filename)
		}
		json.NewEncoder(w).Encode(api.UploadResponse{Success: true, FileID: "file-1", Message: "uploaded", TotalRows: 2})
	})
	client, srv := newTestClient(mux)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "data.csv")
	csv := "instruction,input,response\nWhat is ML?,Explain simply,A subset of AI\n"
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}

	resp, err := client.Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !resp.Success || resp.FileID != "file-1" {
		t.Errorf("response = %+v, want success with fileId", resp)
	}
}

func TestUploadServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "file type not allowed", http.StatusBadRequest)
	})
	client, srv := newTestClient(mux)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "data.exe")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := client.Upload(context.Background(), path); err == nil {
		t.Error("expected error for 400 response")
	}
}

func TestExportModelWritesArtifact(t *testing.T) {
	payload := []byte{0x50, 0x4b, 0x03, 0x04, 0xde, 0xad, 0xbe, 0xef}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /export/model-1", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("format"); got != "onnx" {
			t.Errorf("format = %q, want onnx", got)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(payload)
	})
	client, srv := newTestClient(mux)
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "model-1.onnx")
	n, err := client.ExportModel(context.Background(), "model-1", "onnx", dest)
	if err != nil {
		t.Fatalf("ExportModel: %v", err)
	}
	if n != int64(len(payload)) {
		t.Errorf("wrote %d bytes, want %d", n, len(payload))
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != string(payload) {
		t.Error("artifact bytes differ from payload")
	}
}

func TestDeploy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /deploy", func(w http.ResponseWriter, r *http.Request) {
		var req api.DeployRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.ModelID != "model-1" {
			t.Errorf("modelId = %q, want model-1", req.ModelID)
		}
		json.NewEncoder(w).Encode(api.DeployResponse{
			Success:     true,
			EndpointURL: "https://api.example.com/models/model-1",
		})
	})
	client, srv := newTestClient(mux)
	defer srv.Close()

	resp, err := client.Deploy(context.Background(), "model-1", "api")
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	if resp.EndpointURL == "" {
		t.Error("expected endpoint URL")
	}
}

func TestSaveDataset(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /dataset", func(w http.ResponseWriter, r *http.Request) {
		var req api.SaveDatasetRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(api.SaveDatasetResponse{Success: true, Count: len(req.Entries)})
	})
	client, srv := newTestClient(mux)
	defer srv.Close()

	entries := []api.DatasetEntry{
		{ID: 1, Instruction: "a", Response: "b"},
		{ID: 2, Instruction: "c", Response: "d"},
	}
	resp, err := client.SaveDataset(context.Background(), entries)
	if err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("Count = %d, want 2", resp.Count)
	}
}
