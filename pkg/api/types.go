package api

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Version string `json:"version,omitempty"`
}

// UploadResponse is the response for POST /upload.
type UploadResponse struct {
	Success   bool   `json:"success"`
	FileID    string `json:"fileId"`
	Message   string `json:"message"`
	TotalRows int    `json:"totalRows,omitempty"`
}

// DatasetEntry is one instruction/input/response triple of a training dataset.
type DatasetEntry struct {
	ID          int    `json:"id" csv:"id"`
	Instruction string `json:"instruction" csv:"instruction"`
	Input       string `json:"input" csv:"input"`
	Response    string `json:"response" csv:"response"`
}

// SaveDatasetRequest is the request for POST /dataset. The full list is sent
// every time; the backend does not support partial saves.
type SaveDatasetRequest struct {
	Entries []DatasetEntry `json:"entries"`
}

// SaveDatasetResponse is the response for POST /dataset.
type SaveDatasetResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// SaveTemplateRequest is the request for POST /template.
type SaveTemplateRequest struct {
	Format   string `json:"format"`
	Template string `json:"template"`
}

// TrainingConfig holds every hyperparameter the settings form collects.
// Field names follow the backend's snake_case convention.
type TrainingConfig struct {
	ModelType       string   `json:"model_type"`
	FinetuneType    string   `json:"finetune_type"`
	Epochs          int      `json:"epochs"`
	BatchSize       int      `json:"batch_size"`
	LearningRate    float64  `json:"learning_rate"`
	MaxGradNorm     float64  `json:"max_grad_norm"`
	WarmupRatio     float64  `json:"warmup_ratio"`
	LoggingSteps    int      `json:"logging_steps"`
	ValidationSplit float64  `json:"validation_split"`
	CutoffLen       int      `json:"cutoff_len"`
	Optimizer       string   `json:"optimizer"`
	Scheduler       string   `json:"scheduler"`
	LoraR           int      `json:"lora_r,omitempty"`
	LoraAlpha       int      `json:"lora_alpha,omitempty"`
	LoraDropout     float64  `json:"lora_dropout,omitempty"`
	TargetModules   []string `json:"target_modules,omitempty"`
}

// Fine-tuning methods accepted by the backend.
const (
	MethodFull  = "full"
	MethodLora  = "lora"
	MethodQlora = "qlora"
	MethodSFT   = "sft"
	MethodDPO   = "dpo"
)

// UsesLora reports whether the chosen method trains LoRA adapters, which makes
// the adapter-specific fields (rank, alpha, dropout, target modules) meaningful.
func (c TrainingConfig) UsesLora() bool {
	return c.FinetuneType == MethodLora || c.FinetuneType == MethodQlora
}

// DefaultTrainingConfig mirrors the backend's fallback hyperparameters.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		ModelType:     "microsoft/DialoGPT-medium",
		FinetuneType:  MethodLora,
		Epochs:        3,
		BatchSize:     4,
		LearningRate:  2e-4,
		MaxGradNorm:   0.3,
		WarmupRatio:   0.03,
		LoggingSteps:  10,
		CutoffLen:     512,
		Optimizer:     "adamw",
		Scheduler:     "linear",
		LoraR:         16,
		LoraAlpha:     32,
		LoraDropout:   0.05,
		TargetModules: []string{"q_proj", "v_proj"},
	}
}

// TrainingResponse is the response for POST /training/start.
type TrainingResponse struct {
	Success    bool   `json:"success"`
	TrainingID string `json:"trainingId"`
	Message    string `json:"message"`
}

// Training run statuses. The wire enum is pending/running/completed/failed;
// StatusIdle is the client-side zero state before the first update and is
// never sent by the backend.
const (
	StatusIdle      = "idle"
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// TrainingStatus is the response for GET /monitor/{trainingId} and the payload
// of training_update push events.
type TrainingStatus struct {
	Status       string      `json:"status"`
	Progress     float64     `json:"progress"`
	CurrentEpoch int         `json:"currentEpoch"`
	TotalEpochs  int         `json:"totalEpochs"`
	Metrics      *RunMetrics `json:"metrics,omitempty"`
	Message      string      `json:"message,omitempty"`
}

// Terminal reports whether the run has finished and no further updates will
// arrive.
func (s TrainingStatus) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// RunMetrics are the optional live metrics attached to a status update.
type RunMetrics struct {
	Loss     float64 `json:"loss"`
	Accuracy float64 `json:"accuracy"`
}

// ModelInfo describes one model in the GET /models response.
type ModelInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BaseModel string `json:"baseModel,omitempty"`
}

// ModelListResponse is the response for GET /models.
type ModelListResponse struct {
	Models []ModelInfo `json:"models"`
}

// ChatRequest is the request for POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the response for POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// DeployRequest is the request for POST /deploy.
type DeployRequest struct {
	ModelID        string `json:"modelId"`
	DeploymentType string `json:"deploymentType"`
}

// DeployResponse is the response for POST /deploy.
type DeployResponse struct {
	Success     bool   `json:"success"`
	EndpointURL string `json:"endpointUrl"`
	Message     string `json:"message"`
}

// Model export formats offered by the export view.
const (
	FormatONNX    = "onnx"
	FormatPyTorch = "pt"
	FormatKeras   = "h5"
)
