package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the client configuration. Everything here comes from the
// environment (or a .env file) with flag overrides applied in cmd.
type Config struct {
	APIURL         string        // base URL of the training backend
	PushURL        string        // websocket URL for push updates, "" disables push
	RequestTimeout time.Duration // per-request HTTP timeout
	PollInterval   time.Duration // status poll cadence when push is disabled
	DownloadsDir   string        // where exported artifacts and chat logs land
	Simulate       bool          // use the simulated provider instead of the backend
}

// Load reads a .env file if present, then builds a Config from the
// environment with defaults for a local development backend.
func Load() *Config {
	godotenv.Load()

	return &Config{
		APIURL:         getEnv("LLMTUNER_API_URL", "http://localhost:5000"),
		PushURL:        getEnv("LLMTUNER_PUSH_URL", ""),
		RequestTimeout: getDuration("LLMTUNER_REQUEST_TIMEOUT", 30*time.Second),
		PollInterval:   getDuration("LLMTUNER_POLL_INTERVAL", 5*time.Second),
		DownloadsDir:   getEnv("LLMTUNER_DOWNLOADS_DIR", DownloadsDir()),
		Simulate:       getBool("LLMTUNER_SIMULATE", false),
	}
}

// DownloadsDir returns the default directory for client-side file outputs.
func DownloadsDir() string {
	if dir := os.Getenv("LLMTUNER_DATA_DIR"); dir != "" {
		return filepath.Join(dir, "downloads")
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "llmtuner", "downloads")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "llmtuner", "downloads")
}

// EnsureDirs creates the required directories if they don't exist.
func EnsureDirs(cfg *Config) error {
	return os.MkdirAll(cfg.DownloadsDir, 0755)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
