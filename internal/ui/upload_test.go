package ui

import (
	"testing"

	"github.com/llmtuner/llmtuner/pkg/api"
)

func TestUploadSuccessMessageIncludesRowCount(t *testing.T) {
	resp := &api.UploadResponse{
		Success:   true,
		FileID:    "f1",
		Message:   "dataset stored",
		TotalRows: 120,
	}
	got := uploadSuccessMessage(resp)
	want := "uploaded, fileId f1: dataset stored (120 rows)"
	if got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestUploadSuccessMessageOmitsZeroRowCount(t *testing.T) {
	resp := &api.UploadResponse{Success: true, FileID: "f1", Message: "dataset stored"}
	got := uploadSuccessMessage(resp)
	want := "uploaded, fileId f1: dataset stored"
	if got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}
