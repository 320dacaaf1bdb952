package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/llmtuner/llmtuner/pkg/api"
)

// Extensions the backend accepts for dataset uploads.
var allowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".txt":  true,
	".md":   true,
}

// Allowed reports whether the file extension is accepted for upload.
func Allowed(path string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Preview describes a file selected for upload before it is sent anywhere.
type Preview struct {
	Name    string
	Size    int64
	Entries []api.DatasetEntry // populated for CSV files only
}

const maxPreviewRows = 5

// csvRow matches the column layout of uploadable CSV datasets. The id column
// is optional; rows without one get sequential ids.
type csvRow struct {
	ID          int    `csv:"id,omitempty"`
	Instruction string `csv:"instruction"`
	Input       string `csv:"input"`
	Response    string `csv:"response"`
}

// PreviewFile stats the selected file and, for CSVs, parses the first few
// rows locally so the user can sanity-check the columns before uploading.
// Other accepted formats show name and size only; the backend does the real
// parse after upload.
func PreviewFile(path string) (*Preview, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if !Allowed(path) {
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}

	p := &Preview{Name: filepath.Base(path), Size: info.Size()}

	if strings.ToLower(filepath.Ext(path)) != ".csv" {
		return p, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var rows []csvRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	for i, row := range rows {
		if i >= maxPreviewRows {
			break
		}
		id := row.ID
		if id == 0 {
			id = i + 1
		}
		p.Entries = append(p.Entries, api.DatasetEntry{
			ID:          id,
			Instruction: row.Instruction,
			Input:       row.Input,
			Response:    row.Response,
		})
	}
	return p, nil
}
