package ui

import "github.com/llmtuner/llmtuner/pkg/api"

// exportState tracks the export/deploy gating for one model selection.
// Deploy only unlocks after the currently selected model has been exported;
// switching models re-locks it.
type exportState struct {
	modelID  string
	format   string
	exported bool
}

func newExportState() *exportState {
	return &exportState{format: api.FormatONNX}
}

func (s *exportState) SelectModel(id string) {
	if id == s.modelID {
		return
	}
	s.modelID = id
	s.exported = false
}

func (s *exportState) SelectFormat(format string) {
	s.format = format
}

func (s *exportState) MarkExported(modelID string) {
	if modelID == s.modelID {
		s.exported = true
	}
}

func (s *exportState) CanExport() bool {
	return s.modelID != ""
}

func (s *exportState) CanDeploy() bool {
	return s.exported
}

// ArtifactName builds the download filename for the current selection.
func (s *exportState) ArtifactName() string {
	return s.modelID + "." + s.format
}
