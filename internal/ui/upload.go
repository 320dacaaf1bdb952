package ui

import (
	"context"
	"fmt"

	"github.com/rivo/tview"

	"github.com/llmtuner/llmtuner/internal/dataset"
	"github.com/llmtuner/llmtuner/pkg/api"
)

// uploadView is the dataset screen: upload a file, or edit an
// instruction/input/response list by hand. The two modes are mutually
// exclusive and the user picks one at the top.
type uploadView struct {
	a    *App
	root *tview.Flex

	modePages *tview.Pages

	// File mode
	fileForm     *tview.Form
	filePath     string
	preview      *dataset.Preview
	previewTable *tview.Table

	// Manual mode
	entries    *dataset.EntryList
	manualWrap *tview.Flex
	manualForm *tview.Form

	status *tview.TextView
	busy   bool
	gen    int // bumped on Deactivate so stale responses are dropped
}

func newUploadView(a *App) *uploadView {
	v := &uploadView{
		a:       a,
		entries: dataset.NewEntryList(),
	}

	v.status = tview.NewTextView().SetDynamicColors(true)

	modeForm := tview.NewForm().
		AddDropDown("Data source", []string{"Upload file", "Manual entry"}, 0, func(option string, idx int) {
			if v.modePages == nil {
				return
			}
			if idx == 0 {
				v.modePages.SwitchToPage("file")
			} else {
				v.modePages.SwitchToPage("manual")
			}
			v.clearStatus()
		})
	modeForm.SetBorder(false)

	v.buildFileMode()
	v.buildManualMode()

	v.modePages = tview.NewPages()
	v.modePages.AddPage("file", v.fileModeLayout(), true, true)
	v.modePages.AddPage("manual", v.manualWrap, true, false)

	v.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(modeForm, 3, 0, false).
		AddItem(v.modePages, 0, 1, true).
		AddItem(v.status, 2, 0, false)
	v.root.SetBorder(true).SetTitle(" Dataset ")

	return v
}

func (v *uploadView) ID() string                 { return "upload" }
func (v *uploadView) Title() string              { return "Upload Dataset" }
func (v *uploadView) Primitive() tview.Primitive { return v.root }

func (v *uploadView) Deactivate() {
	v.gen++
	v.busy = false
}

// --- File mode ---

func (v *uploadView) buildFileMode() {
	v.previewTable = tview.NewTable().SetBorders(false)
	v.previewTable.SetBorder(true).SetTitle(" Preview ")

	v.fileForm = tview.NewForm().
		AddInputField("File path (.csv/.xlsx/.txt/.md)", "", 48, nil, func(text string) {
			v.filePath = text
		}).
		AddButton("Preview", v.handlePreview).
		AddButton("Upload", v.handleUpload)
	v.fileForm.SetBorder(false)
}

func (v *uploadView) fileModeLayout() tview.Primitive {
	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.fileForm, 7, 0, true).
		AddItem(v.previewTable, 0, 1, false)
}

func (v *uploadView) handlePreview() {
	if v.filePath == "" {
		v.setError("choose a file first")
		return
	}
	p, err := dataset.PreviewFile(v.filePath)
	if err != nil {
		v.preview = nil
		v.setError(err.Error())
		return
	}
	v.preview = p
	v.renderPreview()
	v.clearStatus()
}

func (v *uploadView) renderPreview() {
	v.previewTable.Clear()
	v.previewTable.SetTitle(fmt.Sprintf(" %s (%s) ", v.preview.Name, formatBytes(v.preview.Size)))

	if len(v.preview.Entries) == 0 {
		v.previewTable.SetCellSimple(0, 0, "no local preview for this file type")
		return
	}
	for col, h := range []string{"id", "instruction", "input", "response"} {
		v.previewTable.SetCellSimple(0, col, "[::b]"+h)
	}
	for row, e := range v.preview.Entries {
		v.previewTable.SetCellSimple(row+1, 0, fmt.Sprintf("%d", e.ID))
		v.previewTable.SetCellSimple(row+1, 1, tview.Escape(e.Instruction))
		v.previewTable.SetCellSimple(row+1, 2, tview.Escape(e.Input))
		v.previewTable.SetCellSimple(row+1, 3, tview.Escape(e.Response))
	}
}

func (v *uploadView) handleUpload() {
	if v.busy {
		return
	}
	if v.filePath == "" {
		v.setError("choose a file first")
		return
	}
	v.busy = true
	v.setInfo("uploading...")

	gen := v.gen
	path := v.filePath
	go func() {
		resp, err := v.a.svc.Upload(context.Background(), path)
		v.a.queueDraw(func() {
			if gen != v.gen {
				return
			}
			v.busy = false
			if err != nil {
				v.setError(fmt.Sprintf("upload failed: %v", err))
				return
			}
			v.setSuccess(uploadSuccessMessage(resp))
		})
	}()
}

// uploadSuccessMessage includes the server-side row count when the backend
// reports one.
func uploadSuccessMessage(resp *api.UploadResponse) string {
	msg := fmt.Sprintf("uploaded, fileId %s: %s", resp.FileID, resp.Message)
	if resp.TotalRows > 0 {
		msg += fmt.Sprintf(" (%d rows)", resp.TotalRows)
	}
	return msg
}

// --- Manual mode ---

func (v *uploadView) buildManualMode() {
	v.manualForm = tview.NewForm()
	v.manualWrap = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.manualForm, 0, 1, true)
	v.rebuildManualForm()
}

// rebuildManualForm regenerates the form from the entry list. tview forms
// don't support removing single items, so the whole form is rebuilt on every
// structural change; the list is small enough for that not to matter.
func (v *uploadView) rebuildManualForm() {
	v.manualForm.Clear(true)

	for _, e := range v.entries.Entries() {
		id := e.ID
		v.manualForm.
			AddInputField(fmt.Sprintf("#%d instruction", id), e.Instruction, 48, nil, func(text string) {
				v.entries.Update(id, dataset.FieldInstruction, text)
			}).
			AddInputField(fmt.Sprintf("#%d input", id), e.Input, 48, nil, func(text string) {
				v.entries.Update(id, dataset.FieldInput, text)
			}).
			AddInputField(fmt.Sprintf("#%d response", id), e.Response, 48, nil, func(text string) {
				v.entries.Update(id, dataset.FieldResponse, text)
			})
		if v.entries.Len() > 1 {
			v.manualForm.AddButton(fmt.Sprintf("Remove #%d", id), func() {
				v.entries.Remove(id)
				v.rebuildManualForm()
			})
		}
	}

	v.manualForm.
		AddButton("Add entry", func() {
			v.entries.Add()
			v.rebuildManualForm()
		}).
		AddButton("Save", v.handleSaveManual)
}

func (v *uploadView) handleSaveManual() {
	if v.busy {
		return
	}
	v.busy = true
	v.setInfo("saving...")

	gen := v.gen
	entries := v.entries.Entries()
	go func() {
		resp, err := v.a.svc.SaveDataset(context.Background(), entries)
		v.a.queueDraw(func() {
			if gen != v.gen {
				return
			}
			v.busy = false
			if err != nil {
				v.setError(fmt.Sprintf("save failed: %v", err))
				return
			}
			v.setSuccess(fmt.Sprintf("saved %d entries", resp.Count))
		})
	}()
}

// --- Status line ---

func (v *uploadView) setError(msg string) {
	v.status.SetText("[red]" + tview.Escape(msg))
}

func (v *uploadView) setSuccess(msg string) {
	v.status.SetText("[green]" + tview.Escape(msg))
}

func (v *uploadView) setInfo(msg string) {
	v.status.SetText("[yellow]" + tview.Escape(msg))
}

func (v *uploadView) clearStatus() {
	v.status.SetText("")
}
