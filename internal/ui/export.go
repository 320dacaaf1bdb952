package ui

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/rivo/tview"

	"github.com/llmtuner/llmtuner/pkg/api"
)

var exportFormats = []string{api.FormatONNX, api.FormatPyTorch, api.FormatKeras}

// exportView lists the trained models and drives export and deployment.
// Deploy stays disabled until the selected model has been exported.
type exportView struct {
	a    *App
	root *tview.Flex

	models   *tview.List
	form     *tview.Form
	status   *tview.TextView
	endpoint *tview.TextView

	state *exportState
	known []api.ModelInfo
	url   string
	busy  bool
	gen   int
}

func newExportView(a *App) *exportView {
	v := &exportView{a: a, state: newExportState()}

	v.models = tview.NewList().ShowSecondaryText(true)
	v.models.SetBorder(true).SetTitle(" Models ")
	v.models.SetChangedFunc(func(idx int, _, _ string, _ rune) {
		if idx >= 0 && idx < len(v.known) {
			v.state.SelectModel(v.known[idx].ID)
			v.rebuildForm()
		}
	})

	v.status = tview.NewTextView().SetDynamicColors(true)
	v.endpoint = tview.NewTextView().SetDynamicColors(true)
	v.form = tview.NewForm()
	v.rebuildForm()

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.form, 0, 1, true).
		AddItem(v.endpoint, 2, 0, false).
		AddItem(v.status, 2, 0, false)

	v.root = tview.NewFlex().
		AddItem(v.models, 0, 1, false).
		AddItem(right, 0, 2, true)
	v.root.SetBorder(true).SetTitle(" Export & Deployment ")

	v.refreshModels()
	return v
}

func (v *exportView) ID() string                 { return "export" }
func (v *exportView) Title() string              { return "Export & Deployment" }
func (v *exportView) Primitive() tview.Primitive { return v.root }

func (v *exportView) Deactivate() {
	v.gen++
	v.busy = false
}

func (v *exportView) rebuildForm() {
	v.form.Clear(true)

	fmtIdx := indexOf(exportFormats, v.state.format)
	v.form.AddDropDown("Format", exportFormats, fmtIdx, func(option string, idx int) {
		v.state.SelectFormat(option)
	})
	v.form.AddButton("Export", v.handleExport)
	if v.state.CanDeploy() {
		v.form.AddButton("Deploy", v.handleDeploy)
	}
	if v.url != "" {
		v.form.AddButton("Copy URL", func() {
			if err := clipboard.WriteAll(v.url); err != nil {
				v.setError(fmt.Sprintf("copy failed: %v", err))
				return
			}
			v.setSuccess("endpoint URL copied")
		})
		v.form.AddButton("Open URL", func() {
			if err := openBrowser(v.url); err != nil {
				v.setError(fmt.Sprintf("open failed: %v", err))
				return
			}
			v.setSuccess("opened in browser")
		})
	}
}

func (v *exportView) refreshModels() {
	gen := v.gen
	go func() {
		models, err := v.a.svc.ListModels(context.Background())
		v.a.queueDraw(func() {
			if gen != v.gen {
				return
			}
			if err != nil {
				v.setError(fmt.Sprintf("list models: %v", err))
				return
			}
			v.known = models
			v.models.Clear()
			for _, m := range models {
				v.models.AddItem(m.Name, m.BaseModel, 0, nil)
			}
			if len(models) > 0 {
				v.state.SelectModel(models[0].ID)
				v.rebuildForm()
			}
		})
	}()
}

func (v *exportView) handleExport() {
	if v.busy || !v.state.CanExport() {
		return
	}
	v.busy = true
	v.setInfo("exporting...")

	gen := v.gen
	modelID := v.state.modelID
	dest := filepath.Join(v.a.cfg.DownloadsDir, v.state.ArtifactName())
	format := v.state.format
	go func() {
		n, err := v.a.svc.ExportModel(context.Background(), modelID, format, dest)
		v.a.queueDraw(func() {
			if gen != v.gen {
				return
			}
			v.busy = false
			if err != nil {
				v.setError(fmt.Sprintf("export failed: %v", err))
				return
			}
			v.state.MarkExported(modelID)
			v.setSuccess(fmt.Sprintf("wrote %s (%s)", dest, formatBytes(n)))
			v.rebuildForm()
		})
	}()
}

func (v *exportView) handleDeploy() {
	if v.busy || !v.state.CanDeploy() {
		return
	}
	v.busy = true
	v.setInfo("deploying...")

	gen := v.gen
	modelID := v.state.modelID
	go func() {
		resp, err := v.a.svc.Deploy(context.Background(), modelID, "cloud")
		v.a.queueDraw(func() {
			if gen != v.gen {
				return
			}
			v.busy = false
			if err != nil {
				v.setError(fmt.Sprintf("deploy failed: %v", err))
				return
			}
			v.url = resp.EndpointURL
			v.endpoint.SetText("[green]endpoint: " + tview.Escape(v.url))
			v.setSuccess(resp.Message)
			v.rebuildForm()
		})
	}()
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

func (v *exportView) setError(msg string)   { v.status.SetText("[red]" + tview.Escape(msg)) }
func (v *exportView) setSuccess(msg string) { v.status.SetText("[green]" + tview.Escape(msg)) }
func (v *exportView) setInfo(msg string)    { v.status.SetText("[yellow]" + tview.Escape(msg)) }
