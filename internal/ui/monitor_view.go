package ui

import (
	"context"
	"fmt"

	"github.com/rivo/tview"

	"github.com/llmtuner/llmtuner/internal/monitor"
	"github.com/llmtuner/llmtuner/internal/provider"
	"github.com/llmtuner/llmtuner/pkg/api"
)

const lossHistoryCap = 48

// monitorView renders the live status of one training run. It owns at most
// one observation at a time; SetRun tears the previous one down before
// starting the next.
type monitorView struct {
	a    *App
	root *tview.Flex

	header   *tview.TextView
	body     *tview.TextView
	errLine  *tview.TextView
	chart    *tview.TextView
	chartBox *tview.Flex

	runID  string
	stop   provider.StopFunc
	gen    int
	losses []float64
}

func newMonitorView(a *App) *monitorView {
	v := &monitorView{a: a}

	v.header = tview.NewTextView().SetDynamicColors(true)
	v.body = tview.NewTextView().SetDynamicColors(true)
	v.errLine = tview.NewTextView().SetDynamicColors(true)
	v.chart = tview.NewTextView().SetDynamicColors(true)

	v.chartBox = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.chart, 0, 1, false)
	v.chartBox.SetBorder(true).SetTitle(" Loss ")

	v.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.header, 2, 0, false).
		AddItem(v.body, 6, 0, false).
		AddItem(v.errLine, 1, 0, false).
		AddItem(v.chartBox, 0, 1, false)
	v.root.SetBorder(true).SetTitle(" Monitoring ")

	v.renderIdle()
	return v
}

func (v *monitorView) ID() string                 { return "monitoring" }
func (v *monitorView) Title() string              { return "Monitoring" }
func (v *monitorView) Primitive() tview.Primitive { return v.root }

func (v *monitorView) Deactivate() {
	v.stopObservation()
}

// SetRun starts observing a training run, replacing any observation already
// in flight. Safe to call from the UI goroutine only.
func (v *monitorView) SetRun(trainingID string) {
	v.stopObservation()
	v.runID = trainingID
	v.losses = nil
	v.gen++
	gen := v.gen

	v.header.SetText(fmt.Sprintf("run [yellow]%s[-]", tview.Escape(trainingID)))
	v.body.SetText("waiting for first update...")
	v.errLine.SetText("")
	v.chart.SetText("")

	updates, stop, err := v.a.svc.ObserveStatus(context.Background(), trainingID)
	if err != nil {
		v.errLine.SetText("[red]" + tview.Escape(fmt.Sprintf("observe failed: %v", err)))
		return
	}
	v.stop = stop

	go func() {
		for u := range updates {
			u := u
			v.a.queueDraw(func() {
				if gen != v.gen {
					return
				}
				v.apply(u)
			})
		}
	}()
}

func (v *monitorView) stopObservation() {
	if v.stop != nil {
		v.stop()
		v.stop = nil
	}
	v.gen++
}

func (v *monitorView) apply(u monitor.Update) {
	if u.Err != nil {
		// Transient poll failures stay on screen but don't wipe the last
		// good status.
		v.errLine.SetText("[red]" + tview.Escape(u.Err.Error()))
		return
	}
	v.errLine.SetText("")
	s := u.Status

	if s.Metrics != nil && s.Metrics.Loss > 0 {
		v.losses = append(v.losses, s.Metrics.Loss)
		if len(v.losses) > lossHistoryCap {
			v.losses = v.losses[len(v.losses)-lossHistoryCap:]
		}
	}

	v.body.SetText(fmt.Sprintf(
		"status   %s\nprogress %s\nepoch    %s\nmetrics  %s\n\n%s",
		statusColor(s.Status),
		renderProgressBar(s.Progress, 24),
		renderEpochs(s),
		renderMetrics(s),
		tview.Escape(s.Message),
	))
	v.chart.SetText(renderLossChart(v.losses, 30))

	if s.Terminal() {
		v.stopObservation()
	}
}

func (v *monitorView) renderIdle() {
	v.header.SetText("no active run")
	v.body.SetText("Start a run from Fine-Tuning Settings to monitor it here.")
}

func statusColor(status string) string {
	switch status {
	case api.StatusRunning:
		return "[yellow]" + status + "[-]"
	case api.StatusCompleted:
		return "[green]" + status + "[-]"
	case api.StatusFailed:
		return "[red]" + status + "[-]"
	default:
		return status
	}
}
