// Package ui is the tview dashboard: a sidebar that switches between six
// views, each owning its local state and talking to the provider on its own.
// The active page is the only cross-view state, and it lives here.
package ui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/llmtuner/llmtuner/internal/config"
	"github.com/llmtuner/llmtuner/internal/provider"
)

// View is one dashboard screen. Deactivate is called when the user switches
// away, so views can cancel observers and timers they own.
type View interface {
	ID() string
	Title() string
	Primitive() tview.Primitive
	Deactivate()
}

// App composes the sidebar and the view pages.
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	sidebar   *tview.List
	statusBar *tview.TextView

	svc    provider.TrainerService
	cfg    *config.Config
	views  []View
	active int
}

// New builds the dashboard against the given provider.
func New(svc provider.TrainerService, cfg *config.Config) *App {
	a := &App{
		app: tview.NewApplication(),
		svc: svc,
		cfg: cfg,
	}

	chat := newChatView(a)
	monitorV := newMonitorView(a)
	settings := newSettingsView(a, func(trainingID string) {
		monitorV.SetRun(trainingID)
		a.selectView(monitorV.ID())
	})

	a.views = []View{
		newUploadView(a),
		newTemplateView(a),
		settings,
		monitorV,
		chat,
		newExportView(a),
	}

	a.pages = tview.NewPages()
	for _, v := range a.views {
		a.pages.AddPage(v.ID(), v.Primitive(), true, false)
	}

	a.sidebar = tview.NewList().ShowSecondaryText(false)
	a.sidebar.SetBorder(true).SetTitle(" LLM Tuner ")
	for i, v := range a.views {
		idx := i
		a.sidebar.AddItem(v.Title(), "", rune('1'+i), func() {
			a.switchTo(idx)
		})
	}
	a.sidebar.SetHighlightFullLine(true).
		SetSelectedBackgroundColor(tcell.ColorDarkOrange)

	a.statusBar = tview.NewTextView().SetDynamicColors(true)
	a.statusBar.SetText("[gray]backend: checking...")

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.sidebar, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	root := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(left, 26, 0, true).
		AddItem(a.pages, 0, 1, false)

	a.app.SetRoot(root, true).EnableMouse(true)
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlD {
			a.Stop()
			return nil
		}
		return event
	})

	a.pages.SwitchToPage(a.views[0].ID())
	a.sidebar.SetCurrentItem(0)

	return a
}

// Run starts the event loop. The initial health check runs in the background
// so an unreachable backend never blocks startup.
func (a *App) Run(ctx context.Context) error {
	go a.checkHealth(ctx)
	return a.app.Run()
}

// Stop ends the event loop and tears down the active view.
func (a *App) Stop() {
	a.views[a.active].Deactivate()
	a.app.Stop()
}

func (a *App) switchTo(idx int) {
	if idx == a.active {
		return
	}
	a.views[a.active].Deactivate()
	a.active = idx
	a.pages.SwitchToPage(a.views[idx].ID())
}

// selectView switches both the pages and the sidebar selection; used for
// programmatic handoffs such as settings -> monitoring after a run starts.
func (a *App) selectView(id string) {
	for i, v := range a.views {
		if v.ID() == id {
			a.sidebar.SetCurrentItem(i)
			a.switchTo(i)
			return
		}
	}
}

func (a *App) checkHealth(ctx context.Context) {
	resp, err := a.svc.Health(ctx)
	a.app.QueueUpdateDraw(func() {
		if err != nil {
			a.statusBar.SetText("[red]backend: offline")
			a.chatView().SetModelStatus(modelOffline)
			return
		}
		a.statusBar.SetText(fmt.Sprintf("[green]backend: %s", tview.Escape(resp.Status)))
		a.chatView().SetModelStatus(modelOnline)
	})
}

func (a *App) chatView() *chatView {
	for _, v := range a.views {
		if cv, ok := v.(*chatView); ok {
			return cv
		}
	}
	return nil
}

// queueDraw hands a UI mutation to the tview event loop. Worker goroutines
// must never touch primitives directly.
func (a *App) queueDraw(f func()) {
	a.app.QueueUpdateDraw(f)
}
