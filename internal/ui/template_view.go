package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rivo/tview"

	"github.com/llmtuner/llmtuner/internal/template"
)

// templateView edits the prompt template for the selected format. Picking a
// format throws away unsaved edits and loads that format's default.
type templateView struct {
	a    *App
	root *tview.Flex

	editor       *template.Editor
	textArea     *tview.TextArea
	placeholders *tview.TextView
	status       *tview.TextView
	gen          int
}

func newTemplateView(a *App) *templateView {
	v := &templateView{
		a:      a,
		editor: template.NewEditor(),
	}

	v.textArea = tview.NewTextArea().SetText(v.editor.Text(), false)
	v.textArea.SetBorder(true).SetTitle(" Template Content ")
	v.textArea.SetChangedFunc(func() {
		v.editor.SetText(v.textArea.GetText())
	})

	v.placeholders = tview.NewTextView().SetDynamicColors(true)
	v.placeholders.SetBorder(true).SetTitle(" Template Variables ")

	v.status = tview.NewTextView().SetDynamicColors(true)

	formats := template.Formats()
	initial := 0
	for i, f := range formats {
		if f == v.editor.Format() {
			initial = i
		}
	}

	form := tview.NewForm().
		AddDropDown("Format", formats, initial, func(option string, idx int) {
			if option == v.editor.Format() {
				return
			}
			v.editor.Select(option)
			v.textArea.SetText(v.editor.Text(), false)
			v.renderPlaceholders()
			v.clearStatus()
		}).
		AddButton("Save", v.handleSave).
		AddButton("Copy", v.handleCopy)
	form.SetBorder(false)

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 5, 0, true).
		AddItem(v.placeholders, 0, 1, false)

	body := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(left, 40, 0, true).
		AddItem(v.textArea, 0, 1, false)

	v.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(v.status, 1, 0, false)
	v.root.SetBorder(true).SetTitle(" Prompt Template ")

	v.renderPlaceholders()
	return v
}

func (v *templateView) ID() string                 { return "prompt" }
func (v *templateView) Title() string              { return "Prompt Template" }
func (v *templateView) Primitive() tview.Primitive { return v.root }

func (v *templateView) Deactivate() { v.gen++ }

func (v *templateView) renderPlaceholders() {
	var b strings.Builder
	for _, p := range template.Placeholders(v.editor.Format()) {
		fmt.Fprintf(&b, "[orange]%s[-]  %s\n", tview.Escape(p.Token), tview.Escape(p.Desc))
	}
	v.placeholders.SetText(b.String())
}

// handleSave persists the template fire-and-forget: the result only updates
// the status line.
func (v *templateView) handleSave() {
	gen := v.gen
	format, text := v.editor.Format(), v.editor.Text()
	v.setInfo("saving...")

	go func() {
		err := v.a.svc.SaveTemplate(context.Background(), format, text)
		v.a.queueDraw(func() {
			if gen != v.gen {
				return
			}
			if err != nil {
				v.setError(fmt.Sprintf("save failed: %v", err))
				return
			}
			v.setSuccess("template saved")
		})
	}()
}

func (v *templateView) handleCopy() {
	if err := clipboard.WriteAll(v.editor.Text()); err != nil {
		v.setError(fmt.Sprintf("copy failed: %v", err))
		return
	}
	v.setSuccess("template copied to clipboard")
}

func (v *templateView) setError(msg string)   { v.status.SetText("[red]" + tview.Escape(msg)) }
func (v *templateView) setSuccess(msg string) { v.status.SetText("[green]" + tview.Escape(msg)) }
func (v *templateView) setInfo(msg string)    { v.status.SetText("[yellow]" + tview.Escape(msg)) }
func (v *templateView) clearStatus()          { v.status.SetText("") }
