package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/llmtuner/llmtuner/internal/chatlog"
)

type modelStatus int

const (
	modelLoading modelStatus = iota
	modelOnline
	modelOffline
)

func (s modelStatus) label() string {
	switch s {
	case modelOnline:
		return "[green]model online"
	case modelOffline:
		return "[red]model offline"
	default:
		return "[yellow]checking model..."
	}
}

// chatView drives a conversation against the fine-tuned model. Assistant
// replies are markdown, rendered through glamour before display.
type chatView struct {
	a    *App
	root *tview.Flex

	transcript *tview.TextView
	input      *tview.InputField
	statusLine *tview.TextView

	conv     *chatlog.Conversation
	status   modelStatus
	renderer *glamour.TermRenderer
}

func newChatView(a *App) *chatView {
	v := &chatView{
		a:    a,
		conv: chatlog.New(),
	}

	// Markdown renderer failure is not fatal, replies fall back to raw text.
	v.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(76),
	)

	v.transcript = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	v.transcript.SetBorder(true).SetTitle(" Conversation ")

	v.statusLine = tview.NewTextView().SetDynamicColors(true)
	v.statusLine.SetText(v.status.label())

	v.input = tview.NewInputField().SetLabel("You: ")
	v.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			v.handleSend()
		}
	})

	buttons := tview.NewFlex().
		AddItem(v.input, 0, 1, true).
		AddItem(button("Clear", v.handleClear), 9, 0, false).
		AddItem(button("Export", v.handleExport), 10, 0, false)

	v.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.statusLine, 1, 0, false).
		AddItem(v.transcript, 0, 1, false).
		AddItem(buttons, 1, 0, true)
	v.root.SetBorder(true).SetTitle(" Chatbot Interface ")

	v.redraw()
	return v
}

func button(label string, handler func()) *tview.Button {
	return tview.NewButton(label).SetSelectedFunc(handler)
}

func (v *chatView) ID() string                 { return "chatbot" }
func (v *chatView) Title() string              { return "Chatbot Interface" }
func (v *chatView) Primitive() tview.Primitive { return v.root }

// Deactivate is a no-op: an in-flight reply should still land in the
// transcript when the user comes back.
func (v *chatView) Deactivate() {}

// SetModelStatus flips the send gate. Called from the health check.
func (v *chatView) SetModelStatus(s modelStatus) {
	v.status = s
	v.statusLine.SetText(v.status.label())
}

func (v *chatView) handleSend() {
	if v.status != modelOnline {
		v.statusLine.SetText("[red]model offline, cannot send")
		return
	}
	text := strings.TrimSpace(v.input.GetText())
	if !v.conv.BeginSend(text) {
		return
	}
	v.input.SetText("")
	v.redraw()
	v.statusLine.SetText("[yellow]waiting for reply...")

	go func() {
		reply, err := v.a.svc.Chat(context.Background(), text)
		v.a.queueDraw(func() {
			if err != nil {
				v.conv.FailSend()
				v.statusLine.SetText("[red]" + tview.Escape(fmt.Sprintf("chat failed: %v", err)))
			} else {
				v.conv.CompleteSend(reply)
				v.statusLine.SetText(v.status.label())
			}
			v.redraw()
		})
	}()
}

func (v *chatView) handleClear() {
	v.conv.Clear()
	v.statusLine.SetText(v.status.label())
	v.redraw()
}

func (v *chatView) handleExport() {
	path, err := v.conv.ExportToDir(v.a.cfg.DownloadsDir)
	if err != nil {
		v.statusLine.SetText("[red]" + tview.Escape(fmt.Sprintf("export failed: %v", err)))
		return
	}
	v.statusLine.SetText("[green]exported to " + tview.Escape(path))
}

func (v *chatView) redraw() {
	var b strings.Builder
	for _, m := range v.conv.Messages() {
		if m.Role == chatlog.RoleUser {
			fmt.Fprintf(&b, "[blue::b]you[-:-:-]  %s\n\n", tview.Escape(m.Content))
			continue
		}
		fmt.Fprintf(&b, "[green::b]model[-:-:-]\n%s\n", v.renderMarkdown(m.Content))
	}
	if v.conv.Pending() {
		b.WriteString("[yellow]...[-]\n")
	}
	v.transcript.SetText(b.String())
	v.transcript.ScrollToEnd()
}

func (v *chatView) renderMarkdown(md string) string {
	if v.renderer == nil {
		return tview.Escape(md)
	}
	out, err := v.renderer.Render(md)
	if err != nil {
		return tview.Escape(md)
	}
	return tview.TranslateANSI(out)
}
