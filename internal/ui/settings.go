package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rivo/tview"

	"github.com/llmtuner/llmtuner/pkg/api"
)

var finetuneMethods = []string{api.MethodFull, api.MethodLora, api.MethodQlora, api.MethodSFT, api.MethodDPO}

// settingsView is a pure form over TrainingConfig. Each numeric field clamps
// its own range; the view never runs a shared validation pass. LoRA fields
// only exist on the form while the method is lora or qlora.
type settingsView struct {
	a    *App
	root *tview.Flex

	form   *tview.Form
	cfg    api.TrainingConfig
	status *tview.TextView
	busy   bool
	gen    int

	onStarted func(trainingID string)
}

func newSettingsView(a *App, onStarted func(trainingID string)) *settingsView {
	v := &settingsView{
		a:         a,
		cfg:       api.DefaultTrainingConfig(),
		onStarted: onStarted,
	}

	v.status = tview.NewTextView().SetDynamicColors(true)
	v.form = tview.NewForm()
	v.rebuildForm()

	v.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.form, 0, 1, true).
		AddItem(v.status, 2, 0, false)
	v.root.SetBorder(true).SetTitle(" Fine-Tuning Settings ")

	return v
}

func (v *settingsView) ID() string                 { return "settings" }
func (v *settingsView) Title() string              { return "Fine-Tuning Settings" }
func (v *settingsView) Primitive() tview.Primitive { return v.root }

func (v *settingsView) Deactivate() {
	v.gen++
	v.busy = false
}

func (v *settingsView) rebuildForm() {
	v.form.Clear(true)

	methodIdx := 0
	for i, m := range finetuneMethods {
		if m == v.cfg.FinetuneType {
			methodIdx = i
		}
	}

	v.form.
		AddInputField("Model", v.cfg.ModelType, 40, nil, func(text string) {
			v.cfg.ModelType = text
		}).
		AddDropDown("Method", finetuneMethods, methodIdx, func(option string, idx int) {
			if option == v.cfg.FinetuneType {
				return
			}
			wasLora := v.cfg.UsesLora()
			v.cfg.FinetuneType = option
			// Adding or dropping the adapter fields needs a rebuild.
			if wasLora != v.cfg.UsesLora() {
				v.rebuildForm()
			}
		})

	v.addIntField("Epochs (1-10)", v.cfg.Epochs, 1, 10, func(n int) { v.cfg.Epochs = n })
	v.addIntField("Batch size (1-32)", v.cfg.BatchSize, 1, 32, func(n int) { v.cfg.BatchSize = n })
	v.addFloatField("Learning rate (1e-5 - 1e-3)", v.cfg.LearningRate, 1e-5, 1e-3, func(f float64) { v.cfg.LearningRate = f })
	v.addFloatField("Max grad norm", v.cfg.MaxGradNorm, 0, 10, func(f float64) { v.cfg.MaxGradNorm = f })
	v.addFloatField("Warmup ratio", v.cfg.WarmupRatio, 0, 1, func(f float64) { v.cfg.WarmupRatio = f })
	v.addIntField("Logging steps", v.cfg.LoggingSteps, 1, 1000, func(n int) { v.cfg.LoggingSteps = n })
	v.addFloatField("Validation split", v.cfg.ValidationSplit, 0, 0.5, func(f float64) { v.cfg.ValidationSplit = f })
	v.addIntField("Cutoff length", v.cfg.CutoffLen, 64, 4096, func(n int) { v.cfg.CutoffLen = n })

	optIdx := indexOf([]string{"adamw", "adam", "sgd"}, v.cfg.Optimizer)
	schedIdx := indexOf([]string{"linear", "cosine", "constant"}, v.cfg.Scheduler)
	v.form.
		AddDropDown("Optimizer", []string{"adamw", "adam", "sgd"}, optIdx, func(option string, idx int) {
			v.cfg.Optimizer = option
		}).
		AddDropDown("Scheduler", []string{"linear", "cosine", "constant"}, schedIdx, func(option string, idx int) {
			v.cfg.Scheduler = option
		})

	if v.cfg.UsesLora() {
		v.addIntField("LoRA rank", v.cfg.LoraR, 1, 256, func(n int) { v.cfg.LoraR = n })
		v.addIntField("LoRA alpha", v.cfg.LoraAlpha, 1, 512, func(n int) { v.cfg.LoraAlpha = n })
		v.addFloatField("LoRA dropout", v.cfg.LoraDropout, 0, 1, func(f float64) { v.cfg.LoraDropout = f })
		v.form.AddInputField("Target modules (comma-sep)", strings.Join(v.cfg.TargetModules, ","), 40, nil,
			func(text string) {
				v.cfg.TargetModules = splitModules(text)
			})
	}

	v.form.AddButton("Start Fine-Tuning", v.handleStart)
}

// addIntField adds a numeric input that only accepts digits and clamps the
// parsed value into [min, max].
func (v *settingsView) addIntField(label string, value, min, max int, set func(int)) {
	v.form.AddInputField(label, strconv.Itoa(value), 12, tview.InputFieldInteger, func(text string) {
		n, err := strconv.Atoi(text)
		if err != nil {
			return
		}
		set(clampInt(n, min, max))
	})
}

// addFloatField is the float counterpart of addIntField.
func (v *settingsView) addFloatField(label string, value, min, max float64, set func(float64)) {
	v.form.AddInputField(label, strconv.FormatFloat(value, 'g', -1, 64), 12, tview.InputFieldFloat, func(text string) {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return
		}
		set(clampFloat(f, min, max))
	})
}

func (v *settingsView) handleStart() {
	if v.busy {
		return
	}
	v.busy = true
	v.setInfo("starting training run...")

	gen := v.gen
	cfg := v.cfg
	go func() {
		resp, err := v.a.svc.StartTraining(context.Background(), cfg)
		v.a.queueDraw(func() {
			if gen != v.gen {
				return
			}
			v.busy = false
			if err != nil {
				v.setError(fmt.Sprintf("start failed: %v", err))
				return
			}
			v.setSuccess(fmt.Sprintf("run %s: %s", resp.TrainingID, resp.Message))
			if v.onStarted != nil && resp.TrainingID != "" {
				v.onStarted(resp.TrainingID)
			}
		})
	}()
}

func (v *settingsView) setError(msg string)   { v.status.SetText("[red]" + tview.Escape(msg)) }
func (v *settingsView) setSuccess(msg string) { v.status.SetText("[green]" + tview.Escape(msg)) }
func (v *settingsView) setInfo(msg string)    { v.status.SetText("[yellow]" + tview.Escape(msg)) }

func clampInt(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func clampFloat(f, min, max float64) float64 {
	if f < min {
		return min
	}
	if f > max {
		return max
	}
	return f
}

func indexOf(options []string, value string) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return 0
}

func splitModules(text string) []string {
	var out []string
	for _, m := range strings.Split(text, ",") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}
