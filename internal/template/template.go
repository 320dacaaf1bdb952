// Package template holds the prompt-template formats the backend understands
// and their default contents.
package template

import "sort"

// Known format identifiers.
const (
	FormatInstruction    = "instruction"
	FormatConversational = "conversational"
	FormatTranslational  = "translational"
)

var defaults = map[string]string{
	FormatInstruction: `### Instruction:
{instruction}

### Response:
{response}`,
	FormatConversational: `<|im_start|>user
{user_message}<|im_end|>
<|im_start|>assistant
{assistant_message}<|im_end|>`,
	FormatTranslational: `Translate the following text from {source_language} to {target_language}:

Source: {source_text}
Translation: {translation}`,
}

// Placeholder documents one substitution token of a template format.
type Placeholder struct {
	Token string
	Desc  string
}

var placeholders = map[string][]Placeholder{
	FormatInstruction: {
		{Token: "{instruction}", Desc: "The input instruction"},
		{Token: "{response}", Desc: "The expected response"},
	},
	FormatConversational: {
		{Token: "{user_message}", Desc: "User's message"},
		{Token: "{assistant_message}", Desc: "Assistant's response"},
	},
	FormatTranslational: {
		{Token: "{source_language}", Desc: "Source language"},
		{Token: "{target_language}", Desc: "Target language"},
		{Token: "{source_text}", Desc: "Text to translate"},
		{Token: "{translation}", Desc: "Translation result"},
	},
}

// Formats returns the known format identifiers in stable order.
func Formats() []string {
	out := make([]string, 0, len(defaults))
	for f := range defaults {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Default returns the default template text for a format, and whether the
// format is known.
func Default(format string) (string, bool) {
	t, ok := defaults[format]
	return t, ok
}

// Placeholders returns the substitution tokens of a format.
func Placeholders(format string) []Placeholder {
	return placeholders[format]
}

// Editor tracks the selected format and the editable template text. Switching
// formats overwrites the text with that format's default; unsaved edits to the
// previous format are discarded.
type Editor struct {
	format string
	text   string
}

// NewEditor starts on the instruction format with its default text.
func NewEditor() *Editor {
	return &Editor{format: FormatInstruction, text: defaults[FormatInstruction]}
}

// Format returns the currently selected format.
func (e *Editor) Format() string { return e.format }

// Text returns the current editable text.
func (e *Editor) Text() string { return e.text }

// SetText replaces the editable text with a user edit.
func (e *Editor) SetText(s string) { e.text = s }

// Select switches to the given format and resets the text to its default.
// Unknown formats are ignored.
func (e *Editor) Select(format string) {
	t, ok := defaults[format]
	if !ok {
		return
	}
	e.format = format
	e.text = t
}
