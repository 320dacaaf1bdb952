// Package dataset holds the client-side editing model for training data:
// an ordered list of instruction/input/response entries and preview parsing
// for files selected in the upload view.
package dataset

import (
	"fmt"

	"github.com/llmtuner/llmtuner/pkg/api"
)

// Entry fields addressable by EntryList.Update.
const (
	FieldInstruction = "instruction"
	FieldInput       = "input"
	FieldResponse    = "response"
)

// EntryList is an ordered list of dataset entries. Entry ids are unique but
// not contiguous after deletions: a new entry always gets max(ids)+1, and the
// last remaining entry can never be removed.
type EntryList struct {
	entries []api.DatasetEntry
}

// NewEntryList returns a list seeded with one blank entry, so the editor
// always has a row to type into.
func NewEntryList() *EntryList {
	return &EntryList{entries: []api.DatasetEntry{{ID: 1}}}
}

// Entries returns a copy of the current entries in order.
func (l *EntryList) Entries() []api.DatasetEntry {
	out := make([]api.DatasetEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *EntryList) Len() int {
	return len(l.entries)
}

// Add appends a new blank entry and returns its id.
func (l *EntryList) Add() int {
	maxID := 0
	for _, e := range l.entries {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	id := maxID + 1
	l.entries = append(l.entries, api.DatasetEntry{ID: id})
	return id
}

// Remove deletes the entry with the given id. Removing the sole remaining
// entry is a no-op; removing an unknown id is also a no-op.
func (l *EntryList) Remove(id int) {
	if len(l.entries) <= 1 {
		return
	}
	for i, e := range l.entries {
		if e.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}

// Update sets one field of the entry with the given id.
func (l *EntryList) Update(id int, field, value string) error {
	for i := range l.entries {
		if l.entries[i].ID != id {
			continue
		}
		switch field {
		case FieldInstruction:
			l.entries[i].Instruction = value
		case FieldInput:
			l.entries[i].Input = value
		case FieldResponse:
			l.entries[i].Response = value
		default:
			return fmt.Errorf("unknown field %q", field)
		}
		return nil
	}
	return fmt.Errorf("no entry with id %d", id)
}

// Get returns the entry with the given id.
func (l *EntryList) Get(id int) (api.DatasetEntry, bool) {
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return api.DatasetEntry{}, false
}
