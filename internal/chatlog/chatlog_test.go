package chatlog

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNewSeedsGreeting(t *testing.T) {
	c := New()
	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("len = %d, want 1", len(msgs))
	}
	if msgs[0].Role != RoleAssistant || msgs[0].Content != Greeting {
		t.Errorf("seed message = %+v", msgs[0])
	}
}

func TestSendLifecycle(t *testing.T) {
	c := New()

	if !c.BeginSend("hello") {
		t.Fatal("BeginSend rejected the first message")
	}
	if !c.Pending() {
		t.Error("Pending = false during in-flight send")
	}
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2 (greeting + optimistic user message)", c.Len())
	}

	c.CompleteSend("hi there")
	if c.Pending() {
		t.Error("Pending = true after response")
	}
	msgs := c.Messages()
	if msgs[2].Role != RoleAssistant || msgs[2].Content != "hi there" {
		t.Errorf("reply = %+v", msgs[2])
	}
}

func TestSendWhileLoadingIsRejected(t *testing.T) {
	c := New()
	c.BeginSend("first")

	if c.BeginSend("second") {
		t.Error("BeginSend accepted a message while loading")
	}
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2 — no user message appended while loading", c.Len())
	}

	c.CompleteSend("reply")
	if !c.BeginSend("second") {
		t.Error("BeginSend rejected after the in-flight response resolved")
	}
}

func TestEmptySendIsRejected(t *testing.T) {
	c := New()
	if c.BeginSend("") {
		t.Error("BeginSend accepted an empty message")
	}
}

func TestFailSendClearsLoadingWithoutReply(t *testing.T) {
	c := New()
	c.BeginSend("hello")
	c.FailSend()

	if c.Pending() {
		t.Error("Pending = true after FailSend")
	}
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2 — no assistant reply on failure", c.Len())
	}
}

func TestClearResetsToSeed(t *testing.T) {
	c := New()
	c.BeginSend("hello")
	c.CompleteSend("hi")
	c.Clear()

	msgs := c.Messages()
	if len(msgs) != 1 || msgs[0].Content != Greeting {
		t.Errorf("after Clear: %+v", msgs)
	}
	if msgs[0].ID != 1 {
		t.Errorf("seed ID = %d, want 1", msgs[0].ID)
	}
}

func TestClearAbandonsInFlightSend(t *testing.T) {
	c := New()
	c.BeginSend("hello")
	c.Clear()
	c.CompleteSend("late reply")

	if c.Len() != 1 {
		t.Errorf("len = %d, want 1 — stale reply must be dropped", c.Len())
	}
}

func TestExportRoundTrip(t *testing.T) {
	c := New()
	c.BeginSend("what is lora?")
	c.CompleteSend("low-rank adapters")

	data, err := c.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var exported []struct {
		Role      string `json:"role"`
		Content   string `json:"content"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}

	msgs := c.Messages()
	if len(exported) != len(msgs) {
		t.Fatalf("exported %d messages, want %d", len(exported), len(msgs))
	}
	for i, e := range exported {
		if e.Role != msgs[i].Role || e.Content != msgs[i].Content {
			t.Errorf("message %d = %+v, want %q/%q", i, e, msgs[i].Role, msgs[i].Content)
		}
		if _, err := time.Parse(time.RFC3339, e.Timestamp); err != nil {
			t.Errorf("message %d timestamp %q is not RFC 3339: %v", i, e.Timestamp, err)
		}
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	if got := ExportFilename(now); got != "chat-export-2026-09-01.json" {
		t.Errorf("ExportFilename = %q", got)
	}
}

func TestExportToDir(t *testing.T) {
	c := New()
	dir := t.TempDir()

	path, err := c.ExportToDir(dir)
	if err != nil {
		t.Fatalf("ExportToDir: %v", err)
	}
	if !strings.HasPrefix(path, dir) {
		t.Errorf("export path %q not under %q", path, dir)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !json.Valid(data) {
		t.Error("export file is not valid JSON")
	}
}
