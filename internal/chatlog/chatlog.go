// Package chatlog implements the chat-test conversation: an append-only
// message log with a single in-flight send at a time and JSON export.
package chatlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Greeting seeds every fresh conversation.
const Greeting = "Hello! I'm your fine-tuned model. How can I help you today?"

// Message is one chat message.
type Message struct {
	ID        int       `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// exportedMessage is the export wire shape: role, content, ISO-8601 timestamp.
type exportedMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Conversation is an ordered, append-only message log. Messages only ever go
// away through Clear, which resets to the seed greeting. At most one send may
// be in flight; further sends are rejected until the pending one settles.
type Conversation struct {
	mu      sync.Mutex
	msgs    []Message
	nextID  int
	pending bool
	now     func() time.Time
}

// New returns a conversation seeded with the assistant greeting.
func New() *Conversation {
	c := &Conversation{now: time.Now}
	c.reset()
	return c
}

func (c *Conversation) reset() {
	c.nextID = 1
	c.msgs = []Message{{
		ID:        c.nextID,
		Role:      RoleAssistant,
		Content:   Greeting,
		Timestamp: c.now(),
	}}
	c.nextID++
}

// Messages returns a copy of the log in order.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

// Pending reports whether a send is in flight.
func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// BeginSend appends the user message optimistically and marks the
// conversation loading. It returns false — and appends nothing — if a send is
// already in flight or the message is empty.
func (c *Conversation) BeginSend(content string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending || content == "" {
		return false
	}
	c.append(RoleUser, content)
	c.pending = true
	return true
}

// CompleteSend appends the assistant reply and clears the loading state.
func (c *Conversation) CompleteSend(reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		return
	}
	c.append(RoleAssistant, reply)
	c.pending = false
}

// FailSend clears the loading state without appending a reply, so the user
// can retry.
func (c *Conversation) FailSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
}

func (c *Conversation) append(role, content string) {
	c.msgs = append(c.msgs, Message{
		ID:        c.nextID,
		Role:      role,
		Content:   content,
		Timestamp: c.now(),
	})
	c.nextID++
}

// Clear resets the conversation to the single seed greeting. An in-flight
// send is abandoned; its response will be dropped by CompleteSend because
// pending is no longer set.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	c.reset()
}

// ExportJSON serializes the log as a JSON array of {role, content, timestamp}
// with RFC 3339 timestamps.
func (c *Conversation) ExportJSON() ([]byte, error) {
	msgs := c.Messages()
	out := make([]exportedMessage, len(msgs))
	for i, m := range msgs {
		out[i] = exportedMessage{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

// ExportFilename returns the date-stamped export file name.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("chat-export-%s.json", now.Format("2006-01-02"))
}

// ExportToDir writes the export file into dir and returns its path.
func (c *Conversation) ExportToDir(dir string) (string, error) {
	data, err := c.ExportJSON()
	if err != nil {
		return "", fmt.Errorf("marshal chat log: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(time.Now()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}
