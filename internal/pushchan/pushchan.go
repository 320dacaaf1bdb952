// Package pushchan implements the websocket push-update channel. The backend
// speaks a small event envelope: the client sends subscribe_training with a
// trainingId, the server emits training_update events carrying a
// TrainingStatus payload.
package pushchan

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/llmtuner/llmtuner/pkg/api"
)

// Event names of the push protocol.
const (
	EventSubscribeTraining = "subscribe_training"
	EventTrainingUpdate    = "training_update"
)

// Envelope is one framed push message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SubscribePayload is the data of a subscribe_training event.
type SubscribePayload struct {
	TrainingID string `json:"trainingId"`
}

// Conn is a push-update connection. It must be closed on teardown or the
// websocket leaks.
type Conn struct {
	ws      *websocket.Conn
	updates chan api.TrainingStatus
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

// Dial connects to the push channel at the given websocket URL.
func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial push channel: %w", err)
	}

	c := &Conn{
		ws:      ws,
		updates: make(chan api.TrainingStatus),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Subscribe asks the server to emit updates for the given run.
func (c *Conn) Subscribe(trainingID string) error {
	data, _ := json.Marshal(SubscribePayload{TrainingID: trainingID})
	env := Envelope{Event: EventSubscribeTraining, Data: data}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("push channel is closed")
	}
	if err := c.ws.WriteJSON(env); err != nil {
		return fmt.Errorf("send subscribe: %w", err)
	}
	return nil
}

// Updates returns the stream of training_update payloads. The channel is
// closed when the connection drops or Close is called.
func (c *Conn) Updates() <-chan api.TrainingStatus {
	return c.updates
}

// Close tears the connection down.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	return c.ws.Close()
}

func (c *Conn) readLoop() {
	defer close(c.updates)
	for {
		var env Envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			return
		}
		if env.Event != EventTrainingUpdate {
			continue
		}
		var status api.TrainingStatus
		if err := json.Unmarshal(env.Data, &status); err != nil {
			// Malformed payloads are dropped; the next update supersedes
			// them anyway.
			continue
		}
		// The consumer may have stopped reading (terminal status seen);
		// Close must still unblock this send.
		select {
		case c.updates <- status:
		case <-c.done:
			return
		}
	}
}
