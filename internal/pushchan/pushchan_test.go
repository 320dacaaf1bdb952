package pushchan

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/llmtuner/llmtuner/pkg/api"
)

var upgrader = websocket.Upgrader{}

// startPushServer runs a websocket server that waits for a subscribe_training
// event and then emits the given statuses as training_update events.
func startPushServer(t *testing.T, statuses []api.TrainingStatus) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer ws.Close()

		var env Envelope
		if err := ws.ReadJSON(&env); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		if env.Event != EventSubscribeTraining {
			t.Errorf("first event = %q, want %q", env.Event, EventSubscribeTraining)
			return
		}
		var sub SubscribePayload
		if err := json.Unmarshal(env.Data, &sub); err != nil || sub.TrainingID == "" {
			t.Errorf("bad subscribe payload: %s", env.Data)
			return
		}

		for _, s := range statuses {
			data, _ := json.Marshal(s)
			if err := ws.WriteJSON(Envelope{Event: EventTrainingUpdate, Data: data}); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	url := startPushServer(t, []api.TrainingStatus{
		{Status: api.StatusRunning, Progress: 50, CurrentEpoch: 5, TotalEpochs: 10},
		{Status: api.StatusCompleted, Progress: 100, CurrentEpoch: 10, TotalEpochs: 10},
	})

	conn, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := conn.Subscribe("abc123"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	var got []api.TrainingStatus
	timeout := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case s, ok := <-conn.Updates():
			if !ok {
				t.Fatalf("updates channel closed after %d updates", len(got))
			}
			got = append(got, s)
		case <-timeout:
			t.Fatalf("timed out after %d updates", len(got))
		}
	}

	if got[0].Status != api.StatusRunning || got[0].Progress != 50 {
		t.Errorf("first update = %+v", got[0])
	}
	if got[1].Status != api.StatusCompleted {
		t.Errorf("second update = %+v", got[1])
	}
}

func TestUpdatesChannelClosesOnDisconnect(t *testing.T) {
	url := startPushServer(t, nil)

	conn, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if err := conn.Subscribe("abc123"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// Server sends nothing and hangs up after the handler returns; the
	// updates channel must close rather than leak the reader.
	select {
	case _, ok := <-conn.Updates():
		if ok {
			t.Error("unexpected update")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("updates channel never closed")
	}
	conn.Close()
}

func TestCloseUnblocksReaderWithoutConsumer(t *testing.T) {
	url := startPushServer(t, []api.TrainingStatus{
		{Status: api.StatusRunning, Progress: 50},
		{Status: api.StatusCompleted, Progress: 100},
		{Status: api.StatusCompleted, Progress: 100},
	})

	conn, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if err := conn.Subscribe("abc123"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// Take one update, then stop consuming while the server still has more
	// queued. Close must unblock the reader's pending send and let the
	// channel close instead of stranding the goroutine.
	select {
	case <-conn.Updates():
	case <-time.After(5 * time.Second):
		t.Fatal("no first update")
	}
	conn.Close()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-conn.Updates():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("updates channel never closed after Close")
		}
	}
}

func TestSubscribeAfterCloseFails(t *testing.T) {
	url := startPushServer(t, nil)

	conn, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.Close()

	if err := conn.Subscribe("abc123"); err == nil {
		t.Error("expected error subscribing on a closed channel")
	}
}

func TestDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Dial(ctx, "ws://127.0.0.1:1/ws"); err == nil {
		t.Error("expected dial error")
	}
}
