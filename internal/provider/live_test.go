package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/llmtuner/llmtuner/internal/apiclient"
	"github.com/llmtuner/llmtuner/internal/pushchan"
	"github.com/llmtuner/llmtuner/pkg/api"
)

func TestLiveObservePollStopsAtTerminal(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /monitor/abc123", func(w http.ResponseWriter, r *http.Request) {
		status := api.TrainingStatus{Status: api.StatusRunning, Progress: 50}
		if polls.Add(1) >= 2 {
			status = api.TrainingStatus{Status: api.StatusCompleted, Progress: 100}
		}
		json.NewEncoder(w).Encode(status)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := apiclient.New(srv.URL, 5*time.Second)
	live := NewLive(client, "", 5*time.Millisecond)

	ch, stop, err := live.ObserveStatus(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("ObserveStatus: %v", err)
	}
	defer stop()

	got := drain(t, ch)
	if len(got) != 2 {
		t.Fatalf("got %d updates, want 2", len(got))
	}
	if got[1].Status.Status != api.StatusCompleted {
		t.Errorf("final status = %+v", got[1].Status)
	}

	polled := polls.Load()
	time.Sleep(30 * time.Millisecond)
	if polls.Load() != polled {
		t.Error("polling continued after terminal status")
	}
}

func TestLiveObservePush(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		var env pushchan.Envelope
		if err := ws.ReadJSON(&env); err != nil {
			return
		}
		for _, s := range []api.TrainingStatus{
			{Status: api.StatusRunning, Progress: 30},
			{Status: api.StatusCompleted, Progress: 100},
		} {
			data, _ := json.Marshal(s)
			if err := ws.WriteJSON(pushchan.Envelope{Event: pushchan.EventTrainingUpdate, Data: data}); err != nil {
				return
			}
		}
		// Keep the socket open; the client stops at the terminal update.
		time.Sleep(100 * time.Millisecond)
	}))
	defer srv.Close()

	pushURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	live := NewLive(apiclient.New("http://unused", time.Second), pushURL, time.Hour)

	ch, stop, err := live.ObserveStatus(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("ObserveStatus: %v", err)
	}
	defer stop()

	got := drain(t, ch)
	if len(got) != 2 {
		t.Fatalf("got %d updates, want 2", len(got))
	}
	if got[0].Status.Progress != 30 || got[1].Status.Status != api.StatusCompleted {
		t.Errorf("updates = %+v", got)
	}
}

func TestLiveObservePushDialFailure(t *testing.T) {
	live := NewLive(apiclient.New("http://unused", time.Second), "ws://127.0.0.1:1/ws", time.Hour)
	if _, _, err := live.ObserveStatus(context.Background(), "abc123"); err == nil {
		t.Error("expected dial error")
	}
}
