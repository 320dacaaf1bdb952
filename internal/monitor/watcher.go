// Package monitor turns the backend's poll endpoint into a stream of status
// updates with guaranteed teardown: the loop stops when the run reaches a
// terminal status, and cancelling the context stops it early.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/llmtuner/llmtuner/pkg/api"
)

// StatusFunc fetches the current status of a training run.
type StatusFunc func(ctx context.Context, trainingID string) (*api.TrainingStatus, error)

// Update is one emission of the watcher: either a status or a poll error.
// Poll errors do not stop the loop; the next tick polls again.
type Update struct {
	Status api.TrainingStatus
	Err    error
}

// Watcher polls a training run on a fixed interval.
type Watcher struct {
	fetch    StatusFunc
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a Watcher polling with the given cadence.
func NewWatcher(fetch StatusFunc, interval time.Duration) *Watcher {
	return &Watcher{fetch: fetch, interval: interval}
}

// Watch polls immediately and then on every tick, sending each result on the
// returned channel. The channel closes when the run reaches completed or
// failed, or when ctx is cancelled. Stop also ends the loop.
func (w *Watcher) Watch(ctx context.Context, trainingID string) <-chan Update {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	out := make(chan Update)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(out)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			if done := w.poll(ctx, trainingID, out); done {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}

// poll performs one fetch and reports whether the loop should end.
func (w *Watcher) poll(ctx context.Context, trainingID string, out chan<- Update) bool {
	status, err := w.fetch(ctx, trainingID)
	if ctx.Err() != nil {
		return true
	}
	if err != nil {
		select {
		case out <- Update{Err: err}:
		case <-ctx.Done():
			return true
		}
		return false
	}

	select {
	case out <- Update{Status: *status}:
	case <-ctx.Done():
		return true
	}
	return status.Terminal()
}

// Stop cancels the watch and waits for the polling goroutine to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
		w.wg.Wait()
	}
}
