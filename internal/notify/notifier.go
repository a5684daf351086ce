// Package notify emits moderation events to the delivery pipeline. Delivery
// is asynchronous: callers never wait for it and never see its errors.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Notifier is what the moderation core emits.
type Notifier interface {
	ContentRemoved(ctx context.Context, event ContentRemoved)
	AccountBanned(ctx context.Context, event AccountBanned)
	SweepSummary(ctx context.Context, event SweepSummary)
}

// Publisher writes one encoded event to a transport.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}

// Dispatcher is a Notifier that publishes each event on its own goroutine.
type Dispatcher struct {
	publisher Publisher
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewDispatcher(publisher Publisher, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{publisher: publisher, timeout: timeout}
}

func (d *Dispatcher) ContentRemoved(ctx context.Context, event ContentRemoved) {
	d.dispatch(ctx, EventContentRemoved, event.UserID.String(), event)
}

func (d *Dispatcher) AccountBanned(ctx context.Context, event AccountBanned) {
	d.dispatch(ctx, EventAccountBanned, event.UserID.String(), event)
}

func (d *Dispatcher) SweepSummary(ctx context.Context, event SweepSummary) {
	if event.AdminEmail == "" {
		return
	}
	d.dispatch(ctx, EventSweepSummary, event.AdminEmail, event)
}

func (d *Dispatcher) dispatch(ctx context.Context, eventType, key string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to encode notification", "action", eventType, "error", err)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		if err := d.publisher.Publish(pubCtx, eventType, payload, key); err != nil {
			slog.Error("notification publish failed", "action", eventType, "key", key, "error", err)
		}
	}()
}

// Wait blocks until every dispatched event has been handed to the publisher.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// LogPublisher writes events to the structured log. Used when no broker is
// configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, eventType string, payload []byte, partitionKey string) error {
	slog.Info("notification", "action", eventType, "key", partitionKey, "payload", string(payload))
	return nil
}
