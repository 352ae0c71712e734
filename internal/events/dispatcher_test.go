package events

import (
	"context"
	"errors"
	"strings"
	"testing"
)

var errSinkDown = errors.New("sink down")

func TestDispatcherRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string

	d.Subscribe(EventQueryCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "first")
		return errSinkDown
	})
	d.Subscribe(EventQueryCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventQueryClosed, func(_ context.Context, e Event) error {
		calls = append(calls, "closed")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventQueryCreated, QueryID: 7})
	if !errors.Is(err, errSinkDown) {
		t.Fatalf("Publish err = %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestDispatcherRecoversPanics(t *testing.T) {
	d := NewInMemoryDispatcher()
	ran := false
	d.Subscribe(EventQueryClosed, func(context.Context, Event) error { panic("boom") })
	d.Subscribe(EventQueryClosed, func(context.Context, Event) error {
		ran = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventQueryClosed})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Publish err = %v", err)
	}
	if !ran {
		t.Error("handler after the panicking one did not run")
	}
}

func TestDispatcherStopsOnCancelledContext(t *testing.T) {
	d := NewInMemoryDispatcher()
	d.Subscribe(EventQueryCreated, func(context.Context, Event) error {
		t.Error("handler ran with a cancelled context")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Publish(ctx, Event{Type: EventQueryCreated}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Publish err = %v", err)
	}
}

func TestDispatcherWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventQueryClosed}); err != nil {
		t.Fatalf("Publish err = %v", err)
	}
}
