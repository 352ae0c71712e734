package worker

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/querydesk/internal/config"
	"github.com/spec-kit/querydesk/internal/events"
)

func TestNotificationWorkerLogsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()

	stop := StartNotificationWorker(dispatcher, config.NotificationConfig{}, zap.New(core))
	defer stop()

	if err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventQueryClosed, QueryID: 3}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	entries := logs.FilterMessage("QueryClosed").All()
	if len(entries) != 1 {
		t.Fatalf("QueryClosed log entries = %d", len(entries))
	}
	if got := entries[0].ContextMap()["query_id"]; got != int64(3) {
		t.Errorf("query_id = %v", got)
	}
}

func TestNotificationWorkerWithoutDispatcher(t *testing.T) {
	stop := StartNotificationWorker(nil, config.NotificationConfig{AMQPURL: "amqp://unused"}, zap.NewNop())
	stop()
}
