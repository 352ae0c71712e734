package events

import (
	"time"

	"github.com/spec-kit/querydesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventQueryCreated EventType = "query_created"
	EventQueryClosed  EventType = "query_closed"
)

// Actor identifies who triggered an event.
type Actor struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	QueryID   int64       `json:"query_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// QueryCreatedPayload payload.
type QueryCreatedPayload struct {
	MailID  string `json:"mail_id"`
	Heading string `json:"heading"`
}

// QueryClosedPayload payload.
type QueryClosedPayload struct {
	OpenedAt time.Time `json:"opened_at"`
	ClosedAt time.Time `json:"closed_at"`
}
