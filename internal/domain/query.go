package domain

import (
	"fmt"
	"strings"
	"time"
)

// QueryStatus enumerates lifecycle states for queries.
type QueryStatus string

const (
	QueryStatusOpen   QueryStatus = "Open"
	QueryStatusClosed QueryStatus = "Closed"
)

// ParseStatusFilter maps a filter value onto a status. An empty value or "All"
// returns nil, meaning no restriction.
func ParseStatusFilter(val string) (*QueryStatus, error) {
	var status QueryStatus
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "", "all":
		return nil, nil
	case "open":
		status = QueryStatusOpen
	case "closed":
		status = QueryStatusClosed
	default:
		return nil, fmt.Errorf("unknown status %q", val)
	}
	return &status, nil
}

// Query is a support request submitted by a client.
//
// ClosedAt is non-nil iff Status is QueryStatusClosed.
type Query struct {
	ID          int64
	MailID      string
	MobileNo    string
	Heading     string
	Description string
	Status      QueryStatus
	CreatedAt   time.Time
	ClosedAt    *time.Time
}

// IsOpen reports whether the query can still be closed.
func (q *Query) IsOpen() bool {
	return q.Status == QueryStatusOpen
}

// QueryStats counts queries per status.
type QueryStats struct {
	Open   int64
	Closed int64
}

// Total returns the number of queries across all statuses.
func (s QueryStats) Total() int64 {
	return s.Open + s.Closed
}
