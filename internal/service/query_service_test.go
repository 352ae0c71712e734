package service

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/querydesk/internal/domain"
	"github.com/spec-kit/querydesk/internal/events"
	"github.com/spec-kit/querydesk/internal/repository/memory"
	"github.com/spec-kit/querydesk/internal/session"
	apperrors "github.com/spec-kit/querydesk/pkg/util/errorutil"
)

var (
	alice = &session.Session{Username: "alice", Role: domain.RoleClient}
	bob   = &session.Session{Username: "bob", Role: domain.RoleSupport}
)

func newQueryService(clock func() time.Time, dispatcher events.Dispatcher) *QueryService {
	return NewQueryService(QueryDependencies{
		QueryRepo:  memory.NewQueryRepository(),
		Dispatcher: dispatcher,
		Clock:      clock,
	})
}

func sampleInput(heading string) QueryCreateInput {
	return QueryCreateInput{
		MailID:      "alice@example.com",
		MobileNo:    "5550100",
		Heading:     heading,
		Description: "cannot log in to the portal",
	}
}

func TestCreateListsAsOpen(t *testing.T) {
	ctx := context.Background()
	svc := newQueryService(steppingClock(time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)), nil)

	created, err := svc.Create(ctx, alice, sampleInput("Login issue"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := svc.List(ctx, QueryListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list has %d queries", len(list))
	}
	got := list[0]
	if got.ID != created.ID || got.Status != domain.QueryStatusOpen || got.ClosedAt != nil {
		t.Fatalf("listed query = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("created time not stamped")
	}
}

func TestCreateRequiresAllFields(t *testing.T) {
	ctx := context.Background()
	svc := newQueryService(nil, nil)

	input := sampleInput("  ")
	input.MobileNo = ""
	_, err := svc.Create(ctx, alice, input)
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
	if list, _ := svc.List(ctx, QueryListFilter{}); len(list) != 0 {
		t.Fatalf("invalid submission stored %d queries", len(list))
	}
}

func TestCloseMovesBetweenFilters(t *testing.T) {
	ctx := context.Background()
	svc := newQueryService(steppingClock(time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)), nil)

	q1, _ := svc.Create(ctx, alice, sampleInput("first"))
	q2, _ := svc.Create(ctx, alice, sampleInput("second"))

	closed, err := svc.Close(ctx, bob, q1.ID)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.Status != domain.QueryStatusClosed || closed.ClosedAt == nil {
		t.Fatalf("closed query = %+v", closed)
	}

	closedStatus, _ := ParseStatusFilter("Closed")
	openStatus, _ := ParseStatusFilter("open")

	closedList, _ := svc.List(ctx, QueryListFilter{Status: closedStatus})
	openList, _ := svc.List(ctx, QueryListFilter{Status: openStatus})

	if !containsID(closedList, q1.ID) || containsID(closedList, q2.ID) {
		t.Fatalf("closed list = %v", closedList)
	}
	if containsID(openList, q1.ID) || !containsID(openList, q2.ID) {
		t.Fatalf("open list = %v", openList)
	}

	stats, _ := svc.Stats(ctx)
	if stats.Open != 1 || stats.Closed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestCloseTwiceIsRejected(t *testing.T) {
	ctx := context.Background()
	svc := newQueryService(steppingClock(time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)), nil)

	q, _ := svc.Create(ctx, alice, sampleInput("dup close"))
	first, err := svc.Close(ctx, bob, q.ID)
	if err != nil {
		t.Fatalf("first close: %v", err)
	}
	if _, err := svc.Close(ctx, bob, q.ID); !apperrors.IsCode(err, "CONFLICT") {
		t.Fatalf("second close err = %v, want CONFLICT", err)
	}
	stored, _ := svc.Get(ctx, q.ID)
	if !stored.ClosedAt.Equal(*first.ClosedAt) {
		t.Fatalf("closure time moved from %v to %v", first.ClosedAt, stored.ClosedAt)
	}
}

func TestCloseUnknownQuery(t *testing.T) {
	svc := newQueryService(nil, nil)
	if _, err := svc.Close(context.Background(), bob, 42); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 5; round++ {
		offsets := rng.Perm(10)
		idx := 0
		clock := func() time.Time {
			ts := base.Add(time.Duration(offsets[idx%len(offsets)]) * time.Minute)
			idx++
			return ts
		}
		svc := newQueryService(clock, nil)
		for i := range offsets {
			if _, err := svc.Create(ctx, alice, sampleInput("q")); err != nil {
				t.Fatalf("Create %d: %v", i, err)
			}
		}

		list, _ := svc.List(ctx, QueryListFilter{})
		for i := 1; i < len(list); i++ {
			if list[i-1].CreatedAt.Before(list[i].CreatedAt) {
				t.Fatalf("round %d: %v listed before %v", round, list[i-1].CreatedAt, list[i].CreatedAt)
			}
		}
	}
}

func TestParseStatusFilter(t *testing.T) {
	for _, val := range []string{"", "All", "all"} {
		status, err := ParseStatusFilter(val)
		if err != nil || status != nil {
			t.Errorf("ParseStatusFilter(%q) = %v, %v", val, status, err)
		}
	}
	if _, err := ParseStatusFilter("Open' OR '1'='1"); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("injection attempt err = %v", err)
	}
}

func TestLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	forwarder := &recordingForwarder{}
	NewNotificationService(dispatcher, forwarder, nil).RegisterHandlers()

	svc := newQueryService(steppingClock(time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)), dispatcher)
	q, _ := svc.Create(ctx, alice, sampleInput("events"))
	_, _ = svc.Close(ctx, bob, q.ID)

	if len(forwarder.events) != 2 {
		t.Fatalf("forwarded %d events", len(forwarder.events))
	}
	created, closed := forwarder.events[0], forwarder.events[1]
	if created.Type != events.EventQueryCreated || created.Actor.Username != "alice" || created.ID == "" {
		t.Errorf("created event = %+v", created)
	}
	if closed.Type != events.EventQueryClosed || closed.Actor.Role != domain.RoleSupport || closed.QueryID != q.ID {
		t.Errorf("closed event = %+v", closed)
	}
}

func containsID(queries []domain.Query, id int64) bool {
	for _, q := range queries {
		if q.ID == id {
			return true
		}
	}
	return false
}

func TestCreateAcceptsLongFields(t *testing.T) {
	ctx := context.Background()
	svc := newQueryService(steppingClock(time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)), nil)

	input := QueryCreateInput{
		MailID:      strings.Repeat("m", 300) + "@example.com",
		MobileNo:    strings.Repeat("5", 64),
		Heading:     strings.Repeat("h", 400),
		Description: strings.Repeat("d", 5000),
	}
	created, err := svc.Create(ctx, alice, input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MailID != input.MailID || got.MobileNo != input.MobileNo || got.Heading != input.Heading {
		t.Fatal("long fields were not stored verbatim")
	}
}
