package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/querydesk/internal/domain"
	"github.com/spec-kit/querydesk/internal/events"
	"github.com/spec-kit/querydesk/internal/repository"
	"github.com/spec-kit/querydesk/internal/session"
	apperrors "github.com/spec-kit/querydesk/pkg/util/errorutil"
)

// QueryService coordinates the query lifecycle.
type QueryService struct {
	queries    repository.QueryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// QueryDependencies bundles collaborators for query service.
type QueryDependencies struct {
	QueryRepo  repository.QueryRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// QueryCreateInput describes a client submission.
type QueryCreateInput struct {
	MailID      string
	MobileNo    string
	Heading     string
	Description string
}

// QueryListFilter describes listing filters. A nil Status lists every query.
type QueryListFilter struct {
	Status *domain.QueryStatus
	Limit  int
	Offset int
}

// NewQueryService constructs the service.
func NewQueryService(deps QueryDependencies) *QueryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &QueryService{
		queries:    deps.QueryRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// ParseStatusFilter converts a user supplied status filter ("All", "Open",
// "Closed" or empty).
func ParseStatusFilter(val string) (*domain.QueryStatus, error) {
	status, err := domain.ParseStatusFilter(val)
	if err != nil {
		return nil, apperrors.NewValidationError("status must be All, Open or Closed", map[string]any{"status": val})
	}
	return status, nil
}

// Create stores a new open query stamped with the current time.
func (s *QueryService) Create(ctx context.Context, actor *session.Session, input QueryCreateInput) (*domain.Query, error) {
	query := &domain.Query{
		MailID:      strings.TrimSpace(input.MailID),
		MobileNo:    strings.TrimSpace(input.MobileNo),
		Heading:     strings.TrimSpace(input.Heading),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.QueryStatusOpen,
		CreatedAt:   s.now(),
	}
	if missing := missingFields(query); len(missing) > 0 {
		return nil, apperrors.NewValidationError("please fill all fields", map[string]any{"missing": missing})
	}

	if err := s.queries.Create(ctx, query); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventQueryCreated,
		QueryID: query.ID,
		Actor:   actorOf(actor),
		Payload: events.QueryCreatedPayload{
			MailID:  query.MailID,
			Heading: query.Heading,
		},
	})
	return query, nil
}

// List returns queries newest first, optionally restricted to one status.
func (s *QueryService) List(ctx context.Context, filter QueryListFilter) ([]domain.Query, error) {
	return s.queries.List(ctx, repository.QueryFilter{
		Status: filter.Status,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// Get fetches a single query.
func (s *QueryService) Get(ctx context.Context, id int64) (*domain.Query, error) {
	query, err := s.queries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("query", map[string]any{"query_id": id})
		}
		return nil, err
	}
	return query, nil
}

// Close moves an open query to Closed. Closing a query twice is rejected
// with CONFLICT and keeps the first closure time.
func (s *QueryService) Close(ctx context.Context, actor *session.Session, id int64) (*domain.Query, error) {
	closedAt := s.now()
	if err := s.queries.Close(ctx, id, closedAt); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFound("query", map[string]any{"query_id": id})
		case errors.Is(err, repository.ErrAlreadyClosed):
			return nil, apperrors.NewConflict("query already closed", map[string]any{"query_id": id})
		default:
			return nil, err
		}
	}

	query, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventQueryClosed,
		QueryID: query.ID,
		Actor:   actorOf(actor),
		Payload: events.QueryClosedPayload{
			OpenedAt: query.CreatedAt,
			ClosedAt: closedAt,
		},
	})
	return query, nil
}

// Stats counts queries per status.
func (s *QueryService) Stats(ctx context.Context) (domain.QueryStats, error) {
	return s.queries.CountByStatus(ctx)
}

func (s *QueryService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("query_id", event.QueryID),
			zap.Error(err))
	}
}

func actorOf(sess *session.Session) events.Actor {
	if sess == nil {
		return events.Actor{}
	}
	return events.Actor{Username: sess.Username, Role: sess.Role}
}

func missingFields(query *domain.Query) []string {
	var missing []string
	if query.MailID == "" {
		missing = append(missing, "mail_id")
	}
	if query.MobileNo == "" {
		missing = append(missing, "mobile_number")
	}
	if query.Heading == "" {
		missing = append(missing, "query_heading")
	}
	if query.Description == "" {
		missing = append(missing, "query_description")
	}
	return missing
}
