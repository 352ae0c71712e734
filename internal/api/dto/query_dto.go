package dto

import (
	"time"

	"github.com/spec-kit/querydesk/internal/domain"
)

// CreateQueryRequest payload submitted by clients.
type CreateQueryRequest struct {
	MailID           string `json:"mail_id" form:"mail_id"`
	MobileNumber     string `json:"mobile_number" form:"mobile_number"`
	QueryHeading     string `json:"query_heading" form:"query_heading"`
	QueryDescription string `json:"query_description" form:"query_description"`
}

// CloseQueryRequest payload posted by the support dashboard.
type CloseQueryRequest struct {
	QueryID int64  `form:"query_id"`
	Status  string `form:"status"`
}

// QueryResponse mirrors a stored query.
type QueryResponse struct {
	QueryID          int64              `json:"query_id"`
	MailID           string             `json:"mail_id"`
	MobileNumber     string             `json:"mobile_number"`
	QueryHeading     string             `json:"query_heading"`
	QueryDescription string             `json:"query_description"`
	Status           domain.QueryStatus `json:"status"`
	QueryCreatedTime time.Time          `json:"query_created_time"`
	QueryClosedTime  *time.Time         `json:"query_closed_time"`
}

// QueryStatsResponse carries the status distribution.
type QueryStatsResponse struct {
	Open   int64 `json:"open"`
	Closed int64 `json:"closed"`
	Total  int64 `json:"total"`
}

// NewQueryResponse maps a domain query.
func NewQueryResponse(q *domain.Query) QueryResponse {
	return QueryResponse{
		QueryID:          q.ID,
		MailID:           q.MailID,
		MobileNumber:     q.MobileNo,
		QueryHeading:     q.Heading,
		QueryDescription: q.Description,
		Status:           q.Status,
		QueryCreatedTime: q.CreatedAt,
		QueryClosedTime:  q.ClosedAt,
	}
}

// NewQueryStatsResponse maps status counts.
func NewQueryStatsResponse(stats domain.QueryStats) QueryStatsResponse {
	return QueryStatsResponse{Open: stats.Open, Closed: stats.Closed, Total: stats.Total()}
}
