package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/querydesk/internal/api/dto"
	"github.com/spec-kit/querydesk/internal/service"
	"github.com/spec-kit/querydesk/internal/session"
	apperrors "github.com/spec-kit/querydesk/pkg/util/errorutil"
)

const maxPageSize = 200

// QueriesHandler manages the query endpoints of the JSON API.
type QueriesHandler struct {
	service *service.QueryService
}

// NewQueriesHandler constructs handler.
func NewQueriesHandler(queryService *service.QueryService) *QueriesHandler {
	return &QueriesHandler{service: queryService}
}

// Create POST /api/v1/queries.
func (h *QueriesHandler) Create(c *fiber.Ctx) error {
	sess, _ := session.FromContext(c)
	var req dto.CreateQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	query, err := h.service.Create(c.UserContext(), sess, service.QueryCreateInput{
		MailID:      req.MailID,
		MobileNo:    req.MobileNumber,
		Heading:     req.QueryHeading,
		Description: req.QueryDescription,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewQueryResponse(query)})
}

// List GET /api/v1/queries.
func (h *QueriesHandler) List(c *fiber.Ctx) error {
	status, err := service.ParseStatusFilter(c.Query("status"))
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("offset", 0)
	if limit < 0 || offset < 0 {
		return apperrors.NewValidationError("limit and offset must be non-negative", nil)
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	queries, err := h.service.List(c.UserContext(), service.QueryListFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.QueryResponse, 0, len(queries))
	for i := range queries {
		items = append(items, dto.NewQueryResponse(&queries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/v1/queries/:id.
func (h *QueriesHandler) Get(c *fiber.Ctx) error {
	id, err := queryID(c)
	if err != nil {
		return err
	}
	query, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueryResponse(query)})
}

// Close POST /api/v1/queries/:id/close.
func (h *QueriesHandler) Close(c *fiber.Ctx) error {
	sess, _ := session.FromContext(c)
	id, err := queryID(c)
	if err != nil {
		return err
	}
	query, err := h.service.Close(c.UserContext(), sess, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueryResponse(query)})
}

// Stats GET /api/v1/queries/stats.
func (h *QueriesHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueryStatsResponse(stats)})
}

func queryID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid query id", map[string]any{"query_id": raw})
	}
	return id, nil
}
