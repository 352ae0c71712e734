package web

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/querydesk/internal/domain"
	"github.com/spec-kit/querydesk/internal/service"
	"github.com/spec-kit/querydesk/internal/session"
)

const filterAll = "All"

var statusFilters = []string{filterAll, string(domain.QueryStatusOpen), string(domain.QueryStatusClosed)}

// view is a role specific dashboard.
type view interface {
	path() string
	render(c *fiber.Ctx, status int, state viewState) error
}

type viewState struct {
	session *session.Session
	flash   *flash
	form    map[string]string
	filter  string
}

func viewFor(h *Handler, role domain.Role) (view, bool) {
	switch role {
	case domain.RoleClient:
		return clientView{h: h}, true
	case domain.RoleSupport:
		return supportView{h: h}, true
	default:
		return nil, false
	}
}

// clientView offers the submission form and the query table.
type clientView struct {
	h *Handler
}

func (clientView) path() string { return "/client" }

func (v clientView) render(c *fiber.Ctx, status int, state viewState) error {
	queries, err := v.h.queries.List(c.UserContext(), service.QueryListFilter{})
	if err != nil {
		return err
	}
	return v.h.render(c, status, "client", pageData{
		Title:   "Client Dashboard",
		Session: state.session,
		Flash:   state.flash,
		Form:    state.form,
		Queries: queries,
	})
}

// supportView shows the status chart, the filterable table and the close form.
type supportView struct {
	h *Handler
}

func (supportView) path() string { return "/support" }

func (v supportView) render(c *fiber.Ctx, status int, state viewState) error {
	ctx := c.UserContext()

	statusFilter, err := service.ParseStatusFilter(state.filter)
	if err != nil {
		statusFilter = nil
		status = http.StatusBadRequest
		state.flash = warningFlash("Unknown status filter, showing all queries.")
	}
	filter := filterAll
	if statusFilter != nil {
		filter = string(*statusFilter)
	}

	stats, err := v.h.queries.Stats(ctx)
	if err != nil {
		return err
	}
	queries, err := v.h.queries.List(ctx, service.QueryListFilter{Status: statusFilter})
	if err != nil {
		return err
	}
	var openIDs []int64
	for i := range queries {
		if queries[i].IsOpen() {
			openIDs = append(openIDs, queries[i].ID)
		}
	}

	return v.h.render(c, status, "support", pageData{
		Title:   "Support Dashboard",
		Session: state.session,
		Flash:   state.flash,
		Queries: queries,
		Chart:   newStatusChart(stats),
		Filter:  filter,
		Filters: statusFilters,
		OpenIDs: openIDs,
	})
}

func formatID(id int64) string {
	return "#" + strconv.FormatInt(id, 10)
}
