// Package web serves the server-rendered pages of the query desk.
package web

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/querydesk/internal/api/dto"
	"github.com/spec-kit/querydesk/internal/auth"
	"github.com/spec-kit/querydesk/internal/domain"
	"github.com/spec-kit/querydesk/internal/service"
	"github.com/spec-kit/querydesk/internal/session"
	apperrors "github.com/spec-kit/querydesk/pkg/util/errorutil"
)

const (
	msgFillAllFields      = "Please fill all fields."
	msgInvalidCredentials = "Invalid username or password."
	msgUsernameTaken      = "Username already exists."
)

type flash struct {
	Kind    string
	Message string
}

func successFlash(msg string) *flash { return &flash{Kind: "success", Message: msg} }
func warningFlash(msg string) *flash { return &flash{Kind: "warning", Message: msg} }
func errorFlash(msg string) *flash   { return &flash{Kind: "error", Message: msg} }

type pageData struct {
	Title   string
	Session *session.Session
	Flash   *flash
	Form    map[string]string
	Roles   []domain.Role
	Queries []domain.Query
	Chart   statusChart
	Filter  string
	Filters []string
	OpenIDs []int64
}

// Dependencies bundles collaborators for the page handler.
type Dependencies struct {
	Auth         *service.AuthService
	Queries      *service.QueryService
	Logger       *zap.Logger
	CookieSecure bool
}

// Handler renders the login, registration and dashboard pages.
type Handler struct {
	auth         *service.AuthService
	queries      *service.QueryService
	logger       *zap.Logger
	cookieSecure bool
	templates    *template.Template
}

// NewHandler parses the embedded templates and builds the handler.
func NewHandler(deps Dependencies) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		auth:         deps.Auth,
		queries:      deps.Queries,
		logger:       logger,
		cookieSecure: deps.CookieSecure,
		templates:    tmpl,
	}, nil
}

// Home GET /. Signed-in users land on their dashboard, everyone else on login.
func (h *Handler) Home(c *fiber.Ctx) error {
	if sess, ok := session.FromContext(c); ok {
		if v, ok := viewFor(h, sess.Role); ok {
			return c.Redirect(v.path(), http.StatusSeeOther)
		}
	}
	return c.Redirect("/login", http.StatusSeeOther)
}

// LoginForm GET /login.
func (h *Handler) LoginForm(c *fiber.Ctx) error {
	if sess, ok := session.FromContext(c); ok {
		if v, ok := viewFor(h, sess.Role); ok {
			return c.Redirect(v.path(), http.StatusSeeOther)
		}
	}
	return h.render(c, http.StatusOK, "login", pageData{Title: "Login"})
}

// Login POST /login.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid form", nil)
	}
	data := pageData{Title: "Login", Form: map[string]string{"username": req.Username}}
	if req.Username == "" || req.Password == "" {
		data.Flash = warningFlash(msgFillAllFields)
		return h.render(c, http.StatusBadRequest, "login", data)
	}

	user, token, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		data.Flash = errorFlash(msgInvalidCredentials)
		return h.render(c, http.StatusUnauthorized, "login", data)
	case apperrors.IsCode(err, "TOO_MANY_REQUESTS"):
		data.Flash = errorFlash("Too many failed login attempts. Please try again later.")
		return h.render(c, http.StatusTooManyRequests, "login", data)
	case err != nil:
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    token.Value,
		Path:     "/",
		Expires:  token.ExpiresAt,
		Secure:   h.cookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	v, ok := viewFor(h, user.Role)
	if !ok {
		return apperrors.NewForbidden("unknown role")
	}
	return c.Redirect(v.path(), http.StatusSeeOther)
}

// RegisterForm GET /register.
func (h *Handler) RegisterForm(c *fiber.Ctx) error {
	return h.render(c, http.StatusOK, "register", pageData{Title: "Register", Roles: domain.Roles})
}

// Register POST /register.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid form", nil)
	}
	data := pageData{
		Title: "Register",
		Roles: domain.Roles,
		Form:  map[string]string{"username": req.Username, "role": req.Role},
	}
	if req.Username == "" || req.Password == "" || req.Role == "" {
		data.Flash = warningFlash(msgFillAllFields)
		return h.render(c, http.StatusBadRequest, "register", data)
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		data.Flash = warningFlash("Please choose Client or Support.")
		return h.render(c, http.StatusBadRequest, "register", data)
	}

	user, err := h.auth.Register(c.UserContext(), req.Username, req.Password, role)
	switch {
	case apperrors.IsCode(err, "CONFLICT"):
		data.Flash = errorFlash(msgUsernameTaken)
		return h.render(c, http.StatusConflict, "register", data)
	case apperrors.IsCode(err, "VALIDATION_FAILED"):
		data.Flash = warningFlash(msgFillAllFields)
		return h.render(c, http.StatusBadRequest, "register", data)
	case err != nil:
		return err
	}

	return h.render(c, http.StatusCreated, "login", pageData{
		Title: "Login",
		Flash: successFlash("Registration successful. You can now log in."),
		Form:  map[string]string{"username": user.Username},
	})
}

// Logout POST /logout. The session token is revoked and the cookie dropped.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if sess, ok := session.FromContext(c); ok {
		if err := h.auth.Logout(c.UserContext(), sess); err != nil {
			h.logger.Warn("session revoke failed", zap.String("username", sess.Username), zap.Error(err))
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   h.cookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/login", http.StatusSeeOther)
}

// Dashboard GET /client and GET /support. The page shown is picked by the
// session role; a request for the other role's page is redirected.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	sess, ok := session.FromContext(c)
	if !ok {
		return c.Redirect("/login", http.StatusSeeOther)
	}
	v, ok := viewFor(h, sess.Role)
	if !ok {
		return apperrors.NewForbidden("unknown role")
	}
	if c.Path() != v.path() {
		return c.Redirect(v.path(), http.StatusSeeOther)
	}
	return v.render(c, http.StatusOK, viewState{session: sess, filter: c.Query("status")})
}

// SubmitQuery POST /client/queries.
func (h *Handler) SubmitQuery(c *fiber.Ctx) error {
	sess, ok := session.FromContext(c)
	if !ok {
		return c.Redirect("/login", http.StatusSeeOther)
	}
	var req dto.CreateQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid form", nil)
	}

	state := viewState{session: sess}
	_, err := h.queries.Create(c.UserContext(), sess, service.QueryCreateInput{
		MailID:      req.MailID,
		MobileNo:    req.MobileNumber,
		Heading:     req.QueryHeading,
		Description: req.QueryDescription,
	})
	if apperrors.IsCode(err, "VALIDATION_FAILED") {
		state.flash = warningFlash(msgFillAllFields)
		state.form = map[string]string{
			"mail_id":           req.MailID,
			"mobile_number":     req.MobileNumber,
			"query_heading":     req.QueryHeading,
			"query_description": req.QueryDescription,
		}
		return clientView{h: h}.render(c, http.StatusBadRequest, state)
	}
	if err != nil {
		return err
	}
	state.flash = successFlash("Query submitted successfully.")
	return clientView{h: h}.render(c, http.StatusCreated, state)
}

// CloseQuery POST /support/close.
func (h *Handler) CloseQuery(c *fiber.Ctx) error {
	sess, ok := session.FromContext(c)
	if !ok {
		return c.Redirect("/login", http.StatusSeeOther)
	}
	var req dto.CloseQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid form", nil)
	}

	state := viewState{session: sess, filter: req.Status}
	status := http.StatusOK
	_, err := h.queries.Close(c.UserContext(), sess, req.QueryID)
	switch {
	case err == nil:
		state.flash = successFlash("Query " + formatID(req.QueryID) + " closed.")
	case apperrors.IsCode(err, "NOT_FOUND"):
		status = http.StatusNotFound
		state.flash = errorFlash("Query " + formatID(req.QueryID) + " does not exist.")
	case apperrors.IsCode(err, "CONFLICT"):
		status = http.StatusConflict
		state.flash = warningFlash("Query " + formatID(req.QueryID) + " is already closed.")
	default:
		return err
	}
	return supportView{h: h}.render(c, status, state)
}

// RenderError writes a failed page request. Missing or expired sessions are
// sent back to the login page.
func (h *Handler) RenderError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	if domainErr.HTTPStatus == http.StatusUnauthorized {
		return c.Redirect("/login", http.StatusSeeOther)
	}
	title := domainErr.Message
	if domainErr.HTTPStatus >= http.StatusInternalServerError {
		title = "Something went wrong"
	}
	sess, _ := session.FromContext(c)
	return h.render(c, domainErr.HTTPStatus, "error", pageData{Title: title, Session: sess})
}

func (h *Handler) render(c *fiber.Ctx, status int, name string, data pageData) error {
	if data.Session == nil {
		data.Session, _ = session.FromContext(c)
	}
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Status(status)
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
