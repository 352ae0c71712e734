package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/querydesk/internal/domain"
	"github.com/spec-kit/querydesk/internal/session"
	apperrors "github.com/spec-kit/querydesk/pkg/util/errorutil"
)

type stubResolver map[string]*session.Session

func (s stubResolver) ResolveSession(_ context.Context, token string) (*session.Session, error) {
	if sess, ok := s[token]; ok {
		return sess, nil
	}
	return nil, apperrors.NewUnauthorized("invalid session")
}

func newMiddlewareApp(m *AuthMiddleware) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	whoami := func(c *fiber.Ctx) error {
		if sess, ok := session.FromContext(c); ok {
			return c.SendString(sess.Username)
		}
		return c.SendString("anonymous")
	}
	app.Get("/required", m.Handle, whoami)
	app.Get("/optional", m.Optional, whoami)
	app.Get("/support", m.Handle, RequireRole(domain.RoleSupport), whoami)
	return app
}

func TestAuthMiddleware(t *testing.T) {
	m := NewAuthMiddleware(stubResolver{
		"client-token":  {TokenID: "1", Username: "alice", Role: domain.RoleClient},
		"support-token": {TokenID: "2", Username: "bob", Role: domain.RoleSupport},
	})
	app := newMiddlewareApp(m)

	tests := []struct {
		name   string
		path   string
		header string
		cookie string
		status int
	}{
		{name: "missing token", path: "/required", status: http.StatusUnauthorized},
		{name: "bearer", path: "/required", header: "Bearer client-token", status: http.StatusOK},
		{name: "cookie", path: "/required", cookie: "client-token", status: http.StatusOK},
		{name: "bad scheme", path: "/required", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "unknown token", path: "/required", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "optional anonymous", path: "/optional", status: http.StatusOK},
		{name: "optional invalid", path: "/optional", cookie: "nope", status: http.StatusOK},
		{name: "wrong role", path: "/support", header: "Bearer client-token", status: http.StatusForbidden},
		{name: "right role", path: "/support", header: "Bearer support-token", status: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tc.cookie})
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}
		})
	}
}

func TestRequireRoleWithoutSession(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/", RequireRole(domain.RoleClient), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
