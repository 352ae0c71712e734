package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/querydesk/internal/session"
	apperrors "github.com/spec-kit/querydesk/pkg/util/errorutil"
)

// SessionCookie names the cookie carrying the session token for the UI.
const SessionCookie = "querydesk_session"

// SessionResolver turns a raw token into a live session.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*session.Session, error)
}

// AuthMiddleware validates session tokens and attaches sessions.
type AuthMiddleware struct {
	resolver SessionResolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(resolver SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := tokenFromRequest(c)
	if err != nil {
		return err
	}
	if token == "" {
		return apperrors.NewUnauthorized("missing session token")
	}
	sess, err := m.resolver.ResolveSession(c.UserContext(), token)
	if err != nil {
		return err
	}
	session.Attach(c, sess)
	return c.Next()
}

// Optional attaches a session when the request carries a valid one and lets
// anonymous requests through.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	token, err := tokenFromRequest(c)
	if err == nil && token != "" {
		if sess, err := m.resolver.ResolveSession(c.UserContext(), token); err == nil {
			session.Attach(c, sess)
		}
	}
	return c.Next()
}

// tokenFromRequest prefers a bearer header and falls back to the cookie.
func tokenFromRequest(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", apperrors.NewUnauthorized("invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	return c.Cookies(SessionCookie), nil
}
