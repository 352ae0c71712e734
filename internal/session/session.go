// Package session holds the identity of the caller for a single request.
package session

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/querydesk/internal/domain"
)

const localsKey = "querydesk_session"

// Session is the authenticated identity handed to view and API handlers.
// It lives for one request; nothing about it is kept in process memory.
type Session struct {
	TokenID   string
	Username  string
	Role      domain.Role
	ExpiresAt time.Time
}

// Is reports whether the session belongs to the given role.
func (s *Session) Is(role domain.Role) bool {
	return s != nil && s.Role == role
}

// TTL returns the remaining validity of the session.
func (s *Session) TTL(now time.Time) time.Duration {
	if s == nil || !now.Before(s.ExpiresAt) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// Attach stores the session on the request.
func Attach(c *fiber.Ctx, s *Session) {
	c.Locals(localsKey, s)
}

// FromContext retrieves the session attached to the request, if any.
func FromContext(c *fiber.Ctx) (*Session, bool) {
	val := c.Locals(localsKey)
	if val == nil {
		return nil, false
	}
	s, ok := val.(*Session)
	return s, ok && s != nil
}
