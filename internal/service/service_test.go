package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/querydesk/internal/config"
	"github.com/spec-kit/querydesk/internal/events"
	"github.com/spec-kit/querydesk/internal/repository/memory"
)

type authFixture struct {
	svc      *AuthService
	users    *memory.UserRepository
	sessions *memory.SessionRepository
	attempts *memory.LoginAttemptRepository
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:          "test-secret",
			SessionTTLMinutes:  60,
			BcryptCost:         bcrypt.MinCost,
			LoginMaxAttempts:   3,
			LoginWindowSeconds: 60,
		},
	}
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:    memory.NewUserRepository(),
		sessions: memory.NewSessionRepository(),
		attempts: memory.NewLoginAttemptRepository(),
	}
	f.svc = NewAuthService(testConfig(), AuthDependencies{
		UserRepo:         f.users,
		SessionRepo:      f.sessions,
		LoginAttemptRepo: f.attempts,
	})
	return f
}

// steppingClock returns strictly increasing times, one second apart.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

type recordingForwarder struct {
	events []events.Event
	err    error
}

func (r *recordingForwarder) Forward(_ context.Context, event events.Event) error {
	r.events = append(r.events, event)
	return r.err
}
