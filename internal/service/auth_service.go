package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/querydesk/internal/auth"
	"github.com/spec-kit/querydesk/internal/config"
	"github.com/spec-kit/querydesk/internal/domain"
	"github.com/spec-kit/querydesk/internal/repository"
	"github.com/spec-kit/querydesk/internal/session"
	apperrors "github.com/spec-kit/querydesk/pkg/util/errorutil"
)

// ErrInvalidCredentials is reported for unknown users and wrong passwords alike.
var ErrInvalidCredentials = apperrors.NewUnauthorized("invalid credentials")

// AuthService coordinates registration, login and logout.
type AuthService struct {
	users       repository.UserRepository
	sessions    repository.SessionRepository
	attempts    repository.LoginAttemptRepository
	tokenMgr    *auth.TokenManager
	logger      *zap.Logger
	bcryptCost  int
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo         repository.UserRepository
	SessionRepo      repository.SessionRepository
	LoginAttemptRepo repository.LoginAttemptRepository
	Logger           *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       deps.UserRepo,
		sessions:    deps.SessionRepo,
		attempts:    deps.LoginAttemptRepo,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL()),
		logger:      logger,
		bcryptCost:  cfg.Auth.BcryptCost,
		maxAttempts: cfg.Auth.LoginMaxAttempts,
		window:      cfg.Auth.LoginWindow(),
		now:         time.Now,
	}
}

// Register creates a new account. A taken username yields a CONFLICT error
// and leaves the stored user untouched.
func (s *AuthService) Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password required", nil)
	}
	parsed, err := domain.ParseRole(string(role))
	if err != nil {
		return nil, apperrors.NewValidationError("role must be Client or Support", map[string]any{"role": role})
	}
	role = parsed

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:       username,
		HashedPassword: hash,
		Role:           role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("username already exists", map[string]any{"username": username})
		}
		return nil, err
	}
	s.logger.Info("user registered", zap.String("username", username), zap.String("role", string(role)))
	return user, nil
}

// Authenticate checks a username/password pair against the stored digest.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.HashedPassword, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates the user and issues a session token. Repeated failures
// for the same username are throttled.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, *domain.SessionToken, error) {
	key := strings.ToLower(strings.TrimSpace(username))
	if s.throttled(ctx, key) {
		return nil, nil, apperrors.NewTooManyRequests("too many failed login attempts, try again later")
	}

	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.recordFailure(ctx, key)
		}
		return nil, nil, err
	}
	s.clearFailures(ctx, key)

	token, err := s.tokenMgr.GenerateToken(user.Username, user.Role)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// Logout revokes the session token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil || s.sessions == nil {
		return nil
	}
	return s.sessions.Revoke(ctx, sess.TokenID, sess.TTL(s.now()))
}

// ResolveSession validates a raw token and rejects revoked sessions.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*session.Session, error) {
	sess, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid session")
	}
	if s.sessions != nil {
		revoked, err := s.sessions.IsRevoked(ctx, sess.TokenID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, apperrors.NewUnauthorized("session ended")
		}
	}
	return sess, nil
}

// TokenManager exposes the underlying token manager.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) throttled(ctx context.Context, key string) bool {
	if s.attempts == nil || s.maxAttempts <= 0 {
		return false
	}
	count, err := s.attempts.Count(ctx, key)
	if err != nil {
		s.logger.Warn("login attempt lookup failed", zap.Error(err))
		return false
	}
	return count >= int64(s.maxAttempts)
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if s.attempts == nil || s.maxAttempts <= 0 {
		return
	}
	count, err := s.attempts.Increment(ctx, key, s.window)
	if err != nil {
		s.logger.Warn("login attempt record failed", zap.Error(err))
		return
	}
	if count >= int64(s.maxAttempts) {
		s.logger.Warn("login throttled", zap.Int64("failures", count))
	}
}

func (s *AuthService) clearFailures(ctx context.Context, key string) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.Reset(ctx, key); err != nil {
		s.logger.Warn("login attempt reset failed", zap.Error(err))
	}
}
