// Package memory provides in-process implementations of the repository
// interfaces. They back the service when no database is configured and
// are used throughout the tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/querydesk/internal/domain"
	"github.com/spec-kit/querydesk/internal/repository"
)

// UserRepository keeps users in a map keyed by username.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserRepository returns an empty user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return repository.ErrDuplicate
	}
	r.users[user.Username] = *user
	return nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

// Len returns the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// QueryRepository keeps queries in insertion order with sequential ids.
type QueryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	queries []domain.Query
}

// NewQueryRepository returns an empty query store.
func NewQueryRepository() *QueryRepository {
	return &QueryRepository{nextID: 1}
}

func (r *QueryRepository) Create(_ context.Context, query *domain.Query) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	query.ID = r.nextID
	r.nextID++
	r.queries = append(r.queries, *query)
	return nil
}

func (r *QueryRepository) GetByID(_ context.Context, id int64) (*domain.Query, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return nil, repository.ErrNotFound
	}
	query := r.queries[idx]
	return &query, nil
}

func (r *QueryRepository) List(_ context.Context, filter repository.QueryFilter) ([]domain.Query, error) {
	r.mu.RLock()
	result := make([]domain.Query, 0, len(r.queries))
	for _, query := range r.queries {
		if filter.Status != nil && query.Status != *filter.Status {
			continue
		}
		result = append(result, query)
	}
	r.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		if offset >= len(result) {
			return []domain.Query{}, nil
		}
		end := offset + filter.Limit
		if end > len(result) {
			end = len(result)
		}
		result = result[offset:end]
	}
	return result, nil
}

func (r *QueryRepository) Close(_ context.Context, id int64, closedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return repository.ErrNotFound
	}
	if r.queries[idx].Status != domain.QueryStatusOpen {
		return repository.ErrAlreadyClosed
	}
	r.queries[idx].Status = domain.QueryStatusClosed
	r.queries[idx].ClosedAt = &closedAt
	return nil
}

func (r *QueryRepository) CountByStatus(_ context.Context) (domain.QueryStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stats domain.QueryStats
	for _, query := range r.queries {
		switch query.Status {
		case domain.QueryStatusOpen:
			stats.Open++
		case domain.QueryStatusClosed:
			stats.Closed++
		}
	}
	return stats, nil
}

func (r *QueryRepository) indexOf(id int64) int {
	for i := range r.queries {
		if r.queries[i].ID == id {
			return i
		}
	}
	return -1
}

// SessionRepository records revoked token ids until they expire.
type SessionRepository struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewSessionRepository returns an empty revocation store.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{revoked: make(map[string]time.Time), now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (r *SessionRepository) WithClock(now func() time.Time) *SessionRepository {
	r.now = now
	return r
}

func (r *SessionRepository) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = r.now().Add(ttl)
	return nil
}

func (r *SessionRepository) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !r.now().Before(until) {
		delete(r.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

type attemptWindow struct {
	count     int64
	expiresAt time.Time
}

// LoginAttemptRepository counts failures per key with fixed windows.
type LoginAttemptRepository struct {
	mu       sync.Mutex
	attempts map[string]attemptWindow
	now      func() time.Time
}

// NewLoginAttemptRepository returns an empty attempt counter.
func NewLoginAttemptRepository() *LoginAttemptRepository {
	return &LoginAttemptRepository{attempts: make(map[string]attemptWindow), now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (r *LoginAttemptRepository) WithClock(now func() time.Time) *LoginAttemptRepository {
	r.now = now
	return r
}

func (r *LoginAttemptRepository) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	entry, ok := r.attempts[key]
	if !ok || !now.Before(entry.expiresAt) {
		entry = attemptWindow{expiresAt: now.Add(window)}
	}
	entry.count++
	r.attempts[key] = entry
	return entry.count, nil
}

func (r *LoginAttemptRepository) Count(_ context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.attempts[key]
	if !ok || !r.now().Before(entry.expiresAt) {
		return 0, nil
	}
	return entry.count, nil
}

func (r *LoginAttemptRepository) Reset(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, key)
	return nil
}

var (
	_ repository.UserRepository         = (*UserRepository)(nil)
	_ repository.QueryRepository        = (*QueryRepository)(nil)
	_ repository.SessionRepository      = (*SessionRepository)(nil)
	_ repository.LoginAttemptRepository = (*LoginAttemptRepository)(nil)
)
