package server

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/existflow/ideabox/internal/model"
)

// MemoryAccounts is an in-process Accounts for development and tests
type MemoryAccounts struct {
	mu       sync.RWMutex
	users    map[string]model.User // By id
	sessions map[string]model.Session
}

// NewMemoryAccounts returns an empty account store
func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		users:    make(map[string]model.User),
		sessions: make(map[string]model.Session),
	}
}

// CreateUser adds a user, ErrConflict when the name or email is taken
func (a *MemoryAccounts) CreateUser(ctx context.Context, username, email, passwordHash string) (model.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, u := range a.users {
		if u.Username == username || strings.EqualFold(u.Email, email) {
			return model.User{}, ErrConflict
		}
	}
	user := model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	a.users[user.ID] = user
	return user, nil
}

// UserByUsername looks a user up by name
func (a *MemoryAccounts) UserByUsername(ctx context.Context, username string) (model.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, u := range a.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

// UserByID looks a user up by id
func (a *MemoryAccounts) UserByID(ctx context.Context, id string) (model.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	u, ok := a.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

// CreateSession stores a session
func (a *MemoryAccounts) CreateSession(ctx context.Context, s model.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[s.Token] = s
	return nil
}

// Session looks a session up by token
func (a *MemoryAccounts) Session(ctx context.Context, token string) (model.Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.sessions[token]
	if !ok {
		return model.Session{}, model.ErrNotFound
	}
	return s, nil
}

// DeleteSession removes a session
func (a *MemoryAccounts) DeleteSession(ctx context.Context, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, token)
	return nil
}
