// Package identity resolves the current user without ever prompting for a
// new sign-in. An empty id with a nil error means nobody is signed in.
package identity

import (
	"context"
	"sync"
)

// Provider resolves the current user id
type Provider interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// Static is a Provider with a fixed, replaceable user id
type Static struct {
	mu     sync.RWMutex
	userID string
}

// NewStatic returns a Provider for userID
func NewStatic(userID string) *Static {
	return &Static{userID: userID}
}

// CurrentUserID returns the configured id
func (s *Static) CurrentUserID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, nil
}

// SignOut clears the id
func (s *Static) SignOut() {
	s.Set("")
}

// Set replaces the id
func (s *Static) Set(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
}
