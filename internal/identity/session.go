package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Session is the sign-in state persisted by `ideabox auth login`
type Session struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Salt      string `json:"salt,omitempty"` // Base64 salt for content sealing
}

// IsLoggedIn returns true if the session carries credentials
func (s Session) IsLoggedIn() bool {
	return s.Token != "" && s.UserID != ""
}

// SessionFile is a Provider backed by a session JSON file
type SessionFile struct {
	path    string
	mu      sync.Mutex
	session Session
	loaded  bool
}

// NewSessionFile returns a provider reading path lazily
func NewSessionFile(path string) *SessionFile {
	return &SessionFile{path: path}
}

// Path returns the session file location
func (f *SessionFile) Path() string {
	return f.path
}

// Load returns the stored session. A missing or unreadable file is an empty session.
func (f *SessionFile) Load() Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadLocked()
}

func (f *SessionFile) loadLocked() Session {
	if f.loaded {
		return f.session
	}
	f.loaded = true
	data, err := os.ReadFile(f.path)
	if err != nil {
		return f.session
	}
	var s Session
	if err := json.Unmarshal(data, &s); err == nil {
		f.session = s
	}
	return f.session
}

// Save replaces the stored session
func (f *SessionFile) Save(s Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	f.session = s
	f.loaded = true
	return nil
}

// Clear signs out, keeping the server URL and salt
func (f *SessionFile) Clear() error {
	s := f.Load()
	s.Token = ""
	s.UserID = ""
	return f.Save(s)
}

// CurrentUserID returns the signed-in user, or "" when signed out
func (f *SessionFile) CurrentUserID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s := f.Load()
	if !s.IsLoggedIn() {
		return "", nil
	}
	return s.UserID, nil
}

// Token returns the bearer token of the session
func (f *SessionFile) Token() string {
	return f.Load().Token
}
