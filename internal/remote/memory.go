package remote

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/existflow/ideabox/internal/model"
)

// Op names a Memory operation, for fault injection
type Op string

const (
	OpListIdeas     Op = "list_ideas"
	OpPutIdea       Op = "put_idea"
	OpUpdateIdea    Op = "update_idea"
	OpCommitBatch   Op = "commit_batch"
	OpDeleteIdea    Op = "delete_idea"
	OpWatchIdeas    Op = "watch_ideas"
	OpListSettings  Op = "list_settings"
	OpGetSetting    Op = "get_setting"
	OpPutSetting    Op = "put_setting"
	OpDeleteSetting Op = "delete_setting"
)

// FaultFunc may fail an operation before it touches any data
type FaultFunc func(op Op, userID string) error

type memoryUser struct {
	ideas    map[string]model.Idea
	settings map[string]model.CategorySetting // Keyed by model.CategoryDocID
	watchers map[int]*memoryWatcher
}

// Memory is an in-process Store. It backs tests and the server's
// development mode.
type Memory struct {
	mu      sync.Mutex
	users   map[string]*memoryUser
	fault   FaultFunc
	nextID  int
	commits int
}

// NewMemory creates an empty store
func NewMemory() *Memory {
	return &Memory{users: map[string]*memoryUser{}}
}

// SetFault installs a fault hook; nil removes it
func (m *Memory) SetFault(f FaultFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fault = f
}

// Commits returns the number of successful write operations
func (m *Memory) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

func (m *Memory) userLocked(userID string) *memoryUser {
	u, ok := m.users[userID]
	if !ok {
		u = &memoryUser{
			ideas:    map[string]model.Idea{},
			settings: map[string]model.CategorySetting{},
			watchers: map[int]*memoryWatcher{},
		}
		m.users[userID] = u
	}
	return u
}

func (m *Memory) check(ctx context.Context, op Op, userID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", model.ErrRemoteUnavailable, err)
	}
	if strings.TrimSpace(userID) == "" {
		return model.ErrAuthRequired
	}
	if m.fault != nil {
		if err := m.fault(op, userID); err != nil {
			return err
		}
	}
	return nil
}

func snapshotLocked(u *memoryUser) []model.Idea {
	out := make([]model.Idea, 0, len(u.ideas))
	for _, idea := range u.ideas {
		out = append(out, idea.Clone())
	}
	return out
}

// commitLocked counts a write and notifies the user's watchers
func (m *Memory) commitLocked(u *memoryUser) {
	m.commits++
	snap := snapshotLocked(u)
	for _, w := range u.watchers {
		w.offer(snap)
	}
}

// ListIdeas returns every idea of the user
func (m *Memory) ListIdeas(ctx context.Context, userID string) ([]model.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpListIdeas, userID); err != nil {
		return nil, err
	}
	return snapshotLocked(m.userLocked(userID)), nil
}

// PutIdea creates or replaces an idea document
func (m *Memory) PutIdea(ctx context.Context, userID string, idea model.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpPutIdea, userID); err != nil {
		return err
	}
	if strings.TrimSpace(idea.ID) == "" {
		return model.NewValidationError("id", "required")
	}
	u := m.userLocked(userID)
	u.ideas[idea.ID] = idea.Clone()
	m.commitLocked(u)
	return nil
}

// UpdateIdea patches an existing idea document
func (m *Memory) UpdateIdea(ctx context.Context, userID, id string, patch model.IdeaPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpUpdateIdea, userID); err != nil {
		return err
	}
	u := m.userLocked(userID)
	existing, ok := u.ideas[id]
	if !ok {
		return fmt.Errorf("idea %s: %w", id, model.ErrNotFound)
	}
	u.ideas[id] = patch.Apply(existing)
	m.commitLocked(u)
	return nil
}

// CommitBatch applies all updates atomically
func (m *Memory) CommitBatch(ctx context.Context, userID string, updates []model.IdeaUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpCommitBatch, userID); err != nil {
		return err
	}
	u := m.userLocked(userID)
	for _, up := range updates {
		if _, ok := u.ideas[up.ID]; !ok {
			return fmt.Errorf("idea %s: %w", up.ID, model.ErrNotFound)
		}
	}
	for _, up := range updates {
		u.ideas[up.ID] = up.Patch.Apply(u.ideas[up.ID])
	}
	m.commitLocked(u)
	return nil
}

// DeleteIdea removes an idea document; deleting a missing one succeeds
func (m *Memory) DeleteIdea(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpDeleteIdea, userID); err != nil {
		return err
	}
	u := m.userLocked(userID)
	delete(u.ideas, id)
	m.commitLocked(u)
	return nil
}

// WatchIdeas registers a live query over the user's ideas
func (m *Memory) WatchIdeas(ctx context.Context, userID string, onSnapshot SnapshotFunc, onError ErrorFunc) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpWatchIdeas, userID); err != nil {
		return nil, err
	}

	u := m.userLocked(userID)
	m.nextID++
	id := m.nextID
	w := newMemoryWatcher(onSnapshot, onError)
	u.watchers[id] = w
	w.offer(snapshotLocked(u))

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(u.watchers, id)
			m.mu.Unlock()
			w.close()
		})
	}, nil
}

// BreakWatchers terminates every live query of the user with err
func (m *Memory) BreakWatchers(userID string, err error) {
	m.mu.Lock()
	u := m.userLocked(userID)
	broken := make([]*memoryWatcher, 0, len(u.watchers))
	for id, w := range u.watchers {
		broken = append(broken, w)
		delete(u.watchers, id)
	}
	m.mu.Unlock()

	for _, w := range broken {
		w.fail(err)
	}
}

// Watchers returns the number of live queries of the user
func (m *Memory) Watchers(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.userLocked(userID).watchers)
}

// ListCategorySettings returns the user's category documents
func (m *Memory) ListCategorySettings(ctx context.Context, userID string) ([]model.CategorySetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpListSettings, userID); err != nil {
		return nil, err
	}
	u := m.userLocked(userID)
	out := make([]model.CategorySetting, 0, len(u.settings))
	for _, s := range u.settings {
		out = append(out, s)
	}
	return out, nil
}

// GetCategorySetting returns one category document
func (m *Memory) GetCategorySetting(ctx context.Context, userID, name string) (model.CategorySetting, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpGetSetting, userID); err != nil {
		return model.CategorySetting{}, false, err
	}
	s, ok := m.userLocked(userID).settings[model.CategoryDocID(name)]
	return s, ok, nil
}

// PutCategorySetting merges setting into the stored document
func (m *Memory) PutCategorySetting(ctx context.Context, userID string, setting model.CategorySetting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpPutSetting, userID); err != nil {
		return err
	}
	docID := model.CategoryDocID(setting.Name)
	if docID == "" {
		return model.NewValidationError("name", "required")
	}
	u := m.userLocked(userID)
	existing := u.settings[docID]
	setting.UserID = userID
	u.settings[docID] = MergeSetting(existing, setting)
	m.commits++
	return nil
}

// DeleteCategorySetting removes a category document; missing is not an error
func (m *Memory) DeleteCategorySetting(ctx context.Context, userID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpDeleteSetting, userID); err != nil {
		return err
	}
	delete(m.userLocked(userID).settings, model.CategoryDocID(name))
	m.commits++
	return nil
}

// MergeSetting applies a merge write of incoming over existing
func MergeSetting(existing, incoming model.CategorySetting) model.CategorySetting {
	out := existing
	out.UserID = incoming.UserID
	if name := strings.TrimSpace(incoming.Name); name != "" {
		out.Name = name
	}
	switch {
	case incoming.ClearColor:
		out.Color = ""
	case incoming.Color != "":
		out.Color = incoming.Color
	}
	if incoming.Visible != nil {
		out.Visible = model.Bool(*incoming.Visible)
	}
	out.ClearColor = false
	return out
}

// memoryWatcher delivers coalesced snapshots on its own goroutine
type memoryWatcher struct {
	mu         sync.Mutex
	pending    []model.Idea
	hasPending bool
	err        error
	closed     bool
	signal     chan struct{}
	done       chan struct{}
}

func newMemoryWatcher(onSnapshot SnapshotFunc, onError ErrorFunc) *memoryWatcher {
	w := &memoryWatcher{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go w.run(onSnapshot, onError)
	return w
}

func (w *memoryWatcher) notify() {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *memoryWatcher) offer(snap []model.Idea) {
	w.mu.Lock()
	w.pending = snap
	w.hasPending = true
	w.mu.Unlock()
	w.notify()
}

func (w *memoryWatcher) fail(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
	w.notify()
}

func (w *memoryWatcher) close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.done)
	}
	w.mu.Unlock()
}

func (w *memoryWatcher) run(onSnapshot SnapshotFunc, onError ErrorFunc) {
	for {
		select {
		case <-w.done:
			return
		case <-w.signal:
		}

		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return
		}
		snap, has, err := w.pending, w.hasPending, w.err
		w.pending, w.hasPending = nil, false
		w.mu.Unlock()

		if has && onSnapshot != nil {
			onSnapshot(snap)
		}
		if err != nil {
			if onError != nil {
				onError(err)
			}
			w.close()
			return
		}
	}
}
