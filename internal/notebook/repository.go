// Package notebook is the client core: it reconciles the remote store with
// the local mirror, keeps an in-memory idea cache and enforces the idea and
// category invariants.
package notebook

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/identity"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/remote"
)

// Mirror is the local cache the repository falls back to.
// It never fails; *db.Mirror implements it.
type Mirror interface {
	ReadIdeas() []model.Idea
	WriteIdeas(ideas []model.Idea)
	ReadPalette() model.Palette
	WritePalette(p model.Palette)
}

// GetOptions controls cache use on reads
type GetOptions struct {
	Force bool // Bypass the in-memory cache
}

// Repository owns the idea cache of one process. Use New.
type Repository struct {
	store    remote.Store
	identity identity.Provider
	mirror   Mirror
	log      *logger.Logger
	palette  *Palette

	mu        sync.Mutex
	cache     []model.Idea
	populated bool

	listenerMu   sync.Mutex
	listeners    map[int]func(model.CategoryDeleted)
	nextListener int
}

// Option configures a Repository
type Option func(*Repository)

// WithLogger sets the logger used by the repository and its palette
func WithLogger(l *logger.Logger) Option {
	return func(r *Repository) { r.log = l }
}

// New creates a repository over store, scoped by the user who provider resolves
func New(store remote.Store, provider identity.Provider, mirror Mirror, opts ...Option) *Repository {
	r := &Repository{
		store:     store,
		identity:  provider,
		mirror:    mirror,
		listeners: map[int]func(model.CategoryDeleted){},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.palette = newPalette(r)
	return r
}

// Palette returns the category palette service sharing this repository
func (r *Repository) Palette() *Palette {
	return r.palette
}

// currentUser resolves the signed-in user; "" means signed out
func (r *Repository) currentUser(ctx context.Context) (string, error) {
	if r.identity == nil {
		return "", nil
	}
	return r.identity.CurrentUserID(ctx)
}

// requireUser resolves the user for a mutation
func (r *Repository) requireUser(ctx context.Context) (string, error) {
	userID, err := r.currentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrAuthRequired, err)
	}
	if userID == "" {
		return "", model.ErrAuthRequired
	}
	return userID, nil
}

// GetIdeas returns every idea sorted by creation time, oldest first.
// Remote failures degrade to the local mirror and are not returned.
func (r *Repository) GetIdeas(ctx context.Context, opts GetOptions) ([]model.Idea, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !opts.Force {
		r.mu.Lock()
		if r.populated {
			out := sortAscending(r.cache)
			r.mu.Unlock()
			return out, nil
		}
		r.mu.Unlock()
	}
	return r.refresh(ctx), nil
}

// refresh replaces cache and mirror with a full remote fetch, or with the
// mirror contents when the fetch is impossible
func (r *Repository) refresh(ctx context.Context) []model.Idea {
	userID, err := r.currentUser(ctx)
	switch {
	case err != nil:
		r.log.Warn("Unable to resolve user, using local cache", logger.F("error", err))
		return r.loadMirror()
	case userID == "":
		r.log.Debug("No user signed in, using local cache")
		return r.loadMirror()
	}

	ideas, err := r.store.ListIdeas(ctx, userID)
	if err != nil {
		r.log.Warn("Error fetching ideas, using local cache", logger.F("error", err))
		return r.loadMirror()
	}

	ideas = sortAscending(category.NormalizeIdeas(ideas))
	r.mu.Lock()
	r.cache = ideas
	r.populated = true
	r.mirror.WriteIdeas(ideas)
	out := cloneIdeas(ideas)
	r.mu.Unlock()

	r.log.Debug("Fetched ideas", logger.F("count", len(out)))
	return out
}

func (r *Repository) loadMirror() []model.Idea {
	local := sortAscending(r.mirror.ReadIdeas())
	r.mu.Lock()
	r.cache = local
	r.populated = true
	out := cloneIdeas(local)
	r.mu.Unlock()
	return out
}

// GetCategories returns every category in use, in first-seen order
func (r *Repository) GetCategories(ctx context.Context) ([]string, error) {
	ideas, err := r.GetIdeas(ctx, GetOptions{})
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, idea := range ideas {
		for _, c := range idea.Categories {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out, nil
}

// View returns the ideas of one browsing view, oldest first
func (r *Repository) View(ctx context.Context, view model.View) ([]model.Idea, error) {
	ideas, err := r.GetIdeas(ctx, GetOptions{})
	if err != nil {
		return nil, err
	}
	return model.FilterView(ideas, view), nil
}

// patchCache applies fn to the cache and mirror after a confirmed remote
// write. An unpopulated cache is refetched instead.
func (r *Repository) patchCache(ctx context.Context, fn func(ideas []model.Idea) []model.Idea) {
	r.mu.Lock()
	if !r.populated {
		r.mu.Unlock()
		r.refresh(ctx)
		return
	}
	r.cache = category.NormalizeIdeas(fn(cloneIdeas(r.cache)))
	r.mirror.WriteIdeas(r.cache)
	r.mu.Unlock()
}

// updateCached patches the cached idea with id, if present
func (r *Repository) updateCached(ctx context.Context, id string, patch model.IdeaPatch) {
	r.patchCache(ctx, func(ideas []model.Idea) []model.Idea {
		for i := range ideas {
			if ideas[i].ID == id {
				ideas[i] = patch.Apply(ideas[i])
			}
		}
		return ideas
	})
}

// referenced reports whether any cached idea still uses name
func (r *Repository) referenced(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, idea := range r.cache {
		if category.Contains(idea.Categories, name) {
			return true
		}
	}
	return false
}

func cloneIdeas(ideas []model.Idea) []model.Idea {
	out := make([]model.Idea, len(ideas))
	for i, idea := range ideas {
		out[i] = idea.Clone()
	}
	return out
}

func sortAscending(ideas []model.Idea) []model.Idea {
	out := cloneIdeas(ideas)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out
}

func sortDescending(ideas []model.Idea) []model.Idea {
	out := cloneIdeas(ideas)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}
