package notebook

import (
	"context"
	"sync"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
)

// subscription tracks one live query; stop may arrive after cancel
type subscription struct {
	mu        sync.Mutex
	cancelled bool
	stop      func()
	once      sync.Once
}

func (s *subscription) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

func (s *subscription) cancel() {
	s.once.Do(func() {
		s.mu.Lock()
		s.cancelled = true
		stop := s.stop
		s.stop = nil
		s.mu.Unlock()
		if stop != nil {
			stop()
		}
	})
}

// attach records the store's stop function. It reports false, after
// releasing the listener, when the subscription was cancelled meanwhile.
func (s *subscription) attach(stop func()) bool {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		stop()
		return false
	}
	s.stop = stop
	s.mu.Unlock()
	return true
}

// SubscribeToIdeas delivers the user's ideas, newest first, now and after
// every remote change. Each snapshot replaces the cache and the mirror. On a
// subscription error the last cached ideas are replayed instead.
//
// The query is established in the background; the returned function stops
// it, may be called any number of times and is safe to call before
// establishment completes.
func (r *Repository) SubscribeToIdeas(ctx context.Context, fn func(ideas []model.Idea)) func() {
	sub := &subscription{}
	go r.establish(ctx, sub, fn)
	return sub.cancel
}

func (r *Repository) establish(ctx context.Context, sub *subscription, fn func([]model.Idea)) {
	userID, err := r.currentUser(ctx)
	if err != nil {
		r.log.Warn("Unable to resolve user for subscription", logger.F("error", err))
		return
	}
	if userID == "" {
		r.log.Warn("No user signed in, skipping subscription")
		return
	}
	if sub.isCancelled() {
		return
	}

	onSnapshot := func(ideas []model.Idea) {
		if sub.isCancelled() {
			return
		}
		normalized := category.NormalizeIdeas(ideas)
		r.mu.Lock()
		r.cache = sortAscending(normalized)
		r.populated = true
		r.mirror.WriteIdeas(r.cache)
		r.mu.Unlock()

		r.log.Debug("Received snapshot", logger.F("count", len(normalized)))
		fn(sortDescending(normalized))
	}
	onError := func(err error) {
		if sub.isCancelled() {
			return
		}
		r.log.Error("Subscription error, replaying cache", logger.F("error", err))
		r.replayCache(fn)
	}

	stop, err := r.store.WatchIdeas(ctx, userID, onSnapshot, onError)
	if err != nil {
		onError(err)
		return
	}
	if !sub.attach(stop) {
		r.log.Debug("Subscription cancelled during establishment")
	}
}

func (r *Repository) replayCache(fn func([]model.Idea)) {
	r.mu.Lock()
	if !r.populated {
		r.mu.Unlock()
		return
	}
	out := sortDescending(r.cache)
	r.mu.Unlock()
	fn(out)
}
