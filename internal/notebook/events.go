package notebook

import (
	"sync"

	"github.com/existflow/ideabox/internal/model"
)

// OnCategoryDeleted registers fn to run when a delete leaves a category
// unreferenced. The returned function removes the listener.
func (r *Repository) OnCategoryDeleted(fn func(model.CategoryDeleted)) func() {
	r.listenerMu.Lock()
	r.nextListener++
	id := r.nextListener
	r.listeners[id] = fn
	r.listenerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.listenerMu.Lock()
			delete(r.listeners, id)
			r.listenerMu.Unlock()
		})
	}
}

func (r *Repository) emitCategoryDeleted(event model.CategoryDeleted) {
	r.listenerMu.Lock()
	fns := make([]func(model.CategoryDeleted), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.listenerMu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}
