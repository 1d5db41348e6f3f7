package notebook

import (
	"context"
	"strings"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
)

// SaveIdea creates or replaces an idea. CreatedAt defaults to now and the
// categories are normalized before the write. Saving a pinned idea unpins
// every other idea.
func (r *Repository) SaveIdea(ctx context.Context, idea model.Idea) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}
	idea.ID = strings.TrimSpace(idea.ID)
	if idea.ID == "" {
		return model.NewValidationError("id", "required")
	}

	// Archived and hidden ideas are never pinned; a pin releases every other idea
	payload := category.NormalizeIdea(idea)
	pin := payload.Pinned && !payload.Archived && !payload.Hidden
	payload.Pinned = false
	if err := r.store.PutIdea(ctx, userID, payload); err != nil {
		return model.WriteFailed("save idea", err)
	}

	r.patchCache(ctx, func(ideas []model.Idea) []model.Idea {
		out := ideas[:0]
		for _, existing := range ideas {
			if existing.ID != payload.ID {
				out = append(out, existing)
			}
		}
		return sortAscending(append(out, payload))
	})
	r.log.Info("Saved idea", logger.F("id", payload.ID), logger.F("categories", payload.Categories))
	if pin {
		return r.SetIdeaPinned(ctx, payload.ID, true)
	}
	return nil
}

// SetIdeaArchived archives or restores an idea. Archiving also unpins it.
func (r *Repository) SetIdeaArchived(ctx context.Context, id string, archived bool) error {
	patch := model.IdeaPatch{Archived: model.Bool(archived)}
	if archived {
		patch.Pinned = model.Bool(false)
	}
	return r.update(ctx, "archive idea", id, patch)
}

// SetIdeaHidden hides or reveals an idea. Hiding also unpins it.
func (r *Repository) SetIdeaHidden(ctx context.Context, id string, hidden bool) error {
	patch := model.IdeaPatch{Hidden: model.Bool(hidden)}
	if hidden {
		patch.Pinned = model.Bool(false)
	}
	return r.update(ctx, "hide idea", id, patch)
}

// SetIdeaCategories replaces the categories of an idea
func (r *Repository) SetIdeaCategories(ctx context.Context, id string, categories []string) error {
	return r.update(ctx, "set idea categories", id, categoriesPatch(category.Normalize(categories)))
}

// UpdateIdeaText replaces the text of an idea, trimmed
func (r *Repository) UpdateIdeaText(ctx context.Context, id, text string) error {
	return r.update(ctx, "update idea text", id, model.IdeaPatch{Text: model.String(strings.TrimSpace(text))})
}

func (r *Repository) update(ctx context.Context, op, id string, patch model.IdeaPatch) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return model.NewValidationError("id", "required")
	}

	if err := r.store.UpdateIdea(ctx, userID, id, patch); err != nil {
		return model.WriteFailed(op, err)
	}
	r.updateCached(ctx, id, patch)
	r.log.Debug("Updated idea", logger.F("op", op), logger.F("id", id))
	return nil
}

// SetIdeaPinned pins or unpins an idea. Pinning unpins every other idea in
// the same atomic batch, so at most one idea is ever pinned.
func (r *Repository) SetIdeaPinned(ctx context.Context, id string, pinned bool) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return model.NewValidationError("id", "required")
	}

	if !pinned {
		if err := r.store.UpdateIdea(ctx, userID, id, model.IdeaPatch{Pinned: model.Bool(false)}); err != nil {
			return model.WriteFailed("unpin idea", err)
		}
		r.updateCached(ctx, id, model.IdeaPatch{Pinned: model.Bool(false)})
		return nil
	}

	r.mu.Lock()
	populated := r.populated
	existing := cloneIdeas(r.cache)
	r.mu.Unlock()
	if !populated {
		existing = r.refresh(ctx)
	}

	updates := []model.IdeaUpdate{{ID: id, Patch: model.IdeaPatch{Pinned: model.Bool(true)}}}
	for _, idea := range existing {
		if idea.ID != id && idea.Pinned {
			updates = append(updates, model.IdeaUpdate{ID: idea.ID, Patch: model.IdeaPatch{Pinned: model.Bool(false)}})
		}
	}
	if err := r.store.CommitBatch(ctx, userID, updates); err != nil {
		return model.WriteFailed("pin idea", err)
	}

	r.patchCache(ctx, func(ideas []model.Idea) []model.Idea {
		for i := range ideas {
			ideas[i].Pinned = ideas[i].ID == id
		}
		return ideas
	})
	r.log.Info("Pinned idea", logger.F("id", id), logger.F("unpinned", len(updates)-1))
	return nil
}

// DeleteIdea removes an idea. Categories no other idea references are
// dropped from the palette and announced to OnCategoryDeleted listeners.
func (r *Repository) DeleteIdea(ctx context.Context, id string) error {
	userID, err := r.requireUser(ctx)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return model.NewValidationError("id", "required")
	}

	existing, err := r.GetIdeas(ctx, GetOptions{})
	if err != nil {
		return err
	}
	var deleted *model.Idea
	for i := range existing {
		if existing[i].ID == id {
			deleted = &existing[i]
			break
		}
	}

	if err := r.store.DeleteIdea(ctx, userID, id); err != nil {
		return model.WriteFailed("delete idea", err)
	}
	r.patchCache(ctx, func(ideas []model.Idea) []model.Idea {
		out := ideas[:0]
		for _, idea := range ideas {
			if idea.ID != id {
				out = append(out, idea)
			}
		}
		return out
	})
	r.log.Info("Deleted idea", logger.F("id", id))

	if deleted == nil {
		return nil
	}
	for _, name := range category.Normalize(deleted.Categories) {
		if r.referenced(name) {
			continue
		}
		r.palette.remove(ctx, userID, name)
		r.emitCategoryDeleted(model.CategoryDeleted{Category: name})
	}
	return nil
}
