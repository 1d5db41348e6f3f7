package notebook

import (
	"context"
	"strings"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
)

// RenameResult reports how far a rename got
type RenameResult struct {
	UpdatedIdeas    int  // Ideas whose categories were rewritten
	PaletteMigrated bool // The remote palette document moved to the new name
}

// RenameCategory replaces oldName with newName on every idea, then moves
// its palette entry. The idea batch is all-or-nothing and its failure aborts
// the rename; a failed palette migration only loses the colour remotely.
func (p *Palette) RenameCategory(ctx context.Context, oldName, newName string) (RenameResult, error) {
	current := strings.TrimSpace(oldName)
	next := strings.TrimSpace(newName)
	if current == "" || next == "" || current == next {
		return RenameResult{}, nil
	}

	userID, err := p.repo.requireUser(ctx)
	if err != nil {
		return RenameResult{}, err
	}

	// 1. Ideas referencing the old name
	ideas, err := p.repo.GetIdeas(ctx, GetOptions{})
	if err != nil {
		return RenameResult{}, err
	}
	var updates []model.IdeaUpdate
	for _, idea := range ideas {
		if !category.Contains(idea.Categories, current) {
			continue
		}
		updates = append(updates, model.IdeaUpdate{ID: idea.ID, Patch: categoriesPatch(category.Replace(idea.Categories, current, next))})
	}

	// 2. Atomic idea batch
	if len(updates) > 0 {
		if err := p.repo.store.CommitBatch(ctx, userID, updates); err != nil {
			p.log.Error("Unable to rename category on ideas", logger.F("from", current), logger.F("to", next), logger.F("error", err))
			return RenameResult{}, model.WriteFailed("rename category", err)
		}
	}

	// 3. Idea cache and mirror
	p.repo.mu.Lock()
	if p.repo.populated {
		for i, idea := range p.repo.cache {
			if category.Contains(idea.Categories, current) {
				p.repo.cache[i] = categoriesPatch(category.Replace(idea.Categories, current, next)).Apply(idea)
			}
		}
		p.repo.mirror.WriteIdeas(p.repo.cache)
	}
	p.repo.mu.Unlock()

	// 4. Remote palette document
	result := RenameResult{UpdatedIdeas: len(updates)}
	var preserved string
	if p.Sync() == SyncEnabled {
		result.PaletteMigrated, preserved = p.migrateRemote(ctx, userID, current, next)
	}

	// 5. Local palette
	p.mu.Lock()
	p.ensureLocked()
	old, hadOld := p.cache[current]
	entry, ok := p.cache[next]
	if !ok {
		entry = model.PaletteEntry{Visible: true}
	}
	if entry.Color == "" {
		entry.Color = preserved
	}
	if entry.Color == "" && hadOld {
		entry.Color = old.Color
	}
	delete(p.cache, current)
	p.cache[next] = entry
	p.commitLocked()
	p.mu.Unlock()

	p.log.Info("Renamed category",
		logger.F("from", current),
		logger.F("to", next),
		logger.F("ideas", result.UpdatedIdeas),
		logger.F("palette_migrated", result.PaletteMigrated),
	)
	return result, nil
}

// migrateRemote moves the remote document of current to next. It returns the
// colour to keep, which may be known even when the migration failed.
func (p *Palette) migrateRemote(ctx context.Context, userID, current, next string) (bool, string) {
	store := p.repo.store

	oldDoc, oldExists, err := store.GetCategorySetting(ctx, userID, current)
	if err != nil {
		p.remoteFailed("rename", err)
		return false, ""
	}
	newDoc, newExists, err := store.GetCategorySetting(ctx, userID, next)
	if err != nil {
		p.remoteFailed("rename", err)
		return false, ""
	}

	var preserved string
	if oldExists {
		preserved = strings.ToLower(strings.TrimSpace(oldDoc.Color))
	}
	newColor := ""
	if newExists {
		newColor = strings.ToLower(strings.TrimSpace(newDoc.Color))
	}
	if preserved == "" {
		preserved = newColor
	}

	setting := model.CategorySetting{UserID: userID, Name: next}
	if preserved != "" && newColor == "" {
		setting.Color = preserved
	}
	if err := store.PutCategorySetting(ctx, userID, setting); err != nil {
		p.remoteFailed("rename", err)
		return false, preserved
	}
	// A case-only rename shares the document id
	if oldExists && model.CategoryDocID(current) != model.CategoryDocID(next) {
		if err := store.DeleteCategorySetting(ctx, userID, current); err != nil {
			p.remoteFailed("rename", err)
			return false, preserved
		}
	}
	return true, preserved
}

func categoriesPatch(categories []string) model.IdeaPatch {
	primary := ""
	if len(categories) > 0 {
		primary = categories[0]
	}
	return model.IdeaPatch{
		Category:   model.String(primary),
		Categories: model.Strings(categories),
	}
}
