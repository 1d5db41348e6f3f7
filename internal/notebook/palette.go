package notebook

import (
	"context"
	"strings"
	"sync"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
)

// SyncState is the remote side of the palette circuit breaker
type SyncState int

const (
	SyncEnabled  SyncState = iota // Remote category settings are read and written
	SyncDisabled                  // Access was denied; only the mirror is used
)

// String returns the state name
func (s SyncState) String() string {
	switch s {
	case SyncEnabled:
		return "enabled"
	case SyncDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Palette manages category colours and visibility. The mirror is the
// primary copy; the remote store is a best-effort backup.
type Palette struct {
	repo *Repository
	log  *logger.Logger

	mu     sync.Mutex
	cache  model.Palette
	loaded bool
	state  SyncState
}

func newPalette(r *Repository) *Palette {
	return &Palette{repo: r, log: r.log.Named("palette")}
}

// Sync reports whether remote category settings are still in use
func (p *Palette) Sync() SyncState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Palette) ensureLocked() {
	if !p.loaded {
		p.cache = category.Compact(p.repo.mirror.ReadPalette())
		p.loaded = true
	}
}

// commitLocked normalizes the cache and persists it to the mirror
func (p *Palette) commitLocked() {
	p.cache = category.Compact(p.cache)
	p.repo.mirror.WritePalette(p.cache)
}

// remoteFailed logs a remote palette failure; permission denial opens the breaker
func (p *Palette) remoteFailed(op string, err error) {
	if model.IsPermissionDenied(err) {
		p.mu.Lock()
		p.state = SyncDisabled
		p.mu.Unlock()
		p.log.Info("Category settings access denied, continuing with local cache only", logger.F("op", op))
		return
	}
	p.log.Warn("Unable to sync category settings, using local cache only", logger.F("op", op), logger.F("error", err))
}

// GetCategoryPalette returns the palette. The remote copy is consulted only
// when forced or when the local palette is empty; local entries win.
func (p *Palette) GetCategoryPalette(ctx context.Context, opts GetOptions) model.Palette {
	p.mu.Lock()
	p.ensureLocked()
	local := p.cache.Clone()
	attempt := p.state == SyncEnabled && (opts.Force || len(local) == 0)
	p.mu.Unlock()

	if !attempt {
		return local
	}

	fetched, err := p.fetchRemote(ctx)
	if err != nil {
		p.remoteFailed("fetch", err)
		return local
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for name, entry := range p.cache {
		fetched[name] = entry
	}
	p.cache = fetched
	p.commitLocked()
	return p.cache.Clone()
}

func (p *Palette) fetchRemote(ctx context.Context) (model.Palette, error) {
	userID, err := p.repo.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		p.log.Debug("No user signed in, skipping remote category settings")
		return model.Palette{}, nil
	}

	settings, err := p.repo.store.ListCategorySettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := model.Palette{}
	for _, s := range settings {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		entry := model.PaletteEntry{Color: s.Color, Visible: true}
		if s.Visible != nil {
			entry.Visible = *s.Visible
		}
		out[name] = entry
	}
	return category.NormalizePalette(out), nil
}

// SetCategoryColor sets or, with an empty colour, clears the colour of a
// category. It succeeds once the local commit is done; remote sync failures
// are only logged.
func (p *Palette) SetCategoryColor(ctx context.Context, name, color string) error {
	userID, err := p.repo.requireUser(ctx)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(color))
	if normalized != "" {
		var ok bool
		if normalized, ok = category.NormalizeColor(normalized); !ok {
			return model.NewValidationError("color", "invalid colour format, expected #rrggbb")
		}
	}

	p.mu.Lock()
	p.ensureLocked()
	entry, ok := p.cache[name]
	if !ok {
		entry = model.PaletteEntry{Visible: true}
	}
	entry.Color = normalized
	p.cache[name] = entry
	p.commitLocked()
	stored, kept := p.cache[name]
	enabled := p.state == SyncEnabled
	p.mu.Unlock()

	if !enabled {
		return nil
	}

	setting := model.CategorySetting{UserID: userID, Name: name, Color: normalized}
	if kept {
		setting.Visible = model.Bool(stored.Visible)
	}
	switch {
	case normalized != "":
		err = p.repo.store.PutCategorySetting(ctx, userID, setting)
	case kept && !stored.Visible:
		setting.ClearColor = true
		err = p.repo.store.PutCategorySetting(ctx, userID, setting)
	default:
		err = p.repo.store.DeleteCategorySetting(ctx, userID, name)
	}
	if err != nil {
		p.remoteFailed("set color", err)
	}
	return nil
}

// SetCategoryVisibility shows or hides a category. Like SetCategoryColor it
// succeeds once the local commit is done.
func (p *Palette) SetCategoryVisibility(ctx context.Context, name string, visible bool) error {
	userID, err := p.repo.requireUser(ctx)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	p.mu.Lock()
	p.ensureLocked()
	entry := p.cache[name]
	entry.Visible = visible
	p.cache[name] = entry
	p.commitLocked()
	color := p.cache[name].Color
	enabled := p.state == SyncEnabled
	p.mu.Unlock()

	if !enabled {
		return nil
	}

	if visible && color == "" {
		err = p.repo.store.DeleteCategorySetting(ctx, userID, name)
	} else {
		err = p.repo.store.PutCategorySetting(ctx, userID, model.CategorySetting{
			UserID:  userID,
			Name:    name,
			Color:   color,
			Visible: model.Bool(visible),
		})
	}
	if err != nil {
		p.remoteFailed("set visibility", err)
	}
	return nil
}

// remove drops a category's entry, remotely when possible and then locally
func (p *Palette) remove(ctx context.Context, userID, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	if p.Sync() == SyncEnabled {
		if err := p.repo.store.DeleteCategorySetting(ctx, userID, name); err != nil {
			p.remoteFailed("remove", err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.ensureLocked()
	if _, ok := p.cache[name]; ok {
		delete(p.cache, name)
		p.commitLocked()
	}
}
