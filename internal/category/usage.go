package category

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/existflow/ideabox/internal/model"
)

type usageStore interface {
	ReadUsage() model.UsageMap
	WriteUsage(usage model.UsageMap)
}

// UsageTracker records when categories were last used, for most-recently-used
// ordering. The data is advisory and purely local.
type UsageTracker struct {
	store usageStore
	now   func() time.Time
	mu    sync.Mutex
}

// NewUsageTracker creates a tracker persisting into store
func NewUsageTracker(store usageStore) *UsageTracker {
	return &UsageTracker{store: store, now: time.Now}
}

// SetClock replaces the time source
func (t *UsageTracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// Track stamps the current time against name. Blank names are ignored.
func (t *UsageTracker) Track(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	usage := t.store.ReadUsage()
	if usage == nil {
		usage = model.UsageMap{}
	}
	usage[name] = t.now().UnixMilli()
	t.store.WriteUsage(usage)
}

// ByRecentUsage returns names ordered most recently used first. Unseen names
// sort last and ties keep their input order.
func (t *UsageTracker) ByRecentUsage(names []string) []string {
	usage := t.store.ReadUsage()
	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool {
		return usage[strings.TrimSpace(out[i])] > usage[strings.TrimSpace(out[j])]
	})
	return out
}
