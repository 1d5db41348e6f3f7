package category

import (
	"testing"
	"time"

	"github.com/existflow/ideabox/internal/model"
	"github.com/stretchr/testify/assert"
)

type memUsage struct {
	usage  model.UsageMap
	writes int
}

func (m *memUsage) ReadUsage() model.UsageMap {
	out := model.UsageMap{}
	for k, v := range m.usage {
		out[k] = v
	}
	return out
}

func (m *memUsage) WriteUsage(u model.UsageMap) {
	m.writes++
	m.usage = u
}

func TestByRecentUsage(t *testing.T) {
	store := &memUsage{usage: model.UsageMap{"B": 100, "A": 50}}
	tracker := NewUsageTracker(store)

	assert.Equal(t, []string{"B", "A", "C"}, tracker.ByRecentUsage([]string{"A", "B", "C"}))
}

func TestByRecentUsage_StableForUnseen(t *testing.T) {
	tracker := NewUsageTracker(&memUsage{})

	assert.Equal(t, []string{"z", "y", "x"}, tracker.ByRecentUsage([]string{"z", "y", "x"}))
}

func TestTrack(t *testing.T) {
	store := &memUsage{}
	tracker := NewUsageTracker(store)
	tracker.SetClock(func() time.Time { return time.UnixMilli(1234) })

	tracker.Track(" Work ")
	tracker.Track("")

	assert.Equal(t, model.UsageMap{"Work": 1234}, store.usage)
	assert.Equal(t, 1, store.writes)

	tracker.SetClock(func() time.Time { return time.UnixMilli(2000) })
	tracker.Track("Home")
	assert.Equal(t, []string{"Home", "Work", "Other"}, tracker.ByRecentUsage([]string{"Work", "Other", "Home"}))
}
