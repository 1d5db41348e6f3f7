package db

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestMirror(t *testing.T) *Mirror {
	t.Helper()
	m, err := Open(filepath.Join(t.TempDir(), "mirror.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMirror_EmptyReads(t *testing.T) {
	m := openTestMirror(t)

	assert.Empty(t, m.ReadIdeas())
	assert.NotNil(t, m.ReadIdeas())
	assert.Empty(t, m.ReadPalette())
	assert.Empty(t, m.ReadUsage())
	assert.Equal(t, category.DefaultSort, m.ReadSortPreference())
}

func TestMirror_IdeasRoundTripNormalizes(t *testing.T) {
	m := openTestMirror(t)

	m.WriteIdeas([]model.Idea{
		{ID: "a", Text: "one", Categories: []string{" Work", "work", "Home"}, CreatedAt: 10, Pinned: true},
		{ID: "b", Text: "two", Category: "Legacy", CreatedAt: 20},
	})

	got := m.ReadIdeas()
	require.Len(t, got, 2)
	assert.Equal(t, []string{"Work", "Home"}, got[0].Categories)
	assert.Equal(t, "Work", got[0].Category)
	assert.True(t, got[0].Pinned)
	assert.Equal(t, []string{"Legacy"}, got[1].Categories)
}

func TestMirror_CorruptValuesReadAsEmpty(t *testing.T) {
	m := openTestMirror(t)

	require.NoError(t, m.set(KeyIdeas, "{not json"))
	require.NoError(t, m.set(KeyPalette, "[]"))
	require.NoError(t, m.set(KeyUsage, "42"))
	require.NoError(t, m.set(KeySortPreference, "sideways"))

	assert.Empty(t, m.ReadIdeas())
	assert.Empty(t, m.ReadPalette())
	assert.Empty(t, m.ReadUsage())
	assert.Equal(t, category.DefaultSort, m.ReadSortPreference())
}

func TestMirror_AssignsIDsToLegacyEntries(t *testing.T) {
	m := openTestMirror(t)
	require.NoError(t, m.set(KeyIdeas, `[{"text":"no id","createdAt":5}]`))

	got := m.ReadIdeas()
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, "no id", got[0].Text)
}

func TestMirror_PaletteHiddenWithoutColorRoundTrip(t *testing.T) {
	m := openTestMirror(t)

	m.WritePalette(model.Palette{
		"Errands": {Visible: false},
		"Empty":   {Visible: true},
		"Work":    {Color: "#ABCDEF", Visible: true},
	})

	raw, ok := m.get(KeyPalette)
	require.True(t, ok)
	assert.JSONEq(t, `{"Errands":{"visible":false},"Work":{"color":"#abcdef"}}`, raw)

	got := m.ReadPalette()
	assert.Equal(t, model.PaletteEntry{Visible: false}, got["Errands"])
	assert.NotContains(t, got, "Empty")
}

func TestMirror_UsageAndSortPreference(t *testing.T) {
	m := openTestMirror(t)

	m.WriteUsage(model.UsageMap{"Work": 100, "  ": 5})
	m.WriteSortPreference(category.SortNameAsc)
	m.WriteSortPreference("bogus")

	assert.Equal(t, model.UsageMap{"Work": 100}, m.ReadUsage())
	assert.Equal(t, category.SortNameAsc, m.ReadSortPreference())
	assert.Equal(t, []string{KeySortPreference, KeyUsage}, m.Keys())
}

func TestMirror_WriteAfterCloseIsSwallowed(t *testing.T) {
	m, err := Memory(nil)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	assert.NotPanics(t, func() {
		m.WriteIdeas([]model.Idea{{ID: "a"}})
		m.WritePalette(model.Palette{"A": {Visible: false}})
	})
	assert.Empty(t, m.ReadIdeas())
}

func TestMirror_SharedFileLastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	a, err := Open(path, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := Open(path, nil)
	require.NoError(t, err)
	defer b.Close()

	a.WriteIdeas([]model.Idea{{ID: "from-a", CreatedAt: 1}})
	b.WriteIdeas([]model.Idea{{ID: "from-b", CreatedAt: 1}})

	got := a.ReadIdeas()
	require.Len(t, got, 1)
	assert.Equal(t, "from-b", got[0].ID)
}

func TestMirror_WatchReportsOtherWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	a, err := Open(path, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := Open(path, nil)
	require.NoError(t, err)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	require.NoError(t, a.Watch(ctx, func() { changes.Add(1) }))

	a.WriteUsage(model.UsageMap{"own": 1})
	time.Sleep(3 * watchDebounce)
	assert.Equal(t, int32(0), changes.Load(), "own writes must not be reported")

	b.WriteUsage(model.UsageMap{"other": 2})
	assert.Eventually(t, func() bool { return changes.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestMirror_WatchNeedsFile(t *testing.T) {
	m, err := Memory(nil)
	require.NoError(t, err)
	defer m.Close()

	assert.ErrorIs(t, m.Watch(context.Background(), func() {}), ErrNoFile)
}
