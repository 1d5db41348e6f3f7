package remote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/ideabox/internal/model"
)

func seed(t *testing.T, m *Memory, userID string, ideas ...model.Idea) {
	t.Helper()
	for _, idea := range ideas {
		require.NoError(t, m.PutIdea(context.Background(), userID, idea))
	}
}

func TestMemory_IsolatesUsers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seed(t, m, "alice", model.Idea{ID: "a1", Text: "alice idea"})
	seed(t, m, "bob", model.Idea{ID: "b1", Text: "bob idea"})

	ideas, err := m.ListIdeas(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "a1", ideas[0].ID)
}

func TestMemory_RequiresUser(t *testing.T) {
	_, err := NewMemory().ListIdeas(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrAuthRequired)
}

func TestMemory_UpdateMissingIsNotFound(t *testing.T) {
	m := NewMemory()
	err := m.UpdateIdea(context.Background(), "alice", "nope", model.IdeaPatch{Pinned: model.Bool(true)})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemory_CommitBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seed(t, m, "alice", model.Idea{ID: "a1"}, model.Idea{ID: "a2"})

	err := m.CommitBatch(ctx, "alice", []model.IdeaUpdate{
		{ID: "a1", Patch: model.IdeaPatch{Pinned: model.Bool(true)}},
		{ID: "missing", Patch: model.IdeaPatch{Pinned: model.Bool(true)}},
	})
	require.ErrorIs(t, err, model.ErrNotFound)

	ideas, err := m.ListIdeas(ctx, "alice")
	require.NoError(t, err)
	for _, idea := range ideas {
		assert.False(t, idea.Pinned, "no update may land when one target is missing")
	}
}

func TestMemory_FaultHook(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("boom")
	m.SetFault(func(op Op, _ string) error {
		if op == OpPutIdea {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, m.PutIdea(ctx, "alice", model.Idea{ID: "a1"}), boom)
	ideas, err := m.ListIdeas(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, ideas)
	assert.Equal(t, 0, m.Commits())
}

func TestMemory_PutCategorySettingMerges(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.PutCategorySetting(ctx, "alice", model.CategorySetting{Name: "Work", Color: "#ff0000"}))
	require.NoError(t, m.PutCategorySetting(ctx, "alice", model.CategorySetting{Name: "work", Visible: model.Bool(false)}))

	got, ok, err := m.GetCategorySetting(ctx, "alice", " WORK ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "#ff0000", got.Color)
	require.NotNil(t, got.Visible)
	assert.False(t, *got.Visible)

	require.NoError(t, m.PutCategorySetting(ctx, "alice", model.CategorySetting{Name: "Work", ClearColor: true}))
	got, _, err = m.GetCategorySetting(ctx, "alice", "work")
	require.NoError(t, err)
	assert.Empty(t, got.Color)
	assert.False(t, got.ClearColor)

	require.NoError(t, m.DeleteCategorySetting(ctx, "alice", "Work"))
	_, ok, err = m.GetCategorySetting(ctx, "alice", "Work")
	require.NoError(t, err)
	assert.False(t, ok)
}

type snapshotRecorder struct {
	mu    sync.Mutex
	snaps [][]model.Idea
	errs  []error
}

func (r *snapshotRecorder) onSnapshot(ideas []model.Idea) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, ideas)
}

func (r *snapshotRecorder) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *snapshotRecorder) last() []model.Idea {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return nil
	}
	return r.snaps[len(r.snaps)-1]
}

func (r *snapshotRecorder) errCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func TestMemory_WatchDeliversLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seed(t, m, "alice", model.Idea{ID: "a1"})

	rec := &snapshotRecorder{}
	stop, err := m.WatchIdeas(ctx, "alice", rec.onSnapshot, rec.onError)
	require.NoError(t, err)
	defer stop()

	require.Eventually(t, func() bool { return len(rec.last()) == 1 }, time.Second, 5*time.Millisecond)

	seed(t, m, "alice", model.Idea{ID: "a2"}, model.Idea{ID: "a3"})
	require.Eventually(t, func() bool { return len(rec.last()) == 3 }, time.Second, 5*time.Millisecond)
}

func TestMemory_StopIsIdempotent(t *testing.T) {
	m := NewMemory()
	rec := &snapshotRecorder{}
	stop, err := m.WatchIdeas(context.Background(), "alice", rec.onSnapshot, rec.onError)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Watchers("alice"))

	stop()
	stop()
	assert.Equal(t, 0, m.Watchers("alice"))
}

func TestMemory_BreakWatchersReportsError(t *testing.T) {
	m := NewMemory()
	rec := &snapshotRecorder{}
	_, err := m.WatchIdeas(context.Background(), "alice", rec.onSnapshot, rec.onError)
	require.NoError(t, err)

	m.BreakWatchers("alice", model.ErrRemoteUnavailable)

	require.Eventually(t, func() bool { return rec.errCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, m.Watchers("alice"))
}
