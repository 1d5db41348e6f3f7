package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/db"
	"github.com/existflow/ideabox/internal/identity"
	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/notebook"
	"github.com/existflow/ideabox/internal/remote"
)

const testUser = "alice"

func newTestModel(t *testing.T, ideas ...model.Idea) (Model, *remote.Memory) {
	t.Helper()
	mirror, err := db.Memory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { mirror.Close() })

	store := remote.NewMemory()
	for _, idea := range ideas {
		require.NoError(t, store.PutIdea(context.Background(), testUser, idea))
	}
	repo := notebook.New(store, identity.NewStatic(testUser), mirror)
	m := NewModel(repo, category.NewUsageTracker(mirror))
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, store
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// press sends a key and runs the command it returns, feeding its message back
func press(t *testing.T, m Model, keys string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out, ok := cmd().(resultMsg); ok {
			m = update(t, m, out)
		}
	}
	return m
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func ideaIDs(ideas []model.Idea) []string {
	out := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		out = append(out, idea.ID)
	}
	return out
}

func TestFilterIdeas(t *testing.T) {
	ideas := []model.Idea{
		{ID: "a", Text: "Buy milk", Categories: []string{"Errands"}},
		{ID: "b", Text: "Draft talk", Categories: []string{"Work"}},
		{ID: "c", Text: "Secret", Categories: []string{"Someday"}},
		{ID: "d", Text: "Loose thought"},
		{ID: "e", Text: "Old", Categories: []string{"Someday"}, Archived: true},
		{ID: "f", Text: "Mixed", Categories: []string{"Work", "Someday"}},
	}
	palette := model.Palette{"Someday": {Visible: false}}

	assert.Equal(t, []string{"a", "b", "d"}, ideaIDs(filterIdeas(ideas, model.ViewActive, "", "", palette)),
		"ideas filed under any hidden category are left out")
	assert.Equal(t, []string{"c", "f"}, ideaIDs(filterIdeas(ideas, model.ViewActive, "someday", "", palette)),
		"selecting the hidden category shows them")
	assert.Equal(t, []string{"b", "f"}, ideaIDs(filterIdeas(ideas, model.ViewActive, "work", "", palette)))
	assert.Equal(t, []string{"b"}, ideaIDs(filterIdeas(ideas, model.ViewActive, "", "TALK", palette)))
	assert.Equal(t, []string{"e"}, ideaIDs(filterIdeas(ideas, model.ViewArchived, "", "", palette)))
}

func TestNewModel_LoadsNewestFirst(t *testing.T) {
	m, _ := newTestModel(t,
		model.Idea{ID: "old", Text: "old", Categories: []string{"Work"}, CreatedAt: 1},
		model.Idea{ID: "new", Text: "new", Categories: []string{"Home"}, CreatedAt: 2},
	)

	assert.Equal(t, []string{"new", "old"}, ideaIDs(m.visible()))
	assert.ElementsMatch(t, []string{"Work", "Home"}, m.categories)
}

func TestUpdate_SubscriptionReplacesIdeas(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, ideasMsg{{ID: "x", Text: "pushed", Categories: []string{"Inbox"}}})

	assert.Equal(t, []string{"x"}, ideaIDs(m.visible()))
	assert.Equal(t, []string{"Inbox"}, m.categories)
}

func TestKeys_NavigateViewsAndCategories(t *testing.T) {
	m, _ := newTestModel(t,
		model.Idea{ID: "a", Text: "a", Categories: []string{"Work"}, CreatedAt: 1},
		model.Idea{ID: "b", Text: "b", Categories: []string{"Home"}, CreatedAt: 2, Pinned: true},
		model.Idea{ID: "c", Text: "c", CreatedAt: 3, Archived: true},
	)

	assert.Equal(t, []string{"a"}, ideaIDs(m.visible()), "the pinned idea has its own view")

	m = press(t, m, "2")
	assert.Equal(t, model.ViewPinned, m.currentView())
	assert.Equal(t, []string{"b"}, ideaIDs(m.visible()))

	m = press(t, m, "v")
	m = press(t, m, "v")
	assert.Equal(t, model.ViewArchived, m.currentView())

	m = press(t, m, "1")
	m = press(t, m, "tab")
	require.Equal(t, PaneSidebar, m.pane)
	m = press(t, m, "j")
	assert.NotEmpty(t, m.currentCategory())
}

func TestKeys_AddIdea(t *testing.T) {
	m, store := newTestModel(t)

	m = press(t, m, "a")
	require.Equal(t, ModeAddIdea, m.mode)
	m = typeText(t, m, "Write the newsletter")
	m = press(t, m, "enter")

	assert.Equal(t, ModeNormal, m.mode)
	require.Len(t, m.visible(), 1)
	assert.Equal(t, "Write the newsletter", m.visible()[0].Text)

	stored, err := store.ListIdeas(context.Background(), testUser)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestKeys_PinAndArchive(t *testing.T) {
	m, store := newTestModel(t,
		model.Idea{ID: "a", Text: "a", CreatedAt: 1},
		model.Idea{ID: "b", Text: "b", CreatedAt: 2},
	)

	m = press(t, m, "p")
	stored, err := store.ListIdeas(context.Background(), testUser)
	require.NoError(t, err)
	for _, idea := range stored {
		assert.Equal(t, idea.ID == "b", idea.Pinned)
	}
	assert.Equal(t, []string{"a"}, ideaIDs(m.visible()))

	m = press(t, m, "x")
	assert.Empty(t, m.visible())
	m = press(t, m, "4")
	assert.Equal(t, []string{"a"}, ideaIDs(m.visible()))
}

func TestKeys_FilterText(t *testing.T) {
	m, _ := newTestModel(t,
		model.Idea{ID: "a", Text: "Buy milk", CreatedAt: 1},
		model.Idea{ID: "b", Text: "Draft talk", CreatedAt: 2},
	)

	m = press(t, m, "/")
	m = typeText(t, m, "milk")
	assert.Equal(t, []string{"a"}, ideaIDs(m.visible()))

	m = press(t, m, "esc")
	assert.Len(t, m.visible(), 2)
}

func TestView_Renders(t *testing.T) {
	m, _ := newTestModel(t, model.Idea{ID: "a", Text: "Visible text", Categories: []string{"Work"}, CreatedAt: 1})

	out := m.View()
	assert.Contains(t, out, "Visible text")
	assert.Contains(t, out, "Work")
	assert.True(t, strings.Contains(out, "palette: synced"))

	m = press(t, m, "?")
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
}
