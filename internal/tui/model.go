package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/notebook"
)

// Pane represents which pane is focused
type Pane int

const (
	PaneSidebar Pane = iota
	PaneIdeaList
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddIdea
	ModeEditIdea
	ModeTagIdea
	ModeColor
	ModeRename
	ModeFilter
	ModeHelp
)

var views = []model.View{model.ViewActive, model.ViewPinned, model.ViewHidden, model.ViewArchived}

// Model is the main TUI model
type Model struct {
	repo  *notebook.Repository
	usage *category.UsageTracker
	log   *logger.Logger

	ideas      []model.Idea // Newest first, as delivered by the subscription
	palette    model.Palette
	categories []string // Sidebar filters, most recently used first

	// UI state
	width     int
	height    int
	pane      Pane
	mode      Mode
	viewIdx   int
	catCursor int // 0 is "All"
	cursor    int

	// Input
	input textinput.Model

	filterText string
	message    string
}

// NewModel creates a new TUI model over repo
func NewModel(repo *notebook.Repository, usage *category.UsageTracker) Model {
	log := logger.Named("tui")
	log.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Capture an idea..."
	ti.CharLimit = 512
	ti.Width = 50

	m := Model{
		repo:  repo,
		usage: usage,
		log:   log,
		pane:  PaneIdeaList,
		mode:  ModeNormal,
		input: ti,
	}
	m.loadData(notebook.GetOptions{})
	return m
}

// loadData reads ideas and palette through the repository
func (m *Model) loadData(opts notebook.GetOptions) {
	ctx := context.Background()
	ideas, err := m.repo.GetIdeas(ctx, opts)
	if err != nil {
		m.message = "Error: " + err.Error()
		return
	}
	m.setIdeas(newestFirst(ideas))
	m.palette = m.repo.Palette().GetCategoryPalette(ctx, opts)
}

// setIdeas replaces the idea list and recomputes the category filters
func (m *Model) setIdeas(ideas []model.Idea) {
	m.ideas = ideas

	var names []string
	for _, idea := range ideas {
		names = append(names, idea.Categories...)
	}
	names = category.Normalize(names)
	if m.usage != nil {
		names = m.usage.ByRecentUsage(names)
	}
	m.categories = names

	if m.catCursor > len(m.categories) {
		m.catCursor = 0
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) currentView() model.View {
	return views[m.viewIdx]
}

// currentCategory returns the selected sidebar category, "" for all
func (m Model) currentCategory() string {
	if m.catCursor == 0 || m.catCursor > len(m.categories) {
		return ""
	}
	return m.categories[m.catCursor-1]
}

// visible returns the ideas shown in the list
func (m Model) visible() []model.Idea {
	return filterIdeas(m.ideas, m.currentView(), m.currentCategory(), m.filterText, m.palette)
}

func (m Model) currentIdea() *model.Idea {
	list := m.visible()
	if m.cursor < len(list) {
		return &list[m.cursor]
	}
	return nil
}

// filterIdeas narrows ideas to a view, an optional category and a search text.
// Without a category filter, the active view leaves out ideas filed under any
// hidden category.
func filterIdeas(ideas []model.Idea, view model.View, cat, text string, palette model.Palette) []model.Idea {
	text = strings.ToLower(strings.TrimSpace(text))
	var out []model.Idea
	for _, idea := range model.FilterView(ideas, view) {
		if cat != "" && !category.Contains(idea.Categories, cat) {
			continue
		}
		if cat == "" && view == model.ViewActive && anyHidden(idea.Categories, palette) {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(idea.Text), text) {
			continue
		}
		out = append(out, idea)
	}
	return out
}

func anyHidden(categories []string, palette model.Palette) bool {
	for _, c := range categories {
		if !category.Appearance(c, palette).Visible {
			return true
		}
	}
	return false
}

func newestFirst(ideas []model.Idea) []model.Idea {
	out := make([]model.Idea, len(ideas))
	for i, idea := range ideas {
		out[len(ideas)-1-i] = idea
	}
	return out
}
