package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/notebook"
)

// ideasMsg carries a subscription delivery, newest first
type ideasMsg []model.Idea

// mirrorChangedMsg is sent when another process wrote the shared mirror
type mirrorChangedMsg struct{}

// resultMsg reports the outcome of a repository call
type resultMsg struct {
	message string
	err     error
}

// categoryDeletedMsg is sent when the last idea of a category went away
type categoryDeletedMsg model.CategoryDeleted

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ideasMsg:
		m.setIdeas([]model.Idea(msg))
		return m, nil

	case mirrorChangedMsg:
		m.loadData(notebook.GetOptions{Force: true})
		m.message = "Updated from another window"
		return m, nil

	case resultMsg:
		if msg.err != nil {
			m.log.Warn("Action failed", logger.F("error", msg.err))
			m.message = "Error: " + msg.err.Error()
		} else {
			m.message = msg.message
		}
		m.loadData(notebook.GetOptions{})
		return m, nil

	case categoryDeletedMsg:
		m.message = fmt.Sprintf("Category %q is no longer used", msg.Category)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddIdea, ModeEditIdea, ModeTagIdea, ModeColor, ModeRename:
			return m.updateInput(msg)
		case ModeFilter:
			return m.updateFilter(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idea := m.currentIdea()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.pane == PaneSidebar {
			m.pane = PaneIdeaList
		} else {
			m.pane = PaneSidebar
		}

	case key.Matches(msg, keys.Left):
		m.pane = PaneSidebar

	case key.Matches(msg, keys.Right):
		m.pane = PaneIdeaList

	case key.Matches(msg, keys.Up):
		m.handleUp()

	case key.Matches(msg, keys.Down):
		m.handleDown()

	case key.Matches(msg, keys.NextView):
		m.viewIdx = (m.viewIdx + 1) % len(views)
		m.cursor = 0

	case msg.String() == "1", msg.String() == "2", msg.String() == "3", msg.String() == "4":
		m.viewIdx = int(msg.String()[0] - '1')
		m.cursor = 0

	case key.Matches(msg, keys.Add):
		return m.startInput(ModeAddIdea, "", "Capture an idea...")

	case key.Matches(msg, keys.Edit):
		if idea != nil {
			return m.startInput(ModeEditIdea, idea.Text, "")
		}

	case key.Matches(msg, keys.Tag):
		if idea != nil {
			return m.startInput(ModeTagIdea, strings.Join(idea.Categories, ", "), "Work, Home")
		}

	case key.Matches(msg, keys.Pin):
		if idea != nil {
			return m, m.setPinned(idea.ID, !idea.Pinned)
		}

	case key.Matches(msg, keys.Archive):
		if idea != nil {
			return m, m.setArchived(idea.ID, !idea.Archived)
		}

	case key.Matches(msg, keys.Hide):
		if idea != nil {
			return m, m.setHidden(idea.ID, !idea.Hidden)
		}

	case key.Matches(msg, keys.Delete):
		if idea != nil {
			return m, m.deleteIdea(idea.ID)
		}

	case key.Matches(msg, keys.Color):
		if cat := m.currentCategory(); cat != "" {
			return m.startInput(ModeColor, m.palette[cat].Color, "#rrggbb (empty clears)")
		}
		m.message = "Select a category in the sidebar first"

	case key.Matches(msg, keys.Visible):
		if cat := m.currentCategory(); cat != "" {
			visible := category.Appearance(cat, m.palette).Visible
			return m, m.setVisibility(cat, !visible)
		}
		m.message = "Select a category in the sidebar first"

	case key.Matches(msg, keys.Rename):
		if cat := m.currentCategory(); cat != "" {
			return m.startInput(ModeRename, cat, "New name")
		}
		m.message = "Select a category in the sidebar first"

	case key.Matches(msg, keys.Filter):
		return m.startInput(ModeFilter, m.filterText, "search text")

	case key.Matches(msg, keys.Escape):
		if m.filterText != "" {
			m.filterText = ""
			m.message = "Filter cleared"
		}

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Refresh):
		m.loadData(notebook.GetOptions{Force: true})
		if m.message == "" || !strings.HasPrefix(m.message, "Error") {
			m.message = "Refreshed"
		}
	}

	m.clampCursor()
	return m, nil
}

func (m *Model) handleUp() {
	if m.pane == PaneSidebar {
		if m.catCursor > 0 {
			m.catCursor--
			m.cursor = 0
		}
		return
	}
	if m.cursor > 0 {
		m.cursor--
	}
}

func (m *Model) handleDown() {
	if m.pane == PaneSidebar {
		if m.catCursor < len(m.categories) {
			m.catCursor++
			m.cursor = 0
		}
		return
	}
	if m.cursor < len(m.visible())-1 {
		m.cursor++
	}
}

func (m Model) startInput(mode Mode, value, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = ModeNormal
		m.input.Blur()
		return m, m.submit(mode, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.filterText = ""
		m.input.Blur()
		m.clampCursor()
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filterText = m.input.Value()
	m.cursor = 0
	return m, cmd
}

// submit turns a confirmed input into a repository call
func (m Model) submit(mode Mode, value string) tea.Cmd {
	idea := m.currentIdea()
	cat := m.currentCategory()

	switch mode {
	case ModeAddIdea:
		if value == "" {
			return nil
		}
		var categories []string
		if cat != "" {
			categories = []string{cat}
		}
		return m.addIdea(value, categories)
	case ModeEditIdea:
		if idea != nil && value != "" {
			return m.run("Updated", func(ctx context.Context) error {
				return m.repo.UpdateIdeaText(ctx, idea.ID, value)
			})
		}
	case ModeTagIdea:
		if idea != nil {
			categories := parseCategories(value)
			return m.run("Categories updated", func(ctx context.Context) error {
				if err := m.repo.SetIdeaCategories(ctx, idea.ID, categories); err != nil {
					return err
				}
				m.track(categories)
				return nil
			})
		}
	case ModeColor:
		if cat != "" {
			return m.run("Colour updated", func(ctx context.Context) error {
				return m.repo.Palette().SetCategoryColor(ctx, cat, value)
			})
		}
	case ModeRename:
		if cat != "" && value != "" {
			repo := m.repo
			return func() tea.Msg {
				result, err := repo.Palette().RenameCategory(context.Background(), cat, value)
				if err != nil {
					return resultMsg{err: err}
				}
				return resultMsg{message: fmt.Sprintf("Renamed %q to %q in %d idea(s)", cat, value, result.UpdatedIdeas)}
			}
		}
	}
	return nil
}

// run executes fn off the update loop and reports its outcome
func (m Model) run(done string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{message: done}
	}
}

func (m Model) track(categories []string) {
	if m.usage == nil {
		return
	}
	for _, c := range categories {
		m.usage.Track(c)
	}
}

func (m Model) addIdea(text string, categories []string) tea.Cmd {
	idea := model.NewIdea(uuid.New().String(), text, categories)
	return m.run("Added: "+truncate(text, 30), func(ctx context.Context) error {
		if err := m.repo.SaveIdea(ctx, idea); err != nil {
			return err
		}
		m.track(idea.Categories)
		return nil
	})
}

func (m Model) setPinned(id string, pinned bool) tea.Cmd {
	label := "Unpinned"
	if pinned {
		label = "Pinned"
	}
	return m.run(label, func(ctx context.Context) error {
		return m.repo.SetIdeaPinned(ctx, id, pinned)
	})
}

func (m Model) setArchived(id string, archived bool) tea.Cmd {
	label := "Restored"
	if archived {
		label = "Archived"
	}
	return m.run(label, func(ctx context.Context) error {
		return m.repo.SetIdeaArchived(ctx, id, archived)
	})
}

func (m Model) setHidden(id string, hidden bool) tea.Cmd {
	label := "Unhidden"
	if hidden {
		label = "Hidden"
	}
	return m.run(label, func(ctx context.Context) error {
		return m.repo.SetIdeaHidden(ctx, id, hidden)
	})
}

func (m Model) deleteIdea(id string) tea.Cmd {
	return m.run("Deleted", func(ctx context.Context) error {
		return m.repo.DeleteIdea(ctx, id)
	})
}

func (m Model) setVisibility(name string, visible bool) tea.Cmd {
	label := fmt.Sprintf("%q hidden", name)
	if visible {
		label = fmt.Sprintf("%q visible", name)
	}
	return m.run(label, func(ctx context.Context) error {
		return m.repo.Palette().SetCategoryVisibility(ctx, name, visible)
	})
}

func parseCategories(value string) []string {
	return category.Normalize(strings.Split(value, ","))
}
