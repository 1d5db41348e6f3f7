package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/ideabox/internal/model"
)

const sidebarWidth = 26

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sidebar := m.renderSidebar()
	ideaList := m.renderIdeaList()
	statusBar := m.renderStatusBar()

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, ideaList)

	switch m.mode {
	case ModeAddIdea, ModeEditIdea, ModeTagIdea, ModeColor, ModeRename:
		mainContent = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	case ModeHelp:
		mainContent = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar)
}

func (m Model) renderSidebar() string {
	var s strings.Builder

	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("ideabox") + "\n")
	s.WriteString(HelpStyle.Render(time.Now().Format("Mon Jan 2")) + "\n")
	s.WriteString(lipgloss.NewStyle().Foreground(Border).Render(repeat("─", sidebarWidth-4)) + "\n\n")

	for i, v := range views {
		n := len(filterIdeas(m.ideas, v, m.currentCategory(), "", m.palette))
		marker := "  "
		if i == m.viewIdx {
			marker = "● "
		}
		s.WriteString(fmt.Sprintf("%s%d %-10s %3d\n", marker, i+1, v, n))
	}
	s.WriteString("\n")

	names := append([]string{"All"}, m.categories...)
	for i, name := range names {
		cursor := "  "
		style := SidebarItemStyle
		if i == m.catCursor {
			cursor = "❯ "
			if m.pane == PaneSidebar {
				style = SidebarItemSelectedStyle
			}
		}
		label := truncate(name, sidebarWidth-8)
		if i > 0 {
			label = CategoryBadge(label, m.palette)
		}
		s.WriteString(style.Render(cursor+label) + "\n")
	}

	return SidebarStyle.Width(sidebarWidth).Height(m.height - 2).Render(s.String())
}

func (m Model) renderIdeaList() string {
	width := m.width - sidebarWidth - 2
	var s strings.Builder

	header := m.currentView().String()
	if cat := m.currentCategory(); cat != "" {
		header += " · " + cat
	}
	list := m.visible()
	header = fmt.Sprintf("%s (%d)", header, len(list))
	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(header) + "\n")
	s.WriteString(lipgloss.NewStyle().Foreground(Border).Render(repeat("─", width-4)) + "\n\n")

	if len(list) == 0 {
		s.WriteString(HelpStyle.Render("  Nothing here. Press 'a' to capture an idea."))
	}

	for i, idea := range list {
		s.WriteString(m.renderIdea(idea, i == m.cursor && m.pane == PaneIdeaList, width) + "\n")
	}

	return IdeaListStyle.Width(width).Height(m.height - 2).Render(s.String())
}

func (m Model) renderIdea(idea model.Idea, selected bool, width int) string {
	cursor := "  "
	style := IdeaItemStyle
	if selected {
		cursor = "❯ "
		style = IdeaItemSelectedStyle
	}
	if idea.Archived || idea.Hidden {
		style = IdeaMutedStyle
	}

	icon := "  "
	if idea.Pinned {
		icon = PinnedStyle.Render("★ ")
	}

	var badges []string
	for _, c := range idea.Categories {
		badges = append(badges, CategoryBadge(c, m.palette))
	}
	badgeText := strings.Join(badges, " ")

	textWidth := width - 16 - lipgloss.Width(badgeText)
	if textWidth < 10 {
		textWidth = 10
	}
	created := ""
	if idea.CreatedAt > 0 {
		created = time.UnixMilli(idea.CreatedAt).Format("Jan 2")
	}

	line := fmt.Sprintf("%s%s%-*s %6s ", cursor, icon, textWidth, truncate(idea.Text, textWidth), created)
	return style.Render(line) + badgeText
}

func (m Model) renderStatusBar() string {
	if m.mode == ModeFilter {
		return StatusBarStyle.Width(m.width).Render("/" + m.input.View())
	}

	help := "a:add  e:edit  t:tag  p:pin  x:archive  H:hide  d:del  v:view  /:search  ?:help  q:quit"
	switch {
	case m.message != "":
		help = m.message
	case m.filterText != "":
		help = fmt.Sprintf("/%s  Esc:clear", m.filterText)
	}

	badge := SyncBadge(m.repo.Palette().Sync())
	avail := m.width - lipgloss.Width(help) - lipgloss.Width(badge) - 4
	if avail > 0 {
		help += strings.Repeat(" ", avail) + badge
	} else {
		help += " " + badge
	}

	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderModal() string {
	title := "New Idea"
	switch m.mode {
	case ModeAddIdea:
		if cat := m.currentCategory(); cat != "" {
			title = "New Idea in: " + cat
		}
	case ModeEditIdea:
		title = "Edit Idea"
	case ModeTagIdea:
		title = "Categories (comma separated)"
	case ModeColor:
		title = "Colour of: " + m.currentCategory()
	case ModeRename:
		title = "Rename: " + m.currentCategory()
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += m.input.View() + "\n\n"
	content += HelpStyle.Render("Enter:save  Esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ─────────╮
│                                │
│  Navigation                    │
│  ──────────                    │
│  j/↓ k/↑   Move                │
│  h/l Tab   Switch pane         │
│  v  1-4    Switch view         │
│  /         Search text         │
│                                │
│  Ideas                         │
│  ─────                         │
│  a         Add idea            │
│  e         Edit text           │
│  t         Set categories      │
│  p         Toggle pin          │
│  x         Toggle archive      │
│  H         Toggle hidden       │
│  d         Delete              │
│                                │
│  Categories (sidebar)          │
│  ──────────                    │
│  c         Set colour          │
│  s         Show / hide         │
│  R         Rename              │
│                                │
│  r  refresh   ?  help   q quit │
╰────────────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}
