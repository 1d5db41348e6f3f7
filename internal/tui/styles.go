package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/notebook"
)

// Color palette based on TUI design
var (
	// State colors
	Pinned      = lipgloss.Color("#FFE66D") // Yellow
	SyncOK      = lipgloss.Color("#95E1A3") // Green
	SyncOff     = lipgloss.Color("#FFB347") // Orange
	ErrorColor  = lipgloss.Color("#FF6B6B") // Red
	HiddenColor = lipgloss.Color("#6C757D") // Gray

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	// Sidebar
	SidebarStyle = lipgloss.NewStyle().
			Width(24).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	// Idea list
	IdeaListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	SidebarItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	SidebarItemSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(Surface).
					Bold(true)

	IdeaItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	IdeaItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	IdeaMutedStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1)

	PinnedStyle = lipgloss.NewStyle().Foreground(Pinned).Bold(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// CategoryBadge renders a category in its palette colour
func CategoryBadge(name string, palette model.Palette) string {
	d := category.Appearance(name, palette)
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(d.Color)).
		Foreground(lipgloss.Color(d.TextColor)).
		Padding(0, 1)
	if !d.Visible {
		style = style.Faint(true)
	}
	return style.Render(name)
}

// SyncBadge renders the palette sync state
func SyncBadge(state notebook.SyncState) string {
	if state == notebook.SyncDisabled {
		return lipgloss.NewStyle().Foreground(SyncOff).Render("palette: local only")
	}
	return lipgloss.NewStyle().Foreground(SyncOK).Render("palette: synced")
}
