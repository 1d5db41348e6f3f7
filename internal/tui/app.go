// Package tui is the interactive terminal browser over a notebook.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/db"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/notebook"
)

// Run shows the browser until the user quits. Live idea snapshots and
// writes by other processes to the shared mirror are fed into the program.
func Run(ctx context.Context, repo *notebook.Repository, mirror *db.Mirror, usage *category.UsageTracker) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(repo, usage), tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := repo.SubscribeToIdeas(ctx, func(ideas []model.Idea) {
		p.Send(ideasMsg(ideas))
	})
	defer unsubscribe()

	cancelEvents := repo.OnCategoryDeleted(func(e model.CategoryDeleted) {
		p.Send(categoryDeletedMsg(e))
	})
	defer cancelEvents()

	if mirror != nil {
		err := mirror.Watch(ctx, func() { p.Send(mirrorChangedMsg{}) })
		if err != nil && !errors.Is(err, db.ErrNoFile) {
			logger.Warn("Mirror watch unavailable", logger.F("error", err))
		}
	}

	logger.Info("Launching TUI")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("TUI error", logger.F("error", err))
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	logger.Info("TUI exited normally")
	return nil
}
