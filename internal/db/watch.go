package db

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/existflow/ideabox/internal/logger"
	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 150 * time.Millisecond

// Watch calls onChange after another process writes to the mirror file.
// Writes made through m itself are ignored. Watching stops when ctx is done.
func (m *Mirror) Watch(ctx context.Context, onChange func()) error {
	if m.path == "" {
		return ErrNoFile
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// SQLite may replace sidecar files, so watch the directory rather than the file
	if err := w.Add(filepath.Dir(m.path)); err != nil {
		_ = w.Close()
		return err
	}

	go m.watchLoop(ctx, w, onChange)
	return nil
}

func (m *Mirror) watchLoop(ctx context.Context, w *fsnotify.Watcher, onChange func()) {
	defer func() {
		_ = w.Close()
	}()

	base := filepath.Base(m.path)
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			m.log.Warn("Mirror watch error", logger.F("error", err))

		case <-timer.C:
			if m.lastWriter() == m.instance {
				continue
			}
			m.log.Debug("Mirror changed by another process")
			onChange()
		}
	}
}
