// Package db is the local mirror: a SQLite key/value file holding the last
// known ideas, palette and category usage. It is a cache, not a source of
// truth, so reads never fail and write errors are only logged.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/existflow/ideabox/internal/logger"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Mirror keys
const (
	KeyIdeas          = "ideas_v1_cache"
	KeyPalette        = "category_settings_v1"
	KeyUsage          = "category_usage_v1"
	KeySortPreference = "category_sort_preference_v1"

	keyLastWriter = "last_writer"
)

// ErrNoFile is returned by Watch on an in-memory mirror
var ErrNoFile = errors.New("mirror has no backing file")

// Mirror wraps the SQLite database connection
type Mirror struct {
	db       *sql.DB
	path     string
	instance string // Identifies this process's writes to Watch
	log      *logger.Logger
}

// DefaultPath returns the default mirror path (~/.ideabox/mirror.db)
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".ideabox", "mirror.db"), nil
}

// Open opens or creates the mirror database at path
func Open(path string, log *logger.Logger) (*Mirror, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create mirror directory: %w", err)
	}
	return open(path, path, log)
}

// Memory opens a mirror that lives only as long as the process
func Memory(log *logger.Logger) (*Mirror, error) {
	return open(":memory:", "", log)
}

func open(dsn, path string, log *logger.Logger) (*Mirror, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror: %w", err)
	}
	// One connection: ":memory:" is per connection, and writes are serialized anyway
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to mirror: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	m := &Mirror{
		db:       sqlDB,
		path:     path,
		instance: uuid.NewString(),
		log:      log.Named("mirror"),
	}

	if err := m.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return m, nil
}

// Close closes the database
func (m *Mirror) Close() error {
	return m.db.Close()
}

// Path returns the backing file, empty for an in-memory mirror
func (m *Mirror) Path() string {
	return m.path
}

// get returns the raw value of key; ok is false when absent or unreadable
func (m *Mirror) get(key string) (string, bool) {
	var value string
	err := m.db.QueryRow(`SELECT value FROM mirror WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			m.log.Warn("Unable to read mirror key", logger.F("key", key), logger.F("error", err))
		}
		return "", false
	}
	return value, true
}

// set stores value under key and stamps this process as the last writer
func (m *Mirror) set(key, value string) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	const upsert = `
		INSERT INTO mirror (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := tx.Exec(upsert, key, value, now); err != nil {
		return err
	}
	if _, err := tx.Exec(upsert, keyLastWriter, m.instance, now); err != nil {
		return err
	}
	return tx.Commit()
}

// lastWriter returns the instance id of the most recent writer
func (m *Mirror) lastWriter() string {
	value, _ := m.get(keyLastWriter)
	return value
}
