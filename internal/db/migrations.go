package db

import "fmt"

// migrate runs all database migrations
func (m *Mirror) migrate() error {
	migrations := []string{
		migrationCreateMirror,
	}

	for i, stmt := range migrations {
		if _, err := m.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const migrationCreateMirror = `
CREATE TABLE IF NOT EXISTS mirror (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`
