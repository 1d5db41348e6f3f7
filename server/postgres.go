package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/existflow/ideabox/internal/model"
)

// Postgres implements Documents and Accounts over a PostgreSQL database
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to dbURL and runs migrations
func OpenPostgres(ctx context.Context, dbURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return p, nil
}

// Close closes the connection pool
func (p *Postgres) Close() error {
	return p.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CreateUser inserts a user, ErrConflict when the name or email is taken
func (p *Postgres) CreateUser(ctx context.Context, username, email, passwordHash string) (model.User, error) {
	user := model.User{Username: username, Email: email, PasswordHash: passwordHash}
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		username, email, passwordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrConflict
		}
		return model.User{}, err
	}
	return user, nil
}

// UserByUsername looks a user up by name
func (p *Postgres) UserByUsername(ctx context.Context, username string) (model.User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1`,
		username))
}

// UserByID looks a user up by id
func (p *Postgres) UserByID(ctx context.Context, id string) (model.User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`,
		id))
}

func (p *Postgres) scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, model.ErrNotFound
	}
	return u, err
}

// CreateSession stores a login session
func (p *Postgres) CreateSession(ctx context.Context, s model.Session) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`,
		s.UserID, s.Token, s.ExpiresAt, s.CreatedAt,
	)
	return err
}

// Session looks a session up by token
func (p *Postgres) Session(ctx context.Context, token string) (model.Session, error) {
	s := model.Session{Token: token}
	err := p.db.QueryRowContext(ctx, `
		SELECT user_id, expires_at, created_at FROM sessions WHERE token = $1`,
		token,
	).Scan(&s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, model.ErrNotFound
	}
	return s, err
}

// DeleteSession removes a session
func (p *Postgres) DeleteSession(ctx context.Context, token string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// ListIdeas returns every idea of userID
func (p *Postgres) ListIdeas(ctx context.Context, userID string) ([]model.Idea, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, text, category, categories, created_at, archived, hidden, pinned
		FROM ideas WHERE user_id = $1
		ORDER BY created_at, id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ideas []model.Idea
	for rows.Next() {
		var idea model.Idea
		var categories pq.StringArray
		if err := rows.Scan(&idea.ID, &idea.Text, &idea.Category, &categories,
			&idea.CreatedAt, &idea.Archived, &idea.Hidden, &idea.Pinned); err != nil {
			return nil, err
		}
		idea.Categories = []string(categories)
		if idea.Categories == nil {
			idea.Categories = []string{}
		}
		ideas = append(ideas, idea)
	}
	return ideas, rows.Err()
}

// PutIdea creates or replaces an idea
func (p *Postgres) PutIdea(ctx context.Context, userID string, idea model.Idea) error {
	if strings.TrimSpace(idea.ID) == "" {
		return model.NewValidationError("id", "required")
	}
	categories := idea.Categories
	if categories == nil {
		categories = []string{}
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO ideas (user_id, id, text, category, categories, created_at, archived, hidden, pinned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, id) DO UPDATE SET
			text = EXCLUDED.text,
			category = EXCLUDED.category,
			categories = EXCLUDED.categories,
			created_at = EXCLUDED.created_at,
			archived = EXCLUDED.archived,
			hidden = EXCLUDED.hidden,
			pinned = EXCLUDED.pinned,
			updated_at = NOW()`,
		userID, idea.ID, idea.Text, idea.Category, pq.StringArray(categories),
		idea.CreatedAt, idea.Archived, idea.Hidden, idea.Pinned,
	)
	return err
}

const updateIdeaSQL = `
	UPDATE ideas SET
		text = COALESCE($3::text, text),
		category = COALESCE($4::text, category),
		categories = COALESCE($5::text[], categories),
		archived = COALESCE($6::boolean, archived),
		hidden = COALESCE($7::boolean, hidden),
		pinned = COALESCE($8::boolean, pinned),
		updated_at = NOW()
	WHERE user_id = $1 AND id = $2`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func updateIdea(ctx context.Context, ex execer, userID, id string, patch model.IdeaPatch) error {
	var categories interface{}
	if patch.Categories != nil {
		list := *patch.Categories
		if list == nil {
			list = []string{}
		}
		categories = pq.StringArray(list)
	}
	res, err := ex.ExecContext(ctx, updateIdeaSQL, userID, id,
		nullString(patch.Text), nullString(patch.Category), categories,
		nullBool(patch.Archived), nullBool(patch.Hidden), nullBool(patch.Pinned))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("idea %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// UpdateIdea patches an existing idea, ErrNotFound when it does not exist
func (p *Postgres) UpdateIdea(ctx context.Context, userID, id string, patch model.IdeaPatch) error {
	return updateIdea(ctx, p.db, userID, id, patch)
}

// CommitBatch applies every update in one transaction
func (p *Postgres) CommitBatch(ctx context.Context, userID string, updates []model.IdeaUpdate) error {
	for _, u := range updates {
		if strings.TrimSpace(u.ID) == "" {
			return model.NewValidationError("id", "required")
		}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range updates {
		if err := updateIdea(ctx, tx, userID, u.ID, u.Patch); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteIdea removes an idea; a missing idea is not an error
func (p *Postgres) DeleteIdea(ctx context.Context, userID, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM ideas WHERE user_id = $1 AND id = $2`, userID, id)
	return err
}

// ListCategorySettings returns every category setting of userID
func (p *Postgres) ListCategorySettings(ctx context.Context, userID string) ([]model.CategorySetting, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT name, color, visible FROM category_settings
		WHERE user_id = $1 ORDER BY doc_id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []model.CategorySetting
	for rows.Next() {
		s, err := scanSetting(rows.Scan)
		if err != nil {
			return nil, err
		}
		s.UserID = userID
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// GetCategorySetting returns the setting stored under name's document id
func (p *Postgres) GetCategorySetting(ctx context.Context, userID, name string) (model.CategorySetting, bool, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT name, color, visible FROM category_settings
		WHERE user_id = $1 AND doc_id = $2`,
		userID, model.CategoryDocID(name))
	s, err := scanSetting(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CategorySetting{}, false, nil
	}
	if err != nil {
		return model.CategorySetting{}, false, err
	}
	s.UserID = userID
	return s, true, nil
}

// PutCategorySetting merges setting into the stored document
func (p *Postgres) PutCategorySetting(ctx context.Context, userID string, setting model.CategorySetting) error {
	name := strings.TrimSpace(setting.Name)
	docID := model.CategoryDocID(name)
	if docID == "" {
		return model.NewValidationError("name", "required")
	}

	color := sql.NullString{String: setting.Color, Valid: setting.Color != "" && !setting.ClearColor}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO category_settings (user_id, doc_id, name, color, visible)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, doc_id) DO UPDATE SET
			name = EXCLUDED.name,
			color = CASE
				WHEN $6 THEN NULL
				WHEN EXCLUDED.color IS NOT NULL THEN EXCLUDED.color
				ELSE category_settings.color
			END,
			visible = COALESCE(EXCLUDED.visible, category_settings.visible),
			updated_at = NOW()`,
		userID, docID, name, color, nullBool(setting.Visible), setting.ClearColor,
	)
	return err
}

// DeleteCategorySetting removes the setting stored under name's document id
func (p *Postgres) DeleteCategorySetting(ctx context.Context, userID, name string) error {
	_, err := p.db.ExecContext(ctx, `
		DELETE FROM category_settings WHERE user_id = $1 AND doc_id = $2`,
		userID, model.CategoryDocID(name))
	return err
}

func scanSetting(scan func(dest ...interface{}) error) (model.CategorySetting, error) {
	var s model.CategorySetting
	var color sql.NullString
	var visible sql.NullBool
	if err := scan(&s.Name, &color, &visible); err != nil {
		return model.CategorySetting{}, err
	}
	s.Color = color.String
	if visible.Valid {
		s.Visible = model.Bool(visible.Bool)
	}
	return s, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
