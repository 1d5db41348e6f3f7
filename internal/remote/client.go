package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
)

// DefaultPollInterval is how often WatchIdeas polls the server
const DefaultPollInterval = 5 * time.Second

// TokenSource supplies the bearer token of the signed-in user
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource
type StaticToken string

// Token returns the token
func (t StaticToken) Token() string { return string(t) }

// Client is a Store backed by the ideabox sync server
type Client struct {
	baseURL      string
	token        TokenSource
	httpClient   *http.Client
	sealer       *Sealer
	pollInterval time.Duration
	log          *logger.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithSealer encrypts idea text on upload and decrypts it on download
func WithSealer(s *Sealer) ClientOption {
	return func(c *Client) { c.sealer = s }
}

// WithPollInterval sets the WatchIdeas polling period
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets the client logger
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, token TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Credentials is the answer to register and login
type Credentials struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, username, email, password string) (Credentials, error) {
	var creds Credentials
	err := c.do(ctx, "register", http.MethodPost, "/api/v1/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &creds, false)
	return creds, err
}

// Login authenticates with username and password
func (c *Client) Login(ctx context.Context, username, password string) (Credentials, error) {
	var creds Credentials
	err := c.do(ctx, "login", http.MethodPost, "/api/v1/login", map[string]string{
		"username": username,
		"password": password,
	}, &creds, false)
	return creds, err
}

// Me returns the user the token belongs to
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var user model.User
	err := c.do(ctx, "me", http.MethodGet, "/api/v1/me", nil, &user, true)
	return user, err
}

// Health pings the server
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/health", nil, nil, false)
}

type ideasResponse struct {
	Ideas []model.Idea `json:"ideas"`
}

type batchRequest struct {
	Updates []model.IdeaUpdate `json:"updates"`
}

type settingsResponse struct {
	Settings []model.CategorySetting `json:"settings"`
}

// ListIdeas fetches every idea of the signed-in user
func (c *Client) ListIdeas(ctx context.Context, userID string) ([]model.Idea, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var resp ideasResponse
	if err := c.do(ctx, "list ideas", http.MethodGet, "/api/v1/ideas", nil, &resp, true); err != nil {
		return nil, err
	}
	return c.openIdeas(resp.Ideas), nil
}

// PutIdea creates or replaces an idea
func (c *Client) PutIdea(ctx context.Context, userID string, idea model.Idea) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	text, err := c.seal(idea.Text)
	if err != nil {
		return err
	}
	idea.Text = text
	return c.do(ctx, "put idea", http.MethodPut, "/api/v1/ideas/"+url.PathEscape(idea.ID), idea, nil, true)
}

// UpdateIdea patches an existing idea
func (c *Client) UpdateIdea(ctx context.Context, userID, id string, patch model.IdeaPatch) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	sealed, err := c.sealPatch(patch)
	if err != nil {
		return err
	}
	return c.do(ctx, "update idea", http.MethodPatch, "/api/v1/ideas/"+url.PathEscape(id), sealed, nil, true)
}

// CommitBatch applies updates atomically on the server
func (c *Client) CommitBatch(ctx context.Context, userID string, updates []model.IdeaUpdate) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	req := batchRequest{Updates: make([]model.IdeaUpdate, 0, len(updates))}
	for _, up := range updates {
		patch, err := c.sealPatch(up.Patch)
		if err != nil {
			return err
		}
		req.Updates = append(req.Updates, model.IdeaUpdate{ID: up.ID, Patch: patch})
	}
	return c.do(ctx, "commit batch", http.MethodPost, "/api/v1/ideas/batch", req, nil, true)
}

// DeleteIdea removes an idea
func (c *Client) DeleteIdea(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return c.do(ctx, "delete idea", http.MethodDelete, "/api/v1/ideas/"+url.PathEscape(id), nil, nil, true)
}

// ListCategorySettings fetches every category document
func (c *Client) ListCategorySettings(ctx context.Context, userID string) ([]model.CategorySetting, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var resp settingsResponse
	if err := c.do(ctx, "list category settings", http.MethodGet, "/api/v1/category-settings", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Settings, nil
}

// GetCategorySetting fetches one category document
func (c *Client) GetCategorySetting(ctx context.Context, userID, name string) (model.CategorySetting, bool, error) {
	if err := requireUser(userID); err != nil {
		return model.CategorySetting{}, false, err
	}
	var setting model.CategorySetting
	err := c.do(ctx, "get category setting", http.MethodGet, settingPath(name), nil, &setting, true)
	if errors.Is(err, model.ErrNotFound) {
		return model.CategorySetting{}, false, nil
	}
	if err != nil {
		return model.CategorySetting{}, false, err
	}
	return setting, true, nil
}

// PutCategorySetting merges a category document
func (c *Client) PutCategorySetting(ctx context.Context, userID string, setting model.CategorySetting) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return c.do(ctx, "put category setting", http.MethodPut, settingPath(setting.Name), setting, nil, true)
}

// DeleteCategorySetting removes a category document
func (c *Client) DeleteCategorySetting(ctx context.Context, userID, name string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return c.do(ctx, "delete category setting", http.MethodDelete, settingPath(name), nil, nil, true)
}

// settingPath addresses a category document by name; the server derives the document id
func settingPath(name string) string {
	return "/api/v1/category-settings/" + url.PathEscape(strings.TrimSpace(name))
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return model.ErrAuthRequired
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}, auth bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token := ""
		if c.token != nil {
			token = c.token.Token()
		}
		if token == "" {
			return fmt.Errorf("%s: %w", op, model.ErrAuthRequired)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("Request failed", logger.F("op", op), logger.F("error", err))
		return transportError(op, err)
	}
	defer resp.Body.Close()

	c.log.Debug("Request",
		logger.F("op", op),
		logger.F("method", method),
		logger.F("status", resp.StatusCode),
		logger.F("duration_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) seal(text string) (string, error) {
	if c.sealer == nil {
		return text, nil
	}
	sealed, err := c.sealer.Seal(text)
	if err != nil {
		return "", fmt.Errorf("seal text: %w", err)
	}
	return sealed, nil
}

func (c *Client) sealPatch(patch model.IdeaPatch) (model.IdeaPatch, error) {
	if patch.Text == nil || c.sealer == nil {
		return patch, nil
	}
	text, err := c.seal(*patch.Text)
	if err != nil {
		return patch, err
	}
	patch.Text = &text
	return patch, nil
}

// openIdeas decrypts sealed text; undecryptable text is kept as stored
func (c *Client) openIdeas(ideas []model.Idea) []model.Idea {
	if ideas == nil {
		return []model.Idea{}
	}
	for i := range ideas {
		if !IsSealed(ideas[i].Text) {
			continue
		}
		if c.sealer == nil {
			c.log.Warn("Sealed idea without passphrase", logger.F("id", ideas[i].ID))
			continue
		}
		text, err := c.sealer.Open(ideas[i].Text)
		if err != nil {
			c.log.Warn("Failed to open sealed idea", logger.F("id", ideas[i].ID), logger.F("error", err))
			continue
		}
		ideas[i].Text = text
	}
	return ideas
}
