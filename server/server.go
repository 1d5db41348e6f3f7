// Package server is the ideabox sync server: an echo HTTP API over the
// per-user idea and category settings documents.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
)

// Documents stores the per-user documents served by the API.
// *remote.Memory and *Postgres implement it.
type Documents interface {
	ListIdeas(ctx context.Context, userID string) ([]model.Idea, error)
	PutIdea(ctx context.Context, userID string, idea model.Idea) error
	UpdateIdea(ctx context.Context, userID, id string, patch model.IdeaPatch) error
	CommitBatch(ctx context.Context, userID string, updates []model.IdeaUpdate) error
	DeleteIdea(ctx context.Context, userID, id string) error

	ListCategorySettings(ctx context.Context, userID string) ([]model.CategorySetting, error)
	GetCategorySetting(ctx context.Context, userID, name string) (model.CategorySetting, bool, error)
	PutCategorySetting(ctx context.Context, userID string, setting model.CategorySetting) error
	DeleteCategorySetting(ctx context.Context, userID, name string) error
}

// Accounts stores users and their sessions
type Accounts interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (model.User, error)
	UserByUsername(ctx context.Context, username string) (model.User, error)
	UserByID(ctx context.Context, id string) (model.User, error)
	CreateSession(ctx context.Context, session model.Session) error
	Session(ctx context.Context, token string) (model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// Options tunes the server
type Options struct {
	PaletteSync bool          // Serve category settings; false answers 403
	SessionTTL  time.Duration // Lifetime of a login session
	Logger      *logger.Logger
}

// Server is the sync server
type Server struct {
	docs     Documents
	accounts Accounts
	opts     Options
	log      *logger.Logger
	echo     *echo.Echo
}

// New creates a server over docs and accounts
func New(docs Documents, accounts Accounts, opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}
	s := &Server{
		docs:     docs,
		accounts: accounts,
		opts:     opts,
		log:      opts.Logger,
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(s.requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")

	// Auth endpoints (public)
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/me", s.handleMe)
	protected.POST("/logout", s.handleLogout)

	protected.GET("/ideas", s.handleListIdeas)
	protected.POST("/ideas/batch", s.handleCommitBatch)
	protected.PUT("/ideas/:id", s.handlePutIdea)
	protected.PATCH("/ideas/:id", s.handleUpdateIdea)
	protected.DELETE("/ideas/:id", s.handleDeleteIdea)

	settings := protected.Group("/category-settings")
	settings.Use(s.paletteGate)
	settings.GET("", s.handleListSettings)
	settings.GET("/:name", s.handleGetSetting)
	settings.PUT("/:name", s.handlePutSetting)
	settings.DELETE("/:name", s.handleDeleteSetting)

	s.echo = e
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown
func (s *Server) Start(addr string) error {
	s.log.Info("Sync server starting", logger.F("addr", addr), logger.F("palette_sync", s.opts.PaletteSync))
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func ok(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func userID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}
