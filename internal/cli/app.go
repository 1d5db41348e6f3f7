package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/config"
	"github.com/existflow/ideabox/internal/db"
	"github.com/existflow/ideabox/internal/identity"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/notebook"
	"github.com/existflow/ideabox/internal/remote"
)

// passphraseEnv enables content sealing when set together with a session salt
const passphraseEnv = "IDEABOX_PASSPHRASE"

// app bundles what a command needs to reach the notebook
type app struct {
	cfg     *config.Config
	session *identity.SessionFile
	mirror  *db.Mirror
	client  *remote.Client
	repo    *notebook.Repository
	usage   *category.UsageTracker
}

func sessionFile() (*identity.SessionFile, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate ideabox home: %w", err)
	}
	return identity.NewSessionFile(filepath.Join(dir, "session.json")), nil
}

// serverURL prefers the server the session was created against
func serverURL(session identity.Session) string {
	if session.ServerURL != "" {
		return session.ServerURL
	}
	return cfg.ServerURL
}

func newClient(session *identity.SessionFile, s identity.Session) (*remote.Client, error) {
	opts := []remote.ClientOption{
		remote.WithPollInterval(cfg.PollInterval),
		remote.WithLogger(logger.Named("remote")),
	}
	if pass := os.Getenv(passphraseEnv); pass != "" && s.Salt != "" {
		sealer, err := remote.NewSealerBase64(pass, s.Salt)
		if err != nil {
			return nil, fmt.Errorf("invalid sealing salt in session: %w", err)
		}
		opts = append(opts, remote.WithSealer(sealer))
	}
	return remote.NewClient(serverURL(s), session, opts...), nil
}

// openApp opens the mirror and wires the repository to the sync server
func openApp() (*app, error) {
	session, err := sessionFile()
	if err != nil {
		return nil, err
	}

	mirror, err := db.Open(cfg.MirrorPath, logger.Named("mirror"))
	if err != nil {
		logger.Error("Failed to open mirror", logger.F("error", err))
		return nil, fmt.Errorf("failed to open mirror: %w", err)
	}

	client, err := newClient(session, session.Load())
	if err != nil {
		_ = mirror.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		session: session,
		mirror:  mirror,
		client:  client,
		repo:    notebook.New(client, session, mirror, notebook.WithLogger(logger.Named("notebook"))),
		usage:   category.NewUsageTracker(mirror),
	}, nil
}

func (a *app) Close() {
	if err := a.mirror.Close(); err != nil {
		logger.Warn("Failed to close mirror", logger.F("error", err))
	}
}

// resolveID finds the idea whose id starts with prefix
func resolveID(ideas []model.Idea, prefix string) (model.Idea, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return model.Idea{}, fmt.Errorf("idea id required")
	}

	var matches []model.Idea
	for _, idea := range ideas {
		if idea.ID == prefix {
			return idea, nil
		}
		if strings.HasPrefix(idea.ID, prefix) {
			matches = append(matches, idea)
		}
	}

	switch len(matches) {
	case 0:
		return model.Idea{}, fmt.Errorf("no idea matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return model.Idea{}, fmt.Errorf("%q is ambiguous (%d ideas)", prefix, len(matches))
	}
}

// findIdea resolves an id prefix against the current notebook
func (a *app) findIdea(ctx context.Context, prefix string) (model.Idea, error) {
	ideas, err := a.repo.GetIdeas(ctx, notebook.GetOptions{})
	if err != nil {
		return model.Idea{}, err
	}
	return resolveID(ideas, prefix)
}

// splitCategories parses "Work, home ,Errands" into a list
func splitCategories(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return category.Normalize(out)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
