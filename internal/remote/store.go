// Package remote holds the authoritative per-user document store contract
// and its adapters: an HTTP client for the sync server and an in-memory
// store.
package remote

import (
	"context"

	"github.com/existflow/ideabox/internal/model"
)

// SnapshotFunc receives the full idea set of a user, in no particular order
type SnapshotFunc func(ideas []model.Idea)

// ErrorFunc receives a subscription failure
type ErrorFunc func(err error)

// Store is a remote document collection of ideas and category settings,
// partitioned by user id. Implementations never sort results.
type Store interface {
	ListIdeas(ctx context.Context, userID string) ([]model.Idea, error)
	PutIdea(ctx context.Context, userID string, idea model.Idea) error
	// UpdateIdea fails with model.ErrNotFound when the document does not exist
	UpdateIdea(ctx context.Context, userID, id string, patch model.IdeaPatch) error
	// CommitBatch applies every update or none
	CommitBatch(ctx context.Context, userID string, updates []model.IdeaUpdate) error
	DeleteIdea(ctx context.Context, userID, id string) error
	// WatchIdeas delivers a snapshot now and after every change until stop is called
	WatchIdeas(ctx context.Context, userID string, onSnapshot SnapshotFunc, onError ErrorFunc) (stop func(), err error)

	ListCategorySettings(ctx context.Context, userID string) ([]model.CategorySetting, error)
	GetCategorySetting(ctx context.Context, userID, name string) (model.CategorySetting, bool, error)
	// PutCategorySetting merges into the existing document
	PutCategorySetting(ctx context.Context, userID string, setting model.CategorySetting) error
	DeleteCategorySetting(ctx context.Context, userID, name string) error
}
