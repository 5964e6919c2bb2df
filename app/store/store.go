package store

import (
	"context"
	"errors"

	"github.com/quka-ai/workbench/pkg/types"
)

// ErrWorkspaceExists is returned by Create when the id is already taken.
var ErrWorkspaceExists = errors.New("workspace already exists")

// WorkspaceStore keeps workspace metadata. Get returns sql.ErrNoRows for unknown ids,
// whatever the backing driver.
type WorkspaceStore interface {
	Create(ctx context.Context, data types.Workspace) error
	Get(ctx context.Context, id string) (*types.Workspace, error)
	UpdateStatus(ctx context.Context, id string, status types.WorkspaceStatus) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]*types.Workspace, error)
	// ListExpired returns workspaces in one of statuses not updated since before (unix seconds).
	ListExpired(ctx context.Context, statuses []types.WorkspaceStatus, before int64) ([]*types.Workspace, error)
}

// Provider is implemented by every store driver.
type Provider interface {
	Name() string
	Install() error
	WorkspaceStore() WorkspaceStore
	Close() error
}
