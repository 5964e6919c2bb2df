package memstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/workbench/app/store"
	"github.com/quka-ai/workbench/pkg/types"
)

func TestWorkspaceStore(t *testing.T) {
	s := New().WorkspaceStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, types.Workspace{ID: "u1-1", UserID: "u1", Status: types.WORKSPACE_STATUS_READY, CreatedAt: 1}))
	require.NoError(t, s.Create(ctx, types.Workspace{ID: "u1-2", UserID: "u1", Status: types.WORKSPACE_STATUS_RUNNING, CreatedAt: 2}))
	require.NoError(t, s.Create(ctx, types.Workspace{ID: "u2-1", UserID: "u2", Status: types.WORKSPACE_STATUS_READY}))
	assert.ErrorIs(t, s.Create(ctx, types.Workspace{ID: "u1-1", UserID: "u1", Status: types.WORKSPACE_STATUS_ERROR}), store.ErrWorkspaceExists)

	got, err := s.Get(ctx, "u1-1")
	require.NoError(t, err)
	assert.Equal(t, types.WORKSPACE_STATUS_READY, got.Status)
	assert.NotZero(t, got.UpdatedAt)

	list, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u1-2", list[0].ID)

	require.NoError(t, s.UpdateStatus(ctx, "u1-1", types.WORKSPACE_STATUS_STOPPED))
	got, _ = s.Get(ctx, "u1-1")
	assert.Equal(t, types.WORKSPACE_STATUS_STOPPED, got.Status)

	assert.ErrorIs(t, s.UpdateStatus(ctx, "missing", types.WORKSPACE_STATUS_STOPPED), sql.ErrNoRows)
	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	expired, err := s.ListExpired(ctx, []types.WorkspaceStatus{types.WORKSPACE_STATUS_STOPPED}, time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "u1-1", expired[0].ID)

	require.NoError(t, s.Delete(ctx, "u1-1"))
	_, err = s.Get(ctx, "u1-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetReturnsCopy(t *testing.T) {
	s := New().WorkspaceStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, types.Workspace{ID: "w", Status: types.WORKSPACE_STATUS_READY}))

	got, _ := s.Get(ctx, "w")
	got.Status = types.WORKSPACE_STATUS_ERROR

	again, _ := s.Get(ctx, "w")
	assert.Equal(t, types.WORKSPACE_STATUS_READY, again.Status)
}
