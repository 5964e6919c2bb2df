package redisstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/workbench/app/store"
	"github.com/quka-ai/workbench/pkg/testutils"
	"github.com/quka-ai/workbench/pkg/types"
)

func newTestClient(t *testing.T) redis.UniversalClient {
	addr := testutils.RequireEnv(t, "WORKBENCH_TEST_REDIS_ADDR")
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("WORKBENCH_TEST_REDIS_PASSWORD"),
		DB:       1,
	})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestWorkspaceStore(t *testing.T) {
	client := newTestClient(t)
	prefix := fmt.Sprintf("workbench_test_%d", time.Now().UnixNano())
	p := New(client, prefix)
	require.NoError(t, p.Install())

	s := p.WorkspaceStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, types.Workspace{ID: "u1-1", UserID: "u1", Status: types.WORKSPACE_STATUS_RUNNING, CreatedAt: 1}))
	require.NoError(t, s.Create(ctx, types.Workspace{ID: "u1-2", UserID: "u1", Status: types.WORKSPACE_STATUS_READY, CreatedAt: 2}))
	t.Cleanup(func() {
		s.Delete(ctx, "u1-1")
		s.Delete(ctx, "u1-2")
	})
	assert.ErrorIs(t, s.Create(ctx, types.Workspace{ID: "u1-1", UserID: "u1", Status: types.WORKSPACE_STATUS_ERROR}), store.ErrWorkspaceExists)

	got, err := s.Get(ctx, "u1-1")
	require.NoError(t, err)
	assert.Equal(t, types.WORKSPACE_STATUS_RUNNING, got.Status)

	list, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u1-2", list[0].ID)

	require.NoError(t, s.UpdateStatus(ctx, "u1-1", types.WORKSPACE_STATUS_STOPPED))
	assert.ErrorIs(t, s.UpdateStatus(ctx, "nope", types.WORKSPACE_STATUS_STOPPED), sql.ErrNoRows)

	expired, err := s.ListExpired(ctx, []types.WorkspaceStatus{types.WORKSPACE_STATUS_STOPPED}, time.Now().Add(time.Minute).Unix())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "u1-1", expired[0].ID)

	require.NoError(t, s.Delete(ctx, "u1-1"))
	_, err = s.Get(ctx, "u1-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	list, err = s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
