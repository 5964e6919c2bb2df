package sqlstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/workbench/app/store"
	"github.com/quka-ai/workbench/pkg/testutils"
	"github.com/quka-ai/workbench/pkg/types"
)

type dsn string

func (d dsn) FormatDSN() string {
	return string(d)
}

func TestListExpiredQuery(t *testing.T) {
	s := NewWorkspaceStore(nil)
	query, args, err := s.listExpiredQuery([]types.WorkspaceStatus{types.WORKSPACE_STATUS_STOPPED, types.WORKSPACE_STATUS_ERROR}, 100).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, user_id, project_name, description, repo_url, status, mode, created_at, updated_at FROM workbench_workspaces WHERE (status IN ($1,$2) AND updated_at < $3) ORDER BY updated_at", query)
	assert.Equal(t, []interface{}{"stopped", "error", int64(100)}, args)
}

func setupTestStore(t *testing.T) *Provider {
	conn := testutils.RequireEnv(t, "WORKBENCH_TEST_POSTGRES_DSN")
	p := MustSetup(dsn(conn))()
	require.NoError(t, p.Install())
	t.Cleanup(func() { p.Close() })
	return p
}

func TestWorkspaceStore(t *testing.T) {
	p := setupTestStore(t)
	s := p.WorkspaceStore()
	ctx := context.Background()

	id := "sqltest-" + time.Now().Format("150405.000000")
	require.NoError(t, s.Create(ctx, types.Workspace{
		ID:          id,
		UserID:      "sqltest",
		ProjectName: "demo",
		Status:      types.WORKSPACE_STATUS_READY,
		Mode:        types.STRATEGY_API,
	}))
	t.Cleanup(func() { s.Delete(ctx, id) })
	assert.ErrorIs(t, s.Create(ctx, types.Workspace{ID: id, UserID: "sqltest", ProjectName: "demo", Status: types.WORKSPACE_STATUS_ERROR, Mode: types.STRATEGY_API}), store.ErrWorkspaceExists)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "demo", got.ProjectName)
	assert.Equal(t, types.STRATEGY_API, got.Mode)

	require.NoError(t, s.UpdateStatus(ctx, id, types.WORKSPACE_STATUS_STOPPED))
	list, err := s.ListByUser(ctx, "sqltest")
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	expired, err := s.ListExpired(ctx, []types.WorkspaceStatus{types.WORKSPACE_STATUS_STOPPED}, time.Now().Add(time.Minute).Unix())
	require.NoError(t, err)
	assert.Contains(t, ids(expired), id)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, s.UpdateStatus(ctx, id, types.WORKSPACE_STATUS_ERROR), sql.ErrNoRows)
}

func ids(list []*types.Workspace) []string {
	var res []string
	for _, v := range list {
		res = append(res, v.ID)
	}
	return res
}
