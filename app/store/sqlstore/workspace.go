package sqlstore

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/quka-ai/workbench/app/store"
	"github.com/quka-ai/workbench/pkg/register"
	"github.com/quka-ai/workbench/pkg/types"
)

// PG_UNIQUE_VIOLATION is the postgres SQLSTATE for a duplicate key.
const PG_UNIQUE_VIOLATION = "23505"

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.WorkspaceStore = NewWorkspaceStore(provider)
	})
}

type WorkspaceStore struct {
	CommonFields
}

func NewWorkspaceStore(provider SqlProviderAchieve) *WorkspaceStore {
	repo := &WorkspaceStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_WORKSPACE)
	repo.SetAllColumns("id", "user_id", "project_name", "description", "repo_url", "status", "mode", "created_at", "updated_at")
	return repo
}

func (s *WorkspaceStore) Create(ctx context.Context, data types.Workspace) error {
	now := time.Now().Unix()
	if data.CreatedAt == 0 {
		data.CreatedAt = now
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = now
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.UserID, data.ProjectName, data.Description, data.RepoURL, data.Status, data.Mode, data.CreatedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == PG_UNIQUE_VIOLATION {
			return store.ErrWorkspaceExists
		}
		return err
	}
	return nil
}

func (s *WorkspaceStore) Get(ctx context.Context, id string) (*types.Workspace, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	res := new(types.Workspace)
	if err = s.GetReplica(ctx).Get(res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *WorkspaceStore) UpdateStatus(ctx context.Context, id string, status types.WorkspaceStatus) error {
	query := sq.Update(s.GetTable()).
		SetMap(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().Unix(),
		}).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	res, err := s.GetMaster(ctx).Exec(queryString, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *WorkspaceStore) Delete(ctx context.Context, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *WorkspaceStore) ListByUser(ctx context.Context, userID string) ([]*types.Workspace, error) {
	query := sq.Select(s.GetAllColumns()...).
		From(s.GetTable()).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []*types.Workspace
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *WorkspaceStore) listExpiredQuery(statuses []types.WorkspaceStatus, before int64) sq.SelectBuilder {
	return sq.Select(s.GetAllColumns()...).
		From(s.GetTable()).
		Where(sq.And{
			sq.Eq{"status": lo.Map(statuses, func(item types.WorkspaceStatus, _ int) string { return string(item) })},
			sq.Lt{"updated_at": before},
		}).
		OrderBy("updated_at")
}

func (s *WorkspaceStore) ListExpired(ctx context.Context, statuses []types.WorkspaceStatus, before int64) ([]*types.Workspace, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	queryString, args, err := s.listExpiredQuery(statuses, before).ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []*types.Workspace
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
