package redisstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/quka-ai/workbench/app/store"
	"github.com/quka-ai/workbench/pkg/types"
	"github.com/quka-ai/workbench/pkg/types/protocol"
)

const (
	NAME = "redis"

	DEFAULT_KEY_PREFIX = "workbench"
)

type Provider struct {
	client     redis.UniversalClient
	workspaces *WorkspaceStore
}

var _ store.Provider = (*Provider)(nil)

func New(client redis.UniversalClient, prefix string) *Provider {
	return &Provider{
		client: client,
		workspaces: &WorkspaceStore{
			client: client,
			prefix: lo.Ternary(prefix != "", prefix, DEFAULT_KEY_PREFIX),
		},
	}
}

func (p *Provider) Name() string {
	return NAME
}

// Install checks the connection, redis needs no schema.
func (p *Provider) Install() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.client.Ping(ctx).Err()
}

func (p *Provider) Close() error {
	return p.client.Close()
}

func (p *Provider) WorkspaceStore() store.WorkspaceStore {
	return p.workspaces
}

type WorkspaceStore struct {
	client redis.UniversalClient
	prefix string
}

func (s *WorkspaceStore) save(ctx context.Context, pipe redis.Pipeliner, data types.Workspace) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	pipe.Set(ctx, protocol.GenWorkspaceKey(s.prefix, data.ID), raw, 0)
	pipe.SAdd(ctx, protocol.GenUserWorkspacesKey(s.prefix, data.UserID), data.ID)
	pipe.ZAdd(ctx, protocol.GenWorkspaceUpdatesKey(s.prefix), redis.Z{Score: float64(data.UpdatedAt), Member: data.ID})
	return nil
}

func (s *WorkspaceStore) Create(ctx context.Context, data types.Workspace) error {
	now := time.Now().Unix()
	if data.CreatedAt == 0 {
		data.CreatedAt = now
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = now
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, protocol.GenWorkspaceKey(s.prefix, data.ID), raw, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrWorkspaceExists
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, protocol.GenUserWorkspacesKey(s.prefix, data.UserID), data.ID)
		pipe.ZAdd(ctx, protocol.GenWorkspaceUpdatesKey(s.prefix), redis.Z{Score: float64(data.UpdatedAt), Member: data.ID})
		return nil
	})
	return err
}

func (s *WorkspaceStore) Get(ctx context.Context, id string) (*types.Workspace, error) {
	raw, err := s.client.Get(ctx, protocol.GenWorkspaceKey(s.prefix, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}

	res := new(types.Workspace)
	if err = json.Unmarshal(raw, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *WorkspaceStore) UpdateStatus(ctx context.Context, id string, status types.WorkspaceStatus) error {
	key := protocol.GenWorkspaceKey(s.prefix, id)
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return sql.ErrNoRows
			}
			return err
		}
		var w types.Workspace
		if err = json.Unmarshal(raw, &w); err != nil {
			return err
		}
		w.Status = status
		w.UpdatedAt = time.Now().Unix()

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return s.save(ctx, pipe, w)
		})
		return err
	}, key)
}

func (s *WorkspaceStore) Delete(ctx context.Context, id string) error {
	w, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, protocol.GenWorkspaceKey(s.prefix, id))
		pipe.SRem(ctx, protocol.GenUserWorkspacesKey(s.prefix, w.UserID), id)
		pipe.ZRem(ctx, protocol.GenWorkspaceUpdatesKey(s.prefix), id)
		return nil
	})
	return err
}

func (s *WorkspaceStore) getMany(ctx context.Context, ids []string) ([]*types.Workspace, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := lo.Map(ids, func(id string, _ int) string {
		return protocol.GenWorkspaceKey(s.prefix, id)
	})
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var res []*types.Workspace
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		w := new(types.Workspace)
		if err := json.Unmarshal([]byte(str), w); err != nil {
			return nil, err
		}
		res = append(res, w)
	}
	return res, nil
}

func (s *WorkspaceStore) ListByUser(ctx context.Context, userID string) ([]*types.Workspace, error) {
	ids, err := s.client.SMembers(ctx, protocol.GenUserWorkspacesKey(s.prefix, userID)).Result()
	if err != nil {
		return nil, err
	}
	res, err := s.getMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt > res[j].CreatedAt
	})
	return res, nil
}

func (s *WorkspaceStore) ListExpired(ctx context.Context, statuses []types.WorkspaceStatus, before int64) ([]*types.Workspace, error) {
	ids, err := s.client.ZRangeByScore(ctx, protocol.GenWorkspaceUpdatesKey(s.prefix), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(before, 10),
	}).Result()
	if err != nil {
		return nil, err
	}
	res, err := s.getMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return lo.Filter(res, func(w *types.Workspace, _ int) bool {
		return lo.Contains(statuses, w.Status)
	}), nil
}
