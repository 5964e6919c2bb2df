package memstore

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/samber/lo"

	"github.com/quka-ai/workbench/app/store"
	"github.com/quka-ai/workbench/pkg/types"
)

const NAME = "memory"

// Provider keeps workspaces in process memory. Everything is lost on restart.
type Provider struct {
	workspaces *WorkspaceStore
}

var _ store.Provider = (*Provider)(nil)

func New() *Provider {
	return &Provider{
		workspaces: &WorkspaceStore{
			data: cmap.New[types.Workspace](),
		},
	}
}

func (p *Provider) Name() string {
	return NAME
}

func (p *Provider) Install() error {
	return nil
}

func (p *Provider) Close() error {
	return nil
}

func (p *Provider) WorkspaceStore() store.WorkspaceStore {
	return p.workspaces
}

type WorkspaceStore struct {
	// mu serialises read-modify-write updates, plain reads go straight to the map.
	mu   sync.Mutex
	data cmap.ConcurrentMap[string, types.Workspace]
}

func (s *WorkspaceStore) Create(_ context.Context, data types.Workspace) error {
	now := time.Now().Unix()
	if data.CreatedAt == 0 {
		data.CreatedAt = now
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = now
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.data.SetIfAbsent(data.ID, data) {
		return store.ErrWorkspaceExists
	}
	return nil
}

func (s *WorkspaceStore) Get(_ context.Context, id string) (*types.Workspace, error) {
	w, ok := s.data.Get(id)
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &w, nil
}

func (s *WorkspaceStore) UpdateStatus(_ context.Context, id string, status types.WorkspaceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.data.Get(id)
	if !ok {
		return sql.ErrNoRows
	}
	w.Status = status
	w.UpdatedAt = time.Now().Unix()
	s.data.Set(id, w)
	return nil
}

func (s *WorkspaceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Remove(id)
	return nil
}

func (s *WorkspaceStore) ListByUser(_ context.Context, userID string) ([]*types.Workspace, error) {
	res := s.filter(func(w types.Workspace) bool {
		return w.UserID == userID
	})
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt > res[j].CreatedAt
	})
	return res, nil
}

func (s *WorkspaceStore) ListExpired(_ context.Context, statuses []types.WorkspaceStatus, before int64) ([]*types.Workspace, error) {
	res := s.filter(func(w types.Workspace) bool {
		return lo.Contains(statuses, w.Status) && w.UpdatedAt < before
	})
	sort.Slice(res, func(i, j int) bool {
		return res[i].UpdatedAt < res[j].UpdatedAt
	})
	return res, nil
}

func (s *WorkspaceStore) filter(fn func(w types.Workspace) bool) []*types.Workspace {
	var res []*types.Workspace
	for _, w := range s.data.Items() {
		if fn(w) {
			w := w
			res = append(res, &w)
		}
	}
	return res
}
