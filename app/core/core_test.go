package core

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/workbench/app/core/srv"
	"github.com/quka-ai/workbench/app/store/memstore"
	"github.com/quka-ai/workbench/pkg/types"
)

func TestSetupFromENV(t *testing.T) {
	core := MustSetupCore(LoadBaseConfigFromENV())
	assert.NotNil(t, core)
	assert.NotNil(t, core.HttpEngine())
	assert.NotNil(t, core.Metrics())
}

func TestNewStoreFromConfig(t *testing.T) {
	cfg := DefaultConfig()

	p, err := NewStoreFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, memstore.NAME, p.Name())

	cfg.Store.Driver = "redis"
	_, err = NewStoreFromConfig(cfg)
	assert.Error(t, err)

	cfg.Store.Driver = "postgres"
	_, err = NewStoreFromConfig(cfg)
	assert.Error(t, err)

	cfg.Store.Driver = "mongo"
	_, err = NewStoreFromConfig(cfg)
	assert.Error(t, err)
}

func TestSetupStoreAndSrv(t *testing.T) {
	core := MustSetupCore(DefaultConfig())
	require.NoError(t, core.SetupStore(memstore.New()))

	now := time.Now().Unix()
	err := core.Store().WorkspaceStore().Create(context.Background(), types.Workspace{
		ID:        "u1-1",
		UserID:    "u1",
		Status:    types.WORKSPACE_STATUS_READY,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)

	core.SetupSrv(srv.WithStrategy(types.STRATEGY_MOCK))
	assert.Equal(t, types.STRATEGY_MOCK, core.Srv().Strategy())
	assert.NotNil(t, core.Srv().RelayHub())
	assert.NoError(t, core.Close())
}

type stubPlugins struct {
	installed bool
}

func (s *stubPlugins) Name() string { return "stub" }
func (s *stubPlugins) Install(*Core) error {
	s.installed = true
	return nil
}
func (s *stubPlugins) TryLock(context.Context, string) (bool, error) { return true, nil }
func (s *stubPlugins) UseLimiter(*gin.Context, string, string, ...LimitOption) Limiter {
	return nil
}

func TestInstallPlugins(t *testing.T) {
	core := MustSetupCore(DefaultConfig())
	p := &stubPlugins{}
	core.InstallPlugins(p)
	assert.True(t, p.installed)
	assert.Equal(t, "stub", core.Name())
}

func TestWithRule(t *testing.T) {
	cfg := &LimitConfig{Limit: 60, Every: time.Minute}
	WithRule(LimitRule{Limit: 10, Window: 3600})(cfg)
	assert.Equal(t, 10, cfg.Limit)
	assert.Equal(t, time.Hour, cfg.Every)

	WithRule(LimitRule{})(cfg)
	assert.Equal(t, 10, cfg.Limit)
}
