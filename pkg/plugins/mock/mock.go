package mock

import (
	"context"
	"log/slog"

	"github.com/quka-ai/workbench/app/core"
	"github.com/quka-ai/workbench/app/core/srv"
	"github.com/quka-ai/workbench/app/store/memstore"
	"github.com/quka-ai/workbench/pkg/ai/echo"
	"github.com/quka-ai/workbench/pkg/github"
	"github.com/quka-ai/workbench/pkg/plugins"
	"github.com/quka-ai/workbench/pkg/types"
	"github.com/quka-ai/workbench/pkg/utils"
)

const (
	NAME = "mock"

	MOCK_REPO_OWNER = "mock"
)

func init() {
	plugins.RegisterProvider(NAME, func() core.Plugins {
		return newMockMode()
	})
}

var _ core.Plugins = (*MockPlugin)(nil)

func newMockMode() *MockPlugin {
	return &MockPlugin{
		SingleLock: plugins.NewSingleLock(),
		KeyLimiter: plugins.NewKeyLimiter(),
	}
}

// MockPlugin never leaves the process: synthetic repositories, canned replies and an in memory store.
type MockPlugin struct {
	*plugins.SingleLock
	*plugins.KeyLimiter
}

func (m *MockPlugin) Name() string {
	return NAME
}

func (m *MockPlugin) Install(c *core.Core) error {
	utils.SetupIDWorker(1)

	if err := c.SetupStore(memstore.New()); err != nil {
		return err
	}

	c.SetupSrv(
		srv.WithAIDriver(echo.New()),
		srv.WithRepoCreator(RepoCreator{}),
		srv.WithStrategy(types.STRATEGY_MOCK),
	)

	slog.Warn("running in mock mode, no external service will be called", slog.String("component", "plugins"))
	return nil
}

// RepoCreator fabricates repository urls without calling GitHub.
type RepoCreator struct{}

func (RepoCreator) CreateFromTemplate(_ context.Context, name, _ string) (*github.Repository, error) {
	fullName := MOCK_REPO_OWNER + "/" + name
	return &github.Repository{
		FullName: fullName,
		HTMLURL:  "https://github.com/" + fullName,
		CloneURL: "https://github.com/" + fullName + ".git",
	}, nil
}
