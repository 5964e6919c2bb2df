package standard

import (
	"fmt"
	"log/slog"

	"github.com/quka-ai/workbench/app/core"
	"github.com/quka-ai/workbench/app/core/srv"
	"github.com/quka-ai/workbench/pkg/plugins"
	"github.com/quka-ai/workbench/pkg/utils"
)

const NAME = "standard"

func init() {
	plugins.RegisterProvider(NAME, func() core.Plugins {
		return newStandardMode()
	})
}

var _ core.Plugins = (*StandardPlugin)(nil)

func newStandardMode() *StandardPlugin {
	return &StandardPlugin{
		SingleLock: plugins.NewSingleLock(),
		KeyLimiter: plugins.NewKeyLimiter(),
	}
}

// StandardPlugin talks to the real world: provisioning CLI when present, hosted model otherwise, GitHub when configured.
type StandardPlugin struct {
	core *core.Core
	*plugins.SingleLock
	*plugins.KeyLimiter
}

func (s *StandardPlugin) Name() string {
	return NAME
}

func (s *StandardPlugin) Install(c *core.Core) error {
	s.core = c
	utils.SetupIDWorker(1)

	cfg := c.Cfg()
	store, err := core.NewStoreFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("Failed to setup store, %w", err)
	}
	if err = c.SetupStore(store); err != nil {
		return fmt.Errorf("Failed to install store %s, %w", store.Name(), err)
	}

	c.SetupSrv(
		srv.ApplyAI(cfg.AI),
		srv.ApplyGitHub(cfg.GitHub),
		srv.ApplyProvisioner(cfg.Provisioner),
	)

	slog.Info("plugin installed", slog.String("component", "plugins"),
		slog.String("mode", NAME),
		slog.String("strategy", string(c.Srv().Strategy())),
		slog.String("ai", c.Srv().AI().DriverName()))
	return nil
}
