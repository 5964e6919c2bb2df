package process

import (
	"context"
	"log/slog"
	"time"

	"github.com/quka-ai/workbench/app/core"
	"github.com/quka-ai/workbench/pkg/register"
	"github.com/quka-ai/workbench/pkg/safe"
	"github.com/quka-ai/workbench/pkg/types"
)

const CLOSE_REASON_EXPIRED = "workspace expired"

var reapableStatus = []types.WorkspaceStatus{
	types.WORKSPACE_STATUS_STOPPED,
	types.WORKSPACE_STATUS_ERROR,
}

// ReaperProcess removes workspaces that stayed stopped or broken past the ttl.
type ReaperProcess struct {
	core *core.Core
	ttl  time.Duration
}

func NewReaperProcess(core *core.Core, ttl time.Duration) *ReaperProcess {
	return &ReaperProcess{core: core, ttl: ttl}
}

func (p *ReaperProcess) Reap(ctx context.Context, now time.Time) (int, error) {
	expired, err := p.core.Store().WorkspaceStore().ListExpired(ctx, reapableStatus, now.Add(-p.ttl).Unix())
	if err != nil {
		return 0, err
	}

	var removed int
	for _, w := range expired {
		if w.Mode == types.STRATEGY_PROVISIONER && p.core.Srv().Provisioner() != nil {
			// the container may already be gone, the record goes either way
			if err := p.core.Srv().Provisioner().Delete(ctx, w.ID); err != nil {
				slog.Warn("failed to delete expired container", slog.String("component", "reaper"),
					slog.String("workspace_id", w.ID), slog.String("error", err.Error()))
			}
		}
		if err := p.core.Store().WorkspaceStore().Delete(ctx, w.ID); err != nil {
			slog.Error("failed to delete expired workspace", slog.String("component", "reaper"),
				slog.String("workspace_id", w.ID), slog.String("error", err.Error()))
			continue
		}
		p.core.Srv().RelayHub().Evict(w.ID, CLOSE_REASON_EXPIRED)
		removed++
	}
	return removed, nil
}

func init() {
	register.RegisterFunc(ProcessKey{}, func(provider *Process) {
		cfg := provider.Core().Cfg().Reaper
		if cfg.Schedule == "" || cfg.TTL <= 0 {
			slog.Info("workspace reaper disabled", slog.String("component", "reaper"))
			return
		}

		reaper := NewReaperProcess(provider.Core(), time.Duration(cfg.TTL)*time.Hour)
		_, err := provider.Cron().AddFunc(cfg.Schedule, func() {
			safe.RunWithLog(func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute*5)
				defer cancel()

				n, err := reaper.Reap(ctx, time.Now())
				if err != nil {
					slog.Error("Failed to reap expired workspaces", slog.String("component", "reaper"), slog.String("error", err.Error()))
					return
				}
				if n > 0 {
					slog.Info("Reaped expired workspaces", slog.String("component", "reaper"), slog.Int("count", n))
				}
			}, "reaper")
		})
		if err != nil {
			slog.Error("invalid reaper schedule", slog.String("component", "reaper"), slog.String("schedule", cfg.Schedule), slog.String("error", err.Error()))
		}
	})
}
