package srv

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/quka-ai/workbench/pkg/provisioner"
)

type Provisioner interface {
	Create(ctx context.Context, repoURL, id string) error
	Exec(ctx context.Context, id, message string) (string, error)
	Info(ctx context.Context, id string) (provisioner.Info, error)
	Stop(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type ProvisionerConfig struct {
	Bin     string   `toml:"bin"`
	Agent   []string `toml:"agent"`   // command run inside the container, the message is appended
	Timeout int      `toml:"timeout"` // 秒
}

func (c *ProvisionerConfig) FromENV() {
	if v := os.Getenv("PROVISIONER_BIN"); v != "" {
		c.Bin = v
	}
}

// ApplyProvisioner looks the binary up once. A missing binary leaves the provisioner unset
// and chat falls back to the hosted model.
func ApplyProvisioner(cfg ProvisionerConfig) ApplyFunc {
	return func(s *Srv) {
		p, err := provisioner.New(provisioner.Config{
			Bin:     cfg.Bin,
			Agent:   cfg.Agent,
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		})
		if err != nil {
			slog.Info("provisioner not available, using hosted model", slog.String("component", "srv"), slog.String("bin", cfg.Bin), slog.String("error", err.Error()))
			return
		}
		slog.Info("provisioner available", slog.String("component", "srv"), slog.String("bin", p.Bin()))
		s.provisioner = p
	}
}

func WithProvisioner(p Provisioner) ApplyFunc {
	return func(s *Srv) {
		s.provisioner = p
	}
}
