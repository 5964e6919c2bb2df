package service

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/quka-ai/workbench/app/core"
	"github.com/quka-ai/workbench/app/logic/v1/process"
	"github.com/quka-ai/workbench/pkg/plugins"
)

type Options struct {
	ConfigPath string
	Mode       string
}

func (o *Options) AddFlags(flagSet *pflag.FlagSet) {
	// Add flags for generic options
	flagSet.StringVarP(&o.ConfigPath, "config", "c", "", "toml config file, environment variables are used when empty")
	flagSet.StringVarP(&o.Mode, "mode", "m", "standard", fmt.Sprintf("service mode, one of [%s]", strings.Join(plugins.Modes(), ", ")))
}

func NewCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "service",
		Short: "workspace orchestration service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func Run(ctx context.Context, opts *Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := core.MustSetupCore(core.MustLoadBaseConfig(opts.ConfigPath))
	defer app.Close()

	plugins.Setup(app.InstallPlugins, opts.Mode)

	p := process.NewProcess(app)
	p.Start()
	defer p.Stop()

	if err := serve(ctx, app); err != nil {
		slog.Error("http server stopped", slog.String("component", "service"), slog.String("error", err.Error()))
		return err
	}
	slog.Info("service stopped", slog.String("component", "service"))
	return nil
}
