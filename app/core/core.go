package core

import (
	"io"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/quka-ai/workbench/app/core/srv"
	"github.com/quka-ai/workbench/app/store"
	"github.com/quka-ai/workbench/pkg/i18n"
	"github.com/quka-ai/workbench/pkg/types"
)

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	stores     store.Provider
	httpEngine *gin.Engine
	localizer  i18n.Localizer

	metrics *Metrics
	Plugins
}

func SetupLogger(cfg Log) {
	var writer io.Writer = os.Stdout
	if cfg.Path != "" {
		writer = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    500, // megabytes
			MaxBackups: 3,
			MaxAge:     28,   //days
			Compress:   true, // disabled by default
		}
	}
	l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(l)
}

func MustSetupCore(cfg CoreConfig) *Core {
	SetupLogger(cfg.Log)

	core := &Core{
		cfg:        cfg,
		metrics:    NewMetrics("workbench", "core"),
		httpEngine: gin.New(),
		localizer:  i18n.NewLocalizer(types.LANGUAGE_EN_KEY, types.LANGUAGE_CN_KEY),
	}

	return core
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Localizer() i18n.Localizer {
	return s.localizer
}

// SetupStore installs the store driver, creating tables where the driver needs them.
func (s *Core) SetupStore(p store.Provider) error {
	if err := p.Install(); err != nil {
		return err
	}
	s.stores = p
	slog.Info("store installed", slog.String("component", "core"), slog.String("driver", p.Name()))
	return nil
}

func (s *Core) Store() store.Provider {
	return s.stores
}

func (s *Core) SetupSrv(opts ...srv.ApplyFunc) {
	s.srv = srv.SetupSrvs(opts...)
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}

func (s *Core) Close() error {
	if s.stores == nil {
		return nil
	}
	return s.stores.Close()
}
