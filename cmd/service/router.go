package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quka-ai/workbench/app/core"
	"github.com/quka-ai/workbench/app/response"
	"github.com/quka-ai/workbench/cmd/service/handler"
	"github.com/quka-ai/workbench/cmd/service/middleware"
	"github.com/quka-ai/workbench/pkg/metrics"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

// serve blocks until ctx is done, then drains in flight requests.
func serve(ctx context.Context, core *core.Core) error {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	srv := &http.Server{
		Addr:    core.Cfg().Addr,
		Handler: core.HttpEngine(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", slog.String("component", "service"), slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()
		return srv.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}

func GetIPLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, key, func(c *gin.Context) string {
			return middleware.LimitKey(key, c.ClientIP())
		}, opts...)
	}
}

func GetWorkspaceLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, key, func(c *gin.Context) string {
			return middleware.LimitKey(key, c.Param("id"))
		}, opts...)
	}
}

func setupHttpRouter(s *handler.HttpSrv) {
	ipLimit := GetIPLimitBuilder(s.Core)
	workspaceLimit := GetWorkspaceLimitBuilder(s.Core)
	limits := s.Core.Cfg().RateLimit

	s.Engine.Use(middleware.Recovery())
	s.Engine.Use(middleware.I18n(s.Core), response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.Metrics(s.Core))

	s.Engine.GET("/health", s.Health)
	s.Engine.GET("/metrics", metrics.DefaultExportHandler())
	s.Engine.GET("/ws", handler.Websocket(s.Core))

	api := s.Engine.Group("/api")
	api.Use(ipLimit(middleware.LIMIT_API, core.WithRule(limits.API)))
	{
		workspaces := api.Group("/workspaces")
		{
			workspaces.GET("", s.ListWorkspaces)
			workspaces.POST("/create", ipLimit(middleware.LIMIT_CREATE, core.WithRule(limits.Create)), s.CreateWorkspace)
			workspaces.POST("/:id/chat", workspaceLimit(middleware.LIMIT_CHAT, core.WithRule(limits.Chat)), s.ChatWorkspace)
			workspaces.GET("/:id/status", s.GetWorkspaceStatus)
			workspaces.POST("/:id/stop", s.StopWorkspace)
			workspaces.DELETE("/:id", s.DeleteWorkspace)
		}
	}
}
