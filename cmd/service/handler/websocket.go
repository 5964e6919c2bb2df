package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/quka-ai/workbench/app/core"
	v1 "github.com/quka-ai/workbench/app/logic/v1"
	"github.com/quka-ai/workbench/app/response"
	"github.com/quka-ai/workbench/cmd/service/middleware"
	"github.com/quka-ai/workbench/pkg/socket/relay"
	"github.com/quka-ai/workbench/pkg/types"
)

// Websocket upgrades to the chat relay. One relay server serves every socket of the process.
func Websocket(appCore *core.Core) gin.HandlerFunc {
	cfg := appCore.Cfg()

	opts := []relay.Option{
		relay.WithConnectionGauge(appCore.Metrics().RelayConnections()),
		relay.WithLocalizer(appCore.Localizer(), func(r *http.Request) string {
			return response.LangFromHeader(r.Header.Get("Accept-Language"))
		}),
		// same bucket as POST /api/workspaces/:id/chat
		relay.WithChatLimit(func(workspaceID string) bool {
			return appCore.UseLimiter(nil, middleware.LimitKey(middleware.LIMIT_CHAT, workspaceID), middleware.LIMIT_CHAT,
				core.WithRule(cfg.RateLimit.Chat)).Allow()
		}),
	}
	if cfg.Relay.PingInterval > 0 {
		opts = append(opts, relay.WithPingInterval(time.Duration(cfg.Relay.PingInterval)*time.Second))
	}
	if cfg.Relay.ReadLimit > 0 {
		opts = append(opts, relay.WithReadLimit(cfg.Relay.ReadLimit))
	}
	if len(cfg.Relay.AllowOrigins) > 0 {
		opts = append(opts, relay.WithCheckOrigin(func(r *http.Request) bool {
			return lo.Contains(cfg.Relay.AllowOrigins, r.Header.Get("Origin"))
		}))
	}

	server := relay.NewServer(appCore.Srv().RelayHub(), relay.DispatchFunc(func(ctx context.Context, workspaceID, message string) types.DispatchResult {
		return v1.NewWorkspaceLogic(ctx, appCore).Dispatch(workspaceID, message)
	}), opts...)

	return func(c *gin.Context) {
		server.ServeHTTP(c.Writer, c.Request)
	}
}
