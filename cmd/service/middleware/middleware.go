package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quka-ai/workbench/app/core"
	"github.com/quka-ai/workbench/app/response"
	"github.com/quka-ai/workbench/pkg/errors"
	"github.com/quka-ai/workbench/pkg/i18n"
)

func I18n(appCore *core.Core) gin.HandlerFunc {
	return response.ProvideResponseLocalizer(appCore.Localizer())
}

// Cors allows every origin, the chat UI is usually served from another host.
func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Accept-Language, X-Request-Id")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Content-Type, X-Request-Id")
	}
	if method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}

// Metrics records response time per route and counts non 2xx answers.
func Metrics(appCore *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		api := c.FullPath()
		if api == "" {
			api = "unknown"
		}
		timer := appCore.Metrics().ApiResponseTimer(api)
		c.Next()
		timer.ObserveDuration()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			appCore.Metrics().ApiErrorInc(c.Request.Method, api, status)
		}
	}
}

// Recovery turns a panic into the regular error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		response.APIError(c, errors.New("middleware.Recovery", i18n.ERROR_INTERNAL, fmt.Errorf("panic: %v", recovered)))
	})
}

const (
	LIMIT_API    = "api"
	LIMIT_CREATE = "create"
	LIMIT_CHAT   = "chat"
)

type LimiterFunc func(key string, opts ...core.LimitOption) gin.HandlerFunc

// LimitKey scopes a limiter bucket to one operation, HTTP routes and the relay share it.
func LimitKey(operation, key string) string {
	return operation + ":" + key
}

func UseLimit(appCore *core.Core, operation string, genKeyFunc func(c *gin.Context) string, opts ...core.LimitOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !appCore.UseLimiter(c, genKeyFunc(c), operation, opts...).Allow() {
			response.APIError(c, errors.New("middleware.limiter", i18n.ERROR_TOO_MANY_REQUESTS, nil).Code(http.StatusTooManyRequests))
		}
	}
}
