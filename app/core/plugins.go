package core

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

type Plugins interface {
	Name() string
	Install(*Core) error
	TryLock(ctx context.Context, key string) (bool, error)
	UseLimiter(c *gin.Context, key string, method string, opts ...LimitOption) Limiter
}

type LimitConfig struct {
	Limit int
	Every time.Duration
}

type LimitOption func(l *LimitConfig)

func WithLimit(limit int) LimitOption {
	return func(l *LimitConfig) {
		l.Limit = limit
	}
}

func WithRange(r time.Duration) LimitOption {
	return func(l *LimitConfig) {
		l.Every = r
	}
}

// WithRule applies a configured limit rule.
func WithRule(r LimitRule) LimitOption {
	return func(l *LimitConfig) {
		if r.Limit > 0 {
			l.Limit = r.Limit
		}
		if r.Window > 0 {
			l.Every = r.Every()
		}
	}
}

type Limiter interface {
	Allow() bool
}

type SetupFunc func() Plugins

func (c *Core) InstallPlugins(p Plugins) {
	if err := p.Install(c); err != nil {
		panic(err)
	}
	c.Plugins = p
}
