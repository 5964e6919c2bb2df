package plugins

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/time/rate"

	"github.com/quka-ai/workbench/app/core"
	"github.com/quka-ai/workbench/pkg/safe"
)

func NewSingleLock() *SingleLock {
	return &SingleLock{
		locks: make(map[string]bool),
	}
}

// SingleLock is a process local lock table, released when the holder's context ends.
type SingleLock struct {
	mu    sync.Mutex
	locks map[string]bool
}

func (s *SingleLock) TryLock(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[key] {
		return false, nil
	}
	s.locks[key] = true
	go safe.Run(func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.locks, key)
	})
	return true, nil
}

func NewKeyLimiter() *KeyLimiter {
	return &KeyLimiter{
		limiters: cmap.New[*rate.Limiter](),
	}
}

// KeyLimiter keeps one token bucket per method and key.
type KeyLimiter struct {
	limiters cmap.ConcurrentMap[string, *rate.Limiter]
}

// UseLimiter 默认每分钟 60 次
func (k *KeyLimiter) UseLimiter(_ *gin.Context, key string, method string, opts ...core.LimitOption) core.Limiter {
	cfg := &core.LimitConfig{
		Limit: 60,
		Every: time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 1
	}

	return k.limiters.Upsert(method+":"+key, nil, func(exist bool, valueInMap, _ *rate.Limiter) *rate.Limiter {
		if exist {
			return valueInMap
		}
		return rate.NewLimiter(rate.Every(cfg.Every/time.Duration(cfg.Limit)), cfg.Limit)
	})
}
