package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/quka-ai/workbench/app/store"
	"github.com/quka-ai/workbench/app/store/memstore"
	"github.com/quka-ai/workbench/app/store/redisstore"
	"github.com/quka-ai/workbench/app/store/sqlstore"
)

// SetupRedis builds a single node or cluster client from the redis section.
func SetupRedis(cfg RedisConfig) redis.UniversalClient {
	seconds := func(n, def int) time.Duration {
		return time.Duration(lo.Ternary(n > 0, n, def)) * time.Second
	}

	if cfg.Cluster {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        cfg.ClusterAddrs,
			Password:     lo.Ternary(cfg.ClusterPasswd != "", cfg.ClusterPasswd, cfg.Password),
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			MaxRetries:   cfg.MaxRetries,
			DialTimeout:  seconds(cfg.DialTimeout, 5),
			ReadTimeout:  seconds(cfg.ReadTimeout, 3),
			WriteTimeout: seconds(cfg.WriteTimeout, 3),
		})
	}

	return redis.NewClient(&redis.Options{
		Network:      "tcp",
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  seconds(cfg.DialTimeout, 5),
		ReadTimeout:  seconds(cfg.ReadTimeout, 3),
		WriteTimeout: seconds(cfg.WriteTimeout, 3),
	})
}

// NewStoreFromConfig picks the workspace store driver named by store.driver.
func NewStoreFromConfig(cfg CoreConfig) (store.Provider, error) {
	switch strings.ToLower(cfg.Store.Driver) {
	case "", memstore.NAME:
		return memstore.New(), nil
	case redisstore.NAME:
		if cfg.Redis.Addr == "" && len(cfg.Redis.ClusterAddrs) == 0 {
			return nil, fmt.Errorf("redis store selected without redis address")
		}
		return redisstore.New(SetupRedis(cfg.Redis), cfg.Redis.KeyPrefix), nil
	case sqlstore.NAME:
		if cfg.Postgres.DSN == "" {
			return nil, fmt.Errorf("postgres store selected without dsn")
		}
		return sqlstore.MustSetup(cfg.Postgres)(), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}
