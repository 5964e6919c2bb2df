package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/quka-ai/workbench/app/core/srv"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := DefaultConfig()
	if err = toml.Unmarshal(raw, &conf); err != nil {
		panic(err)
	}

	return conf
}

func LoadBaseConfigFromENV() CoreConfig {
	c := DefaultConfig()
	c.FromENV()
	return c
}

// DefaultConfig holds the values used when neither file nor environment sets them.
func DefaultConfig() CoreConfig {
	return CoreConfig{
		Addr: ":3000",
		Log: Log{
			Level: "info",
		},
		Store: StoreConfig{
			Driver: "memory",
		},
		Redis: RedisConfig{
			KeyPrefix: "workbench",
		},
		AI: srv.AIConfig{
			Driver: "anthropic",
		},
		Provisioner: srv.ProvisionerConfig{
			Bin:     "workspace-provisioner",
			Timeout: 300,
		},
		RateLimit: RateLimitConfig{
			API:    LimitRule{Limit: 100, Window: 15 * 60},
			Chat:   LimitRule{Limit: 20, Window: 60},
			Create: LimitRule{Limit: 10, Window: 60 * 60},
		},
		Relay: RelayConfig{
			PingInterval: 15,
			ReadLimit:    1 << 20,
		},
		Reaper: ReaperConfig{
			Schedule: "@every 10m",
			TTL:      24,
		},
	}
}

type CoreConfig struct {
	Addr     string      `toml:"addr"`
	Log      Log         `toml:"log"`
	Store    StoreConfig `toml:"store"`
	Postgres PGConfig    `toml:"postgres"`
	Redis    RedisConfig `toml:"redis"`

	AI          srv.AIConfig          `toml:"ai"`
	GitHub      srv.GitHubConfig      `toml:"github"`
	Provisioner srv.ProvisionerConfig `toml:"provisioner"`

	RateLimit RateLimitConfig `toml:"rate_limit"`
	Relay     RelayConfig     `toml:"relay"`
	Reaper    ReaperConfig    `toml:"reaper"`
}

type StoreConfig struct {
	Driver string `toml:"driver"` // memory, redis, postgres
}

type LimitRule struct {
	Limit  int `toml:"limit"`
	Window int `toml:"window"` // 秒
}

func (r LimitRule) Every() time.Duration {
	return time.Duration(r.Window) * time.Second
}

type RateLimitConfig struct {
	API    LimitRule `toml:"api"`
	Chat   LimitRule `toml:"chat"`
	Create LimitRule `toml:"create"`
}

type RelayConfig struct {
	PingInterval int      `toml:"ping_interval"` // 秒
	ReadLimit    int64    `toml:"read_limit"`    // bytes
	AllowOrigins []string `toml:"allow_origins"` // 为空则不校验
}

type ReaperConfig struct {
	Schedule string `toml:"schedule"` // cron 表达式，为空则关闭
	TTL      int    `toml:"ttl"`      // 小时
}

func (c *CoreConfig) FromENV() {
	setFromEnv(&c.Addr, "WORKBENCH_ADDR")
	c.Log.FromENV()
	setFromEnv(&c.Store.Driver, "WORKBENCH_STORE_DRIVER")
	c.Postgres.FromENV()
	c.Redis.FromENV()
	c.AI.FromENV()
	c.GitHub.FromENV()
	c.Provisioner.FromENV()
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	setFromEnv(&m.DSN, "WORKBENCH_POSTGRES_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

type RedisConfig struct {
	// 单机模式配置
	Addr     string `toml:"addr"`     // Redis地址，格式: host:port
	Password string `toml:"password"` // Redis密码
	DB       int    `toml:"db"`       // Redis数据库索引 (0-15)

	// 集群模式配置
	Cluster       bool     `toml:"cluster"`        // 是否启用集群模式
	ClusterAddrs  []string `toml:"cluster_addrs"`  // 集群节点地址列表
	ClusterPasswd string   `toml:"cluster_passwd"` // 集群密码

	// 连接池配置
	PoolSize     int `toml:"pool_size"`      // 连接池大小，默认10
	MinIdleConns int `toml:"min_idle_conns"` // 最小空闲连接数，默认0
	MaxRetries   int `toml:"max_retries"`    // 最大重试次数，默认3
	DialTimeout  int `toml:"dial_timeout"`   // 连接超时(秒)，默认5
	ReadTimeout  int `toml:"read_timeout"`   // 读超时(秒)，默认3
	WriteTimeout int `toml:"write_timeout"`  // 写超时(秒)，默认3

	KeyPrefix string `toml:"key_prefix"` // Redis键前缀，用于隔离不同环境/应用
}

func (r *RedisConfig) FromENV() {
	setFromEnv(&r.Addr, "WORKBENCH_REDIS_ADDR")
	setFromEnv(&r.Password, "WORKBENCH_REDIS_PASSWORD")
	if dbStr := os.Getenv("WORKBENCH_REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			r.DB = db
		}
	}
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	setFromEnv(&l.Level, "WORKBENCH_LOG_LEVEL")
	setFromEnv(&l.Path, "WORKBENCH_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
