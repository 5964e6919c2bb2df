package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupConfigFromEnv(t *testing.T) {
	t.Setenv("WORKBENCH_ADDR", "localhost:11111")
	t.Setenv("WORKBENCH_STORE_DRIVER", "redis")
	t.Setenv("WORKBENCH_REDIS_DB", "2")
	t.Setenv("PROVISIONER_BIN", "/usr/local/bin/provision")
	t.Setenv("LLM_DRIVER", "openai")

	cfg := LoadBaseConfigFromENV()

	assert.Equal(t, "localhost:11111", cfg.Addr)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "/usr/local/bin/provision", cfg.Provisioner.Bin)
	assert.Equal(t, "openai", cfg.AI.Driver)
	// untouched values keep their defaults
	assert.Equal(t, 100, cfg.RateLimit.API.Limit)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.API.Every())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.toml")
	raw := `
addr = ":8080"

[store]
driver = "postgres"

[postgres]
dsn = "postgres://localhost/workbench"

[rate_limit.chat]
limit = 5
window = 30

[github]
token = "ghp_test"
owner = "acme"
[github.template]
owner = "acme"
name = "starter"
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg := MustLoadBaseConfig(path)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/workbench", cfg.Postgres.FormatDSN())
	assert.Equal(t, 5, cfg.RateLimit.Chat.Limit)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Chat.Every())
	assert.Equal(t, "acme/starter", cfg.GitHub.Template.String())
	// defaults survive partial files
	assert.Equal(t, 10, cfg.RateLimit.Create.Limit)
	assert.Equal(t, "@every 10m", cfg.Reaper.Schedule)
}

func TestSlogLevel(t *testing.T) {
	l := Log{Level: "WARN"}
	assert.Equal(t, "WARN", l.SlogLevel().String())
}
