package sqlstore

import (
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/quka-ai/workbench/app/store"
	"github.com/quka-ai/workbench/pkg/register"
	"github.com/quka-ai/workbench/pkg/sqlstore"
	"github.com/quka-ai/workbench/pkg/types"
)

const NAME = "postgres"

//go:embed sql/*.sql
var CreateTableFiles embed.FS

func init() {
	sq.StatementBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

type Provider struct {
	*sqlstore.SqlProvider
	stores *Stores
}

var _ store.Provider = (*Provider)(nil)

type Stores struct {
	store.WorkspaceStore
}

type RegisterKey struct{}

func MustSetup(m sqlstore.ConnectConfig, s ...sqlstore.ConnectConfig) func() *Provider {
	provider := &Provider{
		SqlProvider: sqlstore.MustSetupProvider(m, s...),
		stores:      &Stores{},
	}

	for _, f := range register.ResolveFuncHandlers[*Provider](RegisterKey{}) {
		f(provider)
	}

	return func() *Provider {
		return provider
	}
}

func (p *Provider) Name() string {
	return NAME
}

// Install 初始化所有数据表
func (p *Provider) Install() error {
	if err := p.ensureMigrationTable(); err != nil {
		return err
	}

	files, err := CreateTableFiles.ReadDir("sql")
	if err != nil {
		return err
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() < files[j].Name()
	})

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		if executed, err := p.isFileExecuted(file.Name()); err != nil {
			return err
		} else if executed {
			continue
		}

		raw, err := CreateTableFiles.ReadFile("sql/" + file.Name())
		if err != nil {
			return err
		}

		if _, err = p.GetMaster().Exec(string(raw)); err != nil {
			return fmt.Errorf("failed to execute %s: %w", file.Name(), err)
		}
		slog.Info("sql migration executed", slog.String("component", "sqlstore"), slog.String("file", file.Name()))

		if err = p.markFileExecuted(file.Name()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) ensureMigrationTable() error {
	createTableSQL := `
CREATE TABLE IF NOT EXISTS ` + types.TABLE_PREFIX + `schema_migrations (
    filename VARCHAR(255) PRIMARY KEY,
    executed_at BIGINT NOT NULL
);`
	_, err := p.GetMaster().Exec(createTableSQL)
	return err
}

func (p *Provider) isFileExecuted(filename string) (bool, error) {
	var count int
	err := p.GetMaster().Get(&count,
		"SELECT COUNT(*) FROM "+types.TABLE_PREFIX+"schema_migrations WHERE filename = $1", filename)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *Provider) markFileExecuted(filename string) error {
	_, err := p.GetMaster().Exec(
		"INSERT INTO "+types.TABLE_PREFIX+"schema_migrations (filename, executed_at) VALUES ($1, $2) ON CONFLICT (filename) DO NOTHING",
		filename, time.Now().Unix())
	return err
}

func (p *Provider) WorkspaceStore() store.WorkspaceStore {
	return p.stores.WorkspaceStore
}
