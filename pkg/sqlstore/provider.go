package sqlstore

import (
	"math/rand/v2"

	"github.com/jmoiron/sqlx"
)

type SqlCommons interface {
	GetTable(...interface{}) string
}

type ConnectConfig interface {
	FormatDSN() string
}

type SqlProvider struct {
	master   *sqlx.DB
	replicas []*sqlx.DB
	dbname   string
}

func (s *SqlProvider) GetMaster() *sqlx.DB {
	return s.master
}

func (s *SqlProvider) GetReplica() *sqlx.DB {
	return s.replicas[rand.IntN(len(s.replicas))]
}

// 建立数据库连接
func (s *SqlProvider) initConnection(conf ConnectConfig) (*sqlx.DB, error) {
	return sqlx.Open("postgres", conf.FormatDSN())
}

func MustSetupProvider(m ConnectConfig, s ...ConnectConfig) *SqlProvider {
	provider := &SqlProvider{}

	engine, err := provider.initConnection(m)
	if err != nil {
		panic(err)
	}
	provider.master = engine

	for _, v := range s {
		slave, err := provider.initConnection(v)
		if err != nil {
			panic(err)
		}
		provider.replicas = append(provider.replicas, slave)
	}

	if len(provider.replicas) == 0 {
		provider.replicas = append(provider.replicas, engine)
	}

	return provider
}

func (s *SqlProvider) Close() error {
	err := s.master.Close()
	for _, r := range s.replicas {
		if r != s.master {
			r.Close()
		}
	}
	return err
}

func (s *SqlProvider) GetDBName() (string, error) {
	if s.dbname == "" {
		// 获取当前使用的数据库名
		var dbName string
		err := s.GetMaster().QueryRow("SELECT current_database()").Scan(&dbName)
		if err != nil {
			return "", err
		}
		s.dbname = dbName
	}

	return s.dbname, nil
}
