package db

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tsenart/nap"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// DB is a master/replica connection plus the statement builder matching the
// driver's placeholder style.
type DB struct {
	*nap.DB
	Driver  string
	Builder sq.StatementBuilderType
}

// Open connects to dsn, a semicolon separated list whose first entry is the
// master and the rest read replicas.
func Open(driver, dsn string) (*DB, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)

	switch driver {
	case DriverMySQL:
		dsns := strings.Split(dsn, ";")
		for i, s := range dsns {
			cfg, err := mysql.ParseDSN(s)
			if err != nil {
				return nil, err
			}

			// schema migrations hold several statements per file
			cfg.MultiStatements = true
			dsns[i] = cfg.FormatDSN()
		}
		dsn = strings.Join(dsns, ";")
	case DriverPostgres:
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	conn, err := nap.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// one connection, so :memory: databases are shared and writes serialize
		conn.SetMaxOpenConns(1)
	}

	return &DB{
		DB:      conn,
		Driver:  driver,
		Builder: builder,
	}, nil
}
