package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "dsn")
	require.Error(t, err)
}

func TestOpen_Placeholders(t *testing.T) {
	tests := []struct {
		driver string
		dsn    string
		want   string
	}{
		{driver: DriverMySQL, dsn: "root:secret@tcp(127.0.0.1:3306)/vault", want: "SELECT value FROM properties WHERE name = ?"},
		{driver: DriverPostgres, dsn: "postgres://localhost/vault?sslmode=disable", want: "SELECT value FROM properties WHERE name = $1"},
		{driver: DriverSQLite, dsn: ":memory:", want: "SELECT value FROM properties WHERE name = ?"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			conn, err := Open(tt.driver, tt.dsn)
			require.NoError(t, err)
			defer conn.Close()

			stmt, _ := conn.Builder.Select("value").From("properties").Where("name = ?", "k").MustSql()
			require.Equal(t, tt.want, stmt)
		})
	}
}

func TestMigrateData(t *testing.T) {
	require.Equal(t, "BYTEA", MigrateData{Driver: DriverPostgres}.Blob())
	require.Equal(t, "BLOB", MigrateData{Driver: DriverSQLite}.Blob())
	require.Contains(t, MigrateData{Driver: DriverMySQL}.Address(), "ascii_bin")
	require.Contains(t, MigrateData{Driver: DriverSQLite}.Serial(), "AUTOINCREMENT")
}

func TestMigrate_SQLite(t *testing.T) {
	conn, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		t.Skipf("sqlite3 unavailable: %v", err)
	}

	require.NoError(t, Migrate(conn))
	require.NoError(t, Migrate(conn), "migrations are idempotent")

	for _, table := range []string{"accounts", "transactions", "properties"} {
		var n int
		require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
		require.Zero(t, n)
	}
}
