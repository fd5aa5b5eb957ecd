package property

import (
	"context"
	"testing"

	"github.com/pandodao/vault/store/db"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	conn, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		t.Skipf("sqlite3 unavailable: %v", err)
	}
	require.NoError(t, db.Migrate(conn))

	ctx := context.Background()
	properties := New(conn)

	type report struct {
		States int `json:"states"`
	}

	var r report
	require.NoError(t, properties.Get(ctx, "auditor_report", &r))
	require.Zero(t, r.States)

	for _, states := range []int{3, 3, 5} {
		require.NoError(t, properties.Set(ctx, "auditor_report", report{States: states}))
		require.NoError(t, properties.Get(ctx, "auditor_report", &r))
		require.Equal(t, states, r.States)
	}
}
