package account

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/store"
	"github.com/pandodao/vault/store/db"
	"github.com/pandodao/vault/store/transaction"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *db.DB {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	if err := conn.Ping(); err != nil {
		t.Skipf("sqlite3 unavailable: %v", err)
	}

	require.NoError(t, db.Migrate(conn))
	return conn
}

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.PublicKey()
}

func TestCommit(t *testing.T) {
	ctx := context.Background()
	conn := openDB(t)
	accounts := New(conn)
	transactions := transaction.New(conn)

	program := newKey(t)
	address := newKey(t)

	created := &core.Account{Address: address, Lamports: 1_183_200, Owner: program, Data: []byte{1, 2, 3}, Version: 1}
	record := &core.Transaction{
		TraceID:     "6d9a0d0e-5a7f-4a7c-9d2f-3f6f2f2b8a11",
		CreatedAt:   time.Now(),
		Signature:   solana.Signature{7},
		Payer:       address,
		Program:     program,
		Instruction: "initialize",
		Status:      core.TransactionStatusSucceeded,
	}
	require.NoError(t, accounts.Commit(ctx, []*core.AccountChange{{Account: created}}, record))
	require.NotZero(t, record.ID)

	got, err := accounts.Find(ctx, address)
	require.NoError(t, err)
	require.Equal(t, created, got)

	found, err := transactions.FindSignature(ctx, record.Signature)
	require.NoError(t, err)
	require.Equal(t, "initialize", found.Instruction)

	t.Run("update", func(t *testing.T) {
		updated := got.Clone()
		updated.Lamports = 2_000_000
		updated.Version = 2
		require.NoError(t, accounts.Commit(ctx, []*core.AccountChange{{Account: updated, Version: 1}}, nil))

		got, err := accounts.Find(ctx, address)
		require.NoError(t, err)
		require.Equal(t, uint64(2_000_000), got.Lamports)
	})

	t.Run("stale version rolls back the whole commit", func(t *testing.T) {
		other := &core.Account{Address: newKey(t), Lamports: 1, Owner: solana.SystemProgramID, Version: 1}
		stale := &core.Account{Address: address, Lamports: 5, Owner: program, Version: 2}

		err := accounts.Commit(ctx, []*core.AccountChange{{Account: other}, {Account: stale, Version: 1}}, nil)
		require.ErrorIs(t, err, store.ErrOptimisticLock)

		_, err = accounts.Find(ctx, other.Address)
		require.True(t, store.IsErrNotFound(err))
	})

	t.Run("delete", func(t *testing.T) {
		gone := &core.Account{Address: address, Owner: solana.SystemProgramID}
		require.NoError(t, accounts.Commit(ctx, []*core.AccountChange{{Account: gone, Deleted: true, Version: 2}}, nil))

		_, err := accounts.Find(ctx, address)
		require.True(t, store.IsErrNotFound(err))
	})
}

func TestListOwner(t *testing.T) {
	ctx := context.Background()
	accounts := New(openDB(t))

	program := newKey(t)
	var changes []*core.AccountChange
	for i := 0; i < 7; i++ {
		changes = append(changes, &core.AccountChange{Account: &core.Account{Address: newKey(t), Lamports: 1, Owner: program, Version: 1}})
	}
	changes = append(changes, &core.AccountChange{Account: &core.Account{Address: newKey(t), Lamports: 1, Owner: solana.SystemProgramID, Version: 1}})
	require.NoError(t, accounts.Commit(ctx, changes, nil))

	var (
		after string
		n     int
	)

	for {
		page, err := accounts.ListOwner(ctx, program, after, 3)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}

		for _, account := range page {
			require.Equal(t, program, account.Owner)
			require.Greater(t, account.Address.String(), after)
			after = account.Address.String()
			n++
		}
	}

	require.Equal(t, 7, n)
}
