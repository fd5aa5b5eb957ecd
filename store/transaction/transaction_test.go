package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/store"
	"github.com/pandodao/vault/store/db"
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

func TestStore(t *testing.T) {
	ctx := context.Background()
	transactions := New(openDB(t))

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	payer := key.PublicKey()

	sig, err := key.Sign([]byte("payload"))
	require.NoError(t, err)

	now := time.UnixMilli(time.Now().UnixMilli())
	failed := &core.Transaction{
		TraceID:     uuid.NewString(),
		CreatedAt:   now,
		Signature:   sig,
		Slot:        12,
		Payer:       payer,
		Program:     solana.SystemProgramID,
		Instruction: "withdraw",
		Amount:      1_000_000_000,
		Status:      core.TransactionStatusFailed,
		Error:       "vault balance would fall below the rent-exemption floor",
	}
	require.NoError(t, transactions.Create(ctx, failed))

	// airdrops carry no signature, several may coexist
	for i := 0; i < 2; i++ {
		require.NoError(t, transactions.Create(ctx, &core.Transaction{
			TraceID:     uuid.NewString(),
			CreatedAt:   now,
			Payer:       payer,
			Program:     solana.SystemProgramID,
			Instruction: "airdrop",
			Amount:      1,
			Status:      core.TransactionStatusSucceeded,
		}))
	}

	got, err := transactions.FindSignature(ctx, sig)
	require.NoError(t, err)
	require.Equal(t, failed, got)

	_, err = transactions.FindSignature(ctx, solana.Signature{})
	require.True(t, store.IsErrNotFound(err))

	txs, err := transactions.ListPayer(ctx, payer, 0, 10)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	require.True(t, txs[1].Signature.IsZero())

	txs, err = transactions.ListPayer(ctx, payer, txs[0].ID, 1)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "airdrop", txs[0].Instruction)
}
