package memory

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/store"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.PublicKey()
}

func TestAccountStore_Commit(t *testing.T) {
	ctx := context.Background()
	db := New()
	accounts := NewAccountStore(db)
	transactions := NewTransactionStore(db)

	address := newKey(t)
	_, err := accounts.Find(ctx, address)
	require.True(t, store.IsErrNotFound(err))

	created := &core.Account{Address: address, Lamports: 100, Owner: solana.SystemProgramID, Version: 1}
	record := &core.Transaction{Signature: solana.Signature{1}, Payer: address, Status: core.TransactionStatusSucceeded}
	require.NoError(t, accounts.Commit(ctx, []*core.AccountChange{{Account: created}}, record))
	require.Equal(t, uint64(1), record.ID)

	got, err := accounts.Find(ctx, address)
	require.NoError(t, err)
	require.Equal(t, uint64(100), got.Lamports)

	tx, err := transactions.FindSignature(ctx, record.Signature)
	require.NoError(t, err)
	require.Equal(t, address, tx.Payer)

	t.Run("stale version", func(t *testing.T) {
		stale := &core.Account{Address: address, Lamports: 50, Owner: solana.SystemProgramID, Version: 3}
		err := accounts.Commit(ctx, []*core.AccountChange{{Account: stale, Version: 2}}, nil)
		require.ErrorIs(t, err, store.ErrOptimisticLock)
	})

	t.Run("insert existing", func(t *testing.T) {
		err := accounts.Commit(ctx, []*core.AccountChange{{Account: created}}, nil)
		require.ErrorIs(t, err, store.ErrOptimisticLock)
	})

	t.Run("duplicate signature leaves accounts untouched", func(t *testing.T) {
		updated := &core.Account{Address: address, Lamports: 10, Owner: solana.SystemProgramID, Version: 2}
		dup := &core.Transaction{Signature: record.Signature}
		require.Error(t, accounts.Commit(ctx, []*core.AccountChange{{Account: updated, Version: 1}}, dup))

		got, err := accounts.Find(ctx, address)
		require.NoError(t, err)
		require.Equal(t, uint64(100), got.Lamports)
	})

	t.Run("delete", func(t *testing.T) {
		gone := &core.Account{Address: address, Owner: solana.SystemProgramID}
		require.NoError(t, accounts.Commit(ctx, []*core.AccountChange{{Account: gone, Deleted: true, Version: 1}}, nil))

		_, err := accounts.Find(ctx, address)
		require.True(t, store.IsErrNotFound(err))
	})
}

func TestAccountStore_ListOwner(t *testing.T) {
	ctx := context.Background()
	accounts := NewAccountStore(New())

	program := newKey(t)
	var changes []*core.AccountChange
	for i := 0; i < 5; i++ {
		changes = append(changes, &core.AccountChange{Account: &core.Account{Address: newKey(t), Lamports: 1, Owner: program, Version: 1}})
	}
	changes = append(changes, &core.AccountChange{Account: &core.Account{Address: newKey(t), Lamports: 1, Owner: solana.SystemProgramID, Version: 1}})
	require.NoError(t, accounts.Commit(ctx, changes, nil))

	var (
		after string
		seen  []string
	)

	for {
		page, err := accounts.ListOwner(ctx, program, after, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}

		for _, account := range page {
			require.Equal(t, program, account.Owner)
			require.Greater(t, account.Address.String(), after)
			seen = append(seen, account.Address.String())
			after = account.Address.String()
		}
	}

	require.Len(t, seen, 5)
}

func TestTransactionStore_ListPayer(t *testing.T) {
	ctx := context.Background()
	transactions := NewTransactionStore(New())

	payer := newKey(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, transactions.Create(ctx, &core.Transaction{Payer: payer, Instruction: "airdrop"}))
		require.NoError(t, transactions.Create(ctx, &core.Transaction{Payer: newKey(t)}))
	}

	txs, err := transactions.ListPayer(ctx, payer, 0, 10)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	txs, err = transactions.ListPayer(ctx, payer, txs[0].ID, 1)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, uint64(3), txs[0].ID)

	_, err = transactions.FindSignature(ctx, solana.Signature{})
	require.True(t, store.IsErrNotFound(err))
}

func TestPropertyStore(t *testing.T) {
	ctx := context.Background()
	properties := NewPropertyStore(New())

	var cursor string
	require.NoError(t, properties.Get(ctx, "cursor", &cursor))
	require.Empty(t, cursor)

	require.NoError(t, properties.Set(ctx, "cursor", "abc"))
	require.NoError(t, properties.Get(ctx, "cursor", &cursor))
	require.Equal(t, "abc", cursor)
}
