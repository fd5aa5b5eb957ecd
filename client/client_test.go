package client

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/handler/api"
	"github.com/pandodao/vault/lamports"
	"github.com/pandodao/vault/ledger"
	"github.com/pandodao/vault/program/vault"
	"github.com/pandodao/vault/rent"
	"github.com/pandodao/vault/store"
	"github.com/pandodao/vault/store/memory"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, r rent.Rent) *VaultClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db := memory.New()
	l := ledger.New(
		memory.NewAccountStore(db),
		memory.NewTransactionStore(db),
		[]ledger.Program{vault.New(vault.ProgramID)},
		logger,
		ledger.Config{
			FeePerSignature:   ledger.DefaultFeePerSignature,
			Rent:              r,
			RecentBlockhashes: 32,
			FaucetLimit:       100 * lamports.PerSOL,
			Genesis:           t.Name(),
		},
	)

	svr := api.New(l, memory.NewPropertyStore(db), logger, api.Config{ProgramID: vault.ProgramID.String()})
	m := chi.NewMux()
	m.Mount("/api", svr.Handler())

	ts := httptest.NewServer(m)
	t.Cleanup(ts.Close)

	return NewVaultClient(New(ts.URL), vault.ProgramID)
}

func TestVaultLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newServer(t, rent.Free())

	owner, err := GenerateKeypair()
	require.NoError(t, err)
	intruder, err := GenerateKeypair()
	require.NoError(t, err)

	for _, key := range []solana.PrivateKey{owner, intruder} {
		_, err = c.Airdrop(ctx, key.PublicKey(), 5*lamports.PerSOL)
		require.NoError(t, err)
	}

	view, err := c.Vault(ctx, owner.PublicKey())
	require.NoError(t, err)
	require.Equal(t, api.VaultStatusUninitialized, view.Status)

	// initialize
	record, err := c.Initialize(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, "initialize", record.Instruction)

	view, err = c.Vault(ctx, owner.PublicKey())
	require.NoError(t, err)
	require.Equal(t, api.VaultStatusActive, view.Status)
	require.Zero(t, view.Balance)

	vaultAddress := solana.MustPublicKeyFromBase58(view.Vault)

	// deposit
	_, err = c.Deposit(ctx, owner, lamports.PerSOL)
	require.NoError(t, err)
	balance, err := c.Balance(ctx, vaultAddress)
	require.NoError(t, err)
	require.Equal(t, lamports.PerSOL, balance)

	// the intruder has no vault of its own
	failed, err := c.Withdraw(ctx, intruder, 1)
	require.ErrorIs(t, err, vault.ErrNotInitialized)
	require.NotNil(t, failed)
	require.Equal(t, core.TransactionStatusFailed, failed.Status)

	// withdraw everything above the floor
	_, err = c.Withdraw(ctx, owner, lamports.PerSOL)
	require.NoError(t, err)
	balance, err = c.Balance(ctx, vaultAddress)
	require.NoError(t, err)
	require.Zero(t, balance)

	// overdraw
	_, err = c.Withdraw(ctx, owner, 1)
	require.ErrorIs(t, err, vault.ErrInsufficientVaultBalance)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "InsufficientVaultBalance", apiErr.Body.Name)
	require.NotNil(t, apiErr.Body.Instruction)

	// close
	_, err = c.Deposit(ctx, owner, 2*lamports.PerSOL)
	require.NoError(t, err)
	before, err := c.Balance(ctx, owner.PublicKey())
	require.NoError(t, err)

	record, err = c.Close(ctx, owner)
	require.NoError(t, err)

	after, err := c.Balance(ctx, owner.PublicKey())
	require.NoError(t, err)
	require.Equal(t, before+2*lamports.PerSOL-record.Fee, after)

	_, err = c.Account(ctx, vaultAddress)
	require.True(t, store.IsErrNotFound(err))

	found, err := c.Transaction(ctx, record.Signature)
	require.NoError(t, err)
	require.Equal(t, "close", found.Instruction)

	txs, err := c.Transactions(ctx, owner.PublicKey(), 0, 50)
	require.NoError(t, err)
	require.NotEmpty(t, txs)
	require.Equal(t, "airdrop", txs[0].Instruction)
}

func TestUnauthorizedDeposit(t *testing.T) {
	ctx := context.Background()
	c := newServer(t, rent.Default())

	owner, err := GenerateKeypair()
	require.NoError(t, err)
	intruder, err := GenerateKeypair()
	require.NoError(t, err)

	for _, key := range []solana.PrivateKey{owner, intruder} {
		_, err = c.Airdrop(ctx, key.PublicKey(), 5*lamports.PerSOL)
		require.NoError(t, err)
	}

	_, err = c.Initialize(ctx, owner)
	require.NoError(t, err)

	view, err := c.Vault(ctx, owner.PublicKey())
	require.NoError(t, err)
	require.Equal(t, view.Floor, view.Balance)
	require.Zero(t, view.Withdrawable)

	hash, _, err := c.LatestBlockhash(ctx)
	require.NoError(t, err)

	data, err := vault.EncodeInstruction(vault.Instruction{Kind: vault.KindDeposit, Amount: 10})
	require.NoError(t, err)

	inst := solana.NewInstruction(vault.ProgramID, solana.AccountMetaSlice{
		solana.Meta(intruder.PublicKey()).WRITE().SIGNER(),
		solana.Meta(solana.MustPublicKeyFromBase58(view.State)).WRITE(),
		solana.Meta(solana.MustPublicKeyFromBase58(view.Vault)).WRITE(),
		solana.Meta(solana.SystemProgramID),
	}, data)

	tx, err := solana.NewTransaction([]solana.Instruction{inst}, hash, solana.TransactionPayer(intruder.PublicKey()))
	require.NoError(t, err)
	_, err = tx.Sign(func(solana.PublicKey) *solana.PrivateKey { return &intruder })
	require.NoError(t, err)

	_, err = c.SendTransaction(ctx, tx)
	require.ErrorIs(t, err, vault.ErrUnauthorized)

	_, err = c.SendTransaction(ctx, tx)
	require.ErrorIs(t, err, ledger.ErrAlreadyProcessed)
}

func TestRuntimeErrors(t *testing.T) {
	ctx := context.Background()
	c := newServer(t, rent.Default())

	key, err := GenerateKeypair()
	require.NoError(t, err)

	_, err = c.Airdrop(ctx, key.PublicKey(), 1000*lamports.PerSOL)
	require.ErrorIs(t, err, ledger.ErrFaucetLimit)

	_, err = c.Initialize(ctx, key)
	require.ErrorIs(t, err, ledger.ErrInsufficientFundsForFee)

	floor, err := c.MinimumBalance(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(890_880), floor)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.States)
}

func TestKeypair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "id.json")

	key, err := GenerateKeypair()
	require.NoError(t, err)
	require.NoError(t, SaveKeypair(path, key))
	require.Error(t, SaveKeypair(path, key), "never overwrites")

	loaded, err := LoadKeypair(path)
	require.NoError(t, err)
	require.Equal(t, key, loaded)
	require.Equal(t, key.PublicKey(), loaded.PublicKey())
}
