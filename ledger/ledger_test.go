package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/lamports"
	"github.com/pandodao/vault/rent"
	"github.com/pandodao/vault/store/memory"
	"github.com/stretchr/testify/require"
)

const (
	opTransfer byte = iota
	opMint
	opFail
)

var errTestProgram = errors.New("test program failure")

// testProgram moves lamports between its first two accounts, or misbehaves
// on request.
type testProgram struct {
	id solana.PublicKey
}

func (p *testProgram) ID() solana.PublicKey { return p.id }

func (p *testProgram) Describe(data []byte) (string, uint64) {
	if len(data) == 9 {
		return "transfer", binary.LittleEndian.Uint64(data[1:])
	}

	return "other", 0
}

func (p *testProgram) Process(ic *InvokeContext) error {
	switch ic.Data[0] {
	case opTransfer:
		return ic.Transfer(ic.Accounts[0], ic.Accounts[1], binary.LittleEndian.Uint64(ic.Data[1:]), nil)
	case opMint:
		ic.Accounts[0].account.Lamports++
		return nil
	default:
		return errTestProgram
	}
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func newLedger(t *testing.T, faucet uint64) (*Ledger, *testProgram) {
	db := memory.New()
	program := &testProgram{id: newKey(t).PublicKey()}
	l := New(
		memory.NewAccountStore(db),
		memory.NewTransactionStore(db),
		[]Program{program},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config{
			FeePerSignature:   DefaultFeePerSignature,
			Rent:              rent.Default(),
			RecentBlockhashes: 4,
			FaucetLimit:       faucet,
			Genesis:           t.Name(),
		},
	)

	return l, program
}

func transferData(amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = opTransfer
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

func buildTx(t *testing.T, l *Ledger, programID solana.PublicKey, payer solana.PrivateKey, to solana.PublicKey, data []byte) *solana.Transaction {
	t.Helper()
	hash, _ := l.LatestBlockhash()
	inst := solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(payer.PublicKey()).WRITE().SIGNER(),
		solana.Meta(to).WRITE(),
	}, data)

	tx, err := solana.NewTransaction([]solana.Instruction{inst}, hash, solana.TransactionPayer(payer.PublicKey()))
	require.NoError(t, err)

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}

		return nil
	})
	require.NoError(t, err)
	return tx
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	l, program := newLedger(t, 10*lamports.PerSOL)

	payer := newKey(t)
	to := newKey(t).PublicKey()
	_, err := l.Airdrop(ctx, payer.PublicKey(), 5*lamports.PerSOL)
	require.NoError(t, err)

	_, slot := l.LatestBlockhash()
	tx := buildTx(t, l, program.id, payer, to, transferData(lamports.PerSOL))
	record, err := l.Submit(ctx, tx)
	require.NoError(t, err)
	require.Equal(t, core.TransactionStatusSucceeded, record.Status)
	require.Equal(t, DefaultFeePerSignature, record.Fee)
	require.Equal(t, "transfer", record.Instruction)
	require.Equal(t, slot+1, record.Slot)

	balance, err := l.Balance(ctx, payer.PublicKey())
	require.NoError(t, err)
	require.Equal(t, 4*lamports.PerSOL-DefaultFeePerSignature, balance)

	balance, err = l.Balance(ctx, to)
	require.NoError(t, err)
	require.Equal(t, lamports.PerSOL, balance)

	found, err := l.Transaction(ctx, tx.Signatures[0])
	require.NoError(t, err)
	require.Equal(t, record.TraceID, found.TraceID)

	_, err = l.Submit(ctx, tx)
	require.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestSubmit_Rejected(t *testing.T) {
	ctx := context.Background()
	l, program := newLedger(t, 10*lamports.PerSOL)

	payer := newKey(t)
	_, err := l.Airdrop(ctx, payer.PublicKey(), 5*lamports.PerSOL)
	require.NoError(t, err)

	tests := []struct {
		name  string
		build func(t *testing.T) *solana.Transaction
		want  error
	}{
		{
			name: "tampered signature",
			build: func(t *testing.T) *solana.Transaction {
				tx := buildTx(t, l, program.id, payer, newKey(t).PublicKey(), transferData(1))
				tx.Signatures[0][0] ^= 0xff
				return tx
			},
			want: ErrSignatureFailure,
		},
		{
			name: "unknown blockhash",
			build: func(t *testing.T) *solana.Transaction {
				tx := buildTx(t, l, program.id, payer, newKey(t).PublicKey(), transferData(1))
				tx.Message.RecentBlockhash = solana.Hash{1}
				_, err := tx.Sign(func(solana.PublicKey) *solana.PrivateKey { return &payer })
				require.NoError(t, err)
				return tx
			},
			want: ErrBlockhashNotFound,
		},
		{
			name: "unknown program",
			build: func(t *testing.T) *solana.Transaction {
				return buildTx(t, l, newKey(t).PublicKey(), payer, newKey(t).PublicKey(), transferData(1))
			},
			want: ErrUnknownProgram,
		},
		{
			name: "payer cannot cover the fee",
			build: func(t *testing.T) *solana.Transaction {
				return buildTx(t, l, program.id, newKey(t), newKey(t).PublicKey(), transferData(0))
			},
			want: ErrInsufficientFundsForFee,
		},
		{
			name: "recipient below the rent floor",
			build: func(t *testing.T) *solana.Transaction {
				return buildTx(t, l, program.id, payer, newKey(t).PublicKey(), transferData(1000))
			},
			want: ErrInsufficientFundsForRent,
		},
		{
			name: "unbalanced instruction",
			build: func(t *testing.T) *solana.Transaction {
				return buildTx(t, l, program.id, payer, newKey(t).PublicKey(), []byte{opMint})
			},
			want: ErrUnbalancedInstruction,
		},
		{
			name: "program failure",
			build: func(t *testing.T) *solana.Transaction {
				return buildTx(t, l, program.id, payer, newKey(t).PublicKey(), []byte{opFail})
			},
			want: errTestProgram,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Submit(ctx, tt.build(t))
			require.ErrorIs(t, err, tt.want)

			balance, err := l.Balance(ctx, payer.PublicKey())
			require.NoError(t, err)
			require.Equal(t, 5*lamports.PerSOL, balance)
		})
	}
}

func TestSubmit_FailedRecord(t *testing.T) {
	ctx := context.Background()
	l, program := newLedger(t, 10*lamports.PerSOL)

	payer := newKey(t)
	_, err := l.Airdrop(ctx, payer.PublicKey(), lamports.PerSOL)
	require.NoError(t, err)

	tx := buildTx(t, l, program.id, payer, newKey(t).PublicKey(), []byte{opFail})
	record, err := l.Submit(ctx, tx)
	require.Error(t, err)

	var ie *InstructionError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, 0, ie.Index)

	require.Equal(t, core.TransactionStatusFailed, record.Status)
	require.Zero(t, record.Fee)

	found, err := l.Transaction(ctx, tx.Signatures[0])
	require.NoError(t, err)
	require.Equal(t, core.TransactionStatusFailed, found.Status)
	require.Contains(t, found.Error, errTestProgram.Error())
}

func TestAirdrop(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		l, _ := newLedger(t, 0)
		_, err := l.Airdrop(ctx, newKey(t).PublicKey(), 1)
		require.ErrorIs(t, err, ErrFaucetDisabled)
	})

	l, _ := newLedger(t, lamports.PerSOL)
	address := newKey(t).PublicKey()

	_, err := l.Airdrop(ctx, address, lamports.PerSOL+1)
	require.ErrorIs(t, err, ErrFaucetLimit)

	_, err = l.Airdrop(ctx, address, 10)
	require.ErrorIs(t, err, ErrInsufficientFundsForRent)

	record, err := l.Airdrop(ctx, address, lamports.PerSOL)
	require.NoError(t, err)
	require.Equal(t, "airdrop", record.Instruction)

	balance, err := l.Balance(ctx, address)
	require.NoError(t, err)
	require.Equal(t, lamports.PerSOL, balance)
}

func TestBlockhashes(t *testing.T) {
	b := newBlockhashes(2, []byte("genesis"))
	genesis, slot := b.Latest()
	require.Zero(t, slot)
	require.True(t, b.Contains(genesis))

	require.Equal(t, uint64(1), b.Advance())
	require.True(t, b.Contains(genesis))

	b.Advance()
	require.False(t, b.Contains(genesis), "expired after two slots")

	latest, slot := b.Latest()
	require.Equal(t, uint64(2), slot)
	require.True(t, b.Contains(latest))
}

func TestLocker(t *testing.T) {
	l := newLocker()
	a := newKey(t).PublicKey()
	b := newKey(t).PublicKey()

	unlock, err := l.Lock(context.Background(), []solana.PublicKey{a, b, a})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, []solana.PublicKey{b})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	var (
		wg      sync.WaitGroup
		lockErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		var release func()
		if release, lockErr = l.Lock(context.Background(), []solana.PublicKey{b, a}); lockErr == nil {
			release()
		}
	}()

	unlock()
	wg.Wait()
	require.NoError(t, lockErr)
	require.Empty(t, l.locks)
}

func TestWritableIndex(t *testing.T) {
	h := solana.MessageHeader{NumRequiredSignatures: 2, NumReadonlySignedAccounts: 1, NumReadonlyUnsignedAccounts: 1}
	want := []bool{true, false, true, false}
	for idx, w := range want {
		require.Equal(t, w, writableIndex(h, len(want), idx), "index %d", idx)
	}
}

// flakyTransactions fails FindSignature from its nth call on.
type flakyTransactions struct {
	core.TransactionStore
	calls  int
	failAt int
	err    error
}

func (s *flakyTransactions) FindSignature(ctx context.Context, sig solana.Signature) (*core.Transaction, error) {
	s.calls++
	if s.calls >= s.failAt {
		return nil, s.err
	}

	return s.TransactionStore.FindSignature(ctx, sig)
}

func TestSubmit_SignatureLookupFailsUnderLock(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	program := &testProgram{id: newKey(t).PublicKey()}
	transactions := &flakyTransactions{
		TransactionStore: memory.NewTransactionStore(db),
		failAt:           2,
		err:              errors.New("connection reset"),
	}

	l := New(
		memory.NewAccountStore(db),
		transactions,
		[]Program{program},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config{
			FeePerSignature:   DefaultFeePerSignature,
			Rent:              rent.Default(),
			RecentBlockhashes: 4,
			FaucetLimit:       lamports.PerSOL,
			Genesis:           t.Name(),
		},
	)

	payer := newKey(t)
	to := newKey(t).PublicKey()
	_, err := l.Airdrop(ctx, payer.PublicKey(), lamports.PerSOL)
	require.NoError(t, err)

	tx := buildTx(t, l, program.id, payer, to, transferData(lamports.PerSOL/2))
	record, err := l.Submit(ctx, tx)
	require.ErrorIs(t, err, transactions.err)
	require.Nil(t, record)
	require.Equal(t, 2, transactions.calls)

	balance, err := l.Balance(ctx, payer.PublicKey())
	require.NoError(t, err)
	require.Equal(t, lamports.PerSOL, balance)

	balance, err = l.Balance(ctx, to)
	require.NoError(t, err)
	require.Zero(t, balance)
}
