// Package ledger executes signed transactions against stored accounts.
//
// Every transaction is atomic: accounts are locked, copied into a working
// set, handed to the registered programs instruction by instruction, checked
// against the runtime rules and only then committed in one store write. Any
// failure leaves the stored accounts untouched.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/lamports"
	"github.com/pandodao/vault/rent"
	"github.com/pandodao/vault/store"
	"golang.org/x/sync/singleflight"
)

const DefaultFeePerSignature uint64 = 5000

type Config struct {
	FeePerSignature   uint64
	Rent              rent.Rent
	RecentBlockhashes int `valid:"required"`
	// FaucetLimit caps a single airdrop; zero disables the faucet.
	FaucetLimit uint64
	Genesis     string `valid:"required"`
}

type Ledger struct {
	accounts     core.AccountStore
	transactions core.TransactionStore
	programs     map[solana.PublicKey]Program
	logger       *slog.Logger
	cfg          Config

	locks    *locker
	hashes   *blockhashes
	inflight singleflight.Group
}

func New(
	accounts core.AccountStore,
	transactions core.TransactionStore,
	programs []Program,
	logger *slog.Logger,
	cfg Config,
) *Ledger {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	l := &Ledger{
		accounts:     accounts,
		transactions: transactions,
		programs:     make(map[solana.PublicKey]Program, len(programs)),
		logger:       logger.With("component", "ledger"),
		cfg:          cfg,
		locks:        newLocker(),
		hashes:       newBlockhashes(cfg.RecentBlockhashes, []byte(cfg.Genesis)),
	}

	for _, p := range programs {
		l.programs[p.ID()] = p
	}

	return l
}

func (l *Ledger) Rent() rent.Rent {
	return l.cfg.Rent
}

func (l *Ledger) FeePerSignature() uint64 {
	return l.cfg.FeePerSignature
}

// LatestBlockhash returns the hash new transactions should reference.
func (l *Ledger) LatestBlockhash() (solana.Hash, uint64) {
	return l.hashes.Latest()
}

// Account returns the stored account, or an error satisfying
// store.IsErrNotFound when it does not exist.
func (l *Ledger) Account(ctx context.Context, address solana.PublicKey) (*core.Account, error) {
	return l.accounts.Find(ctx, address)
}

// Balance returns the lamports held by address; absent accounts hold zero.
func (l *Ledger) Balance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	account, err := l.accounts.Find(ctx, address)
	if err != nil {
		if store.IsErrNotFound(err) {
			return 0, nil
		}

		return 0, err
	}

	return account.Lamports, nil
}

func (l *Ledger) Transaction(ctx context.Context, sig solana.Signature) (*core.Transaction, error) {
	return l.transactions.FindSignature(ctx, sig)
}

// Transactions pages through the records paid by payer, oldest first.
func (l *Ledger) Transactions(ctx context.Context, payer solana.PublicKey, offset uint64, limit int) ([]*core.Transaction, error) {
	return l.transactions.ListPayer(ctx, payer, offset, limit)
}

func (l *Ledger) describe(tx *solana.Transaction) (program solana.PublicKey, name string, amount uint64) {
	msg := tx.Message
	if len(msg.Instructions) == 0 {
		return solana.PublicKey{}, "", 0
	}

	inst := msg.Instructions[0]
	if int(inst.ProgramIDIndex) >= len(msg.AccountKeys) {
		return solana.PublicKey{}, "", 0
	}

	program = msg.AccountKeys[inst.ProgramIDIndex]
	if p, ok := l.programs[program]; ok {
		name, amount = p.Describe(inst.Data)
	}

	return program, name, amount
}

func (l *Ledger) validate(ctx context.Context, tx *solana.Transaction) error {
	if tx == nil || len(tx.Signatures) == 0 || len(tx.Message.AccountKeys) == 0 {
		return fmt.Errorf("%w: no signatures", ErrInvalidTransaction)
	}

	if len(tx.Message.Instructions) == 0 {
		return fmt.Errorf("%w: no instructions", ErrInvalidTransaction)
	}

	if err := tx.VerifySignatures(); err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureFailure, err)
	}

	if !l.hashes.Contains(tx.Message.RecentBlockhash) {
		return fmt.Errorf("%w: %s", ErrBlockhashNotFound, tx.Message.RecentBlockhash)
	}

	if _, err := l.transactions.FindSignature(ctx, tx.Signatures[0]); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyProcessed, tx.Signatures[0])
	} else if !store.IsErrNotFound(err) {
		return err
	}

	return nil
}

// Submit executes a signed transaction and returns its record. Concurrent
// submissions of the same transaction share one execution.
func (l *Ledger) Submit(ctx context.Context, tx *solana.Transaction) (*core.Transaction, error) {
	if err := l.validate(ctx, tx); err != nil {
		metricRejected.WithLabelValues(reason(err)).Inc()
		return nil, err
	}

	v, err, _ := l.inflight.Do(tx.Signatures[0].String(), func() (any, error) {
		return l.submit(ctx, tx)
	})

	record, _ := v.(*core.Transaction)
	return record, err
}

func (l *Ledger) submit(ctx context.Context, tx *solana.Transaction) (*core.Transaction, error) {
	start := time.Now()
	program, name, amount := l.describe(tx)
	record := &core.Transaction{
		TraceID:     uuid.NewString(),
		CreatedAt:   start,
		Signature:   tx.Signatures[0],
		Payer:       tx.Message.AccountKeys[0],
		Program:     program,
		Instruction: name,
		Amount:      amount,
	}

	logger := l.logger.With("signature", record.Signature, "instruction", name)

	unlock, err := l.locks.Lock(ctx, tx.Message.AccountKeys)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// re-check under lock, a concurrent duplicate may have committed meanwhile
	if _, err := l.transactions.FindSignature(ctx, record.Signature); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyProcessed, record.Signature)
	} else if !store.IsErrNotFound(err) {
		logger.Error("transactions.FindSignature", "err", err)
		return nil, err
	}

	ws, err := loadWorkset(ctx, l.accounts, tx.Message.AccountKeys)
	if err != nil {
		logger.Error("loadWorkset", "err", err)
		return nil, err
	}

	fee, execErr := l.execute(ctx, tx, ws)
	if execErr == nil {
		record.Fee = fee
		record.Status = core.TransactionStatusSucceeded
		record.Slot = l.hashes.Advance()

		if err := l.accounts.Commit(ctx, ws.changes(), record); err != nil {
			logger.Error("accounts.Commit", "err", err)
			return nil, err
		}

		observe(record, start)
		logger.Debug("transaction committed", "slot", record.Slot, "fee", fee)
		return record, nil
	}

	if errors.Is(execErr, context.Canceled) || errors.Is(execErr, context.DeadlineExceeded) {
		return nil, execErr
	}

	record.Status = core.TransactionStatusFailed
	record.Error = execErr.Error()
	_, record.Slot = l.hashes.Latest()
	if err := l.transactions.Create(ctx, record); err != nil {
		logger.Error("transactions.Create", "err", err)
	}

	observe(record, start)
	logger.Debug("transaction failed", "err", execErr)
	return record, execErr
}

func (l *Ledger) execute(ctx context.Context, tx *solana.Transaction, ws *workset) (uint64, error) {
	msg := tx.Message
	payer := ws.account(msg.AccountKeys[0])

	fee, err := lamports.Mul(l.cfg.FeePerSignature, uint64(len(tx.Signatures)))
	if err != nil {
		return 0, err
	}

	if payer.Lamports < fee {
		return 0, fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFundsForFee, payer.Address, payer.Lamports, fee)
	}

	payer.Lamports -= fee
	if payer.Exists() && !l.cfg.Rent.IsExempt(payer.Lamports, len(payer.Data)) {
		return 0, fmt.Errorf("%w: fee payer %s", ErrInsufficientFundsForFee, payer.Address)
	}

	isWritable := func(key solana.PublicKey) bool {
		for idx, k := range msg.AccountKeys {
			if k.Equals(key) && writableIndex(msg.Header, len(msg.AccountKeys), idx) {
				return true
			}
		}

		return false
	}

	for i, inst := range msg.Instructions {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		if int(inst.ProgramIDIndex) >= len(msg.AccountKeys) {
			return 0, &InstructionError{Index: i, Err: ErrInvalidTransaction}
		}

		programID := msg.AccountKeys[inst.ProgramIDIndex]
		program, ok := l.programs[programID]
		if !ok {
			return 0, &InstructionError{Index: i, Err: fmt.Errorf("%w: %s", ErrUnknownProgram, programID)}
		}

		infos := make([]*AccountInfo, 0, len(inst.Accounts))
		for _, idx := range inst.Accounts {
			if int(idx) >= len(msg.AccountKeys) {
				return 0, &InstructionError{Index: i, Err: ErrInvalidTransaction}
			}

			key := msg.AccountKeys[idx]
			infos = append(infos, &AccountInfo{
				Key:        key,
				IsSigner:   int(idx) < int(msg.Header.NumRequiredSignatures),
				IsWritable: writableIndex(msg.Header, len(msg.AccountKeys), int(idx)),
				account:    ws.account(key),
			})
		}

		ic := &InvokeContext{
			ProgramID: programID,
			Accounts:  infos,
			Data:      inst.Data,
			Rent:      l.cfg.Rent,
			Logger:    l.logger.With("program", programID),
			ctx:       ctx,
		}

		before := ws.snapshot()
		if err := program.Process(ic); err != nil {
			return 0, &InstructionError{Index: i, Err: err}
		}

		if err := ws.verify(before, isWritable, l.cfg.Rent); err != nil {
			return 0, &InstructionError{Index: i, Err: err}
		}
	}

	return fee, nil
}

// writableIndex applies the legacy message header layout: signed writable,
// signed readonly, unsigned writable, unsigned readonly.
func writableIndex(h solana.MessageHeader, n, idx int) bool {
	signed := int(h.NumRequiredSignatures)
	if idx < signed {
		return idx < signed-int(h.NumReadonlySignedAccounts)
	}

	return idx < n-int(h.NumReadonlyUnsignedAccounts)
}
