package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/lamports"
)

const instructionAirdrop = "airdrop"

// Airdrop credits a system account out of thin air. It exists so test
// harnesses and local tooling can fund depositors before using the vault.
func (l *Ledger) Airdrop(ctx context.Context, address solana.PublicKey, amount uint64) (*core.Transaction, error) {
	if l.cfg.FaucetLimit == 0 {
		return nil, ErrFaucetDisabled
	}

	if amount == 0 || amount > l.cfg.FaucetLimit {
		return nil, fmt.Errorf("%w: %d > %d", ErrFaucetLimit, amount, l.cfg.FaucetLimit)
	}

	unlock, err := l.locks.Lock(ctx, []solana.PublicKey{address})
	if err != nil {
		return nil, err
	}
	defer unlock()

	keys := []solana.PublicKey{address}
	ws, err := loadWorkset(ctx, l.accounts, keys)
	if err != nil {
		return nil, err
	}

	account := ws.account(address)
	if !account.Owner.Equals(solana.SystemProgramID) {
		return nil, fmt.Errorf("%w: airdrop to program account %s", ErrExternalAccountDebit, address)
	}

	if account.Lamports, err = lamports.Add(account.Lamports, amount); err != nil {
		return nil, err
	}

	if !l.cfg.Rent.IsExempt(account.Lamports, len(account.Data)) {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientFundsForRent, address)
	}

	record := &core.Transaction{
		TraceID:     uuid.NewString(),
		CreatedAt:   time.Now(),
		Payer:       address,
		Program:     solana.SystemProgramID,
		Instruction: instructionAirdrop,
		Amount:      amount,
		Status:      core.TransactionStatusSucceeded,
		Slot:        l.hashes.Advance(),
	}

	if err := l.accounts.Commit(ctx, ws.changes(), record); err != nil {
		l.logger.Error("accounts.Commit", "err", err)
		return nil, err
	}

	metricAirdropLamports.Add(float64(amount))
	l.logger.Debug("airdrop", "address", address, "amount", amount, "balance", account.Lamports)
	return record, nil
}
