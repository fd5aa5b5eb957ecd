package ledger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/lamports"
	"github.com/pandodao/vault/rent"
)

// Program is an instruction processor registered with the ledger.
type Program interface {
	ID() solana.PublicKey
	Process(ic *InvokeContext) error
	// Describe names an instruction and its amount for transaction records.
	Describe(data []byte) (string, uint64)
}

// AccountInfo is an instruction account as seen by a program. Reads reflect
// every mutation made earlier in the same transaction.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool

	account *core.Account
}

func (a *AccountInfo) Lamports() uint64        { return a.account.Lamports }
func (a *AccountInfo) Owner() solana.PublicKey { return a.account.Owner }
func (a *AccountInfo) Exists() bool            { return a.account.Exists() }

// Data returns a copy of the account data.
func (a *AccountInfo) Data() []byte {
	return append([]byte(nil), a.account.Data...)
}

// InvokeContext carries one instruction's accounts and data, plus the
// system operations a program may perform on them.
type InvokeContext struct {
	ProgramID solana.PublicKey
	Accounts  []*AccountInfo
	Data      []byte
	Rent      rent.Rent
	Logger    *slog.Logger

	ctx context.Context
}

func (ic *InvokeContext) Context() context.Context {
	return ic.ctx
}

// signed reports whether the instruction carries authority for info, either
// as a transaction signer or through program signer seeds.
func (ic *InvokeContext) signed(info *AccountInfo, seeds [][]byte) bool {
	if info.IsSigner {
		return true
	}

	if len(seeds) == 0 {
		return false
	}

	address, err := solana.CreateProgramAddress(seeds, ic.ProgramID)
	return err == nil && address.Equals(info.Key)
}

func writable(infos ...*AccountInfo) error {
	for _, info := range infos {
		if !info.IsWritable {
			return fmt.Errorf("%w: %s", ErrReadonlyAccount, info.Key)
		}
	}

	return nil
}

// CreateAccount allocates target with space zeroed bytes owned by owner and
// funds it with amount lamports taken from payer.
func (ic *InvokeContext) CreateAccount(payer, target *AccountInfo, amount uint64, space int, owner solana.PublicKey, seeds [][]byte) error {
	if err := writable(payer, target); err != nil {
		return err
	}

	if !payer.IsSigner {
		return fmt.Errorf("%w: payer %s", ErrMissingSignature, payer.Key)
	}

	if !ic.signed(target, seeds) {
		return fmt.Errorf("%w: new account %s", ErrMissingSignature, target.Key)
	}

	if target.Exists() {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyInUse, target.Key)
	}

	if err := ic.debit(payer, amount); err != nil {
		return err
	}

	target.account.Owner = owner
	target.account.Data = make([]byte, space)
	target.account.Lamports = amount
	return nil
}

// Transfer moves amount lamports from one account to another. A system-owned
// source must have signed or be proven by seeds; a program-owned source may
// only be debited by its owner.
func (ic *InvokeContext) Transfer(from, to *AccountInfo, amount uint64, seeds [][]byte) error {
	if err := writable(from, to); err != nil {
		return err
	}

	switch {
	case from.Owner().Equals(solana.SystemProgramID):
		if !ic.signed(from, seeds) {
			return fmt.Errorf("%w: %s", ErrMissingSignature, from.Key)
		}
	case from.Owner().Equals(ic.ProgramID):
	default:
		return fmt.Errorf("%w: %s", ErrExternalAccountDebit, from.Key)
	}

	if from.Key.Equals(to.Key) {
		if from.Lamports() < amount {
			return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from.Key, from.Lamports(), amount)
		}

		return nil
	}

	credited, err := lamports.Add(to.Lamports(), amount)
	if err != nil {
		return err
	}

	if err := ic.debit(from, amount); err != nil {
		return err
	}

	to.account.Lamports = credited
	return nil
}

func (ic *InvokeContext) debit(from *AccountInfo, amount uint64) error {
	if from.Lamports() < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from.Key, from.Lamports(), amount)
	}

	left, err := lamports.Sub(from.Lamports(), amount)
	if err != nil {
		return err
	}

	from.account.Lamports = left
	return nil
}

// SetData replaces the data of an account owned by the invoking program.
// The length must not change.
func (ic *InvokeContext) SetData(target *AccountInfo, data []byte) error {
	if err := writable(target); err != nil {
		return err
	}

	if !target.Owner().Equals(ic.ProgramID) {
		return fmt.Errorf("%w: %s", ErrExternalDataModified, target.Key)
	}

	if len(data) != len(target.account.Data) {
		return fmt.Errorf("%w: data length %d, allocated %d", ErrExternalDataModified, len(data), len(target.account.Data))
	}

	if !bytes.Equal(target.account.Data, data) {
		target.account.Data = append([]byte(nil), data...)
	}

	return nil
}

// CloseAccount moves every lamport of a program-owned account to dest and
// deallocates it.
func (ic *InvokeContext) CloseAccount(target, dest *AccountInfo) error {
	if err := writable(target, dest); err != nil {
		return err
	}

	if !target.Owner().Equals(ic.ProgramID) {
		return fmt.Errorf("%w: %s", ErrExternalAccountDebit, target.Key)
	}

	if target.Key.Equals(dest.Key) {
		return fmt.Errorf("%w: %s closed into itself", ErrUnbalancedInstruction, target.Key)
	}

	credited, err := lamports.Add(dest.Lamports(), target.Lamports())
	if err != nil {
		return err
	}

	dest.account.Lamports = credited
	target.account.Lamports = 0
	target.account.Data = nil
	target.account.Owner = solana.SystemProgramID
	return nil
}
