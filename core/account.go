package core

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

type Account struct {
	Address  solana.PublicKey `json:"address"`
	Lamports uint64           `json:"lamports"`
	Owner    solana.PublicKey `json:"owner"`
	Data     []byte           `json:"data,omitempty"`
	Version  uint64           `json:"version"`
}

// Exists reports whether the account occupies ledger space.
func (a *Account) Exists() bool {
	return a != nil && (a.Lamports > 0 || len(a.Data) > 0)
}

func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}

	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

// AccountChange is one write produced by a committed transaction. Version is
// the version the change was computed from; zero means the account is new.
type AccountChange struct {
	Account *Account
	Deleted bool
	Version uint64
}

type AccountStore interface {
	Find(ctx context.Context, address solana.PublicKey) (*Account, error)
	// ListOwner pages through accounts owned by a program, ordered by address.
	ListOwner(ctx context.Context, owner solana.PublicKey, after string, limit int) ([]*Account, error)
	// Commit applies all changes and records the transaction atomically.
	Commit(ctx context.Context, changes []*AccountChange, record *Transaction) error
}
