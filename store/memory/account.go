package memory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/store"
)

func NewAccountStore(db *DB) core.AccountStore {
	return &accountStore{db: db}
}

type accountStore struct {
	db *DB
}

func (s *accountStore) Find(_ context.Context, address solana.PublicKey) (*core.Account, error) {
	s.db.mux.RLock()
	defer s.db.mux.RUnlock()

	account, ok := s.db.accounts.Get(address.String())
	if !ok {
		return nil, sql.ErrNoRows
	}

	return account.Clone(), nil
}

func (s *accountStore) ListOwner(_ context.Context, owner solana.PublicKey, after string, limit int) ([]*core.Account, error) {
	s.db.mux.RLock()
	defer s.db.mux.RUnlock()

	var accounts []*core.Account
	s.db.accounts.Each(func(address string, account *core.Account) {
		if len(accounts) >= limit || address <= after || !account.Owner.Equals(owner) {
			return
		}

		accounts = append(accounts, account.Clone())
	})

	return accounts, nil
}

func (s *accountStore) Commit(_ context.Context, changes []*core.AccountChange, record *core.Transaction) error {
	s.db.mux.Lock()
	defer s.db.mux.Unlock()

	for _, change := range changes {
		current, ok := s.db.accounts.Get(change.Account.Address.String())
		switch {
		case change.Version == 0 && ok:
			return fmt.Errorf("%w: account %s exists", store.ErrOptimisticLock, change.Account.Address)
		case change.Version > 0 && (!ok || current.Version != change.Version):
			return fmt.Errorf("%w: account %s", store.ErrOptimisticLock, change.Account.Address)
		}
	}

	if record != nil {
		if err := s.db.checkSignature(record); err != nil {
			return err
		}
	}

	for _, change := range changes {
		key := change.Account.Address.String()
		if change.Deleted {
			s.db.accounts.Remove(key)
			continue
		}

		s.db.accounts.Put(key, change.Account.Clone())
	}

	if record != nil {
		s.db.insertTransaction(record)
	}

	return nil
}
