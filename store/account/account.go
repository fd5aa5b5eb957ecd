package account

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/generic"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/store"
	"github.com/pandodao/vault/store/db"
	"github.com/pandodao/vault/store/transaction"
)

func New(db *db.DB) core.AccountStore {
	return &accountStore{db: db}
}

type accountStore struct {
	db *db.DB
}

func (s *accountStore) Find(ctx context.Context, address solana.PublicKey) (*core.Account, error) {
	b := s.db.Builder.Select(scanColumns...).
		From("accounts").
		Where("address = ?", address.String())
	stmt, args := b.MustSql()
	row := s.db.QueryRowContext(ctx, stmt, args...)

	var account core.Account
	if err := scanAccount(row, &account); err != nil {
		return nil, err
	}

	return &account, nil
}

func (s *accountStore) ListOwner(ctx context.Context, owner solana.PublicKey, after string, limit int) ([]*core.Account, error) {
	b := s.db.Builder.Select(scanColumns...).
		From("accounts").
		Where("owner = ? AND address > ?", owner.String(), after).
		OrderBy("address").
		Limit(uint64(limit))
	stmt, args := b.MustSql()
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var accounts []*core.Account
	for rows.Next() {
		var account core.Account
		if err := scanAccount(rows, &account); err != nil {
			return nil, err
		}

		accounts = append(accounts, &account)
	}

	return accounts, rows.Err()
}

func (s *accountStore) insert(ctx context.Context, tx *sql.Tx, account *core.Account) error {
	b := s.db.Builder.Insert("accounts").
		Columns(scanColumns...).
		Values(account.Address.String(), account.Lamports, account.Owner.String(), account.Data, account.Version)
	stmt, args := b.MustSql()
	_, err := tx.ExecContext(ctx, stmt, args...)
	return err
}

func (s *accountStore) update(ctx context.Context, tx *sql.Tx, change *core.AccountChange) error {
	var stmt string
	var args []any

	if change.Deleted {
		stmt, args = s.db.Builder.Delete("accounts").
			Where("address = ? AND version = ?", change.Account.Address.String(), change.Version).
			MustSql()
	} else {
		stmt, args = s.db.Builder.Update("accounts").
			Set("lamports", change.Account.Lamports).
			Set("owner", change.Account.Owner.String()).
			Set("data", change.Account.Data).
			Set("version", change.Account.Version).
			Where("address = ? AND version = ?", change.Account.Address.String(), change.Version).
			MustSql()
	}

	r, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return err
	}

	n, err := r.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%w: account %s", store.ErrOptimisticLock, change.Account.Address)
	}

	return nil
}

func (s *accountStore) Commit(ctx context.Context, changes []*core.AccountChange, record *core.Transaction) error {
	tx := generic.Must(s.db.Begin())
	defer tx.Rollback()

	for _, change := range changes {
		var err error
		if change.Version == 0 {
			err = s.insert(ctx, tx, change.Account)
		} else {
			err = s.update(ctx, tx, change)
		}

		if err != nil {
			return err
		}
	}

	if record != nil {
		if err := transaction.Insert(ctx, s.db, tx, record); err != nil {
			return err
		}
	}

	return tx.Commit()
}
