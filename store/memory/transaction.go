package memory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/core"
)

func NewTransactionStore(db *DB) core.TransactionStore {
	return &transactionStore{db: db}
}

type transactionStore struct {
	db *DB
}

func (db *DB) checkSignature(tx *core.Transaction) error {
	if tx.Signature.IsZero() {
		return nil
	}

	if _, ok := db.signatures[tx.Signature]; ok {
		return fmt.Errorf("duplicate signature %s", tx.Signature)
	}

	return nil
}

func (db *DB) insertTransaction(tx *core.Transaction) {
	tx.ID = uint64(len(db.transactions)) + 1

	c := *tx
	db.transactions = append(db.transactions, &c)
	if !c.Signature.IsZero() {
		db.signatures[c.Signature] = &c
	}
}

func (s *transactionStore) Create(_ context.Context, tx *core.Transaction) error {
	s.db.mux.Lock()
	defer s.db.mux.Unlock()

	if err := s.db.checkSignature(tx); err != nil {
		return err
	}

	s.db.insertTransaction(tx)
	return nil
}

func (s *transactionStore) FindSignature(_ context.Context, sig solana.Signature) (*core.Transaction, error) {
	s.db.mux.RLock()
	defer s.db.mux.RUnlock()

	tx, ok := s.db.signatures[sig]
	if !ok || sig.IsZero() {
		return nil, sql.ErrNoRows
	}

	c := *tx
	return &c, nil
}

func (s *transactionStore) ListPayer(_ context.Context, payer solana.PublicKey, offset uint64, limit int) ([]*core.Transaction, error) {
	s.db.mux.RLock()
	defer s.db.mux.RUnlock()

	var txs []*core.Transaction
	for _, tx := range s.db.transactions {
		if len(txs) >= limit {
			break
		}

		if tx.ID <= offset || !tx.Payer.Equals(payer) {
			continue
		}

		c := *tx
		txs = append(txs, &c)
	}

	return txs, nil
}
