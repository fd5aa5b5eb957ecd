package transaction

import (
	"context"
	"database/sql"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/store/db"
)

func New(db *db.DB) core.TransactionStore {
	return &transactionStore{db: db}
}

type transactionStore struct {
	db *db.DB
}

// Runner is satisfied by both the connection and an open *sql.Tx.
type Runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Insert writes tx through r and sets its ID.
func Insert(ctx context.Context, conn *db.DB, r Runner, tx *core.Transaction) error {
	signature := sql.NullString{String: tx.Signature.String(), Valid: !tx.Signature.IsZero()}
	msg := sql.NullString{String: tx.Error, Valid: tx.Error != ""}

	b := conn.Builder.Insert("transactions").
		Columns("trace_id", "created_at", "signature", "slot", "payer", "program", "instruction", "amount", "fee", "status", "error").
		Values(tx.TraceID, tx.CreatedAt.UnixMilli(), signature, tx.Slot, tx.Payer.String(), tx.Program.String(), tx.Instruction, tx.Amount, tx.Fee, tx.Status, msg)

	if conn.Driver == db.DriverPostgres {
		stmt, args := b.Suffix("RETURNING id").MustSql()
		return r.QueryRowContext(ctx, stmt, args...).Scan(&tx.ID)
	}

	stmt, args := b.MustSql()
	result, err := r.ExecContext(ctx, stmt, args...)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	tx.ID = uint64(id)
	return nil
}

func (s *transactionStore) Create(ctx context.Context, tx *core.Transaction) error {
	return Insert(ctx, s.db, s.db, tx)
}

func (s *transactionStore) FindSignature(ctx context.Context, sig solana.Signature) (*core.Transaction, error) {
	if sig.IsZero() {
		return nil, sql.ErrNoRows
	}

	b := s.db.Builder.Select(scanColumns...).
		From("transactions").
		Where("signature = ?", sig.String())
	stmt, args := b.MustSql()
	row := s.db.QueryRowContext(ctx, stmt, args...)

	var tx core.Transaction
	if err := scanTransaction(row, &tx); err != nil {
		return nil, err
	}

	return &tx, nil
}

func (s *transactionStore) ListPayer(ctx context.Context, payer solana.PublicKey, offset uint64, limit int) ([]*core.Transaction, error) {
	b := s.db.Builder.Select(scanColumns...).
		From("transactions").
		Where("payer = ? AND id > ?", payer.String(), offset).
		OrderBy("id").
		Limit(uint64(limit))
	stmt, args := b.MustSql()
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var txs []*core.Transaction
	for rows.Next() {
		var tx core.Transaction
		if err := scanTransaction(rows, &tx); err != nil {
			return nil, err
		}

		txs = append(txs, &tx)
	}

	return txs, rows.Err()
}
