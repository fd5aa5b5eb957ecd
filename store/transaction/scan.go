package transaction

import (
	"database/sql"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/generic"
	"github.com/pandodao/vault/core"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

var scanColumns = []string{
	"id",
	"trace_id",
	"created_at",
	"signature",
	"slot",
	"payer",
	"program",
	"instruction",
	"amount",
	"fee",
	"status",
	"error",
}

func scanTransaction(scanner scanner, tx *core.Transaction) error {
	var (
		createdAt int64
		signature sql.NullString
		payer     string
		program   string
		msg       sql.NullString
	)

	if err := scanner.Scan(
		&tx.ID,
		&tx.TraceID,
		&createdAt,
		&signature,
		&tx.Slot,
		&payer,
		&program,
		&tx.Instruction,
		&tx.Amount,
		&tx.Fee,
		&tx.Status,
		&msg,
	); err != nil {
		return err
	}

	tx.CreatedAt = time.UnixMilli(createdAt)
	if signature.Valid {
		tx.Signature = generic.Must(solana.SignatureFromBase58(signature.String))
	}
	tx.Payer = generic.Must(solana.PublicKeyFromBase58(payer))
	tx.Program = generic.Must(solana.PublicKeyFromBase58(program))
	tx.Error = msg.String
	return nil
}
