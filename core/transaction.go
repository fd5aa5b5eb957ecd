package core

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
)

type TransactionStatus uint8

const (
	_ TransactionStatus = iota
	TransactionStatusSucceeded
	TransactionStatusFailed
)

func (i TransactionStatus) String() string {
	switch i {
	case TransactionStatusSucceeded:
		return "Succeeded"
	case TransactionStatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

func (i TransactionStatus) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

type Transaction struct {
	ID          uint64            `json:"id,omitempty"`
	TraceID     string            `json:"trace_id"`
	CreatedAt   time.Time         `json:"created_at"`
	Signature   solana.Signature  `json:"signature"`
	Slot        uint64            `json:"slot"`
	Payer       solana.PublicKey  `json:"payer"`
	Program     solana.PublicKey  `json:"program"`
	Instruction string            `json:"instruction"`
	Amount      uint64            `json:"amount"`
	Fee         uint64            `json:"fee"`
	Status      TransactionStatus `json:"status"`
	Error       string            `json:"error,omitempty"`
}

type TransactionStore interface {
	Create(ctx context.Context, tx *Transaction) error
	FindSignature(ctx context.Context, sig solana.Signature) (*Transaction, error)
	ListPayer(ctx context.Context, payer solana.PublicKey, offset uint64, limit int) ([]*Transaction, error)
}

func (i *TransactionStatus) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Succeeded":
		*i = TransactionStatusSucceeded
	case "Failed":
		*i = TransactionStatusFailed
	default:
		*i = 0
	}

	return nil
}
