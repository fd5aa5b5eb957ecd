// Package memory keeps accounts, transactions and properties in process. It
// backs tests and single-process deployments that do not need durability.
package memory

import (
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/core"
	g "github.com/zyedidia/generic"
	"github.com/zyedidia/generic/btree"
)

type DB struct {
	mux sync.RWMutex

	// accounts ordered by base58 address, the same order SQL stores page in
	accounts     *btree.Tree[string, *core.Account]
	transactions []*core.Transaction
	signatures   map[solana.Signature]*core.Transaction
	properties   map[string][]byte
}

func New() *DB {
	return &DB{
		accounts:   btree.New[string, *core.Account](g.Less[string]),
		signatures: map[solana.Signature]*core.Transaction{},
		properties: map[string][]byte{},
	}
}
