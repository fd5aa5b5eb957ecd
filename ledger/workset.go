package ledger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/lamports"
	"github.com/pandodao/vault/rent"
	"github.com/pandodao/vault/store"
)

type entry struct {
	original *core.Account // nil when the account did not exist
	current  *core.Account
}

// workset is the copy of a transaction's accounts that programs mutate. It is
// only written back to the store when every instruction succeeded.
type workset struct {
	keys    []solana.PublicKey
	entries map[solana.PublicKey]*entry
}

func loadWorkset(ctx context.Context, accounts core.AccountStore, keys []solana.PublicKey) (*workset, error) {
	ws := &workset{
		keys:    keys,
		entries: make(map[solana.PublicKey]*entry, len(keys)),
	}

	for _, key := range keys {
		if _, ok := ws.entries[key]; ok {
			continue
		}

		account, err := accounts.Find(ctx, key)
		switch {
		case err == nil:
			ws.entries[key] = &entry{original: account, current: account.Clone()}
		case store.IsErrNotFound(err):
			ws.entries[key] = &entry{current: &core.Account{Address: key, Owner: solana.SystemProgramID}}
		default:
			return nil, fmt.Errorf("load account %s: %w", key, err)
		}
	}

	return ws, nil
}

func (ws *workset) account(key solana.PublicKey) *core.Account {
	return ws.entries[key].current
}

func (ws *workset) total() (uint64, error) {
	var total uint64
	for _, e := range ws.entries {
		var err error
		if total, err = lamports.Add(total, e.current.Lamports); err != nil {
			return 0, err
		}
	}

	return total, nil
}

type snapshot map[solana.PublicKey]core.Account

func (ws *workset) snapshot() snapshot {
	s := make(snapshot, len(ws.entries))
	for key, e := range ws.entries {
		s[key] = *e.current.Clone()
	}

	return s
}

// verify enforces the runtime rules after an instruction: balances are
// conserved, readonly accounts are untouched and every changed account that
// still exists is rent exempt.
func (ws *workset) verify(before snapshot, writable func(solana.PublicKey) bool, r rent.Rent) error {
	var sumBefore, sumAfter uint64
	for key, e := range ws.entries {
		prev := before[key]

		var err error
		if sumBefore, err = lamports.Add(sumBefore, prev.Lamports); err != nil {
			return err
		}

		if sumAfter, err = lamports.Add(sumAfter, e.current.Lamports); err != nil {
			return err
		}

		if !changed(&prev, e.current) {
			continue
		}

		if !writable(key) {
			return fmt.Errorf("%w: %s", ErrReadonlyAccount, key)
		}

		if e.current.Exists() && !r.IsExempt(e.current.Lamports, len(e.current.Data)) {
			return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFundsForRent, key, e.current.Lamports, r.MinimumBalance(len(e.current.Data)))
		}
	}

	if sumBefore != sumAfter {
		return fmt.Errorf("%w: %d != %d", ErrUnbalancedInstruction, sumBefore, sumAfter)
	}

	return nil
}

func changed(a, b *core.Account) bool {
	return a.Lamports != b.Lamports ||
		!a.Owner.Equals(b.Owner) ||
		!bytes.Equal(a.Data, b.Data)
}

// changes lists the writes to persist, in account key order of the message.
func (ws *workset) changes() []*core.AccountChange {
	var (
		out  []*core.AccountChange
		seen = make(map[solana.PublicKey]bool, len(ws.entries))
	)

	for _, key := range ws.keys {
		if seen[key] {
			continue
		}
		seen[key] = true

		e := ws.entries[key]
		switch {
		case e.original == nil && !e.current.Exists():
			continue
		case e.original == nil:
			a := e.current.Clone()
			a.Version = 1
			out = append(out, &core.AccountChange{Account: a})
		case !changed(e.original, e.current):
			continue
		case !e.current.Exists():
			out = append(out, &core.AccountChange{Account: e.current.Clone(), Deleted: true, Version: e.original.Version})
		default:
			a := e.current.Clone()
			a.Version = e.original.Version + 1
			out = append(out, &core.AccountChange{Account: a, Version: e.original.Version})
		}
	}

	return out
}
