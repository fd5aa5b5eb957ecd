package ledger

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/zyedidia/generic/mapset"
)

type keyLock struct {
	ch   chan struct{}
	refs int
}

// locker serializes transactions that share accounts. Keys are always
// acquired in sorted order.
type locker struct {
	mux   sync.Mutex
	locks map[solana.PublicKey]*keyLock
}

func newLocker() *locker {
	return &locker{locks: map[solana.PublicKey]*keyLock{}}
}

func (l *locker) ref(key solana.PublicKey) *keyLock {
	l.mux.Lock()
	defer l.mux.Unlock()

	k, ok := l.locks[key]
	if !ok {
		k = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = k
	}

	k.refs++
	return k
}

func (l *locker) unref(key solana.PublicKey) {
	l.mux.Lock()
	defer l.mux.Unlock()

	if k := l.locks[key]; k != nil {
		if k.refs--; k.refs == 0 {
			delete(l.locks, key)
		}
	}
}

func sortedUnique(keys []solana.PublicKey) []solana.PublicKey {
	set := mapset.New[solana.PublicKey]()
	for _, key := range keys {
		set.Put(key)
	}

	out := make([]solana.PublicKey, 0, set.Size())
	set.Each(func(key solana.PublicKey) {
		out = append(out, key)
	})

	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})

	return out
}

// Lock blocks until every key is held or ctx is done.
func (l *locker) Lock(ctx context.Context, keys []solana.PublicKey) (func(), error) {
	keys = sortedUnique(keys)

	var held []solana.PublicKey
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			key := held[i]
			l.mux.Lock()
			k := l.locks[key]
			l.mux.Unlock()

			<-k.ch
			l.unref(key)
		}
	}

	for _, key := range keys {
		k := l.ref(key)
		select {
		case k.ch <- struct{}{}:
			held = append(held, key)
		case <-ctx.Done():
			l.unref(key)
			release()
			return nil, ctx.Err()
		}
	}

	return release, nil
}
