package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/gagliardetto/solana-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

// blockhashes advances the slot once per committed transaction and keeps
// the most recent hashes a transaction may reference.
type blockhashes struct {
	mux    sync.Mutex
	slot   uint64
	latest solana.Hash
	recent *lru.Cache[solana.Hash, uint64]
}

func newBlockhashes(size int, genesis []byte) *blockhashes {
	recent, err := lru.New[solana.Hash, uint64](size)
	if err != nil {
		panic(err)
	}

	b := &blockhashes{
		latest: solana.Hash(sha256.Sum256(genesis)),
		recent: recent,
	}

	b.recent.Add(b.latest, 0)
	return b
}

func (b *blockhashes) Latest() (solana.Hash, uint64) {
	b.mux.Lock()
	defer b.mux.Unlock()

	return b.latest, b.slot
}

func (b *blockhashes) Contains(hash solana.Hash) bool {
	return b.recent.Contains(hash)
}

// Advance moves to the next slot and returns it.
func (b *blockhashes) Advance() uint64 {
	b.mux.Lock()
	defer b.mux.Unlock()

	b.slot++

	var buf [40]byte
	copy(buf[:32], b.latest[:])
	binary.LittleEndian.PutUint64(buf[32:], b.slot)
	b.latest = solana.Hash(sha256.Sum256(buf[:]))
	b.recent.Add(b.latest, b.slot)
	return b.slot
}
