package vault

import (
	"bytes"
	"crypto/sha256"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// StateSize is the allocated length of a state account: discriminator,
// owner, vault bump and state bump.
const StateSize = 8 + 32 + 1 + 1

var stateDiscriminator = discriminator("account", "VaultState")

func discriminator(namespace, name string) [8]byte {
	var d [8]byte
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	copy(d[:], sum[:8])
	return d
}

// State is the data of a depositor's state account.
type State struct {
	Owner     solana.PublicKey
	VaultBump uint8
	StateBump uint8
}

func (s *State) MarshalBinary() ([]byte, error) {
	body, err := bin.MarshalBorsh(s)
	if err != nil {
		return nil, err
	}

	return append(stateDiscriminator[:], body...), nil
}

// DecodeState parses state account data.
func DecodeState(data []byte) (*State, error) {
	if len(data) != StateSize {
		return nil, fail(ErrInvalidAccountData, "state length %d", len(data))
	}

	if !bytes.Equal(data[:8], stateDiscriminator[:]) {
		return nil, fail(ErrInvalidAccountData, "state discriminator mismatch")
	}

	var s State
	if err := bin.UnmarshalBorsh(&s, data[8:]); err != nil {
		return nil, fail(ErrInvalidAccountData, "decode state: %v", err)
	}

	return &s, nil
}
