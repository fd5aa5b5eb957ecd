// Package pda derives the program-owned addresses of a depositor's vault.
//
// The state account is derived from ["state", owner] and the vault account
// from ["vault", state], both under the vault program id. A derived address is
// never on the ed25519 curve, so no private key can sign for it; only the
// program can, by presenting the same seeds and bump.
package pda

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	StatePrefix = []byte("state")
	VaultPrefix = []byte("vault")
)

// ErrMismatch is returned when a supplied address differs from the derived one.
var ErrMismatch = errors.New("derived address mismatch")

type cacheKey struct {
	program solana.PublicKey
	prefix  string
	key     solana.PublicKey
}

type derived struct {
	address solana.PublicKey
	bump    uint8
}

var cache, _ = lru.New[cacheKey, derived](4096)

func find(programID solana.PublicKey, prefix []byte, key solana.PublicKey) (solana.PublicKey, uint8, error) {
	k := cacheKey{program: programID, prefix: string(prefix), key: key}
	if v, ok := cache.Get(k); ok {
		return v.address, v.bump, nil
	}

	address, bump, err := solana.FindProgramAddress([][]byte{prefix, key[:]}, programID)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}

	cache.Add(k, derived{address: address, bump: bump})
	return address, bump, nil
}

func create(programID solana.PublicKey, prefix []byte, key solana.PublicKey, bump uint8) (solana.PublicKey, error) {
	return solana.CreateProgramAddress([][]byte{prefix, key[:], {bump}}, programID)
}

// FindStateAddress searches the canonical state address and bump for owner.
func FindStateAddress(programID, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return find(programID, StatePrefix, owner)
}

// FindVaultAddress searches the canonical vault address and bump for a state account.
func FindVaultAddress(programID, state solana.PublicKey) (solana.PublicKey, uint8, error) {
	return find(programID, VaultPrefix, state)
}

// StateAddress re-derives the state address with a known bump.
func StateAddress(programID, owner solana.PublicKey, bump uint8) (solana.PublicKey, error) {
	return create(programID, StatePrefix, owner, bump)
}

// VaultAddress re-derives the vault address with a known bump.
func VaultAddress(programID, state solana.PublicKey, bump uint8) (solana.PublicKey, error) {
	return create(programID, VaultPrefix, state, bump)
}

// StateSeeds returns the signer seeds of a state account.
func StateSeeds(owner solana.PublicKey, bump uint8) [][]byte {
	return [][]byte{StatePrefix, owner.Bytes(), {bump}}
}

// VaultSeeds returns the signer seeds of a vault account.
func VaultSeeds(state solana.PublicKey, bump uint8) [][]byte {
	return [][]byte{VaultPrefix, state.Bytes(), {bump}}
}

// Addresses is the full derivation for one depositor.
type Addresses struct {
	Owner     solana.PublicKey
	State     solana.PublicKey
	StateBump uint8
	Vault     solana.PublicKey
	VaultBump uint8
}

// Derive computes both addresses of the vault belonging to owner.
func Derive(programID, owner solana.PublicKey) (*Addresses, error) {
	state, stateBump, err := FindStateAddress(programID, owner)
	if err != nil {
		return nil, fmt.Errorf("derive state: %w", err)
	}

	vault, vaultBump, err := FindVaultAddress(programID, state)
	if err != nil {
		return nil, fmt.Errorf("derive vault: %w", err)
	}

	return &Addresses{
		Owner:     owner,
		State:     state,
		StateBump: stateBump,
		Vault:     vault,
		VaultBump: vaultBump,
	}, nil
}

// Verify re-derives the state and vault addresses from the recorded owner and
// bumps and compares them against the supplied accounts.
func Verify(programID, owner solana.PublicKey, stateBump, vaultBump uint8, state, vault solana.PublicKey) error {
	wantState, err := StateAddress(programID, owner, stateBump)
	if err != nil {
		return fmt.Errorf("%w: state: %v", ErrMismatch, err)
	}

	if !wantState.Equals(state) {
		return fmt.Errorf("%w: state want %s got %s", ErrMismatch, wantState, state)
	}

	wantVault, err := VaultAddress(programID, state, vaultBump)
	if err != nil {
		return fmt.Errorf("%w: vault: %v", ErrMismatch, err)
	}

	if !wantVault.Equals(vault) {
		return fmt.Errorf("%w: vault want %s got %s", ErrMismatch, wantVault, vault)
	}

	return nil
}
