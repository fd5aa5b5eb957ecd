package vault

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/pda"
)

type Kind uint8

const (
	KindInitialize Kind = iota + 1
	KindDeposit
	KindWithdraw
	KindClose
)

var kindNames = map[Kind]string{
	KindInitialize: "initialize",
	KindDeposit:    "deposit",
	KindWithdraw:   "withdraw",
	KindClose:      "close",
}

var kindDiscriminators = map[Kind][8]byte{
	KindInitialize: discriminator("global", "initialize"),
	KindDeposit:    discriminator("global", "deposit"),
	KindWithdraw:   discriminator("global", "withdraw"),
	KindClose:      discriminator("global", "close"),
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// HasAmount reports whether instructions of this kind carry an amount.
func (k Kind) HasAmount() bool {
	return k == KindDeposit || k == KindWithdraw
}

// Instruction is decoded instruction data.
type Instruction struct {
	Kind   Kind
	Amount uint64
}

type amountArgs struct {
	Amount uint64
}

// EncodeInstruction serializes an instruction as its discriminator followed
// by the borsh encoded arguments.
func EncodeInstruction(inst Instruction) ([]byte, error) {
	d, ok := kindDiscriminators[inst.Kind]
	if !ok {
		return nil, fail(ErrInvalidInstruction, "unknown kind %d", inst.Kind)
	}

	data := append([]byte(nil), d[:]...)
	if !inst.Kind.HasAmount() {
		return data, nil
	}

	args, err := bin.MarshalBorsh(&amountArgs{Amount: inst.Amount})
	if err != nil {
		return nil, err
	}

	return append(data, args...), nil
}

// DecodeInstruction parses instruction data.
func DecodeInstruction(data []byte) (*Instruction, error) {
	if len(data) < 8 {
		return nil, fail(ErrInvalidInstruction, "data length %d", len(data))
	}

	for kind, d := range kindDiscriminators {
		if !bytes.Equal(data[:8], d[:]) {
			continue
		}

		inst := &Instruction{Kind: kind}
		rest := data[8:]
		if !kind.HasAmount() {
			if len(rest) != 0 {
				return nil, fail(ErrInvalidInstruction, "%s takes no arguments", kind)
			}

			return inst, nil
		}

		if len(rest) != 8 {
			return nil, fail(ErrInvalidInstruction, "%s amount length %d", kind, len(rest))
		}

		var args amountArgs
		if err := bin.UnmarshalBorsh(&args, rest); err != nil {
			return nil, fail(ErrInvalidInstruction, "%s amount: %v", kind, err)
		}

		inst.Amount = args.Amount
		return inst, nil
	}

	return nil, fail(ErrInvalidInstruction, "unknown discriminator %x", data[:8])
}

func newInstruction(programID, signer solana.PublicKey, inst Instruction) (solana.Instruction, error) {
	addrs, err := pda.Derive(programID, signer)
	if err != nil {
		return nil, err
	}

	data, err := EncodeInstruction(inst)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(signer).WRITE().SIGNER(),
		solana.Meta(addrs.State).WRITE(),
		solana.Meta(addrs.Vault).WRITE(),
		solana.Meta(solana.SystemProgramID),
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// NewInitializeInstruction builds an initialize instruction for signer's vault.
func NewInitializeInstruction(programID, signer solana.PublicKey) (solana.Instruction, error) {
	return newInstruction(programID, signer, Instruction{Kind: KindInitialize})
}

func NewDepositInstruction(programID, signer solana.PublicKey, amount uint64) (solana.Instruction, error) {
	return newInstruction(programID, signer, Instruction{Kind: KindDeposit, Amount: amount})
}

func NewWithdrawInstruction(programID, signer solana.PublicKey, amount uint64) (solana.Instruction, error) {
	return newInstruction(programID, signer, Instruction{Kind: KindWithdraw, Amount: amount})
}

func NewCloseInstruction(programID, signer solana.PublicKey) (solana.Instruction, error) {
	return newInstruction(programID, signer, Instruction{Kind: KindClose})
}
