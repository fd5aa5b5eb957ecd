package client

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/program/vault"
)

// VaultClient signs and submits vault instructions.
type VaultClient struct {
	*Client
	programID solana.PublicKey
}

func NewVaultClient(c *Client, programID solana.PublicKey) *VaultClient {
	return &VaultClient{Client: c, programID: programID}
}

func (c *VaultClient) ProgramID() solana.PublicKey {
	return c.programID
}

func (c *VaultClient) Initialize(ctx context.Context, signer solana.PrivateKey) (*core.Transaction, error) {
	inst, err := vault.NewInitializeInstruction(c.programID, signer.PublicKey())
	if err != nil {
		return nil, err
	}

	return c.send(ctx, signer, inst)
}

func (c *VaultClient) Deposit(ctx context.Context, signer solana.PrivateKey, amount uint64) (*core.Transaction, error) {
	inst, err := vault.NewDepositInstruction(c.programID, signer.PublicKey(), amount)
	if err != nil {
		return nil, err
	}

	return c.send(ctx, signer, inst)
}

func (c *VaultClient) Withdraw(ctx context.Context, signer solana.PrivateKey, amount uint64) (*core.Transaction, error) {
	inst, err := vault.NewWithdrawInstruction(c.programID, signer.PublicKey(), amount)
	if err != nil {
		return nil, err
	}

	return c.send(ctx, signer, inst)
}

func (c *VaultClient) Close(ctx context.Context, signer solana.PrivateKey) (*core.Transaction, error) {
	inst, err := vault.NewCloseInstruction(c.programID, signer.PublicKey())
	if err != nil {
		return nil, err
	}

	return c.send(ctx, signer, inst)
}

func (c *VaultClient) send(ctx context.Context, signer solana.PrivateKey, inst solana.Instruction) (*core.Transaction, error) {
	hash, _, err := c.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction([]solana.Instruction{inst}, hash, solana.TransactionPayer(signer.PublicKey()))
	if err != nil {
		return nil, err
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(signer.PublicKey()) {
			return &signer
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return c.SendTransaction(ctx, tx)
}
