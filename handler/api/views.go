package api

import (
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/lamports"
)

type Blockhash struct {
	Blockhash       string `json:"blockhash"`
	Slot            uint64 `json:"slot"`
	FeePerSignature uint64 `json:"fee_per_signature"`
}

type Rent struct {
	Size     int    `json:"size"`
	Lamports uint64 `json:"lamports"`
	SOL      string `json:"sol"`
}

type Account struct {
	Address  string `json:"address"`
	Lamports uint64 `json:"lamports"`
	SOL      string `json:"sol"`
	Owner    string `json:"owner"`
	Data     []byte `json:"data,omitempty"`
	Exists   bool   `json:"exists"`
}

func viewAccount(account *core.Account) *Account {
	return &Account{
		Address:  account.Address.String(),
		Lamports: account.Lamports,
		SOL:      lamports.Format(account.Lamports),
		Owner:    account.Owner.String(),
		Data:     account.Data,
		Exists:   account.Exists(),
	}
}

const (
	VaultStatusUninitialized = "Uninitialized"
	VaultStatusActive        = "Active"
)

type Vault struct {
	Owner     string `json:"owner"`
	Status    string `json:"status"`
	State     string `json:"state"`
	StateBump uint8  `json:"state_bump"`
	Vault     string `json:"vault"`
	VaultBump uint8  `json:"vault_bump"`
	// Balance is everything the vault holds, Floor the part that must stay
	// while it is open and Withdrawable the rest.
	Balance      uint64 `json:"balance"`
	SOL          string `json:"sol"`
	Floor        uint64 `json:"floor"`
	Withdrawable uint64 `json:"withdrawable"`
	StateReserve uint64 `json:"state_reserve"`
}

type SendTransactionRequest struct {
	// Transaction is a signed legacy transaction, base64 encoded.
	Transaction string `json:"transaction"`
}

type AirdropRequest struct {
	Address  string `json:"address"`
	Lamports uint64 `json:"lamports,omitempty"`
	// SOL is used when Lamports is zero, e.g. "1.5".
	SOL string `json:"sol,omitempty"`
}
