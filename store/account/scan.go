package account

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/generic"
	"github.com/pandodao/vault/core"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

var scanColumns = []string{
	"address",
	"lamports",
	"owner",
	"data",
	"version",
}

func scanAccount(scanner scanner, account *core.Account) error {
	var address, owner string

	if err := scanner.Scan(
		&address,
		&account.Lamports,
		&owner,
		&account.Data,
		&account.Version,
	); err != nil {
		return err
	}

	account.Address = generic.Must(solana.PublicKeyFromBase58(address))
	account.Owner = generic.Must(solana.PublicKeyFromBase58(owner))
	return nil
}
