package main

import (
	"github.com/gagliardetto/solana-go"
	"github.com/google/wire"
	"github.com/pandodao/vault/lamports"
	"github.com/pandodao/vault/ledger"
	"github.com/pandodao/vault/program/vault"
	"github.com/pandodao/vault/rent"
	"github.com/spf13/viper"
)

var serviceSet = wire.NewSet(
	provideProgram,
	providePrograms,
	provideRent,
	provideLedgerConfig,
	ledger.New,
)

func provideProgram(v *viper.Viper) (*vault.Program, error) {
	v.SetDefault("vault.program_id", vault.ProgramID.String())

	id, err := solana.PublicKeyFromBase58(v.GetString("vault.program_id"))
	if err != nil {
		return nil, err
	}

	return vault.New(id), nil
}

func providePrograms(p *vault.Program) []ledger.Program {
	return []ledger.Program{p}
}

func provideRent(v *viper.Viper) rent.Rent {
	if v.GetBool("ledger.rent_free") {
		return rent.Free()
	}

	return rent.Default()
}

func provideLedgerConfig(v *viper.Viper, r rent.Rent) (ledger.Config, error) {
	v.SetDefault("ledger.fee_per_signature", ledger.DefaultFeePerSignature)
	v.SetDefault("ledger.recent_blockhashes", 150)
	v.SetDefault("ledger.faucet_limit", "0")
	v.SetDefault("ledger.genesis", "vault")

	limit, err := lamports.ParseSOL(v.GetString("ledger.faucet_limit"))
	if err != nil {
		return ledger.Config{}, err
	}

	return ledger.Config{
		FeePerSignature:   v.GetUint64("ledger.fee_per_signature"),
		Rent:              r,
		RecentBlockhashes: v.GetInt("ledger.recent_blockhashes"),
		FaucetLimit:       limit,
		Genesis:           v.GetString("ledger.genesis"),
	}, nil
}
