package main

import (
	"time"

	"github.com/google/wire"
	"github.com/pandodao/vault/program/vault"
	"github.com/pandodao/vault/rent"
	"github.com/pandodao/vault/worker/auditor"
	"github.com/spf13/viper"
)

var workerSet = wire.NewSet(
	provideAuditorConfig,
	auditor.New,
)

func provideAuditorConfig(v *viper.Viper) auditor.Config {
	v.SetDefault("vault.program_id", vault.ProgramID.String())
	v.SetDefault("auditor.page_size", 500)
	v.SetDefault("auditor.concurrency", 8)
	v.SetDefault("auditor.interval", time.Minute)

	r := rent.Default()
	if v.GetBool("ledger.rent_free") {
		r = rent.Free()
	}

	return auditor.Config{
		ProgramID:   v.GetString("vault.program_id"),
		Rent:        r,
		PageSize:    v.GetInt("auditor.page_size"),
		Concurrency: v.GetInt("auditor.concurrency"),
		Interval:    v.GetDuration("auditor.interval"),
	}
}
