package main

import (
	"context"

	"github.com/google/wire"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/store/account"
	"github.com/pandodao/vault/store/db"
	"github.com/pandodao/vault/store/memory"
	"github.com/pandodao/vault/store/property"
	"github.com/pandodao/vault/store/transaction"
	"github.com/spf13/viper"
)

const driverMemory = "memory"

var storeSet = wire.NewSet(
	provideStores,
	wire.FieldsOf(new(stores), "Accounts", "Transactions", "Properties"),
)

type stores struct {
	Accounts     core.AccountStore
	Transactions core.TransactionStore
	Properties   core.PropertyStore
	Ping         func(ctx context.Context) error
}

func provideStores(v *viper.Viper) (stores, func(), error) {
	v.SetDefault("db.driver", db.DriverMySQL)

	driver := v.GetString("db.driver")
	if driver == driverMemory {
		m := memory.New()
		return stores{
			Accounts:     memory.NewAccountStore(m),
			Transactions: memory.NewTransactionStore(m),
			Properties:   memory.NewPropertyStore(m),
			Ping:         func(context.Context) error { return nil },
		}, func() {}, nil
	}

	dsn := v.GetString("db.dsn")
	for _, replica := range v.GetStringSlice("db.replicas") {
		dsn += ";" + replica
	}

	conn, err := db.Open(driver, dsn)
	if err != nil {
		return stores{}, nil, err
	}

	if err := db.Migrate(conn); err != nil {
		_ = conn.Close()
		return stores{}, nil, err
	}

	return stores{
		Accounts:     account.New(conn),
		Transactions: transaction.New(conn),
		Properties:   property.New(conn),
		Ping:         func(context.Context) error { return conn.Ping() },
	}, func() { _ = conn.Close() }, nil
}
