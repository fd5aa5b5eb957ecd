package cmd

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/lamports"
	"github.com/spf13/cobra"
)

var vaultCmd = &cobra.Command{
	Use:   "vault [owner]",
	Short: "show a vault",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := addressArg(args)
		if err != nil {
			return err
		}

		c, err := getClient()
		if err != nil {
			return err
		}

		view, err := c.Vault(cmd.Context(), owner)
		if err != nil {
			return err
		}

		return printJson(cmd, view)
	},
}

// vaultAction signs a vault instruction with the keypair and prints its record.
func vaultAction(fn func(ctx context.Context, signer solana.PrivateKey, amount uint64) (*core.Transaction, error)) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var amount uint64
		if len(args) > 0 {
			var err error
			if amount, err = lamports.ParseSOL(args[0]); err != nil {
				return err
			}
		}

		signer, err := getSigner()
		if err != nil {
			return err
		}

		record, err := fn(cmd.Context(), signer, amount)
		if record != nil {
			if err := printJson(cmd, record); err != nil {
				return err
			}
		}

		return err
	}
}

func init() {
	rootCmd.AddCommand(vaultCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "initialize the keypair's vault",
		Args:  cobra.NoArgs,
		RunE: vaultAction(func(ctx context.Context, signer solana.PrivateKey, _ uint64) (*core.Transaction, error) {
			c, err := getClient()
			if err != nil {
				return nil, err
			}

			return c.Initialize(ctx, signer)
		}),
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "deposit <sol>",
		Short: "deposit into the keypair's vault",
		Args:  cobra.ExactArgs(1),
		RunE: vaultAction(func(ctx context.Context, signer solana.PrivateKey, amount uint64) (*core.Transaction, error) {
			c, err := getClient()
			if err != nil {
				return nil, err
			}

			return c.Deposit(ctx, signer, amount)
		}),
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "withdraw <sol>",
		Short: "withdraw from the keypair's vault",
		Args:  cobra.ExactArgs(1),
		RunE: vaultAction(func(ctx context.Context, signer solana.PrivateKey, amount uint64) (*core.Transaction, error) {
			c, err := getClient()
			if err != nil {
				return nil, err
			}

			return c.Withdraw(ctx, signer, amount)
		}),
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "close",
		Short: "close the keypair's vault and reclaim every lamport",
		Args:  cobra.NoArgs,
		RunE: vaultAction(func(ctx context.Context, signer solana.PrivateKey, _ uint64) (*core.Transaction, error) {
			c, err := getClient()
			if err != nil {
				return nil, err
			}

			return c.Close(ctx, signer)
		}),
	})
}
