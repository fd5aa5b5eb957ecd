package cmd

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/lamports"
	"github.com/spf13/cobra"
)

var airdropCmd = &cobra.Command{
	Use:   "airdrop <sol> [address]",
	Short: "request lamports from the faucet",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := lamports.ParseSOL(args[0])
		if err != nil {
			return err
		}

		address, err := addressArg(args[1:])
		if err != nil {
			return err
		}

		c, err := getClient()
		if err != nil {
			return err
		}

		record, err := c.Airdrop(cmd.Context(), address, amount)
		if err != nil {
			return err
		}

		return printJson(cmd, record)
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "show the balance of an account",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := addressArg(args)
		if err != nil {
			return err
		}

		c, err := getClient()
		if err != nil {
			return err
		}

		balance, err := c.Balance(cmd.Context(), address)
		if err != nil {
			return err
		}

		cmd.Println(lamports.Format(balance), "SOL")
		return nil
	},
}

var transactionsOpt struct {
	offset uint64
	limit  int
}

var txCmd = &cobra.Command{
	Use:   "tx [signature]",
	Short: "show a transaction, or list the ones paid by the keypair",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			sig, err := solana.SignatureFromBase58(args[0])
			if err != nil {
				return err
			}

			record, err := c.Transaction(cmd.Context(), sig)
			if err != nil {
				return err
			}

			return printJson(cmd, record)
		}

		payer, err := addressArg(nil)
		if err != nil {
			return err
		}

		records, err := c.Transactions(cmd.Context(), payer, transactionsOpt.offset, transactionsOpt.limit)
		if err != nil {
			return err
		}

		return printJson(cmd, records)
	},
}

func init() {
	rootCmd.AddCommand(airdropCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(txCmd)

	txCmd.Flags().Uint64Var(&transactionsOpt.offset, "offset", 0, "list records after this id")
	txCmd.Flags().IntVar(&transactionsOpt.limit, "limit", 20, "page size")
}
