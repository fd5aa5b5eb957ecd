package cmd

import (
	"github.com/pandodao/vault/client"
	"github.com/pandodao/vault/pda"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "generate a keypair and save it to the keypair file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := client.GenerateKeypair()
		if err != nil {
			return err
		}

		path := viper.GetString("keypair")
		if err := client.SaveKeypair(path, key); err != nil {
			return err
		}

		cmd.Println("wrote", path)
		cmd.Println(key.PublicKey())
		return nil
	},
}

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "print the keypair's address and its vault addresses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := getSigner()
		if err != nil {
			return err
		}

		c, err := getClient()
		if err != nil {
			return err
		}

		addrs, err := pda.Derive(c.ProgramID(), key.PublicKey())
		if err != nil {
			return err
		}

		return printJson(cmd, addrs)
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(addressCmd)
}
