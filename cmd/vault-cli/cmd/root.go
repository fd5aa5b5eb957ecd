/*
Copyright © 2024 pando
*/
package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/client"
	"github.com/pandodao/vault/program/vault"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "vault-cli",
	Short:        "client for the vault api",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	home, _ := os.UserHomeDir()

	rootCmd.PersistentFlags().StringP("endpoint", "l", "http://localhost:8080", "api endpoint")
	rootCmd.PersistentFlags().StringP("keypair", "k", filepath.Join(home, ".config", "vault", "id.json"), "keypair file")
	rootCmd.PersistentFlags().String("program", vault.ProgramID.String(), "vault program id")

	viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag("keypair", rootCmd.PersistentFlags().Lookup("keypair"))
	viper.BindPFlag("program", rootCmd.PersistentFlags().Lookup("program"))

	viper.SetEnvPrefix("vault")
	viper.AutomaticEnv()
}

func getClient() (*client.VaultClient, error) {
	programID, err := solana.PublicKeyFromBase58(viper.GetString("program"))
	if err != nil {
		return nil, err
	}

	return client.NewVaultClient(client.New(viper.GetString("endpoint")), programID), nil
}

func getSigner() (solana.PrivateKey, error) {
	return client.LoadKeypair(viper.GetString("keypair"))
}

// addressArg parses args[0] as an address, falling back to the keypair's.
func addressArg(args []string) (solana.PublicKey, error) {
	if len(args) > 0 {
		return solana.PublicKeyFromBase58(args[0])
	}

	key, err := getSigner()
	if err != nil {
		return solana.PublicKey{}, err
	}

	return key.PublicKey(), nil
}

func printJson(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	cmd.Println(string(b))
	return nil
}
