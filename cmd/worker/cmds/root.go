package cmds

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/generic"
	"github.com/pandodao/vault/core"
	"github.com/pandodao/vault/lamports"
	"github.com/pandodao/vault/program/vault"
	"github.com/pandodao/vault/worker/auditor"
	"github.com/spf13/cobra"
)

type Cmd struct {
	Accounts   core.AccountStore
	Properties core.PropertyStore
	Auditor    *auditor.Auditor

	// Out defaults to stdout.
	Out io.Writer `wire:"-"`
}

func (c *Cmd) Run(ctx context.Context, args []string) error {
	root := &cobra.Command{
		Use:   "vault-worker",
		Short: "vault worker admin commands",
	}

	root.AddCommand(c.listVaultsCmd())
	root.AddCommand(c.auditCmd())
	root.AddCommand(c.reportCmd())

	root.SetArgs(args)
	root.SetOut(os.Stdout)
	if c.Out != nil {
		root.SetOut(c.Out)
	}

	return root.ExecuteContext(ctx)
}

type vaultView struct {
	State     string `json:"state"`
	Owner     string `json:"owner,omitempty"`
	StateBump uint8  `json:"state_bump"`
	VaultBump uint8  `json:"vault_bump"`
	Reserve   string `json:"reserve"`
	Error     string `json:"error,omitempty"`
}

func viewState(account *core.Account) vaultView {
	view := vaultView{
		State:   account.Address.String(),
		Reserve: lamports.Format(account.Lamports),
	}

	state, err := vault.DecodeState(account.Data)
	if err != nil {
		view.Error = err.Error()
		return view
	}

	view.Owner = state.Owner.String()
	view.StateBump = state.StateBump
	view.VaultBump = state.VaultBump
	return view
}

func (c *Cmd) listVaultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-vaults",
		Short: "list vault states owned by the program",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			programID, err := solana.PublicKeyFromBase58(generic.Must(cmd.Flags().GetString("program")))
			if err != nil {
				return err
			}

			after, _ := cmd.Flags().GetString("after")
			limit, _ := cmd.Flags().GetInt("limit")

			states, err := c.Accounts.ListOwner(ctx, programID, after, limit)
			if err != nil {
				return err
			}

			return jsonPrint(cmd, generic.MapSlice(states, viewState))
		},
	}

	cmd.Flags().String("program", vault.ProgramID.String(), "vault program id")
	cmd.Flags().String("after", "", "list states after this address")
	cmd.Flags().Int("limit", 100, "page size")
	return cmd
}

func (c *Cmd) auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "run a full audit pass now",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.Auditor.Audit(cmd.Context())
			if err != nil {
				return err
			}

			return jsonPrint(cmd, report)
		},
	}
}

func (c *Cmd) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "print the last audit report",
		RunE: func(cmd *cobra.Command, args []string) error {
			var report core.AuditReport
			if err := c.Properties.Get(cmd.Context(), core.PropertyAuditReport, &report); err != nil {
				return err
			}

			return jsonPrint(cmd, report)
		},
	}
}

func jsonPrint(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
