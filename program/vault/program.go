// Package vault implements the custodial vault program: every depositor owns
// one state account and one vault account, both derived from the depositor's
// key, and only the recorded owner may move lamports in or out.
package vault

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/vault/lamports"
	"github.com/pandodao/vault/ledger"
	"github.com/pandodao/vault/pda"
)

// ProgramID is the default address the vault program is deployed under.
var ProgramID = solana.MustPublicKeyFromBase58("2wqq41oHbVmc5Q9bxbUXLSXLmtpqc788UwDM4N1XvY7U")

type Program struct {
	id solana.PublicKey
}

func New(id solana.PublicKey) *Program {
	return &Program{id: id}
}

func (p *Program) ID() solana.PublicKey {
	return p.id
}

func (p *Program) Describe(data []byte) (string, uint64) {
	inst, err := DecodeInstruction(data)
	if err != nil {
		return "unknown", 0
	}

	return inst.Kind.String(), inst.Amount
}

type accounts struct {
	signer *ledger.AccountInfo
	state  *ledger.AccountInfo
	vault  *ledger.AccountInfo
}

func (p *Program) Process(ic *ledger.InvokeContext) error {
	inst, err := DecodeInstruction(ic.Data)
	if err != nil {
		return err
	}

	if len(ic.Accounts) < 4 {
		return fail(ErrNotEnoughAccounts, "want 4 accounts, got %d", len(ic.Accounts))
	}

	if !ic.Accounts[3].Key.Equals(solana.SystemProgramID) {
		return fail(ErrInvalidAccountData, "account 3 is %s, not the system program", ic.Accounts[3].Key)
	}

	accs := &accounts{
		signer: ic.Accounts[0],
		state:  ic.Accounts[1],
		vault:  ic.Accounts[2],
	}

	logger := ic.Logger.With("instruction", inst.Kind.String(), "signer", accs.signer.Key)

	switch inst.Kind {
	case KindInitialize:
		err = p.initialize(ic, accs)
	case KindDeposit:
		err = p.deposit(ic, accs, inst.Amount)
	case KindWithdraw:
		err = p.withdraw(ic, accs, inst.Amount)
	case KindClose:
		err = p.close(ic, accs)
	}

	if err != nil {
		logger.Debug("instruction rejected", "err", err)
		return err
	}

	logger.Debug("instruction processed", "amount", inst.Amount, "vault", accs.vault.Key, "balance", accs.vault.Lamports())
	return nil
}

func (p *Program) initialize(ic *ledger.InvokeContext, accs *accounts) error {
	if !accs.signer.IsSigner {
		return fail(ErrUnauthorized, "%s did not sign", accs.signer.Key)
	}

	addrs, err := pda.Derive(p.id, accs.signer.Key)
	if err != nil {
		return fail(ErrDerivationMismatch, "%v", err)
	}

	if !addrs.State.Equals(accs.state.Key) {
		return fail(ErrDerivationMismatch, "state want %s got %s", addrs.State, accs.state.Key)
	}

	if !addrs.Vault.Equals(accs.vault.Key) {
		return fail(ErrDerivationMismatch, "vault want %s got %s", addrs.Vault, accs.vault.Key)
	}

	if accs.state.Exists() {
		return fail(ErrAlreadyInitialized, "state %s", accs.state.Key)
	}

	if !accs.vault.Owner().Equals(solana.SystemProgramID) || len(accs.vault.Data()) > 0 {
		return fail(ErrInvalidAccountData, "vault %s is not a plain system account", accs.vault.Key)
	}

	stateRent := ic.Rent.MinimumBalance(StateSize)

	var topUp uint64
	if floor := ic.Rent.MinimumBalance(0); accs.vault.Lamports() < floor {
		topUp = floor - accs.vault.Lamports()
	}

	total, err := lamports.Add(stateRent, topUp)
	if err != nil {
		return translate(err)
	}

	if accs.signer.Lamports() < total {
		return fail(ErrInsufficientFunds, "%s has %d, needs %d", accs.signer.Key, accs.signer.Lamports(), total)
	}

	data, err := (&State{
		Owner:     accs.signer.Key,
		VaultBump: addrs.VaultBump,
		StateBump: addrs.StateBump,
	}).MarshalBinary()
	if err != nil {
		return err
	}

	seeds := pda.StateSeeds(accs.signer.Key, addrs.StateBump)
	if err := ic.CreateAccount(accs.signer, accs.state, stateRent, StateSize, p.id, seeds); err != nil {
		return translate(err)
	}

	if err := ic.SetData(accs.state, data); err != nil {
		return err
	}

	if topUp > 0 {
		if err := ic.Transfer(accs.signer, accs.vault, topUp, nil); err != nil {
			return translate(err)
		}
	}

	return nil
}

// load reads the state account and checks the supplied accounts against the
// derivation recorded in it, then the signer against the recorded owner.
func (p *Program) load(accs *accounts) (*State, error) {
	if !accs.state.Exists() || !accs.state.Owner().Equals(p.id) {
		return nil, fail(ErrNotInitialized, "state %s", accs.state.Key)
	}

	state, err := DecodeState(accs.state.Data())
	if err != nil {
		return nil, err
	}

	if err := pda.Verify(p.id, state.Owner, state.StateBump, state.VaultBump, accs.state.Key, accs.vault.Key); err != nil {
		return nil, fail(ErrDerivationMismatch, "%v", err)
	}

	if !accs.signer.Key.Equals(state.Owner) {
		return nil, fail(ErrUnauthorized, "%s is not the owner %s", accs.signer.Key, state.Owner)
	}

	if !accs.signer.IsSigner {
		return nil, fail(ErrUnauthorized, "%s did not sign", accs.signer.Key)
	}

	return state, nil
}

func (p *Program) deposit(ic *ledger.InvokeContext, accs *accounts, amount uint64) error {
	if _, err := p.load(accs); err != nil {
		return err
	}

	if amount == 0 {
		return fail(ErrInvalidAmount, "deposit of zero")
	}

	if accs.signer.Lamports() < amount {
		return fail(ErrInsufficientFunds, "%s has %d, needs %d", accs.signer.Key, accs.signer.Lamports(), amount)
	}

	if _, err := lamports.Add(accs.vault.Lamports(), amount); err != nil {
		return translate(err)
	}

	return translate(ic.Transfer(accs.signer, accs.vault, amount, nil))
}

func (p *Program) withdraw(ic *ledger.InvokeContext, accs *accounts, amount uint64) error {
	state, err := p.load(accs)
	if err != nil {
		return err
	}

	if amount == 0 {
		return fail(ErrInvalidAmount, "withdraw of zero")
	}

	floor := ic.Rent.MinimumBalance(0)
	left, err := lamports.Sub(accs.vault.Lamports(), amount)
	if err != nil || left < floor {
		return fail(ErrInsufficientVaultBalance, "vault holds %d, withdraw %d, floor %d", accs.vault.Lamports(), amount, floor)
	}

	if _, err := lamports.Add(accs.signer.Lamports(), amount); err != nil {
		return translate(err)
	}

	seeds := pda.VaultSeeds(accs.state.Key, state.VaultBump)
	return translate(ic.Transfer(accs.vault, accs.signer, amount, seeds))
}

func (p *Program) close(ic *ledger.InvokeContext, accs *accounts) error {
	state, err := p.load(accs)
	if err != nil {
		return err
	}

	total, err := lamports.Add(accs.vault.Lamports(), accs.state.Lamports())
	if err != nil {
		return translate(err)
	}

	if _, err := lamports.Add(accs.signer.Lamports(), total); err != nil {
		return translate(err)
	}

	if amount := accs.vault.Lamports(); amount > 0 {
		seeds := pda.VaultSeeds(accs.state.Key, state.VaultBump)
		if err := ic.Transfer(accs.vault, accs.signer, amount, seeds); err != nil {
			return translate(err)
		}
	}

	return translate(ic.CloseAccount(accs.state, accs.signer))
}
