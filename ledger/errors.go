package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransaction       = errors.New("invalid transaction")
	ErrSignatureFailure         = errors.New("transaction signature verification failure")
	ErrBlockhashNotFound        = errors.New("blockhash not found")
	ErrAlreadyProcessed         = errors.New("transaction already processed")
	ErrUnknownProgram           = errors.New("unknown program")
	ErrInsufficientFundsForFee  = errors.New("insufficient funds for fee")
	ErrInsufficientFundsForRent = errors.New("insufficient funds for rent")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrAccountAlreadyInUse      = errors.New("account already in use")
	ErrMissingSignature         = errors.New("missing required signature")
	ErrReadonlyAccount          = errors.New("account is not writable")
	ErrExternalAccountDebit     = errors.New("instruction spent from the balance of an account it does not own")
	ErrExternalDataModified     = errors.New("instruction modified data of an account it does not own")
	ErrUnbalancedInstruction    = errors.New("sum of account balances before and after instruction do not match")
	ErrFaucetDisabled           = errors.New("faucet disabled")
	ErrFaucetLimit              = errors.New("airdrop exceeds faucet limit")
)

var sentinels = []error{
	ErrInvalidTransaction,
	ErrSignatureFailure,
	ErrBlockhashNotFound,
	ErrAlreadyProcessed,
	ErrUnknownProgram,
	ErrInsufficientFundsForFee,
	ErrInsufficientFundsForRent,
	ErrInsufficientFunds,
	ErrAccountAlreadyInUse,
	ErrMissingSignature,
	ErrReadonlyAccount,
	ErrExternalAccountDebit,
	ErrExternalDataModified,
	ErrUnbalancedInstruction,
	ErrFaucetDisabled,
	ErrFaucetLimit,
}

// Sentinel returns the ledger error wrapped by err, if any.
func Sentinel(err error) error {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s
		}
	}

	return nil
}

// SentinelFromMessage maps an error message back to its sentinel.
func SentinelFromMessage(msg string) error {
	for _, s := range sentinels {
		if s.Error() == msg {
			return s
		}
	}

	return nil
}

// InstructionError reports which instruction of a transaction failed.
type InstructionError struct {
	Index int
	Err   error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction %d: %v", e.Index, e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}
