package vault

import (
	"errors"
	"fmt"

	"github.com/pandodao/vault/lamports"
	"github.com/pandodao/vault/ledger"
)

// Error is a vault program failure. Codes are stable and travel across the
// API so clients can match them with errors.Is.
type Error uint32

const (
	ErrDerivationMismatch Error = 6000 + iota
	ErrAlreadyInitialized
	ErrUnauthorized
	ErrInvalidAmount
	ErrInsufficientFunds
	ErrInsufficientVaultBalance
	ErrOverflow
	ErrUnderflow
	ErrNotInitialized
	ErrInvalidInstruction
	ErrInvalidAccountData
	ErrNotEnoughAccounts
)

var errorNames = map[Error][2]string{
	ErrDerivationMismatch:       {"DerivationMismatch", "supplied account does not match the derived address"},
	ErrAlreadyInitialized:       {"AlreadyInitialized", "vault state already initialized"},
	ErrUnauthorized:             {"Unauthorized", "signer is not the vault owner"},
	ErrInvalidAmount:            {"InvalidAmount", "amount must be greater than zero"},
	ErrInsufficientFunds:        {"InsufficientFunds", "signer balance is insufficient"},
	ErrInsufficientVaultBalance: {"InsufficientVaultBalance", "vault balance would fall below the rent-exemption floor"},
	ErrOverflow:                 {"Overflow", "arithmetic overflow"},
	ErrUnderflow:                {"Underflow", "arithmetic underflow"},
	ErrNotInitialized:           {"NotInitialized", "vault state not initialized"},
	ErrInvalidInstruction:       {"InvalidInstruction", "invalid instruction data"},
	ErrInvalidAccountData:       {"InvalidAccountData", "invalid vault state account"},
	ErrNotEnoughAccounts:        {"NotEnoughAccounts", "not enough account keys"},
}

func (e Error) Code() uint32 { return uint32(e) }

func (e Error) Name() string {
	if v, ok := errorNames[e]; ok {
		return v[0]
	}

	return fmt.Sprintf("Custom(%d)", uint32(e))
}

func (e Error) Error() string {
	if v, ok := errorNames[e]; ok {
		return v[1]
	}

	return fmt.Sprintf("custom program error: %d", uint32(e))
}

// Errors lists every vault error in code order.
func Errors() []Error {
	errs := make([]Error, 0, len(errorNames))
	for e := ErrDerivationMismatch; e <= ErrNotEnoughAccounts; e++ {
		errs = append(errs, e)
	}

	return errs
}

// ErrorFromCode returns the vault error with the given code.
func ErrorFromCode(code uint32) (Error, bool) {
	e := Error(code)
	_, ok := errorNames[e]
	return e, ok
}

// AsError extracts the vault error carried by err.
func AsError(err error) (Error, bool) {
	var e Error
	if errors.As(err, &e) {
		return e, true
	}

	return 0, false
}

// fail wraps a vault error with detail while keeping errors.Is matching.
func fail(e Error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

// translate maps runtime failures raised by system operations onto the
// vault taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, lamports.ErrOverflow):
		return fmt.Errorf("%w: %v", ErrOverflow, err)
	case errors.Is(err, lamports.ErrUnderflow):
		return fmt.Errorf("%w: %v", ErrUnderflow, err)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
	default:
		return err
	}
}
