// Package rent computes the minimum balance an account needs to persist on the ledger.
package rent

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// AccountStorageOverhead is the per-account byte overhead charged on top of its data.
const AccountStorageOverhead = 128

const (
	DefaultLamportsPerByteYear uint64 = 3480
	DefaultExemptionThreshold         = 2.0
)

type Rent struct {
	LamportsPerByteYear uint64          `json:"lamports_per_byte_year"`
	ExemptionThreshold  decimal.Decimal `json:"exemption_threshold"`
}

// Default mirrors mainnet parameters: a zero-data account needs 890880 lamports.
func Default() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  decimal.NewFromFloat(DefaultExemptionThreshold),
	}
}

// Free has a zero floor for every account size.
func Free() Rent {
	return Rent{}
}

// MinimumBalance returns the rent-exemption floor for an account holding dataLen bytes.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	if r.LamportsPerByteYear == 0 || !r.ExemptionThreshold.IsPositive() {
		return 0
	}

	bytes := decimal.NewFromInt(int64(AccountStorageOverhead + dataLen))
	perYear := decimal.NewFromBigInt(new(big.Int).SetUint64(r.LamportsPerByteYear), 0)
	return uint64(bytes.Mul(perYear).Mul(r.ExemptionThreshold).IntPart())
}

// IsExempt reports whether balance keeps an account of dataLen bytes alive.
func (r Rent) IsExempt(balance uint64, dataLen int) bool {
	return balance >= r.MinimumBalance(dataLen)
}
