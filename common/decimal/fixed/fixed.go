package fixed

import (
	"math/big"

	"github.com/celo-org/genesis-builder/common/decimal"
)

var precision = decimal.Precision(18)

// Fixed is a decimal number with 18 decimal digits, the scale of on-chain ratios
type Fixed big.Int

// MustNew creates an instance of Fixed from a string
func MustNew(str string) *Fixed { return (*Fixed)(decimal.MustNew(str, precision)) }

// FromBig reinterprets an already scaled integer as Fixed
func FromBig(scaled *big.Int) *Fixed { return (*Fixed)(new(big.Int).Set(scaled)) }

// One returns 1.0
func One() *Fixed { return MustNew("1") }

// String implements fmt.Stringer
func (v *Fixed) String() string { return decimal.String(v.BigInt(), precision) }

// BigInt returns big.Int representation
func (v *Fixed) BigInt() *big.Int { return (*big.Int)(v) }

// Cmp compares v and w like big.Int.Cmp
func (v *Fixed) Cmp(w *Fixed) int { return v.BigInt().Cmp(w.BigInt()) }

// MarshalJSON implements json.Marshaller
func (v Fixed) MarshalJSON() ([]byte, error) { return decimal.ToJSON(v.BigInt(), precision) }

// UnmarshalJSON implements json.Unmarshaller
func (v *Fixed) UnmarshalJSON(b []byte) error {
	value, err := decimal.FromJSON(b, precision)
	if err == nil {
		*v = (Fixed)(*value)
	}
	return err
}
