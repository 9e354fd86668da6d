package token

import (
	"math/big"

	"github.com/celo-org/genesis-builder/common/decimal"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	precision = decimal.Precision(18)
	million   = decimal.Precision(6)
)

// Token is a decimal number with 18 decimal digits
type Token big.Int

// MustNew creates an instance of Token from a string
func MustNew(str string) *Token { return (*Token)(decimal.MustNew(str, precision)) }

// FromMillions scales a whole number of millions of tokens into base units,
// that is m * 10^6 * 10^18.
func FromMillions(m uint64) *Token {
	units := decimal.MustNew(m, million)
	return (*Token)(units.Mul(units, decimal.MustNew(int64(1), precision)))
}

// String implements fmt.Stringer
func (t *Token) String() string { return decimal.String(t.BigInt(), precision) }

// BigInt returns big.Int representation
func (t *Token) BigInt() *big.Int { return (*big.Int)(t) }

// Hex renders the base unit amount as 0x-prefixed hex without leading zeros ("0x0" for zero)
func (t *Token) Hex() string { return hexutil.EncodeBig(t.BigInt()) }

// MarshalJSON implements json.Marshaller
func (t Token) MarshalJSON() ([]byte, error) { return decimal.ToJSON(t.BigInt(), precision) }

// UnmarshalJSON implements json.Unmarshaller
func (t *Token) UnmarshalJSON(b []byte) error {
	value, err := decimal.FromJSON(b, precision)
	if err == nil {
		*t = (Token)(*value)
	}
	return err
}
