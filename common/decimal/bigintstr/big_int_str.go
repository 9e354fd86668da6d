package bigintstr

import (
	"math/big"

	"github.com/celo-org/genesis-builder/common/decimal"
)

// Precision 1 (10^0): BigIntStr is a plain integer that reuses the decimal JSON codec.
var precision = decimal.Precision(0)

// BigIntStr is a big.Int serialized as a JSON decimal string so that values
// above 2^53 survive parsers that read numbers as float64.
type BigIntStr big.Int

// MustNew creates an instance of BigIntStr from a string
func MustNew(str string) *BigIntStr { return (*BigIntStr)(decimal.MustNew(str, precision)) }

// FromBig wraps a copy of value
func FromBig(value *big.Int) *BigIntStr { return (*BigIntStr)(new(big.Int).Set(value)) }

// String implements fmt.Stringer
func (v *BigIntStr) String() string { return decimal.String(v.BigInt(), precision) }

// BigInt returns big.Int representation
func (v *BigIntStr) BigInt() *big.Int { return (*big.Int)(v) }

// MarshalJSON implements json.Marshaller
func (v BigIntStr) MarshalJSON() ([]byte, error) { return decimal.ToJSON(v.BigInt(), precision) }

// UnmarshalJSON implements json.Unmarshaller
func (v *BigIntStr) UnmarshalJSON(b []byte) error {
	value, err := decimal.FromJSON(b, precision)
	if err == nil {
		*v = (BigIntStr)(*value)
	}
	return err
}

// MarshalText implements encoding.TextMarshaler, used by the TOML config codec
func (v BigIntStr) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (v *BigIntStr) UnmarshalText(text []byte) error {
	value, err := decimal.New(string(text), precision)
	if err == nil {
		*v = (BigIntStr)(*value)
	}
	return err
}
