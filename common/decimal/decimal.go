package decimal

import (
	"encoding/json"
	"fmt"
	"math/big"

	dec "github.com/shopspring/decimal"
)

// Precision creates the scaling constant for a fixed point type with the given decimals
func Precision(digits int64) dec.Decimal {
	return dec.NewFromInt(10).Pow(dec.NewFromInt(digits))
}

// String renders a scaled big.Int as a decimal number with fixed decimals
func String(value *big.Int, precision dec.Decimal) string {
	return dec.NewFromBigInt(value, 0).Div(precision).String()
}

// FromJSON unmarshals a JSON string into a big.Int with fixed precision
func FromJSON(b []byte, precision dec.Decimal) (*big.Int, error) {
	var data string
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	return New(data, precision)
}

// ToJSON marshals a scaled value as a JSON string, never as a number
func ToJSON(value *big.Int, precision dec.Decimal) ([]byte, error) {
	return json.Marshal(String(value, precision))
}

// New scales a string|int64|uint64|decimal amount by precision.
// Amounts that do not reduce to an integer after scaling are rejected.
func New(iamount interface{}, precision dec.Decimal) (*big.Int, error) {
	var amount dec.Decimal
	switch v := iamount.(type) {
	case string:
		var err error
		if amount, err = dec.NewFromString(v); err != nil {
			return nil, err
		}
	case int64:
		amount = dec.NewFromInt(v)
	case uint64:
		amount = dec.NewFromBigInt(new(big.Int).SetUint64(v), 0)
	case dec.Decimal:
		amount = v
	case *dec.Decimal:
		amount = *v
	default:
		return nil, fmt.Errorf("unsupported amount type %T", iamount)
	}

	result := amount.Mul(precision)
	if !result.Equal(result.Truncate(0)) {
		return nil, fmt.Errorf("amount %s exceeds precision", amount)
	}
	return result.BigInt(), nil
}

// MustNew New variant that panics on error
func MustNew(iamount interface{}, precision dec.Decimal) *big.Int {
	value, err := New(iamount, precision)
	if err != nil {
		panic(err)
	}
	return value
}
