package cohort

import "fmt"

// Kind identifies the role of a cohort
type Kind int

// The cohort kinds, in persistence order
const (
	General           Kind = 0
	Faucet            Kind = 1
	RotatingValidator Kind = 2
	Authority         Kind = 3 // authority node master accounts
	Endorsor          Kind = 4
	Executor          Kind = 5
)

// Kinds returns every kind in persistence order
func Kinds() []Kind {
	return []Kind{General, Faucet, RotatingValidator, Authority, Endorsor, Executor}
}

// String implements the stringer interface. The result is the file name prefix.
func (k Kind) String() string {
	switch k {
	case General:
		return "genesis"
	case Faucet:
		return "faucet"
	case RotatingValidator:
		return "rotating-validators"
	case Authority:
		return "authority"
	case Endorsor:
		return "endorsor"
	case Executor:
		return "executor"
	default:
		return "unknown"
	}
}

// HasIdentity reports whether accounts of this kind are paired with a random identity key
func (k Kind) HasIdentity() bool {
	return k == Authority || k == Executor
}

// MarshalText marshall kind into text
func (k Kind) MarshalText() ([]byte, error) {
	if k < General || k > Executor {
		return nil, fmt.Errorf("unknown cohort kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText creates Kind from string
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind returns the kind named name
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf(`unknown cohort %q, want "genesis", "faucet", "rotating-validators", "authority", "endorsor", "executor"`, name)
}
