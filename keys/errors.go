package keys

import "fmt"

// KeyGenerationFailure reports that the key primitive (entropy source,
// HD derivation, curve arithmetic) could not produce a key.
type KeyGenerationFailure struct {
	Op    string
	Index int // -1 when not tied to a derivation index
	Err   error
}

func (e *KeyGenerationFailure) Error() string {
	if e.Op == "derive" {
		return fmt.Sprintf("key generation failed: derive index %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("key generation failed: %s: %v", e.Op, e.Err)
}

func (e *KeyGenerationFailure) Unwrap() error { return e.Err }
