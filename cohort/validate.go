package cohort

import (
	"fmt"
	"strings"

	"github.com/celo-org/genesis-builder/keys"
	"github.com/ethereum/go-ethereum/common"
)

// KeyEntry is one persisted {address, key} pair
type KeyEntry struct {
	Address common.Address `json:"address"`
	Key     string         `json:"key"` // 64 hex chars, no 0x
}

// KeyIntegrityMismatch reports a persisted key that does not match the
// account derived from the cohort seed.
type KeyIntegrityMismatch struct {
	Kind     Kind
	Index    int    // position in the persisted key list
	Derived  uint32 // derivation index
	Expected common.Address
	Computed common.Address
}

func (e *KeyIntegrityMismatch) Error() string {
	return fmt.Sprintf("key integrity mismatch in %s keys at index %d (derivation index %d): expected %s, computed %s",
		e.Kind, e.Index, e.Derived, e.Expected.Hex(), e.Computed.Hex())
}

// Validate re-derives every entry from seed, starting at index 0
func Validate(entries []KeyEntry, seed keys.Seed) error {
	_, err := validate(keys.MustNewHDDeriver(""), General, entries, seed, 0)
	return err
}

// ValidateFrom re-derives entries[i] at start+i with deriver and stops at the first mismatch
func ValidateFrom(deriver keys.Deriver, kind Kind, entries []KeyEntry, seed keys.Seed, start uint32) error {
	_, err := validate(deriver, kind, entries, seed, start)
	return err
}

func validate(deriver keys.Deriver, kind Kind, entries []KeyEntry, seed keys.Seed, start uint32) ([]keys.Account, error) {
	accounts := make([]keys.Account, len(entries))
	for i, entry := range entries {
		acc, err := deriver.Derive(seed, start+uint32(i))
		if err != nil {
			return nil, err
		}
		if acc.Address != entry.Address {
			return nil, &KeyIntegrityMismatch{Kind: kind, Index: i, Derived: start + uint32(i), Expected: entry.Address, Computed: acc.Address}
		}
		if !strings.EqualFold(strings.TrimPrefix(entry.Key, "0x"), acc.PrivateKeyHex()) {
			computed, err := keys.AddressOfKey(strings.TrimPrefix(entry.Key, "0x"))
			if err != nil {
				return nil, fmt.Errorf("%s keys at index %d: %w", kind, i, err)
			}
			return nil, &KeyIntegrityMismatch{Kind: kind, Index: i, Derived: start + uint32(i), Expected: entry.Address, Computed: computed}
		}
		accounts[i] = acc
	}
	return accounts, nil
}
