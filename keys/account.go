package keys

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is a key derived from a seed at Index
type Account struct {
	Index      uint32
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey
}

// NewAccount creates an account for the specified private key
func NewAccount(index uint32, key *ecdsa.PrivateKey) Account {
	return Account{
		Index:      index,
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
	}
}

// PrivateKeyHex returns the 32 byte key as 64 hex characters, without 0x
func (a *Account) PrivateKeyHex() string {
	return hex.EncodeToString(crypto.FromECDSA(a.PrivateKey))
}

func (a *Account) String() string {
	return fmt.Sprintf("{ index: %d\taddress: %s }", a.Index, a.Address.Hex())
}

// AddressOfKey returns the address controlled by a hex encoded private key
func AddressOfKey(keyHex string) (common.Address, error) {
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

// Identity is an off-chain signing key of an authority node or executor
// approver. It is drawn from the random source, never from a seed.
type Identity common.Hash

// NewIdentity generates a random identity key
func NewIdentity() (Identity, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return Identity{}, &KeyGenerationFailure{Op: "identity", Index: -1, Err: err}
	}
	return Identity(common.BytesToHash(crypto.FromECDSA(key))), nil
}

// Hex returns the 0x prefixed hex form
func (id Identity) Hex() string { return common.Hash(id).Hex() }

// MarshalText implements encoding.TextMarshaler
func (id Identity) MarshalText() ([]byte, error) { return common.Hash(id).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler
func (id *Identity) UnmarshalText(input []byte) error {
	return (*common.Hash)(id).UnmarshalText(input)
}
