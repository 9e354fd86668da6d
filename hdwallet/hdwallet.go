package hdwallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// ErrInvalidMnemonic is returned when the mnemonic fails the BIP39 checksum
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// Wallet is a BIP32 master key built from a BIP39 mnemonic
type Wallet struct {
	masterKey *hdkeychain.ExtendedKey
}

// NewFromMnemonic returns a wallet for the given mnemonic (no BIP39 passphrase)
func NewFromMnemonic(mnemonic string) (*Wallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, err
	}
	return NewFromSeed(seed)
}

// NewFromSeed returns a wallet for a raw BIP39 seed
func NewFromSeed(seed []byte) (*Wallet, error) {
	masterKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}
	return &Wallet{masterKey: masterKey}, nil
}

// Derive walks path from the master key and returns the child private key
func (w *Wallet) Derive(path accounts.DerivationPath) (*ecdsa.PrivateKey, error) {
	sub, err := w.Sub(path)
	if err != nil {
		return nil, err
	}
	privateKey, err := sub.masterKey.ECPrivKey()
	if err != nil {
		return nil, err
	}
	return crypto.ToECDSA(privateKey.Serialize())
}

// Sub returns a wallet rooted at path, so repeated derivations below path
// skip the shared prefix. The returned wallet is safe for concurrent Derive calls.
func (w *Wallet) Sub(path accounts.DerivationPath) (*Wallet, error) {
	key := w.masterKey
	for _, n := range path {
		var err error
		if key, err = key.Derive(n); err != nil {
			return nil, fmt.Errorf("derive %s: %w", path, err)
		}
	}
	// hdkeychain computes the public key lazily on first child derivation
	if _, err := key.ECPubKey(); err != nil {
		return nil, err
	}
	return &Wallet{masterKey: key}, nil
}

// Address derives the account address at path
func (w *Wallet) Address(path accounts.DerivationPath) (common.Address, error) {
	key, err := w.Derive(path)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

// ParseDerivationPath parses a path such as m/44'/818'/0'/0
func ParseDerivationPath(path string) (accounts.DerivationPath, error) {
	return accounts.ParseDerivationPath(path)
}

// MustParseDerivationPath parses the derivation path in string format into []uint32 but will panic if it can't parse it.
func MustParseDerivationPath(path string) accounts.DerivationPath {
	parsed, err := ParseDerivationPath(path)
	if err != nil {
		panic(err)
	}
	return parsed
}

// Child returns a copy of base extended with index
func Child(base accounts.DerivationPath, index uint32) accounts.DerivationPath {
	path := make(accounts.DerivationPath, len(base), len(base)+1)
	copy(path, base)
	return append(path, index)
}
