package keys

import (
	"github.com/celo-org/genesis-builder/hdwallet"
	"github.com/ethereum/go-ethereum/accounts"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultDerivationPath is the VET coin type base path; account i lives at <path>/i
const DefaultDerivationPath = "m/44'/818'/0'/0"

// walletCacheSize bounds the number of distinct seeds whose master keys are kept
const walletCacheSize = 16

// Deriver turns (seed, index) into an account. Implementations must be
// deterministic and safe for concurrent use.
type Deriver interface {
	Derive(seed Seed, index uint32) (Account, error)
}

// HDDeriver derives BIP32 children of a fixed base path
type HDDeriver struct {
	base    accounts.DerivationPath
	wallets *lru.Cache // seed phrase -> *hdwallet.Wallet rooted at base
}

// NewHDDeriver creates a deriver for base path (DefaultDerivationPath when empty)
func NewHDDeriver(path string) (*HDDeriver, error) {
	if path == "" {
		path = DefaultDerivationPath
	}
	base, err := hdwallet.ParseDerivationPath(path)
	if err != nil {
		return nil, &KeyGenerationFailure{Op: "path", Index: -1, Err: err}
	}
	wallets, err := lru.New(walletCacheSize)
	if err != nil {
		return nil, err
	}
	return &HDDeriver{base: base, wallets: wallets}, nil
}

// MustNewHDDeriver NewHDDeriver variant that panics on error
func MustNewHDDeriver(path string) *HDDeriver {
	d, err := NewHDDeriver(path)
	if err != nil {
		panic(err)
	}
	return d
}

// Derive implements Deriver
func (d *HDDeriver) Derive(seed Seed, index uint32) (Account, error) {
	wallet, err := d.wallet(seed)
	if err != nil {
		return Account{}, &KeyGenerationFailure{Op: "derive", Index: int(index), Err: err}
	}
	key, err := wallet.Derive(accounts.DerivationPath{index})
	if err != nil {
		return Account{}, &KeyGenerationFailure{Op: "derive", Index: int(index), Err: err}
	}
	return NewAccount(index, key), nil
}

func (d *HDDeriver) wallet(seed Seed) (*hdwallet.Wallet, error) {
	phrase := seed.Phrase()
	if cached, ok := d.wallets.Get(phrase); ok {
		return cached.(*hdwallet.Wallet), nil
	}
	master, err := hdwallet.NewFromMnemonic(phrase)
	if err != nil {
		return nil, err
	}
	wallet, err := master.Sub(d.base)
	if err != nil {
		return nil, err
	}
	d.wallets.Add(phrase, wallet)
	return wallet, nil
}

// PathOf returns the full derivation path of index
func (d *HDDeriver) PathOf(index uint32) accounts.DerivationPath {
	return hdwallet.Child(d.base, index)
}
