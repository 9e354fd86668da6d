package keys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// SeedWords is the number of words of every seed handled by the builder (128 bits of entropy)
const SeedWords = 12

// ErrInvalidSeed is returned for word lists that are not a valid 12 word BIP39 mnemonic
var ErrInvalidSeed = errors.New("invalid seed phrase")

// Seed is an immutable ordered list of mnemonic words
type Seed struct {
	words []string
}

// NewSeed mints a fresh random seed
func NewSeed() (Seed, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return Seed{}, &KeyGenerationFailure{Op: "entropy", Index: -1, Err: err}
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return Seed{}, &KeyGenerationFailure{Op: "mnemonic", Index: -1, Err: err}
	}
	return ParseSeed(mnemonic)
}

// MustNewSeed creates a new seed (panics on error)
func MustNewSeed() Seed {
	seed, err := NewSeed()
	if err != nil {
		panic(err)
	}
	return seed
}

// ParseSeed accepts words separated by commas and/or whitespace
func ParseSeed(text string) (Seed, error) {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(words) != SeedWords {
		return Seed{}, fmt.Errorf("%w: want %d words, have %d", ErrInvalidSeed, SeedWords, len(words))
	}
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	if !bip39.IsMnemonicValid(strings.Join(words, " ")) {
		return Seed{}, fmt.Errorf("%w: checksum mismatch", ErrInvalidSeed)
	}
	return Seed{words: words}, nil
}

// MustParseSeed ParseSeed variant that panics on error
func MustParseSeed(text string) Seed {
	seed, err := ParseSeed(text)
	if err != nil {
		panic(err)
	}
	return seed
}

// Words returns a copy of the seed words
func (s Seed) Words() []string {
	return append([]string(nil), s.words...)
}

// Phrase returns the words joined by single spaces, the BIP39 form
func (s Seed) Phrase() string { return strings.Join(s.words, " ") }

// String returns the words joined by commas, the persisted form
func (s Seed) String() string { return strings.Join(s.words, ",") }

// IsZero reports whether s was never initialised
func (s Seed) IsZero() bool { return len(s.words) == 0 }

// Equal reports whether both seeds hold the same words in the same order
func (s Seed) Equal(other Seed) bool { return s.Phrase() == other.Phrase() }
