package store

import (
	"fmt"
	"path/filepath"

	"github.com/celo-org/genesis-builder/cohort"
)

// Dir is an output directory holding the files of one build
type Dir string

func (d Dir) keysJSON(kind cohort.Kind) string {
	return filepath.Join(string(d), fmt.Sprintf("%s-keys.json", kind))
}

func (d Dir) mnemonicTxt(kind cohort.Kind) string {
	return filepath.Join(string(d), fmt.Sprintf("%s-mnemonic.txt", kind))
}

// GenesisJSON is the path of the genesis record
func (d Dir) GenesisJSON() string {
	return filepath.Join(string(d), "genesis.json")
}

// ConfigTOML is the path of the build configuration
func (d Dir) ConfigTOML() string {
	return filepath.Join(string(d), "config.toml")
}
