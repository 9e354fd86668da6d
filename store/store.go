package store

import (
	"context"
	"os"

	"github.com/celo-org/genesis-builder/cohort"
	"github.com/celo-org/genesis-builder/config"
	"github.com/celo-org/genesis-builder/genesis"
	"github.com/celo-org/genesis-builder/internal/fileutils"
	"github.com/celo-org/genesis-builder/keys"
	"github.com/ethereum/go-ethereum/log"
)

const (
	secretPerm = 0600
	publicPerm = 0644
)

// LoadSeed implements cohort.Source
func (d Dir) LoadSeed(kind cohort.Kind) (keys.Seed, error) {
	path := d.mnemonicTxt(kind)
	data, err := os.ReadFile(path)
	if err != nil {
		return keys.Seed{}, d.errorf("read", path, err)
	}
	seed, err := keys.ParseSeed(string(data))
	if err != nil {
		return keys.Seed{}, d.errorf("decode", path, err)
	}
	return seed, nil
}

// LoadKeys implements cohort.Source
func (d Dir) LoadKeys(kind cohort.Kind) ([]cohort.KeyEntry, error) {
	var entries []cohort.KeyEntry
	if err := d.readJSON(&entries, d.keysJSON(kind)); err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadRecord reads genesis.json
func (d Dir) LoadRecord() (*genesis.Record, error) {
	var record genesis.Record
	if err := d.readJSON(&record, d.GenesisJSON()); err != nil {
		return nil, err
	}
	return &record, nil
}

// LoadConfig reads config.toml
func (d Dir) LoadConfig() (config.Config, error) {
	path := d.ConfigTOML()
	if _, err := os.Stat(path); err != nil {
		return config.Config{}, d.errorf("read", path, err)
	}
	return config.Load(path)
}

// Load rebuilds the cohorts persisted in the directory. Cohort sizes are those
// of the key lists on disk; cfg supplies balances, seed layout and derivation
// path. Every key list is checked against its seed.
func (d Dir) Load(ctx context.Context, cfg config.Config) (*cohort.Set, error) {
	reload, err := cohort.NewReload(cfg, d)
	if err != nil {
		return nil, err
	}
	plan, err := reload.Plan(cfg)
	if err != nil {
		return nil, err
	}
	return cohort.Build(ctx, plan, reload)
}

// Save writes the cohorts, the configuration and the genesis record. The two
// files of a cohort are staged and then renamed together, so a failed cohort
// leaves neither file behind.
func (d Dir) Save(set *cohort.Set, record *genesis.Record, cfg config.Config) error {
	if err := os.MkdirAll(string(d), 0755); err != nil {
		return d.errorf("write", string(d), err)
	}
	for _, c := range set.Cohorts() {
		if err := d.saveCohort(c); err != nil {
			return err
		}
	}

	tomlData, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := fileutils.WriteFileAtomic(d.ConfigTOML(), tomlData, publicPerm); err != nil {
		return d.errorf("write", d.ConfigTOML(), err)
	}

	if record != nil {
		if err := d.SaveRecord(record); err != nil {
			return err
		}
	}
	log.Info("Saved genesis", "dir", string(d), "cohorts", len(set.Cohorts()))
	return nil
}

// SaveRecord replaces genesis.json
func (d Dir) SaveRecord(record *genesis.Record) error {
	data, err := marshalJSON(record)
	if err != nil {
		return err
	}
	if err := fileutils.WriteFileAtomic(d.GenesisJSON(), data, publicPerm); err != nil {
		return d.errorf("write", d.GenesisJSON(), err)
	}
	return nil
}

func (d Dir) saveCohort(c *cohort.Cohort) error {
	keysData, err := marshalJSON(c.Entries())
	if err != nil {
		return err
	}
	files := []struct {
		path string
		data []byte
		tmp  string
	}{
		{path: d.keysJSON(c.Kind), data: keysData},
		{path: d.mnemonicTxt(c.Kind), data: []byte(c.Seed.String())},
	}

	discard := func() {
		for _, f := range files {
			if f.tmp != "" {
				os.Remove(f.tmp)
			}
		}
	}
	for i := range files {
		if files[i].tmp, err = fileutils.Stage(files[i].path, files[i].data, secretPerm); err != nil {
			discard()
			return d.errorf("write", files[i].path, err)
		}
	}
	for i := range files {
		if err := os.Rename(files[i].tmp, files[i].path); err != nil {
			discard()
			for j := 0; j < i; j++ {
				os.Remove(files[j].path)
			}
			return d.errorf("write", files[i].path, err)
		}
		files[i].tmp = ""
	}
	log.Debug("Saved cohort", "cohort", c.Kind, "accounts", c.Len())
	return nil
}
