package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/celo-org/genesis-builder/cohort"
	"github.com/celo-org/genesis-builder/config"
	"github.com/celo-org/genesis-builder/genesis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.LaunchTime = 1526400000
	cfg.Accounts.Count = 4
	cfg.Faucet.Count = 2
	cfg.RotatingValidators.Count = 3
	cfg.Authority.Count = 2
	cfg.Executors = 1
	return cfg
}

func saved(t *testing.T, cfg config.Config) (Dir, *cohort.Set, *genesis.Record) {
	t.Helper()
	plan, err := cohort.NewPlan(cfg)
	require.NoError(t, err)
	fresh, err := cohort.NewFresh(cfg)
	require.NoError(t, err)
	set, err := cohort.Build(context.Background(), plan, fresh)
	require.NoError(t, err)
	record, err := genesis.Build(set, cfg)
	require.NoError(t, err)

	dir := Dir(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, dir.Save(set, record, cfg))
	return dir, set, record
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, shared := range []bool{false, true} {
		cfg := testConfig()
		cfg.SharedSeed = shared
		dir, set, record := saved(t, cfg)

		loadedCfg, err := dir.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, cfg, loadedCfg)

		loaded, err := dir.Load(context.Background(), loadedCfg)
		require.NoError(t, err)
		for _, c := range set.Cohorts() {
			assert.Equal(t, c.Addresses(), loaded.Get(c.Kind).Addresses(), c.Kind.String())
			assert.True(t, c.Seed.Equal(loaded.Get(c.Kind).Seed))
		}

		loadedRecord, err := dir.LoadRecord()
		require.NoError(t, err)
		assert.Equal(t, record.Addresses(), loadedRecord.Addresses())
	}
}

func TestSaveLayout(t *testing.T) {
	dir, set, _ := saved(t, testConfig())

	entries, err := os.ReadDir(string(dir))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"genesis-keys.json", "genesis-mnemonic.txt",
		"faucet-keys.json", "faucet-mnemonic.txt",
		"rotating-validators-keys.json", "rotating-validators-mnemonic.txt",
		"authority-keys.json", "authority-mnemonic.txt",
		"endorsor-keys.json", "endorsor-mnemonic.txt",
		"executor-keys.json", "executor-mnemonic.txt",
		"config.toml", "genesis.json",
	}, names)

	mnemonic, err := os.ReadFile(filepath.Join(string(dir), "faucet-mnemonic.txt"))
	require.NoError(t, err)
	words := strings.Split(string(mnemonic), ",")
	assert.Len(t, words, 12)
	assert.Equal(t, set.Get(cohort.Faucet).Seed.Words(), words)

	var keyFile []map[string]string
	data, err := os.ReadFile(filepath.Join(string(dir), "faucet-keys.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &keyFile))
	require.Len(t, keyFile, 2)
	assert.Regexp(t, "^0x[0-9a-f]{40}$", keyFile[0]["address"])
	assert.Regexp(t, "^[0-9a-f]{64}$", keyFile[0]["key"])
}

func nextHex(c byte) byte {
	const digits = "0123456789abcdef"
	return digits[(strings.IndexByte(digits, c)+1)%len(digits)]
}

func TestLoadDetectsTamperedAddress(t *testing.T) {
	cfg := testConfig()
	dir, _, _ := saved(t, cfg)
	path := filepath.Join(string(dir), "genesis-keys.json")
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]string
	require.NoError(t, json.Unmarshal(original, &entries))

	for index := range entries {
		for _, pos := range []int{2, 21, 41} {
			tampered := make([]map[string]string, len(entries))
			for i, e := range entries {
				tampered[i] = map[string]string{"address": e["address"], "key": e["key"]}
			}
			addr := []byte(tampered[index]["address"])
			addr[pos] = nextHex(addr[pos])
			tampered[index]["address"] = string(addr)

			data, err := json.Marshal(tampered)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, data, 0600))

			_, err = dir.Load(context.Background(), cfg)
			var mismatch *cohort.KeyIntegrityMismatch
			require.True(t, errors.As(err, &mismatch), "index %d pos %d: %v", index, pos, err)
			assert.Equal(t, index, mismatch.Index)
			assert.Equal(t, cohort.General, mismatch.Kind)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg := testConfig()
	dir, _, _ := saved(t, cfg)
	missing := filepath.Join(string(dir), "endorsor-mnemonic.txt")
	require.NoError(t, os.Remove(missing))

	_, err := dir.Load(context.Background(), cfg)
	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, missing, perr.Path)
	assert.Equal(t, string(dir), perr.Dir)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "endorsor-mnemonic.txt")
	assert.Contains(t, err.Error(), string(dir))
}

func TestLoadCorruptKeys(t *testing.T) {
	cfg := testConfig()
	dir, _, _ := saved(t, cfg)
	require.NoError(t, os.WriteFile(filepath.Join(string(dir), "executor-keys.json"), []byte("{"), 0600))

	_, err := dir.Load(context.Background(), cfg)
	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "decode", perr.Op)
}

func TestSaveFailureLeavesNoCohortFiles(t *testing.T) {
	cfg := testConfig()
	plan, err := cohort.NewPlan(cfg)
	require.NoError(t, err)
	fresh, err := cohort.NewFresh(cfg)
	require.NoError(t, err)
	set, err := cohort.Build(context.Background(), plan, fresh)
	require.NoError(t, err)

	dir := Dir(t.TempDir())
	// a directory squatting on the faucet mnemonic path makes its rename fail
	require.NoError(t, os.Mkdir(dir.mnemonicTxt(cohort.Faucet), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir.mnemonicTxt(cohort.Faucet), "x"), nil, 0600))

	err = dir.Save(set, nil, cfg)
	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))

	_, err = os.Stat(dir.keysJSON(cohort.Faucet))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dir.keysJSON(cohort.General))
	assert.NoError(t, err, "cohorts before the failure are complete")

	entries, err := os.ReadDir(string(dir))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), e.Name())
	}
}

func TestLoadWithoutConfigFile(t *testing.T) {
	for _, shared := range []bool{false, true} {
		cfg := testConfig()
		cfg.SharedSeed = shared
		dir, set, _ := saved(t, cfg)
		require.NoError(t, os.Remove(dir.ConfigTOML()))

		// counts of the devnet defaults differ from what is on disk
		other := config.Defaults()
		other.SharedSeed = shared
		other.LaunchTime = cfg.LaunchTime
		loaded, err := dir.Load(context.Background(), other)
		require.NoError(t, err)
		for _, c := range set.Cohorts() {
			assert.Equal(t, c.Addresses(), loaded.Get(c.Kind).Addresses(), c.Kind.String())
		}

		record, err := genesis.Build(loaded, other)
		require.NoError(t, err)
		assert.Len(t, record.Authority, 2)
		assert.Len(t, record.Executor.Approvers, 1)
	}
}

func TestLoadWithoutExecutorFiles(t *testing.T) {
	cfg := testConfig()
	dir, _, _ := saved(t, cfg)
	require.NoError(t, os.Remove(dir.keysJSON(cohort.Executor)))
	require.NoError(t, os.Remove(dir.mnemonicTxt(cohort.Executor)))

	loaded, err := dir.Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, loaded.Get(cohort.Executor))
	assert.Len(t, loaded.Accounts(cohort.General), 4)
}
