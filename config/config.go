package config

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"time"
	"unicode"

	"github.com/celo-org/genesis-builder/common/decimal/bigintstr"
	"github.com/celo-org/genesis-builder/common/decimal/fixed"
	"github.com/celo-org/genesis-builder/common/decimal/token"
	"github.com/celo-org/genesis-builder/keys"
	"github.com/naoina/toml"
)

// Declared bounds of the build configuration
const (
	MaxAccounts                = 1000
	MaxFaucets                 = 1000
	MinRotatingBalanceMillions = 1
	MaxRotatingBalanceMillions = 100
	MinGasLimit                = 10_000_000
	MaxGasLimit                = 100_000_000
)

// Config is the complete set of values a genesis build needs. It is collected
// once (template, file, flags) and then passed by value; nothing in the build
// reads configuration from anywhere else.
type Config struct {
	Accounts           CohortConfig `json:"accounts"`
	Faucet             CohortConfig `json:"faucet"`
	RotatingValidators CohortConfig `json:"rotatingValidators"`
	Authority          CohortConfig `json:"authority"` // also funds endorsor and executor accounts
	Executors          int          `json:"executors"`

	// SharedSeed derives accounts, faucet and rotating validators from one seed
	// over contiguous index ranges (legacy layout).
	SharedSeed     bool   `json:"sharedSeed"`
	DerivationPath string `json:"derivationPath"`
	Workers        int    `json:"workers"` // derivation workers per cohort, 0 means GOMAXPROCS

	GasLimit   uint64        `json:"gasLimit"`
	ExtraData  string        `json:"extraData"`
	LaunchTime uint64        `json:"launchTime"`
	Forks      ForkConfig    `json:"forkConfig"`
	Runtime    RuntimeConfig `json:"config"`
	Params     Params        `json:"params"`

	// Mnemonics pins the seed of a cohort by name (e.g. "faucet"); cohorts not
	// listed get a freshly minted seed.
	Mnemonics map[string]string `json:"mnemonics,omitempty" toml:",omitempty"`
}

// Defaults returns the devnet parameters; callers complete LaunchTime
func Defaults() Config {
	hayabusaTP := uint32(18)
	return Config{
		Accounts:           CohortConfig{Count: 250, BalanceMillions: 600},
		Faucet:             CohortConfig{Count: 100, BalanceMillions: 100_000_000},
		RotatingValidators: CohortConfig{Count: 2500, BalanceMillions: 50},
		Authority:          CohortConfig{Count: 10, BalanceMillions: 40},
		Executors:          5,
		DerivationPath:     keys.DefaultDerivationPath,
		GasLimit:           40_000_000,
		ExtraData:          "Hayabusa Devnet",
		Runtime: RuntimeConfig{
			BlockInterval:              10,
			EpochLength:                18,
			SeederInterval:             720,
			ValidatorEvictionThreshold: 8640,
			LowStakingPeriod:           18,
			MediumStakingPeriod:        180,
			HighStakingPeriod:          8640,
			CooldownPeriod:             720,
			HayabusaTP:                 &hayabusaTP,
		},
		Params: Params{
			BaseGasPrice:        10000000000000,
			RewardRatio:         bigintstr.MustNew("300000000000000000"),
			ProposerEndorsement: (*bigintstr.BigIntStr)(token.FromMillions(25).BigInt()),
		},
	}
}

// Copy returns a deep copy of cfg
func (cfg Config) Copy() Config {
	cpy := cfg
	cpy.Params = cfg.Params.Copy()
	if cfg.Runtime.HayabusaTP != nil {
		tp := *cfg.Runtime.HayabusaTP
		cpy.Runtime.HayabusaTP = &tp
	}
	if cfg.Mnemonics != nil {
		cpy.Mnemonics = make(map[string]string, len(cfg.Mnemonics))
		for k, v := range cfg.Mnemonics {
			cpy.Mnemonics[k] = v
		}
	}
	return cpy
}

// Template returns the named preset with LaunchTime set to now
func Template(name string) (Config, error) {
	cfg := Defaults()
	switch name {
	case "", "devnet":
	case "solo":
		cfg.Accounts.Count = 1
		cfg.Faucet.Count = 1
		cfg.RotatingValidators.Count = 1
		cfg.Authority.Count = 1
		cfg.Executors = 1
		cfg.ExtraData = "Hayabusa Solo"
	case "testnet":
		cfg.Accounts.Count = 100
		cfg.Faucet.Count = 10
		cfg.RotatingValidators.Count = 30
		cfg.Authority.Count = 11
		cfg.Executors = 7
		cfg.ExtraData = "Hayabusa Testnet"
	default:
		return Config{}, errorf("template", "unknown template %q, want \"solo\", \"devnet\" or \"testnet\"", name)
	}
	cfg.LaunchTime = uint64(time.Now().Unix())
	return cfg, nil
}

// Validate checks every declared bound and the runtime epoch alignment
func (cfg *Config) Validate() error {
	if err := checkCount("accounts.count", cfg.Accounts.Count, 1, MaxAccounts); err != nil {
		return err
	}
	if err := checkCount("faucet.count", cfg.Faucet.Count, 1, MaxFaucets); err != nil {
		return err
	}
	if err := checkCount("rotatingValidators.count", cfg.RotatingValidators.Count, 1, -1); err != nil {
		return err
	}
	if b := cfg.RotatingValidators.BalanceMillions; b < MinRotatingBalanceMillions || b > MaxRotatingBalanceMillions {
		return errorf("rotatingValidators.balanceMillions", "must be within [%d, %d], have %d",
			MinRotatingBalanceMillions, MaxRotatingBalanceMillions, b)
	}
	if err := checkCount("authority.count", cfg.Authority.Count, 1, -1); err != nil {
		return err
	}
	if err := checkCount("executors", cfg.Executors, 0, -1); err != nil {
		return err
	}
	if cfg.Workers < 0 {
		return errorf("workers", "must not be negative")
	}
	if _, err := keys.NewHDDeriver(cfg.DerivationPath); err != nil {
		return errorf("derivationPath", "%v", err)
	}
	if cfg.GasLimit < MinGasLimit || cfg.GasLimit > MaxGasLimit {
		return errorf("gasLimit", "must be within [%d, %d], have %d", MinGasLimit, MaxGasLimit, cfg.GasLimit)
	}
	if cfg.LaunchTime == 0 {
		return errorf("launchTime", "must be set")
	}
	if cfg.Params.RewardRatio == nil || cfg.Params.RewardRatio.BigInt().Sign() < 0 {
		return errorf("rewardRatio", "must be a non-negative integer")
	}
	if ratio := fixed.FromBig(cfg.Params.RewardRatio.BigInt()); ratio.Cmp(fixed.One()) > 0 {
		return errorf("rewardRatio", "%s exceeds 1", ratio)
	}
	if cfg.Params.ProposerEndorsement == nil || cfg.Params.ProposerEndorsement.BigInt().Sign() < 0 {
		return errorf("proposerEndorsement", "must be a non-negative integer")
	}
	for name, phrase := range cfg.Mnemonics {
		if _, err := keys.ParseSeed(phrase); err != nil {
			return errorf("mnemonics."+name, "%v", err)
		}
	}
	return cfg.Runtime.Validate()
}

// checkCount enforces min <= n and, unless max is negative, n <= max
func checkCount(field string, n, min, max int) error {
	if max < 0 {
		if n < min {
			return errorf(field, "must be at least %d, have %d", min, n)
		}
		return nil
	}
	if n < min || n > max {
		return errorf(field, "must be within [%d, %d], have %d", min, max, n)
	}
	return nil
}

// Validate requires every period and threshold to be a whole number of epochs
func (rc *RuntimeConfig) Validate() error {
	if rc.BlockInterval == 0 {
		return errorf("blockInterval", "must be positive")
	}
	if rc.EpochLength == 0 {
		return errorf("epochLength", "must be positive")
	}
	periods := []struct {
		field string
		value uint32
	}{
		{"lowStakingPeriod", rc.LowStakingPeriod},
		{"mediumStakingPeriod", rc.MediumStakingPeriod},
		{"highStakingPeriod", rc.HighStakingPeriod},
		{"cooldownPeriod", rc.CooldownPeriod},
		{"seederInterval", rc.SeederInterval},
		{"validatorEvictionThreshold", rc.ValidatorEvictionThreshold},
	}
	if rc.HayabusaTP != nil {
		periods = append(periods, struct {
			field string
			value uint32
		}{"hayabusaTP", *rc.HayabusaTP})
	}
	for _, p := range periods {
		if p.value%rc.EpochLength != 0 {
			return errorf(p.field, "%d is not a multiple of epochLength %d", p.value, rc.EpochLength)
		}
	}
	return nil
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// Load reads a TOML config on top of Defaults
func Load(file string) (Config, error) {
	cfg := Defaults()
	f, err := os.Open(file)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	if err := tomlSettings.NewDecoder(f).Decode(&cfg); err != nil {
		// Add file name to errors that have a line number.
		if _, ok := err.(*toml.LineError); ok {
			err = fmt.Errorf("%s, %v", file, err)
		}
		return Config{}, err
	}
	return cfg, nil
}

// Marshal renders cfg as TOML
func (cfg Config) Marshal() ([]byte, error) {
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("# genesis-builder configuration\n\n")
	buf.Write(out)
	return buf.Bytes(), nil
}
