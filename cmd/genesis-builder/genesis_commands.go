package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/celo-org/genesis-builder/cohort"
	"github.com/celo-org/genesis-builder/config"
	"github.com/celo-org/genesis-builder/genesis"
	"github.com/celo-org/genesis-builder/internal/fileutils"
	"github.com/celo-org/genesis-builder/store"
	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/urfave/cli.v1"
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file (see dumpconfig)",
	}
	templateFlag = cli.StringFlag{
		Name:  "template",
		Usage: "Optional template to use: solo, devnet or testnet (default: devnet)",
	}
	forceFlag = cli.BoolFlag{
		Name:  "force",
		Usage: "Overwrite an existing genesis in the output directory",
	}
)

var cfgOverrideFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "accounts",
		Usage: "Number of general accounts",
	},
	cli.IntFlag{
		Name:  "faucets",
		Usage: "Number of faucet accounts",
	},
	cli.IntFlag{
		Name:  "validators",
		Usage: "Number of rotating validator accounts",
	},
	cli.IntFlag{
		Name:  "authorities",
		Usage: "Number of authority nodes",
	},
	cli.IntFlag{
		Name:  "executors",
		Usage: "Number of executor approvers",
	},
	cli.Uint64Flag{
		Name:  "authority.balance",
		Usage: "Balance of authority, endorsor and executor accounts, in millions",
	},
	cli.Uint64Flag{
		Name:  "blockinterval",
		Usage: "Seconds between each block",
	},
	cli.Uint64Flag{
		Name:  "epoch",
		Usage: "Epoch length in blocks",
	},
	cli.Uint64Flag{
		Name:  "launchtime",
		Usage: "Genesis launch time, unix seconds (default: now)",
	},
	cli.BoolFlag{
		Name:  "shared-seed",
		Usage: "Derive general, faucet and rotating validator accounts from one seed",
	},
	cli.StringFlag{
		Name:  "path",
		Usage: "Base derivation path",
	},
	cli.IntFlag{
		Name:  "workers",
		Usage: "Derivation workers per cohort (default: number of CPUs)",
	},
}

// reloadOverrideFlags are the overrides that apply to persisted cohorts, whose
// counts come from the key lists
var reloadOverrideFlags = pickFlags(cfgOverrideFlags,
	"authority.balance", "blockinterval", "epoch", "launchtime", "shared-seed", "path", "workers")

func pickFlags(flags []cli.Flag, names ...string) []cli.Flag {
	var res []cli.Flag
	for _, f := range flags {
		for _, name := range names {
			if f.GetName() == name {
				res = append(res, f)
			}
		}
	}
	return res
}

var createGenesisCommand = cli.Command{
	Name:      "genesis",
	Usage:     "Creates fresh cohorts and genesis.json from a template, config file and overrides",
	Action:    createGenesis,
	ArgsUsage: "[outdir]",
	Flags: append(
		[]cli.Flag{configFileFlag, templateFlag, forceFlag},
		cfgOverrideFlags...),
}

var genesisFromKeysCommand = cli.Command{
	Name:      "genesis-from-keys",
	Usage:     "Validates the persisted cohorts of a directory and rebuilds its genesis.json",
	Action:    createGenesisFromKeys,
	ArgsUsage: "[dir]",
	Flags: append(
		[]cli.Flag{configFileFlag, templateFlag},
		reloadOverrideFlags...),
}

var dumpConfigCommand = cli.Command{
	Name:   "dumpconfig",
	Usage:  "Show configuration values",
	Action: dumpConfig,
	Flags: append(
		[]cli.Flag{configFileFlag, templateFlag},
		cfgOverrideFlags...),
}

// readConfig builds the configuration of a command: a config file when given,
// a template otherwise, then flag overrides
func readConfig(ctx *cli.Context) (config.Config, error) {
	return readConfigFrom(ctx, "")
}

// readConfigFrom is readConfig falling back to the config.toml of workdir, when
// it exists, before the template
func readConfigFrom(ctx *cli.Context, workdir store.Dir) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	switch file := ctx.String(configFileFlag.Name); {
	case file != "":
		cfg, err = config.Load(file)
	case workdir != "" && fileutils.FileExists(workdir.ConfigTOML()):
		log.Debug("Using persisted configuration", "file", workdir.ConfigTOML())
		cfg, err = workdir.LoadConfig()
	default:
		cfg, err = config.Template(ctx.String(templateFlag.Name))
	}
	if err != nil {
		return config.Config{}, err
	}

	if ctx.IsSet("accounts") {
		cfg.Accounts.Count = ctx.Int("accounts")
	}
	if ctx.IsSet("faucets") {
		cfg.Faucet.Count = ctx.Int("faucets")
	}
	if ctx.IsSet("validators") {
		cfg.RotatingValidators.Count = ctx.Int("validators")
	}
	if ctx.IsSet("authorities") {
		cfg.Authority.Count = ctx.Int("authorities")
	}
	if ctx.IsSet("executors") {
		cfg.Executors = ctx.Int("executors")
	}
	if ctx.IsSet("authority.balance") {
		cfg.Authority.BalanceMillions = ctx.Uint64("authority.balance")
	}
	if ctx.IsSet("blockinterval") {
		cfg.Runtime.BlockInterval = ctx.Uint64("blockinterval")
	}
	if ctx.IsSet("epoch") {
		cfg.Runtime.EpochLength = uint32(ctx.Uint64("epoch"))
	}
	if ctx.IsSet("launchtime") {
		cfg.LaunchTime = ctx.Uint64("launchtime")
	}
	if ctx.IsSet("shared-seed") {
		cfg.SharedSeed = ctx.Bool("shared-seed")
	}
	if ctx.IsSet("path") {
		cfg.DerivationPath = ctx.String("path")
	}
	if ctx.IsSet("workers") {
		cfg.Workers = ctx.Int("workers")
	}
	if cfg.LaunchTime == 0 {
		cfg.LaunchTime = uint64(time.Now().Unix())
	}
	return cfg, cfg.Validate()
}

func createGenesis(ctx *cli.Context) error {
	workdir, err := readWorkdir(ctx)
	if err != nil {
		return err
	}
	if fileutils.FileExists(workdir.GenesisJSON()) && !ctx.Bool(forceFlag.Name) {
		return fmt.Errorf("%s already exists (use --%s to overwrite)", workdir.GenesisJSON(), forceFlag.Name)
	}
	cfg, err := readConfig(ctx)
	if err != nil {
		return err
	}

	plan, err := cohort.NewPlan(cfg)
	if err != nil {
		return err
	}
	fresh, err := cohort.NewFresh(cfg)
	if err != nil {
		return err
	}
	set, err := cohort.Build(withExitSignals(context.Background()), plan, fresh)
	if err != nil {
		return err
	}
	record, err := genesis.Build(set, cfg)
	if err != nil {
		return err
	}
	if err := workdir.Save(set, record, cfg); err != nil {
		return err
	}
	log.Info("Genesis created", "dir", string(workdir), "accounts", len(record.Accounts), "authorities", len(record.Authority))
	return nil
}

func createGenesisFromKeys(ctx *cli.Context) error {
	workdir, err := readWorkdir(ctx)
	if err != nil {
		return err
	}
	cfg, err := readConfigFrom(ctx, workdir)
	if err != nil {
		return err
	}

	set, err := workdir.Load(withExitSignals(context.Background()), cfg)
	if err != nil {
		return err
	}
	record, err := genesis.Build(set, cfg)
	if err != nil {
		return err
	}
	if err := workdir.SaveRecord(record); err != nil {
		return err
	}
	log.Info("Genesis rebuilt from keys", "dir", string(workdir), "accounts", len(record.Accounts))
	return nil
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := readConfig(ctx)
	if err != nil {
		return err
	}
	out, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
