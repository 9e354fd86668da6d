package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/celo-org/genesis-builder/cohort"
	"github.com/celo-org/genesis-builder/keys"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"
)

var keysCommand = cli.Command{
	Name:      "keys",
	Usage:     "Validates the persisted cohorts of a directory and lists their accounts",
	Action:    listKeys,
	ArgsUsage: "[dir]",
	Flags: append(
		[]cli.Flag{configFileFlag, templateFlag, cohortFlag},
		reloadOverrideFlags...),
}

var getAccountCommand = cli.Command{
	Name:      "account",
	Usage:     "Derives a single account from a mnemonic or a persisted cohort seed",
	Action:    getAccount,
	ArgsUsage: "[dir]",
	Flags: []cli.Flag{
		idxFlag,
		accountTypeFlag,
		mnemonicFlag,
		pathFlag,
		jsonFlag,
	},
}

var (
	generalKind = cohort.General

	idxFlag = cli.IntFlag{
		Name:  "idx",
		Usage: "derivation index",
		Value: 0,
	}
	accountTypeFlag = TextMarshalerFlag{
		Name:  "type",
		Usage: `Cohort whose seed is used (genesis, faucet, rotating-validators, authority, endorsor, executor)`,
		Value: &generalKind,
	}
	cohortFlag = cli.StringFlag{
		Name:  "cohort",
		Usage: "Only list this cohort",
	}
	mnemonicFlag = cli.StringFlag{
		Name:  "mnemonic",
		Usage: "12 word mnemonic, space or comma separated (default: the cohort's persisted mnemonic)",
	}
	pathFlag = cli.StringFlag{
		Name:  "path",
		Usage: "Base derivation path",
		Value: keys.DefaultDerivationPath,
	}
	jsonFlag = cli.BoolFlag{
		Name:  "json",
		Usage: "output json",
	}
)

func listKeys(ctx *cli.Context) error {
	workdir, err := readWorkdir(ctx)
	if err != nil {
		return err
	}
	cfg, err := readConfigFrom(ctx, workdir)
	if err != nil {
		return err
	}
	set, err := workdir.Load(context.Background(), cfg)
	if err != nil {
		return err
	}

	var only *cohort.Kind
	if name := ctx.String(cohortFlag.Name); name != "" {
		kind, err := cohort.ParseKind(name)
		if err != nil {
			return err
		}
		only = &kind
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Cohort", "Index", "Address", "Balance"})
	for _, c := range set.Cohorts() {
		if only != nil && c.Kind != *only {
			continue
		}
		for _, acc := range c.Accounts {
			table.Append([]string{c.Kind.String(), strconv.FormatUint(uint64(acc.Index), 10), acc.Address.Hex(), c.BalanceHex()})
		}
	}
	table.Render()
	return nil
}

func getAccount(ctx *cli.Context) error {
	idx := ctx.Int(idxFlag.Name)
	if idx < 0 {
		return fmt.Errorf("invalid --%s %d", idxFlag.Name, idx)
	}
	accountType := *LocalTextMarshaler(ctx, accountTypeFlag.Name).(*cohort.Kind)

	var seed keys.Seed
	if phrase := ctx.String(mnemonicFlag.Name); phrase != "" {
		var err error
		if seed, err = keys.ParseSeed(phrase); err != nil {
			return err
		}
	} else {
		workdir, err := readWorkdir(ctx)
		if err != nil {
			return err
		}
		if seed, err = workdir.LoadSeed(accountType); err != nil {
			return err
		}
	}

	deriver, err := keys.NewHDDeriver(ctx.String(pathFlag.Name))
	if err != nil {
		return err
	}
	account, err := deriver.Derive(seed, uint32(idx))
	if err != nil {
		return err
	}

	jsonOutput := ctx.Bool(jsonFlag.Name)

	if jsonOutput {
		output := struct {
			AccountType string `json:"accountType"`
			Index       int    `json:"index"`
			Path        string `json:"path"`
			Address     string `json:"address"`
			PrivateKey  string `json:"privateKey"`
		}{
			AccountType: accountType.String(),
			Index:       idx,
			Path:        deriver.PathOf(uint32(idx)).String(),
			Address:     account.Address.Hex(),
			PrivateKey:  account.PrivateKeyHex(),
		}

		jsonData, err := json.Marshal(output)
		if err != nil {
			return err
		}
		fmt.Println(string(jsonData))
	} else {
		fmt.Printf("AccountType: %s\nIndex: %d\nPath: %s\nAddress: %s\nPrivateKey: %s\n",
			accountType, idx, deriver.PathOf(uint32(idx)), account.Address.Hex(), account.PrivateKeyHex())
	}
	return nil
}
