package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/celo-org/genesis-builder/internal/debug"
	"gopkg.in/urfave/cli.v1"
)

var (
	// Git information set by linker
	gitCommit string
	app       = &cli.App{
		Name:        filepath.Base(os.Args[0]),
		Usage:       "deterministic account derivation and genesis builder",
		Version:     version(),
		Writer:      os.Stdout,
		HideVersion: true,
	}
)

func version() string {
	if len(gitCommit) >= 8 {
		return "1.0.0-" + gitCommit[:8]
	}
	return "1.0.0"
}

func init() {
	// Set up the CLI app.
	app.Flags = append(app.Flags, debug.Flags...)
	app.Before = func(ctx *cli.Context) error {
		return debug.Setup(ctx)
	}
	app.CommandNotFound = func(ctx *cli.Context, cmd string) {
		fmt.Fprintf(os.Stderr, "No such command: %s\n", cmd)
		os.Exit(1)
	}
	// Add subcommands.
	app.Commands = []cli.Command{
		createGenesisCommand,
		genesisFromKeysCommand,
		dumpConfigCommand,
		keysCommand,
		getAccountCommand,
	}
}

func main() {
	exit(app.Run(os.Args))
}
