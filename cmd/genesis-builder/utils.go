package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/celo-org/genesis-builder/internal/fileutils"
	"github.com/celo-org/genesis-builder/store"
	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/urfave/cli.v1"
)

func exit(err interface{}) {
	if err == nil {
		os.Exit(0)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// withExitSignals returns a context that will stop whenever
// the process receive a SIGINT / SIGTERM
func withExitSignals(parentCtx context.Context) context.Context {
	ctx, stop := context.WithCancel(parentCtx)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-parentCtx.Done():
		case sig := <-sigs:
			log.Warn("Got signal, aborting", "signal", sig.String())
		}
		signal.Stop(sigs)
		stop()
	}()
	return ctx
}

// readWorkdir returns the directory given as first argument, or the current one.
// The directory may not exist yet, but must not be a file.
func readWorkdir(ctx *cli.Context) (store.Dir, error) {
	if ctx.NArg() > 1 {
		return "", fmt.Errorf("too many arguments")
	}
	if ctx.NArg() == 1 {
		dir := ctx.Args().First()
		if fileutils.FileExists(dir) {
			isDir, err := fileutils.IsDirectory(dir)
			if err != nil {
				return "", err
			}
			if !isDir {
				return "", fmt.Errorf("%s is not a directory", dir)
			}
		}
		return store.Dir(dir), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return store.Dir(wd), nil
}
