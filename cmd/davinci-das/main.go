package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"github.com/vocdoni/davinci-das/log"
)

func main() {
	cfg, args, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := validateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	log.Debugw("starting davinci-das", "version", Version, "command", args[0])

	// interrupt cancels the pending async operations
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, args[0], args[1:]); err != nil {
		cancel()
		log.Fatalf("%s failed: %v", args[0], err)
	}
}

func run(ctx context.Context, cfg *Config, command string, args []string) error {
	if command == "setup" {
		return runSetup(cfg)
	}
	if len(args) != 1 {
		return fmt.Errorf("%s expects exactly one file argument, got %d", command, len(args))
	}
	dasCtx, err := newContext(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dasCtx.Close(); err != nil {
			log.Errorw(err, "failed to close context")
		}
	}()

	switch command {
	case "commit":
		return runCommit(dasCtx, args[0])
	case "cells":
		return runCells(ctx, cfg, dasCtx, args[0])
	case "verify":
		return runVerify(ctx, cfg, dasCtx, args[0])
	case "recover":
		return runRecover(ctx, cfg, dasCtx, args[0])
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
