package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"linkbio/internal/client/api"
	"linkbio/internal/client/cli"
	"linkbio/internal/client/localstore"
	"linkbio/internal/client/state"
	"linkbio/internal/core/logger"
)

func main() { os.Exit(run()) }

func run() int {
	apiURL := flag.String("api", envOr("LINKBIO_API", "http://127.0.0.1:5000/api"), "linkbio API base URL")
	storePath := flag.String("store", defaultStorePath(), "local session database")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <command> [args]\n\nflags:\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output())
		cli.New(nil, nil, flag.CommandLine.Output()).Usage()
	}
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log, cleanup := logger.New(level, false)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(*storePath), 0o700); err != nil {
		log.Error("store dir", zap.Error(err))
		return 1
	}
	kv, err := localstore.Open(ctx, *storePath)
	if err != nil {
		log.Error("open local store", zap.String("path", *storePath), zap.Error(err))
		return 1
	}
	defer kv.Close()

	store := state.NewStore(ctx, localstore.NewAuthStorage(kv, log), log)
	app := cli.New(api.New(*apiURL, store), store, os.Stdout)

	if err := app.Run(ctx, flag.Args()); err != nil {
		if !errors.Is(err, cli.ErrUsage) || len(flag.Args()) > 0 {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		return 1
	}
	return 0
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "linkbio.db"
	}
	return filepath.Join(dir, "linkbio", "session.db")
}
