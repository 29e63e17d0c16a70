package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nkarpov/flashsync/internal/client/api"
	"github.com/nkarpov/flashsync/internal/client/cache"
	"github.com/nkarpov/flashsync/internal/client/cli"
	"github.com/nkarpov/flashsync/internal/client/events"
	"github.com/nkarpov/flashsync/internal/client/loader"
	"github.com/nkarpov/flashsync/internal/client/storage/boltdb"
	syncsvc "github.com/nkarpov/flashsync/internal/client/sync"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "flashsync-client.db", "Path to local database")
	quota := flag.Int64("quota", 0, "Local storage quota in bytes (0 = unlimited)")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	if *quota > 0 {
		store.SetQuota(*quota)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	apiClient := api.NewClient(*serverURL)
	bus := events.NewBus()

	syncService := syncsvc.NewService(apiClient, store, store, store, bus, logger)
	cacheService := cache.NewService(store, store, bus, syncService.Trigger)
	hydrator := loader.NewLoader(apiClient, store, store, bus, logger)

	app := &cli.App{
		Cache:  cacheService,
		Sync:   syncService,
		Loader: hydrator,
		Cursor: store,
		Out:    os.Stdout,
	}

	args := flag.Args()
	if len(args) == 0 {
		app.PrintUsage()
		os.Exit(1)
	}

	if err := app.Run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("FlashSync Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
