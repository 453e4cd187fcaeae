package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"kybernetes/internal/storage"
	kapi "kybernetes/pkg/kybernetes"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "resets":
		return runResets(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a JSON run config")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "kybernetes.db", "sqlite database path")
	generations := fs.Int("generations", 0, "override the generation budget")
	seed := fs.Int64("seed", 0, "override the random seed")
	verbose := fs.Bool("verbose", false, "log every controller event")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return usageError("run requires -config")
	}

	cfg, err := loadRunConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", *configPath, err)
	}
	if *generations > 0 {
		cfg.Request.Generations = *generations
	}
	if *seed != 0 {
		cfg.Request.Seed = *seed
	}

	provider, err := buildProvider(cfg.Data)
	if err != nil {
		return err
	}
	cfg.Request.Provider = provider

	logger := zap.NewNop()
	if *verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	client, err := kapi.New(ctx, kapi.Options{StoreKind: *storeKind, DBPath: *dbPath, Logger: logger})
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	result, err := client.Run(ctx, cfg.Request)
	if err != nil {
		return err
	}

	fmt.Printf("run %s completed: generations=%d final_best=%.6f resets=%d\n",
		result.Summary.RunID, result.Summary.Generations, result.Summary.FinalBest, result.Summary.ResetCount)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "kybernetes.db", "sqlite database path")
	limit := fs.Int("limit", 20, "maximum runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := kapi.New(ctx, kapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	runs, err := client.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, item := range runs {
		fmt.Printf("%s  %s  pop=%d gens=%d selection=%s best=%.6f resets=%d\n",
			item.RunID, item.CreatedAtUTC, item.Population, item.Generations,
			item.Selection, item.FinalBest, item.ResetCount)
	}
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "kybernetes.db", "sqlite database path")
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("history requires -run")
	}

	client, err := kapi.New(ctx, kapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	history, err := client.History(ctx, *runID)
	if err != nil {
		return err
	}
	for _, record := range history {
		fmt.Printf("gen=%d best=%.6f mean=%.6f mutation=%.4f batch=%d\n",
			record.Generation, record.BestScore, record.MeanScore,
			record.MutationRate, record.BatchSize)
	}
	return nil
}

func runResets(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("resets", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "kybernetes.db", "sqlite database path")
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("resets requires -run")
	}

	client, err := kapi.New(ctx, kapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	events, err := client.Resets(ctx, *runID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("no resets recorded")
		return nil
	}
	for _, event := range events {
		switch event.Reason {
		case "drift":
			fmt.Printf("gen=%d reason=%s feature=%d\n", event.Generation, event.Reason, event.FeatureIndex)
		case "degradation":
			fmt.Printf("gen=%d reason=%s drop=%.4f\n", event.Generation, event.Reason, event.DropFraction)
		default:
			fmt.Printf("gen=%d reason=%s\n", event.Generation, event.Reason)
		}
	}
	return nil
}

func usageError(message string) error {
	return fmt.Errorf(`%s

usage:
  kybernetesctl run -config <run.json> [-store memory|sqlite] [-db-path <file>] [-generations N] [-seed N] [-verbose]
  kybernetesctl runs [-limit N]
  kybernetesctl history -run <run-id>
  kybernetesctl resets -run <run-id>`, message)
}
