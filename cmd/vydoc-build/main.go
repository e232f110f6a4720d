package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/vyperlang/vydoc/internal/builder"
	"github.com/vyperlang/vydoc/internal/config"
	"github.com/vyperlang/vydoc/internal/storage"
)

func main() {
	var (
		dbPath  = flag.String("db", "", "database path (default: per-project under the user cache dir)")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <docs-root>\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "Index a Vyper documentation tree and print the contract index.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	root, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid path: %v\n", err)
		os.Exit(1)
	}

	if err := run(root, *dbPath, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(root, dbPath string, verbose bool) error {
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{"stderr"}
	if verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	if dbPath == "" {
		dbPath, err = cfg.DatabasePath(root)
		if err != nil {
			return err
		}
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	b := builder.New(store, cfg, logger)
	stats, err := b.BuildProject(context.Background(), root)
	if err != nil {
		return err
	}

	fmt.Printf("Build complete in %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Printf("  documents: %d parsed, %d skipped, %d failed\n",
		stats.DocsParsed, stats.DocsSkipped, stats.DocsFailed)
	fmt.Printf("  symbols:   %d (%d contracts)\n", stats.Symbols, stats.Contracts)
	fmt.Printf("  refs:      %d (%d unresolved)\n", stats.References, stats.Unresolved)
	fmt.Printf("  warnings:  %d\n", stats.Warnings)
	for _, msg := range stats.ErrorMessages {
		fmt.Printf("  error: %s\n", msg)
	}

	index, err := b.ContractIndex(nil)
	if err != nil {
		return err
	}
	if index.Len() == 0 {
		fmt.Println("\nNo contracts documented.")
		return nil
	}

	fmt.Println("\nContract index:")
	for _, group := range index.Groups {
		fmt.Printf("  %s\n", group.Letter)
		for _, e := range group.Entries {
			line := fmt.Sprintf("    %s (%s)", e.Name, e.DocID)
			if e.Platform != "" {
				line += " [" + e.Platform + "]"
			}
			if e.Deprecated {
				line += " (deprecated)"
			}
			fmt.Println(line)
			if e.Synopsis != "" {
				fmt.Printf("      %s\n", e.Synopsis)
			}
		}
	}
	return nil
}
