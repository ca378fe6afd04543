package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"surveyforge/internal/pipeline"
)

// surveyExtensions are the files a batch picks up.
var surveyExtensions = map[string]bool{".json": true, ".yaml": true, ".yml": true}

// runBatch builds the handler for the batch command.
func runBatch(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs, common := newFlagSet(cmd, stderr)
		dir := fs.String("dir", "", "Directory of survey documents")
		briefPath := fs.String("brief", "", "Research brief shared by every survey")
		workers := fs.Int("workers", 0, "Concurrent surveys (default: configured or GOMAXPROCS)")
		outDir := fs.String("out-dir", "", "Directory receiving one sub-directory per survey")
		historyDB := fs.String("history", "", "DuckDB file recording every run")
		if code, err := parseFlags(cmd, fs, args, stdout, stderr); err != nil {
			return code
		}
		if !requireFlag(cmd, stderr, "dir", *dir) {
			return ExitUsage
		}
		if *workers < 0 {
			fmt.Fprintln(stderr, "--workers must be >= 0")
			return ExitUsage
		}

		e, err := loadEnv(common)
		if err != nil {
			fmt.Fprintf(stderr, "Config error: %v\n", err)
			return ExitError
		}
		defer func() { _ = e.logger.Sync() }()

		paths, err := collectSurveys(*dir)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to list surveys: %v\n", err)
			return ExitError
		}
		if len(paths) == 0 {
			fmt.Fprintf(stderr, "No surveys found in %s\n", *dir)
			return ExitError
		}
		v, err := e.validator(*briefPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load brief: %v\n", err)
			return ExitError
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		n := *workers
		if n == 0 {
			n = e.cfg.Workers
		}
		opts := pipeline.BatchOptions{
			Workers:   n,
			OutputDir: e.outputDir(*outDir),
			Observer:  pipeline.NewProgressObserver(stdout),
			Logger:    e.logger,
		}
		store, err := e.openHistory(ctx, *historyDB)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open history: %v\n", err)
			return ExitError
		}
		if store != nil {
			defer func() { _ = store.Close() }()
			opts.Recorder = store
		}

		_, summary, err := pipeline.RunBatch(ctx, paths, v, opts)
		if err != nil {
			fmt.Fprintf(stderr, "Batch failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "\nBatch: %d survey(s), %d passed, %d failed, %d invalid (pass rate %s%%)\n",
			summary.Total, summary.Passed, summary.Failed, summary.Invalid, pipeline.FormatPassRate(summary.PassRate))
		if summary.Failed > 0 || summary.Invalid > 0 {
			return ExitError
		}
		return ExitOK
	}
}

// collectSurveys lists survey files directly under dir in name order.
func collectSurveys(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !surveyExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
