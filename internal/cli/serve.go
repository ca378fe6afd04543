package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"surveyforge/internal/reportserver"
	"surveyforge/internal/survey"
)

// serveReport is a test seam for running the preview server.
var serveReport = reportserver.Serve

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs, common := newFlagSet(cmd, stderr)
		surveyPath := fs.String("survey", "", "Survey document (JSON or YAML)")
		briefPath := fs.String("brief", "", "Research brief (JSON or YAML)")
		addr := fs.String("addr", "", "Address to listen on (default: configured serve.addr)")
		historyDB := fs.String("history", "", "DuckDB file backing /api/runs")
		if code, err := parseFlags(cmd, fs, args, stdout, stderr); err != nil {
			return code
		}
		if !requireFlag(cmd, stderr, "survey", *surveyPath) {
			return ExitUsage
		}

		e, err := loadEnv(common)
		if err != nil {
			fmt.Fprintf(stderr, "Config error: %v\n", err)
			return ExitError
		}
		defer func() { _ = e.logger.Sync() }()

		doc, err := survey.Load(*surveyPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load survey: %v\n", err)
			return ExitError
		}
		v, err := e.validator(*briefPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load brief: %v\n", err)
			return ExitError
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := reportserver.Config{
			Addr:           e.cfg.Serve.Addr,
			Survey:         doc,
			Validator:      v,
			RequestTimeout: e.cfg.Serve.Timeout(),
			Logger:         e.logger,
		}
		if strings.TrimSpace(*addr) != "" {
			cfg.Addr = *addr
		}
		store, err := e.openHistory(ctx, *historyDB)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open history: %v\n", err)
			return ExitError
		}
		if store != nil {
			defer func() { _ = store.Close() }()
			cfg.History = store
		}

		fmt.Fprintf(stdout, "Serving survey preview at http://%s\n", cfg.Addr)
		if err := serveReport(ctx, cfg); err != nil {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
