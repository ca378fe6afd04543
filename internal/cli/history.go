package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"surveyforge/internal/duckdb"
)

// runHistory builds the handler for the history command.
func runHistory(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs, common := newFlagSet(cmd, stderr)
		dbPath := fs.String("db", "", "DuckDB history file (default: configured history_db)")
		limit := fs.Int("limit", 20, "Number of runs to list (0 for all)")
		checks := fs.Bool("checks", false, "Also list how often each check fired")
		runID := fs.String("run", "", "Show the check results of one run")
		if code, err := parseFlags(cmd, fs, args, stdout, stderr); err != nil {
			return code
		}

		e, err := loadEnv(common)
		if err != nil {
			fmt.Fprintf(stderr, "Config error: %v\n", err)
			return ExitError
		}
		defer func() { _ = e.logger.Sync() }()

		path := *dbPath
		if strings.TrimSpace(path) == "" {
			path = e.cfg.HistoryDB
		}
		if strings.TrimSpace(path) == "" {
			fmt.Fprintln(stderr, "Missing --db (no history_db configured)")
			return ExitUsage
		}
		if _, err := os.Stat(path); err != nil {
			fmt.Fprintf(stderr, "Database not found: %v\n", err)
			return ExitError
		}

		ctx := context.Background()
		store, err := duckdb.Open(ctx, path, e.logger)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open history: %v\n", err)
			return ExitError
		}
		defer func() { _ = store.Close() }()

		if *runID != "" {
			results, err := store.RunResults(ctx, *runID)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load run: %v\n", err)
				return ExitError
			}
			tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CHECK\tSEVERITY\tSECTION\tQUESTION\tMESSAGE")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.CheckID, r.Severity, dash(r.Section), dash(r.QuestionID), r.Message)
			}
			_ = tw.Flush()
			return ExitOK
		}

		runs, err := store.ListRuns(ctx, *limit)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to list runs: %v\n", err)
			return ExitError
		}
		surveys, err := store.CountSurveys(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to count surveys: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "%d run(s) shown, %d distinct survey(s) stored\n", len(runs), surveys)
		tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tSTARTED\tSTATUS\tERRORS\tWARNINGS\tFIXES\tISSUES\tSURVEY")
		for _, run := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
				run.RunID, run.StartedAt.UTC().Format("2006-01-02 15:04:05"), run.Status,
				run.Summary.Errors, run.Summary.Warnings, run.Summary.AutoFixes, run.IssueCount, run.SurveyPath)
		}
		_ = tw.Flush()

		if *checks {
			counts, err := store.CheckCounts(ctx)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to count checks: %v\n", err)
				return ExitError
			}
			fmt.Fprintln(stdout)
			tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CHECK\tSEVERITY\tOCCURRENCES\tRUNS")
			for _, c := range counts {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", c.CheckID, c.Severity, c.Occurrences, c.Runs)
			}
			_ = tw.Flush()
		}
		return ExitOK
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
