package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"surveyforge/internal/pipeline"
	"surveyforge/internal/survey"
	"surveyforge/internal/validate"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs, common := newFlagSet(cmd, stderr)
		surveyPath := fs.String("survey", "", "Survey document (JSON or YAML)")
		briefPath := fs.String("brief", "", "Research brief (JSON or YAML)")
		outDir := fs.String("out-dir", "", "Directory for the validated survey and log")
		historyDB := fs.String("history", "", "DuckDB file recording the run")
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

		started := time.Now().UTC()
		validated, results := v.Validate(doc)
		out := pipeline.Outcome{Normalized: doc, Validated: validated, Results: results}
		paths, err := pipeline.WriteOutputs(e.outputDir(*outDir), out)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to write outputs: %v\n", err)
			return ExitError
		}
		e.logger.Debug("validation written",
			zap.String("validated", paths.Validated),
			zap.String("log", paths.Log))

		ctx := context.Background()
		if err := recordValidation(ctx, e, *historyDB, pipeline.Record{
			SurveyPath: *surveyPath,
			Survey:     doc,
			StartedAt:  started,
			Duration:   time.Since(started),
			Results:    results,
		}); err != nil {
			fmt.Fprintf(stderr, "Failed to record run: %v\n", err)
			return ExitError
		}

		if printValidation(stdout, results) {
			return ExitError
		}
		return ExitOK
	}
}

// recordValidation stores rec in the configured history, if any.
func recordValidation(ctx context.Context, e env, historyFlag string, rec pipeline.Record) error {
	store, err := e.openHistory(ctx, historyFlag)
	if err != nil || store == nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rec.RunID, err = pipeline.NewRunID()
	if err != nil {
		return err
	}
	rec.Status = pipeline.StatusPassed
	if validate.HasErrors(rec.Results) {
		rec.Status = pipeline.StatusFailed
	}
	return store.Record(ctx, rec)
}

// printValidation writes the human summary and reports whether errors remain.
func printValidation(w io.Writer, results []validate.Result) bool {
	summary := validate.Summarize(results)
	if summary.Errors > 0 {
		fmt.Fprintf(w, "Validation FAILED - %d error(s)\n", summary.Errors)
		for _, r := range validate.Filter(results, validate.SeverityError) {
			fmt.Fprintf(w, "  %s: %s\n", resultLabel(r), r.Message)
		}
		return true
	}

	fmt.Fprintf(w, "Validation passed - %d auto-fix(es), %d warning(s), %d advisory/ies\n",
		summary.AutoFixes, summary.Warnings, summary.Advisories)
	if fixes := validate.Filter(results, validate.SeverityAutoFix); len(fixes) > 0 {
		fmt.Fprintln(w, "\nAuto-fixes applied:")
		for _, r := range fixes {
			fmt.Fprintf(w, "  %s: %s\n", resultLabel(r), r.ActionTaken)
		}
	}
	if warnings := validate.Filter(results, validate.SeverityWarning); len(warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, r := range warnings {
			fmt.Fprintf(w, "  %s: %s\n", resultLabel(r), r.Message)
		}
	}
	return false
}

// resultLabel is "CHECK_ID [section] question_id" with empty parts dropped.
func resultLabel(r validate.Result) string {
	parts := []string{r.CheckID}
	if r.Section != "" {
		parts = append(parts, "["+r.Section+"]")
	}
	if r.QuestionID != "" {
		parts = append(parts, r.QuestionID)
	}
	return strings.Join(parts, " ")
}
