package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"surveyforge/internal/jsonpatch"
	"surveyforge/internal/normalize"
	"surveyforge/internal/survey"
)

// RepairedFile is the default output of the repair command.
const RepairedFile = "survey_repaired.json"

// runRepair builds the handler for the repair command.
func runRepair(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs, common := newFlagSet(cmd, stderr)
		surveyPath := fs.String("survey", "", "Survey document (JSON or YAML)")
		issueRef := fs.String("issue", "", "Issue id or fingerprint to repair")
		patchPath := fs.String("patch", "", "JSON Patch operations scoped to the issue")
		outPath := fs.String("out", "", "Where to write the repaired survey")
		if code, err := parseFlags(cmd, fs, args, stdout, stderr); err != nil {
			return code
		}
		for _, required := range []struct{ name, value string }{
			{"survey", *surveyPath}, {"issue", *issueRef}, {"patch", *patchPath},
		} {
			if !requireFlag(cmd, stderr, required.name, required.value) {
				return ExitUsage
			}
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
		issue, ok := normalize.FindIssue(normalize.Normalize(doc).Issues, *issueRef)
		if !ok {
			fmt.Fprintf(stderr, "Issue not found: %s\n", *issueRef)
			return ExitError
		}
		data, err := os.ReadFile(*patchPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to read patch: %v\n", err)
			return ExitError
		}
		ops, err := jsonpatch.ParseOperations(data)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid patch: %v\n", err)
			return ExitError
		}
		outcome, err := normalize.ApplyRepair(doc, issue, ops)
		if err != nil {
			fmt.Fprintf(stderr, "Repair failed: %v\n", err)
			return ExitError
		}

		target := *outPath
		if target == "" {
			target = filepath.Join(e.outputDir(""), RepairedFile)
		}
		if err := survey.WriteJSON(target, outcome.Result.Document); err != nil {
			fmt.Fprintf(stderr, "Failed to write outputs: %v\n", err)
			return ExitError
		}

		if outcome.Resolved {
			fmt.Fprintf(stdout, "Resolved %s (%s)\n", issue.IssueID, issue.ErrorCode)
		} else {
			fmt.Fprintf(stdout, "Not resolved %s (%s)\n", issue.IssueID, issue.ErrorCode)
		}
		if len(outcome.Introduced) > 0 {
			fmt.Fprintf(stdout, "Introduced %d new issue(s): %s\n", len(outcome.Introduced), strings.Join(outcome.Introduced, ", "))
		}
		fmt.Fprintf(stdout, "Remaining issues: %d\n", len(outcome.Result.Issues))
		if !outcome.Resolved || len(outcome.Introduced) > 0 {
			return ExitError
		}
		return ExitOK
	}
}
