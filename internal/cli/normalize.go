package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"surveyforge/internal/normalize"
	"surveyforge/internal/pipeline"
	"surveyforge/internal/survey"
)

// NormalizedFile is the normalized survey written by the normalize command.
const NormalizedFile = "survey_normalized.json"

// issuesReport is written to issues.json.
type issuesReport struct {
	Issues        []normalize.Issue   `json:"issues"`
	IssuesGrouped map[string][]string `json:"issues_grouped"`
}

// runNormalize builds the handler for the normalize command.
func runNormalize(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs, common := newFlagSet(cmd, stderr)
		surveyPath := fs.String("survey", "", "Survey document (JSON or YAML)")
		outDir := fs.String("out-dir", "", "Directory for the normalized survey and issues")
		repairDir := fs.String("repair-dir", "", "Directory receiving one repair payload per issue")
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
		result := normalize.Normalize(doc)

		dir := e.outputDir(*outDir)
		report := issuesReport{Issues: result.Issues, IssuesGrouped: normalize.GroupIssues(result.Issues)}
		if report.Issues == nil {
			report.Issues = []normalize.Issue{}
		}
		if err := survey.WriteJSON(filepath.Join(dir, NormalizedFile), result.Document); err != nil {
			fmt.Fprintf(stderr, "Failed to write outputs: %v\n", err)
			return ExitError
		}
		if err := survey.WriteJSON(filepath.Join(dir, pipeline.IssuesFile), report); err != nil {
			fmt.Fprintf(stderr, "Failed to write outputs: %v\n", err)
			return ExitError
		}
		if *repairDir != "" {
			for _, issue := range result.Issues {
				path := filepath.Join(*repairDir, issue.IssueID+".json")
				if err := survey.WriteJSON(path, normalize.BuildRepairPayload(issue)); err != nil {
					fmt.Fprintf(stderr, "Failed to write repair payload: %v\n", err)
					return ExitError
				}
			}
		}

		if result.OK() {
			fmt.Fprintln(stdout, "Normalized - no structural issues")
			return ExitOK
		}
		fmt.Fprintf(stdout, "Normalized - %d structural issue(s)\n", len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Fprintf(stdout, "  %s %s %s: %s\n", issue.IssueID, issue.ErrorCode, issue.JSONPath, issue.Message)
		}
		return ExitError
	}
}
