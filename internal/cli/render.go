package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"surveyforge/internal/pipeline"
	"surveyforge/internal/render"
	"surveyforge/internal/survey"
)

// runRender builds the handler for the render command.
func runRender(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs, common := newFlagSet(cmd, stderr)
		surveyPath := fs.String("survey", "", "Survey document (JSON or YAML)")
		briefPath := fs.String("brief", "", "Research brief (JSON or YAML)")
		outDir := fs.String("out-dir", "", "Directory for the UI spec and validation outputs")
		htmlPath := fs.String("html", "", "Also write an HTML preview to this path")
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
		out, err := pipeline.Process(doc, v)
		if err != nil {
			fmt.Fprintf(stderr, "Render failed: %v\n", err)
			return ExitError
		}
		paths, err := pipeline.WriteOutputs(e.outputDir(*outDir), out)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to write outputs: %v\n", err)
			return ExitError
		}
		if out.Spec == nil {
			fmt.Fprintf(stdout, "Rendering blocked: %v\n", out.Blocked)
			for _, issue := range out.Issues {
				fmt.Fprintf(stdout, "  %s %s: %s\n", issue.IssueID, issue.JSONPath, issue.Message)
			}
			printValidation(stdout, out.Results)
			return ExitError
		}

		fmt.Fprintf(stdout, "UI spec written to %s (%d block(s))\n", paths.UISpec, len(out.Spec.Blocks))
		if *htmlPath != "" {
			page, err := render.RenderHTML(context.Background(), *out.Spec)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to render HTML: %v\n", err)
				return ExitError
			}
			if dir := filepath.Dir(*htmlPath); dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					fmt.Fprintf(stderr, "Failed to write HTML: %v\n", err)
					return ExitError
				}
			}
			if err := os.WriteFile(*htmlPath, []byte(page), 0o644); err != nil {
				fmt.Fprintf(stderr, "Failed to write HTML: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "HTML preview written to %s\n", *htmlPath)
		}
		return ExitOK
	}
}
