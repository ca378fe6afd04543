package cli

import (
	"fmt"
	"io"
	"os"

	"surveyforge/internal/jsonpatch"
	"surveyforge/internal/survey"
)

// runPatch builds the handler for the patch command.
func runPatch(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs, _ := newFlagSet(cmd, stderr)
		docPath := fs.String("doc", "", "JSON or YAML object to patch")
		opsPath := fs.String("ops", "", "JSON Patch operations")
		outPath := fs.String("out", "", "Where to write the result (default: stdout)")
		if code, err := parseFlags(cmd, fs, args, stdout, stderr); err != nil {
			return code
		}
		if !requireFlag(cmd, stderr, "doc", *docPath) || !requireFlag(cmd, stderr, "ops", *opsPath) {
			return ExitUsage
		}

		doc, err := survey.Load(*docPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load document: %v\n", err)
			return ExitError
		}
		data, err := os.ReadFile(*opsPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to read patch: %v\n", err)
			return ExitError
		}
		ops, err := jsonpatch.ParseOperations(data)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid patch: %v\n", err)
			return ExitError
		}
		patched, err := jsonpatch.Apply(doc.Tree(), ops)
		if err != nil {
			fmt.Fprintf(stderr, "Patch failed: %v\n", err)
			return ExitError
		}
		var result any = patched
		if root, ok := patched.(map[string]any); ok {
			result = survey.NewDocument(root, doc.Keys)
		}

		if *outPath != "" {
			if err := survey.WriteJSON(*outPath, result); err != nil {
				fmt.Fprintf(stderr, "Failed to write result: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Applied %d operation(s) to %s\n", len(ops), *outPath)
			return ExitOK
		}
		encoded, err := survey.MarshalIndent(result)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to encode result: %v\n", err)
			return ExitError
		}
		_, _ = stdout.Write(encoded)
		return ExitOK
	}
}
