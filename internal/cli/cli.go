// Package cli implements the surveyforge command line.
package cli

import (
	"fmt"
	"io"
	"os"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Command is one subcommand.
type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

// stdin feeds the live LOI slider.
var stdin io.Reader = os.Stdin

// Run dispatches args to a command and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  surveyforge <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"surveyforge <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands []*Command

func init() {
	commands = []*Command{
		command("validate", "Validate a survey against a brief", []string{
			"surveyforge validate --survey <path> [--brief <path>] [--out-dir <dir>] [--history <db>]",
		}, runValidate),
		command("normalize", "Normalize a survey and list structural issues", []string{
			"surveyforge normalize --survey <path> [--out-dir <dir>] [--repair-dir <dir>]",
		}, runNormalize),
		command("repair", "Apply a targeted repair patch for one issue", []string{
			"surveyforge repair --survey <path> --issue <ISSUE_ID|fingerprint> --patch <ops.json> [--out <path>]",
		}, runRepair),
		command("patch", "Apply JSON Patch operations to a document", []string{
			"surveyforge patch --doc <path> --ops <path> [--out <path>]",
		}, runPatch),
		command("render", "Render the UI spec of a survey", []string{
			"surveyforge render --survey <path> [--brief <path>] [--out-dir <dir>] [--html <path>]",
		}, runRender),
		command("loi", "Adjust length of interview", []string{
			"surveyforge loi --survey <path> [--position N] [--pin ID]... [--exclude ID]... [--ui auto|live|plain] [--out <path>]",
		}, runLOI),
		command("batch", "Validate every survey in a directory", []string{
			"surveyforge batch --dir <dir> --brief <path> [--workers N] [--out-dir <dir>] [--history <db>]",
		}, runBatch),
		command("serve", "Serve an HTML and JSON preview of a survey", []string{
			"surveyforge serve --survey <path> [--brief <path>] [--addr host:port] [--history <db>]",
		}, runServe),
		command("history", "List stored validation runs", []string{
			"surveyforge history [--db <path>] [--limit N] [--checks]",
		}, runHistory),
		command("skills", "List methodology checks by skill", []string{
			"surveyforge skills",
		}, runSkills),
	}
}
