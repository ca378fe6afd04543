package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"surveyforge/internal/validate"
)

// runSkills builds the handler for the skills command.
func runSkills(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs, _ := newFlagSet(cmd, stderr)
		if code, err := parseFlags(cmd, fs, args, stdout, stderr); err != nil {
			return code
		}

		registry := validate.DefaultRegistry()
		tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CHECK\tSKILL\tNAME")
		for _, skill := range registry.Skills() {
			check, _ := registry.Lookup(skill)
			fmt.Fprintf(tw, "%s\t%s\t%s\n", check.ID, skill, check.Name)
		}
		_ = tw.Flush()
		return ExitOK
	}
}
