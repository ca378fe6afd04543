package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"surveyforge/internal/loi"
	"surveyforge/internal/normalize"
	"surveyforge/internal/survey"
	"surveyforge/internal/ui/live"
)

// runLiveSlider is a test seam for the interactive slider.
var runLiveSlider = live.Run

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

// runLOI builds the handler for the loi command.
func runLOI(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs, common := newFlagSet(cmd, stderr)
		surveyPath := fs.String("survey", "", "Survey document (JSON or YAML)")
		position := fs.Int("position", -1, "Slider position 0-100 (default: stored or configured position)")
		uiMode := fs.String("ui", "", "UI mode: auto|live|plain")
		outPath := fs.String("out", "", "Write the survey with LOI fields to this path")
		var pins, excludes stringList
		fs.Var(&pins, "pin", "Question id to keep visible (repeatable)")
		fs.Var(&excludes, "exclude", "Question id to hide (repeatable)")
		if code, err := parseFlags(cmd, fs, args, stdout, stderr); err != nil {
			return code
		}
		if !requireFlag(cmd, stderr, "survey", *surveyPath) {
			return ExitUsage
		}
		if *position > loi.DeepMax {
			fmt.Fprintln(stderr, "--position must be between 0 and 100")
			return ExitUsage
		}

		e, err := loadEnv(common)
		if err != nil {
			fmt.Fprintf(stderr, "Config error: %v\n", err)
			return ExitError
		}
		defer func() { _ = e.logger.Sync() }()
		decision, err := resolveUIMode(*uiMode, e.cfg.UI, stdout)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		doc, err := survey.Load(*surveyPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load survey: %v\n", err)
			return ExitError
		}
		working := normalize.Normalize(doc).Document
		start := *position
		if start < 0 {
			start = e.cfg.LOI.Position()
			if working.Has(loi.ConfigKey) {
				start = loi.NewCalculator(working).Position()
			}
		}

		calc := loi.NewCalculator(working)
		cfg := calc.Apply(start)
		for _, id := range pins {
			if cfg, err = calc.Pin(id); err != nil {
				fmt.Fprintf(stderr, "Pin failed: %v\n", err)
				return ExitError
			}
		}
		for _, id := range excludes {
			if cfg, err = calc.Exclude(id); err != nil {
				fmt.Fprintf(stderr, "Exclude failed: %v\n", err)
				return ExitError
			}
		}

		if decision.useLive {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			cfg, err = runLiveSlider(ctx, calc, stdin, stdout, live.Options{Title: *surveyPath, Position: cfg.SliderPosition})
			stop()
			if err != nil {
				fmt.Fprintf(stderr, "Live UI failed: %v\n", err)
				return ExitError
			}
		}

		if *outPath != "" {
			if err := survey.WriteJSON(*outPath, calc.Document()); err != nil {
				fmt.Fprintf(stderr, "Failed to write survey: %v\n", err)
				return ExitError
			}
		}
		printLOI(stdout, cfg, calc.Questions())
		return ExitOK
	}
}

// printLOI writes the plain slider summary and the question table.
func printLOI(w io.Writer, cfg loi.Config, questions []loi.QuestionState) {
	fmt.Fprintf(w, "Position: %d (%s)\n", cfg.SliderPosition, cfg.SnapPoint)
	fmt.Fprintf(w, "Estimated: %.1f min | Visible: %d/%d | Hidden: %d | Pinned: %d | Excluded: %d\n",
		cfg.EstimatedMinutes, cfg.VisibleQuestions, cfg.TotalQuestions, cfg.HiddenQuestions,
		cfg.PinnedCount, cfg.ExcludedCount)
	for _, q := range questions {
		override := string(q.Override)
		if q.Override == loi.OverrideNone {
			override = "-"
		}
		fmt.Fprintf(w, "  %-8s %-12s %-7s %-11s %s\n", q.Visibility, q.ID, override, q.Priority, q.Section)
	}
}
