package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"surveyforge/internal/config"
	"surveyforge/internal/duckdb"
	"surveyforge/internal/logging"
	"surveyforge/internal/survey"
	"surveyforge/internal/validate"
)

// errParsed signals that parseFlags already reported the outcome.
var errParsed = errors.New("arguments handled")

// env carries what every command resolves before doing work.
type env struct {
	cfg     config.Config
	cfgPath string
	logger  *zap.Logger
}

// commonFlags holds the --config and --log-level values.
type commonFlags struct {
	configPath *string
	logLevel   *string
}

func newFlagSet(cmd *Command, stderr io.Writer) (*flag.FlagSet, commonFlags) {
	fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := commonFlags{
		configPath: fs.String("config", "", "Path to .surveyforge.yml (default: search upward from the working directory)"),
		logLevel:   fs.String("log-level", "", "Log level override (debug|info|warn|error)"),
	}
	return fs, common
}

// parseFlags parses args and rejects positional arguments. It returns the
// exit code to use when parsing did not succeed.
func parseFlags(cmd *Command, fs *flag.FlagSet, args []string, stdout, stderr io.Writer) (int, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printCommandUsage(cmd, stdout)
			return ExitOK, errParsed
		}
		fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
		printCommandUsage(cmd, stderr)
		return ExitUsage, errParsed
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		printCommandUsage(cmd, stderr)
		return ExitUsage, errParsed
	}
	return ExitOK, nil
}

// requireFlag reports a missing required flag.
func requireFlag(cmd *Command, stderr io.Writer, name, value string) bool {
	if strings.TrimSpace(value) != "" {
		return true
	}
	fmt.Fprintf(stderr, "Missing --%s\n", name)
	printCommandUsage(cmd, stderr)
	return false
}

// loadEnv discovers the project config and builds the logger.
func loadEnv(common commonFlags) (env, error) {
	wd, err := os.Getwd()
	if err != nil {
		return env{}, fmt.Errorf("resolve working directory: %w", err)
	}
	cfg, path, err := config.Discover(*common.configPath, wd)
	if err != nil {
		return env{}, err
	}
	level := cfg.LogLevel
	if strings.TrimSpace(*common.logLevel) != "" {
		level = *common.logLevel
	}
	logger, err := logging.New(logging.Options{Level: level})
	if err != nil {
		return env{}, err
	}
	if path != "" {
		logger.Debug("config loaded", zap.String("path", path))
	}
	return env{cfg: cfg, cfgPath: path, logger: logger}, nil
}

// validator loads the brief at path and returns a validator for it. An
// empty path validates with an empty brief.
func (e env) validator(path string) (*validate.Validator, error) {
	brief := survey.Brief{}
	if strings.TrimSpace(path) != "" {
		loaded, err := survey.LoadBrief(path)
		if err != nil {
			return nil, err
		}
		brief = loaded
	}
	return validate.New(brief, validate.WithLogger(e.logger)), nil
}

// outputDir picks the flag value over the configured directory.
func (e env) outputDir(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	return e.cfg.OutputDir
}

// openHistory opens the run history named by the flag or config. It
// returns nil when neither names a database.
func (e env) openHistory(ctx context.Context, flagValue string) (*duckdb.Store, error) {
	path := flagValue
	if strings.TrimSpace(path) == "" {
		path = e.cfg.HistoryDB
	}
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	return duckdb.Open(ctx, path, e.logger)
}
