// Package logging builds the zap loggers used by the commands.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger flavour.
type Options struct {
	// Level is a zap level name; empty means info.
	Level string
	// Development switches to the console encoder with stack traces on warn.
	Development bool
}

// New returns a logger writing to stderr.
func New(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	if opts.Development {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// ParseLevel maps a level name to a zap level. Empty defaults to info.
func ParseLevel(name string) (zapcore.Level, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}
