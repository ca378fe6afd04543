package config

import (
	"fmt"
	"strings"
	"time"

	"surveyforge/internal/logging"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// issueCollector accumulates validation issues.
type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

// result returns a ValidationError when issues are present.
func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}

// Validate checks a normalized config.
func Validate(cfg *Config) error {
	collector := &issueCollector{}

	if cfg.Version == 0 {
		collector.add("version", "is required")
	} else if cfg.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		collector.add("output_dir", "is required")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		collector.add("log_level", err.Error())
	}
	if cfg.Workers < 0 {
		collector.add("workers", "must be >= 0")
	}
	switch cfg.UI {
	case UIAuto, UILive, UIPlain:
	default:
		collector.add("ui", fmt.Sprintf("unsupported mode %q (expected auto, live, or plain)", cfg.UI))
	}
	if p := cfg.LOI.InitialPosition; p != nil && (*p < 0 || *p > 100) {
		collector.add("loi.initial_position", "must be between 0 and 100")
	}
	if strings.TrimSpace(cfg.Serve.Addr) == "" {
		collector.add("serve.addr", "is required")
	}
	if d, err := time.ParseDuration(cfg.Serve.RequestTimeout); err != nil {
		collector.add("serve.request_timeout", fmt.Sprintf("invalid duration %q", cfg.Serve.RequestTimeout))
	} else if d <= 0 {
		collector.add("serve.request_timeout", "must be positive")
	}

	return collector.result()
}
