package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"surveyforge/internal/config"
)

// uiModeDecision captures whether to use the live slider.
type uiModeDecision struct {
	useLive bool
	warning string
}

// isTerminal reports whether a writer is a TTY.
var isTerminal = defaultIsTerminal

// resolveUIMode determines whether to run the live slider. An empty mode
// falls back to the configured one.
func resolveUIMode(mode, configured string, stdout io.Writer) (uiModeDecision, error) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	if normalized == "" {
		normalized = strings.ToLower(strings.TrimSpace(configured))
	}
	if normalized == "" {
		normalized = config.UIAuto
	}
	switch normalized {
	case config.UIAuto:
		return uiModeDecision{useLive: isTerminal(stdout)}, nil
	case config.UILive:
		if isTerminal(stdout) {
			return uiModeDecision{useLive: true}, nil
		}
		return uiModeDecision{
			useLive: false,
			warning: "Live UI requested but stdout is not a TTY; falling back to plain output.",
		}, nil
	case config.UIPlain:
		return uiModeDecision{useLive: false}, nil
	default:
		return uiModeDecision{}, fmt.Errorf("invalid ui mode %q (expected auto|live|plain)", mode)
	}
}

// defaultIsTerminal inspects stdout for TTY support.
func defaultIsTerminal(stdout io.Writer) bool {
	if stdout == nil {
		return false
	}
	if file, ok := stdout.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := stdout.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}
