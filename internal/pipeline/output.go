package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"surveyforge/internal/survey"
)

// Output file names.
const (
	ValidatedFile = "survey_output_validated.json"
	LogFile       = "validation_log.json"
	UISpecFile    = "ui_spec.json"
	IssuesFile    = "issues.json"
)

// OutputPaths locates the files written for one survey.
type OutputPaths struct {
	Dir       string
	Validated string
	Log       string
	// UISpec is empty when rendering was blocked.
	UISpec string
}

// WriteOutputs writes the validated survey, the validation log and, when
// rendering succeeded, the UI spec into dir. The validated survey is written
// even when errors remain; a UI spec left by an earlier run is removed.
func WriteOutputs(dir string, out Outcome) (OutputPaths, error) {
	if dir == "" {
		return OutputPaths{}, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return OutputPaths{}, fmt.Errorf("create output dir: %w", err)
	}
	paths := OutputPaths{
		Dir:       dir,
		Validated: filepath.Join(dir, ValidatedFile),
		Log:       filepath.Join(dir, LogFile),
	}
	doc := out.Validated
	if doc == nil {
		doc = out.Normalized
	}
	if err := survey.WriteJSON(paths.Validated, doc); err != nil {
		return OutputPaths{}, err
	}
	if err := survey.WriteJSON(paths.Log, out.Log()); err != nil {
		return OutputPaths{}, err
	}
	specPath := filepath.Join(dir, UISpecFile)
	if out.Spec == nil {
		if err := os.Remove(specPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return OutputPaths{}, fmt.Errorf("remove stale ui spec: %w", err)
		}
		return paths, nil
	}
	paths.UISpec = specPath
	if err := survey.WriteJSON(paths.UISpec, out.Spec); err != nil {
		return OutputPaths{}, err
	}
	return paths, nil
}
