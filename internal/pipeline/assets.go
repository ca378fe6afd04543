// Package pipeline chains normalization, validation and rendering for one
// survey or a batch of them.
package pipeline

import (
	"fmt"

	"surveyforge/internal/normalize"
	"surveyforge/internal/render"
	"surveyforge/internal/survey"
	"surveyforge/internal/validate"
)

// StaticAssets is the normalize-then-render bundle served to a front end.
// UISpec is nil while structural issues remain.
type StaticAssets struct {
	NormalisedSurvey *survey.Document    `json:"normalised_survey"`
	Issues           []normalize.Issue   `json:"issues"`
	IssuesGrouped    map[string][]string `json:"issues_grouped"`
	UISpec           *render.UISpec      `json:"ui_spec"`
}

// BuildStaticAssets normalizes doc and renders it when no issues remain.
func BuildStaticAssets(doc *survey.Document) (StaticAssets, error) {
	result := normalize.Normalize(doc)
	assets := StaticAssets{
		NormalisedSurvey: result.Document,
		Issues:           result.Issues,
		IssuesGrouped:    normalize.GroupIssues(result.Issues),
	}
	if assets.Issues == nil {
		assets.Issues = []normalize.Issue{}
	}
	if !result.OK() {
		return assets, nil
	}
	spec, err := render.Render(result.Document)
	if err != nil {
		return assets, fmt.Errorf("build static assets: %w", err)
	}
	assets.UISpec = &spec
	return assets, nil
}

// Outcome is the result of running one survey through the pipeline.
type Outcome struct {
	Normalized *survey.Document
	Issues     []normalize.Issue
	// Validated is nil when no validator ran.
	Validated *survey.Document
	Results   []validate.Result
	// Spec is nil when rendering was blocked.
	Spec *render.UISpec
	// Blocked wraps render.ErrBlocked when issues or errors remain.
	Blocked error
}

// Log returns the validation log of the outcome.
func (o Outcome) Log() validate.Log {
	return validate.NewLog(o.Results)
}

// Process normalizes doc, validates the normalized copy when v is non-nil
// and renders the validated survey unless something blocks it. Missing
// top-level sections skip validation.
func Process(doc *survey.Document, v *validate.Validator) (Outcome, error) {
	result := normalize.Normalize(doc)
	out := Outcome{Normalized: result.Document, Issues: result.Issues}
	working := result.Document
	if v != nil && !missingSections(result.Issues) {
		out.Validated, out.Results = v.Validate(result.Document)
		working = out.Validated
	}
	if out.Blocked = render.Guard(out.Issues, out.Results); out.Blocked != nil {
		return out, nil
	}
	spec, err := render.Render(working)
	if err != nil {
		return out, fmt.Errorf("process: %w", err)
	}
	out.Spec = &spec
	return out, nil
}

func missingSections(issues []normalize.Issue) bool {
	for _, issue := range issues {
		if issue.ErrorCode == normalize.CodeTopLevelMissingKey {
			return true
		}
	}
	return false
}
