package validate

// Severity classifies a check result.
type Severity string

const (
	// SeverityAutoFix marks a result whose fix was applied to the document.
	SeverityAutoFix Severity = "auto_fix"
	SeverityWarning Severity = "warning"
	// SeverityError blocks rendering and fails a batch run.
	SeverityError    Severity = "error"
	SeverityAdvisory Severity = "advisory"
)

// Result is the outcome of one check against one location.
type Result struct {
	CheckID     string   `json:"check_id"`
	CheckName   string   `json:"check_name"`
	Severity    Severity `json:"severity"`
	QuestionID  string   `json:"question_id,omitempty"`
	Section     string   `json:"section,omitempty"`
	Message     string   `json:"message"`
	ActionTaken string   `json:"action_taken,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`
}

// Summary counts results per severity.
type Summary struct {
	Errors     int `json:"errors"`
	Warnings   int `json:"warnings"`
	AutoFixes  int `json:"auto_fixes"`
	Advisories int `json:"advisories"`
}

// Log is the structure written to validation_log.json.
type Log struct {
	Status  string   `json:"status"`
	Summary Summary  `json:"summary"`
	Checks  []Result `json:"checks"`
}

// Status values of a Log.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// Summarize counts results by severity.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		case SeverityAutoFix:
			s.AutoFixes++
		case SeverityAdvisory:
			s.Advisories++
		}
	}
	return s
}

// NewLog builds the log document for a validation pass.
func NewLog(results []Result) Log {
	summary := Summarize(results)
	status := StatusPassed
	if summary.Errors > 0 {
		status = StatusFailed
	}
	checks := results
	if checks == nil {
		checks = []Result{}
	}
	return Log{Status: status, Summary: summary, Checks: checks}
}

// HasErrors reports whether any result has error severity.
func HasErrors(results []Result) bool {
	for _, r := range results {
		if r.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Filter returns the results with the given severity.
func Filter(results []Result, severity Severity) []Result {
	var out []Result
	for _, r := range results {
		if r.Severity == severity {
			out = append(out, r)
		}
	}
	return out
}
