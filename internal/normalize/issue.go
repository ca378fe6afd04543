package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"surveyforge/internal/survey"
)

// Structural error codes.
const (
	CodeTopLevelMissingKey     = "E_TOPLEVEL_MISSING_KEY"
	CodeQuestionsNotArray      = "E_QUESTIONS_NOT_ARRAY"
	CodeQuestionNotObject      = "E_QUESTION_NOT_OBJECT"
	CodeQuestionMissing        = "E_QUESTION_MISSING_REQUIRED"
	CodeQuestionBadType        = "E_QUESTION_BAD_TYPE"
	CodeOptionsNotArray        = "E_OPTIONS_NOT_ARRAY"
	CodeOptionsMustBeEmpty     = "E_OPTIONS_MUST_BE_EMPTY"
	CodeOptionsRequired        = "E_OPTIONS_REQUIRED"
	CodeMatrixMissingRowsCols  = "E_MATRIX_MISSING_ROWS_COLS"
	CodeRowsColumnsNotAllowed  = "E_ROWS_COLUMNS_NOT_ALLOWED"
	CodeDuplicateQuestionID    = "E_DUPLICATE_QUESTION_ID"
	CodeSubsectionsNotArray    = "E_SUBSECTIONS_NOT_ARRAY"
	CodeSubsectionNotObject    = "E_SUBSECTION_NOT_OBJECT"
	CodeSubsectionMissingID    = "E_SUBSECTION_MISSING_ID"
	CodeDuplicateSubsectionID  = "E_DUPLICATE_SUBSECTION_ID"
	CodeRoutingRulesNotArray   = "E_ROUTING_RULES_NOT_ARRAY"
	CodeDimensionSummaryNotArr = "E_DIMENSION_SUMMARY_NOT_ARRAY"
)

// FragmentRef locates the fragment an issue belongs to.
type FragmentRef struct {
	Section      string `json:"section"`
	SubsectionID string `json:"subsection_id,omitempty"`
	QuestionID   string `json:"question_id,omitempty"`
}

// Issue is a structural problem found by the normalizer. Its fingerprint is
// stable across runs as long as the code, path and question id match.
type Issue struct {
	IssueID     string      `json:"issue_id"`
	Fingerprint string      `json:"issue_fingerprint"`
	ErrorCode   string      `json:"error_code"`
	JSONPath    string      `json:"json_path"`
	Message     string      `json:"message"`
	FragmentRef FragmentRef `json:"fragment_ref"`
	Fragment    any         `json:"fragment"`
}

// Fingerprint hashes code, path and question id into "sha256:<hex>".
func Fingerprint(code, path, questionID string) string {
	sum := sha256.Sum256([]byte(code + "|" + path + "|" + questionID))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// issueCollector numbers issues in emission order.
type issueCollector struct {
	issues []Issue
}

// add records an issue with a snapshot of its fragment.
func (c *issueCollector) add(code, path, message string, ref FragmentRef, fragment any) {
	c.issues = append(c.issues, Issue{
		IssueID:     fmt.Sprintf("ISSUE_%04d", len(c.issues)+1),
		Fingerprint: Fingerprint(code, path, ref.QuestionID),
		ErrorCode:   code,
		JSONPath:    path,
		Message:     message,
		FragmentRef: ref,
		Fragment:    survey.Clone(fragment),
	})
}

// GroupIssues buckets issue ids by section, and by MAIN_SECTION:<id> for
// sub-section issues.
func GroupIssues(issues []Issue) map[string][]string {
	grouped := map[string][]string{}
	for _, issue := range issues {
		section := issue.FragmentRef.Section
		if section == "" {
			continue
		}
		grouped[section] = append(grouped[section], issue.IssueID)
		if section == survey.SectionMain && issue.FragmentRef.SubsectionID != "" {
			key := survey.SectionMain + ":" + issue.FragmentRef.SubsectionID
			grouped[key] = append(grouped[key], issue.IssueID)
		}
	}
	return grouped
}

// FindIssue looks an issue up by id or fingerprint.
func FindIssue(issues []Issue, idOrFingerprint string) (Issue, bool) {
	for _, issue := range issues {
		if issue.IssueID == idOrFingerprint || issue.Fingerprint == idOrFingerprint {
			return issue, true
		}
	}
	return Issue{}, false
}
