package normalize_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"surveyforge/internal/jsonpatch"
	"surveyforge/internal/normalize"
	"surveyforge/internal/survey"
	"surveyforge/internal/testutil"
)

func withOptionsOnOpenEnded() string {
	return strings.Replace(testutil.MinimalSurvey,
		`"question_type": "open_ended", "options": []`, `"question_type": "open_ended", "options": ["a"]`, 1)
}

func codes(issues []normalize.Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.ErrorCode
	}
	return out
}

func TestNormalizeCleanSurvey(t *testing.T) {
	doc := testutil.ParseSurvey(t, testutil.MinimalSurvey)
	result := normalize.Normalize(doc)
	if !result.OK() {
		t.Fatalf("expected no issues, got %+v", result.Issues)
	}
	ref, ok := result.Document.FindQuestion("MS1_Q1")
	if !ok {
		t.Fatalf("expected MS1_Q1 in normalized document")
	}
	if ref.Question["required"] != true || !ref.Question.Has("rows") || ref.Question["rows"] != nil {
		t.Fatalf("expected defaults filled: %+v", ref.Question)
	}
	orig, _ := doc.FindQuestion("MS1_Q1")
	if orig.Question.Has("required") {
		t.Fatalf("input document must not be modified")
	}
}

func TestNormalizeMissingSectionsShortCircuits(t *testing.T) {
	doc := testutil.ParseSurvey(t, `{"STUDY_METADATA": {}, "SCREENER": {"questions": "bad"}}`)
	result := normalize.Normalize(doc)
	want := []string{
		normalize.CodeTopLevelMissingKey, normalize.CodeTopLevelMissingKey,
		normalize.CodeTopLevelMissingKey, normalize.CodeTopLevelMissingKey,
	}
	if diff := cmp.Diff(want, codes(result.Issues)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if result.Issues[0].IssueID != "ISSUE_0001" || result.Issues[0].JSONPath != "/MAIN_SECTION" {
		t.Fatalf("unexpected first issue %+v", result.Issues[0])
	}
	if result.Issues[3].IssueID != "ISSUE_0004" {
		t.Fatalf("expected sequential ids, got %s", result.Issues[3].IssueID)
	}
}

func TestNormalizeQuestionIssues(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		code string
		path string
	}{
		{
			name: "options on open ended",
			raw:  withOptionsOnOpenEnded(),
			code: normalize.CodeOptionsMustBeEmpty,
			path: "/MAIN_SECTION/sub_sections/0/questions/0/options",
		},
		{
			name: "missing options",
			raw:  strings.Replace(testutil.MinimalSurvey, `"options": ["Yes", "No", "Prefer not to say"]`, `"options": []`, 1),
			code: normalize.CodeOptionsRequired,
			path: "/SCREENER/questions/0/options",
		},
		{
			name: "duplicate id",
			raw:  strings.Replace(testutil.MinimalSurvey, `"question_id": "D1"`, `"question_id": "SCR_Q1"`, 1),
			code: normalize.CodeDuplicateQuestionID,
			path: "/DEMOGRAPHICS/questions/0/question_id",
		},
		{
			name: "bad type",
			raw:  strings.Replace(testutil.MinimalSurvey, `"question_type": "open_ended"`, `"question_type": "essay"`, 1),
			code: normalize.CodeQuestionBadType,
			path: "/MAIN_SECTION/sub_sections/0/questions/0/question_type",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := normalize.Normalize(testutil.ParseSurvey(t, tc.raw))
			if len(result.Issues) != 1 {
				t.Fatalf("expected one issue, got %+v", result.Issues)
			}
			issue := result.Issues[0]
			if issue.ErrorCode != tc.code || issue.JSONPath != tc.path {
				t.Fatalf("unexpected issue %s at %s", issue.ErrorCode, issue.JSONPath)
			}
		})
	}
}

func TestNormalizeRoutingRulesShape(t *testing.T) {
	doc := testutil.ParseSurvey(t, testutil.MinimalSurvey)
	doc.Object(survey.SectionFlow)["routing_rules"] = "skip to end"
	result := normalize.Normalize(doc)
	if diff := cmp.Diff([]string{normalize.CodeRoutingRulesNotArray}, codes(result.Issues)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsClearedOnForbiddenTypes(t *testing.T) {
	doc := testutil.ParseSurvey(t, withOptionsOnOpenEnded())
	result := normalize.Normalize(doc)
	ref, _ := result.Document.FindQuestion("MS1_Q1")
	if len(ref.Question.Options()) != 0 {
		t.Fatalf("expected options cleared, got %v", ref.Question.Options())
	}
	issue := result.Issues[0]
	if diff := cmp.Diff(normalize.FragmentRef{Section: survey.SectionMain, SubsectionID: "MS1", QuestionID: "MS1_Q1"}, issue.FragmentRef); diff != "" {
		t.Fatalf("fragment ref mismatch (-want +got):\n%s", diff)
	}
	fragment, ok := issue.Fragment.(map[string]any)
	if !ok || len(survey.Strings(fragment["options"])) != 1 {
		t.Fatalf("fragment must keep the offending options: %v", issue.Fragment)
	}
}

func TestFingerprintIsStable(t *testing.T) {
	first := normalize.Normalize(testutil.ParseSurvey(t, withOptionsOnOpenEnded())).Issues
	second := normalize.Normalize(testutil.ParseSurvey(t, withOptionsOnOpenEnded())).Issues
	if first[0].Fingerprint != second[0].Fingerprint {
		t.Fatalf("fingerprints differ across runs")
	}
	if !regexp.MustCompile(`^sha256:[0-9a-f]{64}$`).MatchString(first[0].Fingerprint) {
		t.Fatalf("unexpected fingerprint format %q", first[0].Fingerprint)
	}
	if normalize.Fingerprint("A", "/x", "Q1") == normalize.Fingerprint("A", "/x", "Q2") {
		t.Fatalf("question id must change the fingerprint")
	}
}

func TestGroupAndFindIssues(t *testing.T) {
	issues := normalize.Normalize(testutil.ParseSurvey(t, withOptionsOnOpenEnded())).Issues
	grouped := normalize.GroupIssues(issues)
	want := map[string][]string{
		"MAIN_SECTION":     {"ISSUE_0001"},
		"MAIN_SECTION:MS1": {"ISSUE_0001"},
	}
	if diff := cmp.Diff(want, grouped); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
	if _, ok := normalize.FindIssue(issues, issues[0].Fingerprint); !ok {
		t.Fatalf("expected lookup by fingerprint")
	}
	if _, ok := normalize.FindIssue(issues, "ISSUE_0002"); ok {
		t.Fatalf("unexpected match for unknown id")
	}
}

func TestBuildRepairPayload(t *testing.T) {
	issue := normalize.Normalize(testutil.ParseSurvey(t, withOptionsOnOpenEnded())).Issues[0]
	payload := normalize.BuildRepairPayload(issue)
	if payload.Task != "targeted_json_repair" || payload.IssueID != issue.IssueID || payload.JSONPath != issue.JSONPath {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if len(payload.Expected.Format.Patch) != 1 || payload.Expected.Note == "" {
		t.Fatalf("expected patch format hint: %+v", payload.Expected)
	}
}

func TestApplyRepair(t *testing.T) {
	doc := testutil.ParseSurvey(t, withOptionsOnOpenEnded())
	issue := normalize.Normalize(doc).Issues[0]
	path := issue.JSONPath

	outcome, err := normalize.ApplyRepair(doc, issue, []jsonpatch.Operation{
		jsonpatch.NewOperation(jsonpatch.OpReplace, path, []any{}),
	})
	if err != nil {
		t.Fatalf("apply repair: %v", err)
	}
	if !outcome.Resolved || len(outcome.Introduced) != 0 || !outcome.Result.OK() {
		t.Fatalf("expected clean repair: %+v", outcome)
	}
	if got, _ := jsonpatch.Get(doc.Tree(), path); len(got.([]any)) != 1 {
		t.Fatalf("input document must not be modified")
	}

	outcome, err = normalize.ApplyRepair(doc, issue, []jsonpatch.Operation{
		jsonpatch.NewOperation(jsonpatch.OpReplace, path, []any{}),
		jsonpatch.NewOperation(jsonpatch.OpReplace, "/DEMOGRAPHICS/questions/0/options", []any{}),
	})
	if err != nil {
		t.Fatalf("apply repair: %v", err)
	}
	if !outcome.Resolved || len(outcome.Introduced) != 1 {
		t.Fatalf("expected one introduced issue: %+v", outcome)
	}

	if _, err := normalize.ApplyRepair(doc, issue, []jsonpatch.Operation{
		jsonpatch.NewOperation("move", path, nil),
	}); err == nil {
		t.Fatalf("expected unsupported op error")
	}
}
