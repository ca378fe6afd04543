package render

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"surveyforge/internal/normalize"
	"surveyforge/internal/survey"
	"surveyforge/internal/validate"
)

const renderSurvey = `{
  "STUDY_METADATA": {
    "study_type": "concept_test",
    "artefacts": [
      {"artefact_id": "A1", "artefact_type": "concept", "title": "Concept A: Fresh", "content": "A crisp snack"},
      {"artefact_id": "A2", "artefact_type": "concept", "title": "Concept B: Bold", "content": "A spicy snack"}
    ]
  },
  "SCREENER": {"questions": [
    {"question_id": "SCR_Q1", "question_text": "Do you buy snacks?", "question_type": "single_choice",
     "options": ["Yes", "No"], "quota_attribute": "buyer", "quota_type": "hard",
     "quota_groups": [{"label": "Yes", "min": 50}, {"label": "No"}]}
  ]},
  "MAIN_SECTION": {"sub_sections": [
    {"subsection_id": "MS1", "subsection_title": "Concept", "purpose": "Measure appeal", "questions": [
      {"question_id": "MS1_Q1", "question_text": "Please read the concept.", "question_type": "stimulus_display",
       "options": [], "displays_artefact": "A1"},
      {"question_id": "MS1_Q2", "question_text": "After seeing [DISPLAY CONCEPT B], is <this> appealing?",
       "question_type": "scale", "options": ["1", "2", "3", "4", "5"], "required": false}
    ]},
    {"questions": [
      {"question_id": "MS2_Q1", "question_text": "Which would you choose?\n[OPTION A]\n• Price: $10\n• Size: Large\n[OPTION B]\n- Price: $12\n- Size: Small\n",
       "question_type": "single_choice", "options": ["Option A", "Option B"]}
    ]}
  ]},
  "DEMOGRAPHICS": {"questions": [
    {"question_id": "D1", "question_text": "Age?", "question_type": "numeric_input", "options": [], "notes": ""}
  ]},
  "FLOW": {"summary": "Screen then test", "routing_rules": [
    {"rule_id": "R1", "condition": "SCR_Q1 = 'No'", "action": "Terminate"},
    {"rule_id": "R2", "condition": "SCR_Q1 = 'Yes'", "action": "Show MS1_Q2 only"},
    {"rule_id": "R3", "condition": "", "action": "Randomly assign A1, A2"}
  ]},
  "DIMENSION_COVERAGE_SUMMARY": ["appeal"]
}`

func renderFixture(t *testing.T) UISpec {
	t.Helper()
	doc, err := survey.ParseJSON([]byte(renderSurvey))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	spec, err := Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return spec
}

func questionByID(t *testing.T, spec UISpec, id string) QuestionView {
	t.Helper()
	for _, b := range spec.Blocks {
		for _, q := range b.Questions {
			if q.QuestionID == id {
				return q
			}
		}
	}
	t.Fatalf("question %s not rendered", id)
	return QuestionView{}
}

func TestRenderBlockOrder(t *testing.T) {
	spec := renderFixture(t)
	var got []string
	for _, b := range spec.Blocks {
		got = append(got, b.BlockType+":"+b.Title)
	}
	want := []string{
		"study_header:Study Overview",
		"artefacts:Stimuli / Artefacts",
		"configuration_summary:Configuration Summary",
		"artefact_assignments:Artefact Randomization & Assignment",
		"quota_summary:Sample Quotas",
		"section:Screener",
		"subsection:Concept",
		"subsection:Main Subsection 2",
		"section:Demographics",
		"appendix:Flow, Routing & Assignments",
		"appendix:Dimension Coverage Summary",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected blocks (-want +got):\n%s", diff)
	}
	if spec.Version != "1.0" || spec.StudyType != "concept_test" {
		t.Fatalf("unexpected header: %s %v", spec.Version, spec.StudyType)
	}
	if spec.Blocks[9].Description != "Screen then test" {
		t.Fatalf("flow appendix should carry the flow summary, got %v", spec.Blocks[9].Description)
	}
}

func TestRenderNumbering(t *testing.T) {
	spec := renderFixture(t)
	for id, want := range map[string]string{"SCR_Q1": "S1", "MS1_Q2": "MS1.2", "MS2_Q1": "MS2.1", "D1": "D1"} {
		if got := questionByID(t, spec, id).Number; got != want {
			t.Fatalf("%s numbered %q, want %q", id, got, want)
		}
	}
	if spec.Blocks[7].SubsectionID != "MS2" {
		t.Fatalf("missing subsection id should default to MS2, got %q", spec.Blocks[7].SubsectionID)
	}
}

func TestRenderRoutingAnnotations(t *testing.T) {
	spec := renderFixture(t)
	screener := questionByID(t, spec, "SCR_Q1")
	want := []string{
		"Quota attribute: buyer (Yes: min 50, No: min n/a)",
		"Ends survey if you answered 'No'.",
	}
	if diff := cmp.Diff(want, screener.AnnotationText); diff != "" {
		t.Fatalf("unexpected screener annotations (-want +got):\n%s", diff)
	}
	shown := questionByID(t, spec, "MS1_Q2")
	if diff := cmp.Diff([]string{"Asked only if you answered 'Yes'."}, shown.AnnotationText); diff != "" {
		t.Fatalf("unexpected show annotation (-want +got):\n%s", diff)
	}
	if !shown.Meta.IsRouted || shown.Meta.Required != false {
		t.Fatalf("unexpected meta: %+v", shown.Meta)
	}
	if diff := cmp.Diff([]string{"A2"}, shown.Meta.DisplaysArtefacts); diff != "" {
		t.Fatalf("concept letter should resolve through the artefact titles (-want +got):\n%s", diff)
	}
}

func TestRenderQuestionMeta(t *testing.T) {
	spec := renderFixture(t)
	stimulus := questionByID(t, spec, "MS1_Q1")
	if stimulus.DisplaysArtefact == nil || stimulus.DisplaysArtefact.ArtefactID != "A1" {
		t.Fatalf("stimulus should display A1, got %+v", stimulus.DisplaysArtefact)
	}
	if stimulus.Meta.AnswerFormat != "Read only, no response collected" || stimulus.Meta.OptionCount != 0 {
		t.Fatalf("unexpected stimulus meta: %+v", stimulus.Meta)
	}
	numeric := questionByID(t, spec, "D1")
	if len(numeric.Options) != 0 || numeric.Meta.TypeLabel != "Numeric input" || numeric.Meta.Required != true {
		t.Fatalf("unexpected numeric view: %+v", numeric)
	}
	if numeric.AnnotationText != nil {
		t.Fatalf("empty notes should not annotate, got %v", numeric.AnnotationText)
	}
}

func TestRenderInlineConjoint(t *testing.T) {
	spec := renderFixture(t)
	q := questionByID(t, spec, "MS2_Q1")
	if q.DisplaysArtefact == nil || q.DisplaysArtefact.ArtefactType != "inline_conjoint" {
		t.Fatalf("expected inline conjoint, got %+v", q.DisplaysArtefact)
	}
	want := []ConfigSummary{{QuestionID: "MS2_Q1", DisplaysArtefact: "A1", Configurations: 2, AttributesPerConfiguration: 2}}
	if diff := cmp.Diff(want, spec.Blocks[2].Summary); diff != "" {
		t.Fatalf("unexpected configuration summary (-want +got):\n%s", diff)
	}
}

func TestParseChoiceTask(t *testing.T) {
	got := ParseChoiceTask("Pick one\n[OPTION A]\n• Price: $10\n• Size: Large\n[OPTION B]  \n- Price: $12\n[OPTION C] no break\n")
	want := &ChoiceTask{
		Type: "choice_task",
		Configurations: []Configuration{
			{ConfigID: "Option A", Attributes: map[string]string{"Price": "$10", "Size": "Large"}, Order: []string{"Price", "Size"}},
			{ConfigID: "Option B", Attributes: map[string]string{"Price": "$12"}, Order: []string{"Price"}},
		},
		AttributeCount: 2,
		ConfigCount:    2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected task (-want +got):\n%s", diff)
	}
	if ParseChoiceTask("no options here") != nil {
		t.Fatalf("expected nil without option markers")
	}
}

func TestOptionsNPSCodes(t *testing.T) {
	labels := []any{"0 - Not at all likely"}
	for _, n := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"} {
		labels = append(labels, n)
	}
	labels = append(labels, "10 - Extremely likely", "Don't know")
	got := Options(survey.Question{"options": labels})
	if got[0].Code != "0" || got[10].Code != "10" || got[11].Code != "11" {
		t.Fatalf("unexpected NPS codes: %+v", got)
	}
	if got[0].Label != "0 - Not at all likely" {
		t.Fatalf("labels should be kept verbatim, got %q", got[0].Label)
	}
}

func TestOptionsSequentialCodes(t *testing.T) {
	got := Options(survey.Question{"options": []any{"0", "1", "2"}})
	want := []Option{{Code: "1", Label: "0"}, {Code: "2", Label: "1"}, {Code: "3", Label: "2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected codes (-want +got):\n%s", diff)
	}
}

func TestArtefactReferences(t *testing.T) {
	got := ArtefactReferences("[DISPLAY CONCEPT B] then {{artefact:A3}} and [DISPLAY CONCEPT C]", map[string]string{"B": "A7"})
	if diff := cmp.Diff([]string{"A3", "A7"}, got); diff != "" {
		t.Fatalf("unexpected references (-want +got):\n%s", diff)
	}
}

func TestScore(t *testing.T) {
	doc, err := survey.ParseJSON([]byte(renderSurvey))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := Score(doc)
	want := Completeness{
		Score:   17,
		Present: []string{"Subsection purposes"},
		Missing: []string{"Sample Requirements", "Programming Specifications", "Analysis Plan", "Estimated LOI", "Question notes/rationale"},
		Status:  StatusBasic,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected completeness (-want +got):\n%s", diff)
	}
}

func TestBlockJSONFlattensFields(t *testing.T) {
	data, err := json.Marshal(Block{BlockType: BlockAnalysisPlan, Title: "Analysis Plan", Fields: map[string]any{"deliverables": []any{"deck"}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"deliverables":["deck"]`) {
		t.Fatalf("fields not flattened: %s", data)
	}
	data, err = json.Marshal(Block{BlockType: BlockSection, Title: "Screener"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"questions":[]`) {
		t.Fatalf("empty section should carry questions: %s", data)
	}
}

func TestRenderRequiresSections(t *testing.T) {
	_, err := Render(survey.NewDocument(nil, nil))
	if !errors.Is(err, ErrNotRenderable) {
		t.Fatalf("expected ErrNotRenderable, got %v", err)
	}
}

func TestGuard(t *testing.T) {
	if err := Guard(nil, []validate.Result{{Severity: validate.SeverityWarning}}); err != nil {
		t.Fatalf("warnings should not block: %v", err)
	}
	if err := Guard(nil, []validate.Result{{Severity: validate.SeverityError}}); !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
	if err := Guard([]normalize.Issue{{IssueID: "ISSUE_0001"}}, nil); !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked for structural issues, got %v", err)
	}
}

func TestPageEscapesText(t *testing.T) {
	html, err := RenderHTML(context.Background(), renderFixture(t))
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	if !strings.Contains(html, "is &lt;this&gt; appealing?") {
		t.Fatalf("question text not escaped")
	}
	if !strings.Contains(html, "Completeness: 17% (basic)") {
		t.Fatalf("completeness missing from header")
	}
}
