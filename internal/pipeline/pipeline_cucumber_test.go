//go:build cucumber

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/google/go-cmp/cmp"

	"surveyforge/internal/jsonpatch"
	"surveyforge/internal/loi"
	"surveyforge/internal/normalize"
	"surveyforge/internal/render"
	"surveyforge/internal/routing"
	"surveyforge/internal/survey"
	"surveyforge/internal/validate"
)

// TestPipelineScenarios runs the pipeline feature scenarios.
func TestPipelineScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "pipeline",
		ScenarioInitializer: InitializePipelineScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("features")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializePipelineScenario wires steps for the pipeline scenarios.
func InitializePipelineScenario(ctx *godog.ScenarioContext) {
	state := &pipelineScenarioState{}
	ctx.Before(state.before)

	ctx.Step(`^the survey:$`, state.givenSurvey)
	ctx.Step(`^I validate it with an empty brief$`, state.whenIValidate)
	ctx.Step(`^I validate the result again$`, state.whenIValidateAgain)
	ctx.Step(`^I normalize it$`, state.whenINormalize)
	ctx.Step(`^I build the routing index$`, state.whenIBuildTheRoutingIndex)
	ctx.Step(`^there (?:is|are) (\d+) "([^"]+)" results? for "([^"]+)"$`, state.thenResultsFor)
	ctx.Step(`^there (?:is|are) (\d+) "([^"]+)" results?$`, state.thenResults)
	ctx.Step(`^question "([^"]+)" has options "([^"]*)"$`, state.thenQuestionHasOptions)
	ctx.Step(`^rendering is blocked$`, state.thenRenderingIsBlocked)
	ctx.Step(`^the issues have codes "([^"]*)"$`, state.thenIssueCodes)
	ctx.Step(`^question "([^"]+)" is skipped by "([^"]+)"$`, state.thenSkippedBy)

	ctx.Step(`^the document '([^']*)'$`, state.givenDocument)
	ctx.Step(`^I apply '([^']*)'$`, state.whenIApply)
	ctx.Step(`^the document is '([^']*)'$`, state.thenDocumentIs)

	ctx.Step(`^the visible count is non-decreasing from 0 to 100$`, state.thenVisibleMonotonic)
	ctx.Step(`^I pin "([^"]+)"$`, state.whenIPin)
	ctx.Step(`^I exclude "([^"]+)"$`, state.whenIExclude)
	ctx.Step(`^I move the slider to (\d+)$`, state.whenIMoveTheSlider)
	ctx.Step(`^question "([^"]+)" is "(visible|hidden)"$`, state.thenQuestionVisibility)
}

// pipelineScenarioState holds scenario state for the pipeline features.
type pipelineScenarioState struct {
	doc     *survey.Document
	current *survey.Document
	issues  []normalize.Issue
	results []validate.Result
	index   routing.Index
	calc    *loi.Calculator

	raw any
}

func (s *pipelineScenarioState) before(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
	*s = pipelineScenarioState{}
	return ctx, nil
}

func (s *pipelineScenarioState) givenSurvey(body *godog.DocString) error {
	doc, err := survey.ParseJSON([]byte(body.Content))
	if err != nil {
		return err
	}
	s.doc, s.current = doc, doc
	return nil
}

func (s *pipelineScenarioState) whenIValidate() error {
	s.issues = normalize.Normalize(s.doc).Issues
	s.current, s.results = validate.New(survey.Brief{}).Validate(s.doc)
	return nil
}

func (s *pipelineScenarioState) whenIValidateAgain() error {
	s.current, s.results = validate.New(survey.Brief{}).Validate(s.current)
	return nil
}

func (s *pipelineScenarioState) whenINormalize() error {
	result := normalize.Normalize(s.doc)
	s.current, s.issues = result.Document, result.Issues
	return nil
}

func (s *pipelineScenarioState) whenIBuildTheRoutingIndex() error {
	var ids []string
	for _, ref := range s.doc.Questions() {
		ids = append(ids, ref.Question.ID())
	}
	s.index, _ = routing.Build(s.doc.Object(survey.SectionFlow), ids)
	return nil
}

func (s *pipelineScenarioState) count(severity, checkID string) int {
	n := 0
	for _, r := range s.results {
		if string(r.Severity) == severity && (checkID == "" || r.CheckID == checkID) {
			n++
		}
	}
	return n
}

func (s *pipelineScenarioState) thenResultsFor(expected int, severity, checkID string) error {
	if got := s.count(severity, checkID); got != expected {
		return fmt.Errorf("expected %d %s result(s) for %s, got %d", expected, severity, checkID, got)
	}
	return nil
}

func (s *pipelineScenarioState) thenResults(expected int, severity string) error {
	if got := s.count(severity, ""); got != expected {
		return fmt.Errorf("expected %d %s result(s), got %d", expected, severity, got)
	}
	return nil
}

func (s *pipelineScenarioState) thenQuestionHasOptions(id, options string) error {
	ref, ok := s.current.FindQuestion(id)
	if !ok {
		return fmt.Errorf("question %s not found", id)
	}
	want := []string{}
	if options != "" {
		want = strings.Split(options, "|")
	}
	if diff := cmp.Diff(want, ref.Question.Options()); diff != "" {
		return fmt.Errorf("unexpected options (-want +got):\n%s", diff)
	}
	return nil
}

func (s *pipelineScenarioState) thenRenderingIsBlocked() error {
	if err := render.Guard(s.issues, s.results); err == nil {
		return fmt.Errorf("expected rendering to be blocked")
	}
	return nil
}

func (s *pipelineScenarioState) thenIssueCodes(codes string) error {
	got := make([]string, len(s.issues))
	for i, issue := range s.issues {
		got[i] = issue.ErrorCode
	}
	if diff := cmp.Diff(strings.Split(codes, "|"), got); diff != "" {
		return fmt.Errorf("unexpected issue codes (-want +got):\n%s", diff)
	}
	return nil
}

func (s *pipelineScenarioState) thenSkippedBy(id, rule string) error {
	if diff := cmp.Diff([]string{rule}, s.index.Lookup(id).SkippedBy); diff != "" {
		return fmt.Errorf("unexpected skipped_by_rules (-want +got):\n%s", diff)
	}
	return nil
}

func (s *pipelineScenarioState) givenDocument(raw string) error {
	return json.Unmarshal([]byte(raw), &s.raw)
}

func (s *pipelineScenarioState) whenIApply(raw string) error {
	ops, err := jsonpatch.ParseOperations([]byte(raw))
	if err != nil {
		return err
	}
	s.raw, err = jsonpatch.Apply(s.raw, ops)
	return err
}

func (s *pipelineScenarioState) thenDocumentIs(raw string) error {
	var want any
	if err := json.Unmarshal([]byte(raw), &want); err != nil {
		return err
	}
	if diff := cmp.Diff(want, s.raw); diff != "" {
		return fmt.Errorf("unexpected document (-want +got):\n%s", diff)
	}
	return nil
}

func (s *pipelineScenarioState) calculator() *loi.Calculator {
	if s.calc == nil {
		s.calc = loi.NewCalculator(s.doc)
		s.calc.Apply(loi.DefaultPosition)
	}
	return s.calc
}

func (s *pipelineScenarioState) thenVisibleMonotonic() error {
	previous := -1
	for position := 0; position <= loi.DeepMax; position++ {
		cfg := s.calculator().Recalculate(position)
		if cfg.VisibleQuestions < previous {
			return fmt.Errorf("visible count dropped at %d", position)
		}
		previous = cfg.VisibleQuestions
	}
	return nil
}

func (s *pipelineScenarioState) whenIPin(id string) error {
	_, err := s.calculator().Pin(id)
	return err
}

func (s *pipelineScenarioState) whenIExclude(id string) error {
	_, err := s.calculator().Exclude(id)
	return err
}

func (s *pipelineScenarioState) whenIMoveTheSlider(position int) error {
	s.calculator().Recalculate(position)
	return nil
}

func (s *pipelineScenarioState) thenQuestionVisibility(id, want string) error {
	ref, ok := s.calculator().Document().FindQuestion(id)
	if !ok {
		return fmt.Errorf("question %s not found", id)
	}
	if got := survey.Str(ref.Question, "loi_visibility"); got != want {
		return fmt.Errorf("expected %s to be %s, got %s", id, want, got)
	}
	return nil
}
