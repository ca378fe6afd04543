package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"surveyforge/internal/survey"
)

// MinimalSurvey is a structurally valid survey: one screener question, one
// sub-section and one demographic.
const MinimalSurvey = `{
  "STUDY_METADATA": {"study_type": "u&a", "description": "Snack usage"},
  "SCREENER": {"questions": [
    {"question_id": "SCR_Q1", "question_text": "Do you buy snacks?", "question_type": "single_choice",
     "options": ["Yes", "No", "Prefer not to say"]}
  ]},
  "MAIN_SECTION": {"sub_sections": [
    {"subsection_id": "MS1", "subsection_title": "Usage", "purpose": "Usage habits", "questions": [
      {"question_id": "MS1_Q1", "question_text": "Why do you buy snacks?", "question_type": "open_ended", "options": []},
      {"question_id": "MS1_Q2", "question_text": "Which brands do you buy?", "question_type": "multiple_choice",
       "options": ["Brand A", "Brand B", "None of these"]}
    ]}
  ]},
  "DEMOGRAPHICS": {"questions": [
    {"question_id": "D1", "question_text": "What is your age?", "question_type": "single_choice",
     "options": ["18-34", "35-54", "55+", "Prefer not to say"]}
  ]},
  "FLOW": {"summary": "Screen, then usage.", "routing_rules": [
    {"rule_id": "R1", "condition": "SCR_Q1 = 'No'", "action": "Terminate"}
  ]},
  "DIMENSION_COVERAGE_SUMMARY": []
}`

// ParseSurvey parses raw JSON into a document or fails the test.
func ParseSurvey(t testing.TB, raw string) *survey.Document {
	t.Helper()
	doc, err := survey.ParseJSON([]byte(raw))
	if err != nil {
		t.Fatalf("parse survey: %v", err)
	}
	return doc
}

// WriteFile writes content under dir and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
