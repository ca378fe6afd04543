package validate

import (
	"testing"

	"surveyforge/internal/survey"
)

func parseBrief(t *testing.T, raw string) survey.Brief {
	t.Helper()
	brief, err := survey.ParseBrief([]byte(raw), "brief.json")
	if err != nil {
		t.Fatalf("parse brief: %v", err)
	}
	return brief
}

func TestContainsKeyword(t *testing.T) {
	cases := []struct {
		text     string
		keywords []string
		want     bool
	}{
		{"Which brands do you use?", []string{"use"}, true},
		{"As a user of this app", []string{"use"}, false},
		{"Have you HEARD OF these brands?", []string{"heard of"}, true},
		{"Rank these items", []string{"rank"}, true},
		{"Ranking exercise", []string{"rank"}, false},
		{"Is it eye-catching?", []string{"eye-catching"}, true},
		{"café culture", []string{"caf"}, false},
		{"", []string{"anything"}, false},
	}
	for _, tc := range cases {
		if got := containsKeyword(tc.text, tc.keywords...); got != tc.want {
			t.Fatalf("containsKeyword(%q, %v) = %v, want %v", tc.text, tc.keywords, got, tc.want)
		}
	}
}

func TestContainsSubstring(t *testing.T) {
	if !containsSubstring("A User Survey", "user") {
		t.Fatalf("expected case-insensitive substring match")
	}
	if containsSubstring("Survey", "poll", "quiz") {
		t.Fatalf("unexpected match")
	}
}
