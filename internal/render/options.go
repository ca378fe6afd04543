package render

import (
	"regexp"
	"strconv"
	"strings"

	"surveyforge/internal/survey"
)

var typeLabels = map[string]string{
	survey.TypeSingleChoice:   "Single choice",
	survey.TypeMultipleChoice: "Multiple choice",
	survey.TypeScale:          "Scale",
	survey.TypeMatrix:         "Matrix",
	survey.TypeOpenEnded:      "Open ended",
	survey.TypeNumericInput:   "Numeric input",
	survey.TypeStimulus:       "Stimulus display",
	survey.TypeRanking:        "Ranking",
}

var answerFormats = map[string]string{
	survey.TypeSingleChoice:   "Select one",
	survey.TypeMultipleChoice: "Select one or more",
	survey.TypeScale:          "Select one",
	survey.TypeMatrix:         "One response per row",
	survey.TypeNumericInput:   "Enter number",
	survey.TypeOpenEnded:      "Free text",
	survey.TypeStimulus:       "Read only, no response collected",
	survey.TypeRanking:        "Rank items in order",
}

// TypeLabel is the human label of a question type. Unknown types render as
// the type itself.
func TypeLabel(questionType string) string {
	if label, ok := typeLabels[questionType]; ok {
		return label
	}
	return questionType
}

// AnswerFormat describes how a respondent answers a question type.
func AnswerFormat(questionType string) string {
	return answerFormats[questionType]
}

// choiceTypes carry display options.
func choiceType(questionType string) bool {
	switch questionType {
	case survey.TypeSingleChoice, survey.TypeMultipleChoice, survey.TypeScale, survey.TypeRanking:
		return true
	}
	return false
}

var leadingInt = regexp.MustCompile(`^(\d+)(?:\s*-\s*.*)?$`)

func parseLeadingInt(label string) (int, bool) {
	m := leadingInt.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Options assigns data codes to the options of q. When the labels cover
// every value 0-10 (an NPS scale) each code is the value itself and other
// labels get the next free code; otherwise codes run 1..n.
func Options(q survey.Question) []Option {
	items, ok := survey.AsArray(q["options"])
	if !ok {
		return []Option{}
	}
	labels := make([]string, len(items))
	values := make([]int, len(items))
	inRange := make([]bool, len(items))
	seen := map[int]bool{}
	for i, item := range items {
		labels[i] = survey.Text(item)
		if n, ok := parseLeadingInt(strings.TrimSpace(labels[i])); ok && n <= 10 {
			values[i], inRange[i] = n, true
			seen[n] = true
		}
	}

	out := make([]Option, len(items))
	if len(seen) == 11 {
		used := len(seen)
		for i, label := range labels {
			code := strconv.Itoa(values[i])
			if !inRange[i] {
				code = strconv.Itoa(used)
				used++
			}
			out[i] = Option{Code: code, Label: label}
		}
		return out
	}
	for i, label := range labels {
		out[i] = Option{Code: strconv.Itoa(i + 1), Label: label}
	}
	return out
}
