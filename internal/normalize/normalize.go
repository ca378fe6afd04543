// Package normalize checks the structural shape of a survey document, fills
// per-question defaults and reports every coercion as a fingerprinted Issue.
package normalize

import (
	"fmt"
	"sort"
	"strings"

	"surveyforge/internal/survey"
)

// Result is the normalized copy plus the issues found while producing it.
type Result struct {
	Document *survey.Document
	Issues   []Issue
}

// OK reports whether no structural issues were found.
func (r Result) OK() bool {
	return len(r.Issues) == 0
}

// Normalize returns a normalized deep copy of doc. The input is never
// modified. Missing top-level keys short-circuit every other check.
func Normalize(doc *survey.Document) Result {
	out := doc.Clone()
	if out == nil {
		out = survey.NewDocument(nil, nil)
	}
	var c issueCollector

	for _, key := range survey.RequiredSections {
		if !out.Has(key) {
			c.add(CodeTopLevelMissingKey, "/"+key,
				fmt.Sprintf("Missing top-level key '%s'.", key),
				FragmentRef{Section: key}, map[string]any{"missing_key": key})
		}
	}
	if len(c.issues) > 0 {
		return Result{Document: out, Issues: c.issues}
	}

	n := &normalizer{c: &c, seenQuestions: map[string]bool{}}

	n.questionsBlock(sectionField(out, survey.SectionScreener, "questions"),
		"/SCREENER/questions", FragmentRef{Section: survey.SectionScreener})
	n.subsections(out)
	n.questionsBlock(sectionField(out, survey.SectionDemographics, "questions"),
		"/DEMOGRAPHICS/questions", FragmentRef{Section: survey.SectionDemographics})

	if flow := out.Object(survey.SectionFlow); flow != nil {
		if rules, ok := flow["routing_rules"]; ok {
			if _, isArr := survey.AsArray(rules); !isArr {
				c.add(CodeRoutingRulesNotArray, "/FLOW/routing_rules",
					"FLOW.routing_rules must be an array.",
					FragmentRef{Section: survey.SectionFlow}, rules)
			}
		}
	}
	if summary, _ := out.Get(survey.SectionDimensionSummary); summary != nil {
		if _, isArr := survey.AsArray(summary); !isArr {
			c.add(CodeDimensionSummaryNotArr, "/DIMENSION_COVERAGE_SUMMARY",
				"DIMENSION_COVERAGE_SUMMARY must be an array.",
				FragmentRef{Section: survey.SectionDimensionSummary}, summary)
		}
	}
	return Result{Document: out, Issues: c.issues}
}

type normalizer struct {
	c             *issueCollector
	seenQuestions map[string]bool
}

func sectionField(doc *survey.Document, section, field string) any {
	obj := doc.Object(section)
	if obj == nil {
		return nil
	}
	return obj[field]
}

func (n *normalizer) subsections(doc *survey.Document) {
	main := doc.Object(survey.SectionMain)
	var raw any
	if main != nil {
		raw = main["sub_sections"]
	}
	subs, ok := survey.AsArray(raw)
	if !ok {
		n.c.add(CodeSubsectionsNotArray, "/MAIN_SECTION/sub_sections",
			"MAIN_SECTION.sub_sections must be an array.",
			FragmentRef{Section: survey.SectionMain}, raw)
		return
	}
	seen := map[string]bool{}
	for i, item := range subs {
		path := fmt.Sprintf("/MAIN_SECTION/sub_sections/%d", i)
		sub, ok := item.(map[string]any)
		if !ok {
			n.c.add(CodeSubsectionNotObject, path, "Each sub_section must be an object.",
				FragmentRef{Section: survey.SectionMain}, item)
			continue
		}
		id := survey.Str(sub, "subsection_id")
		ref := FragmentRef{Section: survey.SectionMain, SubsectionID: id}
		switch {
		case id == "":
			n.c.add(CodeSubsectionMissingID, path+"/subsection_id", "subsection_id is required.", ref, sub)
		case seen[id]:
			n.c.add(CodeDuplicateSubsectionID, path+"/subsection_id",
				fmt.Sprintf("Duplicate subsection_id '%s'.", id), ref, sub)
		default:
			seen[id] = true
		}
		n.questionsBlock(sub["questions"], path+"/questions", ref)
	}
}

func (n *normalizer) questionsBlock(raw any, basePath string, base FragmentRef) {
	questions, ok := survey.AsArray(raw)
	if !ok {
		n.c.add(CodeQuestionsNotArray, basePath, "Questions block must be an array.", base, raw)
		return
	}
	for i, item := range questions {
		path := fmt.Sprintf("%s/%d", basePath, i)
		q, ok := item.(map[string]any)
		if !ok {
			n.c.add(CodeQuestionNotObject, path, "Each question must be a JSON object.", base, item)
			continue
		}
		ref := base
		ref.QuestionID = survey.Str(q, "question_id")
		n.question(survey.Question(q), path, ref)

		id := ref.QuestionID
		if id != "" && n.seenQuestions[id] {
			n.c.add(CodeDuplicateQuestionID, path+"/question_id",
				fmt.Sprintf("Duplicate question_id '%s'.", id), ref, q)
			continue
		}
		n.seenQuestions[id] = true
	}
}

func (n *normalizer) question(q survey.Question, path string, ref FragmentRef) {
	for _, field := range []string{"question_id", "question_text", "question_type"} {
		if strings.TrimSpace(survey.Str(q, field)) == "" {
			n.c.add(CodeQuestionMissing, path+"/"+field,
				fmt.Sprintf("Question missing required field '%s'.", field), ref, q)
		}
	}

	if raw, ok := q["options"]; ok && raw != nil {
		if _, isArr := survey.AsArray(raw); !isArr {
			n.c.add(CodeOptionsNotArray, path+"/options", "Field 'options' must be an array.", ref, q)
			q["options"] = []any{}
		}
	}
	if _, isArr := survey.AsArray(q["options"]); !isArr {
		q["options"] = []any{}
	}
	for key, fallback := range map[string]any{
		"rows": nil, "columns": nil, "display_logic": nil, "piping": nil, "notes": nil, "required": true,
	} {
		if !q.Has(key) {
			q[key] = fallback
		}
	}

	qtype := q.Type()
	if !survey.ValidQuestionType(qtype) {
		allowed := append([]string(nil), survey.QuestionTypes...)
		sort.Strings(allowed)
		n.c.add(CodeQuestionBadType, path+"/question_type",
			fmt.Sprintf("Invalid question_type '%s'. Allowed: %s", qtype, strings.Join(allowed, ", ")), ref, q)
	}

	options, _ := survey.AsArray(q["options"])
	if survey.OptionsForbidden(qtype) && len(options) > 0 {
		n.c.add(CodeOptionsMustBeEmpty, path+"/options",
			fmt.Sprintf("For question_type '%s', options must be [].", qtype), ref, q)
		q["options"] = []any{}
	}
	if survey.OptionsRequired(qtype) && len(options) == 0 {
		n.c.add(CodeOptionsRequired, path+"/options",
			fmt.Sprintf("For question_type '%s', options must be non-empty.", qtype), ref, q)
	}

	if qtype == survey.TypeMatrix {
		rows, _ := survey.AsArray(q["rows"])
		cols, _ := survey.AsArray(q["columns"])
		if len(rows) == 0 || len(cols) == 0 {
			n.c.add(CodeMatrixMissingRowsCols, path,
				"Matrix questions require non-empty 'rows' and 'columns'.", ref, q)
			q["rows"] = orEmpty(rows)
			q["columns"] = orEmpty(cols)
		}
		return
	}
	if survey.Truthy(q["rows"]) || survey.Truthy(q["columns"]) {
		n.c.add(CodeRowsColumnsNotAllowed, path,
			fmt.Sprintf("For question_type '%s', rows and columns must be null.", qtype), ref, q)
	}
	q["rows"] = nil
	q["columns"] = nil
}

func orEmpty(items []any) []any {
	if items == nil {
		return []any{}
	}
	return items
}
