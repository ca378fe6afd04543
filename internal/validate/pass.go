package validate

import (
	"fmt"
	"strings"

	"surveyforge/internal/survey"
)

// Pass is the working state of one validation run. Checks read and mutate
// Doc in place; later checks see earlier fixes.
type Pass struct {
	Doc     *survey.Document
	Brief   survey.Brief
	results []Result
}

// Report records a result.
func (p *Pass) Report(r Result) {
	p.results = append(p.results, r)
}

// Results returns the results reported so far.
func (p *Pass) Results() []Result {
	return p.results
}

func (p *Pass) fail(id, name, qid, section, message string) {
	p.Report(Result{CheckID: id, CheckName: name, Severity: SeverityError, QuestionID: qid, Section: section, Message: message})
}

func (p *Pass) warn(id, name, qid, section, message string) {
	p.Report(Result{CheckID: id, CheckName: name, Severity: SeverityWarning, QuestionID: qid, Section: section, Message: message})
}

func (p *Pass) fix(id, name, qid, section, message, action string) {
	p.Report(Result{CheckID: id, CheckName: name, Severity: SeverityAutoFix, QuestionID: qid, Section: section, Message: message, ActionTaken: action})
}

func (p *Pass) advise(id, name, qid, section, message, suggestion string) {
	p.Report(Result{CheckID: id, CheckName: name, Severity: SeverityAdvisory, QuestionID: qid, Section: section, Message: message, Suggestion: suggestion})
}

// location names the section a question is reported under: the
// sub-section id inside MAIN_SECTION, the section key elsewhere.
func location(ref survey.QuestionRef) string {
	if ref.Section == survey.SectionMain {
		return ref.SubsectionID
	}
	return ref.Section
}

// match is a question whose text hit a keyword set.
type match struct {
	ref survey.QuestionRef
}

func (m match) id() string      { return m.ref.Question.ID() }
func (m match) section() string { return location(m.ref) }
func (m match) position() int   { return m.ref.Position }

// findMatching returns questions matching any of keywordsA and, when
// given, any of keywordsB, in global order.
func (p *Pass) findMatching(keywordsA []string, keywordsB []string) []match {
	var out []match
	for _, ref := range p.Doc.Questions() {
		text := ref.Question.Text()
		if !containsKeyword(text, keywordsA...) {
			continue
		}
		if keywordsB != nil && !containsKeyword(text, keywordsB...) {
			continue
		}
		out = append(out, match{ref: ref})
	}
	return out
}

// findSubstring returns questions whose lower-cased text contains any needle.
func (p *Pass) findSubstring(needles ...string) []match {
	var out []match
	for _, ref := range p.Doc.Questions() {
		if containsSubstring(ref.Question.Text(), needles...) {
			out = append(out, match{ref: ref})
		}
	}
	return out
}

func withTimeReference(matches []match) []match {
	var out []match
	for _, m := range matches {
		if containsSubstring(m.ref.Question.Text(), timeReferenceKeywords...) {
			out = append(out, m)
		}
	}
	return out
}

// evaluationSubsections returns sub-sections that show a stimulus.
func (p *Pass) evaluationSubsections() []survey.Subsection {
	var out []survey.Subsection
	for _, sub := range p.Doc.Subsections() {
		if hasStimulus(sub) {
			out = append(out, sub)
		}
	}
	return out
}

func hasStimulus(sub survey.Subsection) bool {
	for _, q := range sub.Questions() {
		if q.Type() == survey.TypeStimulus {
			return true
		}
	}
	return false
}

// displayedArtefacts maps artefact ids shown by MAIN_SECTION stimulus
// questions to the sub-section that shows them.
func (p *Pass) displayedArtefacts() map[string]string {
	shown := map[string]string{}
	for _, sub := range p.Doc.Subsections() {
		for _, q := range sub.Questions() {
			if q.Type() != survey.TypeStimulus {
				continue
			}
			if id := survey.Str(q, "displays_artefact"); id != "" {
				shown[id] = sub.ID()
			}
		}
	}
	return shown
}

// requireStimulusPerArtefact errors for every artefact nobody displays.
func (p *Pass) requireStimulusPerArtefact(id, name, kind string) {
	shown := p.displayedArtefacts()
	for _, artefact := range p.Doc.Artefacts() {
		artefactID := survey.Str(artefact, "artefact_id")
		if _, ok := shown[artefactID]; !ok {
			p.fail(id, name, "", survey.SectionStudyMetadata,
				fmt.Sprintf("%s artefact '%s' has no corresponding stimulus_display question", kind, artefactID))
		}
	}
}

func subsectionHasPattern(sub survey.Subsection, keywords []string) bool {
	for _, q := range sub.Questions() {
		if containsKeyword(q.Text(), keywords...) {
			return true
		}
	}
	return false
}

// requireMeasure warns for each sub-section with no question matching keywords.
func (p *Pass) requireMeasure(id, name string, subs []survey.Subsection, keywords []string, message string) {
	for _, sub := range subs {
		if !subsectionHasPattern(sub, keywords) {
			p.warn(id, name, "", sub.ID(), message)
		}
	}
}

// firstIndex returns the index of the first question matching keywords, or -1.
func firstIndex(questions []survey.Question, keywords []string) int {
	for i, q := range questions {
		if containsKeyword(q.Text(), keywords...) {
			return i
		}
	}
	return -1
}

// subsectionConsistency warns when sub-sections differ in question count
// or in their sequence of question types.
func (p *Pass) subsectionConsistency(id, name, label string, subs []survey.Subsection) {
	if len(subs) <= 1 {
		return
	}
	counts := make([]int, len(subs))
	sequences := make([]string, len(subs))
	for i, sub := range subs {
		questions := sub.Questions()
		counts[i] = len(questions)
		types := make([]string, len(questions))
		for j, q := range questions {
			types[j] = q.Type()
		}
		sequences[i] = strings.Join(types, "\x00")
	}
	if !allEqual(counts) {
		p.warn(id, name, "", survey.SectionMain,
			fmt.Sprintf("%s subsections have inconsistent question counts: %s", label, formatInts(counts)))
	}
	if !allEqual(sequences) {
		p.warn(id, name, "", survey.SectionMain,
			fmt.Sprintf("%s subsections have inconsistent question type sequences", label))
	}
}

func allEqual[T comparable](values []T) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// flowText is the lower-cased FLOW summary and description.
func (p *Pass) flowText() string {
	flow := p.Doc.Object(survey.SectionFlow)
	if flow == nil {
		return ""
	}
	return strings.ToLower(survey.Str(flow, "summary") + " " + survey.Str(flow, "description"))
}

// ruleMentions reports whether any routing rule field contains a needle.
func (p *Pass) ruleMentions(field string, needles ...string) bool {
	for _, rule := range p.Doc.RoutingRules() {
		if containsSubstring(survey.Str(rule, field), needles...) {
			return true
		}
	}
	return false
}

func (p *Pass) countQuestions() int {
	return len(p.Doc.Questions())
}

// scalePointCounts returns the option count of every scale question.
func (p *Pass) scalePointCounts() []int {
	var counts []int
	for _, ref := range p.Doc.Questions() {
		if ref.Question.Type() != survey.TypeScale {
			continue
		}
		if n := len(ref.Question.Options()); n > 0 {
			counts = append(counts, n)
		}
	}
	return counts
}
