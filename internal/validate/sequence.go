package validate

import (
	"fmt"

	"surveyforge/internal/survey"
)

// sequenceChecks enforce question ordering inside MAIN_SECTION sub-sections.
var sequenceChecks = []Check{
	{ID: "SEQ_001", Name: "stimulus_before_evaluation", Run: checkStimulusFirst},
	{ID: "SEQ_002", Name: "unaided_before_aided", Run: checkUnaidedBeforeAided},
	{ID: "SEQ_003", Name: "comprehension_before_persuasion", Run: checkComprehensionBeforePersuasion},
	{ID: "SEQ_004", Name: "open_end_diagnostics_after_closed", Run: checkDiagnosticsAfterClosed},
}

// checkStimulusFirst moves the first stimulus to the top of a sub-section
// that does not already open with one. A sub-section that opens with a
// stimulus is left alone, so repeated passes converge.
func checkStimulusFirst(p *Pass) {
	const id, name = "SEQ_001", "stimulus_before_evaluation"
	for _, sub := range p.Doc.Subsections() {
		raw, ok := survey.AsArray(sub["questions"])
		if !ok || len(raw) == 0 {
			continue
		}
		if first, ok := raw[0].(map[string]any); ok && survey.Question(first).Type() == survey.TypeStimulus {
			continue
		}
		for idx, item := range raw {
			q, ok := item.(map[string]any)
			if !ok || survey.Question(q).Type() != survey.TypeStimulus {
				continue
			}
			reordered := make([]any, 0, len(raw))
			reordered = append(reordered, item)
			reordered = append(reordered, raw[:idx]...)
			reordered = append(reordered, raw[idx+1:]...)
			sub["questions"] = reordered
			qid := survey.Question(q).ID()
			p.fix(id, name, qid, sub.ID(),
				fmt.Sprintf("stimulus_display question at position %d, should be first", idx+1),
				fmt.Sprintf("Moved %s to position 1 in subsection", qid))
			break
		}
	}
}

var (
	unaidedKeywords = []string{
		"without prompting", "top of mind", "first come to mind",
		"think of", "can you name", "what brands",
	}
	aidedKeywords = []string{
		"which of the following", "from this list", "select from",
		"have you heard of",
	}
)

func checkUnaidedBeforeAided(p *Pass) {
	const id, name = "SEQ_002", "unaided_before_aided"
	for _, sub := range p.Doc.Subsections() {
		unaided, aided := -1, -1
		var aidedID string
		for idx, q := range sub.Questions() {
			if unaided < 0 && containsKeyword(q.Text(), unaidedKeywords...) {
				unaided = idx
			}
			if aided < 0 && containsKeyword(q.Text(), aidedKeywords...) && len(q.Options()) > 0 {
				aided, aidedID = idx, q.ID()
			}
		}
		if unaided >= 0 && aided >= 0 && aided < unaided {
			p.warn(id, name, aidedID, sub.ID(),
				fmt.Sprintf("Aided awareness question at position %d appears before unaided at position %d", aided+1, unaided+1))
		}
	}
}

var (
	comprehensionKeywords = []string{
		"main message", "key takeaway", "what is this about",
		"what does this communicate", "in your own words",
	}
	persuasionKeywords = []string{
		"how likely", "purchase intent", "would you buy",
		"how persuasive", "how convincing",
	}
)

func checkComprehensionBeforePersuasion(p *Pass) {
	const id, name = "SEQ_003", "comprehension_before_persuasion"
	for _, sub := range p.Doc.Subsections() {
		questions := sub.Questions()
		comprehension := firstIndex(questions, comprehensionKeywords)
		persuasion := firstIndex(questions, persuasionKeywords)
		if comprehension >= 0 && persuasion >= 0 && persuasion < comprehension {
			p.warn(id, name, questions[persuasion].ID(), sub.ID(),
				fmt.Sprintf("Persuasion question at position %d appears before comprehension at position %d", persuasion+1, comprehension+1))
		}
	}
}

var diagnosticKeywords = []string{"like most", "like least", "improve", "change", "why did you"}

func checkDiagnosticsAfterClosed(p *Pass) {
	const id, name = "SEQ_004", "open_end_diagnostics_after_closed"
	for _, sub := range p.Doc.Subsections() {
		questions := sub.Questions()
		firstScale := -1
		for idx, q := range questions {
			if q.Type() == survey.TypeScale {
				firstScale = idx
				break
			}
		}
		if firstScale < 0 {
			continue
		}
		for idx, q := range questions[:firstScale] {
			if q.Type() == survey.TypeOpenEnded && containsKeyword(q.Text(), diagnosticKeywords...) {
				p.warn(id, name, q.ID(), sub.ID(),
					fmt.Sprintf("Open-ended diagnostic at position %d appears before scale ratings at position %d", idx+1, firstScale+1))
			}
		}
	}
}
