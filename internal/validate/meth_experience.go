package validate

import (
	"fmt"
	"sort"
	"strings"

	"surveyforge/internal/survey"
)

func checkCustomerLifecycle(p *Pass) {
	const id, name = "METH_017", "customer_lifecycle"
	stages := p.findMatching(
		[]string{"how long have you been", "when did you first", "current status", "which best describes your relationship", "how would you describe"},
		[]string{"customer", "subscriber", "member"},
	)
	if len(stages) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"Customer lifecycle study requires a stage classification question (expected question with lifecycle stage language + customer/subscriber/member reference)")
	}
	for _, m := range stages {
		q := m.ref.Question
		if containsKeyword(q.Text(), "how do you feel about", "how satisfied are you with your status") {
			p.warn(id, name, m.id(), m.section(),
				"Lifecycle stage should be defined by behaviour (tenure, recency, frequency) not attitudes")
		}
		if q.Type() == survey.TypeOpenEnded {
			p.warn(id, name, m.id(), m.section(),
				"Lifecycle stage classification should use categorical options (single_choice), not open-ended")
		}
	}
	if len(p.findMatching([]string{"what made you", "why did you", "what caused", "what led you to", "reason for"}, nil)) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Customer lifecycle studies should include transition trigger questions to understand what causes movement between stages (expected question with 'what made you', 'why did you', 'what caused', etc.)")
	}
	if len(stages) == 0 {
		return
	}
	stageID := stages[0].id()
	if stageID == "" || p.stageRouted(stageID) {
		return
	}
	p.warn(id, name, "", survey.SectionFlow,
		"Consider routing respondents to stage-specific question paths based on lifecycle classification")
}

// stageRouted reports whether any rule or MAIN_SECTION display logic
// references qid.
func (p *Pass) stageRouted(qid string) bool {
	for _, rule := range p.Doc.RoutingRules() {
		if strings.Contains(survey.Str(rule, "condition"), qid) || strings.Contains(survey.Str(rule, "action"), qid) {
			return true
		}
	}
	for _, sub := range p.Doc.Subsections() {
		for _, q := range sub.Questions() {
			if strings.Contains(q.DisplayLogic(), qid) {
				return true
			}
		}
	}
	return false
}

var churnKeywords = []string{
	"cancelled", "canceled", "stopped using", "no longer", "ended your subscription",
	"left", "discontinued", "leave", "leaving", "switch", "switched",
}

func checkChurnRetention(p *Pass) {
	const id, name = "METH_018", "churn_retention"
	churn := p.findMatching(churnKeywords, nil)
	if len(churn) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"Churn/retention study requires a churn classification question that identifies churn status behaviourally (expected question with 'cancelled', 'stopped using', 'no longer', 'ended your subscription', 'left', or 'discontinued')")
	} else {
		intent := []string{"thinking about leaving", "considering cancelling", "how likely are you to leave"}
		intentOnly, behavioural := false, false
		for _, m := range churn {
			if containsKeyword(m.ref.Question.Text(), intent...) {
				intentOnly = true
			} else {
				behavioural = true
			}
		}
		if intentOnly && !behavioural {
			p.warn(id, name, churn[0].id(), churn[0].section(),
				"Churn should be classified by actual behaviour (cancelled, stopped), not intent. Intent questions are useful but should supplement, not replace, behavioural classification")
		}
	}
	reasons := []string{
		"main reason", "primary reason", "most important reason", "single most important reason",
		"biggest factor", "biggest reason", "key reason", "why did you", "what led you", "what caused you",
	}
	if len(p.findMatching(reasons, churnKeywords)) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"Churn/retention study must include a primary reason question (expected question with 'main reason', 'primary reason', 'most important reason', 'biggest factor', or 'why did you' combined with churn-related keywords)")
	}
	if len(p.findMatching([]string{"your decision", "chose to", "involuntary", "forced", "contract ended", "price increase"}, nil)) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Churn/retention study should distinguish voluntary vs involuntary churn (expected question with 'your decision', 'chose to', 'involuntary', 'forced', 'contract ended', or 'price increase')")
	}
	if len(p.findMatching([]string{"when did you", "how long ago", "how recently"}, churnKeywords)) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Churn recency is important for data quality; recent churners provide more reliable recall (expected question with 'when did you', 'how long ago', or 'how recently' + churn reference)")
	}
	if len(p.findMatching([]string{"how long were you", "how long had you been", "tenure", "length of time"}, nil)) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Churn/retention study should capture lifecycle stage or tenure before churn (expected question with 'how long were you', 'how long had you been', 'tenure', or 'length of time')")
	}
}

func checkEmployeeEngagement(p *Pass) {
	const id, name = "METH_019", "employee_engagement"
	if len(p.findMatching([]string{"engaged", "motivated", "committed", "proud to work", "recommend as a place to work"}, nil)) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"Employee engagement survey requires an overall engagement measure (expected question with 'engaged', 'motivated', 'committed', 'proud to work', or 'recommend as a place to work')")
	}
	if len(p.findMatching([]string{"manager", "supervisor", "leadership", "direct report", "team leader"}, nil)) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Employee engagement survey should include manager/leadership effectiveness measures (expected question with 'manager', 'supervisor', 'leadership', 'direct report', or 'team leader')")
	}
	if len(p.findMatching([]string{"growth", "development", "career", "learning", "opportunity", "advance"}, nil)) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Employee engagement survey should include growth/development measures (expected question with 'growth', 'development', 'career', 'learning', 'opportunity', or 'advance')")
	}
	identifying := len(p.findSubstring("department", "team")) > 0 &&
		len(p.findSubstring("role", "title", "position")) > 0 &&
		len(p.findSubstring("tenure", "how long have you", "years at")) > 0 &&
		len(p.findSubstring("location", "office", "site")) > 0
	if identifying {
		p.warn(id, name, "", survey.SectionDemographics,
			"Combination of department, role, tenure, and location questions may compromise respondent anonymity in small teams. Consider reducing identifying questions or aggregating categories")
	}
	if counts := p.scalePointCounts(); len(counts) > 1 && !allEqual(counts) {
		p.warn(id, name, "", survey.SectionMain,
			fmt.Sprintf("Employee engagement surveys should use consistent scale format throughout for reliable index construction (found mixed scales: %s)", formatInts(distinctSorted(counts))))
	}
	for _, m := range p.findSubstring("your name", "employee id", "employee number", "email address", "staff number") {
		p.fail(id, name, m.id(), m.section(),
			"Employee engagement surveys must not collect names, employee IDs, or email addresses to protect anonymity")
	}
}

func distinctSorted(values []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

func checkVoCPrograms(p *Pass) {
	const id, name = "METH_020", "voc_programs"
	if len(p.findMatching([]string{"recent experience", "recent interaction", "contact us", "visit", "transaction", "purchase", "service call", "support"}, nil)) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"VoC survey requires a touchpoint anchoring question that ties feedback to a specific interaction (expected question with 'recent experience', 'recent interaction', 'visit', 'transaction', or 'support')")
	}
	if len(p.findMatching([]string{"how satisfied", "satisfaction", "how easy", "effort", "how would you rate"}, nil)) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"VoC survey requires a core experience metric (expected question with 'how satisfied', 'satisfaction', 'how easy', 'effort', or 'how would you rate')")
	}
	openFeedback := false
	for _, m := range p.findSubstring("tell us more", "additional comments", "feedback", "describe", "explain", "anything else") {
		if m.ref.Question.Type() == survey.TypeOpenEnded {
			openFeedback = true
			break
		}
	}
	if !openFeedback {
		p.warn(id, name, "", survey.SectionMain,
			"VoC surveys should include an open-ended question to capture verbatim feedback (expected open_ended question with 'tell us more', 'additional comments', 'feedback', 'describe', or 'explain')")
	}
	if len(p.findMatching([]string{"issue", "problem", "resolved", "resolution", "complaint"}, nil)) > 0 &&
		len(p.findMatching([]string{"resolved", "fixed", "addressed", "handled"}, nil)) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Service-related VoC surveys should measure issue resolution (expected question with 'resolved', 'fixed', 'addressed', or 'handled')")
	}
	if n := p.countQuestions(); n > 15 {
		p.warn(id, name, "", survey.SectionMain,
			fmt.Sprintf("VoC surveys should be concise (typically under 15 questions) to maximise response rates for post-interaction feedback (current: %d questions)", n))
	}
}

var susKeywords = []string{
	"use this system frequently", "unnecessarily complex", "easy to use", "need technical support",
	"well integrated", "inconsistency", "learn to use quickly", "cumbersome", "confident using", "learn a lot before",
}

func checkUsabilityTesting(p *Pass) {
	const id, name = "METH_021", "usability_testing"
	tasks := p.findMatching([]string{"able to complete", "successfully", "task", "find what you were looking for", "accomplish"}, nil)
	if len(tasks) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"Usability study requires task completion measures (expected question with 'able to complete', 'successfully', 'task', 'find what you were looking for', or 'accomplish')")
	}
	ease := p.findMatching([]string{"easy to use", "ease of use", "user-friendly", "intuitive", "difficult", "how easy"}, nil)
	if len(ease) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Usability study should include an ease of use measure (expected question with 'easy to use', 'ease of use', 'user-friendly', 'intuitive', or 'how easy')")
	}
	var sus []match
	for _, m := range p.findMatching(susKeywords, nil) {
		if m.ref.Section == survey.SectionMain {
			sus = append(sus, m)
		}
	}
	if len(sus) >= 3 {
		if len(sus) != 10 {
			p.fail(id, name, "", sus[0].section(),
				fmt.Sprintf("System Usability Scale requires exactly 10 standardised items; do not modify, add, or remove items (found %d SUS items)", len(sus)))
		}
		for _, m := range sus {
			if len(m.ref.Question.Options()) != 5 {
				p.fail(id, name, m.id(), m.section(),
					"System Usability Scale questions must use exactly 5-point agreement scale ('Strongly disagree' to 'Strongly agree')")
				break
			}
		}
	}
	if len(tasks) > 0 && len(ease) > 0 && tasks[0].position() > ease[0].position() {
		p.warn(id, name, tasks[0].id(), tasks[0].section(),
			"Task completion questions should appear before overall satisfaction/ease measures to avoid biasing task completion")
	}
}

func checkBrandPositioning(p *Pass) {
	const id, name = "METH_022", "brand_positioning"
	p.requireStimulusPerArtefact(id, name, "Positioning")
	clarity := []string{"clear", "clarity", "understand", "easy to understand", "what this brand stands for"}
	preference := []string{"prefer", "purchase intent", "would you buy"}
	evalSubs := p.evaluationSubsections()
	p.requireMeasure(id, name, evalSubs, clarity,
		"Positioning evaluation subsection missing clarity measure (expected question with 'clear', 'clarity', 'understand', or 'what this brand stands for')")
	p.requireMeasure(id, name, evalSubs, []string{"relevant", "applies to me", "matters to me", "for someone like me", "meaningful"},
		"Positioning evaluation subsection missing relevance measure (expected question with 'relevant', 'applies to me', 'matters to me', or 'meaningful')")
	p.requireMeasure(id, name, evalSubs, []string{"different", "unique", "stand out", "distinctive", "sets apart"},
		"Positioning evaluation subsection missing differentiation measure (expected question with 'different', 'unique', 'stand out', or 'distinctive')")
	p.requireMeasure(id, name, evalSubs, []string{"believable", "credible", "trust", "deliver on", "live up to"},
		"Positioning evaluation subsection missing credibility measure (expected question with 'believable', 'credible', 'trust', or 'deliver on')")
	primaryIntent := false
	for _, sub := range evalSubs {
		questions := sub.Questions()
		c, pref := firstIndex(questions, clarity), firstIndex(questions, preference)
		if c >= 0 && pref >= 0 && pref < c {
			p.warn(id, name, questions[pref].ID(), sub.ID(),
				fmt.Sprintf("Preference/intent question at position %d appears before clarity at position %d", pref+1, c+1))
		}
		for _, q := range questions {
			if q.Type() == survey.TypeStimulus {
				continue
			}
			if containsKeyword(q.Text(), preference...) {
				primaryIntent = true
			}
			break
		}
	}
	if primaryIntent {
		p.warn(id, name, "", survey.SectionMain,
			"Positioning research should prioritise clarity, relevance, and differentiation over purchase intent as primary metrics")
	}
	p.subsectionConsistency(id, name, "Evaluation", evalSubs)
}

func checkBrandArchitecture(p *Pass) {
	const id, name = "METH_023", "brand_architecture"
	artefacts := p.Doc.Artefacts()
	for _, a := range artefacts {
		artefactType := strings.ToLower(survey.Str(a, "artefact_type"))
		if artefactType == "" || containsSubstring(artefactType, "architecture", "system", "portfolio", "hierarchy") {
			continue
		}
		if containsSubstring(artefactType, "name", "logo") {
			p.warn(id, name, "", survey.SectionStudyMetadata,
				fmt.Sprintf("Artefact '%s' appears to be an isolated element ('%s'). Brand architecture studies should test complete systems, not isolated names or logos",
					survey.Str(a, "artefact_id"), artefactType))
		}
	}
	clarity := []string{"clear", "understand", "relationship between", "how these brands relate", "makes sense"}
	preference := []string{"prefer", "prefer overall", "which do you prefer"}
	for _, sub := range p.evaluationSubsections() {
		questions := sub.Questions()
		c, pref := firstIndex(questions, clarity), firstIndex(questions, preference)
		if c < 0 {
			p.warn(id, name, "", sub.ID(),
				"Brand architecture subsection missing clarity measure (expected question with 'clear', 'understand', 'relationship between', or 'makes sense')")
		} else if pref >= 0 && pref < c {
			p.warn(id, name, questions[pref].ID(), sub.ID(),
				fmt.Sprintf("Preference question at position %d appears before clarity at position %d", pref+1, c+1))
		}
		openEnded := false
		for _, q := range questions {
			if q.Type() == survey.TypeOpenEnded {
				openEnded = true
				break
			}
		}
		if !openEnded {
			p.warn(id, name, "", sub.ID(),
				"Brand architecture subsection missing open-ended diagnostics (expected at least one open_ended question)")
		}
	}
	if len(artefacts) > 1 && !p.hasRotation("rotation", "randomiz", "random", "monadic") {
		p.warn(id, name, "", survey.SectionFlow,
			fmt.Sprintf("Multiple brand architectures (%d) require monadic or sequential monadic design with rotation to avoid order bias", len(artefacts)))
	}
}

func checkGoToMarket(p *Pass) {
	const id, name = "METH_024", "go_to_market_validation"
	required := []struct {
		keywords []string
		message  string
	}{
		{
			[]string{"value", "benefit", "what would you gain", "why would you", "worth"},
			"Go-to-market validation should measure perceived value proposition (expected question with 'value', 'benefit', 'worth', or 'why would you')",
		},
		{
			[]string{"alternative", "competitor", "instead of", "currently use", "compared to", "switch from"},
			"Go-to-market validation should measure the competitive context (expected question with 'alternative', 'competitor', 'instead of', 'currently use', or 'compared to')",
		},
		{
			[]string{"concern", "hesitation", "prevent", "barrier", "worry", "hold you back", "reason not to"},
			"Go-to-market validation should identify adoption barriers (expected question with 'concern', 'hesitation', 'barrier', 'worry', or 'hold you back')",
		},
		{
			[]string{"for someone like me", "relevant to", "right for me", "intended for", "target"},
			"Go-to-market validation should confirm target audience fit (expected question with 'for someone like me', 'relevant to', 'right for me', or 'intended for')",
		},
	}
	for _, r := range required {
		if len(p.findMatching(r.keywords, nil)) == 0 {
			p.warn(id, name, "", survey.SectionMain, r.message)
		}
	}
	pricing := p.findMatching([]string{"price", "pay", "cost", "expensive", "afford"}, nil)
	if len(pricing) > 0 && !p.Brief.HasSkill("pricing-study") {
		p.warn(id, name, pricing[0].id(), pricing[0].section(),
			"Survey includes pricing questions but pricing-study skill was not selected; consider adding it for proper pricing methodology")
	}
}

func checkSegmentation(p *Pass) {
	const id, name = "METH_025", "segmentation"
	matrices, scales := 0, 0
	battery := -1
	for _, sub := range p.Doc.Subsections() {
		for _, q := range sub.Questions() {
			switch q.Type() {
			case survey.TypeScale:
				scales++
			case survey.TypeMatrix:
				matrices++
				if rows := len(q.Rows()); rows >= 8 && agreementColumns(q.Columns()) && rows > battery {
					battery = rows
				}
			}
		}
	}
	switch {
	case battery < 0:
		p.warn(id, name, "", survey.SectionMain,
			"Segmentation typically requires a substantial attitudinal battery (15-30 statements) for stable segment extraction")
	case battery < 15:
		p.warn(id, name, "", survey.SectionMain,
			fmt.Sprintf("Attitudinal battery has fewer than 15 statements (%d found); segments may be unstable. Consider expanding to 15-30 statements", battery))
	}
	behavioural := len(p.findMatching([]string{"how often", "how many", "frequency", "purchase", "use"}, nil)) > 0
	if !behavioural {
		p.warn(id, name, "", survey.SectionMain,
			"Segmentation based solely on attitudes without behavioural validation produces less actionable segments")
	}
	if n := len(p.Doc.SectionQuestions(survey.SectionDemographics)); n < 3 {
		p.warn(id, name, "", survey.SectionDemographics,
			fmt.Sprintf("Segmentation requires demographics for segment profiling (found %d questions, recommend at least 3)", n))
	}
	if sample := p.Brief.SampleSize(); sample > 0 && sample < 800 {
		p.warn(id, name, "", survey.SectionStudyMetadata,
			fmt.Sprintf("Segmentation studies typically require n=800+ for stable segment solutions. Current sample (%d) may be insufficient", sample))
	}
	if matrices == 1 && scales == 0 && !behavioural {
		p.warn(id, name, "", survey.SectionMain,
			"Segmentation should draw on multiple variable types (attitudes, behaviours, needs) for robust solutions")
	}
}

func agreementColumns(columns []string) bool {
	agree, disagree := false, false
	for _, c := range columns {
		lower := strings.ToLower(c)
		if strings.Contains(lower, "disagree") {
			disagree = true
		} else if strings.Contains(lower, "agree") {
			agree = true
		}
	}
	return agree && disagree
}
