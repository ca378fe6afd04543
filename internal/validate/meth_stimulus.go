package validate

import (
	"fmt"
	"sort"
	"strings"

	"surveyforge/internal/survey"
)

var vanWestendorpOrder = []string{"too_cheap", "bargain", "expensive", "too_expensive"}

func vanWestendorpType(text string) string {
	switch {
	case containsKeyword(text, "too cheap", "so inexpensive", "question its quality", "question the quality"):
		return "too_cheap"
	case containsKeyword(text, "bargain", "great value", "good value"):
		return "bargain"
	case containsKeyword(text, "too expensive", "would not consider", "not consider buying"):
		return "too_expensive"
	case containsKeyword(text, "expensive", "getting expensive", "but still worth", "still worth considering"):
		return "expensive"
	}
	return ""
}

type priceQuestion struct {
	index     int
	question  survey.Question
	priceType string
}

func checkVanWestendorp(p *Pass) {
	const id, name = "METH_001", "van_westendorp"
	groups := map[string][]priceQuestion{}
	var order []string
	found := map[string]bool{}
	for _, sub := range p.Doc.Subsections() {
		for idx, q := range sub.Questions() {
			priceType := vanWestendorpType(q.Text())
			if priceType == "" {
				continue
			}
			if _, seen := groups[sub.ID()]; !seen {
				order = append(order, sub.ID())
			}
			groups[sub.ID()] = append(groups[sub.ID()], priceQuestion{index: idx, question: q, priceType: priceType})
			found[priceType] = true
		}
	}
	if len(found) == 0 {
		return
	}
	var missing []string
	for _, t := range vanWestendorpOrder {
		if !found[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		p.fail(id, name, "", survey.SectionMain,
			fmt.Sprintf("Van Westendorp incomplete: missing %s price point(s)", strings.Join(missing, ", ")))
		return
	}
	if len(order) > 1 {
		p.warn(id, name, "", survey.SectionMain,
			fmt.Sprintf("Van Westendorp questions split across %d subsections (should be in same subsection)", len(order)))
	}

	subsByID := map[string]survey.Subsection{}
	for _, sub := range p.Doc.Subsections() {
		if _, ok := subsByID[sub.ID()]; !ok {
			subsByID[sub.ID()] = sub
		}
	}
	for _, subID := range order {
		group := groups[subID]
		if len(group) < 4 {
			continue
		}
		current := make([]string, len(group))
		for i, pq := range group {
			current[i] = pq.priceType
		}
		if !equalStrings(current, vanWestendorpOrder) && len(group) == len(vanWestendorpOrder) && distinctTypes(group) {
			reorderPriceQuestions(subsByID[subID], group)
			p.fix(id, name, "", subID,
				fmt.Sprintf("Van Westendorp questions out of order (was %s)", quoteList(current)),
				"Reordered to: too_cheap → bargain → expensive → too_expensive")
		}
		for _, pq := range group {
			if qtype := pq.question.Type(); qtype != survey.TypeOpenEnded {
				p.warn(id, name, pq.question.ID(), subID,
					fmt.Sprintf("Van Westendorp '%s' question should be open_ended for price entry (found %s)", pq.priceType, qtype))
			}
		}
	}

	if !(strings.Contains(p.flowText(), "price") && strings.Contains(p.flowText(), "validation")) && !priceRuleDefined(p) {
		p.warn(id, name, "", survey.SectionFlow,
			"Van Westendorp price ordering validation not specified in routing rules; fieldwork platform must enforce Too Cheap < Bargain < Expensive < Too Expensive")
	}
}

func priceRuleDefined(p *Pass) bool {
	for _, rule := range p.Doc.RoutingRules() {
		condition := survey.Str(rule, "condition")
		if containsSubstring(condition, "price") && strings.ContainsAny(condition, "<>") {
			return true
		}
	}
	return false
}

func distinctTypes(group []priceQuestion) bool {
	seen := map[string]bool{}
	for _, pq := range group {
		if seen[pq.priceType] {
			return false
		}
		seen[pq.priceType] = true
	}
	return true
}

// reorderPriceQuestions puts the four price questions in canonical order,
// starting at the position of the earliest one.
func reorderPriceQuestions(sub survey.Subsection, group []priceQuestion) {
	questions := sub.Questions()
	isPrice := map[int]bool{}
	byType := map[string]survey.Question{}
	first := group[0].index
	for _, pq := range group {
		isPrice[pq.index] = true
		byType[pq.priceType] = pq.question
		if pq.index < first {
			first = pq.index
		}
	}
	rest := make([]any, 0, len(questions))
	for i, q := range questions {
		if !isPrice[i] {
			rest = append(rest, map[string]any(q))
		}
	}
	out := make([]any, 0, len(questions))
	out = append(out, rest[:first]...)
	for _, t := range vanWestendorpOrder {
		out = append(out, map[string]any(byType[t]))
	}
	out = append(out, rest[first:]...)
	sub["questions"] = out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// hasRotation reports whether FLOW mentions randomised stimulus order.
func (p *Pass) hasRotation(flowTerms ...string) bool {
	flow := p.flowText()
	for _, term := range flowTerms {
		if strings.Contains(flow, term) {
			return true
		}
	}
	return p.ruleMentions("action", "rotation", "random")
}

var conceptArtefactTypes = map[string]bool{"concept": true, "product_description": true, "product_concept": true}

func checkConceptTest(p *Pass) {
	const id, name = "METH_002", "concept_test"
	var concepts []map[string]any
	for _, a := range p.Doc.Artefacts() {
		if conceptArtefactTypes[strings.ToLower(survey.Str(a, "artefact_type"))] {
			concepts = append(concepts, a)
		}
	}
	if len(concepts) == 0 {
		return
	}
	usage := map[string]int{}
	var conceptIDs []string
	for _, a := range concepts {
		artefactID := survey.Str(a, "artefact_id")
		if _, dup := usage[artefactID]; !dup {
			conceptIDs = append(conceptIDs, artefactID)
		}
		usage[artefactID] = 0
	}
	evalSubs := p.evaluationSubsections()
	for _, sub := range evalSubs {
		for _, q := range sub.Questions() {
			if q.Type() != survey.TypeStimulus {
				continue
			}
			if _, ok := usage[survey.Str(q, "displays_artefact")]; ok {
				usage[survey.Str(q, "displays_artefact")]++
			}
		}
	}
	if len(evalSubs) != len(concepts) {
		p.fail(id, name, "", survey.SectionMain,
			fmt.Sprintf("Concept subsection count (%d) does not match concept artefact count (%d)", len(evalSubs), len(concepts)))
	}
	for _, artefactID := range conceptIDs {
		switch n := usage[artefactID]; {
		case n == 0:
			p.fail(id, name, "", survey.SectionStudyMetadata,
				fmt.Sprintf("Artefact '%s' has no corresponding stimulus_display question", artefactID))
		case n > 1:
			p.warn(id, name, "", survey.SectionMain,
				fmt.Sprintf("Artefact '%s' referenced by %d stimulus_display questions (typically should be 1)", artefactID, n))
		}
	}
	p.subsectionConsistency(id, name, "Concept", evalSubs)

	if len(concepts) >= 2 && !p.hasRotation("rotation", "randomiz", "random", "order bias") {
		p.warn(id, name, "", survey.SectionFlow,
			"Multiple concepts detected but no rotation/randomisation mentioned in FLOW; concept order should be randomized to control for order bias")
	}
	if len(concepts) > 4 {
		p.warn(id, name, "", survey.SectionStudyMetadata,
			fmt.Sprintf("Sequential monadic designs typically test a maximum of 4 concepts (found %d). Consider monadic design with separate cells.", len(concepts)))
	}
	comparative := []string{
		"prefer overall", "which concept", "which one do you prefer",
		"preferred concept", "most prefer", "rank", "ranking", "order of preference",
	}
	hasComparative := false
	for _, sub := range p.Doc.Subsections() {
		if subsectionHasPattern(sub, comparative) {
			hasComparative = true
			break
		}
	}
	if len(concepts) >= 2 && !hasComparative {
		p.warn(id, name, "", survey.SectionMain,
			"Multiple concepts tested but no comparative preference question found (expected question asking 'which concept do you prefer overall?')")
	}
}

func checkConjoint(p *Pass) {
	const id, name = "METH_003", "conjoint"
	design := p.Brief.StudyDesign.AttributeTesting
	if !design.Defined {
		p.warn(id, name, "", "brief", "Conjoint skill selected but study_design.attribute_testing not defined in brief")
		return
	}
	attrs := design.Attributes
	if len(attrs) < 4 || len(attrs) > 8 {
		p.warn(id, name, "", "brief", fmt.Sprintf("Conjoint typically uses 4-8 attributes (found %d)", len(attrs)))
	}
	hasPrice := false
	for _, attr := range attrs {
		if containsSubstring(attr, "price") {
			hasPrice = true
			break
		}
	}
	if !hasPrice {
		p.warn(id, name, "", "brief", "Conjoint analysis typically includes price as an attribute")
	}
	for _, attr := range attrs {
		levels := design.Levels[attr]
		switch {
		case len(levels) < 2:
			p.warn(id, name, "", "brief",
				fmt.Sprintf("Attribute '%s' has fewer than 2 levels (found %d)", attr, len(levels)))
		case len(levels) > 7:
			p.warn(id, name, "", "brief",
				fmt.Sprintf("Attribute '%s' has more than 7 levels (found %d) and may increase cognitive load", attr, len(levels)))
		}
	}
	hasNone := false
	for _, ref := range p.Doc.Questions() {
		texts := append([]string{ref.Question.Text()}, ref.Question.Options()...)
		for _, text := range texts {
			if containsSubstring(text, "none of these", "none of the above") {
				hasNone = true
			}
		}
	}
	if !hasNone {
		p.warn(id, name, "", survey.SectionMain, "Conjoint analysis typically includes a 'none of these' option in choice tasks")
	}
	if method := p.Brief.PrimaryMethodology; method != "conjoint" {
		p.warn(id, name, "", "brief",
			fmt.Sprintf("Conjoint skill selected but primary_methodology is '%s' (should be 'conjoint')", method))
	}
}

func checkMaxDiff(p *Pass) {
	const id, name = "METH_004", "maxdiff"
	var tasks []survey.Question
	for _, sub := range p.Doc.Subsections() {
		for _, q := range sub.Questions() {
			text := strings.ToLower(q.Text())
			if (strings.Contains(text, "most") && strings.Contains(text, "least")) ||
				(strings.Contains(text, "best") && strings.Contains(text, "worst")) {
				tasks = append(tasks, q)
			}
		}
	}
	if len(tasks) == 0 {
		return
	}
	for _, q := range tasks {
		if n := len(q.Options()); n < 4 || n > 5 {
			p.warn(id, name, q.ID(), survey.SectionMain,
				fmt.Sprintf("MaxDiff task has %d items (optimal is 4-5 items per task)", n))
		}
	}
	if len(tasks) < 8 || len(tasks) > 12 {
		p.warn(id, name, "", survey.SectionMain, fmt.Sprintf("MaxDiff typically uses 8-12 tasks (found %d)", len(tasks)))
	}
	if method := p.Brief.PrimaryMethodology; method != "maxdiff" {
		p.warn(id, name, "", "brief",
			fmt.Sprintf("MaxDiff skill selected but primary_methodology is '%s' (should be 'maxdiff')", method))
	}
}

// checkNPSCSAT covers NPS endpoints and follow-ups plus CSAT scale length.
// The 11-option requirement itself is enforced for every survey by CORE_008.
func checkNPSCSAT(p *Pass) {
	const id, name = "METH_005", "nps_csat"
	found := false
	for _, sub := range p.Doc.Subsections() {
		questions := sub.Questions()
		for idx, q := range questions {
			text := strings.ToLower(q.Text())
			if isNPS(text) {
				found = true
				if options := q.Options(); len(options) == 11 {
					first, last := strings.ToLower(options[0]), strings.ToLower(options[10])
					zeroStart := strings.Contains(first, "0") || strings.Contains(first, "not at all")
					tenEnd := strings.Contains(last, "10") || strings.Contains(last, "extremely")
					if !zeroStart || !tenEnd {
						p.warn(id, name, q.ID(), sub.ID(),
							"NPS scale should have endpoints '0 - Not at all likely' and '10 - Extremely likely'")
					}
				}
				if !hasWhyFollowUp(questions, idx) {
					p.warn(id, name, q.ID(), sub.ID(),
						"NPS question should be followed by open-ended question asking 'why' or 'reason for score'")
				}
			}
			if (strings.Contains(text, "how satisfied") || strings.Contains(text, "satisfaction")) && q.Type() == survey.TypeScale {
				found = true
				if n := len(q.Options()); n != 5 {
					p.warn(id, name, q.ID(), sub.ID(),
						fmt.Sprintf("CSAT questions typically use 5-point satisfaction scale (found %d options)", n))
				}
			}
		}
	}
	if !found {
		return
	}
	for _, q := range p.Doc.SectionQuestions(survey.SectionDemographics) {
		text := strings.ToLower(q.Text())
		if (strings.Contains(text, "recommend") && strings.Contains(text, "friend")) || strings.Contains(text, "satisfied") {
			p.warn(id, name, q.ID(), survey.SectionDemographics,
				"NPS/CSAT questions should appear before demographics section, not within it")
		}
	}
}

// hasWhyFollowUp looks at the two questions after idx for an open-ended reason probe.
func hasWhyFollowUp(questions []survey.Question, idx int) bool {
	for i := idx + 1; i < len(questions) && i <= idx+2; i++ {
		next := questions[i]
		if next.Type() == survey.TypeOpenEnded && containsSubstring(next.Text(), "why", "reason") {
			return true
		}
	}
	return false
}

func checkAdTesting(p *Pass) {
	const id, name = "METH_006", "ad_testing"
	p.requireStimulusPerArtefact(id, name, "Ad")
	evalSubs := p.evaluationSubsections()
	p.requireMeasure(id, name, evalSubs, []string{"notice", "attention", "stand out", "catch your eye"},
		"Ad evaluation subsection missing notice/attention measure (expected question with 'notice', 'attention', 'stand out', or 'catch your eye')")
	p.requireMeasure(id, name, evalSubs, []string{"main message", "communicate", "takeaway", "trying to say"},
		"Ad evaluation subsection missing communication/message takeaway measure (expected question with 'main message', 'communicate', 'takeaway', or 'trying to say')")
	p.requireMeasure(id, name, evalSubs, []string{"which brand", "brand", "advertiser", "who is"},
		"Ad evaluation subsection missing brand linkage measure (expected question with 'which brand', 'brand', 'advertiser', or 'who is')")
	p.subsectionConsistency(id, name, "Evaluation", evalSubs)

	if len(p.Doc.Artefacts()) > 1 {
		flow := p.flowText()
		assigned := containsSubstring(flow, "rotation", "random", "cell", "group", "assign") ||
			p.ruleMentions("action", "rotation", "random") ||
			p.ruleMentions("condition", "cell", "group")
		if !assigned {
			p.warn(id, name, "", survey.SectionFlow,
				"Multiple ads detected but no rotation/cell assignment mentioned in FLOW; consider randomization to control for order bias or between-group design")
		}
	}
}

func checkMessageTest(p *Pass) {
	const id, name = "METH_007", "message_test"
	p.requireStimulusPerArtefact(id, name, "Message")
	evalSubs := p.evaluationSubsections()
	comprehension := []string{"main message", "key takeaway", "communicate", "in your own words"}
	persuasion := []string{"how likely", "purchase intent", "how persuasive", "how convincing"}
	for _, sub := range evalSubs {
		questions := sub.Questions()
		c, s := firstIndex(questions, comprehension), firstIndex(questions, persuasion)
		switch {
		case c < 0:
			p.warn(id, name, "", sub.ID(),
				"Message evaluation subsection missing comprehension measure (expected question with 'main message', 'key takeaway', 'communicate', or 'in your own words')")
		case s >= 0 && c > s:
			p.warn(id, name, "", sub.ID(),
				"Comprehension measure appears after persuasion measure; comprehension should be measured before persuasion")
		}
	}
	p.requireMeasure(id, name, evalSubs, []string{"relevant", "applies to me", "for someone like me"},
		"Message evaluation subsection missing relevance measure (expected question with 'relevant', 'applies to me', or 'for someone like me')")
	p.subsectionConsistency(id, name, "Evaluation", evalSubs)
	if n := len(p.Doc.Artefacts()); n > 5 {
		p.warn(id, name, "", survey.SectionStudyMetadata,
			fmt.Sprintf("Sequential monadic message tests typically evaluate a maximum of 5 messages (found %d). Consider reducing the number of messages or using monadic design with separate cells.", n))
	}
}

func checkClaimsTesting(p *Pass) {
	const id, name = "METH_008", "claims_testing"
	p.requireStimulusPerArtefact(id, name, "Claim")
	evalSubs := p.evaluationSubsections()
	believability := []string{"believable", "believe", "credible", "credibility"}
	clarity := []string{"clear", "clarity", "understand", "easy to understand"}
	p.requireMeasure(id, name, evalSubs, believability,
		"Claim evaluation subsection missing believability measure (expected question with 'believable', 'believe', 'credible', or 'credibility')")
	p.requireMeasure(id, name, evalSubs, clarity,
		"Claim evaluation subsection missing clarity/comprehension measure (expected question with 'clear', 'clarity', 'understand', or 'easy to understand')")
	for _, sub := range evalSubs {
		questions := sub.Questions()
		c, b := firstIndex(questions, clarity), firstIndex(questions, believability)
		if c >= 0 && b >= 0 && c > b {
			p.warn(id, name, "", sub.ID(),
				"Clarity measure appears after believability measure; clarity/comprehension should be measured before believability")
		}
	}
	for _, sub := range p.Doc.Subsections() {
		stimuli := 0
		for _, q := range sub.Questions() {
			if q.Type() == survey.TypeStimulus {
				stimuli++
			}
		}
		if stimuli > 1 {
			p.warn(id, name, "", sub.ID(),
				"Multiple stimulus_display questions in one subsection; claims should be tested in isolation (one claim per subsection)")
		}
	}
}

func checkNamingTesting(p *Pass) {
	const id, name = "METH_009", "naming_testing"
	names := 0
	for _, a := range p.Doc.Artefacts() {
		if containsSubstring(survey.Str(a, "artefact_type"), "name") {
			names++
		}
	}
	if names < 5 {
		p.warn(id, name, "", survey.SectionStudyMetadata,
			fmt.Sprintf("Naming tests typically evaluate a minimum of 5 name candidates (found %d name artefacts). Consider testing more alternatives.", names))
	}
	evalSubs := p.evaluationSubsections()
	p.requireMeasure(id, name, evalSubs, []string{"easy to say", "pronounce", "pronunciation", "say out loud"},
		"Name evaluation subsection missing ease of pronunciation measure (expected question with 'easy to say', 'pronounce', 'pronunciation', or 'say out loud')")
	p.requireMeasure(id, name, evalSubs, []string{"remember", "memorable", "recall", "stick in your mind"},
		"Name evaluation subsection missing memorability measure (expected question with 'remember', 'memorable', 'recall', or 'stick in your mind')")
	p.requireMeasure(id, name, evalSubs, []string{"fit", "appropriate", "suitable", "right for"},
		"Name evaluation subsection missing brand fit/appropriateness measure (expected question with 'fit', 'appropriate', 'suitable', or 'right for')")

	comparative := []string{"prefer", "rank", "compare", "which name"}
	firstComparative, lastIndividual := -1, -1
	for idx, sub := range p.Doc.Subsections() {
		if firstComparative < 0 && subsectionHasPattern(sub, comparative) {
			firstComparative = idx
		}
		if hasStimulus(sub) {
			lastIndividual = idx
		}
	}
	if firstComparative >= 0 && lastIndividual >= 0 && firstComparative < lastIndividual {
		p.warn(id, name, "", survey.SectionMain,
			"Comparative name questions appear before all individual name evaluations; names should be evaluated in isolation before any comparison")
	}
}

func checkPackTesting(p *Pass) {
	const id, name = "METH_010", "pack_testing"
	p.requireStimulusPerArtefact(id, name, "Pack")
	standout := []string{"stand out", "notice", "shelf", "eye-catching", "visible"}
	detail := []string{"appeal", "like", "rate", "purchase intent", "communicate"}
	standoutIdx, detailIdx := -1, -1
	for idx, sub := range p.Doc.Subsections() {
		if standoutIdx < 0 && subsectionHasPattern(sub, standout) {
			standoutIdx = idx
		}
		if detailIdx < 0 && subsectionHasPattern(sub, detail) {
			detailIdx = idx
		}
	}
	if standoutIdx < 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Pack testing missing shelf standout/visibility measure (expected question with 'stand out', 'notice', 'shelf', 'eye-catching', or 'visible')")
	}
	if standoutIdx >= 0 && detailIdx >= 0 && standoutIdx > detailIdx {
		p.warn(id, name, "", survey.SectionMain,
			"Standout/visibility measure appears after detailed evaluation questions; standout should be measured before detailed pack evaluation")
	}
	evalSubs := p.evaluationSubsections()
	p.requireMeasure(id, name, evalSubs, []string{"communicate", "tells you", "expect", "what does this"},
		"Pack evaluation subsection missing communication measure (expected question with 'communicate', 'tells you', 'expect', or 'what does this')")
	p.subsectionConsistency(id, name, "Evaluation", evalSubs)
}
