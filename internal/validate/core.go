package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"surveyforge/internal/survey"
)

// coreChecks run on every survey, in this order.
var coreChecks = []Check{
	{ID: "CORE_001", Name: "stimulus_display_has_artefact", Run: checkStimulusArtefacts},
	{ID: "CORE_002", Name: "question_type_field_compatibility", Run: checkTypeFieldCompatibility},
	{ID: "CORE_003", Name: "options_array_validity", Run: checkOptionsArrays},
	{ID: "CORE_004", Name: "question_id_uniqueness", Run: checkQuestionIDUniqueness},
	{ID: "CORE_005", Name: "screener_prefer_not_to_say", Run: checkPreferNotToSay},
	{ID: "CORE_006", Name: "demographics_placement", Run: checkDemographicsPlacement},
	{ID: "CORE_007", Name: "routing_rule_references", Run: checkRoutingReferences},
	{ID: "CORE_008", Name: "scale_format", Run: checkScaleFormat},
	{ID: "CORE_009", Name: "quota_alignment", Run: checkQuotaAlignment},
	{ID: "CORE_010", Name: "matrix_consistency", Run: checkMatrixConsistency},
	{ID: "CORE_011", Name: "ranking_format", Run: checkRankingFormat},
}

func checkStimulusArtefacts(p *Pass) {
	const id, name = "CORE_001", "stimulus_display_has_artefact"
	artefacts := p.Doc.Artefacts()
	known := map[string]bool{}
	for _, a := range artefacts {
		if artefactID := survey.Str(a, "artefact_id"); artefactID != "" {
			known[artefactID] = true
		}
	}
	refs := p.Doc.Questions()

	if len(artefacts) == 0 {
		for _, ref := range refs {
			if ref.Question.Type() == survey.TypeStimulus {
				p.fail(id, name, ref.Question.ID(), location(ref),
					"stimulus_display question found but no artefacts defined in STUDY_METADATA")
			}
		}
		return
	}

	available := make([]string, 0, len(known))
	for artefactID := range known {
		available = append(available, artefactID)
	}
	sort.Strings(available)

	for _, ref := range refs {
		q := ref.Question
		if q.Type() != survey.TypeStimulus {
			continue
		}
		if current := survey.Str(q, "displays_artefact"); current != "" && known[current] {
			continue
		}
		if ref.Section != survey.SectionMain {
			p.fail(id, name, q.ID(), ref.Section,
				fmt.Sprintf("stimulus_display question missing or invalid displays_artefact (available: %s)", quoteList(available)))
			continue
		}
		// Sub-section N shows artefact N.
		idx := ref.SubsectionIndex
		inferred := ""
		if idx < len(artefacts) {
			inferred = survey.Str(artefacts[idx], "artefact_id")
		}
		if inferred == "" {
			p.fail(id, name, q.ID(), ref.SubsectionID,
				fmt.Sprintf("stimulus_display question missing displays_artefact and cannot infer (subsection %d has no corresponding artefact)", idx+1))
			continue
		}
		q["displays_artefact"] = inferred
		p.fix(id, name, q.ID(), ref.SubsectionID,
			fmt.Sprintf("stimulus_display question missing displays_artefact, inferred %s from subsection position", inferred),
			fmt.Sprintf("Set displays_artefact to %s", inferred))
	}
}

func checkTypeFieldCompatibility(p *Pass) {
	const id, name = "CORE_002", "question_type_field_compatibility"
	for _, ref := range p.Doc.Questions() {
		q := ref.Question
		qid, section := q.ID(), location(ref)
		options := q.Options()
		hasRowsOrCols := q["rows"] != nil || q["columns"] != nil
		clearRowsCols := func() {
			if q["rows"] != nil {
				q["rows"] = nil
			}
			if q["columns"] != nil {
				q["columns"] = nil
			}
		}

		switch qtype := q.Type(); qtype {
		case survey.TypeStimulus:
			if len(options) > 0 {
				q["options"] = []any{}
				p.fix(id, name, qid, section, "stimulus_display must have empty options", "Cleared options array")
			}
			if hasRowsOrCols {
				clearRowsCols()
				p.fix(id, name, qid, section, "stimulus_display must have null rows/columns", "Set rows and columns to null")
			}
		case survey.TypeMatrix:
			if len(q.Rows()) == 0 || len(q.Columns()) == 0 {
				p.fail(id, name, qid, section, "matrix questions must have non-empty rows AND columns")
			}
			if len(options) > 0 {
				q["options"] = []any{}
				p.fix(id, name, qid, section, "matrix questions must have empty options", "Cleared options array")
			}
		case survey.TypeOpenEnded:
			if len(options) > 0 {
				q["options"] = []any{}
				p.fix(id, name, qid, section, "open_ended questions must have empty options", "Cleared options array")
			}
		case survey.TypeSingleChoice, survey.TypeMultipleChoice:
			if len(options) < 2 {
				p.fail(id, name, qid, section,
					fmt.Sprintf("%s questions must have at least 2 options (found %d)", qtype, len(options)))
			}
		case survey.TypeScale:
			if len(options) < 3 {
				p.fail(id, name, qid, section,
					fmt.Sprintf("scale questions must have at least 3 options (found %d)", len(options)))
			}
		case survey.TypeRanking:
			if len(options) < 2 {
				p.fail(id, name, qid, section,
					fmt.Sprintf("ranking questions must have at least 2 options to rank (found %d)", len(options)))
			}
			if len(options) > 7 {
				p.warn(id, name, qid, section,
					fmt.Sprintf("ranking questions with more than 7 items (%d found) create high cognitive load - consider reducing or using rated importance instead", len(options)))
			}
			if hasRowsOrCols {
				clearRowsCols()
				p.fix(id, name, qid, section, "ranking questions must have null rows/columns", "Set rows and columns to null")
			}
		}
	}
}

func checkOptionsArrays(p *Pass) {
	const id, name = "CORE_003", "options_array_validity"
	for _, ref := range p.Doc.Questions() {
		q := ref.Question
		options := q.Options()
		if len(options) == 0 {
			continue
		}
		seen := map[string]bool{}
		cleaned := make([]string, 0, len(options))
		for _, opt := range options {
			if strings.TrimSpace(opt) == "" || seen[opt] {
				continue
			}
			seen[opt] = true
			cleaned = append(cleaned, opt)
		}
		if len(cleaned) == len(options) {
			continue
		}
		q.SetOptions(cleaned)
		p.fix(id, name, q.ID(), location(ref),
			fmt.Sprintf("Removed %d empty or duplicate option(s)", len(options)-len(cleaned)),
			fmt.Sprintf("Cleaned options from %d to %d items", len(options), len(cleaned)))
	}
}

func checkQuestionIDUniqueness(p *Pass) {
	const id, name = "CORE_004", "question_id_uniqueness"
	firstSeen := map[string]string{}
	for _, ref := range p.Doc.Questions() {
		qid := ref.Question.ID()
		if qid == "" {
			continue
		}
		section := location(ref)
		if first, dup := firstSeen[qid]; dup {
			p.fail(id, name, qid, section,
				fmt.Sprintf("Duplicate question_id found in %s and %s", first, section))
			continue
		}
		firstSeen[qid] = section
	}
}

var preferNotToSay = regexp.MustCompile(`(?i)prefer\s+not\s+to\s+say`)

func checkPreferNotToSay(p *Pass) {
	const id, name = "CORE_005", "screener_prefer_not_to_say"
	for _, q := range p.Doc.SectionQuestions(survey.SectionScreener) {
		options := q.Options()
		if len(options) == 0 {
			continue
		}
		found := false
		for _, opt := range options {
			if preferNotToSay.MatchString(opt) {
				found = true
				break
			}
		}
		if found {
			continue
		}
		q.SetOptions(append(options, "Prefer not to say"))
		p.fix(id, name, q.ID(), survey.SectionScreener,
			"Missing 'Prefer not to say' option", "Appended 'Prefer not to say' to options")
	}
}

func checkDemographicsPlacement(p *Pass) {
	const id, name = "CORE_006", "demographics_placement"
	if !p.Doc.Has(survey.SectionDemographics) {
		p.warn(id, name, "", "", "DEMOGRAPHICS section missing from survey")
		return
	}
	if !p.Doc.Has(survey.SectionMain) {
		return
	}
	if p.Doc.KeyIndex(survey.SectionDemographics) < p.Doc.KeyIndex(survey.SectionMain) {
		p.fail(id, name, "", survey.SectionDemographics,
			"DEMOGRAPHICS section appears before MAIN_SECTION (should be last section before FLOW)")
	}
}

var (
	conditionQuestionRef = regexp.MustCompile(`\b[A-Z]+_Q\d+\b|\bMS\d+_Q\d+\b`)
	actionSectionRef     = regexp.MustCompile(`\b(?:MS\d+|SCREENER|DEMOGRAPHICS|MAIN_SECTION)\b`)
)

func checkRoutingReferences(p *Pass) {
	const id, name = "CORE_007", "routing_rule_references"
	questionIDs := p.Doc.QuestionIDs()
	subsections := map[string]bool{}
	for _, sub := range p.Doc.Subsections() {
		subsections[sub.ID()] = true
	}
	for _, rule := range p.Doc.RoutingRules() {
		ruleID := survey.Str(rule, "rule_id")
		for _, qid := range uniqueMatches(conditionQuestionRef, survey.Str(rule, "condition")) {
			if !questionIDs[qid] {
				p.fail(id, name, "", survey.SectionFlow,
					fmt.Sprintf("Routing rule %s references non-existent question %s", ruleID, qid))
			}
		}
		for _, ref := range uniqueMatches(actionSectionRef, survey.Str(rule, "action")) {
			if strings.HasPrefix(ref, "MS") && !subsections[ref] {
				p.fail(id, name, "", survey.SectionFlow,
					fmt.Sprintf("Routing rule %s references non-existent subsection %s", ruleID, ref))
			}
		}
	}
}

func uniqueMatches(re *regexp.Regexp, text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range re.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

var (
	negativeEndpointWords = []string{"not", "no", "never", "unlikely", "disagree", "poor", "low"}
	positiveEndpointWords = []string{"very", "extremely", "always", "likely", "agree", "excellent", "high"}
)

// isNPS matches the net promoter question wording.
func isNPS(text string) bool {
	return containsSubstring(text, "recommend") &&
		containsSubstring(text, "friend", "colleague", "someone you know")
}

func checkScaleFormat(p *Pass) {
	const id, name = "CORE_008", "scale_format"
	for _, ref := range p.Doc.Questions() {
		q := ref.Question
		qid, section := q.ID(), location(ref)
		options := q.Options()
		nps := isNPS(q.Text()) && survey.OptionsRequired(q.Type())
		if nps && len(options) != 11 {
			p.fail(id, name, qid, section,
				fmt.Sprintf("NPS question must use a 0-10 scale with exactly 11 options (found %d)", len(options)))
		}
		if q.Type() != survey.TypeScale || len(options) == 0 {
			continue
		}
		if !nps && len(options) != 5 && len(options) != 7 {
			p.warn(id, name, qid, section,
				fmt.Sprintf("Scale has %d points (standard practice is 5 or 7)", len(options)))
		}
		if len(options) < 2 {
			continue
		}
		first, last := options[0], options[len(options)-1]
		if !containsSubstring(first, negativeEndpointWords...) || !containsSubstring(last, positiveEndpointWords...) {
			p.warn(id, name, qid, section,
				fmt.Sprintf("Scale endpoints may not be balanced ('%s' → '%s')", first, last))
		}
	}
}

// regionPrefixes maps regional quota attributes to the prefix surveys put
// on their group labels.
var regionPrefixes = map[string]string{
	"australia_regions":   "Australia",
	"new_zealand_regions": "New Zealand",
}

func checkQuotaAlignment(p *Pass) {
	const id, name = "CORE_009", "quota_alignment"
	quotas := p.Brief.QuotaByAttribute()

	briefGroups := map[string]survey.QuotaGroup{}
	for _, quota := range p.Brief.Quotas {
		prefix := regionPrefixes[quota.Attribute]
		for _, g := range quota.Groups {
			briefGroups[g.Label] = g
			if prefix == "" {
				continue
			}
			if strings.Contains(g.Label, "Other") {
				briefGroups[prefix+" - Other"] = g
			} else {
				briefGroups[prefix+" - "+g.Label] = g
			}
		}
	}

	covered := map[string]bool{}
	for _, q := range p.Doc.SectionQuestions(survey.SectionScreener) {
		attr := survey.Str(q, "quota_attribute")
		if attr == "" {
			continue
		}
		covered[attr] = true
		qid := q.ID()

		if groups, ok := survey.AsArray(q["quota_groups"]); ok && len(groups) > 0 {
			if _, isLabel := groups[0].(string); isLabel {
				normalized := make([]any, 0, len(groups))
				for _, item := range groups {
					label := survey.Text(item)
					g, known := briefGroups[label]
					if !known {
						normalized = append(normalized, map[string]any{"label": label})
						continue
					}
					normalized = append(normalized, map[string]any{
						"label": label,
						"min":   intValue(g.Min),
						"max":   intValue(g.Max),
					})
				}
				q["quota_groups"] = normalized
				p.fix(id, name, qid, survey.SectionScreener,
					"Normalized quota_groups from string array to object array",
					fmt.Sprintf("Transformed %d group(s) to object format with label/min/max", len(normalized)))
			}
		}

		quota, inBrief := quotas[attr]
		if !inBrief {
			p.warn(id, name, qid, survey.SectionScreener,
				fmt.Sprintf("Quota attribute '%s' not found in brief quotas", attr))
			continue
		}
		current := survey.Str(q, "quota_type")
		if quota.Type != "" && current != quota.Type {
			q["quota_type"] = quota.Type
			p.fix(id, name, qid, survey.SectionScreener,
				fmt.Sprintf("Quota type mismatch: survey has '%s', brief has '%s'", current, quota.Type),
				fmt.Sprintf("Updated quota_type to '%s'", quota.Type))
		}
	}

	reported := map[string]bool{}
	for _, quota := range p.Brief.Quotas {
		if covered[quota.Attribute] || reported[quota.Attribute] {
			continue
		}
		reported[quota.Attribute] = true
		p.warn(id, name, "", survey.SectionScreener,
			fmt.Sprintf("Brief quota '%s' has no corresponding screener question with quota_attribute", quota.Attribute))
	}
}

func intValue(v *int) any {
	if v == nil {
		return nil
	}
	return float64(*v)
}

func checkMatrixConsistency(p *Pass) {
	const id, name = "CORE_010", "matrix_consistency"
	for _, ref := range p.Doc.Questions() {
		q := ref.Question
		if q.Type() != survey.TypeMatrix {
			continue
		}
		qid, section := q.ID(), location(ref)
		rows, cols := q.Rows(), q.Columns()
		if len(rows) < 2 {
			p.fail(id, name, qid, section, fmt.Sprintf("Matrix must have at least 2 rows (found %d)", len(rows)))
		}
		if len(cols) < 2 {
			p.fail(id, name, qid, section, fmt.Sprintf("Matrix must have at least 2 columns (found %d)", len(cols)))
			continue
		}
		minWords, maxWords := -1, 0
		for _, col := range cols {
			n := len(strings.Fields(col))
			if minWords < 0 || n < minWords {
				minWords = n
			}
			if n > maxWords {
				maxWords = n
			}
		}
		if minWords == 1 && maxWords >= 4 {
			p.warn(id, name, qid, section,
				fmt.Sprintf("Matrix column labels have inconsistent length (range: %d-%d words)", minWords, maxWords))
		}
	}
}

var (
	rankingInstructionWords = []string{"rank", "ranking", "order", "prioritize", "arrange"}
	rankingScalePhrases     = []string{
		"from 1", "1 to", "most to least", "least to most",
		"highest to lowest", "drag", "arrange", "most valuable", "least valuable",
	}
)

func checkRankingFormat(p *Pass) {
	const id, name = "CORE_011", "ranking_format"
	for _, ref := range p.Doc.Questions() {
		q := ref.Question
		if q.Type() != survey.TypeRanking {
			continue
		}
		qid, section := q.ID(), location(ref)
		text := q.Text()
		if !containsSubstring(text, rankingInstructionWords...) {
			p.warn(id, name, qid, section,
				"Ranking question text should include clear instruction (e.g., 'Please rank...', 'Place in order...')")
		}
		if !containsSubstring(text, rankingScalePhrases...) {
			p.warn(id, name, qid, section,
				"Ranking question should specify scale (e.g., 'rank from 1 to 4' or 'most to least valuable')")
		}
		options := q.Options()
		for i, opt := range options {
			if n := len(strings.Fields(opt)); n > 20 {
				p.warn(id, name, qid, section,
					fmt.Sprintf("Ranking option %d is very long (%d words) - consider shortening for easier comparison", i+1, n))
			}
		}
		if len(options) > 5 {
			p.advise(id, name, qid, section,
				fmt.Sprintf("Ranking %d items may create respondent fatigue. Consider: (a) reducing items, (b) using partial ranking ('select and rank top 3'), or (c) using rated importance scale instead", len(options)), "")
		}
	}
}

// quoteList renders ids as ['A', 'B'].
func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
