package validate

import (
	"strings"

	"surveyforge/internal/survey"
)

var (
	awarenessKeywords     = []string{"aware of", "heard of", "familiar with", "know of"}
	considerationKeywords = []string{"consider", "would you consider", "preference", "prefer"}
	purchaseKeywords      = []string{"used", "purchased", "bought", "tried"}
)

func firstPosition(matches []match) int {
	if len(matches) == 0 {
		return -1
	}
	pos := matches[0].position()
	for _, m := range matches[1:] {
		if m.position() < pos {
			pos = m.position()
		}
	}
	return pos
}

func checkBrandTracking(p *Pass) {
	const id, name = "METH_011", "brand_tracking"
	awareness := p.findMatching(awarenessKeywords, nil)
	consideration := p.findMatching(considerationKeywords, nil)
	usage := p.findMatching(purchaseKeywords, nil)
	if len(awareness) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"Brand tracking must include an awareness measure (expected question with 'aware of', 'heard of', 'familiar with', or 'know of')")
	}
	if len(consideration) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Brand tracking should include a consideration/preference measure (expected question with 'consider', 'would you consider', 'preference', or 'prefer')")
	}
	if len(usage) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Brand tracking should include a usage/purchase measure (expected question with 'used', 'purchased', 'bought', or 'tried')")
	}
	if len(awareness) > 0 && len(consideration) > 0 && firstPosition(consideration) < firstPosition(awareness) {
		p.warn(id, name, consideration[0].id(), consideration[0].section(),
			"Awareness funnel out of order: consideration question appears before awareness question; awareness should be measured first")
	}
	if len(consideration) > 0 && len(usage) > 0 && firstPosition(usage) < firstPosition(consideration) {
		p.warn(id, name, usage[0].id(), usage[0].section(),
			"Awareness funnel out of order: usage question appears before consideration question; consideration should be measured before usage")
	}
	tracking := containsSubstring(p.Brief.Description, "tracking") || p.Brief.PrimaryMethodology == "tracking"
	if !tracking {
		return
	}
	for _, sub := range p.Doc.Subsections() {
		if hasStimulus(sub) {
			p.warn(id, name, "", survey.SectionMain,
				"Brand tracking surveys should measure natural brand health without stimulus exposure; stimulus_display questions found")
			return
		}
	}
}

// brandSets splits the competitive brand questions into all, primary-brand
// and all-brands views.
type brandSets struct {
	all       []match
	primary   []match
	secondary []match
}

func (p *Pass) brandQuestions() brandSets {
	var sets brandSets
	for _, ref := range p.Doc.Questions() {
		q := ref.Question
		qtype := q.Type()
		if qtype != survey.TypeSingleChoice && qtype != survey.TypeMultipleChoice {
			continue
		}
		text := q.Text()
		if len(q.Options()) >= 5 &&
			containsSubstring(text, "brand", "which of the following") &&
			containsSubstring(text, "purchase", "use", "buy") {
			sets.all = append(sets.all, match{ref: ref})
		}
		if qtype == survey.TypeSingleChoice && containsSubstring(text, "main brand", "most often") {
			sets.primary = append(sets.primary, match{ref: ref})
		}
		if qtype == survey.TypeMultipleChoice && containsSubstring(text, "also use", "all brands") {
			sets.secondary = append(sets.secondary, match{ref: ref})
		}
	}
	return sets
}

func (p *Pass) timeBoundedUsage() []match {
	return p.findMatching(timeReferenceKeywords, usageKeywords)
}

func checkMarketShareTracking(p *Pass) {
	const id, name = "METH_012", "market_share_tracking"
	timeUsage := p.timeBoundedUsage()
	if len(timeUsage) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"Market share tracking requires a time-bounded category usage question (expected question with time reference like 'past month' + usage verb like 'purchase', 'use', 'buy')")
	}
	brands := p.brandQuestions()
	if len(brands.all) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Market share tracking should include a competitive set question listing specific brands (expected single/multiple choice question with 5+ brand options)")
	}
	switch {
	case len(brands.primary) > 0 && len(brands.secondary) == 0:
		p.warn(id, name, "", survey.SectionMain,
			"Primary brand question found but no secondary/all brands question; market share tracking should distinguish primary vs multi-brand usage")
	case len(brands.secondary) > 0 && len(brands.primary) == 0:
		p.warn(id, name, "", survey.SectionMain,
			"Multi-brand usage question found but no primary brand question; market share tracking should distinguish primary vs secondary usage")
	}
	for _, m := range timeUsage {
		if m.ref.Question.Type() == survey.TypeOpenEnded {
			p.warn(id, name, m.id(), m.section(),
				"Market share questions should use categorical options for consistent measurement, not open-ended")
		}
	}
}

var benchmarkingMethodologies = map[string]bool{
	"market_share":              true,
	"market_share_benchmarking": true,
	"benchmarking":              true,
}

func checkMarketShareBenchmarking(p *Pass) {
	const id, name = "METH_013", "market_share_benchmarking"
	if len(p.timeBoundedUsage()) == 0 {
		msg := "Market share benchmarking requires a time-bounded category usage question (expected question with time reference + usage verb)"
		if benchmarkingMethodologies[p.Brief.PrimaryMethodology] {
			p.fail(id, name, "", survey.SectionMain, msg)
		} else {
			p.warn(id, name, "", survey.SectionMain, msg)
		}
	}
	brands := p.brandQuestions()
	if len(brands.all) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Market share benchmarking should include a competitive set question listing specific brands")
	}
	if (len(brands.primary) > 0) != (len(brands.secondary) > 0) {
		p.warn(id, name, "", survey.SectionMain,
			"Market share benchmarking should distinguish primary vs secondary brand usage")
	}
	if len(p.findSubstring("how often", "how many times", "frequency", "how much")) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Market share benchmarking should include a volume/frequency measure for share-of-requirements calculation (expected question with 'how often', 'how many times', 'frequency', or 'how much')")
	}
	for _, m := range brands.all {
		hasOther := false
		for _, option := range m.ref.Question.Options() {
			if containsSubstring(option, "other") {
				hasOther = true
				break
			}
		}
		if !hasOther {
			p.warn(id, name, m.id(), m.section(),
				"Competitive brand list should include an 'Other brand' or 'Other' option to capture long-tail")
		}
	}
}

func checkPenetrationFrequencyLoyalty(p *Pass) {
	const id, name = "METH_014", "penetration_frequency_loyalty"
	penetration := append(p.findMatching([]string{"ever"}, usageKeywords), p.timeBoundedUsage()...)
	if len(penetration) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"Penetration/frequency/loyalty analysis requires a penetration question (expected question with 'ever' + usage verb OR time-bounded usage question)")
	}
	frequency := withTimeReference(p.findMatching([]string{"how often", "how many times", "how frequently"}, nil))
	if len(frequency) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"Penetration/frequency/loyalty analysis requires a frequency question with explicit time bounds (expected question with 'how often', 'how many times', or 'how frequently' + time reference)")
	}
	for _, m := range frequency {
		if m.ref.Question.Type() == survey.TypeOpenEnded {
			p.warn(id, name, m.id(), m.section(),
				"Frequency questions should use categorical options for consistent measurement, not open-ended")
		}
	}
	loyalty := p.findMatching([]string{"only brand", "sole", "exclusive", "always buy", "most often"}, nil)
	if len(loyalty) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Penetration/frequency/loyalty analysis should include a loyalty measure (expected question with 'only brand', 'sole', 'exclusive', 'always buy', or 'most often')")
	}
	if len(penetration) > 0 && len(frequency) > 0 && firstPosition(frequency) < firstPosition(penetration) {
		p.warn(id, name, frequency[0].id(), frequency[0].section(),
			"Behavioral funnel out of order: frequency question appears before penetration question; penetration should be measured first")
	}
	if len(frequency) > 0 && len(loyalty) > 0 && firstPosition(loyalty) < firstPosition(frequency) {
		p.warn(id, name, loyalty[0].id(), loyalty[0].section(),
			"Behavioral funnel out of order: loyalty question appears before frequency question; frequency should be measured before loyalty")
	}
}

func checkAwarenessTrialUsage(p *Pass) {
	const id, name = "METH_015", "awareness_trial_usage"
	awareness := p.findMatching(awarenessKeywords, nil)
	trial := p.findMatching([]string{"ever tried", "ever used", "first time", "tried for the first time"}, nil)
	usage := p.findMatching([]string{"currently use", "use regularly", "used in the past", "how often do you use"}, nil)
	if len(awareness) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"ATU funnel missing awareness stage (expected question with 'aware of', 'heard of', 'familiar with', or 'know of')")
	}
	if len(trial) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"ATU funnel missing trial stage (expected question with 'ever tried', 'ever used', 'first time', or 'tried for the first time')")
	}
	if len(usage) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"ATU funnel missing usage stage (expected question with 'currently use', 'use regularly', 'used in the past', or 'how often do you use')")
	}
	if len(awareness) > 0 && len(trial) > 0 && firstPosition(trial) < firstPosition(awareness) {
		p.warn(id, name, trial[0].id(), trial[0].section(),
			"ATU funnel out of order: trial question appears before awareness question; awareness should be measured first")
	}
	if len(trial) > 0 && len(usage) > 0 && firstPosition(usage) < firstPosition(trial) {
		p.warn(id, name, usage[0].id(), usage[0].section(),
			"ATU funnel out of order: usage question appears before trial question; trial should be measured before usage")
	}
	for _, m := range trial {
		if containsKeyword(m.ref.Question.Text(), "would you try", "likely to try", "consider trying") {
			p.warn(id, name, m.id(), m.section(), "Trial should measure actual past behaviour, not future intent")
		}
	}
	for _, m := range usage {
		if !containsSubstring(m.ref.Question.Text(), timeReferenceKeywords...) {
			p.warn(id, name, m.id(), m.section(),
				"Usage question missing time frame; results will be ambiguous without a defined period")
		}
	}
	if len(awareness) > 0 && len(trial) > 0 &&
		trial[0].ref.Question.Type() == survey.TypeMultipleChoice &&
		awareness[0].ref.Question.Type() == survey.TypeSingleChoice {
		p.warn(id, name, awareness[0].id(), awareness[0].section(),
			"Awareness and trial question types should support consistent funnel logic; if trial allows multiple brands, awareness should too")
	}
}

func checkMarketSizing(p *Pass) {
	const id, name = "METH_016", "market_sizing"
	incidence := p.findSubstring("do you currently", "have you ever", "in the past")
	if len(incidence) == 0 {
		p.fail(id, name, "", survey.SectionScreener,
			"Market sizing requires an incidence/qualification question to establish target market proportion (expected question with 'do you currently', 'have you ever', or 'in the past')")
	}
	frequency := withTimeReference(p.findMatching([]string{"how often", "how many times", "how much do you spend", "how many do you"}, nil))
	if len(frequency) == 0 {
		p.fail(id, name, "", survey.SectionMain,
			"Market sizing requires a frequency/volume question to estimate per-capita consumption (expected question with 'how often', 'how many times', or 'how much' + time reference)")
	}
	briefText := strings.ToLower(p.Brief.Objective + " " + p.Brief.Description)
	if containsSubstring(briefText, "market size", "revenue", "value") &&
		len(p.findMatching([]string{"how much", "spend", "pay", "price"}, nil)) == 0 {
		p.warn(id, name, "", survey.SectionMain,
			"Brief mentions market size/revenue/value but survey lacks a price/spend question for value estimation")
	}
	if len(incidence)+len(frequency) < 3 {
		p.warn(id, name, "", survey.SectionMain,
			"Market sizing typically requires multiple funnel questions (incidence, frequency, value) for reliable estimates")
	}
	for _, m := range incidence {
		if m.ref.Question.Type() == survey.TypeOpenEnded {
			p.warn(id, name, m.id(), m.section(),
				"Incidence questions should use categorical options for consistent measurement, not open-ended")
		}
	}
}
