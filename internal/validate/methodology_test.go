package validate

import (
	"fmt"
	"testing"

	"surveyforge/internal/survey"
)

var (
	sevenPoint = []string{"Not at all", "2", "3", "4", "5", "6", "Extremely"}
	agreement  = []string{"Strongly disagree", "Disagree", "Neutral", "Agree", "Strongly agree"}
)

func skill(name string) survey.Brief {
	return survey.Brief{Skills: []string{name}}
}

func appealing(id string) map[string]any {
	return question(id, survey.TypeScale, "How appealing is this?", fivePoint...)
}

func withArtefacts(arts []map[string]any, subs ...map[string]any) *survey.Document {
	return fixture(map[string]any{
		survey.SectionStudyMetadata: metadata(arts...),
		survey.SectionMain:          mainSection(subs...),
	})
}

func manyQuestions(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = question(fmt.Sprintf("MS1_Q%d", i+1), survey.TypeOpenEnded, fmt.Sprintf("Tell us more about item %d", i+1))
	}
	return out
}

func batteryRows(n int) []any {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = fmt.Sprintf("Statement %d", i+1)
	}
	return list(rows...)
}

func TestStimulusMethodologyChecks(t *testing.T) {
	const warn, fail = SeverityWarning, SeverityError
	twoConcepts := func() *survey.Document {
		return withArtefacts(artefactsOf("concept", "C1", "C2"), subsection("MS1", stimulus("MS1_Q1", "C1"), appealing("MS1_Q2")))
	}
	runCatalog(t, []catalogCase{
		{name: "concept count mismatch", brief: skill("concept-test"), checkID: "METH_002", severity: fail, section: survey.SectionMain,
			doc: twoConcepts(), message: "Concept subsection count (1) does not match concept artefact count (2)"},
		{name: "concept unused", brief: skill("concept-test"), checkID: "METH_002", severity: fail, section: survey.SectionStudyMetadata,
			doc: twoConcepts(), message: "Artefact 'C2' has no corresponding stimulus_display question"},
		{name: "concepts not rotated", brief: skill("concept-test"), checkID: "METH_002", severity: warn, section: survey.SectionFlow,
			doc: twoConcepts(), message: "Multiple concepts detected but no rotation"},
		{name: "no comparative question", brief: skill("concept-test"), checkID: "METH_002", severity: warn,
			doc: twoConcepts(), message: "Multiple concepts tested but no comparative preference question found"},
		{name: "concept shown twice", brief: skill("concept-test"), checkID: "METH_002", severity: warn,
			doc:     withArtefacts(artefactsOf("concept", "C1"), subsection("MS1", stimulus("MS1_Q1", "C1"), stimulus("MS1_Q2", "C1"))),
			message: "Artefact 'C1' referenced by 2 stimulus_display questions"},
		{name: "five concepts", brief: skill("concept-test"), checkID: "METH_002", severity: warn,
			doc:     withArtefacts(artefactsOf("concept", "C1", "C2", "C3", "C4", "C5")),
			message: "typically test a maximum of 4 concepts (found 5)"},
		{name: "concept subsections differ", brief: skill("concept-test"), checkID: "METH_002", severity: warn,
			doc: withArtefacts(artefactsOf("concept", "C1", "C2"),
				subsection("MS1", stimulus("MS1_Q1", "C1"), appealing("MS1_Q2")),
				subsection("MS2", stimulus("MS2_Q1", "C2"))),
			message: "Concept subsections have inconsistent question counts: [2, 1]"},
		{name: "concepts rotated and compared", brief: skill("concept-test"), checkID: "METH_002", severity: warn, absent: true,
			doc: fixture(map[string]any{
				survey.SectionStudyMetadata: metadata(artefactsOf("concept", "C1", "C2")...),
				survey.SectionMain: mainSection(
					subsection("MS1", stimulus("MS1_Q1", "C1")),
					subsection("MS2", stimulus("MS2_Q1", "C2")),
					subsection("MS3", question("MS3_Q1", survey.TypeSingleChoice, "Which concept do you prefer overall?", "C1", "C2"))),
				survey.SectionFlow: flow("Concepts shown in random rotation"),
			}),
			message: "Multiple concepts"},

		{name: "maxdiff task size", brief: skill("maxdiff"), checkID: "METH_004", severity: warn, qid: "MS1_Q1",
			doc:     mainOnly(question("MS1_Q1", survey.TypeSingleChoice, "Which is most and least important?", "A", "B", "C")),
			message: "MaxDiff task has 3 items (optimal is 4-5 items per task)"},
		{name: "maxdiff task count", brief: skill("maxdiff"), checkID: "METH_004", severity: warn,
			doc:     mainOnly(question("MS1_Q1", survey.TypeSingleChoice, "Which is best and worst?", "A", "B", "C", "D")),
			message: "MaxDiff typically uses 8-12 tasks (found 1)"},
		{name: "maxdiff methodology", brief: skill("maxdiff"), checkID: "METH_004", severity: warn,
			doc:     mainOnly(question("MS1_Q1", survey.TypeSingleChoice, "Which is best and worst?", "A", "B", "C", "D")),
			message: "primary_methodology is '' (should be 'maxdiff')"},
		{name: "maxdiff methodology set", brief: survey.Brief{Skills: []string{"maxdiff"}, PrimaryMethodology: "maxdiff"},
			checkID: "METH_004", severity: warn, absent: true,
			doc:     mainOnly(question("MS1_Q1", survey.TypeSingleChoice, "Which is best and worst?", "A", "B", "C", "D")),
			message: "primary_methodology"},

		{name: "ad without stimulus", brief: skill("ad-testing"), checkID: "METH_006", severity: fail, section: survey.SectionStudyMetadata,
			doc:     withArtefacts(artefactsOf("ad", "AD1", "AD2"), subsection("MS1", stimulus("MS1_Q1", "AD1"), question("MS1_Q2", survey.TypeSingleChoice, "Did this ad catch your eye?", "Yes", "No"))),
			message: "Ad artefact 'AD2' has no corresponding stimulus_display question"},
		{name: "ad missing takeaway", brief: skill("ad-testing"), checkID: "METH_006", severity: warn, section: "MS1",
			doc:     withArtefacts(artefactsOf("ad", "AD1", "AD2"), subsection("MS1", stimulus("MS1_Q1", "AD1"), question("MS1_Q2", survey.TypeSingleChoice, "Did this ad catch your eye?", "Yes", "No"))),
			message: "Ad evaluation subsection missing communication/message takeaway measure"},
		{name: "ad missing brand linkage", brief: skill("ad-testing"), checkID: "METH_006", severity: warn, section: "MS1",
			doc:     withArtefacts(artefactsOf("ad", "AD1", "AD2"), subsection("MS1", stimulus("MS1_Q1", "AD1"), question("MS1_Q2", survey.TypeSingleChoice, "Did this ad catch your eye?", "Yes", "No"))),
			message: "Ad evaluation subsection missing brand linkage measure"},
		{name: "ad attention present", brief: skill("ad-testing"), checkID: "METH_006", severity: warn, absent: true,
			doc:     withArtefacts(artefactsOf("ad", "AD1", "AD2"), subsection("MS1", stimulus("MS1_Q1", "AD1"), question("MS1_Q2", survey.TypeSingleChoice, "Did this ad catch your eye?", "Yes", "No"))),
			message: "missing notice/attention measure"},
		{name: "ads not rotated", brief: skill("ad-testing"), checkID: "METH_006", severity: warn, section: survey.SectionFlow,
			doc:     withArtefacts(artefactsOf("ad", "AD1", "AD2"), subsection("MS1", stimulus("MS1_Q1", "AD1"))),
			message: "Multiple ads detected but no rotation/cell assignment"},

		{name: "message comprehension late", brief: skill("message-test"), checkID: "METH_007", severity: warn, section: "MS1",
			doc: withArtefacts(artefactsOf("message", "M1"), subsection("MS1", stimulus("MS1_Q1", "M1"),
				question("MS1_Q2", survey.TypeScale, "How likely are you to buy this?", fivePoint...),
				question("MS1_Q3", survey.TypeOpenEnded, "In your own words, what is the main message?"))),
			message: "Comprehension measure appears after persuasion measure"},
		{name: "message without comprehension", brief: skill("message-test"), checkID: "METH_007", severity: warn, section: "MS1",
			doc:     withArtefacts(artefactsOf("message", "M1"), subsection("MS1", stimulus("MS1_Q1", "M1"), appealing("MS1_Q2"))),
			message: "Message evaluation subsection missing comprehension measure"},
		{name: "message without relevance", brief: skill("message-test"), checkID: "METH_007", severity: warn, section: "MS1",
			doc:     withArtefacts(artefactsOf("message", "M1"), subsection("MS1", stimulus("MS1_Q1", "M1"), appealing("MS1_Q2"))),
			message: "Message evaluation subsection missing relevance measure"},
		{name: "six messages", brief: skill("message-test"), checkID: "METH_007", severity: warn,
			doc:     withArtefacts(artefactsOf("message", "M1", "M2", "M3", "M4", "M5", "M6")),
			message: "maximum of 5 messages (found 6)"},

		{name: "claims share a subsection", brief: skill("claims-testing"), checkID: "METH_008", severity: warn, section: "MS1",
			doc: withArtefacts(artefactsOf("claim", "CL1", "CL2"), subsection("MS1", stimulus("MS1_Q1", "CL1"), stimulus("MS1_Q2", "CL2"),
				question("MS1_Q3", survey.TypeScale, "How believable is this claim?", fivePoint...),
				question("MS1_Q4", survey.TypeScale, "How clear is this claim?", fivePoint...))),
			message: "Multiple stimulus_display questions in one subsection"},
		{name: "claim clarity late", brief: skill("claims-testing"), checkID: "METH_008", severity: warn, section: "MS1",
			doc: withArtefacts(artefactsOf("claim", "CL1"), subsection("MS1", stimulus("MS1_Q1", "CL1"),
				question("MS1_Q2", survey.TypeScale, "How believable is this claim?", fivePoint...),
				question("MS1_Q3", survey.TypeScale, "How clear is this claim?", fivePoint...))),
			message: "Clarity measure appears after believability measure"},
		{name: "claim without believability", brief: skill("claims-testing"), checkID: "METH_008", severity: warn, section: "MS1",
			doc:     withArtefacts(artefactsOf("claim", "CL1"), subsection("MS1", stimulus("MS1_Q1", "CL1"))),
			message: "Claim evaluation subsection missing believability measure"},
		{name: "claim without stimulus", brief: skill("claims-testing"), checkID: "METH_008", severity: fail,
			doc:     withArtefacts(artefactsOf("claim", "CL1")),
			message: "Claim artefact 'CL1' has no corresponding stimulus_display question"},

		{name: "too few names", brief: skill("naming-testing"), checkID: "METH_009", severity: warn, section: survey.SectionStudyMetadata,
			doc:     withArtefacts(artefactsOf("name", "N1", "N2", "N3"), subsection("MS1", stimulus("MS1_Q1", "N1"), question("MS1_Q2", survey.TypeSingleChoice, "Is this name easy to say?", "Yes", "No"))),
			message: "minimum of 5 name candidates (found 3 name artefacts)"},
		{name: "name without memorability", brief: skill("naming-testing"), checkID: "METH_009", severity: warn, section: "MS1",
			doc:     withArtefacts(artefactsOf("name", "N1", "N2", "N3"), subsection("MS1", stimulus("MS1_Q1", "N1"), question("MS1_Q2", survey.TypeSingleChoice, "Is this name easy to say?", "Yes", "No"))),
			message: "Name evaluation subsection missing memorability measure"},
		{name: "names compared first", brief: skill("naming-testing"), checkID: "METH_009", severity: warn, section: survey.SectionMain,
			doc: withArtefacts(artefactsOf("name", "N1"),
				subsection("MS1", question("MS1_Q1", survey.TypeSingleChoice, "Which name do you prefer?", "A", "B")),
				subsection("MS2", stimulus("MS2_Q1", "N1"))),
			message: "Comparative name questions appear before all individual name evaluations"},

		{name: "pack without standout", brief: skill("pack-testing"), checkID: "METH_010", severity: warn, section: survey.SectionMain,
			doc:     withArtefacts(artefactsOf("pack", "P1"), subsection("MS1", stimulus("MS1_Q1", "P1"), appealing("MS1_Q2"))),
			message: "Pack testing missing shelf standout/visibility measure"},
		{name: "pack without communication", brief: skill("pack-testing"), checkID: "METH_010", severity: warn, section: "MS1",
			doc:     withArtefacts(artefactsOf("pack", "P1"), subsection("MS1", stimulus("MS1_Q1", "P1"), appealing("MS1_Q2"))),
			message: "Pack evaluation subsection missing communication measure"},
		{name: "pack standout late", brief: skill("pack-testing"), checkID: "METH_010", severity: warn,
			doc: withArtefacts(artefactsOf("pack", "P1"),
				subsection("MS1", question("MS1_Q1", survey.TypeSingleChoice, "Do you like this pack?", "Yes", "No")),
				subsection("MS2", stimulus("MS2_Q1", "P1"), question("MS2_Q2", survey.TypeSingleChoice, "Does it stand out on the shelf?", "Yes", "No"))),
			message: "Standout/visibility measure appears after detailed evaluation questions"},

		{name: "positioning without stimulus", brief: skill("brand-positioning"), checkID: "METH_022", severity: fail,
			doc: withArtefacts(artefactsOf("positioning", "POS1", "POS2"), subsection("MS1", stimulus("MS1_Q1", "POS1"),
				question("MS1_Q2", survey.TypeSingleChoice, "Would you buy this brand?", "Yes", "No"),
				question("MS1_Q3", survey.TypeSingleChoice, "Is this clear?", "Yes", "No"))),
			message: "Positioning artefact 'POS2' has no corresponding stimulus_display question"},
		{name: "positioning intent before clarity", brief: skill("brand-positioning"), checkID: "METH_022", severity: warn, qid: "MS1_Q2", section: "MS1",
			doc: withArtefacts(artefactsOf("positioning", "POS1"), subsection("MS1", stimulus("MS1_Q1", "POS1"),
				question("MS1_Q2", survey.TypeSingleChoice, "Would you buy this brand?", "Yes", "No"),
				question("MS1_Q3", survey.TypeSingleChoice, "Is this clear?", "Yes", "No"))),
			message: "Preference/intent question at position 2 appears before clarity at position 3"},
		{name: "positioning led by intent", brief: skill("brand-positioning"), checkID: "METH_022", severity: warn, section: survey.SectionMain,
			doc: withArtefacts(artefactsOf("positioning", "POS1"), subsection("MS1", stimulus("MS1_Q1", "POS1"),
				question("MS1_Q2", survey.TypeSingleChoice, "Would you buy this brand?", "Yes", "No"))),
			message: "Positioning research should prioritise clarity, relevance, and differentiation"},
		{name: "positioning without relevance", brief: skill("brand-positioning"), checkID: "METH_022", severity: warn, section: "MS1",
			doc:     withArtefacts(artefactsOf("positioning", "POS1"), subsection("MS1", stimulus("MS1_Q1", "POS1"), appealing("MS1_Q2"))),
			message: "Positioning evaluation subsection missing relevance measure"},

		{name: "architecture isolated logo", brief: skill("brand-architecture"), checkID: "METH_023", severity: warn, section: survey.SectionStudyMetadata,
			doc: withArtefacts([]map[string]any{artefact("BA1", "logo"), artefact("BA2", "architecture")},
				subsection("MS1", stimulus("MS1_Q1", "BA1"), appealing("MS1_Q2"))),
			message: "Artefact 'BA1' appears to be an isolated element ('logo')"},
		{name: "architecture without clarity", brief: skill("brand-architecture"), checkID: "METH_023", severity: warn, section: "MS1",
			doc:     withArtefacts(artefactsOf("architecture", "BA1"), subsection("MS1", stimulus("MS1_Q1", "BA1"), appealing("MS1_Q2"))),
			message: "Brand architecture subsection missing clarity measure"},
		{name: "architecture without open ends", brief: skill("brand-architecture"), checkID: "METH_023", severity: warn, section: "MS1",
			doc:     withArtefacts(artefactsOf("architecture", "BA1"), subsection("MS1", stimulus("MS1_Q1", "BA1"), appealing("MS1_Q2"))),
			message: "Brand architecture subsection missing open-ended diagnostics"},
		{name: "architectures not rotated", brief: skill("brand-architecture"), checkID: "METH_023", severity: warn, section: survey.SectionFlow,
			doc:     withArtefacts(artefactsOf("architecture", "BA1", "BA2")),
			message: "Multiple brand architectures (2) require monadic or sequential monadic design"},
	})
}

func TestMarketMethodologyChecks(t *testing.T) {
	const warn, fail = SeverityWarning, SeverityError
	bare := func() *survey.Document { return mainOnly(appealing("MS1_Q1")) }
	runCatalog(t, []catalogCase{
		{name: "share without usage", brief: skill("market-share-tracking"), checkID: "METH_012", severity: fail,
			doc: bare(), message: "Market share tracking requires a time-bounded category usage question"},
		{name: "share without brand list", brief: skill("market-share-tracking"), checkID: "METH_012", severity: warn,
			doc: bare(), message: "Market share tracking should include a competitive set question"},
		{name: "share usage open ended", brief: skill("market-share-tracking"), checkID: "METH_012", severity: warn, qid: "MS1_Q1",
			doc:     mainOnly(question("MS1_Q1", survey.TypeOpenEnded, "Which snacks did you buy in the past month?")),
			message: "Market share questions should use categorical options"},
		{name: "share primary only", brief: skill("market-share-tracking"), checkID: "METH_012", severity: warn,
			doc:     mainOnly(question("MS1_Q1", survey.TypeSingleChoice, "Which brand do you buy most often?", "A", "B")),
			message: "Primary brand question found but no secondary/all brands question"},

		{name: "benchmark usage required", brief: survey.Brief{Skills: []string{"market-share-benchmarking"}, PrimaryMethodology: "benchmarking"},
			checkID: "METH_013", severity: fail,
			doc: bare(), message: "Market share benchmarking requires a time-bounded category usage question"},
		{name: "benchmark usage advised", brief: skill("market-share-benchmarking"), checkID: "METH_013", severity: warn,
			doc: bare(), message: "Market share benchmarking requires a time-bounded category usage question"},
		{name: "benchmark without frequency", brief: skill("market-share-benchmarking"), checkID: "METH_013", severity: warn,
			doc: bare(), message: "should include a volume/frequency measure"},
		{name: "benchmark brand list without other", brief: skill("market-share-benchmarking"), checkID: "METH_013", severity: warn, qid: "MS1_Q1",
			doc: mainOnly(question("MS1_Q1", survey.TypeMultipleChoice, "Which of the following brands did you buy in the past month?",
				"Brand A", "Brand B", "Brand C", "Brand D", "Brand E")),
			message: "Competitive brand list should include an 'Other brand' or 'Other' option"},

		{name: "penetration missing", brief: skill("penetration-frequency-loyalty"), checkID: "METH_014", severity: fail,
			doc: bare(), message: "requires a penetration question"},
		{name: "frequency missing", brief: skill("penetration-frequency-loyalty"), checkID: "METH_014", severity: fail,
			doc: bare(), message: "requires a frequency question with explicit time bounds"},
		{name: "loyalty missing", brief: skill("penetration-frequency-loyalty"), checkID: "METH_014", severity: warn,
			doc: bare(), message: "should include a loyalty measure"},
		{name: "frequency before penetration", brief: skill("penetration-frequency-loyalty"), checkID: "METH_014", severity: warn, qid: "MS1_Q1",
			doc: mainOnly(
				question("MS1_Q1", survey.TypeSingleChoice, "How often do you snack per week?", "Once", "Twice"),
				question("MS1_Q2", survey.TypeSingleChoice, "Have you ever bought snacks?", "Yes", "No")),
			message: "Behavioral funnel out of order: frequency question appears before penetration question"},

		{name: "atu awareness missing", brief: skill("awareness-trial-usage"), checkID: "METH_015", severity: fail,
			doc: bare(), message: "ATU funnel missing awareness stage"},
		{name: "atu trial missing", brief: skill("awareness-trial-usage"), checkID: "METH_015", severity: fail,
			doc: bare(), message: "ATU funnel missing trial stage"},
		{name: "atu usage missing", brief: skill("awareness-trial-usage"), checkID: "METH_015", severity: fail,
			doc: bare(), message: "ATU funnel missing usage stage"},
		{name: "atu trial before awareness", brief: skill("awareness-trial-usage"), checkID: "METH_015", severity: warn, qid: "MS1_Q1",
			doc: mainOnly(
				question("MS1_Q1", survey.TypeSingleChoice, "Have you ever tried Brand X?", "Yes", "No"),
				question("MS1_Q2", survey.TypeSingleChoice, "Have you heard of Brand X?", "Yes", "No")),
			message: "ATU funnel out of order: trial question appears before awareness question"},
		{name: "atu usage without time frame", brief: skill("awareness-trial-usage"), checkID: "METH_015", severity: warn, qid: "MS1_Q1",
			doc:     mainOnly(question("MS1_Q1", survey.TypeMultipleChoice, "Which brands do you currently use?", "A", "B")),
			message: "Usage question missing time frame"},

		{name: "sizing without incidence", brief: skill("market-sizing"), checkID: "METH_016", severity: fail, section: survey.SectionScreener,
			doc: bare(), message: "Market sizing requires an incidence/qualification question"},
		{name: "sizing without frequency", brief: skill("market-sizing"), checkID: "METH_016", severity: fail,
			doc: bare(), message: "Market sizing requires a frequency/volume question"},
		{name: "sizing funnel thin", brief: skill("market-sizing"), checkID: "METH_016", severity: warn,
			doc: bare(), message: "Market sizing typically requires multiple funnel questions"},
		{name: "sizing value without spend", brief: survey.Brief{Skills: []string{"market-sizing"}, Objective: "Estimate the market value"},
			checkID: "METH_016", severity: warn,
			doc: bare(), message: "Brief mentions market size/revenue/value but survey lacks a price/spend question"},
	})
}

func TestExperienceMethodologyChecks(t *testing.T) {
	const warn, fail = SeverityWarning, SeverityError
	bare := func() *survey.Document { return mainOnly(appealing("MS1_Q1")) }
	stage := func() map[string]any {
		return question("MS1_Q1", survey.TypeSingleChoice, "How long have you been a customer?", "New", "Loyal")
	}
	susItem := func(id, text string, options ...string) map[string]any {
		return question(id, survey.TypeScale, text, options...)
	}
	runCatalog(t, []catalogCase{
		{name: "lifecycle without stage", brief: skill("customer-lifecycle"), checkID: "METH_017", severity: fail,
			doc: bare(), message: "Customer lifecycle study requires a stage classification question"},
		{name: "lifecycle without trigger", brief: skill("customer-lifecycle"), checkID: "METH_017", severity: warn,
			doc: bare(), message: "should include transition trigger questions"},
		{name: "lifecycle stage not routed", brief: skill("customer-lifecycle"), checkID: "METH_017", severity: warn, section: survey.SectionFlow,
			doc: mainOnly(stage()), message: "Consider routing respondents to stage-specific question paths"},
		{name: "lifecycle stage routed", brief: skill("customer-lifecycle"), checkID: "METH_017", severity: warn, absent: true,
			doc: fixture(map[string]any{
				survey.SectionMain: mainSection(subsection("MS1", stage())),
				survey.SectionFlow: flow("", rule("R1", "MS1_Q1 = 'New'", "Show MS1")),
			}),
			message: "Consider routing respondents"},

		{name: "churn classification missing", brief: skill("churn-retention"), checkID: "METH_018", severity: fail,
			doc: bare(), message: "requires a churn classification question"},
		{name: "churn reason missing", brief: skill("churn-retention"), checkID: "METH_018", severity: fail,
			doc: bare(), message: "must include a primary reason question"},
		{name: "churn voluntary missing", brief: skill("churn-retention"), checkID: "METH_018", severity: warn,
			doc: bare(), message: "should distinguish voluntary vs involuntary churn"},
		{name: "churn recency missing", brief: skill("churn-retention"), checkID: "METH_018", severity: warn,
			doc: bare(), message: "Churn recency is important for data quality"},
		{name: "churn tenure missing", brief: skill("churn-retention"), checkID: "METH_018", severity: warn,
			doc: bare(), message: "should capture lifecycle stage or tenure before churn"},

		{name: "engagement missing", brief: skill("employee-engagement"), checkID: "METH_019", severity: fail,
			doc: bare(), message: "requires an overall engagement measure"},
		{name: "manager missing", brief: skill("employee-engagement"), checkID: "METH_019", severity: warn,
			doc: bare(), message: "should include manager/leadership effectiveness measures"},
		{name: "growth missing", brief: skill("employee-engagement"), checkID: "METH_019", severity: warn,
			doc: bare(), message: "should include growth/development measures"},
		{name: "mixed scales", brief: skill("employee-engagement"), checkID: "METH_019", severity: warn,
			doc: mainOnly(
				question("MS1_Q1", survey.TypeScale, "How engaged do you feel?", fivePoint...),
				question("MS1_Q2", survey.TypeScale, "How would you rate your manager?", sevenPoint...)),
			message: "found mixed scales: [5, 7]"},
		{name: "personal data", brief: skill("employee-engagement"), checkID: "METH_019", severity: fail, qid: "MS1_Q1",
			doc:     mainOnly(question("MS1_Q1", survey.TypeOpenEnded, "What is your email address?")),
			message: "must not collect names, employee IDs, or email addresses"},

		{name: "voc touchpoint missing", brief: skill("voc-programs"), checkID: "METH_020", severity: fail,
			doc: bare(), message: "requires a touchpoint anchoring question"},
		{name: "voc metric missing", brief: skill("voc-programs"), checkID: "METH_020", severity: fail,
			doc: bare(), message: "requires a core experience metric"},
		{name: "voc verbatim missing", brief: skill("voc-programs"), checkID: "METH_020", severity: warn,
			doc: bare(), message: "should include an open-ended question to capture verbatim feedback"},
		{name: "voc too long", brief: skill("voc-programs"), checkID: "METH_020", severity: warn,
			doc: mainOnly(manyQuestions(16)...), message: "(current: 16 questions)"},

		{name: "usability tasks missing", brief: skill("usability-testing"), checkID: "METH_021", severity: fail,
			doc: bare(), message: "requires task completion measures"},
		{name: "usability ease missing", brief: skill("usability-testing"), checkID: "METH_021", severity: warn,
			doc: bare(), message: "should include an ease of use measure"},
		{name: "sus partial", brief: skill("usability-testing"), checkID: "METH_021", severity: fail,
			doc: mainOnly(
				susItem("MS1_Q1", "I think that I would like to use this system frequently", agreement...),
				susItem("MS1_Q2", "I found the system unnecessarily complex", agreement...),
				susItem("MS1_Q3", "I thought the system was easy to use", agreement...)),
			message: "(found 3 SUS items)"},
		{name: "sus item scale", brief: skill("usability-testing"), checkID: "METH_021", severity: fail, qid: "MS1_Q1",
			doc: mainOnly(
				susItem("MS1_Q1", "I think that I would like to use this system frequently", "Disagree", "Neutral", "Agree", "Strongly agree"),
				susItem("MS1_Q2", "I found the system unnecessarily complex", agreement...),
				susItem("MS1_Q3", "I thought the system was easy to use", agreement...)),
			message: "System Usability Scale questions must use exactly 5-point agreement scale"},
		{name: "task after ease", brief: skill("usability-testing"), checkID: "METH_021", severity: warn, qid: "MS1_Q2",
			doc: mainOnly(
				question("MS1_Q1", survey.TypeScale, "How easy was it to find?", fivePoint...),
				question("MS1_Q2", survey.TypeSingleChoice, "Were you able to complete the task?", "Yes", "No")),
			message: "Task completion questions should appear before overall satisfaction/ease measures"},

		{name: "gtm value missing", brief: skill("go-to-market-validation"), checkID: "METH_024", severity: warn,
			doc: bare(), message: "should measure perceived value proposition"},
		{name: "gtm competition missing", brief: skill("go-to-market-validation"), checkID: "METH_024", severity: warn,
			doc: bare(), message: "should measure the competitive context"},
		{name: "gtm barriers missing", brief: skill("go-to-market-validation"), checkID: "METH_024", severity: warn,
			doc: bare(), message: "should identify adoption barriers"},
		{name: "gtm audience missing", brief: skill("go-to-market-validation"), checkID: "METH_024", severity: warn,
			doc: bare(), message: "should confirm target audience fit"},
		{name: "gtm pricing without skill", brief: skill("go-to-market-validation"), checkID: "METH_024", severity: warn, qid: "MS1_Q1",
			doc:     mainOnly(question("MS1_Q1", survey.TypeOpenEnded, "How much would you pay for this?")),
			message: "pricing-study skill was not selected"},
		{name: "gtm pricing with skill", brief: survey.Brief{Skills: []string{"go-to-market-validation", "pricing-study"}},
			checkID: "METH_024", severity: warn, qid: "MS1_Q1", absent: true,
			doc:     mainOnly(question("MS1_Q1", survey.TypeOpenEnded, "How much would you pay for this?")),
			message: "pricing-study skill was not selected"},

		{name: "segmentation without battery", brief: skill("segmentation"), checkID: "METH_025", severity: warn,
			doc: bare(), message: "requires a substantial attitudinal battery"},
		{name: "segmentation short battery", brief: skill("segmentation"), checkID: "METH_025", severity: warn,
			doc: mainOnly(with(question("MS1_Q1", survey.TypeMatrix, "How much do you agree with each statement?"),
				"rows", batteryRows(10), "columns", list("Strongly disagree", "Disagree", "Agree", "Strongly agree"))),
			message: "Attitudinal battery has fewer than 15 statements (10 found)"},
		{name: "segmentation demographics", brief: skill("segmentation"), checkID: "METH_025", severity: warn, section: survey.SectionDemographics,
			doc: bare(), message: "(found 0 questions, recommend at least 3)"},
		{name: "segmentation sample", brief: survey.Brief{Skills: []string{"segmentation"}, Constraints: survey.Constraints{SampleSize: 500}},
			checkID: "METH_025", severity: warn, section: survey.SectionStudyMetadata,
			doc: bare(), message: "Current sample (500) may be insufficient"},
	})
}
