package validate

import (
	"fmt"
	"sort"
	"strings"

	"surveyforge/internal/survey"
)

// optionalChecks cover the V2 sections. They only report when the section
// is present.
var optionalChecks = []Check{
	{ID: "V2_001", Name: "sample_requirements_completeness", Run: checkSampleRequirements},
	{ID: "V2_002", Name: "programming_specifications_validity", Run: checkProgrammingSpecifications},
	{ID: "V2_003", Name: "analysis_plan_completeness", Run: checkAnalysisPlan},
	{ID: "V2_004", Name: "question_v2_field_compatibility", Run: checkQuestionFields},
}

// advisoryChecks never block; they suggest documentation improvements.
var advisoryChecks = []Check{
	{ID: "ADV_001", Name: "missing_optional_sections", Run: checkMissingOptionalSections},
	{ID: "ADV_002", Name: "question_notes_coverage", Run: checkNotesCoverage},
	{ID: "ADV_003", Name: "subsection_purposes", Run: checkSubsectionPurposes},
	{ID: "ADV_004", Name: "estimated_loi", Run: checkEstimatedLOI},
}

// presentSection returns the section when it is a non-empty object.
func (p *Pass) presentSection(key string) map[string]any {
	obj := p.Doc.Object(key)
	if len(obj) == 0 {
		return nil
	}
	return obj
}

func checkSampleRequirements(p *Pass) {
	const id, name = "V2_001", "sample_requirements_completeness"
	sample := p.presentSection(survey.SectionSampleRequirements)
	if sample == nil {
		return
	}
	if !survey.Truthy(sample["total_sample"]) {
		p.Report(Result{CheckID: id, CheckName: name, Severity: SeverityWarning, Section: survey.SectionSampleRequirements,
			Message: "SAMPLE_REQUIREMENTS section exists but total_sample is missing", Suggestion: "Specify target sample size"})
	}
	if !survey.Truthy(sample["qualification_criteria"]) {
		p.Report(Result{CheckID: id, CheckName: name, Severity: SeverityWarning, Section: survey.SectionSampleRequirements,
			Message: "SAMPLE_REQUIREMENTS section exists but qualification_criteria is empty", Suggestion: "Add audience qualification criteria"})
	}
}

var loiSections = map[string]bool{
	survey.SectionScreener:     true,
	survey.SectionMain:         true,
	survey.SectionDemographics: true,
}

func checkProgrammingSpecifications(p *Pass) {
	const id, name = "V2_002", "programming_specifications_validity"
	specs := p.presentSection(survey.SectionProgramming)
	if specs == nil {
		return
	}
	if breakdown, ok := survey.AsObject(specs["loi_breakdown"]); ok {
		var unknown []string
		for section := range breakdown {
			if !loiSections[section] {
				unknown = append(unknown, section)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			p.Report(Result{CheckID: id, CheckName: name, Severity: SeverityWarning, Section: survey.SectionProgramming,
				Message:    fmt.Sprintf("LOI breakdown references unknown sections: %s", quoteList(unknown)),
				Suggestion: "Update section names to match survey structure (" + strings.Join([]string{survey.SectionScreener, survey.SectionMain, survey.SectionDemographics}, ", ") + ")"})
		}
	}
	if !survey.Truthy(specs["quality_controls"]) {
		p.Report(Result{CheckID: id, CheckName: name, Severity: SeverityWarning, Section: survey.SectionProgramming,
			Message: "PROGRAMMING_SPECIFICATIONS section exists but quality_controls is empty", Suggestion: "Add quality control measures"})
	}
}

func checkAnalysisPlan(p *Pass) {
	const id, name = "V2_003", "analysis_plan_completeness"
	plan := p.presentSection(survey.SectionAnalysisPlan)
	if plan == nil {
		return
	}
	if !survey.Truthy(plan["primary_analyses"]) {
		p.Report(Result{CheckID: id, CheckName: name, Severity: SeverityWarning, Section: survey.SectionAnalysisPlan,
			Message: "ANALYSIS_PLAN section exists but primary_analyses is empty", Suggestion: "Add at least one primary analysis method"})
	}
	if !survey.Truthy(plan["deliverables"]) && !survey.Truthy(plan["strategic_outputs"]) {
		p.Report(Result{CheckID: id, CheckName: name, Severity: SeverityWarning, Section: survey.SectionAnalysisPlan,
			Message: "ANALYSIS_PLAN section exists but both deliverables and strategic_outputs are empty", Suggestion: "Specify expected deliverables or strategic outputs"})
	}
}

func checkQuestionFields(p *Pass) {
	const id, name = "V2_004", "question_v2_field_compatibility"
	for _, ref := range p.Doc.Questions() {
		q := ref.Question
		if q.Type() == survey.TypeNumericInput && len(q.Options()) > 0 {
			q.SetOptions(nil)
			p.fix(id, name, q.ID(), location(ref), "numeric_input questions must have empty options", "Cleared options array")
		}
		if !q.Has("required") {
			q["required"] = true
			p.fix(id, name, q.ID(), location(ref), "Missing 'required' field", "Set required to True (default)")
		}
	}
}

var optionalSectionAdvice = map[string]string{
	survey.SectionSampleRequirements: "Add sample requirements for better project documentation",
	survey.SectionProgramming:        "Add programming specs to guide survey implementation",
	survey.SectionAnalysisPlan:       "Add analysis plan to clarify research deliverables",
}

func checkMissingOptionalSections(p *Pass) {
	const id, name = "ADV_001", "missing_optional_sections"
	for _, section := range survey.OptionalSections {
		value, _ := p.Doc.Get(section)
		if survey.Truthy(value) {
			continue
		}
		p.advise(id, name, "", "Root", fmt.Sprintf("Survey is missing %s section", section), optionalSectionAdvice[section])
	}
}

func checkNotesCoverage(p *Pass) {
	const id, name = "ADV_002", "question_notes_coverage"
	refs := p.Doc.Questions()
	if len(refs) == 0 {
		return
	}
	for _, ref := range refs {
		if survey.Truthy(ref.Question["notes"]) {
			return
		}
	}
	p.advise(id, name, "", "Questions", "No questions have notes/rationale",
		"Add notes to questions to document programming intent and analysis purpose")
}

func checkSubsectionPurposes(p *Pass) {
	const id, name = "ADV_003", "subsection_purposes"
	subs := p.Doc.Subsections()
	if len(subs) == 0 {
		return
	}
	for _, sub := range subs {
		if survey.Truthy(sub["purpose"]) {
			return
		}
	}
	p.advise(id, name, "", survey.SectionMain, "No subsections have purpose statements",
		"Add purpose to subsections to document measurement intent")
}

func checkEstimatedLOI(p *Pass) {
	const id, name = "ADV_004", "estimated_loi"
	meta := p.Doc.Object(survey.SectionStudyMetadata)
	if meta == nil || survey.Truthy(meta["estimated_loi_minutes"]) {
		return
	}
	p.advise(id, name, "", survey.SectionStudyMetadata, "Study metadata missing estimated_loi_minutes",
		"Add estimated LOI to help with project planning")
}
