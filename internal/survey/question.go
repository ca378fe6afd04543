package survey

import "fmt"

// Top-level section keys.
const (
	SectionStudyMetadata      = "STUDY_METADATA"
	SectionSampleRequirements = "SAMPLE_REQUIREMENTS"
	SectionScreener           = "SCREENER"
	SectionMain               = "MAIN_SECTION"
	SectionDemographics       = "DEMOGRAPHICS"
	SectionFlow               = "FLOW"
	SectionProgramming        = "PROGRAMMING_SPECIFICATIONS"
	SectionAnalysisPlan       = "ANALYSIS_PLAN"
	SectionDimensionSummary   = "DIMENSION_COVERAGE_SUMMARY"
)

// RequiredSections must exist before any question-level processing.
var RequiredSections = []string{
	SectionStudyMetadata,
	SectionScreener,
	SectionMain,
	SectionDemographics,
	SectionFlow,
	SectionDimensionSummary,
}

// OptionalSections are the V2 sections a complete survey carries.
var OptionalSections = []string{
	SectionSampleRequirements,
	SectionProgramming,
	SectionAnalysisPlan,
}

// Question types.
const (
	TypeSingleChoice   = "single_choice"
	TypeMultipleChoice = "multiple_choice"
	TypeScale          = "scale"
	TypeMatrix         = "matrix"
	TypeOpenEnded      = "open_ended"
	TypeStimulus       = "stimulus_display"
	TypeNumericInput   = "numeric_input"
	TypeRanking        = "ranking"
)

// QuestionTypes is the closed set of supported question types.
var QuestionTypes = []string{
	TypeSingleChoice,
	TypeMultipleChoice,
	TypeScale,
	TypeMatrix,
	TypeOpenEnded,
	TypeStimulus,
	TypeNumericInput,
	TypeRanking,
}

// ValidQuestionType reports whether t is in the closed set.
func ValidQuestionType(t string) bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// OptionsForbidden reports whether a type must carry an empty options list.
func OptionsForbidden(t string) bool {
	switch t {
	case TypeOpenEnded, TypeMatrix, TypeNumericInput, TypeStimulus:
		return true
	}
	return false
}

// OptionsRequired reports whether a type must carry a non-empty options list.
func OptionsRequired(t string) bool {
	switch t {
	case TypeSingleChoice, TypeMultipleChoice, TypeScale, TypeRanking:
		return true
	}
	return false
}

// Question is a view over a question object. It shares storage with the
// document, so setters mutate the tree in place.
type Question map[string]any

func (q Question) ID() string           { return Str(q, "question_id") }
func (q Question) Text() string         { return Str(q, "question_text") }
func (q Question) Type() string         { return Str(q, "question_type") }
func (q Question) Options() []string    { return Strings(q["options"]) }
func (q Question) Rows() []string       { return Strings(q["rows"]) }
func (q Question) Columns() []string    { return Strings(q["columns"]) }
func (q Question) DisplayLogic() string { return Str(q, "display_logic") }
func (q Question) Notes() string        { return Str(q, "notes") }

// Has reports whether key is present, even when null.
func (q Question) Has(key string) bool {
	_, ok := q[key]
	return ok
}

// SetOptions replaces the options list.
func (q Question) SetOptions(options []string) {
	q["options"] = StringArray(options)
}

// Subsection is a view over a MAIN_SECTION sub-section object.
type Subsection map[string]any

func (s Subsection) ID() string      { return Str(s, "subsection_id") }
func (s Subsection) Title() string   { return Str(s, "subsection_title") }
func (s Subsection) Purpose() string { return Str(s, "purpose") }

// Questions returns the question objects of the sub-section.
func (s Subsection) Questions() []Question {
	return questionViews(s["questions"])
}

// QuestionRef locates a question inside the document.
type QuestionRef struct {
	Section         string
	SubsectionID    string
	SubsectionIndex int
	Index           int
	// Position is the global order: SCREENER, MAIN sub-sections, DEMOGRAPHICS.
	Position int
	Question Question
}

// Path returns the JSON pointer of the question.
func (r QuestionRef) Path() string {
	if r.Section == SectionMain {
		return fmt.Sprintf("/%s/sub_sections/%d/questions/%d", SectionMain, r.SubsectionIndex, r.Index)
	}
	return fmt.Sprintf("/%s/questions/%d", r.Section, r.Index)
}

// Subsections returns the MAIN_SECTION sub-sections that are objects.
func (d *Document) Subsections() []Subsection {
	main := d.Object(SectionMain)
	if main == nil {
		return nil
	}
	items := Objects(main["sub_sections"])
	out := make([]Subsection, len(items))
	for i, item := range items {
		out[i] = Subsection(item)
	}
	return out
}

// SectionQuestions returns the questions of SCREENER or DEMOGRAPHICS.
func (d *Document) SectionQuestions(section string) []Question {
	obj := d.Object(section)
	if obj == nil {
		return nil
	}
	return questionViews(obj["questions"])
}

// Questions walks every question in global order. Index is the position in
// the raw questions array, so non-object entries keep paths aligned.
func (d *Document) Questions() []QuestionRef {
	var refs []QuestionRef
	pos := 0
	walk := func(section string, subIndex int, subID string, raw any) {
		items, _ := AsArray(raw)
		for i, item := range items {
			q, ok := item.(map[string]any)
			if !ok {
				continue
			}
			refs = append(refs, QuestionRef{
				Section:         section,
				SubsectionID:    subID,
				SubsectionIndex: subIndex,
				Index:           i,
				Position:        pos,
				Question:        Question(q),
			})
			pos++
		}
	}
	if screener := d.Object(SectionScreener); screener != nil {
		walk(SectionScreener, -1, "", screener["questions"])
	}
	if main := d.Object(SectionMain); main != nil {
		subs, _ := AsArray(main["sub_sections"])
		for si, item := range subs {
			if sub, ok := item.(map[string]any); ok {
				walk(SectionMain, si, Subsection(sub).ID(), sub["questions"])
			}
		}
	}
	if demo := d.Object(SectionDemographics); demo != nil {
		walk(SectionDemographics, -1, "", demo["questions"])
	}
	return refs
}

// QuestionIDs returns the set of question ids in the document.
func (d *Document) QuestionIDs() map[string]bool {
	ids := map[string]bool{}
	for _, ref := range d.Questions() {
		if id := ref.Question.ID(); id != "" {
			ids[id] = true
		}
	}
	return ids
}

// FindQuestion returns the first question with the given id.
func (d *Document) FindQuestion(id string) (QuestionRef, bool) {
	for _, ref := range d.Questions() {
		if ref.Question.ID() == id {
			return ref, true
		}
	}
	return QuestionRef{}, false
}

// Artefacts returns STUDY_METADATA.artefacts.
func (d *Document) Artefacts() []map[string]any {
	meta := d.Object(SectionStudyMetadata)
	if meta == nil {
		return nil
	}
	return Objects(meta["artefacts"])
}

// RoutingRules returns FLOW.routing_rules.
func (d *Document) RoutingRules() []map[string]any {
	flow := d.Object(SectionFlow)
	if flow == nil {
		return nil
	}
	return Objects(flow["routing_rules"])
}

func questionViews(v any) []Question {
	items := Objects(v)
	out := make([]Question, len(items))
	for i, item := range items {
		out[i] = Question(item)
	}
	return out
}
