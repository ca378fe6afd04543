// Package render turns a normalized survey into the block-structured UI
// spec a front end displays.
package render

import (
	"bytes"
	"encoding/json"

	"surveyforge/internal/routing"
)

// Version is written to ui_spec_version.
const Version = "1.0"

// Block types.
const (
	BlockStudyHeader          = "study_header"
	BlockSampleRequirements   = "sample_requirements"
	BlockArtefacts            = "artefacts"
	BlockConfigurationSummary = "configuration_summary"
	BlockArtefactAssignments  = "artefact_assignments"
	BlockQuotaSummary         = "quota_summary"
	BlockSection              = "section"
	BlockSubsection           = "subsection"
	BlockProgrammingSpecs     = "programming_specifications"
	BlockAnalysisPlan         = "analysis_plan"
	BlockAppendix             = "appendix"
)

// UISpec is the rendered survey.
type UISpec struct {
	Version   string  `json:"ui_spec_version"`
	StudyType any     `json:"study_type"`
	Blocks    []Block `json:"blocks"`
}

// Block is one display unit. Section-specific passthrough values live in
// Fields and are flattened into the block when encoded.
type Block struct {
	BlockType    string               `json:"block_type"`
	Title        string               `json:"title,omitempty"`
	SectionID    string               `json:"section_id,omitempty"`
	SubsectionID string               `json:"subsection_id,omitempty"`
	Purpose      string               `json:"purpose,omitempty"`
	Description  any                  `json:"description,omitempty"`
	Items        any                  `json:"items,omitempty"`
	Completeness *Completeness        `json:"completeness,omitempty"`
	Artefacts    []ArtefactView       `json:"artefacts,omitempty"`
	Summary      []ConfigSummary      `json:"summary,omitempty"`
	Assignments  []routing.Assignment `json:"assignments,omitempty"`
	Quotas       []QuotaView          `json:"quotas,omitempty"`
	Questions    []QuestionView       `json:"questions,omitempty"`
	RoutingRules any                  `json:"routing_rules,omitempty"`
	Fields       map[string]any       `json:"-"`
}

func (b Block) hasQuestions() bool {
	return b.BlockType == BlockSection || b.BlockType == BlockSubsection
}

// MarshalJSON flattens Fields into the block object. Question blocks always
// carry a questions array.
func (b Block) MarshalJSON() ([]byte, error) {
	type plain Block
	base, err := marshalUnescaped(plain(b))
	if err != nil {
		return nil, err
	}
	if len(b.Fields) == 0 && !(b.hasQuestions() && len(b.Questions) == 0) {
		return base, nil
	}
	merged := map[string]any{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, value := range b.Fields {
		merged[key] = value
	}
	if b.hasQuestions() && len(b.Questions) == 0 {
		merged["questions"] = []any{}
	}
	return marshalUnescaped(merged)
}

// marshalUnescaped encodes v without HTML escaping so titles such as
// "Randomization & Assignment" stay readable.
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Completeness scores how much optional documentation a survey carries.
type Completeness struct {
	Score   int      `json:"score"`
	Present []string `json:"present"`
	Missing []string `json:"missing"`
	Status  string   `json:"status"`
}

// Completeness statuses.
const (
	StatusComplete = "complete"
	StatusGood     = "good"
	StatusBasic    = "basic"
)

// ArtefactView is an artefact with its parsed conjoint configurations.
type ArtefactView struct {
	ArtefactID   any         `json:"artefact_id"`
	ArtefactType any         `json:"artefact_type"`
	Title        any         `json:"title"`
	Content      any         `json:"content"`
	Parsed       *ChoiceTask `json:"parsed"`
}

// ChoiceTask is a conjoint task parsed from "[OPTION A]" bullet blocks.
type ChoiceTask struct {
	Type           string          `json:"type"`
	Configurations []Configuration `json:"configurations"`
	AttributeCount int             `json:"attribute_count"`
	ConfigCount    int             `json:"config_count"`
}

// Configuration is one option of a choice task.
type Configuration struct {
	ConfigID   string            `json:"config_id"`
	Attributes map[string]string `json:"attributes"`
	// Order keeps the attribute order of the source text.
	Order []string `json:"-"`
}

// ConfigSummary is one row of the conjoint configuration summary.
type ConfigSummary struct {
	QuestionID                 string `json:"question_id"`
	DisplaysArtefact           string `json:"displays_artefact"`
	Configurations             int    `json:"configurations"`
	AttributesPerConfiguration int    `json:"attributes_per_configuration"`
}

// QuotaView is a screener quota linked to its question.
type QuotaView struct {
	Attribute      string `json:"attribute"`
	Type           string `json:"type"`
	LinkedQuestion string `json:"linked_question"`
	Groups         any    `json:"groups"`
}

// Option is a display option with its data code.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Annotation is a note shown next to a question.
type Annotation struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// QuestionMeta is derived display metadata.
type QuestionMeta struct {
	TypeLabel              string   `json:"type_label"`
	AnswerFormat           string   `json:"answer_format"`
	OptionCount            int      `json:"option_count"`
	IsRouted               bool     `json:"is_routed"`
	Required               any      `json:"required"`
	QuotaAttribute         string   `json:"quota_attribute,omitempty"`
	QuotaGroups            any      `json:"quota_groups,omitempty"`
	QuotaType              any      `json:"quota_type,omitempty"`
	DisplaysArtefacts      []string `json:"displays_artefacts,omitempty"`
	MinimumExposureSeconds any      `json:"minimum_exposure_seconds,omitempty"`
}

// QuestionView is a question prepared for display.
type QuestionView struct {
	Number           string        `json:"number"`
	QuestionID       string        `json:"question_id"`
	QuestionText     string        `json:"question_text"`
	QuestionType     string        `json:"question_type"`
	Options          []Option      `json:"options"`
	Rows             any           `json:"rows"`
	Columns          any           `json:"columns"`
	DisplayLogic     any           `json:"display_logic"`
	Piping           any           `json:"piping"`
	Annotations      []Annotation  `json:"annotations"`
	Meta             QuestionMeta  `json:"meta"`
	Routing          routing.Entry `json:"routing"`
	DisplaysArtefact *ArtefactView `json:"displays_artefact"`
	AnnotationText   []string      `json:"annotation_text,omitempty"`
}
