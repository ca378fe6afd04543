package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"surveyforge/internal/normalize"
	"surveyforge/internal/routing"
	"surveyforge/internal/survey"
	"surveyforge/internal/validate"
)

// ErrBlocked is returned when a survey still has structural issues or
// error-severity check results.
var ErrBlocked = errors.New("render: blocked by unresolved errors")

// ErrNotRenderable is returned when a section the renderer walks is missing
// or malformed. Normalize first.
var ErrNotRenderable = errors.New("render: survey is not normalized")

// Guard returns ErrBlocked when issues or error results remain.
func Guard(issues []normalize.Issue, results []validate.Result) error {
	errs := len(validate.Filter(results, validate.SeverityError))
	if len(issues) == 0 && errs == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d structural issue(s), %d error(s)", ErrBlocked, len(issues), errs)
}

// Render builds the UI spec of a normalized survey.
func Render(doc *survey.Document) (UISpec, error) {
	for _, key := range []string{survey.SectionScreener, survey.SectionMain, survey.SectionDemographics, survey.SectionFlow} {
		if doc.Object(key) == nil {
			return UISpec{}, fmt.Errorf("%w: missing section %s", ErrNotRenderable, key)
		}
	}
	r := newRenderer(doc)
	return UISpec{Version: Version, StudyType: r.meta["study_type"], Blocks: r.blocks()}, nil
}

type renderer struct {
	doc       *survey.Document
	meta      map[string]any
	artefacts map[string]map[string]any
	letters   map[string]string
	index     routing.Index
	rules     map[string]routing.RuleMeta
}

func newRenderer(doc *survey.Document) *renderer {
	meta := doc.Object(survey.SectionStudyMetadata)
	if meta == nil {
		meta = map[string]any{}
	}
	list := doc.Artefacts()
	byID := make(map[string]map[string]any, len(list))
	for _, a := range list {
		if id := survey.Str(a, "artefact_id"); id != "" {
			byID[id] = a
		}
	}
	var ids []string
	for _, ref := range doc.Questions() {
		if id := ref.Question.ID(); id != "" {
			ids = append(ids, id)
		}
	}
	index, rules := routing.Build(doc.Object(survey.SectionFlow), ids)
	return &renderer{
		doc:       doc,
		meta:      meta,
		artefacts: byID,
		letters:   conceptLetters(list),
		index:     index,
		rules:     rules,
	}
}

func (r *renderer) blocks() []Block {
	blocks := []Block{r.header()}

	if sample := r.doc.Object(survey.SectionSampleRequirements); survey.Truthy(sample) {
		blocks = append(blocks, Block{
			BlockType: BlockSampleRequirements,
			Title:     "Sample Requirements",
			Fields: passthrough(sample, map[string]any{
				"total_sample":            nil,
				"target_audience_summary": nil,
				"qualification_criteria":  []any{},
				"hard_quotas":             []any{},
				"soft_quotas":             []any{},
				"exclusions":              []any{},
			}),
		})
	}

	if list := r.doc.Artefacts(); len(list) > 0 {
		views := make([]ArtefactView, len(list))
		for i, a := range list {
			views[i] = artefactView(a)
		}
		blocks = append(blocks, Block{BlockType: BlockArtefacts, Title: "Stimuli / Artefacts", Artefacts: views})
	}

	if summary := ConfigurationSummary(r.doc); len(summary) > 0 {
		blocks = append(blocks, Block{
			BlockType:   BlockConfigurationSummary,
			Title:       "Configuration Summary",
			Description: "Structural verification of conjoint choice tasks",
			Summary:     summary,
		})
	}

	if assignments := routing.DetectAssignments(r.doc.Object(survey.SectionFlow)); len(assignments) > 0 {
		blocks = append(blocks, Block{
			BlockType:   BlockArtefactAssignments,
			Title:       "Artefact Randomization & Assignment",
			Assignments: assignments,
		})
	}

	if quotas := r.quotas(); len(quotas) > 0 {
		blocks = append(blocks, Block{BlockType: BlockQuotaSummary, Title: "Sample Quotas", Quotas: quotas})
	}

	blocks = append(blocks, Block{
		BlockType: BlockSection,
		SectionID: survey.SectionScreener,
		Title:     "Screener",
		Questions: r.questions(r.doc.SectionQuestions(survey.SectionScreener), func(i int) string {
			return fmt.Sprintf("S%d", i+1)
		}),
	})

	for i, sub := range r.doc.Subsections() {
		id := sub.ID()
		if id == "" {
			id = fmt.Sprintf("MS%d", i+1)
		}
		title := sub.Title()
		if title == "" {
			title = fmt.Sprintf("Main Subsection %d", i+1)
		}
		blocks = append(blocks, Block{
			BlockType:    BlockSubsection,
			SectionID:    survey.SectionMain,
			SubsectionID: id,
			Purpose:      sub.Purpose(),
			Title:        title,
			Questions: r.questions(sub.Questions(), func(n int) string {
				return fmt.Sprintf("%s.%d", id, n+1)
			}),
		})
	}

	blocks = append(blocks, Block{
		BlockType: BlockSection,
		SectionID: survey.SectionDemographics,
		Title:     "Demographics",
		Questions: r.questions(r.doc.SectionQuestions(survey.SectionDemographics), func(i int) string {
			return fmt.Sprintf("D%d", i+1)
		}),
	})

	if spec := r.doc.Object(survey.SectionProgramming); survey.Truthy(spec) {
		blocks = append(blocks, Block{
			BlockType: BlockProgrammingSpecs,
			Title:     "Programming Specifications",
			Fields: passthrough(spec, map[string]any{
				"estimated_loi_minutes": nil,
				"loi_breakdown":         map[string]any{},
				"quality_controls":      []any{},
				"mobile_optimization":   nil,
				"progress_indicator":    nil,
				"quota_management":      nil,
				"randomization_notes":   nil,
			}),
		})
	}

	if plan := r.doc.Object(survey.SectionAnalysisPlan); survey.Truthy(plan) {
		blocks = append(blocks, Block{
			BlockType: BlockAnalysisPlan,
			Title:     "Analysis Plan",
			Fields: passthrough(plan, map[string]any{
				"primary_analyses":  []any{},
				"deliverables":      []any{},
				"strategic_outputs": []any{},
			}),
		})
	}

	flow := r.doc.Object(survey.SectionFlow)
	rules, ok := survey.AsArray(flow["routing_rules"])
	if !ok {
		rules = []any{}
	}
	blocks = append(blocks, Block{
		BlockType:    BlockAppendix,
		Title:        "Flow, Routing & Assignments",
		Description:  flow["summary"],
		RoutingRules: rules,
	})

	coverage, _ := r.doc.Get(survey.SectionDimensionSummary)
	if coverage == nil {
		coverage = []any{}
	}
	blocks = append(blocks, Block{BlockType: BlockAppendix, Title: "Dimension Coverage Summary", Items: coverage})
	return blocks
}

// passthrough copies the listed keys of section, using the default for
// absent keys.
func passthrough(section map[string]any, defaults map[string]any) map[string]any {
	out := make(map[string]any, len(defaults))
	for key, fallback := range defaults {
		if value, ok := section[key]; ok {
			out[key] = value
		} else {
			out[key] = fallback
		}
	}
	return out
}

// HeaderItem is one labelled value of the study header.
type HeaderItem struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

func (r *renderer) header() Block {
	var loi any
	if minutes := r.meta["estimated_loi_minutes"]; survey.Truthy(minutes) {
		loi = survey.Text(minutes) + " minutes"
	}
	score := Score(r.doc)
	return Block{
		BlockType: BlockStudyHeader,
		Title:     "Study Overview",
		Items: []HeaderItem{
			{Label: "Study Type", Value: r.meta["study_type"]},
			{Label: "Description", Value: r.meta["description"]},
			{Label: "Estimated LOI", Value: loi},
		},
		Completeness: &score,
	}
}

func (r *renderer) quotas() []QuotaView {
	var out []QuotaView
	for _, q := range r.doc.SectionQuestions(survey.SectionScreener) {
		attribute := survey.Str(q, "quota_attribute")
		if attribute == "" {
			continue
		}
		kind := survey.Str(q, "quota_type")
		if kind == "" {
			kind = "unknown"
		}
		groups := q["quota_groups"]
		if groups == nil {
			groups = []any{}
		}
		out = append(out, QuotaView{Attribute: attribute, Type: kind, LinkedQuestion: q.ID(), Groups: groups})
	}
	return out
}

func (r *renderer) questions(qs []survey.Question, number func(int) string) []QuestionView {
	out := make([]QuestionView, len(qs))
	for i, q := range qs {
		out[i] = r.question(q, number(i))
	}
	return out
}

func (r *renderer) question(q survey.Question, number string) QuestionView {
	qtype := q.Type()
	entry := r.index.Lookup(q.ID())
	options := Options(q)
	if !choiceType(qtype) {
		options = []Option{}
	}

	required := any(true)
	if value, ok := q["required"]; ok {
		required = value
	}
	view := QuestionView{
		Number:       number,
		QuestionID:   q.ID(),
		QuestionText: q.Text(),
		QuestionType: qtype,
		Options:      options,
		Rows:         q["rows"],
		Columns:      q["columns"],
		DisplayLogic: q["display_logic"],
		Piping:       q["piping"],
		Annotations:  r.annotations(q, entry),
		Routing:      entry,
		Meta: QuestionMeta{
			TypeLabel:    TypeLabel(qtype),
			AnswerFormat: AnswerFormat(qtype),
			OptionCount:  len(options),
			IsRouted:     entry.Routed(),
			Required:     required,
		},
	}
	if attribute := survey.Str(q, "quota_attribute"); attribute != "" {
		view.Meta.QuotaAttribute = attribute
		view.Meta.QuotaGroups = q["quota_groups"]
		view.Meta.QuotaType = q["quota_type"]
	}

	refs := ArtefactReferences(q.Text(), r.letters)
	switch piping := q["piping"].(type) {
	case map[string]any:
		if display, ok := piping["artefact_display"]; ok {
			refs = uniqueSorted(append(refs, survey.Text(display)))
		}
		if seconds, ok := piping["minimum_exposure_seconds"]; ok {
			view.Meta.MinimumExposureSeconds = seconds
		}
	case string:
		refs = uniqueSorted(append(refs, ArtefactReferences(piping, r.letters)...))
	}
	if view.Meta.MinimumExposureSeconds == nil {
		view.Meta.MinimumExposureSeconds = q["minimum_exposure_seconds"]
	}
	view.Meta.DisplaysArtefacts = refs

	view.DisplaysArtefact = r.displayedArtefact(q, entry)
	for _, a := range view.Annotations {
		view.AnnotationText = append(view.AnnotationText, a.Text)
	}
	return view
}

// displayedArtefact resolves the artefact a question shows: the question's
// own displays_artefact for stimulus displays, the routing display rule
// otherwise, falling back to a conjoint task written into the text.
func (r *renderer) displayedArtefact(q survey.Question, entry routing.Entry) *ArtefactView {
	var id string
	if q.Type() == survey.TypeStimulus {
		id = survey.Str(q, "displays_artefact")
	} else if entry.DisplaysArtefact != nil {
		id = *entry.DisplaysArtefact
	}
	if a, ok := r.artefacts[id]; ok && id != "" {
		view := artefactView(a)
		return &view
	}
	if task := ParseChoiceTask(q.Text()); task != nil {
		return &ArtefactView{
			ArtefactType: "inline_conjoint",
			Title:        "Conjoint Task: " + q.ID(),
			Content:      q.Text(),
			Parsed:       task,
		}
	}
	return nil
}

func (r *renderer) annotations(q survey.Question, entry routing.Entry) []Annotation {
	out := []Annotation{}
	if notes := q.Notes(); notes != "" {
		out = append(out, Annotation{Type: "notes", Text: "Notes: " + notes})
	}
	if logic := q.DisplayLogic(); logic != "" {
		out = append(out, Annotation{Type: "display_logic", Text: "Display if: " + logic})
	}
	if piping := q["piping"]; survey.Truthy(piping) {
		out = append(out, Annotation{Type: "piping", Text: "Piping: " + pipingText(piping)})
	}
	if attribute := survey.Str(q, "quota_attribute"); attribute != "" {
		if groups, _ := survey.AsArray(q["quota_groups"]); len(groups) > 0 {
			out = append(out, Annotation{
				Type: "quota",
				Text: fmt.Sprintf("Quota attribute: %s (%s)", attribute, quotaSummary(groups)),
			})
		}
	}
	if text := r.routingText(entry); text != "" {
		out = append(out, Annotation{Type: "routing", Text: text})
	}
	return out
}

func pipingText(piping any) string {
	if obj, ok := piping.(map[string]any); ok {
		keys := make([]string, 0, len(obj))
		for key := range obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, key+"="+survey.Text(obj[key]))
		}
		return strings.Join(parts, ", ")
	}
	return survey.Text(piping)
}

func quotaSummary(groups []any) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		obj, ok := g.(map[string]any)
		if !ok {
			parts = append(parts, survey.Text(g)+": min n/a")
			continue
		}
		minimum := "n/a"
		if value, ok := obj["min"]; ok && value != nil {
			minimum = survey.Text(value)
		}
		parts = append(parts, fmt.Sprintf("%s: min %s", survey.Str(obj, "label"), minimum))
	}
	return strings.Join(parts, ", ")
}

// routingText explains when a question ends the survey or is asked.
// Terminate rules take precedence over show rules.
func (r *renderer) routingText(entry routing.Entry) string {
	if len(entry.TerminatedBy) > 0 {
		var texts []string
		for _, id := range entry.TerminatedBy {
			if plain := r.rules[id].PlainCondition; plain != "" {
				texts = append(texts, "Ends survey if "+plain+".")
			}
		}
		return strings.Join(texts, " ")
	}
	var conditions []string
	for _, id := range entry.ShownBy {
		if plain := r.rules[id].PlainCondition; plain != "" {
			conditions = append(conditions, plain)
		}
	}
	switch len(conditions) {
	case 0:
		return ""
	case 1:
		return "Asked only if " + conditions[0] + "."
	}
	return "Asked if " + strings.Join(conditions, " or ") + "."
}
