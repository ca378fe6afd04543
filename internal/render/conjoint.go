package render

import (
	"fmt"
	"regexp"
	"strings"

	"surveyforge/internal/survey"
)

var (
	optionMarker  = regexp.MustCompile(`(?i)\[OPTION\s+([A-Z])\]`)
	leadingSpace  = regexp.MustCompile(`^\s*\n`)
	attributeLine = regexp.MustCompile(`[•\-*]\s*([^:]+):\s*([^\n]+)`)
)

// ParseChoiceTask extracts conjoint configurations from text of the form
//
//	[OPTION A]
//	• Price: $10
//	• Size: Large
//
// Options without attribute bullets are dropped. It returns nil when no
// option has attributes.
func ParseChoiceTask(text string) *ChoiceTask {
	if text == "" {
		return nil
	}
	markers := optionMarker.FindAllStringSubmatchIndex(text, -1)
	var configs []Configuration
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		// The marker must be followed by a line break before its body.
		gap := leadingSpace.FindStringIndex(text[m[1]:end])
		if gap == nil {
			continue
		}
		body := text[m[1]+gap[1] : end]
		cfg := Configuration{
			ConfigID:   "Option " + text[m[2]:m[3]],
			Attributes: map[string]string{},
		}
		for _, attr := range attributeLine.FindAllStringSubmatch(body, -1) {
			name, value := strings.TrimSpace(attr[1]), strings.TrimSpace(attr[2])
			if _, dup := cfg.Attributes[name]; !dup {
				cfg.Order = append(cfg.Order, name)
			}
			cfg.Attributes[name] = value
		}
		if len(cfg.Attributes) > 0 {
			configs = append(configs, cfg)
		}
	}
	if len(configs) == 0 {
		return nil
	}
	return &ChoiceTask{
		Type:           "choice_task",
		Configurations: configs,
		AttributeCount: len(configs[0].Attributes),
		ConfigCount:    len(configs),
	}
}

// ConfigurationSummary lists the conjoint tasks written inline in MAIN_SECTION
// question text. Artefact ids are inferred from task order.
func ConfigurationSummary(doc *survey.Document) []ConfigSummary {
	var out []ConfigSummary
	for _, sub := range doc.Subsections() {
		for _, q := range sub.Questions() {
			if !optionMarker.MatchString(q.Text()) {
				continue
			}
			task := ParseChoiceTask(q.Text())
			if task == nil {
				continue
			}
			out = append(out, ConfigSummary{
				QuestionID:                 q.ID(),
				DisplaysArtefact:           fmt.Sprintf("A%d", len(out)+1),
				Configurations:             task.ConfigCount,
				AttributesPerConfiguration: task.AttributeCount,
			})
		}
	}
	return out
}
