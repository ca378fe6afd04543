package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"surveyforge/internal/survey"
)

var (
	artefactRef  = regexp.MustCompile(`(?i)\[DISPLAY\s+([A-Z]\d+)[:\s\]]|\{\{artefact:([A-Z]\d+)\}\}|artefact_id['"]?\s*[:=]\s*['"]?([A-Z]\d+)`)
	conceptRef   = regexp.MustCompile(`(?i)\[DISPLAY\s+CONCEPT\s+([A-Z])`)
	conceptTitle = regexp.MustCompile(`(?i)Concept\s+([A-Z])`)
)

// conceptLetters maps the letter of artefacts titled "Concept X" to their id.
func conceptLetters(artefacts []map[string]any) map[string]string {
	out := map[string]string{}
	for _, a := range artefacts {
		id := survey.Str(a, "artefact_id")
		m := conceptTitle.FindStringSubmatch(survey.Str(a, "title"))
		if m != nil && id != "" {
			out[strings.ToUpper(m[1])] = id
		}
	}
	return out
}

// ArtefactReferences finds the artefact ids referenced by text: "[DISPLAY A1]",
// "{{artefact:A1}}", "artefact_id: A1" and "[DISPLAY CONCEPT A]". Concept
// letters resolve through letters, falling back to letter N -> AN.
func ArtefactReferences(text string, letters map[string]string) []string {
	if text == "" {
		return nil
	}
	var ids []string
	for _, m := range artefactRef.FindAllStringSubmatch(text, -1) {
		for _, group := range m[1:] {
			if group != "" {
				ids = append(ids, group)
			}
		}
	}
	for _, m := range conceptRef.FindAllStringSubmatch(text, -1) {
		letter := strings.ToUpper(m[1])
		if id, ok := letters[letter]; ok {
			ids = append(ids, id)
			continue
		}
		ids = append(ids, fmt.Sprintf("A%d", letter[0]-'A'+1))
	}
	return uniqueSorted(ids)
}

func uniqueSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func artefactView(a map[string]any) ArtefactView {
	view := ArtefactView{
		ArtefactID:   a["artefact_id"],
		ArtefactType: a["artefact_type"],
		Title:        a["title"],
		Content:      a["content"],
	}
	if content, ok := a["content"].(string); ok {
		view.Parsed = ParseChoiceTask(content)
	}
	return view
}
