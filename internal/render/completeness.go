package render

import (
	"math"

	"surveyforge/internal/survey"
)

// notesSample is how many leading questions are checked for notes.
const notesSample = 5

// Score scores the optional documentation of doc: the V2 sections, the
// estimated LOI, notes on any of the first questions and sub-section
// purposes.
func Score(doc *survey.Document) Completeness {
	c := Completeness{Present: []string{}, Missing: []string{}}
	mark := func(ok bool, present, missing string) {
		if ok {
			c.Present = append(c.Present, present)
		} else {
			c.Missing = append(c.Missing, missing)
		}
	}

	for _, section := range []struct{ key, label string }{
		{survey.SectionSampleRequirements, "Sample Requirements"},
		{survey.SectionProgramming, "Programming Specifications"},
		{survey.SectionAnalysisPlan, "Analysis Plan"},
	} {
		value, _ := doc.Get(section.key)
		mark(survey.Truthy(value), section.label, section.label)
	}
	mark(survey.Truthy(doc.Object(survey.SectionStudyMetadata)["estimated_loi_minutes"]), "Estimated LOI", "Estimated LOI")

	if refs := doc.Questions(); len(refs) > 0 {
		withNotes := false
		for _, ref := range refs[:min(notesSample, len(refs))] {
			if survey.Truthy(ref.Question["notes"]) {
				withNotes = true
				break
			}
		}
		mark(withNotes, "Question notes", "Question notes/rationale")
	}

	if subs := doc.Subsections(); len(subs) > 0 {
		withPurpose := false
		for _, sub := range subs {
			if survey.Truthy(sub["purpose"]) {
				withPurpose = true
				break
			}
		}
		mark(withPurpose, "Subsection purposes", "Subsection purposes")
	}

	score := float64(len(c.Present)) / float64(len(c.Present)+len(c.Missing)) * 100
	c.Score = int(math.RoundToEven(score))
	switch {
	case score == 100:
		c.Status = StatusComplete
	case score >= 66:
		c.Status = StatusGood
	default:
		c.Status = StatusBasic
	}
	return c
}
