// Package loi maps a length-of-interview slider position and per-question
// priorities to a visible/hidden partition of the survey.
package loi

import (
	"strings"

	"surveyforge/internal/survey"
)

// Priority controls at which slider positions a question appears.
type Priority string

const (
	Required    Priority = "required"
	Recommended Priority = "recommended"
	Optional    Priority = "optional"
)

// Override is a user decision that wins over the slider.
type Override string

const (
	OverrideNone Override = "none"
	Pinned       Override = "pinned"
	Excluded     Override = "excluded"
)

// Visibility values written to loi_visibility.
const (
	Visible = "visible"
	Hidden  = "hidden"
)

// Tier names a slider range.
type Tier string

const (
	Quick    Tier = "quick"
	Standard Tier = "standard"
	Deep     Tier = "deep"
)

// Tier boundaries on the 0-100 slider.
const (
	QuickMax    = 30
	StandardMax = 70
	DeepMax     = 100
)

// TierFor returns the tier a slider position falls into.
func TierFor(position int) Tier {
	switch {
	case position <= QuickMax:
		return Quick
	case position <= StandardMax:
		return Standard
	default:
		return Deep
	}
}

// SnapPosition is the default slider position for a tier.
func SnapPosition(t Tier) int {
	switch t {
	case Quick:
		return 15
	case Deep:
		return 85
	default:
		return 50
	}
}

// InferPriority guesses a priority from the question id, its section and
// its shape.
func InferPriority(q survey.Question, section string) Priority {
	id := q.ID()
	switch {
	case strings.HasPrefix(id, "SCR_"):
		return Required
	case strings.HasPrefix(id, "DEM_") || section == survey.SectionDemographics:
		return Recommended
	case len(q.Rows()) > 5:
		return Optional
	case q.DisplayLogic() != "":
		return Optional
	}
	return Recommended
}

// EstimateSeconds estimates how long a respondent spends on q.
func EstimateSeconds(q survey.Question) int {
	switch q.Type() {
	case survey.TypeMatrix:
		return min(len(q.Rows())*3, 45)
	case survey.TypeSingleChoice:
		switch n := len(q.Options()); {
		case n <= 5:
			return 6
		case n <= 10:
			return 10
		default:
			return 12
		}
	case survey.TypeMultipleChoice:
		return 12
	case survey.TypeRanking:
		return min(len(q.Options())*5, 30)
	case survey.TypeOpenEnded:
		return 30
	case survey.TypeNumericInput, survey.TypeScale:
		return 8
	}
	return 10
}
