package live

import (
	"fmt"

	"surveyforge/internal/loi"
)

// sliderStep is the distance one arrow key moves the slider.
const sliderStep = 5

// ActionKind identifies a slider interaction.
type ActionKind int

const (
	// ActionMove shifts the slider by Delta.
	ActionMove ActionKind = iota
	// ActionSet moves the slider to Position.
	ActionSet
	// ActionSnap moves the slider to the snap point of Tier.
	ActionSnap
	ActionPin
	ActionExclude
	ActionReset
)

// Action is one user interaction.
type Action struct {
	Kind       ActionKind
	Delta      int
	Position   int
	Tier       loi.Tier
	QuestionID string
}

// State is what the view renders.
type State struct {
	Title     string
	Config    loi.Config
	Rows      []loi.QuestionState
	LastEvent string
}

// Snapshot reads the calculator into a fresh state.
func Snapshot(calc *loi.Calculator, title string, cfg loi.Config) State {
	return State{Title: title, Config: cfg, Rows: calc.Questions()}
}

// Reduce applies an action to the calculator and returns the next state.
// Failed overrides keep the previous configuration and report the error.
func Reduce(calc *loi.Calculator, state State, action Action) State {
	var (
		cfg   loi.Config
		err   error
		event string
	)
	switch action.Kind {
	case ActionMove:
		cfg = calc.Recalculate(clamp(state.Config.SliderPosition + action.Delta))
		event = fmt.Sprintf("slider moved to %d", cfg.SliderPosition)
	case ActionSet:
		cfg = calc.Recalculate(clamp(action.Position))
		event = fmt.Sprintf("slider set to %d", cfg.SliderPosition)
	case ActionSnap:
		cfg = calc.Recalculate(loi.SnapPosition(action.Tier))
		event = fmt.Sprintf("snapped to %s", action.Tier)
	case ActionPin:
		cfg, err = calc.Pin(action.QuestionID)
		event = "pinned " + action.QuestionID
	case ActionExclude:
		cfg, err = calc.Exclude(action.QuestionID)
		event = "excluded " + action.QuestionID
	case ActionReset:
		cfg, err = calc.Reset(action.QuestionID)
		event = "reset " + action.QuestionID
	default:
		return state
	}
	if err != nil {
		state.LastEvent = "error: " + err.Error()
		return state
	}
	next := Snapshot(calc, state.Title, cfg)
	next.LastEvent = event
	return next
}

func clamp(position int) int {
	return min(max(position, 0), loi.DeepMax)
}
