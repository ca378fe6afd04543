package loi

import (
	"errors"
	"fmt"
	"math"

	"surveyforge/internal/survey"
)

// ErrUnknownQuestion is returned when an override names a missing question.
var ErrUnknownQuestion = errors.New("loi: unknown question")

// ConfigKey is the top-level document key holding the snapshot.
const ConfigKey = "loi_config"

// DefaultPosition is used when no slider position has been stored.
const DefaultPosition = 50

// Config is the snapshot written to loi_config.
type Config struct {
	SliderPosition   int     `json:"slider_position"`
	SnapPoint        Tier    `json:"snap_point"`
	EstimatedMinutes float64 `json:"estimated_loi_minutes"`
	TotalQuestions   int     `json:"total_questions"`
	VisibleQuestions int     `json:"visible_questions"`
	HiddenQuestions  int     `json:"hidden_questions"`
	PinnedCount      int     `json:"user_pinned_count"`
	ExcludedCount    int     `json:"user_excluded_count"`
}

func (c Config) tree() map[string]any {
	return map[string]any{
		"slider_position":       c.SliderPosition,
		"snap_point":            string(c.SnapPoint),
		"estimated_loi_minutes": c.EstimatedMinutes,
		"total_questions":       c.TotalQuestions,
		"visible_questions":     c.VisibleQuestions,
		"hidden_questions":      c.HiddenQuestions,
		"user_pinned_count":     c.PinnedCount,
		"user_excluded_count":   c.ExcludedCount,
	}
}

// QuestionState is the LOI view of one question.
type QuestionState struct {
	ID               string   `json:"question_id"`
	Section          string   `json:"section"`
	Text             string   `json:"question_text"`
	Priority         Priority `json:"priority"`
	Rank             int      `json:"priority_rank"`
	EstimatedSeconds int      `json:"estimated_seconds"`
	Visibility       string   `json:"loi_visibility"`
	Override         Override `json:"user_override"`
}

// Calculator owns a document and rewrites its LOI fields in place.
type Calculator struct {
	doc *survey.Document
}

// NewCalculator wraps doc. The calculator mutates doc.
func NewCalculator(doc *survey.Document) *Calculator {
	if doc == nil {
		doc = survey.NewDocument(nil, nil)
	}
	return &Calculator{doc: doc}
}

// Document returns the working document.
func (c *Calculator) Document() *survey.Document {
	return c.doc
}

// Apply seeds missing LOI fields on every question, then recalculates at
// position.
func (c *Calculator) Apply(position int) Config {
	for _, ref := range c.doc.Questions() {
		q := ref.Question
		if !q.Has("priority") {
			q["priority"] = string(InferPriority(q, ref.Section))
		}
		if !q.Has("priority_rank") {
			q["priority_rank"] = 1
		}
		if !q.Has("estimated_seconds") {
			q["estimated_seconds"] = EstimateSeconds(q)
		}
		if !q.Has("loi_visibility") {
			q["loi_visibility"] = Visible
		}
		if !q.Has("user_override") {
			q["user_override"] = string(OverrideNone)
		}
	}
	return c.Recalculate(position)
}

// Position returns the stored slider position.
func (c *Calculator) Position() int {
	cfg := c.doc.Object(ConfigKey)
	if cfg == nil {
		return DefaultPosition
	}
	return survey.Int(cfg["slider_position"], DefaultPosition)
}

func priorityOf(q survey.Question) Priority {
	if p := survey.Str(q, "priority"); p != "" {
		return Priority(p)
	}
	return Recommended
}

func rankOf(q survey.Question) int {
	return survey.Int(q["priority_rank"], 1)
}

func secondsOf(q survey.Question) int {
	return survey.Int(q["estimated_seconds"], 10)
}

func overrideOf(q survey.Question) Override {
	if o := survey.Str(q, "user_override"); o != "" {
		return Override(o)
	}
	return OverrideNone
}

// maxRank is the largest priority_rank among questions of priority p, at
// least 1.
func (c *Calculator) maxRank(p Priority) int {
	highest := 1
	for _, ref := range c.doc.Questions() {
		if survey.Str(ref.Question, "priority") == string(p) {
			highest = max(highest, rankOf(ref.Question))
		}
	}
	return highest
}

// ShouldShow reports whether a question with priority p and rank is visible
// at position, ignoring user overrides. Recommended questions phase in by
// rank across the standard tier, optional ones across the deep tier.
func (c *Calculator) ShouldShow(position int, p Priority, rank int) bool {
	switch p {
	case Required:
		return true
	case Recommended:
		if position <= QuickMax {
			return false
		}
		if position >= StandardMax {
			return true
		}
		return rank <= threshold(float64(position-QuickMax)/float64(StandardMax-QuickMax), c.maxRank(Recommended))
	case Optional:
		if position < StandardMax {
			return false
		}
		if position >= DeepMax {
			return true
		}
		return rank <= threshold(float64(position-StandardMax)/float64(DeepMax-StandardMax), c.maxRank(Optional))
	}
	return true
}

// threshold rounds half to even, so 2.5 ranks show 2.
func threshold(progress float64, maxRank int) int {
	return max(1, int(math.RoundToEven(progress*float64(maxRank))))
}

// Recalculate sets loi_visibility on every question for position and stores
// the resulting snapshot in the document.
func (c *Calculator) Recalculate(position int) Config {
	position = min(max(position, 0), DeepMax)
	cfg := Config{SliderPosition: position, SnapPoint: TierFor(position)}
	totalSeconds := 0
	for _, ref := range c.doc.Questions() {
		q := ref.Question
		cfg.TotalQuestions++
		visible := false
		switch overrideOf(q) {
		case Pinned:
			cfg.PinnedCount++
			visible = true
		case Excluded:
			cfg.ExcludedCount++
		default:
			visible = c.ShouldShow(position, priorityOf(q), rankOf(q))
		}
		if visible {
			q["loi_visibility"] = Visible
			cfg.VisibleQuestions++
			totalSeconds += secondsOf(q)
		} else {
			q["loi_visibility"] = Hidden
			cfg.HiddenQuestions++
		}
	}
	cfg.EstimatedMinutes = math.Round(float64(totalSeconds)/60*10) / 10
	c.doc.Set(ConfigKey, cfg.tree())
	return cfg
}

func (c *Calculator) setOverride(id string, o Override) (Config, error) {
	ref, ok := c.doc.FindQuestion(id)
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	ref.Question["user_override"] = string(o)
	return c.Recalculate(c.Position()), nil
}

// Pin forces a question visible at every position.
func (c *Calculator) Pin(id string) (Config, error) {
	return c.setOverride(id, Pinned)
}

// Exclude forces a question hidden at every position.
func (c *Calculator) Exclude(id string) (Config, error) {
	return c.setOverride(id, Excluded)
}

// Reset returns a question to slider-driven visibility.
func (c *Calculator) Reset(id string) (Config, error) {
	return c.setOverride(id, OverrideNone)
}

// Questions lists the LOI state of every question in survey order.
func (c *Calculator) Questions() []QuestionState {
	refs := c.doc.Questions()
	out := make([]QuestionState, 0, len(refs))
	for _, ref := range refs {
		q := ref.Question
		out = append(out, QuestionState{
			ID:               q.ID(),
			Section:          ref.Section,
			Text:             q.Text(),
			Priority:         priorityOf(q),
			Rank:             rankOf(q),
			EstimatedSeconds: secondsOf(q),
			Visibility:       survey.Str(q, "loi_visibility"),
			Override:         overrideOf(q),
		})
	}
	return out
}
