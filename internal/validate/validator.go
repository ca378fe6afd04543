package validate

import (
	"go.uber.org/zap"

	"surveyforge/internal/survey"
)

// Validator runs the ordered check phases for one brief.
type Validator struct {
	brief    survey.Brief
	registry *Registry
	logger   *zap.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithRegistry replaces the methodology registry.
func WithRegistry(r *Registry) Option {
	return func(v *Validator) {
		if r != nil {
			v.registry = r
		}
	}
}

// WithLogger sets the logger used for phase tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New returns a validator for brief.
func New(brief survey.Brief, opts ...Option) *Validator {
	v := &Validator{brief: brief, registry: DefaultRegistry(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type phase struct {
	name   string
	checks []Check
}

// Validate runs every phase against a copy of doc and returns the patched
// copy with the results. doc itself is never modified.
func (v *Validator) Validate(doc *survey.Document) (*survey.Document, []Result) {
	working := survey.NewDocument(nil, nil)
	if doc != nil {
		working = doc.Clone()
	}
	pass := &Pass{Doc: working, Brief: v.brief}
	phases := []phase{
		{"core", coreChecks},
		{"sequence", sequenceChecks},
		{"methodology", v.registry.active(v.brief.Skills)},
		{"optional", optionalChecks},
		{"advisory", advisoryChecks},
	}
	for _, ph := range phases {
		before := len(pass.results)
		for _, check := range ph.checks {
			n := len(pass.results)
			check.Run(pass)
			if added := len(pass.results) - n; added > 0 {
				v.logger.Debug("check reported",
					zap.String("check_id", check.ID),
					zap.Int("results", added))
			}
		}
		v.logger.Debug("phase complete",
			zap.String("phase", ph.name),
			zap.Int("checks", len(ph.checks)),
			zap.Int("results", len(pass.results)-before))
	}
	return working, pass.results
}
