package routing

import (
	"regexp"
	"strings"
)

// Kind is the verb of one action clause.
type Kind string

const (
	KindShow      Kind = "show"
	KindSkip      Kind = "skip"
	KindTerminate Kind = "terminate"
	// KindDisplay is a "Display artefact X ... with question Y" clause.
	KindDisplay Kind = "display"
	// KindAssign is a randomised artefact assignment clause.
	KindAssign Kind = "assign"
	// KindUnsupported marks a clause no pattern recognises. It is reported,
	// never guessed at.
	KindUnsupported Kind = "unsupported"
)

// Effect is one parsed clause of a routing action. Targets holds the
// identifier tokens the clause names; for terminate clauses the targets
// come from the rule condition instead.
type Effect struct {
	Kind    Kind     `json:"kind"`
	Targets []string `json:"targets,omitempty"`
	Clause  string   `json:"clause"`
}

var (
	showClause      = regexp.MustCompile(`(?i)^show\s+`)
	skipClause      = regexp.MustCompile(`(?i)^skip\s+`)
	terminateClause = regexp.MustCompile(`(?i)^terminate\b`)
	onlyWord        = regexp.MustCompile(`(?i)\bonly\b`)
	identifierToken = regexp.MustCompile(`\b[A-Z][A-Z0-9_]*\b`)
	displayArtefact = regexp.MustCompile(`(?i)Display\s+artefact\s+([A-Z]\d+).*with.*question\s+([A-Z0-9_]+)`)
	assignmentVerb  = regexp.MustCompile(`(?i)randomly?\s+assign|random.*rotation|permutation`)
)

// ParseAction splits a free-text action on ';' and classifies each clause.
// The patterns are heuristics over generated prose, not a grammar.
func ParseAction(action string) []Effect {
	var effects []Effect
	for _, raw := range strings.Split(action, ";") {
		clause := strings.TrimSpace(raw)
		if clause == "" {
			continue
		}
		switch {
		case showClause.MatchString(clause):
			effects = append(effects, Effect{Kind: KindShow, Targets: identifiers(onlyWord.ReplaceAllString(clause, "")), Clause: clause})
		case skipClause.MatchString(clause):
			effects = append(effects, Effect{Kind: KindSkip, Targets: identifiers(onlyWord.ReplaceAllString(clause, "")), Clause: clause})
		case terminateClause.MatchString(clause):
			effects = append(effects, Effect{Kind: KindTerminate, Clause: clause})
		case displayArtefact.MatchString(clause):
			m := displayArtefact.FindStringSubmatch(clause)
			effects = append(effects, Effect{Kind: KindDisplay, Targets: []string{m[1], m[2]}, Clause: clause})
		case assignmentVerb.MatchString(clause):
			effects = append(effects, Effect{Kind: KindAssign, Targets: assignedArtefacts(clause), Clause: clause})
		default:
			effects = append(effects, Effect{Kind: KindUnsupported, Clause: clause})
		}
	}
	return effects
}

func identifiers(text string) []string {
	return identifierToken.FindAllString(text, -1)
}
